package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pipforge/pipforge/pkg/distribution"
	"github.com/pipforge/pipforge/pkg/pipgraph"
)

// LocalExecutor runs a pip as a local process, resolving mount-relative
// paths against the mount roots supplied at construction. It satisfies
// pkg/distribution.Executor so the same type can serve both a single-machine
// build and a distributed worker.
type LocalExecutor struct {
	MountRoots map[string]string
}

// resolve turns a mount-relative FileDependency into an absolute path.
func (e *LocalExecutor) resolve(dep pipgraph.FileDependency) (string, error) {
	root, ok := e.MountRoots[dep.Mount]
	if !ok {
		return "", fmt.Errorf("unknown mount %q", dep.Mount)
	}
	return filepath.Join(root, dep.Path), nil
}

// ExecutePip runs a pip's executable directly, without going through the
// distribution protocol. It is used for the single-machine build path.
func (e *LocalExecutor) ExecutePip(ctx context.Context, p *pipgraph.Pip) (distribution.PipOutcome, error) {
	if p.Executable == "" {
		return distribution.PipOutcome{Status: "succeeded"}, nil
	}

	executablePath, err := e.resolve(pipgraph.FileDependency{Mount: mountOf(p.Inputs, p.Executable), Path: p.Executable})
	if err != nil {
		executablePath = p.Executable
	}

	environment := os.Environ()
	for _, e := range p.Environment {
		environment = append(environment, e.Name+"="+e.Value)
	}

	command := exec.CommandContext(ctx, executablePath, p.Arguments...)
	command.Env = environment

	output, err := command.CombinedOutput()
	if err != nil {
		return distribution.PipOutcome{Status: "failed: " + err.Error(), Outputs: nil}, fmt.Errorf("pip %s failed: %w (output: %s)", p.Id, err, output)
	}

	outputs := make([]string, 0, len(p.Outputs))
	for _, out := range p.Outputs {
		outputs = append(outputs, out.Path)
	}
	return distribution.PipOutcome{Status: "succeeded", Outputs: outputs}, nil
}

func mountOf(deps []pipgraph.FileDependency, path string) string {
	for _, d := range deps {
		if d.Path == path {
			return d.Mount
		}
	}
	return ""
}

// Execute implements distribution.Executor by looking up the pip by id in
// the graph the worker loaded and delegating to ExecutePip.
type GraphExecutor struct {
	Graph    *pipgraph.PipGraph
	Executor *LocalExecutor
}

func (g *GraphExecutor) Execute(ctx context.Context, pipId string, inputsMaterializationPlan []byte) (distribution.PipOutcome, error) {
	p, ok := g.Graph.Lookup(pipgraph.PipId(pipId))
	if !ok {
		return distribution.PipOutcome{}, fmt.Errorf("unknown pip id %s", pipId)
	}
	return g.Executor.ExecutePip(ctx, p)
}

// ExecuteAll runs every pip in the graph in an order that respects
// dependencies, stopping at the first failure. It is the single-machine
// stand-in for what a real scheduler would do by dispatching ready pips to
// distribution.Orchestrator instead.
func (g *GraphExecutor) ExecuteAll(ctx context.Context) (map[pipgraph.PipId]distribution.PipOutcome, error) {
	order, err := topologicalOrder(g.Graph)
	if err != nil {
		return nil, err
	}

	outcomes := make(map[pipgraph.PipId]distribution.PipOutcome, len(order))
	for _, id := range order {
		p, _ := g.Graph.Lookup(id)
		outcome, err := g.Executor.ExecutePip(ctx, p)
		outcomes[id] = outcome
		if err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

// topologicalOrder computes a dependency-respecting execution order via
// Kahn's algorithm, using PipGraph.Dependents as the forward edge set
// (dependency -> dependents that must run after it).
func topologicalOrder(g *pipgraph.PipGraph) ([]pipgraph.PipId, error) {
	pips := g.Pips()
	inDegree := make(map[pipgraph.PipId]int, len(pips))
	for _, p := range pips {
		inDegree[p.Id] = 0
	}
	for _, p := range pips {
		for _, dependent := range g.Dependents(p.Id) {
			inDegree[dependent]++
		}
	}

	var ready []pipgraph.PipId
	for _, p := range pips {
		if inDegree[p.Id] == 0 {
			ready = append(ready, p.Id)
		}
	}

	order := make([]pipgraph.PipId, 0, len(pips))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, dependent := range g.Dependents(id) {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != len(pips) {
		return nil, fmt.Errorf("pip graph has an unresolvable dependency cycle")
	}
	return order, nil
}
