package engine

import (
	"fmt"

	"github.com/pipforge/pipforge/pkg/encoding"
	"github.com/pipforge/pipforge/pkg/pipgraph"
)

// GraphSpec is a YAML description of a fixed pip graph, used by the CLI as
// a stand-in for a real frontend. spec.md explicitly treats spec-language
// parsing and evaluation as an external collaborator; this loader exists
// only so the CLI and its tests have something to drive EngineDriver with.
type GraphSpec struct {
	Mounts []struct {
		Name   string `yaml:"name"`
		Path   string `yaml:"path"`
		Access string `yaml:"access"`
	} `yaml:"mounts"`
	Pips []struct {
		Executable  string            `yaml:"executable"`
		Arguments   []string          `yaml:"arguments"`
		Environment map[string]string `yaml:"environment"`
		Inputs      []struct {
			Mount string `yaml:"mount"`
			Path  string `yaml:"path"`
		} `yaml:"inputs"`
		Outputs []struct {
			Mount string `yaml:"mount"`
			Path  string `yaml:"path"`
		} `yaml:"outputs"`
		DependsOnIndex []int `yaml:"dependsOnIndex"`
	} `yaml:"pips"`
}

// LoadGraphSpec reads and parses a GraphSpec from path.
func LoadGraphSpec(path string) (*GraphSpec, error) {
	spec := &GraphSpec{}
	if err := encoding.LoadAndUnmarshalYAML(path, spec); err != nil {
		return nil, err
	}
	return spec, nil
}

// Build turns the spec into an immutable PipGraph.
func (s *GraphSpec) Build() (*pipgraph.PipGraph, error) {
	mounts := make([]pipgraph.Mount, 0, len(s.Mounts))
	for _, m := range s.Mounts {
		mounts = append(mounts, pipgraph.Mount{
			Name:         m.Name,
			ResolvedPath: m.Path,
			Access:       pipgraph.ParseMountAccess(m.Access),
		})
	}

	builder := pipgraph.NewPipGraphBuilder(mounts)

	ids := make([]pipgraph.PipId, len(s.Pips))
	for i, sp := range s.Pips {
		p := &pipgraph.Pip{
			Executable: sp.Executable,
			Arguments:  sp.Arguments,
		}
		for name, value := range sp.Environment {
			p.Environment = append(p.Environment, pipgraph.EnvironmentVariable{Name: name, Value: value})
		}
		for _, in := range sp.Inputs {
			p.Inputs = append(p.Inputs, pipgraph.FileDependency{Mount: in.Mount, Path: in.Path})
		}
		for _, out := range sp.Outputs {
			p.Outputs = append(p.Outputs, pipgraph.FileDependency{Mount: out.Mount, Path: out.Path})
		}
		p.Id = pipgraph.ComputePipId(p)
		ids[i] = p.Id
		if err := builder.AddPip(p); err != nil {
			return nil, fmt.Errorf("unable to add pip %d: %w", i, err)
		}
	}

	for i, sp := range s.Pips {
		for _, depIndex := range sp.DependsOnIndex {
			if depIndex < 0 || depIndex >= len(ids) {
				return nil, fmt.Errorf("pip %d: dependency index %d out of range", i, depIndex)
			}
			if err := builder.AddDependency(ids[depIndex], ids[i]); err != nil {
				return nil, fmt.Errorf("pip %d: %w", i, err)
			}
		}
	}

	return builder.Build()
}
