package graphcache

import (
	"fmt"

	"github.com/pipforge/pipforge/pkg/pipgraph"
	"github.com/pipforge/pipforge/pkg/wireproto"
)

// toWireGraph converts an immutable PipGraph to its persisted form.
func toWireGraph(graph *pipgraph.PipGraph) *wireproto.WirePipGraph {
	message := &wireproto.WirePipGraph{}

	for _, p := range graph.Pips() {
		wp := &wireproto.WirePip{
			Id:         string(p.Id),
			Executable: p.Executable,
			Arguments:  append([]string(nil), p.Arguments...),
		}
		for _, e := range p.Environment {
			wp.Environment = append(wp.Environment, &wireproto.WireEnvironmentVariable{Name: e.Name, Value: e.Value})
		}
		for _, in := range p.Inputs {
			wp.Inputs = append(wp.Inputs, &wireproto.WireFileDependency{Mount: in.Mount, Path: in.Path})
		}
		for _, s := range p.SealedDirectoryInputs {
			fingerprint := s.MembershipFingerprint
			wp.SealedDirectoryInputs = append(wp.SealedDirectoryInputs, &wireproto.WireSealedDirectory{
				Root:                  s.Root,
				Mount:                 s.Mount,
				MembershipFingerprint: fingerprint[:],
			})
		}
		for _, out := range p.Outputs {
			wp.Outputs = append(wp.Outputs, &wireproto.WireFileDependency{Mount: out.Mount, Path: out.Path})
		}
		for _, dependent := range graph.Dependents(p.Id) {
			wp.Dependents = append(wp.Dependents, string(dependent))
		}
		message.Pips = append(message.Pips, wp)
	}

	for _, m := range graph.Mounts() {
		message.Mounts = append(message.Mounts, &wireproto.WireMount{
			Name:         m.Name,
			ResolvedPath: m.ResolvedPath,
			Access:       uint32(m.Access),
		})
	}

	return message
}

// fromWireGraph reconstructs a PipGraph from its persisted form, re-running
// cycle validation as part of Build.
func fromWireGraph(message *wireproto.WirePipGraph) (*pipgraph.PipGraph, error) {
	mounts := make([]pipgraph.Mount, 0, len(message.Mounts))
	for _, m := range message.Mounts {
		mounts = append(mounts, pipgraph.Mount{
			Name:         m.Name,
			ResolvedPath: m.ResolvedPath,
			Access:       pipgraph.MountAccess(m.Access),
		})
	}

	builder := pipgraph.NewPipGraphBuilder(mounts)
	for _, wp := range message.Pips {
		p := &pipgraph.Pip{
			Id:         pipgraph.PipId(wp.Id),
			Executable: wp.Executable,
			Arguments:  append([]string(nil), wp.Arguments...),
		}
		for _, e := range wp.Environment {
			p.Environment = append(p.Environment, pipgraph.EnvironmentVariable{Name: e.Name, Value: e.Value})
		}
		for _, in := range wp.Inputs {
			p.Inputs = append(p.Inputs, pipgraph.FileDependency{Mount: in.Mount, Path: in.Path})
		}
		for _, s := range wp.SealedDirectoryInputs {
			var fingerprint pipgraph.ContentHash
			copy(fingerprint[:], s.MembershipFingerprint)
			p.SealedDirectoryInputs = append(p.SealedDirectoryInputs, pipgraph.SealedDirectory{
				Root:                  s.Root,
				Mount:                 s.Mount,
				MembershipFingerprint: fingerprint,
			})
		}
		for _, out := range wp.Outputs {
			p.Outputs = append(p.Outputs, pipgraph.FileDependency{Mount: out.Mount, Path: out.Path})
		}
		if err := builder.AddPip(p); err != nil {
			return nil, fmt.Errorf("unable to reconstruct pip %s: %w", wp.Id, err)
		}
	}
	for _, wp := range message.Pips {
		for _, dependent := range wp.Dependents {
			if err := builder.AddDependency(pipgraph.PipId(wp.Id), pipgraph.PipId(dependent)); err != nil {
				return nil, fmt.Errorf("unable to reconstruct edge %s -> %s: %w", wp.Id, dependent, err)
			}
		}
	}

	return builder.Build()
}
