package pipgraph

import (
	"errors"
	"fmt"
)

// PipGraph is a directed acyclic graph of Pips, together with the sealed
// directories and mount definitions that constrain it. A PipGraph is
// immutable once constructed: no pip is ever added to or removed from it
// after PipGraphBuilder.Build returns it. Builders should accumulate pips in a
// PipGraphBuilder and call Build exactly once.
type PipGraph struct {
	pips  map[PipId]*Pip
	edges map[PipId][]PipId // pip -> pips that must run after it
	order []PipId           // insertion order, preserved for deterministic serialization
	mounts []Mount
}

// Pips returns the graph's pips in construction order. The returned slice
// must not be mutated.
func (g *PipGraph) Pips() []*Pip {
	result := make([]*Pip, len(g.order))
	for i, id := range g.order {
		result[i] = g.pips[id]
	}
	return result
}

// Lookup returns the pip with the specified id, if present.
func (g *PipGraph) Lookup(id PipId) (*Pip, bool) {
	p, ok := g.pips[id]
	return p, ok
}

// Dependents returns the ids of pips that depend on (must run after) the
// specified pip.
func (g *PipGraph) Dependents(id PipId) []PipId {
	return g.edges[id]
}

// Mounts returns the graph's mount definitions.
func (g *PipGraph) Mounts() []Mount {
	return g.mounts
}

// Len returns the number of pips in the graph.
func (g *PipGraph) Len() int {
	return len(g.order)
}

// PipGraphBuilder accumulates pips and dependency edges before sealing them
// into an immutable PipGraph. It is not safe for concurrent use; callers
// building a graph from concurrent frontend evaluation must serialize their
// own calls to AddPip.
type PipGraphBuilder struct {
	pips   map[PipId]*Pip
	edges  map[PipId][]PipId
	order  []PipId
	mounts []Mount
}

// NewPipGraphBuilder creates an empty builder.
func NewPipGraphBuilder(mounts []Mount) *PipGraphBuilder {
	return &PipGraphBuilder{
		pips:   make(map[PipId]*Pip),
		edges:  make(map[PipId][]PipId),
		mounts: mounts,
	}
}

// AddPip adds a pip to the graph being built. It is an error to add a pip
// whose id is already present (pips are deduplicated by the frontend before
// being added, not here).
func (b *PipGraphBuilder) AddPip(p *Pip) error {
	if err := p.EnsureValid(); err != nil {
		return fmt.Errorf("invalid pip: %w", err)
	}
	if _, exists := b.pips[p.Id]; exists {
		return fmt.Errorf("duplicate pip id %q", p.Id)
	}
	b.pips[p.Id] = p
	b.order = append(b.order, p.Id)
	return nil
}

// AddDependency records that dependent must run after dependency. Both pips
// must already have been added via AddPip.
func (b *PipGraphBuilder) AddDependency(dependency, dependent PipId) error {
	if _, ok := b.pips[dependency]; !ok {
		return fmt.Errorf("unknown dependency pip %q", dependency)
	}
	if _, ok := b.pips[dependent]; !ok {
		return fmt.Errorf("unknown dependent pip %q", dependent)
	}
	b.edges[dependency] = append(b.edges[dependency], dependent)
	return nil
}

// Build validates that the accumulated pips and edges form a DAG and returns
// an immutable PipGraph. Once Build returns successfully, the builder should
// be discarded; reusing it would not mutate any previously returned
// PipGraph, since Build copies all structures, but doing so is not a
// supported usage pattern.
func (b *PipGraphBuilder) Build() (*PipGraph, error) {
	pips := make(map[PipId]*Pip, len(b.pips))
	for id, p := range b.pips {
		pips[id] = p
	}
	edges := make(map[PipId][]PipId, len(b.edges))
	for id, deps := range b.edges {
		edges[id] = append([]PipId(nil), deps...)
	}
	order := append([]PipId(nil), b.order...)
	mounts := append([]Mount(nil), b.mounts...)

	graph := &PipGraph{pips: pips, edges: edges, order: order, mounts: mounts}
	if err := graph.checkAcyclic(); err != nil {
		return nil, err
	}
	return graph, nil
}

// checkAcyclic performs a depth-first cycle check over the dependency edges.
func (g *PipGraph) checkAcyclic() error {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[PipId]int, len(g.order))

	var visit func(id PipId) error
	visit = func(id PipId) error {
		switch state[id] {
		case visited:
			return nil
		case visiting:
			return errors.New("cycle detected in pip graph")
		}
		state[id] = visiting
		for _, dependent := range g.edges[id] {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		state[id] = visited
		return nil
	}

	for _, id := range g.order {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
