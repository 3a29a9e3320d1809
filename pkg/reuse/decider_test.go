package reuse

import (
	"path/filepath"
	"testing"

	"github.com/pipforge/pipforge/pkg/fingerprint"
	"github.com/pipforge/pipforge/pkg/graphcache"
	"github.com/pipforge/pipforge/pkg/inputtracking"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/pipgraph"
)

func buildOnePipGraph(t *testing.T) *pipgraph.PipGraph {
	t.Helper()
	builder := pipgraph.NewPipGraphBuilder(nil)
	p := &pipgraph.Pip{Executable: "build"}
	p.Id = pipgraph.ComputePipId(p)
	if err := builder.AddPip(p); err != nil {
		t.Fatalf("AddPip: %v", err)
	}
	graph, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return graph
}

func TestDecideMissWithNoPriorState(t *testing.T) {
	dir := t.TempDir()
	store, err := graphcache.NewDiskSharedStore(filepath.Join(dir, "store"))
	if err != nil {
		t.Fatalf("NewDiskSharedStore: %v", err)
	}
	cache, err := graphcache.New(filepath.Join(dir, "engine-cache"), store, false, logging.NewRootLogger(logging.LevelInfo))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	decider := New(cache, logging.NewRootLogger(logging.LevelInfo))
	gf := fingerprint.Compute(fingerprint.Inputs{})

	decision := decider.Decide(gf, Options{
		PreviousInputsPath: filepath.Join(dir, "engine-cache", "PreviousInputs"),
		Rules:              inputtracking.NewRuleSet(nil),
	})

	if decision.Kind != Miss {
		t.Fatalf("expected Miss, got %v", decision.Kind)
	}
	if decision.Reason != MissReasonNoPriorInputs {
		t.Fatalf("expected MissReasonNoPriorInputs, got %v", decision.Reason)
	}
}

func TestDecideFullReuseAfterSave(t *testing.T) {
	dir := t.TempDir()
	store, err := graphcache.NewDiskSharedStore(filepath.Join(dir, "store"))
	if err != nil {
		t.Fatalf("NewDiskSharedStore: %v", err)
	}
	engineCacheDir := filepath.Join(dir, "engine-cache")
	cache, err := graphcache.New(engineCacheDir, store, false, logging.NewRootLogger(logging.LevelInfo))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	graph := buildOnePipGraph(t)
	gf := fingerprint.Compute(fingerprint.Inputs{})
	rules := inputtracking.NewRuleSet(nil)
	tracker := inputtracking.New(nil, rules, logging.NewRootLogger(logging.LevelInfo))

	if err := cache.Save(graph, gf, tracker); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := cache.FinalizePreviousInputs(); err != nil {
		t.Fatalf("FinalizePreviousInputs: %v", err)
	}

	decider := New(cache, logging.NewRootLogger(logging.LevelInfo))
	decision := decider.Decide(gf, Options{
		PreviousInputsPath: filepath.Join(engineCacheDir, "PreviousInputs"),
		Rules:              rules,
	})

	if decision.Kind != FullReuse {
		t.Fatalf("expected FullReuse, got %v (reason %v)", decision.Kind, decision.Reason)
	}
	if decision.Graph == nil || decision.Graph.Len() != 1 {
		t.Fatalf("expected a loaded graph with 1 pip, got %+v", decision.Graph)
	}
}
