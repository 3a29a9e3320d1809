package graphcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pipforge/pipforge/pkg/fingerprint"
	"github.com/pipforge/pipforge/pkg/inputtracking"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/pipgraph"
)

func buildTestGraph(t *testing.T) *pipgraph.PipGraph {
	t.Helper()
	mounts := []pipgraph.Mount{{Name: "src", ResolvedPath: "/tmp/src", Access: pipgraph.MountAccessReadable}}
	builder := pipgraph.NewPipGraphBuilder(mounts)

	p1 := &pipgraph.Pip{
		Executable: "build",
		Inputs:     []pipgraph.FileDependency{{Mount: "src", Path: "a.c"}},
		Outputs:    []pipgraph.FileDependency{{Mount: "src", Path: "a.o"}},
	}
	p1.Id = pipgraph.ComputePipId(p1)

	p2 := &pipgraph.Pip{
		Executable: "link",
		Inputs:     []pipgraph.FileDependency{{Mount: "src", Path: "a.o"}},
		Outputs:    []pipgraph.FileDependency{{Mount: "src", Path: "a.out"}},
	}
	p2.Id = pipgraph.ComputePipId(p2)

	if err := builder.AddPip(p1); err != nil {
		t.Fatalf("AddPip p1: %v", err)
	}
	if err := builder.AddPip(p2); err != nil {
		t.Fatalf("AddPip p2: %v", err)
	}
	if err := builder.AddDependency(p1.Id, p2.Id); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	graph, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return graph
}

func TestSaveAndLoadLocal(t *testing.T) {
	dir := t.TempDir()
	storeDir := filepath.Join(dir, "store")
	store, err := NewDiskSharedStore(storeDir)
	if err != nil {
		t.Fatalf("NewDiskSharedStore: %v", err)
	}

	cache, err := New(filepath.Join(dir, "engine-cache"), store, false, logging.NewRootLogger(logging.LevelInfo))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	graph := buildTestGraph(t)
	gf := fingerprint.Compute(fingerprint.Inputs{})

	rules := inputtracking.NewRuleSet(nil)
	tracker := inputtracking.New(nil, rules, logging.NewRootLogger(logging.LevelInfo))

	if err := cache.Save(graph, gf, tracker); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := cache.FinalizePreviousInputs(); err != nil {
		t.Fatalf("FinalizePreviousInputs: %v", err)
	}

	loaded, err := cache.TryLoadLocal(gf)
	if err != nil {
		t.Fatalf("TryLoadLocal: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a cache hit, got nil")
	}
	if loaded.Len() != graph.Len() {
		t.Fatalf("expected %d pips, got %d", graph.Len(), loaded.Len())
	}
}

func TestTryLoadLocalEnvelopeMismatchIsMiss(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskSharedStore(filepath.Join(dir, "store"))
	if err != nil {
		t.Fatalf("NewDiskSharedStore: %v", err)
	}
	cache, err := New(filepath.Join(dir, "engine-cache"), store, false, logging.NewRootLogger(logging.LevelInfo))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	graph := buildTestGraph(t)
	gfA := fingerprint.Compute(fingerprint.Inputs{CommitId: "a"})
	gfB := fingerprint.Compute(fingerprint.Inputs{CommitId: "b"})

	rules := inputtracking.NewRuleSet(nil)
	tracker := inputtracking.New(nil, rules, logging.NewRootLogger(logging.LevelInfo))
	if err := cache.Save(graph, gfA, tracker); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := cache.TryLoadLocal(gfB)
	if err != nil {
		t.Fatalf("TryLoadLocal: %v", err)
	}
	if loaded != nil {
		t.Fatal("expected a miss for a mismatched fingerprint, got a hit")
	}
}

func TestTryFetchRemote(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskSharedStore(filepath.Join(dir, "store"))
	if err != nil {
		t.Fatalf("NewDiskSharedStore: %v", err)
	}

	producer, err := New(filepath.Join(dir, "producer-cache"), store, false, logging.NewRootLogger(logging.LevelInfo))
	if err != nil {
		t.Fatalf("New producer: %v", err)
	}
	consumer, err := New(filepath.Join(dir, "consumer-cache"), store, false, logging.NewRootLogger(logging.LevelInfo))
	if err != nil {
		t.Fatalf("New consumer: %v", err)
	}

	graph := buildTestGraph(t)
	gf := fingerprint.Compute(fingerprint.Inputs{})
	rules := inputtracking.NewRuleSet(nil)
	tracker := inputtracking.New(nil, rules, logging.NewRootLogger(logging.LevelInfo))
	if err := producer.Save(graph, gf, tracker); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "consumer-cache", pipGraphFileName)); err == nil {
		t.Fatal("consumer cache should not yet have a local copy")
	}

	loaded, hit, err := consumer.TryFetchRemote(gf)
	if err != nil {
		t.Fatalf("TryFetchRemote: %v", err)
	}
	if !hit {
		t.Fatal("expected a remote hit")
	}
	if loaded.Len() != graph.Len() {
		t.Fatalf("expected %d pips, got %d", graph.Len(), loaded.Len())
	}
}
