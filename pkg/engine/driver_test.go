package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pipforge/pipforge/pkg/logging"
)

func TestRunFullSequence(t *testing.T) {
	dir := t.TempDir()
	options := Options{
		ObjectDirectory:      filepath.Join(dir, "objects"),
		CacheDirectory:       filepath.Join(dir, "cache"),
		EngineCacheDirectory: filepath.Join(dir, "engine-cache"),
		LogDirectory:         filepath.Join(dir, "logs"),
	}
	driver := New(options, logging.NewRootLogger(logging.LevelInfo))

	var seen []Phase
	hooks := Hooks{
		Config:   func(ctx context.Context) error { seen = append(seen, PhaseConfig); return nil },
		Parse:    func(ctx context.Context) error { seen = append(seen, PhaseParse); return nil },
		Evaluate: func(ctx context.Context) error { seen = append(seen, PhaseEvaluate); return nil },
		Schedule: func(ctx context.Context) error { seen = append(seen, PhaseSchedule); return nil },
		Execute:  func(ctx context.Context) error { seen = append(seen, PhaseExecute); return nil },
	}

	if err := driver.Run(context.Background(), hooks); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !driver.Success() {
		t.Fatal("expected success")
	}
	if driver.CurrentPhase() != PhaseDone {
		t.Fatalf("expected PhaseDone, got %v", driver.CurrentPhase())
	}
	want := []Phase{PhaseConfig, PhaseParse, PhaseEvaluate, PhaseSchedule, PhaseExecute}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, seen)
		}
	}
}

func TestRunStopsAtFailedPhase(t *testing.T) {
	dir := t.TempDir()
	options := Options{
		ObjectDirectory:      filepath.Join(dir, "objects"),
		CacheDirectory:       filepath.Join(dir, "cache"),
		EngineCacheDirectory: filepath.Join(dir, "engine-cache"),
		LogDirectory:         filepath.Join(dir, "logs"),
	}
	driver := New(options, logging.NewRootLogger(logging.LevelInfo))

	executeCalled := false
	hooks := Hooks{
		Evaluate: func(ctx context.Context) error { return errBoom },
		Execute:  func(ctx context.Context) error { executeCalled = true; return nil },
	}

	if err := driver.Run(context.Background(), hooks); err == nil {
		t.Fatal("expected an error")
	}
	if driver.Success() {
		t.Fatal("expected failure flag to be set")
	}
	if executeCalled {
		t.Fatal("execute phase must not run after an earlier phase fails")
	}
}

func TestRunEvaluateOnlyStopsEarly(t *testing.T) {
	dir := t.TempDir()
	options := Options{
		ObjectDirectory:      filepath.Join(dir, "objects"),
		CacheDirectory:       filepath.Join(dir, "cache"),
		EngineCacheDirectory: filepath.Join(dir, "engine-cache"),
		LogDirectory:         filepath.Join(dir, "logs"),
		EvaluateOnly:         true,
	}
	driver := New(options, logging.NewRootLogger(logging.LevelInfo))

	executeCalled := false
	hooks := Hooks{
		Execute: func(ctx context.Context) error { executeCalled = true; return nil },
	}

	if err := driver.Run(context.Background(), hooks); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if executeCalled {
		t.Fatal("execute phase must not run in evaluate-only mode")
	}
}

var errBoom = errTest("boom")

type errTest string

func (e errTest) Error() string { return string(e) }
