package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFilePassesThroughNotExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	if !os.IsNotExist(err) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
}

func TestLoadParsesNestedConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	contents := `
engine:
  objectDirectory: /tmp/objects
  lockTimeoutSeconds: 45
  partialReuseEnabled: true
cache:
  compress: true
distribution:
  requiredWorkers: 2
  lowWorkersWarningThreshold: 1
mounts:
  - name: src
    path: /workspace/src
    access: read
`
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.ObjectDirectory != "/tmp/objects" {
		t.Fatalf("unexpected object directory: %q", cfg.Engine.ObjectDirectory)
	}
	if cfg.Engine.LockTimeoutSeconds != 45 {
		t.Fatalf("unexpected lock timeout: %d", cfg.Engine.LockTimeoutSeconds)
	}
	if !cfg.Engine.PartialReuseEnabled {
		t.Fatal("expected partial reuse enabled")
	}
	if !cfg.Cache.Compress {
		t.Fatal("expected cache compression enabled")
	}
	if cfg.Distribution.RequiredWorkers != 2 {
		t.Fatalf("unexpected required workers: %d", cfg.Distribution.RequiredWorkers)
	}
	if len(cfg.Mounts) != 1 || cfg.Mounts[0].Name != "src" {
		t.Fatalf("unexpected mounts: %+v", cfg.Mounts)
	}
}
