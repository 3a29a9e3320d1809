package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pipforge/pipforge/pkg/logging"
)

func TestHousekeepRemovesStaleDirectories(t *testing.T) {
	root := t.TempDir()

	stale := filepath.Join(root, "stale")
	fresh := filepath.Join(root, "fresh")
	if err := os.MkdirAll(stale, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(fresh, 0700); err != nil {
		t.Fatal(err)
	}

	oldTime := time.Now().Add(-2 * maximumEngineCacheAge)
	if err := os.Chtimes(stale, oldTime, oldTime); err != nil {
		t.Fatal(err)
	}

	Housekeep(root, logging.NewRootLogger(logging.LevelInfo))

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("expected stale directory to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("expected fresh directory to survive")
	}
}
