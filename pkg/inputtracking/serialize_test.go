package inputtracking

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pipforge/pipforge/pkg/logging"
)

func TestWriteToAndReadFromRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tracker := newTestTracker(t)
	if err := tracker.RegisterFileAccess(file); err != nil {
		t.Fatalf("RegisterFileAccess: %v", err)
	}
	if err := tracker.TrackDirectory(dir, nil); err != nil {
		t.Fatalf("TrackDirectory: %v", err)
	}
	tracker.RegisterMountLookup("src", "/tmp/src", true)

	snapshotPath := filepath.Join(t.TempDir(), "PreviousInputs.bin")
	if err := tracker.WriteTo(snapshotPath); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	loaded, err := ReadFrom(snapshotPath, NewRuleSet(nil), logging.NewRootLogger(logging.LevelDisabled))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if result := loaded.CheckMatch(false, nil); result.Kind != Match {
		t.Fatalf("CheckMatch on round-tripped tracker = %v, want Match", result.Kind)
	}
	if mounts := loaded.Mounts(); mounts["src"] != "/tmp/src" {
		t.Fatalf("Mounts() after round trip = %v, want src=/tmp/src", mounts)
	}
}

func TestReadFromMissingFileReturnsNotExist(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadFrom(filepath.Join(dir, "missing.bin"), NewRuleSet(nil), logging.NewRootLogger(logging.LevelDisabled))
	if !os.IsNotExist(err) {
		t.Fatalf("ReadFrom missing file: err = %v, want os.IsNotExist", err)
	}
}
