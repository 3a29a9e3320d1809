package filecontent

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/pipgraph"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	return logging.NewRootLogger(logging.LevelDisabled)
}

func TestTableRecordAndLookupRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	table := New(testLogger(t))
	hash := pipgraph.HashBytes([]byte("hello"))
	if _, err := table.RecordContentHash(path, hash); err != nil {
		t.Fatalf("RecordContentHash: %v", err)
	}

	_, got, ok, err := table.TryGetKnownHash(path)
	if err != nil {
		t.Fatalf("TryGetKnownHash: %v", err)
	}
	if !ok {
		t.Fatal("TryGetKnownHash: ok = false, want true")
	}
	if !got.Equal(hash) {
		t.Fatalf("TryGetKnownHash hash = %v, want %v", got, hash)
	}
}

func TestTableMissesAfterContentModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	table := New(testLogger(t))
	if _, err := table.RecordContentHash(path, pipgraph.HashBytes([]byte("hello"))); err != nil {
		t.Fatalf("RecordContentHash: %v", err)
	}

	// Modifying the file's mtime changes its identity's USN component, so
	// the table must no longer recognize it as the identity it hashed.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	_, _, ok, err := table.TryGetKnownHash(path)
	if err != nil {
		t.Fatalf("TryGetKnownHash: %v", err)
	}
	if ok {
		t.Fatal("TryGetKnownHash: ok = true after modification, want false")
	}
}

func TestStubTableAlwaysMisses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	table := NewStub(testLogger(t))
	if !table.IsStub() {
		t.Fatal("IsStub() = false, want true")
	}
	if _, err := table.RecordContentHash(path, pipgraph.HashBytes([]byte("hello"))); err != nil {
		t.Fatalf("RecordContentHash: %v", err)
	}
	_, _, ok, err := table.TryGetKnownHash(path)
	if err != nil {
		t.Fatalf("TryGetKnownHash: %v", err)
	}
	if ok {
		t.Fatal("stub table reported a known hash, want always-miss")
	}
}

func TestTableAgeAndEvict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	table := New(testLogger(t))
	if _, err := table.RecordContentHash(path, pipgraph.HashBytes([]byte("hello"))); err != nil {
		t.Fatalf("RecordContentHash: %v", err)
	}
	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}

	for i := 0; i < defaultTTL+1; i++ {
		table.AgeAndEvict()
	}
	if table.Len() != 0 {
		t.Fatalf("Len() after aging past TTL = %d, want 0", table.Len())
	}
}

func TestTableSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	table := New(testLogger(t))
	hash := pipgraph.HashBytes([]byte("hello"))
	if _, err := table.RecordContentHash(file, hash); err != nil {
		t.Fatalf("RecordContentHash: %v", err)
	}

	savePath := filepath.Join(dir, "FileContentTable.bin")
	if err := table.Save(savePath); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(savePath, testLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 1 {
		t.Fatalf("loaded Len() = %d, want 1", loaded.Len())
	}
	_, got, ok, err := loaded.TryGetKnownHash(file)
	if err != nil {
		t.Fatalf("TryGetKnownHash after load: %v", err)
	}
	if !ok || !got.Equal(hash) {
		t.Fatalf("TryGetKnownHash after load = (%v, %v), want (%v, true)", got, ok, hash)
	}
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	table, err := Load(filepath.Join(dir, "does-not-exist.bin"), testLogger(t))
	if err != nil {
		t.Fatalf("Load of missing file: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", table.Len())
	}
}
