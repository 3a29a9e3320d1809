package inputtracking

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pipforge/pipforge/pkg/filecontent"
	"github.com/pipforge/pipforge/pkg/logging"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	logger := logging.NewRootLogger(logging.LevelDisabled)
	table := filecontent.New(logger)
	return New(table, NewRuleSet(nil), logger)
}

func TestCheckMatchReportsMatchWhenNothingChanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tracker := newTestTracker(t)
	if err := tracker.RegisterFileAccess(path); err != nil {
		t.Fatalf("RegisterFileAccess: %v", err)
	}

	result := tracker.CheckMatch(false, nil)
	if result.Kind != Match {
		t.Fatalf("CheckMatch.Kind = %v, want Match", result.Kind)
	}
}

func TestCheckMatchReportsPartialMatchWhenFileChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tracker := newTestTracker(t)
	if err := tracker.RegisterFileAccess(path); err != nil {
		t.Fatalf("RegisterFileAccess: %v", err)
	}

	if err := os.WriteFile(path, []byte("goodbye"), 0o644); err != nil {
		t.Fatalf("WriteFile (modify): %v", err)
	}

	result := tracker.CheckMatch(false, nil)
	if result.Kind != PartialMatch {
		t.Fatalf("CheckMatch.Kind = %v, want PartialMatch", result.Kind)
	}
	if len(result.ChangedFiles) != 1 || result.ChangedFiles[0] != path {
		t.Fatalf("CheckMatch.ChangedFiles = %v, want [%s]", result.ChangedFiles, path)
	}
}

func TestCheckMatchDetectsReappearanceOfAbsentPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.txt")

	tracker := newTestTracker(t)
	existence, err := tracker.ProbeExistence(path)
	if err != nil {
		t.Fatalf("ProbeExistence: %v", err)
	}
	if existence != ExistenceAbsent {
		t.Fatalf("ProbeExistence = %v, want ExistenceAbsent", existence)
	}

	if err := os.WriteFile(path, []byte("now it exists"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result := tracker.CheckMatch(false, nil)
	if result.Kind != PartialMatch {
		t.Fatalf("CheckMatch.Kind = %v, want PartialMatch", result.Kind)
	}
}

func TestCheckMatchDetectsDirectoryMembershipChange(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tracker := newTestTracker(t)
	if err := tracker.TrackDirectory(dir, nil); err != nil {
		t.Fatalf("TrackDirectory: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result := tracker.CheckMatch(false, nil)
	if result.Kind != Mismatch || result.Reason != MismatchReasonDirectoryChanged {
		t.Fatalf("CheckMatch = %+v, want Mismatch/MismatchReasonDirectoryChanged", result)
	}
}

func TestCheckMatchDetectsEnvVarChange(t *testing.T) {
	t.Setenv("PIPFORGE_TEST_VAR", "original")

	tracker := newTestTracker(t)
	if err := tracker.RegisterEnvVarRead("PIPFORGE_TEST_VAR"); err != nil {
		t.Fatalf("RegisterEnvVarRead: %v", err)
	}

	t.Setenv("PIPFORGE_TEST_VAR", "changed")

	result := tracker.CheckMatch(false, nil)
	if result.Kind != Mismatch || result.Reason != MismatchReasonEnvVarChanged {
		t.Fatalf("CheckMatch = %+v, want Mismatch/MismatchReasonEnvVarChanged", result)
	}
}

func TestFinishTrackingBuildParametersRejectsFurtherReads(t *testing.T) {
	tracker := newTestTracker(t)
	tracker.FinishTrackingBuildParameters()
	if err := tracker.RegisterEnvVarRead("PATH"); err == nil {
		t.Fatal("RegisterEnvVarRead after finish: expected error, got nil")
	}
}

func TestTrackDirectoryDisabledRuleRejectsEnumeration(t *testing.T) {
	dir := t.TempDir()
	logger := logging.NewRootLogger(logging.LevelDisabled)
	table := filecontent.New(logger)
	rules := NewRuleSet([]MembershipRule{{Root: dir, Kind: RuleDisableFilesystemEnumeration}})
	tracker := New(table, rules, logger)

	if err := tracker.TrackDirectory(dir, nil); err == nil {
		t.Fatal("TrackDirectory under a disabled-enumeration rule: expected error, got nil")
	}
}

func TestEnvironmentVariablesAndMountsSnapshot(t *testing.T) {
	t.Setenv("PIPFORGE_TEST_SNAPSHOT", "value")

	tracker := newTestTracker(t)
	if err := tracker.RegisterEnvVarRead("PIPFORGE_TEST_SNAPSHOT"); err != nil {
		t.Fatalf("RegisterEnvVarRead: %v", err)
	}
	tracker.RegisterMountLookup("src", "/tmp/src", true)
	tracker.RegisterMountLookup("missing", "", false)

	env := tracker.EnvironmentVariables()
	if env["PIPFORGE_TEST_SNAPSHOT"] != "value" {
		t.Fatalf("EnvironmentVariables() = %v, want PIPFORGE_TEST_SNAPSHOT=value", env)
	}

	mounts := tracker.Mounts()
	if mounts["src"] != "/tmp/src" {
		t.Fatalf("Mounts() = %v, want src=/tmp/src", mounts)
	}
	if _, ok := mounts["missing"]; ok {
		t.Fatal("Mounts() included an absent mount")
	}
}
