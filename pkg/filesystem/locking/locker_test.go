package locking

import (
	"os"
	"testing"
)

// TestLockerFailOnDirectory tests that a locker creation fails for a directory.
func TestLockerFailOnDirectory(t *testing.T) {
	if _, err := NewLocker(t.TempDir(), 0600); err == nil {
		t.Fatal("creating a locker on a directory path succeeded")
	}
}

// TestLockerCycle tests the lifecycle of a Locker.
func TestLockerCycle(t *testing.T) {
	lockfile, err := os.CreateTemp("", "pipforge_filesystem_lock")
	if err != nil {
		t.Fatal("unable to create temporary lock file:", err)
	} else if err = lockfile.Close(); err != nil {
		t.Error("unable to close temporary lock file:", err)
	}
	defer os.Remove(lockfile.Name())

	locker, err := NewLocker(lockfile.Name(), 0600)
	if err != nil {
		t.Fatal("unable to create locker:", err)
	}

	if err := locker.Lock(true); err != nil {
		t.Fatal("unable to acquire lock:", err)
	}

	if !locker.Held() {
		t.Error("lock incorrectly reported as unlocked")
	}

	if err := locker.Unlock(); err != nil {
		t.Fatal("unable to release lock:", err)
	}

	if err := locker.Close(); err != nil {
		t.Fatal("unable to close locker:", err)
	}
}

// TestLockDuplicateFail tests that a second locker on the same file fails to
// acquire a non-blocking lock while the first holds it, which is the
// invariant EngineDriver relies on to refuse a second concurrent build
// against the same state directory.
func TestLockDuplicateFail(t *testing.T) {
	lockfile, err := os.CreateTemp("", "pipforge_filesystem_lock")
	if err != nil {
		t.Fatal("unable to create temporary lock file:", err)
	} else if err = lockfile.Close(); err != nil {
		t.Error("unable to close temporary lock file:", err)
	}
	defer os.Remove(lockfile.Name())

	first, err := NewLocker(lockfile.Name(), 0600)
	if err != nil {
		t.Fatal("unable to create first locker:", err)
	}
	if err := first.Lock(true); err != nil {
		t.Fatal("unable to acquire first lock:", err)
	}
	defer first.Close()

	second, err := NewLocker(lockfile.Name(), 0600)
	if err != nil {
		t.Fatal("unable to create second locker:", err)
	}
	defer second.Close()

	if err := second.Lock(false); err == nil {
		t.Error("second non-blocking lock acquisition succeeded unexpectedly")
	}
}
