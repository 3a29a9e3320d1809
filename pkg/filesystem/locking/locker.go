package locking

import (
	"os"
	"sync"

	"github.com/pkg/errors"
)

// Locker provides file locking facilities. EngineDriver uses a Locker over
// the engine state directory to enforce the single-writer invariant required
// before mutating PreviousInputs or the graph cache.
type Locker struct {
	// file is the underlying file object to be locked.
	file *os.File
	// lock guards held.
	lock sync.Mutex
	// held records whether this locker currently holds the lock.
	held bool
}

// NewLocker attempts to create a lock with the file at the specified path,
// creating the file if necessary. The lock is returned in an unlocked state.
func NewLocker(path string, permissions os.FileMode) (*Locker, error) {
	mode := os.O_RDWR | os.O_CREATE | os.O_APPEND
	if file, err := os.OpenFile(path, mode, permissions); err != nil {
		return nil, errors.Wrap(err, "unable to open lock file")
	} else {
		return &Locker{file: file}, nil
	}
}

// Held returns whether or not this locker currently holds its lock.
func (l *Locker) Held() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.held
}

// Close releases the lock (if held) and closes the underlying file.
func (l *Locker) Close() error {
	l.lock.Lock()
	held := l.held
	l.lock.Unlock()
	if held {
		l.Unlock()
	}
	return l.file.Close()
}
