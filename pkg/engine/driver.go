// Package engine implements EngineDriver (C6): the state machine that
// sequences a build through its phases, holding the exclusive directory
// locks and coordinating the asynchronous cache initialization and
// background task completion the spec requires before the process exits.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pipforge/pipforge/pkg/filesystem/locking"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/state"
)

// Options configures a Driver's directory layout and lock acquisition
// behavior.
type Options struct {
	ObjectDirectory     string
	CacheDirectory      string
	EngineCacheDirectory string
	LogDirectory        string

	// LockPollInterval and LockTimeout govern exclusive folder lock
	// acquisition: the driver polls at LockPollInterval up to LockTimeout
	// before treating acquisition as a fatal failure (spec.md §4.6).
	LockPollInterval time.Duration
	LockTimeout      time.Duration

	// CleanOnly stops the sequence after PhaseSchedule.
	CleanOnly bool
	// EvaluateOnly stops the sequence after PhaseEvaluate.
	EvaluateOnly bool
}

func (o Options) lockPollInterval() time.Duration {
	if o.LockPollInterval > 0 {
		return o.LockPollInterval
	}
	return 100 * time.Millisecond
}

func (o Options) lockTimeout() time.Duration {
	if o.LockTimeout > 0 {
		return o.LockTimeout
	}
	return 30 * time.Second
}

// Hooks are the per-phase callbacks a caller supplies; Driver.Run invokes
// exactly the ones needed to reach the configured stopping point, in order,
// stopping at the first one that returns an error.
type Hooks struct {
	Config        func(ctx context.Context) error
	Parse         func(ctx context.Context) error
	Evaluate      func(ctx context.Context) error
	Schedule      func(ctx context.Context) error
	Execute       func(ctx context.Context) error
	// InitializeCache is launched asynchronously as soon as locks are held
	// and output directories exist; Run waits for its goroutine to return
	// before Execute runs, and fails the build if it returned an error.
	InitializeCache func(ctx context.Context) error
}

// Driver is EngineDriver (C6).
type Driver struct {
	logger  *logging.Logger
	options Options

	objectLock *locking.Locker
	cacheLock  *locking.Locker

	phaseTracker *state.Tracker
	phase        Phase
	phaseMu      sync.Mutex

	successMu sync.Mutex
	success   bool
	errorLogged bool

	background sync.WaitGroup

	cacheInitErr error
	cacheInitWg  sync.WaitGroup
}

// New creates a Driver. It does not acquire locks or create directories;
// call Run to do so.
func New(options Options, logger *logging.Logger) *Driver {
	return &Driver{
		logger:       logger,
		options:      options,
		phaseTracker: state.NewTracker(),
		success:      true,
	}
}

// CurrentPhase returns the phase most recently started.
func (d *Driver) CurrentPhase() Phase {
	d.phaseMu.Lock()
	defer d.phaseMu.Unlock()
	return d.phase
}

// WaitForPhaseChange polls the phase tracker, for callers that want to
// observe build progress (e.g. a status command) without driving the build
// itself.
func (d *Driver) WaitForPhaseChange(ctx context.Context, previousIndex uint64) (uint64, error) {
	return d.phaseTracker.WaitForChange(ctx, previousIndex)
}

func (d *Driver) setPhase(p Phase) {
	d.phaseMu.Lock()
	d.phase = p
	d.phaseMu.Unlock()
	d.phaseTracker.NotifyOfChange()
	d.logger.Infof("phase start: %s", p)
}

// Go launches a background task (graph-to-cache put, execution-log copy,
// previous-inputs copy) that Run guarantees to await before returning on
// every exit path, including failure paths. An unawaited task is a
// correctness bug per spec.md §4.6: its effects could race a subsequent
// build.
func (d *Driver) Go(name string, fn func() error) {
	d.background.Add(1)
	go func() {
		defer d.background.Done()
		if err := fn(); err != nil {
			d.logger.Errorf("background task %q failed: %v", name, err)
			d.fail()
		}
	}()
}

func (d *Driver) fail() {
	d.successMu.Lock()
	d.success = false
	d.errorLogged = true
	d.successMu.Unlock()
}

// Success reports the driver's monotonic success flag. Once false, it never
// becomes true again for this Driver instance.
func (d *Driver) Success() bool {
	d.successMu.Lock()
	defer d.successMu.Unlock()
	return d.success
}

// acquireLocks acquires the object and engine-cache exclusive folder locks,
// polling at LockPollInterval up to LockTimeout.
func (d *Driver) acquireLocks() error {
	objectLockPath := filepath.Join(d.options.ObjectDirectory, ".lock")
	cacheLockPath := filepath.Join(d.options.EngineCacheDirectory, ".lock")

	objectLock, err := d.acquireOne(objectLockPath)
	if err != nil {
		return fmt.Errorf("unable to lock object directory: %w", err)
	}
	d.objectLock = objectLock

	cacheLock, err := d.acquireOne(cacheLockPath)
	if err != nil {
		d.objectLock.Close()
		d.objectLock = nil
		return fmt.Errorf("unable to lock engine cache directory: %w", err)
	}
	d.cacheLock = cacheLock

	return nil
}

func (d *Driver) acquireOne(path string) (*locking.Locker, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	locker, err := locking.NewLocker(path, 0600)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(d.options.lockTimeout())
	for {
		if err := locker.Lock(false); err == nil {
			return locker, nil
		}
		if time.Now().After(deadline) {
			locker.Close()
			return nil, fmt.Errorf("timed out acquiring lock on %s", path)
		}
		time.Sleep(d.options.lockPollInterval())
	}
}

// releaseLocks releases any locks held, in reverse acquisition order.
func (d *Driver) releaseLocks() {
	if d.cacheLock != nil {
		d.cacheLock.Close()
		d.cacheLock = nil
	}
	if d.objectLock != nil {
		d.objectLock.Close()
		d.objectLock = nil
	}
}

// createDirectories creates the object, cache, engine-cache, and log
// directories. On any failure, it removes whatever it created.
func (d *Driver) createDirectories() error {
	created := make([]string, 0, 4)
	dirs := []string{
		d.options.ObjectDirectory,
		d.options.CacheDirectory,
		d.options.EngineCacheDirectory,
		d.options.LogDirectory,
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			for _, c := range created {
				os.RemoveAll(c)
			}
			return fmt.Errorf("unable to create %s: %w", dir, err)
		}
		created = append(created, dir)
	}
	return nil
}

// Run sequences the build through its phases, acquiring locks and creating
// directories first, initializing the cache asynchronously, and awaiting
// every background task on every exit path.
func (d *Driver) Run(ctx context.Context, hooks Hooks) error {
	d.setPhase(PhaseNone)

	if err := d.acquireLocks(); err != nil {
		d.fail()
		return err
	}
	defer d.releaseLocks()

	if err := d.createDirectories(); err != nil {
		d.fail()
		return err
	}

	if hooks.InitializeCache != nil {
		d.cacheInitWg.Add(1)
		go func() {
			defer d.cacheInitWg.Done()
			d.cacheInitErr = hooks.InitializeCache(ctx)
		}()
	}
	// Every return path below must await this, not just the full-execute
	// path: an unawaited InitializeCache goroutine can still be writing to
	// the cache directory after locks are released, racing a subsequent
	// build (spec.md §4.6).
	defer d.cacheInitWg.Wait()

	defer d.background.Wait()

	d.setPhase(PhaseConfig)
	if hooks.Config != nil {
		if err := hooks.Config(ctx); err != nil {
			d.fail()
			return fmt.Errorf("config phase failed: %w", err)
		}
	}

	d.setPhase(PhaseParse)
	if hooks.Parse != nil {
		if err := hooks.Parse(ctx); err != nil {
			d.fail()
			return fmt.Errorf("parse phase failed: %w", err)
		}
	}

	d.setPhase(PhaseEvaluate)
	if hooks.Evaluate != nil {
		if err := hooks.Evaluate(ctx); err != nil {
			d.fail()
			return fmt.Errorf("evaluate phase failed: %w", err)
		}
	}
	if d.options.EvaluateOnly {
		d.setPhase(PhaseDone)
		return nil
	}

	d.setPhase(PhaseSchedule)
	if hooks.Schedule != nil {
		if err := hooks.Schedule(ctx); err != nil {
			d.fail()
			return fmt.Errorf("schedule phase failed: %w", err)
		}
	}
	if d.options.CleanOnly {
		d.setPhase(PhaseDone)
		return nil
	}

	d.cacheInitWg.Wait()
	if d.cacheInitErr != nil {
		d.fail()
		return fmt.Errorf("cache initialization failed: %w", d.cacheInitErr)
	}

	d.setPhase(PhaseExecute)
	if hooks.Execute != nil {
		if err := hooks.Execute(ctx); err != nil {
			d.fail()
			return fmt.Errorf("execute phase failed: %w", err)
		}
	}

	d.setPhase(PhaseDone)
	return nil
}
