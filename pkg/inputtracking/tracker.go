// Package inputtracking implements InputTracker (C1): it records every
// path, directory enumeration, environment variable, and mount read during
// graph construction, and later reports whether any of them changed.
package inputtracking

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/pipforge/pipforge/pkg/filecontent"
	"github.com/pipforge/pipforge/pkg/filesystem"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/pipgraph"
)

// Existence is the result of ProbeExistence.
type Existence uint8

const (
	ExistenceAbsent Existence = iota
	ExistenceFile
	ExistenceDirectory
)

// DirectoryMember is one member of a tracked directory enumeration.
type DirectoryMember struct {
	Name        string
	IsDirectory bool
}

type trackedFile struct {
	identity  filesystem.Identity
	hash      pipgraph.ContentHash
	hashKnown bool
	absent    bool
}

type trackedDirectory struct {
	fingerprint pipgraph.ContentHash
}

type trackedEnvVar struct {
	value   string
	present bool
}

type trackedMount struct {
	resolvedPath string
	present      bool
}

// MatchKind is the outcome of CheckMatch.
type MatchKind uint8

const (
	Match MatchKind = iota
	PartialMatch
	Mismatch
)

// MismatchReason explains why a Mismatch occurred.
type MismatchReason string

const (
	MismatchReasonFileChanged      MismatchReason = "file-changed"
	MismatchReasonDirectoryChanged MismatchReason = "directory-changed"
	MismatchReasonEnvVarChanged    MismatchReason = "env-var-changed"
	MismatchReasonMountChanged     MismatchReason = "mount-changed"
	MismatchReasonUnableToDetect   MismatchReason = "unable-to-detect"
)

// CheckResult is the result of CheckMatch.
type CheckResult struct {
	Kind          MatchKind
	ChangedFiles  []string
	Reason        MismatchReason
	ReasonDetail  string
	Degraded      bool
}

// Tracker is InputTracker (C1). It is safe for concurrent use by multiple
// frontend goroutines recording reads during graph construction.
type Tracker struct {
	logger *logging.Logger
	table  *filecontent.Table
	rules  *RuleSet

	mu          sync.Mutex
	files       map[string]*trackedFile
	directories map[string]*trackedDirectory
	envVars     map[string]*trackedEnvVar
	mounts      map[string]*trackedMount
	order       []string // insertion order of files, for deterministic serialization

	finished bool // true after FinishTrackingBuildParameters
}

// New creates an empty Tracker backed by the given FileContentTable and
// directory-membership rule set.
func New(table *filecontent.Table, rules *RuleSet, logger *logging.Logger) *Tracker {
	return &Tracker{
		logger:      logger,
		table:       table,
		rules:       rules,
		files:       make(map[string]*trackedFile),
		directories: make(map[string]*trackedDirectory),
		envVars:     make(map[string]*trackedEnvVar),
		mounts:      make(map[string]*trackedMount),
	}
}

// RegisterFileAccess records a read of path. If the FileContentTable knows
// an unchanged identity for path, its hash is recorded immediately;
// otherwise the hash stays unknown until an explicit RecordFileHash call.
func (t *Tracker) RegisterFileAccess(path string) error {
	identity, hash, known, err := t.table.TryGetKnownHash(path)
	if err != nil {
		return fmt.Errorf("unable to register file access for %s: %w", path, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.files[path]; !exists {
		t.order = append(t.order, path)
	}
	t.files[path] = &trackedFile{identity: identity, hash: hash, hashKnown: known}
	return nil
}

// RecordFileHash records the content hash computed for path (the "slow
// path" hashing InputTracker schedules when the FileContentTable doesn't
// already know path's hash) and forwards it to the FileContentTable so
// future builds can skip rehashing.
func (t *Tracker) RecordFileHash(path string, hash pipgraph.ContentHash) error {
	identity, err := t.table.RecordContentHash(path, hash)
	if err != nil {
		return fmt.Errorf("unable to record file hash for %s: %w", path, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.files[path]; !exists {
		t.order = append(t.order, path)
	}
	t.files[path] = &trackedFile{identity: identity, hash: hash, hashKnown: true}
	return nil
}

// TrackDirectory records an enumeration of path. If members is non-nil, the
// tracker records exactly that list (e.g. supplied by a frontend that
// already enumerated for its own purposes); otherwise it enumerates path
// now via the standard library. The membership fingerprint excludes members
// filtered by the directory-membership-fingerprinter rule for path.
func (t *Tracker) TrackDirectory(path string, members []DirectoryMember) error {
	rule := t.rules.ruleFor(path)
	if rule != nil && rule.Kind == RuleDisableFilesystemEnumeration {
		return fmt.Errorf("enumeration of %s is disabled by rule", path)
	}

	if members == nil {
		entries, err := os.ReadDir(path)
		if err != nil {
			return fmt.Errorf("unable to enumerate %s: %w", path, err)
		}
		members = make([]DirectoryMember, 0, len(entries))
		for _, e := range entries {
			members = append(members, DirectoryMember{Name: e.Name(), IsDirectory: e.IsDir()})
		}
	}

	fingerprint := membershipFingerprint(members, rule)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.directories[path] = &trackedDirectory{fingerprint: fingerprint}
	return nil
}

// membershipFingerprint computes the order-independent hash of
// {(name, is_directory) : member} filtered by rule.
func membershipFingerprint(members []DirectoryMember, rule *MembershipRule) pipgraph.ContentHash {
	filtered := make([]DirectoryMember, 0, len(members))
	for _, m := range members {
		if rule.excluded(m.Name) {
			continue
		}
		filtered = append(filtered, m)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Name < filtered[j].Name })

	var buffer []byte
	for _, m := range filtered {
		buffer = append(buffer, m.Name...)
		buffer = append(buffer, 0)
		if m.IsDirectory {
			buffer = append(buffer, 1)
		} else {
			buffer = append(buffer, 0)
		}
	}
	return pipgraph.HashBytes(buffer)
}

// ProbeExistence probes path's existence, recording an anti-dependency if
// it is absent.
func (t *Tracker) ProbeExistence(path string) (Existence, error) {
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.mu.Lock()
			if _, exists := t.files[path]; !exists {
				t.order = append(t.order, path)
			}
			t.files[path] = &trackedFile{absent: true}
			t.mu.Unlock()
			return ExistenceAbsent, nil
		}
		return ExistenceAbsent, fmt.Errorf("unable to probe %s: %w", path, err)
	}
	if info.IsDir() {
		return ExistenceDirectory, nil
	}
	return ExistenceFile, nil
}

// TryGetHashForUnchangedFile performs a fast lookup of path's hash,
// consulting the prior run's assertions (i.e. whatever was registered via
// RegisterFileAccess or RecordFileHash this run, which itself consulted the
// FileContentTable carried over from the prior run).
func (t *Tracker) TryGetHashForUnchangedFile(path string) (pipgraph.ContentHash, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	f, ok := t.files[path]
	if !ok || !f.hashKnown {
		return pipgraph.ContentHash{}, false
	}
	return f.hash, true
}

// RegisterEnvVarRead records a read of an environment variable with its
// current value (or absence). It is a programming error to call this after
// FinishTrackingBuildParameters.
func (t *Tracker) RegisterEnvVarRead(name string) error {
	value, present := os.LookupEnv(name)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return fmt.Errorf("environment variable %q read after tracking was finished", name)
	}
	t.envVars[name] = &trackedEnvVar{value: value, present: present}
	return nil
}

// RegisterMountLookup records a lookup of a named mount with its resolved
// path (or absence).
func (t *Tracker) RegisterMountLookup(name, resolvedPath string, present bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mounts[name] = &trackedMount{resolvedPath: resolvedPath, present: present}
}

// FinishTrackingBuildParameters forbids any further environment-variable
// registrations, enforcing that no read is counted as "used by
// configuration" after fingerprinting has begun (spec.md §5).
func (t *Tracker) FinishTrackingBuildParameters() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.finished = true
}

// EnvironmentVariables returns a snapshot of the tracked environment
// variables, keyed by name; variables that were absent are omitted.
func (t *Tracker) EnvironmentVariables() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make(map[string]string, len(t.envVars))
	for name, e := range t.envVars {
		if e.present {
			result[name] = e.value
		}
	}
	return result
}

// Mounts returns a snapshot of the tracked mount lookups.
func (t *Tracker) Mounts() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make(map[string]string, len(t.mounts))
	for name, m := range t.mounts {
		if m.present {
			result[name] = m.resolvedPath
		}
	}
	return result
}

// CheckMatch compares this (the prior run's) tracker state against the
// current filesystem and environment, implementing the change-detection
// algorithm of spec.md §4.1. journalAvailable indicates whether a
// filesystem change journal scan already ran, and journalChanged holds the
// paths it reported as changed. When journalAvailable is true and
// journalChanged is empty, CheckMatch returns Match immediately without
// re-touching the filesystem; when it is true and journalChanged is not
// empty, only the tracked files named in journalChanged are re-checked.
func (t *Tracker) CheckMatch(journalAvailable bool, journalChanged map[string]bool) CheckResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	if journalAvailable && len(journalChanged) == 0 {
		return CheckResult{Kind: Match}
	}

	var changed []string
	degraded := !journalAvailable

	for path, prior := range t.files {
		if journalAvailable {
			if !journalChanged[path] {
				continue
			}
		}
		if prior.absent {
			if _, err := os.Lstat(path); err == nil {
				changed = append(changed, path)
			}
			continue
		}
		identity, err := filesystem.QueryIdentity(path)
		if err != nil {
			return CheckResult{Kind: Mismatch, Reason: MismatchReasonUnableToDetect, ReasonDetail: err.Error()}
		}
		if identity.Supported && prior.identity.Supported && identity.Equal(prior.identity) {
			continue
		}
		// Identity mismatched (or is unsupported on this filesystem): fall
		// back to hashing before declaring the file changed, so a renamed or
		// retouched-but-byte-identical file doesn't spuriously invalidate
		// the graph (spec.md §4.1 step 2, §3's file strategy).
		if prior.hashKnown {
			hash, err := pipgraph.HashFile(path)
			if err != nil {
				return CheckResult{Kind: Mismatch, Reason: MismatchReasonUnableToDetect, ReasonDetail: err.Error()}
			}
			if hash.Equal(prior.hash) {
				continue
			}
		}
		changed = append(changed, path)
	}

	for path, prior := range t.directories {
		members, err := enumerateForCheck(path)
		if err != nil {
			return CheckResult{Kind: Mismatch, Reason: MismatchReasonUnableToDetect, ReasonDetail: err.Error()}
		}
		fingerprint := membershipFingerprint(members, t.rules.ruleFor(path))
		if !fingerprint.Equal(prior.fingerprint) {
			return CheckResult{Kind: Mismatch, Reason: MismatchReasonDirectoryChanged, ReasonDetail: path}
		}
	}

	for name, prior := range t.envVars {
		value, present := os.LookupEnv(name)
		if present != prior.present || value != prior.value {
			return CheckResult{Kind: Mismatch, Reason: MismatchReasonEnvVarChanged, ReasonDetail: name}
		}
	}

	if len(changed) > 0 {
		sort.Strings(changed)
		return CheckResult{Kind: PartialMatch, ChangedFiles: changed, Degraded: degraded}
	}

	return CheckResult{Kind: Match, Degraded: degraded}
}

func enumerateForCheck(path string) ([]DirectoryMember, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	members := make([]DirectoryMember, 0, len(entries))
	for _, e := range entries {
		members = append(members, DirectoryMember{Name: e.Name(), IsDirectory: e.IsDir()})
	}
	return members, nil
}

// ErrNoEntries is returned by checks that require at least one tracked
// input when none were recorded.
var ErrNoEntries = errors.New("no tracked inputs")
