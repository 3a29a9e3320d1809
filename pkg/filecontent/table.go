// Package filecontent implements the FileContentTable (C2): a persistent
// mapping from FileIdentity to ContentHash that lets InputTracker skip
// rehashing files whose filesystem-reported identity has not changed since
// the last time their content was hashed.
package filecontent

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/pipforge/pipforge/pkg/encoding"
	"github.com/pipforge/pipforge/pkg/filesystem"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/pipgraph"
	"github.com/pipforge/pipforge/pkg/wireproto"
)

// defaultTTL is the number of builds an entry survives without being
// consulted before it is evicted.
const defaultTTL = 50

// identityKey renders a filesystem.Identity as a stable map key.
func identityKey(id filesystem.Identity) string {
	return strconv.FormatUint(id.VolumeID, 36) + ":" + strconv.FormatUint(id.FileID, 36)
}

// entry is the in-memory form of a FileContentTable row.
type entry struct {
	identity filesystem.Identity
	hash     pipgraph.ContentHash
	ttl      uint32
	touched  bool
}

// Table is the FileContentTable. It is safe for concurrent use: readers and
// writers may operate concurrently (spec.md §5), and Save copies the entries
// under a read lock, so it persists a consistent view while excluding writers.
//
// If the underlying filesystem cannot report stable identities (identity
// queries always come back unsupported), the table degrades to a stub:
// every lookup reports "unknown" and callers must hash unconditionally
// (spec.md §4.2's invariant).
type Table struct {
	logger *logging.Logger

	mu      sync.RWMutex
	entries map[string]*entry
	stub    bool
}

// New creates an empty, non-stub FileContentTable.
func New(logger *logging.Logger) *Table {
	return &Table{logger: logger, entries: make(map[string]*entry)}
}

// NewStub creates a FileContentTable that always reports "unknown", for use
// when the underlying filesystem does not support stable file identities.
func NewStub(logger *logging.Logger) *Table {
	return &Table{logger: logger, entries: make(map[string]*entry), stub: true}
}

// IsStub reports whether the table is operating in degraded stub mode.
func (t *Table) IsStub() bool {
	return t.stub
}

// TryGetKnownHash looks up the content hash recorded for path's current
// filesystem identity. It returns the queried identity, the hash, and
// whether a hash was found. A found entry is marked as used, so the next
// AgeAndEvict does not decrement its TTL.
func (t *Table) TryGetKnownHash(path string) (filesystem.Identity, pipgraph.ContentHash, bool, error) {
	identity, err := filesystem.QueryIdentity(path)
	if err != nil {
		return filesystem.Identity{}, pipgraph.ContentHash{}, false, fmt.Errorf("unable to query identity: %w", err)
	}
	if t.stub || !identity.Supported {
		return identity, pipgraph.ContentHash{}, false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	key := identityKey(identity)
	e, ok := t.entries[key]
	if !ok || !e.identity.Equal(identity) {
		return identity, pipgraph.ContentHash{}, false, nil
	}
	e.touched = true
	return identity, e.hash, true, nil
}

// RecordContentHash records the content hash for path's current filesystem
// identity, overwriting any prior entry for that identity. The invariant
// this upholds (spec.md §3) is that a hash reported for identity X was
// recorded while the file's observable identity actually was X: callers must
// query the identity and compute the hash without an intervening
// modification, which is the caller's (InputTracker's) responsibility.
func (t *Table) RecordContentHash(path string, hash pipgraph.ContentHash) (filesystem.Identity, error) {
	identity, err := filesystem.QueryIdentity(path)
	if err != nil {
		return filesystem.Identity{}, fmt.Errorf("unable to query identity: %w", err)
	}
	if t.stub || !identity.Supported {
		return identity, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[identityKey(identity)] = &entry{
		identity: identity,
		hash:     hash,
		ttl:      defaultTTL,
		touched:  true,
	}
	return identity, nil
}

// AgeAndEvict decrements the TTL of every entry that was not touched since
// the last call to AgeAndEvict, evicting any entry whose TTL reaches zero.
// The build command calls this once per build, just before saving the table
// (spec.md §4.2: "entries whose TTL expires without use are evicted").
func (t *Table) AgeAndEvict() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for key, e := range t.entries {
		if e.touched {
			e.touched = false
			continue
		}
		if e.ttl == 0 {
			delete(t.entries, key)
			continue
		}
		e.ttl--
		if e.ttl == 0 {
			delete(t.entries, key)
		}
	}
}

// Len returns the number of entries currently held.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Load populates the table from a FileContentTable.bin file at path. A
// missing file is not an error; the table simply starts empty.
func Load(path string, logger *logging.Logger) (*Table, error) {
	table := New(logger)

	message := &wireproto.FileContentTable{}
	if err := encoding.LoadAndUnmarshalProtobuf(path, message); err != nil {
		if os.IsNotExist(err) {
			return table, nil
		}
		return nil, fmt.Errorf("unable to load file content table: %w", err)
	}

	for key, persisted := range message.Entries {
		table.entries[key] = &entry{
			identity: filesystem.Identity{
				Supported: true,
				VolumeID:  persisted.VolumeId,
				FileID:    persisted.FileId,
				USN:       persisted.Usn,
			},
			hash: bytesToHash(persisted.Hash),
			ttl:  persisted.Ttl,
		}
	}
	return table, nil
}

// Save persists the table to path.
func (t *Table) Save(path string) error {
	t.mu.RLock()
	message := &wireproto.FileContentTable{Entries: make(map[string]*wireproto.FileContentEntry, len(t.entries))}
	for key, e := range t.entries {
		hash := e.hash
		message.Entries[key] = &wireproto.FileContentEntry{
			VolumeId: e.identity.VolumeID,
			FileId:   e.identity.FileID,
			Usn:      e.identity.USN,
			Hash:     hash[:],
			Ttl:      e.ttl,
		}
	}
	t.mu.RUnlock()

	if err := encoding.MarshalAndSaveProtobuf(path, message); err != nil {
		return fmt.Errorf("unable to save file content table: %w", err)
	}
	return nil
}

func bytesToHash(b []byte) pipgraph.ContentHash {
	var h pipgraph.ContentHash
	copy(h[:], b)
	return h
}
