// Package graphcache implements GraphCache (C4): a two-level cache for
// serialized PipGraphs, backed by a local engine-cache directory and a
// shared content store keyed by ExactFingerprint.
package graphcache

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	proto "github.com/golang/protobuf/proto"

	"github.com/pipforge/pipforge/pkg/filesystem"
	"github.com/pipforge/pipforge/pkg/fingerprint"
	"github.com/pipforge/pipforge/pkg/inputtracking"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/pipgraph"
	"github.com/pipforge/pipforge/pkg/wireproto"
)

const (
	pipGraphFileName              = "PipGraph"
	previousInputsFileName        = "PreviousInputs"
	previousInputsStagingFileName = "PreviousInputs.tmp"
)

// Cache is GraphCache (C4).
type Cache struct {
	logger         *logging.Logger
	engineCacheDir string
	store          SharedStore
	compress       bool
}

// New creates a Cache rooted at engineCacheDir, consulting store on a local
// miss. If compress is true, graph files are flate-compressed before being
// written (spec.md §4.4's "Compression" clause).
func New(engineCacheDir string, store SharedStore, compress bool, logger *logging.Logger) (*Cache, error) {
	if err := os.MkdirAll(engineCacheDir, 0700); err != nil {
		return nil, fmt.Errorf("unable to create engine cache directory: %w", err)
	}
	return &Cache{
		logger:         logger,
		engineCacheDir: engineCacheDir,
		store:          store,
		compress:       compress,
	}, nil
}

func (c *Cache) path(name string) string {
	return filepath.Join(c.engineCacheDir, name)
}

// envelopeIdFor derives the 16-byte correlation id for all files written as
// part of one fingerprint's save. Every file belonging to the same graph
// shares this id, so a load can detect a leftover file from an interrupted
// save of a different graph without needing a separate "is this corrupt"
// check: a mismatched id simply means "not present" (spec.md §4.4).
func envelopeIdFor(gf fingerprint.GraphFingerprint) [envelopeSize]byte {
	var id [envelopeSize]byte
	copy(id[:], gf.Exact[:envelopeSize])
	return id
}

// Save serializes graph and the tracker's snapshot into the engine cache and
// registers a GraphDescriptor for it in the shared store. Per the atomicity
// contract, the canonical previous-inputs file is deleted before anything
// else is written; the tracker snapshot lands in a staging file, not the
// canonical one, until FinalizePreviousInputs is called. A crash at any
// point before that leaves either the prior run's complete state (canonical
// file untouched until success) or no state at all.
func (c *Cache) Save(graph *pipgraph.PipGraph, gf fingerprint.GraphFingerprint, tracker *inputtracking.Tracker) error {
	if err := os.Remove(c.path(previousInputsFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unable to clear previous inputs: %w", err)
	}

	envelopeId := envelopeIdFor(gf)

	graphBytes, err := proto.Marshal(toWireGraph(graph))
	if err != nil {
		return fmt.Errorf("unable to marshal graph: %w", err)
	}
	graphFile, err := writeEnvelope(envelopeId, graphBytes, c.compress)
	if err != nil {
		return fmt.Errorf("unable to envelope graph: %w", err)
	}
	if err := filesystem.WriteFileAtomic(c.path(pipGraphFileName), graphFile, 0600); err != nil {
		return fmt.Errorf("unable to write graph to engine cache: %w", err)
	}

	blobHash, err := c.store.PutBlob(graphFile)
	if err != nil {
		return fmt.Errorf("unable to store graph blob: %w", err)
	}

	descriptor := &wireproto.GraphDescriptor{
		ExactFingerprint: hex.EncodeToString(gf.Exact[:]),
		Files: map[string][]byte{
			pipGraphFileName: blobHash[:],
		},
		Compressed: c.compress,
	}
	for name := range tracker.EnvironmentVariables() {
		descriptor.EnvironmentVariableNames = append(descriptor.EnvironmentVariableNames, name)
	}
	sort.Strings(descriptor.EnvironmentVariableNames)
	for _, m := range graph.Mounts() {
		descriptor.MountNames = append(descriptor.MountNames, m.Name)
	}
	sort.Strings(descriptor.MountNames)

	descriptorBytes, err := proto.Marshal(descriptor)
	if err != nil {
		return fmt.Errorf("unable to marshal graph descriptor: %w", err)
	}
	if err := c.store.PutDescriptor(descriptor.ExactFingerprint, descriptorBytes); err != nil {
		return fmt.Errorf("unable to register graph descriptor: %w", err)
	}

	if err := tracker.WriteTo(c.path(previousInputsStagingFileName)); err != nil {
		return fmt.Errorf("unable to stage previous inputs: %w", err)
	}

	return nil
}

// FinalizePreviousInputs atomically renames the staging input-tracker file
// written by Save into the canonical previous-inputs file. Callers must
// invoke this only after every other part of the build that depends on the
// new graph has itself succeeded.
func (c *Cache) FinalizePreviousInputs() error {
	staging := c.path(previousInputsStagingFileName)
	if _, err := os.Stat(staging); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unable to stat staged previous inputs: %w", err)
	}
	if err := os.Rename(staging, c.path(previousInputsFileName)); err != nil {
		return fmt.Errorf("unable to finalize previous inputs: %w", err)
	}
	return nil
}

// TryLoadLocal deserializes the local engine-cache copy of the graph for gf,
// verifying the envelope id matches. A missing file or a mismatched envelope
// id are both reported as (nil, nil): "not present", never an error.
func (c *Cache) TryLoadLocal(gf fingerprint.GraphFingerprint) (*pipgraph.PipGraph, error) {
	data, err := os.ReadFile(c.path(pipGraphFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to read cached graph: %w", err)
	}

	payload, err := readEnvelope(data, envelopeIdFor(gf))
	if err != nil {
		if err == errEnvelopeMismatch {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to decode cached graph: %w", err)
	}

	message := &wireproto.WirePipGraph{}
	if err := proto.Unmarshal(payload, message); err != nil {
		return nil, fmt.Errorf("unable to unmarshal cached graph: %w", err)
	}

	return fromWireGraph(message)
}

// TryFetchRemote queries the shared store by gf.Exact, materializes the
// referenced blobs into the engine cache, and attempts a local load. It
// returns (graph, true, nil) on a full hit, (nil, false, nil) on a miss, and
// a non-nil error only for an unexpected I/O failure.
func (c *Cache) TryFetchRemote(gf fingerprint.GraphFingerprint) (*pipgraph.PipGraph, bool, error) {
	fingerprintHex := hex.EncodeToString(gf.Exact[:])

	descriptorBytes, ok, err := c.store.GetDescriptor(fingerprintHex)
	if err != nil {
		return nil, false, fmt.Errorf("unable to query shared store: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	descriptor := &wireproto.GraphDescriptor{}
	if err := proto.Unmarshal(descriptorBytes, descriptor); err != nil {
		return nil, false, fmt.Errorf("unable to unmarshal graph descriptor: %w", err)
	}

	for name, hashBytes := range descriptor.Files {
		var hash pipgraph.ContentHash
		copy(hash[:], hashBytes)
		blob, ok, err := c.store.GetBlob(hash)
		if err != nil {
			return nil, false, fmt.Errorf("unable to fetch blob for %s: %w", name, err)
		}
		if !ok {
			c.logger.Warnf("shared store descriptor references missing blob for %s", name)
			return nil, false, nil
		}
		if err := filesystem.WriteFileAtomic(c.path(name), blob, 0600); err != nil {
			return nil, false, fmt.Errorf("unable to materialize %s: %w", name, err)
		}
	}

	graph, err := c.TryLoadLocal(gf)
	if err != nil {
		return nil, false, err
	}
	if graph == nil {
		return nil, false, nil
	}
	return graph, true, nil
}
