package engine

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	proto "github.com/golang/protobuf/proto"

	"github.com/pipforge/pipforge/pkg/distribution"
	"github.com/pipforge/pipforge/pkg/fingerprint"
	"github.com/pipforge/pipforge/pkg/graphcache"
	"github.com/pipforge/pipforge/pkg/pipgraph"
	"github.com/pipforge/pipforge/pkg/wireproto"
)

// WorkerGraphSource combines graphcache.Cache-backed graph fetching with pip
// execution into the two capabilities pkg/distribution.Worker needs: it is
// both a distribution.GraphFetcher and a distribution.Executor, the two
// halves a worker process wires into a single distribution.Worker.
type WorkerGraphSource struct {
	cache    *graphcache.Cache
	executor *LocalExecutor

	mu    sync.RWMutex
	graph *pipgraph.PipGraph
}

// NewWorkerGraphSource creates a WorkerGraphSource backed by cache, resolving
// mount-relative paths for pip execution against mountRoots.
func NewWorkerGraphSource(cache *graphcache.Cache, mountRoots map[string]string) *WorkerGraphSource {
	return &WorkerGraphSource{
		cache:    cache,
		executor: &LocalExecutor{MountRoots: mountRoots},
	}
}

// FetchByDescriptor implements distribution.GraphFetcher by decoding the
// orchestrator-published GraphDescriptor, fetching its blobs through the
// shared store, and loading the resulting graph into memory.
func (s *WorkerGraphSource) FetchByDescriptor(descriptorBytes []byte) error {
	descriptor := &wireproto.GraphDescriptor{}
	if err := proto.Unmarshal(descriptorBytes, descriptor); err != nil {
		return fmt.Errorf("unable to unmarshal graph descriptor: %w", err)
	}

	decoded, err := hex.DecodeString(descriptor.ExactFingerprint)
	if err != nil {
		return fmt.Errorf("unable to decode exact fingerprint: %w", err)
	}
	var gf fingerprint.GraphFingerprint
	copy(gf.Exact[:], decoded)

	graph, hit, err := s.cache.TryFetchRemote(gf)
	if err != nil {
		return fmt.Errorf("unable to fetch graph from shared store: %w", err)
	}
	if !hit {
		return fmt.Errorf("shared store has no graph for fingerprint %s", descriptor.ExactFingerprint)
	}

	s.mu.Lock()
	s.graph = graph
	s.mu.Unlock()
	return nil
}

// Execute implements distribution.Executor by looking up pipId in the most
// recently fetched graph.
func (s *WorkerGraphSource) Execute(ctx context.Context, pipId string, inputsMaterializationPlan []byte) (distribution.PipOutcome, error) {
	s.mu.RLock()
	graph := s.graph
	s.mu.RUnlock()

	if graph == nil {
		return distribution.PipOutcome{}, fmt.Errorf("no graph has been fetched yet")
	}
	p, ok := graph.Lookup(pipgraph.PipId(pipId))
	if !ok {
		return distribution.PipOutcome{}, fmt.Errorf("unknown pip id %s", pipId)
	}
	return s.executor.ExecutePip(ctx, p)
}
