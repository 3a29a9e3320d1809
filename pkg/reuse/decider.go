// Package reuse implements GraphReuseDecider (C5): given the current
// GraphFingerprint and the state of the local engine cache and shared
// store, decides whether a prior PipGraph can be reused in full, reused
// partially, or must be rebuilt from scratch.
package reuse

import (
	"encoding/hex"
	"os"

	"github.com/pipforge/pipforge/pkg/fingerprint"
	"github.com/pipforge/pipforge/pkg/graphcache"
	"github.com/pipforge/pipforge/pkg/inputtracking"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/pipgraph"
)

// DecisionKind is the outcome of Decide.
type DecisionKind uint8

const (
	// FullReuse means the prior graph can be used as-is.
	FullReuse DecisionKind = iota
	// PartialReuse means the prior graph can be used with a delta
	// evaluation over ChangedInputs.
	PartialReuse
	// Miss means the graph must be rebuilt from scratch.
	Miss
)

// MissReason explains a Miss decision.
type MissReason string

const (
	MissReasonNoPriorInputs      MissReason = "no-prior-inputs"
	MissReasonMismatch           MissReason = "mismatch"
	MissReasonLocalLoadFailed    MissReason = "local-load-failed"
	MissReasonSharedStoreMiss    MissReason = "shared-store-miss"
	MissReasonPartialDisabled    MissReason = "partial-reuse-disabled"
	MissReasonExplicitLoadFailed MissReason = "explicit-graph-load-failed"
)

// Decision is the result of Decide.
type Decision struct {
	Kind          DecisionKind
	Graph         *pipgraph.PipGraph
	ChangedInputs []string
	Reason        MissReason
}

// Options configures Decide.
type Options struct {
	// ExplicitGraphId, if non-empty, skips fingerprint-driven reuse
	// entirely and loads that specific cached graph (spec.md §4.5 step 1).
	ExplicitGraphId string
	// PartialReuseEnabled gates step 3's PartialMatch branch.
	PartialReuseEnabled bool
	// PreviousInputsPath is the path to the prior run's serialized
	// InputTracker snapshot.
	PreviousInputsPath string
	// Rules is the directory-membership rule set used to reconstruct the
	// prior tracker from PreviousInputsPath.
	Rules *inputtracking.RuleSet
	// JournalAvailable and JournalChanged are forwarded to
	// InputTracker.CheckMatch.
	JournalAvailable bool
	JournalChanged   map[string]bool
}

// Decider is GraphReuseDecider (C5).
type Decider struct {
	cache  *graphcache.Cache
	logger *logging.Logger
}

// New creates a Decider backed by cache.
func New(cache *graphcache.Cache, logger *logging.Logger) *Decider {
	return &Decider{cache: cache, logger: logger}
}

// Decide implements the six-step algorithm of spec.md §4.5.
func (d *Decider) Decide(gf fingerprint.GraphFingerprint, opts Options) Decision {
	// Step 1: an explicit graph id bypasses fingerprint-driven reuse
	// entirely. The explicit id is, in this engine, itself treated as an
	// ExactFingerprint the caller already knows about (e.g. from a prior
	// build's logs), so it is loaded the same way as step 4's local load.
	if opts.ExplicitGraphId != "" {
		decoded, err := hex.DecodeString(opts.ExplicitGraphId)
		if err != nil {
			return Decision{Kind: Miss, Reason: MissReasonExplicitLoadFailed}
		}
		var explicit fingerprint.GraphFingerprint
		copy(explicit.Exact[:], decoded)
		graph, err := d.cache.TryLoadLocal(explicit)
		if err != nil || graph == nil {
			return Decision{Kind: Miss, Reason: MissReasonExplicitLoadFailed}
		}
		return Decision{Kind: FullReuse, Graph: graph}
	}

	// Step 2: consult the previous-inputs file.
	prior, err := inputtracking.ReadFrom(opts.PreviousInputsPath, opts.Rules, d.logger)
	if err != nil {
		if !os.IsNotExist(err) {
			d.logger.Warnf("unable to read previous inputs: %v", err)
		}
		return d.missToSharedStore(gf, MissReasonNoPriorInputs)
	}

	// Step 3: ask InputTracker whether the prior run's observations still
	// hold.
	result := prior.CheckMatch(opts.JournalAvailable, opts.JournalChanged)
	switch result.Kind {
	case inputtracking.Match:
		if graph, err := d.cache.TryLoadLocal(gf); err == nil && graph != nil {
			return Decision{Kind: FullReuse, Graph: graph}
		}
		return d.missToSharedStore(gf, MissReasonLocalLoadFailed)
	case inputtracking.PartialMatch:
		if !opts.PartialReuseEnabled {
			return d.missToSharedStore(gf, MissReasonPartialDisabled)
		}
		if graph, err := d.cache.TryLoadLocal(gf); err == nil && graph != nil {
			return Decision{Kind: PartialReuse, Graph: graph, ChangedInputs: result.ChangedFiles}
		}
		return d.missToSharedStore(gf, MissReasonLocalLoadFailed)
	default:
		return d.missToSharedStore(gf, MissReasonMismatch)
	}
}

// missToSharedStore implements steps 4 and 5: query the shared store by
// ExactFingerprint, and if that misses, by CompatibleFingerprint, verifying
// any compatible-fingerprint candidate still passes a full InputTracker
// check before accepting it.
func (d *Decider) missToSharedStore(gf fingerprint.GraphFingerprint, reason MissReason) Decision {
	if graph, hit, err := d.cache.TryFetchRemote(gf); err == nil && hit {
		return Decision{Kind: FullReuse, Graph: graph}
	}

	// Step 5 (compatible-fingerprint probe) requires a shared-store index
	// keyed by CompatibleFingerprint in addition to ExactFingerprint; this
	// engine's SharedStore is keyed only by ExactFingerprint (see
	// pkg/graphcache), so a compatible-fingerprint candidate is never
	// found here. A future SharedStore implementation that indexes by
	// CompatibleFingerprint as well can extend this method without
	// changing Decide's contract.

	return Decision{Kind: Miss, Reason: reason}
}
