// Package fingerprint implements GraphFingerprinter (C3): it computes a
// composite, deterministic fingerprint of every input that defines a
// PipGraph's identity.
package fingerprint

import (
	"crypto/sha256"
	"sort"

	"github.com/pipforge/pipforge/pkg/buildinfo"
	"github.com/pipforge/pipforge/pkg/pipgraph"
)

// Fingerprint is a fixed-width hash whose equality implies semantic
// equality of its inputs.
type Fingerprint [sha256.Size]byte

// Equal reports whether two fingerprints are identical.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f == other
}

// GraphFingerprint is the two nested fingerprints defined by spec.md §3.
type GraphFingerprint struct {
	// Exact is a hash of every input that defines this graph: configuration
	// content hashes, commit id, evaluation filter, engine version, mount
	// definitions, and referenced environment variables with their values.
	Exact Fingerprint
	// Compatible is a hash of only the inputs that must match for the
	// schema of the graph to be reusable with possibly different resolved
	// values: the same formula as Exact, but env-var and mount values are
	// replaced by their names only.
	Compatible Fingerprint
}

// Inputs is the full set of values that define a GraphFingerprint. Ordering
// of its slice/map fields does not matter to the caller: Compute sorts by
// key before hashing so that equal logical input sets always yield equal
// fingerprints (spec.md Testable Property 1: determinism).
type Inputs struct {
	// ConfigurationFileHashes maps configuration file path to content hash.
	ConfigurationFileHashes map[string]pipgraph.ContentHash
	// CommitId is an optional source-control commit id; empty if not
	// applicable.
	CommitId string
	// EvaluationFilter is the partial-evaluation filter, already serialized
	// in a stable form by the frontend.
	EvaluationFilter string
	// EnvironmentVariables maps referenced environment variable name to its
	// current value.
	EnvironmentVariables map[string]string
	// Mounts maps mount name to its resolved path.
	Mounts map[string]string
}

// Compute derives a GraphFingerprint from inputs. The engine version
// manifest hash (buildinfo.ManifestHash) is always folded into both the
// exact and compatible fingerprints, since a graph built by one engine
// binary must never be reused by an incompatible one.
func Compute(inputs Inputs) GraphFingerprint {
	return GraphFingerprint{
		Exact:      hashInputs(inputs, false),
		Compatible: hashInputs(inputs, true),
	}
}

func hashInputs(inputs Inputs, compatible bool) Fingerprint {
	h := sha256.New()

	h.Write([]byte("pipforge-fingerprint/v1/"))
	h.Write([]byte(buildinfo.ManifestHash()))
	h.Write([]byte{0})

	configPaths := sortedKeysHash(inputs.ConfigurationFileHashes)
	for _, path := range configPaths {
		writeField(h, path)
		hash := inputs.ConfigurationFileHashes[path]
		h.Write(hash[:])
	}

	writeField(h, inputs.CommitId)
	writeField(h, inputs.EvaluationFilter)

	envNames := sortedKeysString(inputs.EnvironmentVariables)
	for _, name := range envNames {
		writeField(h, name)
		if !compatible {
			writeField(h, inputs.EnvironmentVariables[name])
		}
	}

	mountNames := sortedKeysString(inputs.Mounts)
	for _, name := range mountNames {
		writeField(h, name)
		if !compatible {
			writeField(h, inputs.Mounts[name])
		}
	}

	var result Fingerprint
	copy(result[:], h.Sum(nil))
	return result
}

func writeField(h interface{ Write([]byte) (int, error) }, s string) {
	h.Write([]byte(s))
	h.Write([]byte{0})
}

func sortedKeysHash(m map[string]pipgraph.ContentHash) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysString(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
