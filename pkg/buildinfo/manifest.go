package buildinfo

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// manifestHash is the engine version manifest hash, computed once at
// initialization. GraphFingerprinter includes this value in every exact
// fingerprint so that a graph built by one engine binary is never reused by
// an incompatible one, even if every other tracked input is unchanged.
//
// It is derived solely from the semantic version, never from a filesystem
// path or process id, so that it is identical across machines and process
// invocations of the same engine build (spec determinism requirement).
var manifestHash string

func init() {
	h := sha256.New()
	h.Write([]byte("pipforge-engine-manifest/"))
	h.Write([]byte(Version))
	manifestHash = hex.EncodeToString(h.Sum(nil))
}

// ManifestHash returns the engine version manifest hash used by
// GraphFingerprinter as part of the exact fingerprint.
func ManifestHash() string {
	return manifestHash
}

// DebugEnabled controls whether or not verbose debugging is enabled. It is
// set automatically based on the PIPFORGE_DEBUG environment variable.
var DebugEnabled = os.Getenv("PIPFORGE_DEBUG") == "1"
