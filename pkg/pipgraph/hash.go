package pipgraph

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// ContentHash is a fixed-width digest of a byte sequence. It supports total
// equality and ordering so that it can be used as a stable map key and sorted
// before being folded into a composite fingerprint.
type ContentHash [sha256.Size]byte

// ZeroContentHash is the zero value of ContentHash, used to represent the
// absence of content (e.g. a probed path that does not exist).
var ZeroContentHash ContentHash

// HashBytes computes the ContentHash of a byte slice.
func HashBytes(data []byte) ContentHash {
	return ContentHash(sha256.Sum256(data))
}

// HashFile computes the ContentHash of a file's current contents, streaming
// it through SHA-256 rather than reading it into memory whole. This is the
// "slow path" hashing the file content table falls back to when a file's
// identity doesn't resolve to a known hash.
func HashFile(path string) (ContentHash, error) {
	file, err := os.Open(path)
	if err != nil {
		return ContentHash{}, err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return ContentHash{}, err
	}

	var hash ContentHash
	copy(hash[:], hasher.Sum(nil))
	return hash, nil
}

// Equal reports whether two hashes are identical.
func (h ContentHash) Equal(other ContentHash) bool {
	return h == other
}

// Compare orders hashes lexicographically by their byte representation. It
// returns a negative value, zero, or a positive value depending on whether h
// sorts before, equal to, or after other.
func (h ContentHash) Compare(other ContentHash) int {
	return bytes.Compare(h[:], other[:])
}

// IsZero reports whether the hash is the zero value.
func (h ContentHash) IsZero() bool {
	return h == ZeroContentHash
}

// String returns the hexadecimal representation of the hash.
func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}
