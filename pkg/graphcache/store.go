package graphcache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pipforge/pipforge/pkg/filesystem"
	"github.com/pipforge/pipforge/pkg/pipgraph"
)

// SharedStore is the shared content store GraphCache consults on a local
// miss: a content-addressed blob store plus a fingerprint-keyed descriptor
// index. A build farm backs this with a networked cache; a single-machine
// build can use DiskSharedStore.
type SharedStore interface {
	// PutBlob stores data under its content hash, returning the hash.
	PutBlob(data []byte) (pipgraph.ContentHash, error)
	// GetBlob retrieves a previously stored blob by content hash.
	GetBlob(hash pipgraph.ContentHash) ([]byte, bool, error)
	// PutDescriptor registers descriptorBytes (an already-marshaled
	// GraphDescriptor) under fingerprint, hex-encoded by the caller.
	PutDescriptor(fingerprintHex string, descriptorBytes []byte) error
	// GetDescriptor retrieves a previously registered descriptor.
	GetDescriptor(fingerprintHex string) ([]byte, bool, error)
}

// DiskSharedStore is a SharedStore backed by a local directory, suitable for
// single-machine builds or as the on-disk half of a networked cache.
type DiskSharedStore struct {
	root string
}

// NewDiskSharedStore creates a DiskSharedStore rooted at root, creating it
// if necessary.
func NewDiskSharedStore(root string) (*DiskSharedStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "blobs"), 0700); err != nil {
		return nil, fmt.Errorf("unable to create blob store: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "descriptors"), 0700); err != nil {
		return nil, fmt.Errorf("unable to create descriptor store: %w", err)
	}
	return &DiskSharedStore{root: root}, nil
}

func (s *DiskSharedStore) blobPath(hash pipgraph.ContentHash) string {
	name := hash.String()
	return filepath.Join(s.root, "blobs", name)
}

// PutBlob implements SharedStore.PutBlob.
func (s *DiskSharedStore) PutBlob(data []byte) (pipgraph.ContentHash, error) {
	hash := pipgraph.HashBytes(data)
	path := s.blobPath(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}
	if err := filesystem.WriteFileAtomic(path, data, 0600); err != nil {
		return pipgraph.ContentHash{}, fmt.Errorf("unable to store blob: %w", err)
	}
	return hash, nil
}

// GetBlob implements SharedStore.GetBlob.
func (s *DiskSharedStore) GetBlob(hash pipgraph.ContentHash) ([]byte, bool, error) {
	data, err := os.ReadFile(s.blobPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *DiskSharedStore) descriptorPath(fingerprintHex string) string {
	return filepath.Join(s.root, "descriptors", fingerprintHex)
}

// PutDescriptor implements SharedStore.PutDescriptor.
func (s *DiskSharedStore) PutDescriptor(fingerprintHex string, descriptorBytes []byte) error {
	return filesystem.WriteFileAtomic(s.descriptorPath(fingerprintHex), descriptorBytes, 0600)
}

// GetDescriptor implements SharedStore.GetDescriptor.
func (s *DiskSharedStore) GetDescriptor(fingerprintHex string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.descriptorPath(fingerprintHex))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}
