package filesystem

import (
	"os"
	"syscall"
)

// Identity is the (volume-id, file-id) pair naming a file version on
// supporting (POSIX) filesystems, corresponding to spec.md's FileIdentity.
// The zero value represents "unsupported" (e.g. filesystems that don't expose
// stable device/inode numbers), in which case callers must always fall back
// to content hashing.
type Identity struct {
	// Supported indicates whether or not this identity carries real
	// filesystem-reported values.
	Supported bool
	// VolumeID is the device identifier of the filesystem on which the entry
	// resides (POSIX st_dev).
	VolumeID uint64
	// FileID is the filesystem-internal identifier for the entry (POSIX
	// st_ino).
	FileID uint64
	// USN is an update-sequence-like value that changes whenever the entry's
	// content or metadata materially changes; on POSIX systems this is the
	// modification time expressed in nanoseconds, which serves the same
	// change-detection purpose as an NTFS USN without requiring a journal.
	USN int64
}

// Equal reports whether two identities refer to the same file version.
// Two unsupported identities are never considered equal, matching the
// requirement that an unsupported identity always forces hashing.
func (id Identity) Equal(other Identity) bool {
	if !id.Supported || !other.Supported {
		return false
	}
	return id.VolumeID == other.VolumeID && id.FileID == other.FileID && id.USN == other.USN
}

// QueryIdentity queries the current FileIdentity for the file at path. It
// never returns an error for a missing identity capability -- instead it
// returns an unsupported Identity, per spec.md §4.2's stub-degradation rule.
func QueryIdentity(path string) (Identity, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Identity{}, err
	}
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return Identity{}, nil
	}
	return Identity{
		Supported: true,
		VolumeID:  uint64(stat.Dev),
		FileID:    stat.Ino,
		USN:       info.ModTime().UnixNano(),
	}, nil
}
