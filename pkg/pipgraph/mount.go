package pipgraph

// MountAccess describes the access policy granted to a named mount.
type MountAccess uint8

const (
	// MountAccessReadable indicates that pips may read from the mount.
	MountAccessReadable MountAccess = 1 << iota
	// MountAccessWritable indicates that pips may write to the mount.
	MountAccessWritable
	// MountAccessScrubbable indicates that the mount's contents may be
	// deleted as part of output scrubbing between builds.
	MountAccessScrubbable
)

// Has reports whether the access policy includes the specified bit.
func (a MountAccess) Has(bit MountAccess) bool {
	return a&bit != 0
}

// ParseMountAccess parses a mount access policy from its textual
// representation, as used in on-disk configuration and graph spec files.
// Recognized values are "readable", "writable", "scrubbable", and "readwrite"
// (an alias for readable|writable); anything else yields MountAccessReadable.
func ParseMountAccess(value string) MountAccess {
	switch value {
	case "writable":
		return MountAccessWritable
	case "scrubbable":
		return MountAccessScrubbable
	case "readwrite":
		return MountAccessReadable | MountAccessWritable
	default:
		return MountAccessReadable
	}
}

// Mount is a named alias for a root directory with an access policy. Mounts
// are referenced by pips via name rather than by resolved path, so that the
// resolved path can vary between machines without invalidating the
// CompatibleFingerprint (see pkg/fingerprint).
type Mount struct {
	// Name is the mount's stable identifier, as referenced by pip inputs,
	// outputs, and sealed directories.
	Name string
	// ResolvedPath is the absolute path this mount currently resolves to on
	// the local machine.
	ResolvedPath string
	// Access is the mount's access policy.
	Access MountAccess
}

// SealedDirectory is a directory whose membership is fixed at
// graph-construction time. A pip may depend on a sealed directory as a
// single logical input without re-enumerating it at execution time.
type SealedDirectory struct {
	// Root is the path of the sealed directory, relative to the mount it
	// resides under.
	Root string
	// Mount is the name of the mount the directory resides under.
	Mount string
	// MembershipFingerprint is the order-independent hash of the directory's
	// members at seal time (see pkg/inputtracking for how this is computed).
	MembershipFingerprint ContentHash
}
