package pipgraph

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
)

// PipId is the stable identifier of a Pip. It is derived deterministically
// from the pip's declared inputs, outputs, and environment, so that two
// logically identical pips (even constructed in separate processes) share an
// id, and so that PipGraph construction never needs a counter or a global
// registry to name its nodes.
type PipId string

// FileDependency is a single file input or output referenced by a pip,
// identified by mount-relative path.
type FileDependency struct {
	// Mount is the name of the mount the path resides under.
	Mount string
	// Path is the mount-relative path.
	Path string
}

// EnvironmentVariable is a single environment variable a pip depends on,
// carried with its value; both the name and the value are folded into the
// pip's id and persisted with the graph.
type EnvironmentVariable struct {
	Name  string
	Value string
}

// Pip is an immutable description of a unit of work: a process invocation, a
// file copy, or a sealed-directory materialization, together with the inputs
// it reads and the outputs it produces. Pips are never mutated once added to
// a PipGraph.
type Pip struct {
	// Id is the pip's stable identifier, computed by ComputePipId.
	Id PipId
	// Executable is the mount-relative path of the command to invoke. It is
	// empty for non-process pips (e.g. a pure file copy).
	Executable string
	// Arguments are the command-line arguments passed to Executable.
	Arguments []string
	// Environment is the set of environment variables visible to the pip.
	Environment []EnvironmentVariable
	// Inputs are the file dependencies read by the pip.
	Inputs []FileDependency
	// SealedDirectoryInputs are sealed-directory dependencies read by the
	// pip as a single logical unit.
	SealedDirectoryInputs []SealedDirectory
	// Outputs are the files the pip is expected to produce.
	Outputs []FileDependency
}

// ComputePipId derives a Pip's stable identifier from its declared
// inputs, outputs, and environment. Apart from Arguments, which are hashed
// in their given order, ordering of slices does not matter to the caller:
// the other fields are sorted internally before hashing so that two pips
// built from the same logical declaration in different orders collide to the
// same id.
func ComputePipId(p *Pip) PipId {
	h := sha256.New()

	writeString(h, p.Executable)
	for _, argument := range p.Arguments {
		writeString(h, argument)
	}

	environment := append([]EnvironmentVariable(nil), p.Environment...)
	sort.Slice(environment, func(i, j int) bool {
		return environment[i].Name < environment[j].Name
	})
	for _, e := range environment {
		writeString(h, e.Name)
		writeString(h, e.Value)
	}

	inputs := append([]FileDependency(nil), p.Inputs...)
	sort.Slice(inputs, func(i, j int) bool {
		return fileDependencyLess(inputs[i], inputs[j])
	})
	for _, in := range inputs {
		writeString(h, in.Mount)
		writeString(h, in.Path)
	}

	sealed := append([]SealedDirectory(nil), p.SealedDirectoryInputs...)
	sort.Slice(sealed, func(i, j int) bool {
		if sealed[i].Mount != sealed[j].Mount {
			return sealed[i].Mount < sealed[j].Mount
		}
		return sealed[i].Root < sealed[j].Root
	})
	for _, s := range sealed {
		writeString(h, s.Mount)
		writeString(h, s.Root)
		h.Write(s.MembershipFingerprint[:])
	}

	outputs := append([]FileDependency(nil), p.Outputs...)
	sort.Slice(outputs, func(i, j int) bool {
		return fileDependencyLess(outputs[i], outputs[j])
	})
	for _, out := range outputs {
		writeString(h, out.Mount)
		writeString(h, out.Path)
	}

	return PipId(hex.EncodeToString(h.Sum(nil)))
}

func fileDependencyLess(a, b FileDependency) bool {
	if a.Mount != b.Mount {
		return a.Mount < b.Mount
	}
	return a.Path < b.Path
}

func writeString(h interface{ Write([]byte) (int, error) }, s string) {
	h.Write([]byte(s))
	h.Write([]byte{0})
}

// EnsureValid validates a Pip's declared fields. It does not validate that
// the pip is reachable from a PipGraph or that its dependencies resolve to
// real files; that validation is PipGraph's responsibility.
func (p *Pip) EnsureValid() error {
	if p == nil {
		return errors.New("nil pip")
	}
	if p.Id == "" {
		return errors.New("empty pip id")
	}
	for _, in := range p.Inputs {
		if in.Mount == "" {
			return errors.New("input with empty mount")
		}
		if in.Path == "" {
			return errors.New("input with empty path")
		}
	}
	for _, out := range p.Outputs {
		if out.Mount == "" {
			return errors.New("output with empty mount")
		}
		if out.Path == "" {
			return errors.New("output with empty path")
		}
	}
	return nil
}
