package inputtracking

import (
	"github.com/pipforge/pipforge/pkg/encoding"
	"github.com/pipforge/pipforge/pkg/filesystem"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/pipgraph"
	"github.com/pipforge/pipforge/pkg/wireproto"
)

// WriteTo serializes the tracker to path as a PreviousInputs message. It
// does not perform the atomic promotion dance (delete-before-write,
// rename-after-success): that contract is GraphCache's responsibility,
// since it must be coordinated with the graph files written alongside this
// snapshot.
func (t *Tracker) WriteTo(path string) error {
	t.mu.Lock()
	message := &wireproto.PreviousInputs{
		EnvironmentValues: make(map[string]string, len(t.envVars)),
		MountValues:       make(map[string]string, len(t.mounts)),
	}
	for _, path := range t.order {
		f := t.files[path]
		entry := &wireproto.TrackedFileEntry{
			Path:      path,
			HashKnown: f.hashKnown,
			Absent:    f.absent,
		}
		if f.identity.Supported {
			entry.VolumeId = f.identity.VolumeID
			entry.FileId = f.identity.FileID
			entry.Usn = f.identity.USN
		}
		if f.hashKnown {
			hash := f.hash
			entry.Hash = hash[:]
		}
		message.Files = append(message.Files, entry)
	}
	for dirPath, d := range t.directories {
		fingerprint := d.fingerprint
		message.Directories = append(message.Directories, &wireproto.TrackedDirectoryEntry{
			Path:        dirPath,
			Fingerprint: fingerprint[:],
		})
	}
	for name, e := range t.envVars {
		if e.present {
			message.EnvironmentValues[name] = e.value
		}
	}
	for name, m := range t.mounts {
		if m.present {
			message.MountValues[name] = m.resolvedPath
		}
	}
	t.mu.Unlock()

	return encoding.MarshalAndSaveProtobuf(path, message)
}

// ReadFrom deserializes a Tracker from a PreviousInputs file at path. A
// missing file is reported as os.ErrNotExist, which GraphReuseDecider
// treats as "no prior inputs", triggering step 4 of its algorithm.
func ReadFrom(path string, rules *RuleSet, logger *logging.Logger) (*Tracker, error) {
	message := &wireproto.PreviousInputs{}
	if err := encoding.LoadAndUnmarshalProtobuf(path, message); err != nil {
		return nil, err
	}

	t := New(nil, rules, logger)
	for _, entry := range message.Files {
		f := &trackedFile{
			hashKnown: entry.HashKnown,
			absent:    entry.Absent,
		}
		if entry.VolumeId != 0 || entry.FileId != 0 {
			f.identity = filesystem.Identity{
				Supported: true,
				VolumeID:  entry.VolumeId,
				FileID:    entry.FileId,
				USN:       entry.Usn,
			}
		}
		if entry.HashKnown {
			var h pipgraph.ContentHash
			copy(h[:], entry.Hash)
			f.hash = h
		}
		t.files[entry.Path] = f
		t.order = append(t.order, entry.Path)
	}
	for _, entry := range message.Directories {
		var fp pipgraph.ContentHash
		copy(fp[:], entry.Fingerprint)
		t.directories[entry.Path] = &trackedDirectory{fingerprint: fp}
	}
	for name, value := range message.EnvironmentValues {
		t.envVars[name] = &trackedEnvVar{value: value, present: true}
	}
	for name, value := range message.MountValues {
		t.mounts[name] = &trackedMount{resolvedPath: value, present: true}
	}
	return t, nil
}
