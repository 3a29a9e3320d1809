package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pipforge/pipforge/pkg/logging"
)

const (
	// temporaryNamePrefix is the file name prefix used for intermediate
	// temporary files created during atomic writes.
	temporaryNamePrefix = ".pipforge-tmp-"
)

// WriteFileAtomic writes a file to disk in an atomic fashion by using an
// intermediate temporary file that is swapped into place using a rename
// operation. This is the primitive that GraphCache (C4) relies on for the
// atomicity contract in spec.md §4.4: a crash between the temporary write and
// the rename leaves the destination path either fully absent or fully
// present with its prior contents, never partially written.
func WriteFileAtomic(path string, data []byte, permissions os.FileMode) error {
	directory := filepath.Dir(path)
	temporary, err := os.CreateTemp(directory, temporaryNamePrefix)
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	temporaryPath := temporary.Name()

	if _, err = temporary.Write(data); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("unable to write data to temporary file: %w", err)
	}
	if err = temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("unable to close temporary file: %w", err)
	}
	if err = os.Chmod(temporaryPath, permissions); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("unable to change file permissions: %w", err)
	}
	if err = renameReplacing(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("unable to rename file into place: %w", err)
	}
	return nil
}

// renameReplacing renames oldPath to newPath, falling back to a copy-and-
// remove if the rename fails because the paths reside on different devices
// (EXDEV), which os.Rename cannot handle atomically across volumes; in that
// case the copy itself is not atomic, but it is the same degraded behavior
// the teacher falls back to for cross-device moves.
func renameReplacing(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err == nil {
		return nil
	} else if !isCrossDeviceError(err) {
		return err
	}
	return copyAndRemove(oldPath, newPath)
}

func copyAndRemove(oldPath, newPath string) error {
	source, err := os.Open(oldPath)
	if err != nil {
		return err
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return err
	}

	destination, err := os.OpenFile(newPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return err
	}
	if err := destination.Close(); err != nil {
		return err
	}
	return os.Remove(oldPath)
}

// RemoveIfExists removes the file at path, logging (rather than returning) a
// failure, for use in best-effort cleanup paths where the caller has already
// committed to a different error.
func RemoveIfExists(path string, logger *logging.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("unable to remove %s: %v", path, err)
	}
}
