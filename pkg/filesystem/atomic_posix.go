package filesystem

import (
	"errors"
	"os"
	"syscall"
)

// isCrossDeviceError reports whether err indicates that a rename failed
// because its source and destination reside on different devices (EXDEV),
// which requires falling back to a non-atomic copy-and-remove.
func isCrossDeviceError(err error) bool {
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return false
	}
	errno, ok := linkErr.Err.(syscall.Errno)
	return ok && errno == syscall.EXDEV
}
