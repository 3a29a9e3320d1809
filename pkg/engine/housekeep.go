package engine

import (
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pipforge/pipforge/pkg/logging"
)

// maximumEngineCacheAge is the maximum time an engine-cache directory may
// sit unused before Housekeep removes it.
const maximumEngineCacheAge = 7 * 24 * time.Hour

// Housekeep removes engine-cache subdirectories under root that have not
// been modified in maximumEngineCacheAge. Failures for any individual
// entry are logged and skipped rather than aborting the whole sweep.
func Housekeep(root string, logger *logging.Logger) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}

	now := time.Now()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		fullPath := filepath.Join(root, entry.Name())
		info, err := os.Stat(fullPath)
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= maximumEngineCacheAge {
			continue
		}
		reclaimed := directorySize(fullPath)
		if err := os.RemoveAll(fullPath); err != nil {
			logger.Warnf("unable to remove stale engine cache %s: %v", fullPath, err)
			continue
		}
		logger.Infof("removed stale engine cache %s (%s, unused for %s)",
			fullPath, humanize.Bytes(reclaimed), humanize.Time(info.ModTime()))
	}
}

// directorySize sums the size of all regular files under path, returning 0
// on any walk error since this is only used for a best-effort log message.
func directorySize(path string) uint64 {
	var total uint64
	filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}
