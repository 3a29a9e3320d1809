// Package filesystem provides the filesystem primitives the engine needs:
// atomic file replacement, stable per-file identity for change detection,
// and advisory locking. It does not provide general-purpose filesystem
// watching or synchronization utilities.
package filesystem
