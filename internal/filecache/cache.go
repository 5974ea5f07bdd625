// Package filecache implements the persisted-artifact cache (§6): a
// Get/Add/Delete contract keyed by a module's content hash. Nothing in the
// compilation pipeline reads from or writes to it. Two backends exist,
// selected by build tag exactly like the teacher's: an OS-filesystem-backed
// one for every normal build, and one for tinygo targets whose methods all
// return a not-supported error.
package filecache

import "io"

// Key identifies one cached compiled artifact: the content hash of the
// Wasm binary it was compiled from, together with whatever the caller
// wants to fold in to invalidate a cache entry (e.g. the backend id and
// this engine's version), so a stale entry compiled by a different
// backend or version is never rehydrated.
type Key [32]byte

// Cache persists and retrieves compiled artifacts by Key.
type Cache interface {
	// Get returns the cached content for key, or ok == false if nothing
	// is cached for it. A missing entry is not an error.
	Get(key Key) (content io.ReadCloser, ok bool, err error)
	// Add stores content under key, overwriting any existing entry.
	Add(key Key, content io.Reader) error
	// Delete removes any cached entry for key. Deleting a key with
	// nothing cached is not an error.
	Delete(key Key) error
}
