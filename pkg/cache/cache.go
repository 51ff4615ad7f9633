// Package cache stores algorithm results for reuse across calls.
//
// Only calls to an algorithm pinned to an exact version (owner/name/1.2.3)
// are cached: published versions are immutable, so the same input yields the
// same output. Caching is off unless a [Cache] is passed to the client.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, for CLI use
//   - [RedisCache]: shared entries for services running several instances
//   - [NullCache]: stores nothing
//
// # Keys
//
// A [Keyer] derives keys from the algorithm reference, the input content type
// and the exact input bytes. [NewScopedKeyer] adds a prefix so that accounts
// sharing a backend never read each other's results.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored data. hit is false on a miss or an expired entry.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
