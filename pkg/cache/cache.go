// Package cache provides byte caches for registry lookups.
//
// Registry answers (for example the repository of a crate) change rarely, so
// they are kept for a configurable time to live. Three backends exist:
//
//   - [FileCache]: one JSON file per key below a directory
//   - [RedisCache]: a shared Redis instance, for CI fleets
//   - [NullCache]: caching disabled
//
// Probe records are not stored here; they live in package probe with their
// own staleness rules.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque values under string keys.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value stored under key. The boolean is false on a
	// miss, including expired entries.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Clearer is implemented by caches that can drop all their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}
