// Package cache provides byte caches for expensive, deterministic export
// steps.
//
// The exporter cooks every submesh into packed vertex arrays. Cooking is a
// pure function of the raw geometry and the per-submesh flags, so its result
// can be reused across runs. A [Cache] stores the cooked bytes under a key
// built by a [Keyer].
//
// # Backends
//
//   - [FileCache]: one file per entry below a directory, for local CLI use
//   - [RedisCache]: a shared Redis instance, for build farms
//   - [NullCache]: stores nothing, used with --no-cache and in tests
//
// All backends treat a corrupt or expired entry as a miss.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time to live.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is the lifetime of cached cooked geometry.
const DefaultTTL = 7 * 24 * time.Hour
