// Package cache defines the key-value backend behind the search result cache.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value backend. Keys arrive already
// namespaced by agent; backends treat them as opaque strings.
type Cache interface {
	// Get returns the value stored under key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte, opts SetOptions) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key is present and not expired.
	Exists(ctx context.Context, key string) (bool, error)

	// Clear removes every entry owned by this backend.
	Clear(ctx context.Context) error

	// Close releases connections or file handles held by the backend.
	Close() error
}

// SetOptions configures how a value is stored.
type SetOptions struct {
	// TTL is the entry lifetime. Zero keeps the entry until it is
	// overwritten, deleted or evicted.
	TTL time.Duration
}

// Stats provides cache statistics.
type Stats struct {
	Hits    int64
	Misses  int64
	Size    int64
	MaxSize int64 // 0 = unlimited
}

// StatsProvider is implemented by backends that track statistics.
type StatsProvider interface {
	Stats() Stats
}
