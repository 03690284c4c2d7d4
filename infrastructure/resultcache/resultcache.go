// Package resultcache stores serialized search results per agent on top of
// any cache backend.
package resultcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/felixgeelhaar/agent-memory/domain/cache"
)

// Cache namespaces keys by agent and stores string values.
type Cache struct {
	backend cache.Cache
	ttl     time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the lifetime of every written entry.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// New wraps backend.
func New(backend cache.Cache, opts ...Option) *Cache {
	c := &Cache{backend: backend}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the backend key for an agent's raw key.
func Key(agentID, key string) string {
	return agentID + ":" + key
}

// Get returns the cached value and whether it was present.
func (c *Cache) Get(ctx context.Context, agentID, key string) (string, bool, error) {
	data, ok, err := c.backend.Get(ctx, Key(agentID, key))
	if err != nil || !ok {
		return "", false, err
	}
	return string(data), true, nil
}

// Set stores value and reports success.
func (c *Cache) Set(ctx context.Context, agentID, key, value string) (bool, error) {
	if err := c.backend.Set(ctx, Key(agentID, key), []byte(value), cache.SetOptions{TTL: c.ttl}); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the entry and reports whether it existed.
func (c *Cache) Delete(ctx context.Context, agentID, key string) (bool, error) {
	k := Key(agentID, key)
	existed, err := c.backend.Exists(ctx, k)
	if err != nil {
		return false, err
	}
	if err := c.backend.Delete(ctx, k); err != nil {
		return false, err
	}
	return existed, nil
}

// Close closes the backend.
func (c *Cache) Close() error {
	return c.backend.Close()
}

// Fingerprint derives the raw cache key of a search: the SHA-256 hex of
// the agent id and the embedding's decimal form.
func Fingerprint(agentID string, embedding []float32) string {
	h := sha256.New()
	h.Write([]byte(agentID))
	h.Write([]byte(":"))
	for i, v := range embedding {
		if i > 0 {
			h.Write([]byte(","))
		}
		h.Write(strconv.AppendFloat(nil, float64(v), 'g', -1, 32))
	}
	return hex.EncodeToString(h.Sum(nil))
}
