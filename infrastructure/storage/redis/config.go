// Package redis provides a Redis-backed result cache.
package redis

import "time"

// Config holds Redis connection configuration.
type Config struct {
	// Addrs lists the server addresses. More than one address selects a
	// cluster client.
	Addrs []string

	// Password for authentication (optional).
	Password string

	// DB selects the Redis database index. Ignored by cluster clients.
	DB int

	// MaxRetries is the maximum number of retries before giving up.
	MaxRetries int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	// KeyPrefix is prepended to all keys.
	KeyPrefix string

	// SkipPing skips the connectivity check in NewCache.
	SkipPing bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addrs:        []string{"localhost:6379"},
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		KeyPrefix:    "agent-memory:",
	}
}

// ConfigOption configures the Redis connection.
type ConfigOption func(*Config)

// WithAddress sets a single server address.
func WithAddress(addr string) ConfigOption {
	return func(c *Config) {
		c.Addrs = []string{addr}
	}
}

// WithPassword sets the authentication password.
func WithPassword(password string) ConfigOption {
	return func(c *Config) {
		c.Password = password
	}
}

// WithDB sets the database index.
func WithDB(db int) ConfigOption {
	return func(c *Config) {
		c.DB = db
	}
}

// WithKeyPrefix sets the key prefix for namespacing.
func WithKeyPrefix(prefix string) ConfigOption {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}

// WithTimeouts sets connection timeouts.
func WithTimeouts(dial, read, write time.Duration) ConfigOption {
	return func(c *Config) {
		c.DialTimeout = dial
		c.ReadTimeout = read
		c.WriteTimeout = write
	}
}

// WithoutPing disables the connectivity check on construction.
func WithoutPing() ConfigOption {
	return func(c *Config) {
		c.SkipPing = true
	}
}
