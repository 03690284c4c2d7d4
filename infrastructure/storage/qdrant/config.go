// Package qdrant implements the vector client over the Qdrant gRPC API.
package qdrant

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Config holds Qdrant connection configuration.
type Config struct {
	// URL is the server address. A bare host is accepted; an https
	// scheme enables TLS.
	URL string

	// Port is the gRPC port.
	Port int

	// APIKey authenticates every request.
	APIKey string

	// PoolSize is the number of gRPC connections. Zero uses the client default.
	PoolSize uint

	// MaxMessageSize bounds received messages in bytes.
	MaxMessageSize int

	// Timeout bounds each call when the caller's context has no deadline.
	Timeout time.Duration

	// SkipCompatibilityCheck disables the server version check on connect.
	SkipCompatibilityCheck bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:                    "localhost",
		Port:                   6334,
		MaxMessageSize:         64 << 20,
		Timeout:                10 * time.Second,
		SkipCompatibilityCheck: true,
	}
}

// ConfigOption configures the Qdrant connection.
type ConfigOption func(*Config)

// WithURL sets the server address.
func WithURL(u string) ConfigOption {
	return func(c *Config) {
		c.URL = u
	}
}

// WithPort sets the gRPC port.
func WithPort(port int) ConfigOption {
	return func(c *Config) {
		c.Port = port
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = d
	}
}

// endpoint splits URL into a host name and whether TLS is required.
func (c Config) endpoint() (host string, useTLS bool, err error) {
	raw := strings.TrimSpace(c.URL)
	if raw == "" {
		return "", false, fmt.Errorf("qdrant: empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("qdrant: invalid url %q: %w", c.URL, err)
	}
	if u.Hostname() == "" {
		return "", false, fmt.Errorf("qdrant: url %q has no host", c.URL)
	}
	return u.Hostname(), u.Scheme == "https", nil
}
