// Package observability exports OpenTelemetry traces for vector client calls.
package observability

import (
	"io"
	"time"

	"github.com/felixgeelhaar/agent-memory/domain/config"
)

// Config configures the tracer provider.
type Config struct {
	// ServiceName is reported as the service.name resource attribute.
	ServiceName string

	// ServiceVersion is reported as the service.version resource attribute.
	ServiceVersion string

	// Exporter is one of config.ExporterOTLP, ExporterStdout or ExporterNoop.
	Exporter string

	// Endpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	Endpoint string

	// Insecure disables TLS for the OTLP connection.
	Insecure bool

	// SampleRate is the sampling rate (0.0-1.0).
	SampleRate float64

	// BatchTimeout is the batch export timeout.
	BatchTimeout time.Duration

	// MaxExportBatchSize is the maximum batch size.
	MaxExportBatchSize int

	// Writer receives stdout spans. Nil means os.Stdout.
	Writer io.Writer
}

// DefaultConfig returns a configuration that discards spans.
func DefaultConfig() Config {
	return Config{
		ServiceName:        "agent-memory",
		ServiceVersion:     "0.1.0",
		Exporter:           config.ExporterNoop,
		SampleRate:         1.0,
		BatchTimeout:       5 * time.Second,
		MaxExportBatchSize: 512,
	}
}

// Option configures the provider.
type Option func(*Config)

// FromTracingConfig applies the tracing section of the adapter configuration.
func FromTracingConfig(tc config.TracingConfig) Option {
	return func(c *Config) {
		if tc.ServiceName != "" {
			c.ServiceName = tc.ServiceName
		}
		if tc.Exporter != "" {
			c.Exporter = tc.Exporter
		}
		c.Endpoint = tc.Endpoint
		c.Insecure = tc.Insecure
		c.SampleRate = tc.SampleRate
	}
}

// WithStdout pretty-prints spans to w.
func WithStdout(w io.Writer) Option {
	return func(c *Config) {
		c.Exporter = config.ExporterStdout
		c.Writer = w
	}
}

// WithBatchTimeout sets how long spans wait before export.
func WithBatchTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.BatchTimeout = d
	}
}
