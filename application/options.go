package application

import (
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/agent-memory/domain/cache"
	"github.com/felixgeelhaar/agent-memory/infrastructure/telemetry"
)

// Option configures the adapter.
type Option func(*adapterOptions)

type adapterOptions struct {
	clientFactory ClientFactory
	cacheBackend  cache.Cache
	metrics       telemetry.Metrics
	tracer        trace.Tracer
	now           func() time.Time
	newID         func() string
}

// WithClientFactory sets how the vector client is built. Defaults to the
// factory selected by store.backend.
func WithClientFactory(f ClientFactory) Option {
	return func(o *adapterOptions) {
		o.clientFactory = f
	}
}

// WithCache sets the result cache backend, bypassing cache.backend.
func WithCache(c cache.Cache) Option {
	return func(o *adapterOptions) {
		o.cacheBackend = c
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m telemetry.Metrics) Option {
	return func(o *adapterOptions) {
		o.metrics = m
	}
}

// WithClock sets the time source used for timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(o *adapterOptions) {
		o.now = now
	}
}

// WithIDGenerator sets the generator for memories written without an id.
func WithIDGenerator(newID func() string) Option {
	return func(o *adapterOptions) {
		o.newID = newID
	}
}

// WithTracer traces vector client calls with tracer, whatever the
// tracing section says. The caller owns the tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *adapterOptions) {
		o.tracer = tracer
	}
}
