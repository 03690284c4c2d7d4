// Package telemetry provides OpenTelemetry metrics for the memory adapter.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordStoreOperation(ctx context.Context, operation, collection string, success bool, duration time.Duration)
	RecordResults(ctx context.Context, operation string, count int)
	RecordCacheHit(ctx context.Context, agentID string)
	RecordCacheMiss(ctx context.Context, agentID string)
	RecordDuplicate(ctx context.Context, table string, duplicate bool)
	RecordValidationError(ctx context.Context, operation, reason string)
}

// MetricsProvider records adapter metrics through the global meter provider.
type MetricsProvider struct {
	meter metric.Meter

	operations       metric.Int64Counter
	errors           metric.Int64Counter
	cacheHits        metric.Int64Counter
	cacheMisses      metric.Int64Counter
	dedupChecks      metric.Int64Counter
	validationErrors metric.Int64Counter

	operationDuration metric.Float64Histogram
	resultCount       metric.Int64Histogram

	initErr error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	MeterName    string
	MeterVersion string
	// Provider overrides the global meter provider.
	Provider metric.MeterProvider
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/agent-memory",
		MeterVersion: "0.1.0",
	}
}

// NewMetricsProvider creates a new metrics provider. Instrument creation
// errors are kept and reported by Error.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		def := DefaultMetricsConfig()
		config.MeterName, config.MeterVersion = def.MeterName, def.MeterVersion
	}
	provider := config.Provider
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	mp := &MetricsProvider{
		meter: provider.Meter(
			config.MeterName,
			metric.WithInstrumentationVersion(config.MeterVersion),
		),
	}
	mp.initErr = mp.initInstruments()
	return mp
}

func (mp *MetricsProvider) initInstruments() error {
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&mp.operations, "memory.store.operations", "Number of vector store calls", "{call}"},
		{&mp.errors, "memory.store.errors", "Number of failed vector store calls", "{error}"},
		{&mp.cacheHits, "memory.cache.hits", "Number of result cache hits", "{hit}"},
		{&mp.cacheMisses, "memory.cache.misses", "Number of result cache misses", "{miss}"},
		{&mp.dedupChecks, "memory.dedup.checks", "Number of uniqueness pre-checks", "{check}"},
		{&mp.validationErrors, "memory.validation.errors", "Number of rejected requests", "{error}"},
	}

	var err error
	for _, c := range counters {
		*c.dst, err = mp.meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return err
		}
	}

	mp.operationDuration, err = mp.meter.Float64Histogram(
		"memory.store.duration",
		metric.WithDescription("Duration of vector store calls"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.resultCount, err = mp.meter.Int64Histogram(
		"memory.store.results",
		metric.WithDescription("Records returned per read"),
		metric.WithUnit("{record}"),
	)
	return err
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordStoreOperation records one vector store call.
func (mp *MetricsProvider) RecordStoreOperation(ctx context.Context, operation, collection string, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("collection", collection),
		attribute.Bool("success", success),
	)

	mp.operations.Add(ctx, 1, attrs)
	mp.operationDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if !success {
		mp.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
	}
}

// RecordResults records how many records a read returned.
func (mp *MetricsProvider) RecordResults(ctx context.Context, operation string, count int) {
	mp.resultCount.Record(ctx, int64(count), metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordCacheHit records a result cache hit.
func (mp *MetricsProvider) RecordCacheHit(ctx context.Context, agentID string) {
	mp.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("agent.id", agentID)))
}

// RecordCacheMiss records a result cache miss.
func (mp *MetricsProvider) RecordCacheMiss(ctx context.Context, agentID string) {
	mp.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("agent.id", agentID)))
}

// RecordDuplicate records the outcome of a uniqueness pre-check.
func (mp *MetricsProvider) RecordDuplicate(ctx context.Context, table string, duplicate bool) {
	mp.dedupChecks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("table", table),
		attribute.Bool("duplicate", duplicate),
	))
}

// RecordValidationError records a request rejected before any remote call.
func (mp *MetricsProvider) RecordValidationError(ctx context.Context, operation, reason string) {
	mp.validationErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("reason", reason),
	))
}

// NoopMetricsProvider discards every measurement.
type NoopMetricsProvider struct{}

func (NoopMetricsProvider) RecordStoreOperation(context.Context, string, string, bool, time.Duration) {
}
func (NoopMetricsProvider) RecordResults(context.Context, string, int)            {}
func (NoopMetricsProvider) RecordCacheHit(context.Context, string)                {}
func (NoopMetricsProvider) RecordCacheMiss(context.Context, string)               {}
func (NoopMetricsProvider) RecordDuplicate(context.Context, string, bool)         {}
func (NoopMetricsProvider) RecordValidationError(context.Context, string, string) {}

var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = NoopMetricsProvider{}
)
