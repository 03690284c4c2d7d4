package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMetrics(t *testing.T) (*metric.ManualReader, *MetricsProvider) {
	t.Helper()

	reader := metric.NewManualReader()
	config := DefaultMetricsConfig()
	config.Provider = metric.NewMeterProvider(metric.WithReader(reader))

	mp := NewMetricsProvider(config)
	if mp.Error() != nil {
		t.Fatalf("failed to create metrics provider: %v", mp.Error())
	}
	return reader, mp
}

func collect(t *testing.T, reader *metric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumInt64(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()

	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetricsProvider_RecordStoreOperation(t *testing.T) {
	t.Parallel()

	reader, mp := setupTestMetrics(t)
	ctx := context.Background()

	mp.RecordStoreOperation(ctx, "search", "memories", true, 10*time.Millisecond)
	mp.RecordStoreOperation(ctx, "upsert", "memories", false, 5*time.Millisecond)

	got := collect(t, reader)

	ops, ok := got["memory.store.operations"]
	if !ok {
		t.Fatal("memory.store.operations metric not found")
	}
	if total := sumInt64(t, ops); total != 2 {
		t.Errorf("operations = %d, want 2", total)
	}

	errs, ok := got["memory.store.errors"]
	if !ok {
		t.Fatal("memory.store.errors metric not found")
	}
	if total := sumInt64(t, errs); total != 1 {
		t.Errorf("errors = %d, want 1", total)
	}

	if _, ok := got["memory.store.duration"]; !ok {
		t.Error("memory.store.duration metric not found")
	}
}

func TestMetricsProvider_RecordCacheHitMiss(t *testing.T) {
	t.Parallel()

	reader, mp := setupTestMetrics(t)
	ctx := context.Background()

	mp.RecordCacheHit(ctx, "agent-1")
	mp.RecordCacheHit(ctx, "agent-1")
	mp.RecordCacheMiss(ctx, "agent-2")

	got := collect(t, reader)
	if total := sumInt64(t, got["memory.cache.hits"]); total != 2 {
		t.Errorf("hits = %d, want 2", total)
	}
	if total := sumInt64(t, got["memory.cache.misses"]); total != 1 {
		t.Errorf("misses = %d, want 1", total)
	}
}

func TestMetricsProvider_RecordOther(t *testing.T) {
	t.Parallel()

	reader, mp := setupTestMetrics(t)
	ctx := context.Background()

	mp.RecordResults(ctx, "list", 7)
	mp.RecordDuplicate(ctx, "facts", true)
	mp.RecordValidationError(ctx, "search_by_embedding", "dimension")

	got := collect(t, reader)
	for _, name := range []string{"memory.store.results", "memory.dedup.checks", "memory.validation.errors"} {
		if _, ok := got[name]; !ok {
			t.Errorf("%s metric not found", name)
		}
	}
}

func TestNoopMetricsProvider(t *testing.T) {
	t.Parallel()

	var noop Metrics = NoopMetricsProvider{}
	ctx := context.Background()

	noop.RecordStoreOperation(ctx, "op", "c", true, time.Second)
	noop.RecordResults(ctx, "op", 1)
	noop.RecordCacheHit(ctx, "a")
	noop.RecordCacheMiss(ctx, "a")
	noop.RecordDuplicate(ctx, "t", false)
	noop.RecordValidationError(ctx, "op", "r")
}

func TestDefaultMetricsConfig(t *testing.T) {
	t.Parallel()

	config := DefaultMetricsConfig()
	if config.MeterName == "" {
		t.Error("MeterName should not be empty")
	}
	if config.MeterVersion == "" {
		t.Error("MeterVersion should not be empty")
	}
}
