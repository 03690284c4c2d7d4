package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/felixgeelhaar/agent-memory/domain/config"
	"github.com/felixgeelhaar/agent-memory/domain/vector"
	storemem "github.com/felixgeelhaar/agent-memory/infrastructure/storage/memory"
)

func setupTracedClient(t *testing.T, next vector.Client) (*tracetest.SpanRecorder, *Client) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return recorder, NewClient(next, tp.Tracer("test"))
}

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServiceName != "agent-memory" {
		t.Errorf("expected default service name, got: %s", cfg.ServiceName)
	}
	if cfg.Exporter != config.ExporterNoop {
		t.Errorf("expected noop exporter by default, got: %s", cfg.Exporter)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected full sampling, got: %v", cfg.SampleRate)
	}
}

func TestFromTracingConfig(t *testing.T) {
	cfg := DefaultConfig()
	FromTracingConfig(config.TracingConfig{
		Enabled:     true,
		Exporter:    config.ExporterOTLP,
		Endpoint:    "collector:4317",
		Insecure:    true,
		ServiceName: "memory-svc",
		SampleRate:  0.25,
	})(&cfg)

	if cfg.ServiceName != "memory-svc" || cfg.Exporter != config.ExporterOTLP {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Endpoint != "collector:4317" || !cfg.Insecure || cfg.SampleRate != 0.25 {
		t.Errorf("unexpected exporter settings: %+v", cfg)
	}
}

func TestProviderWithNoopExporter(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.Enabled() {
		t.Error("noop provider should not export")
	}
	if p.Tracer() == nil {
		t.Fatal("expected non-nil tracer")
	}
	_, span := p.Tracer().Start(context.Background(), "ignored")
	if span.IsRecording() {
		t.Error("noop spans should not record")
	}
	span.End()
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestProviderWithStdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	p, err := New(WithStdout(&buf), WithBatchTimeout(10*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !p.Enabled() {
		t.Fatal("stdout provider should export")
	}

	client := NewClient(storemem.NewVectorClient(), p.Tracer())
	if _, err := client.ListCollections(context.Background()); err != nil {
		t.Fatalf("ListCollections() error = %v", err)
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !strings.Contains(buf.String(), "vector.list_collections") {
		t.Errorf("expected exported span, got: %s", buf.String())
	}
}

func TestProviderUnknownExporter(t *testing.T) {
	_, err := New(func(c *Config) { c.Exporter = "zipkin" })
	if !errors.Is(err, config.ErrInvalidSetting) {
		t.Errorf("error = %v, want ErrInvalidSetting", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0.0, "AlwaysOffSampler"},
		{-1, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestClient_Spans(t *testing.T) {
	recorder, client := setupTracedClient(t, storemem.NewVectorClient())
	ctx := context.Background()

	if err := client.CreateCollection(ctx, "memories", vector.CollectionConfig{VectorSize: 3, Distance: vector.DistanceCosine}); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	err := client.Upsert(ctx, "memories", vector.UpsertRequest{Wait: true, Points: []vector.Point{
		{ID: vector.NormalizeID("a"), Vector: []float32{1, 0, 0}},
		{ID: vector.NormalizeID("b"), Vector: []float32{0, 1, 0}},
	}})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	found, err := client.Search(ctx, "memories", vector.SearchRequest{Vector: []float32{1, 0, 0}, Limit: 5})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 3 {
		t.Fatalf("got %d spans, want 3", len(spans))
	}

	upsert := spans[1]
	if upsert.Name() != "vector.upsert" {
		t.Errorf("span name = %s, want vector.upsert", upsert.Name())
	}
	if v, ok := attr(upsert, "vector.points"); !ok || v.AsInt64() != 2 {
		t.Errorf("vector.points = %v, want 2", v.AsInt64())
	}
	if v, ok := attr(upsert, "vector.collection"); !ok || v.AsString() != "memories" {
		t.Errorf("vector.collection = %q", v.AsString())
	}

	search := spans[2]
	if v, _ := attr(search, "vector.results"); v.AsInt64() != int64(len(found)) {
		t.Errorf("vector.results = %d, want %d", v.AsInt64(), len(found))
	}
	if search.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", search.Status().Code)
	}
}

func TestClient_RecordsErrors(t *testing.T) {
	recorder, client := setupTracedClient(t, storemem.NewVectorClient())

	_, err := client.Scroll(context.Background(), "missing", vector.ScrollRequest{Limit: 10})
	if !errors.Is(err, vector.ErrCollectionNotFound) {
		t.Fatalf("Scroll() error = %v, want ErrCollectionNotFound", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", spans[0].Status().Code)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestClient_Close(t *testing.T) {
	inner := storemem.NewVectorClient()
	_, client := setupTracedClient(t, inner)

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := inner.ListCollections(context.Background()); !errors.Is(err, vector.ErrClientClosed) {
		t.Errorf("inner client should be closed, got %v", err)
	}
}
