package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/agent-memory/domain/vector"
)

// Client decorates a vector.Client with one span per call.
type Client struct {
	next   vector.Client
	tracer trace.Tracer
}

// NewClient wraps next so every call runs inside a client span.
func NewClient(next vector.Client, tracer trace.Tracer) *Client {
	return &Client{next: next, tracer: tracer}
}

var _ vector.Client = (*Client)(nil)

func (c *Client) start(ctx context.Context, op, collection string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("vector.operation", op))
	if collection != "" {
		attrs = append(attrs, attribute.String("vector.collection", collection))
	}
	return c.tracer.Start(ctx, "vector."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func filterSize(f *vector.Filter) int {
	if f.IsEmpty() {
		return 0
	}
	return len(f.Must)
}

// ListCollections implements vector.Client.
func (c *Client) ListCollections(ctx context.Context) (names []string, err error) {
	ctx, span := c.start(ctx, "list_collections", "")
	defer func() { finish(span, err) }()

	names, err = c.next.ListCollections(ctx)
	span.SetAttributes(attribute.Int("vector.results", len(names)))
	return names, err
}

// CreateCollection implements vector.Client.
func (c *Client) CreateCollection(ctx context.Context, name string, cfg vector.CollectionConfig) (err error) {
	ctx, span := c.start(ctx, "create_collection", name,
		attribute.Int("vector.size", cfg.VectorSize),
		attribute.String("vector.distance", string(cfg.Distance)),
	)
	defer func() { finish(span, err) }()

	return c.next.CreateCollection(ctx, name, cfg)
}

// Upsert implements vector.Client.
func (c *Client) Upsert(ctx context.Context, collection string, req vector.UpsertRequest) (err error) {
	ctx, span := c.start(ctx, "upsert", collection,
		attribute.Int("vector.points", len(req.Points)),
		attribute.Bool("vector.wait", req.Wait),
	)
	defer func() { finish(span, err) }()

	return c.next.Upsert(ctx, collection, req)
}

// Search implements vector.Client.
func (c *Client) Search(ctx context.Context, collection string, req vector.SearchRequest) (points []vector.ScoredPoint, err error) {
	attrs := []attribute.KeyValue{
		attribute.Int("vector.limit", req.Limit),
		attribute.Int("vector.filter_conditions", filterSize(req.Filter)),
	}
	if req.ScoreThreshold != nil {
		attrs = append(attrs, attribute.Float64("vector.score_threshold", float64(*req.ScoreThreshold)))
	}
	ctx, span := c.start(ctx, "search", collection, attrs...)
	defer func() { finish(span, err) }()

	points, err = c.next.Search(ctx, collection, req)
	span.SetAttributes(attribute.Int("vector.results", len(points)))
	return points, err
}

// Scroll implements vector.Client.
func (c *Client) Scroll(ctx context.Context, collection string, req vector.ScrollRequest) (points []vector.Point, err error) {
	ctx, span := c.start(ctx, "scroll", collection,
		attribute.Int("vector.limit", req.Limit),
		attribute.Int("vector.filter_conditions", filterSize(req.Filter)),
	)
	defer func() { finish(span, err) }()

	points, err = c.next.Scroll(ctx, collection, req)
	span.SetAttributes(attribute.Int("vector.results", len(points)))
	return points, err
}

// Retrieve implements vector.Client.
func (c *Client) Retrieve(ctx context.Context, collection string, req vector.RetrieveRequest) (points []vector.Point, err error) {
	ctx, span := c.start(ctx, "retrieve", collection,
		attribute.Int("vector.ids", len(req.IDs)),
	)
	defer func() { finish(span, err) }()

	points, err = c.next.Retrieve(ctx, collection, req)
	span.SetAttributes(attribute.Int("vector.results", len(points)))
	return points, err
}

// Close implements vector.Client.
func (c *Client) Close() error {
	return c.next.Close()
}
