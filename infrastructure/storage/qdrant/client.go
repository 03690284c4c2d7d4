package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"

	"github.com/felixgeelhaar/agent-memory/domain/vector"
)

// api is the subset of *qdrant.Client used here.
type api interface {
	ListCollections(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Scroll(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Close() error
}

// Client is a vector.Client backed by Qdrant. Server errors are returned
// unchanged.
type Client struct {
	api    api
	config Config
}

// NewClient connects to Qdrant.
func NewClient(cfg Config, opts ...ConfigOption) (*Client, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	host, useTLS, err := cfg.endpoint()
	if err != nil {
		return nil, err
	}

	var grpcOpts []grpc.DialOption
	if cfg.MaxMessageSize > 0 {
		grpcOpts = append(grpcOpts, grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(cfg.MaxMessageSize)))
	}

	c, err := qdrant.NewClient(&qdrant.Config{
		Host:                   host,
		Port:                   cfg.Port,
		APIKey:                 cfg.APIKey,
		UseTLS:                 useTLS,
		PoolSize:               cfg.PoolSize,
		GrpcOptions:            grpcOpts,
		SkipCompatibilityCheck: cfg.SkipCompatibilityCheck,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: connect %s:%d: %w", host, cfg.Port, err)
	}

	return &Client{api: c, config: cfg}, nil
}

func newClientFromAPI(a api, cfg Config) *Client {
	return &Client{api: a, config: cfg}
}

// withTimeout applies the configured timeout when ctx has no deadline.
func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || c.config.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.config.Timeout)
}

// ListCollections returns the names of all collections.
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.api.ListCollections(ctx)
}

// CreateCollection creates a single-vector collection.
func (c *Client) CreateCollection(ctx context.Context, name string, cfg vector.CollectionConfig) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	return c.api.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(cfg.VectorSize),
			Distance: toDistance(cfg.Distance),
		}),
	})
}

// Upsert writes points.
func (c *Client) Upsert(ctx context.Context, collection string, req vector.UpsertRequest) error {
	points := make([]*qdrant.PointStruct, 0, len(req.Points))
	for _, p := range req.Points {
		ps, err := toPointStruct(p)
		if err != nil {
			return err
		}
		points = append(points, ps)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.api.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(req.Wait),
		Points:         points,
	})
	return err
}

// Search runs a nearest-neighbour query.
func (c *Client) Search(ctx context.Context, collection string, req vector.SearchRequest) ([]vector.ScoredPoint, error) {
	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQueryDense(req.Vector),
		Filter:         toFilter(req.Filter),
		ScoreThreshold: req.ScoreThreshold,
		WithPayload:    qdrant.NewWithPayload(req.WithPayload),
		WithVectors:    qdrant.NewWithVectors(req.WithVector),
	}
	if req.Limit > 0 {
		query.Limit = qdrant.PtrOf(uint64(req.Limit))
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.api.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]vector.ScoredPoint, 0, len(res))
	for _, sp := range res {
		out = append(out, vector.ScoredPoint{
			Point: fromPoint(sp.GetId(), sp.GetPayload(), sp.GetVectors()),
			Score: sp.GetScore(),
		})
	}
	return out, nil
}

// Scroll lists points matching the filter.
func (c *Client) Scroll(ctx context.Context, collection string, req vector.ScrollRequest) ([]vector.Point, error) {
	scroll := &qdrant.ScrollPoints{
		CollectionName: collection,
		Filter:         toFilter(req.Filter),
		WithPayload:    qdrant.NewWithPayload(req.WithPayload),
		WithVectors:    qdrant.NewWithVectors(req.WithVector),
	}
	if req.Limit > 0 {
		scroll.Limit = qdrant.PtrOf(uint32(req.Limit))
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.api.Scroll(ctx, scroll)
	if err != nil {
		return nil, err
	}
	return fromRetrieved(res), nil
}

// Retrieve fetches points by id.
func (c *Client) Retrieve(ctx context.Context, collection string, req vector.RetrieveRequest) ([]vector.Point, error) {
	ids := make([]*qdrant.PointId, 0, len(req.IDs))
	for _, id := range req.IDs {
		ids = append(ids, qdrant.NewID(id))
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.api.Get(ctx, &qdrant.GetPoints{
		CollectionName: collection,
		Ids:            ids,
		WithPayload:    qdrant.NewWithPayload(req.WithPayload),
		WithVectors:    qdrant.NewWithVectors(req.WithVector),
	})
	if err != nil {
		return nil, err
	}
	return fromRetrieved(res), nil
}

// Close closes the gRPC connections.
func (c *Client) Close() error {
	return c.api.Close()
}

var _ vector.Client = (*Client)(nil)
