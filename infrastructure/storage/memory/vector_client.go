// Package memory provides in-process implementations of the vector client
// and the cache backend, for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/felixgeelhaar/agent-memory/domain/vector"
)

type collection struct {
	config vector.CollectionConfig
	points map[string]vector.Point
}

// VectorClient is an in-process vector.Client with cosine similarity
// search. It counts calls per operation so tests can assert on them.
type VectorClient struct {
	mu          sync.RWMutex
	collections map[string]*collection
	calls       map[string]int
	closed      bool

	// Err, when set, is returned by every subsequent call.
	err error
}

// NewVectorClient creates an empty client.
func NewVectorClient() *VectorClient {
	return &VectorClient{
		collections: make(map[string]*collection),
		calls:       make(map[string]int),
	}
}

// FailWith makes every later call return err. Pass nil to recover.
func (c *VectorClient) FailWith(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// Calls returns how many times op was invoked.
func (c *VectorClient) Calls(op string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls[op]
}

// TotalCalls returns the number of calls across all operations.
func (c *VectorClient) TotalCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int
	for _, v := range c.calls {
		n += v
	}
	return n
}

// begin records a call and reports the error the call must fail with.
// Must be called with the write lock held.
func (c *VectorClient) begin(ctx context.Context, op string) error {
	c.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.closed {
		return vector.ErrClientClosed
	}
	return c.err
}

// ListCollections returns collection names in lexical order.
func (c *VectorClient) ListCollections(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, "list_collections"); err != nil {
		return nil, err
	}
	return slices.Sorted(maps.Keys(c.collections)), nil
}

// CreateCollection adds an empty collection.
func (c *VectorClient) CreateCollection(ctx context.Context, name string, cfg vector.CollectionConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, "create_collection"); err != nil {
		return err
	}
	if _, ok := c.collections[name]; ok {
		return fmt.Errorf("%w: %s", vector.ErrCollectionExists, name)
	}
	c.collections[name] = &collection{config: cfg, points: make(map[string]vector.Point)}
	return nil
}

// Upsert stores points, replacing existing ones with the same id.
func (c *VectorClient) Upsert(ctx context.Context, name string, req vector.UpsertRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, "upsert"); err != nil {
		return err
	}
	col, err := c.collection(name)
	if err != nil {
		return err
	}

	for _, p := range req.Points {
		if len(p.Vector) != 0 && len(p.Vector) != col.config.VectorSize {
			return fmt.Errorf("%w: got %d, want %d", vector.ErrDimensionMismatch, len(p.Vector), col.config.VectorSize)
		}
	}
	for _, p := range req.Points {
		col.points[p.ID] = copyPoint(p, true, true)
	}
	return nil
}

// Search ranks points by cosine similarity to req.Vector.
func (c *VectorClient) Search(ctx context.Context, name string, req vector.SearchRequest) ([]vector.ScoredPoint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, "search"); err != nil {
		return nil, err
	}
	col, err := c.collection(name)
	if err != nil {
		return nil, err
	}

	results := make([]vector.ScoredPoint, 0, len(col.points))
	for _, p := range col.points {
		if len(p.Vector) == 0 || !matches(p, req.Filter) {
			continue
		}
		score := cosineSimilarity(req.Vector, p.Vector)
		if req.ScoreThreshold != nil && score < *req.ScoreThreshold {
			continue
		}
		results = append(results, vector.ScoredPoint{
			Point: copyPoint(p, req.WithPayload, req.WithVector),
			Score: score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if req.Limit > 0 && req.Limit < len(results) {
		results = results[:req.Limit]
	}
	return results, nil
}

// Scroll lists matching points ordered by id.
func (c *VectorClient) Scroll(ctx context.Context, name string, req vector.ScrollRequest) ([]vector.Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, "scroll"); err != nil {
		return nil, err
	}
	col, err := c.collection(name)
	if err != nil {
		return nil, err
	}

	var out []vector.Point
	for _, id := range slices.Sorted(maps.Keys(col.points)) {
		p := col.points[id]
		if !matches(p, req.Filter) {
			continue
		}
		out = append(out, copyPoint(p, req.WithPayload, req.WithVector))
		if req.Limit > 0 && len(out) == req.Limit {
			break
		}
	}
	return out, nil
}

// Retrieve returns the stored points among req.IDs, in request order.
// Unknown ids are skipped.
func (c *VectorClient) Retrieve(ctx context.Context, name string, req vector.RetrieveRequest) ([]vector.Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.begin(ctx, "retrieve"); err != nil {
		return nil, err
	}
	col, err := c.collection(name)
	if err != nil {
		return nil, err
	}

	var out []vector.Point
	for _, id := range req.IDs {
		if p, ok := col.points[id]; ok {
			out = append(out, copyPoint(p, req.WithPayload, req.WithVector))
		}
	}
	return out, nil
}

// Close marks the client closed. Later calls return vector.ErrClientClosed.
func (c *VectorClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *VectorClient) collection(name string) (*collection, error) {
	col, ok := c.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", vector.ErrCollectionNotFound, name)
	}
	return col, nil
}

func matches(p vector.Point, f *vector.Filter) bool {
	if f.IsEmpty() {
		return true
	}
	for _, cond := range f.Must {
		if !matchCondition(p, cond) {
			return false
		}
	}
	return true
}

func matchCondition(p vector.Point, cond vector.Condition) bool {
	switch {
	case cond.HasID != nil:
		return slices.Contains(cond.HasID, p.ID)
	case cond.Match != nil:
		// Keyword matches only string payload values, as in Qdrant.
		v, ok := p.Payload[cond.Key].(string)
		return ok && v == cond.Match.Keyword
	case cond.Range != nil:
		f, ok := toFloat(p.Payload[cond.Key])
		if !ok {
			return false
		}
		if cond.Range.Gte != nil && f < *cond.Range.Gte {
			return false
		}
		if cond.Range.Lte != nil && f > *cond.Range.Lte {
			return false
		}
		return true
	default:
		return true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func copyPoint(p vector.Point, withPayload, withVector bool) vector.Point {
	out := vector.Point{ID: p.ID}
	if withVector && len(p.Vector) > 0 {
		out.Vector = slices.Clone(p.Vector)
	}
	if withPayload && p.Payload != nil {
		out.Payload = maps.Clone(p.Payload)
	}
	return out
}

// cosineSimilarity returns a value in [-1, 1]; mismatched lengths and
// zero vectors score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

var _ vector.Client = (*VectorClient)(nil)
