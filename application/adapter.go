// Package application composes the mapper, query builder, result cache and
// vector client into the memory adapter used by agent runtimes.
package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/felixgeelhaar/agent-memory/domain/config"
	"github.com/felixgeelhaar/agent-memory/domain/memory"
	"github.com/felixgeelhaar/agent-memory/domain/vector"
	"github.com/felixgeelhaar/agent-memory/infrastructure/logging"
	"github.com/felixgeelhaar/agent-memory/infrastructure/mapper"
	"github.com/felixgeelhaar/agent-memory/infrastructure/observability"
	"github.com/felixgeelhaar/agent-memory/infrastructure/query"
	"github.com/felixgeelhaar/agent-memory/infrastructure/resultcache"
	"github.com/felixgeelhaar/agent-memory/infrastructure/telemetry"
)

// Operation names used for metrics and logs.
const (
	opInit            = "init"
	opUpsertKnowledge = "upsert_knowledge"
	opUpsertMemory    = "upsert_memory"
	opGetMemories     = "get_memories"
	opListMemories    = "list_memories"
	opSearchMemories  = "search_memories"
	opSearchByEmbed   = "search_memories_by_embedding"
	opSearchKnowledge = "search_knowledge"
)

// embeddingPrecision rounds cleaned embeddings to six decimals.
const embeddingPrecision = 1e6

// Adapter stores memories and knowledge in a vector database.
type Adapter struct {
	cfg        config.AdapterConfig
	collection string
	vectorSize int

	client  vector.Client
	tracing *observability.Provider
	cache   *resultcache.Cache
	mapper  *mapper.Mapper
	metrics telemetry.Metrics
	now     func() time.Time
}

var (
	_ memory.Store      = (*Adapter)(nil)
	_ memory.CacheStore = (*Adapter)(nil)
)

// New validates cfg and builds the adapter. A configuration with missing
// connection settings fails before any client is constructed.
func New(cfg *config.AdapterConfig, opts ...Option) (*Adapter, error) {
	if cfg == nil {
		cfg = &config.AdapterConfig{}
	}
	c := *cfg
	c.ApplyDefaults()
	if errs := config.NewValidator().Validate(&c); errs.HasErrors() {
		return nil, fmt.Errorf("%w: %w", config.ErrValidationFailed, errs)
	}

	o := adapterOptions{
		clientFactory: DefaultClientFactory,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = telemetry.NewMetricsProvider(telemetry.DefaultMetricsConfig())
	}

	client, err := o.clientFactory(&c)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector client: %w", err)
	}

	tracer := o.tracer
	var tracing *observability.Provider
	if tracer == nil && c.Tracing.Enabled {
		tracing, err = observability.New(observability.FromTracingConfig(c.Tracing))
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to set up tracing: %w", err)
		}
		tracer = tracing.Tracer()
	}
	if tracer != nil {
		client = observability.NewClient(client, tracer)
	}
	client = withResilience(client, c.Resilience)

	backend := o.cacheBackend
	if backend == nil {
		backend, err = NewCacheBackend(&c)
		if err != nil {
			_ = client.Close()
			if tracing != nil {
				_ = tracing.Shutdown(context.Background())
			}
			return nil, fmt.Errorf("failed to create cache backend: %w", err)
		}
	}

	mapperOpts := []mapper.Option{mapper.WithClock(o.now)}
	if o.newID != nil {
		mapperOpts = append(mapperOpts, mapper.WithIDGenerator(o.newID))
	}

	return &Adapter{
		cfg:        c,
		collection: c.Collection,
		vectorSize: c.VectorSize,
		client:     client,
		tracing:    tracing,
		cache:      resultcache.New(backend, resultcache.WithTTL(c.Cache.TTL.Duration())),
		mapper:     mapper.New(c.VectorSize, mapperOpts...),
		metrics:    o.metrics,
		now:        o.now,
	}, nil
}

// Config returns the effective configuration, defaults applied.
func (a *Adapter) Config() config.AdapterConfig {
	return a.cfg
}

// observe records the outcome of a store operation.
func (a *Adapter) observe(ctx context.Context, op string, start time.Time, err error) {
	a.metrics.RecordStoreOperation(ctx, op, a.collection, err == nil, a.now().Sub(start))
	var invalid *validationError
	if err != nil && !errors.As(err, &invalid) {
		logging.Error().
			Add(logging.Operation(op)).
			Add(logging.Collection(a.collection)).
			Add(logging.ErrorField(err)).
			Msg("vector store operation failed")
	}
}

// validationError marks errors raised before any remote call.
type validationError struct {
	err error
}

func (e *validationError) Error() string { return e.err.Error() }
func (e *validationError) Unwrap() error { return e.err }

func (a *Adapter) invalid(ctx context.Context, op, reason string, sentinel error, detail string) error {
	a.metrics.RecordValidationError(ctx, op, reason)
	logging.Warn().
		Add(logging.Operation(op)).
		Add(logging.Str("reason", reason)).
		Msg("rejected request")
	if detail == "" {
		return &validationError{err: sentinel}
	}
	return &validationError{err: fmt.Errorf("%w: %s", sentinel, detail)}
}

func (a *Adapter) checkDimension(ctx context.Context, op string, embedding []float32) error {
	if len(embedding) != a.vectorSize {
		return a.invalid(ctx, op, "dimension", memory.ErrDimensionMismatch,
			fmt.Sprintf("got %d, want %d", len(embedding), a.vectorSize))
	}
	return nil
}

// Init creates the collection when it does not exist yet.
func (a *Adapter) Init(ctx context.Context) (err error) {
	start := a.now()
	defer func() { a.observe(ctx, opInit, start, err) }()

	names, err := a.client.ListCollections(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == a.collection {
			logging.Info().
				Add(logging.Collection(a.collection)).
				Msg("collection already exists")
			return nil
		}
	}

	if err := a.client.CreateCollection(ctx, a.collection, vector.CollectionConfig{
		VectorSize: a.vectorSize,
		Distance:   vector.DistanceCosine,
	}); err != nil {
		return err
	}
	logging.Info().
		Add(logging.Collection(a.collection)).
		Add(logging.Count(a.vectorSize)).
		Msg("collection created")
	return nil
}

// UpsertKnowledge writes a knowledge item and waits for the store to
// acknowledge it.
func (a *Adapter) UpsertKnowledge(ctx context.Context, k memory.Knowledge) (err error) {
	start := a.now()
	defer func() { a.observe(ctx, opUpsertKnowledge, start, err) }()

	point := a.mapper.KnowledgeToPoint(k)
	if err := a.client.Upsert(ctx, a.collection, vector.UpsertRequest{
		Wait:   true,
		Points: []vector.Point{point},
	}); err != nil {
		return err
	}
	logging.Debug().
		Add(logging.PointID(point.ID)).
		Add(logging.AgentID(k.AgentID)).
		Msg("knowledge upserted")
	return nil
}

// UpsertMemory writes m into tableName. When unique is nil and m carries
// an embedding, a near-duplicate search in the same room and table decides
// it. The check and the write are not atomic.
func (a *Adapter) UpsertMemory(ctx context.Context, m memory.Memory, tableName string, unique *bool) (err error) {
	start := a.now()
	defer func() { a.observe(ctx, opUpsertMemory, start, err) }()

	if tableName == "" {
		return a.invalid(ctx, opUpsertMemory, "table", memory.ErrMissingTableName, "")
	}
	if len(m.Embedding) > 0 {
		if err := a.checkDimension(ctx, opUpsertMemory, m.Embedding); err != nil {
			return err
		}
	}

	resolved, err := a.resolveUnique(ctx, m, tableName, unique)
	if err != nil {
		return err
	}

	point := a.mapper.MemoryToPoint(m, tableName, resolved)
	if err := a.client.Upsert(ctx, a.collection, vector.UpsertRequest{
		Wait:   true,
		Points: []vector.Point{point},
	}); err != nil {
		return err
	}
	logging.Debug().
		Add(logging.PointID(point.ID)).
		Add(logging.Table(tableName)).
		Add(logging.RoomID(m.RoomID)).
		Add(logging.Unique(resolved)).
		Msg("memory upserted")
	return nil
}

// resolveUnique applies, in order: the explicit flag, the duplicate
// search, the flag on the record, true.
func (a *Adapter) resolveUnique(ctx context.Context, m memory.Memory, tableName string, unique *bool) (bool, error) {
	if unique != nil {
		return *unique, nil
	}
	if len(m.Embedding) > 0 {
		threshold := memory.DuplicateThreshold
		hits, err := a.client.Search(ctx, a.collection, vector.SearchRequest{
			Vector:         m.Embedding,
			Limit:          1,
			ScoreThreshold: &threshold,
			Filter: query.BuildFilter(query.Params{
				TableName: tableName,
				RoomID:    m.RoomID,
			}),
		})
		if err != nil {
			return false, err
		}
		duplicate := len(hits) > 0
		a.metrics.RecordDuplicate(ctx, tableName, duplicate)
		return !duplicate, nil
	}
	if m.Unique != nil {
		return *m.Unique, nil
	}
	return true, nil
}

// GetMemoryByID returns the memory stored under the external id, or nil
// when none exists.
func (a *Adapter) GetMemoryByID(ctx context.Context, id string) (*memory.Memory, error) {
	memories, err := a.GetMemoriesByIDs(ctx, []string{id})
	if err != nil || len(memories) == 0 {
		return nil, err
	}
	return &memories[0], nil
}

// GetMemoriesByIDs returns the memories found for the external ids.
// Missing ids are skipped.
func (a *Adapter) GetMemoriesByIDs(ctx context.Context, ids []string) (_ []memory.Memory, err error) {
	start := a.now()
	defer func() { a.observe(ctx, opGetMemories, start, err) }()

	if len(ids) == 0 {
		return nil, nil
	}
	points, err := a.client.Retrieve(ctx, a.collection, vector.RetrieveRequest{
		IDs:         vector.NormalizeIDs(ids),
		WithPayload: true,
		WithVector:  true,
	})
	if err != nil {
		return nil, err
	}
	a.metrics.RecordResults(ctx, opGetMemories, len(points))
	return a.mapper.PointsToMemories(points), nil
}

// ListMemories returns memories of a room and table without similarity
// ranking.
func (a *Adapter) ListMemories(ctx context.Context, params memory.ListParams) (_ []memory.Memory, err error) {
	start := a.now()
	defer func() { a.observe(ctx, opListMemories, start, err) }()

	if params.TableName == "" {
		return nil, a.invalid(ctx, opListMemories, "table", memory.ErrMissingTableName, "")
	}
	if params.RoomID == "" {
		return nil, a.invalid(ctx, opListMemories, "room", memory.ErrMissingRoomID, "")
	}

	count := params.Count
	if count <= 0 {
		count = memory.DefaultListCount
	}

	points, err := a.client.Scroll(ctx, a.collection, vector.ScrollRequest{
		Limit: count,
		Filter: query.BuildFilter(query.Params{
			TableName: params.TableName,
			RoomID:    params.RoomID,
			AgentID:   params.AgentID,
			Unique:    params.Unique,
			Start:     params.Start,
			End:       params.End,
		}),
		WithPayload: true,
		WithVector:  true,
	})
	if err != nil {
		return nil, err
	}
	a.metrics.RecordResults(ctx, opListMemories, len(points))
	logging.Debug().
		Add(logging.Table(params.TableName)).
		Add(logging.RoomID(params.RoomID)).
		Add(logging.Count(len(points))).
		Msg("memories listed")
	return a.mapper.PointsToMemories(points), nil
}

// SearchMemories runs a similarity search within a table, optionally
// narrowed to a room, an agent and a uniqueness flag.
func (a *Adapter) SearchMemories(ctx context.Context, params memory.SearchParams) (_ []memory.Memory, err error) {
	start := a.now()
	defer func() { a.observe(ctx, opSearchMemories, start, err) }()

	if len(params.Embedding) == 0 {
		return nil, a.invalid(ctx, opSearchMemories, "embedding", memory.ErrMissingEmbedding, "")
	}
	if err := a.checkDimension(ctx, opSearchMemories, params.Embedding); err != nil {
		return nil, err
	}

	count := params.Count
	if count <= 0 {
		count = memory.DefaultSearchCount
	}
	threshold := params.MatchThreshold

	return a.search(ctx, opSearchMemories, params.Embedding, count, threshold, query.Params{
		TableName: params.TableName,
		RoomID:    params.RoomID,
		AgentID:   params.AgentID,
		Unique:    params.Unique,
	})
}

// SearchMemoriesByEmbedding is SearchMemories with the embedding cleaned
// first: non-finite components become 0 and the rest are rounded to six
// decimals.
func (a *Adapter) SearchMemoriesByEmbedding(ctx context.Context, embedding []float32, params memory.EmbeddingSearchParams) (_ []memory.Memory, err error) {
	start := a.now()
	defer func() { a.observe(ctx, opSearchByEmbed, start, err) }()

	if err := a.checkDimension(ctx, opSearchByEmbed, embedding); err != nil {
		return nil, err
	}

	var threshold float32
	if params.MatchThreshold != nil {
		threshold = *params.MatchThreshold
	}
	count := params.Count
	if count <= 0 {
		count = memory.DefaultSearchCount
	}

	return a.search(ctx, opSearchByEmbed, cleanEmbedding(embedding), count, threshold, query.Params{
		TableName: params.TableName,
		RoomID:    params.RoomID,
		AgentID:   params.AgentID,
		Unique:    params.Unique,
	})
}

func (a *Adapter) search(ctx context.Context, op string, embedding []float32, count int, threshold float32, p query.Params) ([]memory.Memory, error) {
	hits, err := a.client.Search(ctx, a.collection, vector.SearchRequest{
		Vector:         embedding,
		Limit:          count,
		ScoreThreshold: &threshold,
		Filter:         query.BuildFilter(p),
		WithPayload:    true,
		WithVector:     true,
	})
	if err != nil {
		return nil, err
	}
	a.metrics.RecordResults(ctx, op, len(hits))
	return a.mapper.ScoredToMemories(hits), nil
}

// cleanEmbedding returns a copy of v with NaN and infinities replaced by
// zero and every value rounded to six decimals.
func cleanEmbedding(v []float32) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		out[i] = float32(math.Round(f*embeddingPrecision) / embeddingPrecision)
	}
	return out
}

// SearchKnowledge returns knowledge items for the requested ids. Results
// are cached per agent and embedding; a hit is returned as stored without
// consulting the other parameters.
func (a *Adapter) SearchKnowledge(ctx context.Context, params memory.KnowledgeSearchParams) (_ []memory.Knowledge, err error) {
	start := a.now()
	defer func() { a.observe(ctx, opSearchKnowledge, start, err) }()

	key := resultcache.Fingerprint(params.AgentID, params.Embedding)

	if cached, ok := a.cachedKnowledge(ctx, params.AgentID, key); ok {
		a.metrics.RecordCacheHit(ctx, params.AgentID)
		logging.Debug().
			Add(logging.AgentID(params.AgentID)).
			Add(logging.Cached(true)).
			Add(logging.Count(len(cached))).
			Msg("knowledge search served from cache")
		return cached, nil
	}
	a.metrics.RecordCacheMiss(ctx, params.AgentID)

	points, err := a.client.Retrieve(ctx, a.collection, vector.RetrieveRequest{
		IDs:         vector.NormalizeIDs(params.IDs),
		WithPayload: true,
		WithVector:  true,
	})
	if err != nil {
		return nil, err
	}
	results := a.mapper.PointsToKnowledge(points)
	a.metrics.RecordResults(ctx, opSearchKnowledge, len(results))

	data, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode knowledge results: %w", err)
	}
	if _, err := a.cache.Set(ctx, params.AgentID, key, string(data)); err != nil {
		logging.Warn().
			Add(logging.AgentID(params.AgentID)).
			Add(logging.ErrorField(err)).
			Msg("failed to cache knowledge results")
	}

	logging.Debug().
		Add(logging.AgentID(params.AgentID)).
		Add(logging.Cached(false)).
		Add(logging.Count(len(results))).
		Msg("knowledge search completed")
	return results, nil
}

// cachedKnowledge reads a cached result. Backend failures and unreadable
// entries count as misses.
func (a *Adapter) cachedKnowledge(ctx context.Context, agentID, key string) ([]memory.Knowledge, bool) {
	raw, ok, err := a.cache.Get(ctx, agentID, key)
	if err != nil {
		logging.Warn().
			Add(logging.AgentID(agentID)).
			Add(logging.ErrorField(err)).
			Msg("result cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var results []memory.Knowledge
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		logging.Warn().
			Add(logging.AgentID(agentID)).
			Add(logging.ErrorField(err)).
			Msg("discarding unreadable cache entry")
		return nil, false
	}
	return results, true
}

// GetCache returns the value cached for an agent's key.
func (a *Adapter) GetCache(ctx context.Context, agentID, key string) (string, bool, error) {
	return a.cache.Get(ctx, agentID, key)
}

// SetCache stores a value for an agent's key.
func (a *Adapter) SetCache(ctx context.Context, agentID, key, value string) (bool, error) {
	return a.cache.Set(ctx, agentID, key, value)
}

// DeleteCache removes an agent's key and reports whether it existed.
func (a *Adapter) DeleteCache(ctx context.Context, agentID, key string) (bool, error) {
	return a.cache.Delete(ctx, agentID, key)
}

// Close releases the vector client and the cache backend, then flushes
// pending spans.
func (a *Adapter) Close() error {
	err := errors.Join(a.client.Close(), a.cache.Close())
	if a.tracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, a.tracing.Shutdown(ctx))
	}
	return err
}
