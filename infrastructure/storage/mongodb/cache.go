package mongodb

import (
	"context"
	"errors"
	"regexp"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/felixgeelhaar/agent-memory/domain/cache"
)

// cacheDocument is one cache entry. A TTL index on expires_at lets the
// server reap expired documents.
type cacheDocument struct {
	Key       string     `bson:"_id"`
	Value     []byte     `bson:"value"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// collection is the subset of *mongo.Collection used by the cache.
type collection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	ReplaceOne(ctx context.Context, filter, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteMany(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error)
}

var _ collection = (*mongo.Collection)(nil)

// Cache is a MongoDB-backed implementation of cache.Cache.
type Cache struct {
	coll         collection
	disconnect   func(context.Context) error
	keyPrefix    string
	queryTimeout time.Duration
	now          func() time.Time
	closed       atomic.Bool
	hits         atomic.Int64
	misses       atomic.Int64
}

// NewCache connects to MongoDB and ensures the expiry index.
func NewCache(ctx context.Context, cfg Config, opts ...ConfigOption) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, wrapError(err)
	}

	c := newCache(coll, cfg)
	c.disconnect = client.Disconnect
	return c, nil
}

func newCache(coll collection, cfg Config) *Cache {
	return &Cache{
		coll:         coll,
		disconnect:   func(context.Context) error { return nil },
		keyPrefix:    cfg.KeyPrefix,
		queryTimeout: cfg.QueryTimeout,
		now:          time.Now,
	}
}

func (c *Cache) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if c.closed.Load() {
		return ctx, func() {}, cache.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return ctx, func() {}, err
	}
	if _, ok := ctx.Deadline(); ok || c.queryTimeout <= 0 {
		return ctx, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	return ctx, cancel, nil
}

// liveFilter matches key when it has not expired. The TTL monitor runs
// about once a minute, so expiry is also enforced in queries.
func (c *Cache) liveFilter(key string) bson.M {
	return bson.M{
		"_id": c.keyPrefix + key,
		"$or": bson.A{
			bson.M{"expires_at": bson.M{"$exists": false}},
			bson.M{"expires_at": bson.M{"$gt": c.now()}},
		},
	}
}

// Get retrieves a live value.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel, err := c.begin(ctx)
	defer cancel()
	if err != nil {
		return nil, false, err
	}

	var doc cacheDocument
	err = c.coll.FindOne(ctx, c.liveFilter(key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapError(err)
	}

	c.hits.Add(1)
	return doc.Value, true, nil
}

// Set upserts a value.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if key == "" {
		return cache.ErrInvalidKey
	}
	ctx, cancel, err := c.begin(ctx)
	defer cancel()
	if err != nil {
		return err
	}

	doc := c.toDocument(key, value, opts.TTL)
	_, err = c.coll.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, options.Replace().SetUpsert(true))
	return wrapError(err)
}

func (c *Cache) toDocument(key string, value []byte, ttl time.Duration) cacheDocument {
	now := c.now()
	doc := cacheDocument{
		Key:       c.keyPrefix + key,
		Value:     value,
		UpdatedAt: now,
	}
	if doc.Value == nil {
		doc.Value = []byte{}
	}
	if ttl > 0 {
		exp := now.Add(ttl)
		doc.ExpiresAt = &exp
	}
	return doc
}

// Delete removes a value.
func (c *Cache) Delete(ctx context.Context, key string) error {
	ctx, cancel, err := c.begin(ctx)
	defer cancel()
	if err != nil {
		return err
	}

	_, err = c.coll.DeleteOne(ctx, bson.M{"_id": c.keyPrefix + key})
	return wrapError(err)
}

// Exists checks if a live key exists.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel, err := c.begin(ctx)
	defer cancel()
	if err != nil {
		return false, err
	}

	n, err := c.coll.CountDocuments(ctx, c.liveFilter(key), options.Count().SetLimit(1))
	if err != nil {
		return false, wrapError(err)
	}
	return n > 0, nil
}

// Clear removes every document under the key prefix.
func (c *Cache) Clear(ctx context.Context) error {
	ctx, cancel, err := c.begin(ctx)
	defer cancel()
	if err != nil {
		return err
	}

	_, err = c.coll.DeleteMany(ctx, c.prefixFilter())
	return wrapError(err)
}

func (c *Cache) prefixFilter() bson.M {
	return bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(c.keyPrefix)}}
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() cache.Stats {
	return cache.Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// Close disconnects a client opened by NewCache.
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.disconnect(ctx)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return errors.Join(cache.ErrOperationTimeout, err)
	}
	if mongo.IsNetworkError(err) {
		return errors.Join(cache.ErrConnectionFailed, err)
	}
	return err
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)
