package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/agent-memory/domain/cache"
)

// querier is the subset of *pgxpool.Pool used by the cache.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ querier = (*pgxpool.Pool)(nil)

// Cache is a PostgreSQL-backed implementation of cache.Cache.
type Cache struct {
	db        querier
	close     func()
	table     string
	keyPrefix string
	now       func() time.Time
	closed    atomic.Bool
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewCache connects to PostgreSQL and creates the cache table.
func NewCache(ctx context.Context, cfg Config, opts ...ConfigOption) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	c := newCache(pool, cfg.Schema, cfg.KeyPrefix)
	c.close = pool.Close
	if err := c.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return c, nil
}

func newCache(db querier, schema, keyPrefix string) *Cache {
	if schema == "" {
		schema = "public"
	}
	return &Cache{
		db:        db,
		close:     func() {},
		table:     pgx.Identifier{schema, "result_cache"}.Sanitize(),
		keyPrefix: keyPrefix,
		now:       time.Now,
	}
}

// Migrate creates the cache table and its expiry index.
func (c *Cache) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			expires_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS result_cache_expires_at_idx ON %[1]s (expires_at)`, c.table)
	if _, err := c.db.Exec(ctx, ddl); err != nil {
		return c.wrapError(err)
	}
	return nil
}

func (c *Cache) prefixKey(key string) string {
	return c.keyPrefix + key
}

func (c *Cache) check(ctx context.Context) error {
	if c.closed.Load() {
		return cache.ErrClosed
	}
	return ctx.Err()
}

// Get retrieves a live value.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := c.check(ctx); err != nil {
		return nil, false, err
	}

	var value []byte
	err := c.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT value FROM %s WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`, c.table),
		c.prefixKey(key), c.now(),
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, c.wrapError(err)
	}

	c.hits.Add(1)
	return value, true, nil
}

// Set upserts a value.
func (c *Cache) Set(ctx context.Context, key string, value []byte, opts cache.SetOptions) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	if key == "" {
		return cache.ErrInvalidKey
	}
	if value == nil {
		value = []byte{}
	}

	now := c.now()
	var expiresAt *time.Time
	if opts.TTL > 0 {
		t := now.Add(opts.TTL)
		expiresAt = &t
	}

	_, err := c.db.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at`, c.table),
		c.prefixKey(key), value, expiresAt, now,
	)
	return c.wrapError(err)
}

// Delete removes a value.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	_, err := c.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, c.table), c.prefixKey(key))
	return c.wrapError(err)
}

// Exists checks if a live key exists.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := c.check(ctx); err != nil {
		return false, err
	}

	var exists bool
	err := c.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2))`, c.table),
		c.prefixKey(key), c.now(),
	).Scan(&exists)
	if err != nil {
		return false, c.wrapError(err)
	}
	return exists, nil
}

// Clear removes every entry under the key prefix.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	_, err := c.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE starts_with(key, $1)`, c.table),
		c.keyPrefix,
	)
	return c.wrapError(err)
}

// Cleanup deletes expired rows and returns how many were removed.
func (c *Cache) Cleanup(ctx context.Context) (int64, error) {
	if err := c.check(ctx); err != nil {
		return 0, err
	}
	tag, err := c.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE expires_at IS NOT NULL AND expires_at <= $1`, c.table),
		c.now(),
	)
	if err != nil {
		return 0, c.wrapError(err)
	}
	return tag.RowsAffected(), nil
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() cache.Stats {
	return cache.Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// Close closes a pool opened by NewCache.
func (c *Cache) Close() error {
	if c.closed.CompareAndSwap(false, true) {
		c.close()
	}
	return nil
}

func (c *Cache) wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(cache.ErrOperationTimeout, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08 is connection exceptions
		if strings.HasPrefix(pgErr.Code, "08") {
			return errors.Join(cache.ErrConnectionFailed, err)
		}
		return err
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return errors.Join(cache.ErrConnectionFailed, err)
	}
	return err
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)
