package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/felixgeelhaar/agent-memory/domain/cache"
)

const schema = `
CREATE TABLE IF NOT EXISTS result_cache (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_result_cache_expires_at ON result_cache(expires_at);
`

// Cache is a SQLite-backed implementation of cache.Cache. Expiry times
// are stored as epoch milliseconds.
type Cache struct {
	db        *sql.DB
	keyPrefix string
	now       func() time.Time
	closed    atomic.Bool
	hits      atomic.Int64
	misses    atomic.Int64
}

// NewCache opens the database and creates the cache table.
func NewCache(cfg Config, opts ...Option) (*Cache, error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	c, err := NewCacheFromDB(db, cfg.KeyPrefix)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if cfg.Now != nil {
		c.now = cfg.Now
	}
	return c, nil
}

// NewCacheFromDB creates a cache over an open database. Close closes db.
func NewCacheFromDB(db *sql.DB, keyPrefix string) (*Cache, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, errors.Join(ErrMigrationFailed, err)
	}
	return &Cache{
		db:        db,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}, nil
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

func (c *Cache) nowMillis() int64 {
	return c.now().UnixMilli()
}

// Get retrieves a value. Expired rows are deleted on read.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := c.check(ctx); err != nil {
		return nil, false, err
	}

	var (
		value     []byte
		expiresAt sql.NullInt64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM result_cache WHERE key = ?",
		c.prefixKey(key),
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if expiresAt.Valid && expiresAt.Int64 <= c.nowMillis() {
		_, _ = c.db.ExecContext(ctx, "DELETE FROM result_cache WHERE key = ?", c.prefixKey(key))
		c.misses.Add(1)
		return nil, false, nil
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
	var expiresAt sql.NullInt64
	if opts.TTL > 0 {
		expiresAt = sql.NullInt64{Int64: now.Add(opts.TTL).UnixMilli(), Valid: true}
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO result_cache (key, value, expires_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value = excluded.value,
		   expires_at = excluded.expires_at,
		   updated_at = excluded.updated_at`,
		c.prefixKey(key), value, expiresAt, now.UnixMilli(),
	)
	return err
}

// Delete removes a value from the cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx, "DELETE FROM result_cache WHERE key = ?", c.prefixKey(key))
	return err
}

// Exists checks if a live key exists in the cache.
func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	if err := c.check(ctx); err != nil {
		return false, err
	}

	var one int
	err := c.db.QueryRowContext(ctx,
		"SELECT 1 FROM result_cache WHERE key = ? AND (expires_at IS NULL OR expires_at > ?)",
		c.prefixKey(key), c.nowMillis(),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Clear removes every entry under the key prefix.
func (c *Cache) Clear(ctx context.Context) error {
	if err := c.check(ctx); err != nil {
		return err
	}

	_, err := c.db.ExecContext(ctx,
		`DELETE FROM result_cache WHERE key LIKE ? ESCAPE '\'`,
		likePrefix(c.keyPrefix),
	)
	return err
}

// Cleanup deletes expired rows and returns how many were removed.
func (c *Cache) Cleanup(ctx context.Context) (int64, error) {
	if err := c.check(ctx); err != nil {
		return 0, err
	}

	res, err := c.db.ExecContext(ctx,
		"DELETE FROM result_cache WHERE expires_at IS NOT NULL AND expires_at <= ?",
		c.nowMillis(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats returns hit and miss counts and the number of stored rows.
func (c *Cache) Stats() cache.Stats {
	var size int64
	if !c.closed.Load() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = c.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM result_cache WHERE key LIKE ? ESCAPE '\'`,
			likePrefix(c.keyPrefix),
		).Scan(&size)
	}

	return cache.Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.db.Close()
}

// likePrefix escapes LIKE wildcards in prefix and appends %.
func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}

var (
	_ cache.Cache         = (*Cache)(nil)
	_ cache.StatsProvider = (*Cache)(nil)
)
