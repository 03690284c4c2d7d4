// Package sqlite provides a SQLite-backed result cache.
package sqlite

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/felixgeelhaar/agent-memory/domain/cache"
)

// Config configures the SQLite cache.
type Config struct {
	// Path is the database file. Ignored when DSN is set.
	Path string

	// DSN is the full data source name.
	DSN string

	// MaxOpenConns is the maximum number of open connections.
	MaxOpenConns int

	// JournalMode sets the SQLite journal mode (e.g., "WAL").
	JournalMode string

	// BusyTimeout is how long a writer waits on a locked database.
	BusyTimeout time.Duration

	// KeyPrefix is added to all keys.
	KeyPrefix string

	// Now replaces time.Now for expiry checks.
	Now func() time.Time
}

// Option configures the SQLite cache.
type Option func(*Config)

// WithPath sets the database file.
func WithPath(path string) Option {
	return func(c *Config) {
		c.Path = path
	}
}

// WithDSN sets the data source name.
func WithDSN(dsn string) Option {
	return func(c *Config) {
		c.DSN = dsn
	}
}

// WithJournalMode sets the SQLite journal mode.
func WithJournalMode(mode string) Option {
	return func(c *Config) {
		c.JournalMode = mode
	}
}

// WithBusyTimeout sets the busy timeout.
func WithBusyTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.BusyTimeout = d
	}
}

// WithKeyPrefix sets the key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}

// WithClock sets the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.Now = now
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Path:         "agent-memory.db",
		MaxOpenConns: 4,
		JournalMode:  "WAL",
		BusyTimeout:  5 * time.Second,
		KeyPrefix:    "agent-memory:",
	}
}

// ErrMigrationFailed indicates the cache table could not be created.
var ErrMigrationFailed = errors.New("sqlite: migration failed")

func (cfg Config) dsn() string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return "file:" + cfg.Path + "?mode=rwc"
}

func openDB(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, errors.Join(cache.ErrConnectionFailed, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	var pragmas []string
	if cfg.JournalMode != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode="+cfg.JournalMode)
	}
	if cfg.BusyTimeout > 0 {
		pragmas = append(pragmas, "PRAGMA busy_timeout="+strconv.FormatInt(cfg.BusyTimeout.Milliseconds(), 10))
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, errors.Join(cache.ErrConnectionFailed, err)
		}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Join(cache.ErrConnectionFailed, err)
	}
	return db, nil
}
