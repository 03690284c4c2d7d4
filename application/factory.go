package application

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/agent-memory/domain/cache"
	"github.com/felixgeelhaar/agent-memory/domain/config"
	"github.com/felixgeelhaar/agent-memory/domain/vector"
	"github.com/felixgeelhaar/agent-memory/infrastructure/resilience"
	"github.com/felixgeelhaar/agent-memory/infrastructure/storage/badger"
	"github.com/felixgeelhaar/agent-memory/infrastructure/storage/dynamodb"
	"github.com/felixgeelhaar/agent-memory/infrastructure/storage/memory"
	"github.com/felixgeelhaar/agent-memory/infrastructure/storage/mongodb"
	"github.com/felixgeelhaar/agent-memory/infrastructure/storage/postgres"
	"github.com/felixgeelhaar/agent-memory/infrastructure/storage/qdrant"
	"github.com/felixgeelhaar/agent-memory/infrastructure/storage/redis"
	"github.com/felixgeelhaar/agent-memory/infrastructure/storage/sqlite"
)

// ClientFactory builds the vector client for a validated configuration.
type ClientFactory func(cfg *config.AdapterConfig) (vector.Client, error)

// DefaultClientFactory selects the client by store.backend.
func DefaultClientFactory(cfg *config.AdapterConfig) (vector.Client, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return memory.NewVectorClient(), nil
	case "", config.StoreQdrant:
		client, err := qdrant.NewClient(qdrant.DefaultConfig(),
			qdrant.WithURL(cfg.URL),
			qdrant.WithPort(cfg.Port),
			qdrant.WithAPIKey(cfg.APIKey),
			qdrant.WithTimeout(cfg.Store.Timeout.Duration()),
		)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidSetting, cfg.Store.Backend)
	}
}

// withResilience wraps client when resilience is enabled.
func withResilience(client vector.Client, cfg config.ResilienceConfig) vector.Client {
	if !cfg.Enabled {
		return client
	}
	return resilience.New(client, resilience.DefaultConfig(),
		resilience.WithMaxConcurrent(cfg.MaxConcurrent),
		resilience.WithFailureThreshold(cfg.FailureThreshold),
		resilience.WithOpenTimeout(cfg.OpenTimeout.Duration()),
		resilience.WithRetry(cfg.RetryAttempts, cfg.RetryDelay.Duration()),
		resilience.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
	)
}

// NewCacheBackend opens the result cache backend named by cache.backend.
// Remote backends must answer within store.timeout.
func NewCacheBackend(cfg *config.AdapterConfig) (cache.Cache, error) {
	c := cfg.Cache
	timeout := cfg.Store.Timeout.Duration()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	switch c.Backend {
	case "", config.CacheMemory:
		return memory.NewCache(memory.WithMaxSize(c.MaxEntries)), nil

	case config.CacheRedis:
		return asCache(redis.NewCache(redis.DefaultConfig(),
			redis.WithAddress(c.Redis.Addr),
			redis.WithPassword(c.Redis.Password),
			redis.WithDB(c.Redis.DB),
			redis.WithKeyPrefix(c.KeyPrefix),
		))

	case config.CacheBadger:
		opts := []badger.Option{badger.WithKeyPrefix(c.KeyPrefix)}
		if c.Badger.InMemory {
			opts = append(opts, badger.WithInMemory())
		} else {
			opts = append(opts, badger.WithDir(c.Badger.Path))
		}
		return asCache(badger.NewCache(badger.DefaultConfig(), opts...))

	case config.CacheSQLite:
		return asCache(sqlite.NewCache(sqlite.DefaultConfig(),
			sqlite.WithPath(c.SQLite.Path),
			sqlite.WithKeyPrefix(c.KeyPrefix),
		))

	case config.CachePostgres:
		pg := c.Postgres
		opts := []postgres.ConfigOption{
			postgres.WithHost(pg.Host),
			postgres.WithCredentials(pg.User, pg.Password),
			postgres.WithKeyPrefix(c.KeyPrefix),
		}
		if pg.Port != 0 {
			opts = append(opts, postgres.WithPort(pg.Port))
		}
		if pg.Database != "" {
			opts = append(opts, postgres.WithDatabase(pg.Database))
		}
		if pg.SSLMode != "" {
			opts = append(opts, postgres.WithSSLMode(pg.SSLMode))
		}
		if pg.Schema != "" {
			opts = append(opts, postgres.WithSchema(pg.Schema))
		}
		return asCache(postgres.NewCache(ctx, postgres.DefaultConfig(), opts...))

	case config.CacheMongoDB:
		mc := c.MongoDB
		opts := []mongodb.ConfigOption{
			mongodb.WithURI(mc.URI),
			mongodb.WithKeyPrefix(c.KeyPrefix),
		}
		if mc.Database != "" {
			opts = append(opts, mongodb.WithDatabase(mc.Database))
		}
		if mc.Collection != "" {
			opts = append(opts, mongodb.WithCollection(mc.Collection))
		}
		return asCache(mongodb.NewCache(ctx, mongodb.DefaultConfig(), opts...))

	case config.CacheDynamoDB:
		dc := c.DynamoDB
		opts := []dynamodb.ConfigOption{
			dynamodb.WithRegion(dc.Region),
			dynamodb.WithKeyPrefix(c.KeyPrefix),
		}
		if dc.Endpoint != "" {
			opts = append(opts, dynamodb.WithEndpoint(dc.Endpoint))
		}
		if dc.Table != "" {
			opts = append(opts, dynamodb.WithTableName(dc.Table))
		}
		if dc.AccessKeyID != "" {
			opts = append(opts, dynamodb.WithStaticCredentials(dc.AccessKeyID, dc.SecretAccessKey))
		}
		return asCache(dynamodb.NewCache(ctx, dynamodb.DefaultConfig(), opts...))

	default:
		return nil, fmt.Errorf("%w: unknown cache backend %q", config.ErrInvalidSetting, c.Backend)
	}
}

// asCache converts a constructor result so a failed open never yields a
// non-nil interface holding a nil pointer.
func asCache(c cache.Cache, err error) (cache.Cache, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}
