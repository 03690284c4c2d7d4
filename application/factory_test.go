package application

import (
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/agent-memory/domain/config"
	"github.com/felixgeelhaar/agent-memory/infrastructure/resilience"
	storemem "github.com/felixgeelhaar/agent-memory/infrastructure/storage/memory"
	"github.com/felixgeelhaar/agent-memory/infrastructure/storage/sqlite"
)

func TestDefaultClientFactory(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Store.Backend = config.StoreMemory
	client, err := DefaultClientFactory(cfg)
	if err != nil {
		t.Fatalf("DefaultClientFactory() error = %v", err)
	}
	if _, ok := client.(*storemem.VectorClient); !ok {
		t.Errorf("client = %T, want *memory.VectorClient", client)
	}

	cfg.Store.Backend = "cassandra"
	if _, err := DefaultClientFactory(cfg); !errors.Is(err, config.ErrInvalidSetting) {
		t.Errorf("error = %v, want ErrInvalidSetting", err)
	}
}

func TestWithResilience(t *testing.T) {
	t.Parallel()

	inner := storemem.NewVectorClient()
	if got := withResilience(inner, config.ResilienceConfig{}); got != inner {
		t.Error("disabled resilience should return the client unchanged")
	}

	wrapped := withResilience(inner, config.ResilienceConfig{
		Enabled:          true,
		MaxConcurrent:    4,
		FailureThreshold: 2,
		OpenTimeout:      config.Duration(time.Second),
		RetryAttempts:    1,
	})
	if _, ok := wrapped.(*resilience.Client); !ok {
		t.Errorf("client = %T, want *resilience.Client", wrapped)
	}
}

func TestNewCacheBackend(t *testing.T) {
	t.Parallel()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		c, err := NewCacheBackend(testConfig())
		if err != nil {
			t.Fatalf("NewCacheBackend() error = %v", err)
		}
		defer c.Close()
		if _, ok := c.(*storemem.Cache); !ok {
			t.Errorf("backend = %T, want *memory.Cache", c)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Cache.Backend = config.CacheSQLite
		cfg.Cache.SQLite.Path = t.TempDir() + "/cache.db"
		c, err := NewCacheBackend(cfg)
		if err != nil {
			t.Fatalf("NewCacheBackend() error = %v", err)
		}
		defer c.Close()
		if _, ok := c.(*sqlite.Cache); !ok {
			t.Errorf("backend = %T, want *sqlite.Cache", c)
		}
	})

	t.Run("badger in memory", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Cache.Backend = config.CacheBadger
		cfg.Cache.Badger.InMemory = true
		c, err := NewCacheBackend(cfg)
		if err != nil {
			t.Fatalf("NewCacheBackend() error = %v", err)
		}
		defer c.Close()
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Cache.Backend = "memcached"
		if _, err := NewCacheBackend(cfg); !errors.Is(err, config.ErrInvalidSetting) {
			t.Errorf("error = %v, want ErrInvalidSetting", err)
		}
	})
}
