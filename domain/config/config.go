// Package config provides the configuration model of the memory adapter.
package config

import "time"

// Store backends.
const (
	StoreQdrant = "qdrant"
	StoreMemory = "memory"
)

// Cache backends.
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CacheBadger   = "badger"
	CacheSQLite   = "sqlite"
	CachePostgres = "postgres"
	CacheMongoDB  = "mongodb"
	CacheDynamoDB = "dynamodb"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "memories"

// AdapterConfig is the complete adapter configuration.
type AdapterConfig struct {
	// URL is the vector database endpoint.
	URL string `json:"url" yaml:"url"`
	// APIKey authenticates against the vector database.
	APIKey string `json:"api_key" yaml:"api_key"`
	// Port is the vector database port.
	Port int `json:"port" yaml:"port"`
	// VectorSize is the embedding dimension.
	VectorSize int `json:"vector_size" yaml:"vector_size"`
	// Collection holds every point written by the adapter.
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`

	Store      StoreConfig      `json:"store,omitempty" yaml:"store,omitempty"`
	Cache      CacheConfig      `json:"cache,omitempty" yaml:"cache,omitempty"`
	Resilience ResilienceConfig `json:"resilience,omitempty" yaml:"resilience,omitempty"`
	Logging    LoggingConfig    `json:"logging,omitempty" yaml:"logging,omitempty"`
	Tracing    TracingConfig    `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// StoreConfig selects the vector client.
type StoreConfig struct {
	// Backend is "qdrant" (default) or "memory".
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	// Timeout bounds connection setup.
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// CacheConfig selects and tunes the result cache backend.
type CacheConfig struct {
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`
	// MaxEntries bounds the in-memory backend. Zero is unbounded.
	MaxEntries int `json:"max_entries,omitempty" yaml:"max_entries,omitempty"`
	// TTL expires entries. Zero keeps them until overwritten.
	TTL Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	// KeyPrefix namespaces keys on shared backends.
	KeyPrefix string `json:"key_prefix,omitempty" yaml:"key_prefix,omitempty"`

	Redis    RedisConfig    `json:"redis,omitempty" yaml:"redis,omitempty"`
	Badger   BadgerConfig   `json:"badger,omitempty" yaml:"badger,omitempty"`
	SQLite   SQLiteConfig   `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	Postgres PostgresConfig `json:"postgres,omitempty" yaml:"postgres,omitempty"`
	MongoDB  MongoDBConfig  `json:"mongodb,omitempty" yaml:"mongodb,omitempty"`
	DynamoDB DynamoDBConfig `json:"dynamodb,omitempty" yaml:"dynamodb,omitempty"`
}

type RedisConfig struct {
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`
}

type BadgerConfig struct {
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	InMemory bool   `json:"in_memory,omitempty" yaml:"in_memory,omitempty"`
}

type SQLiteConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

type PostgresConfig struct {
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty"`
	Database string `json:"database,omitempty" yaml:"database,omitempty"`
	User     string `json:"user,omitempty" yaml:"user,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	SSLMode  string `json:"ssl_mode,omitempty" yaml:"ssl_mode,omitempty"`
	Schema   string `json:"schema,omitempty" yaml:"schema,omitempty"`
}

type MongoDBConfig struct {
	URI        string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
}

type DynamoDBConfig struct {
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Table    string `json:"table,omitempty" yaml:"table,omitempty"`
	// Static credentials, mostly for local endpoints. Empty uses the
	// default AWS credential chain.
	AccessKeyID     string `json:"access_key_id,omitempty" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `json:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty"`
}

// ResilienceConfig wraps the vector client with fortify primitives.
// Disabled by default so transport errors reach the caller untouched.
type ResilienceConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// MaxConcurrent bounds in-flight client calls.
	MaxConcurrent int `json:"max_concurrent,omitempty" yaml:"max_concurrent,omitempty"`
	// FailureThreshold opens the circuit after this many consecutive failures.
	FailureThreshold int `json:"failure_threshold,omitempty" yaml:"failure_threshold,omitempty"`
	// OpenTimeout is how long the circuit stays open.
	OpenTimeout Duration `json:"open_timeout,omitempty" yaml:"open_timeout,omitempty"`
	// RetryAttempts is the total number of attempts; 1 disables retry.
	RetryAttempts int      `json:"retry_attempts,omitempty" yaml:"retry_attempts,omitempty"`
	RetryDelay    Duration `json:"retry_delay,omitempty" yaml:"retry_delay,omitempty"`
	// RateLimit is calls per second per operation; zero disables it.
	RateLimit int `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
	RateBurst int `json:"rate_burst,omitempty" yaml:"rate_burst,omitempty"`
}

// LoggingConfig configures the bolt logger.
type LoggingConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Trace exporters.
const (
	ExporterOTLP   = "otlp"
	ExporterStdout = "stdout"
	ExporterNoop   = "noop"
)

// TracingConfig exports a span per vector client call.
type TracingConfig struct {
	Enabled  bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Exporter string `json:"exporter,omitempty" yaml:"exporter,omitempty"`
	// Endpoint is the OTLP gRPC endpoint, e.g. "localhost:4317".
	Endpoint    string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Insecure    bool   `json:"insecure,omitempty" yaml:"insecure,omitempty"`
	ServiceName string `json:"service_name,omitempty" yaml:"service_name,omitempty"`
	// SampleRate is the fraction of traces kept, 0 to 1.
	SampleRate float64 `json:"sample_rate,omitempty" yaml:"sample_rate,omitempty"`
}

// ApplyDefaults fills optional fields left empty.
func (c *AdapterConfig) ApplyDefaults() {
	if c.Collection == "" {
		c.Collection = DefaultCollection
	}
	if c.Store.Backend == "" {
		c.Store.Backend = StoreQdrant
	}
	if c.Store.Timeout == 0 {
		c.Store.Timeout = Duration(10 * time.Second)
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "agent-memory:"
	}
	if c.Resilience.Enabled {
		if c.Resilience.MaxConcurrent == 0 {
			c.Resilience.MaxConcurrent = 32
		}
		if c.Resilience.FailureThreshold == 0 {
			c.Resilience.FailureThreshold = 5
		}
		if c.Resilience.OpenTimeout == 0 {
			c.Resilience.OpenTimeout = Duration(30 * time.Second)
		}
		if c.Resilience.RetryAttempts == 0 {
			c.Resilience.RetryAttempts = 1
		}
		if c.Resilience.RetryDelay == 0 {
			c.Resilience.RetryDelay = Duration(100 * time.Millisecond)
		}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Tracing.Enabled {
		if c.Tracing.Exporter == "" {
			c.Tracing.Exporter = ExporterStdout
		}
		if c.Tracing.ServiceName == "" {
			c.Tracing.ServiceName = "agent-memory"
		}
		if c.Tracing.SampleRate == 0 {
			c.Tracing.SampleRate = 1
		}
	}
}

// Duration is a time.Duration that reads and writes its string form.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
