package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the yaml path of the invalid field.
	Path    string
	Message string
	// Err classifies the failure, e.g. ErrMissingSetting.
	Err error
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Unwrap returns the classifying sentinel.
func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e), strings.Join(msgs, "\n  - "))
}

// Unwrap exposes every error so errors.Is sees their sentinels.
func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, err := range e {
		errs[i] = err
	}
	return errs
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates adapter configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks cfg and returns every problem found.
func (v *Validator) Validate(cfg *AdapterConfig) ValidationErrors {
	v.errors = nil

	v.validateRequired(cfg)
	v.validateStore(cfg)
	v.validateCache(cfg)
	v.validateResilience(cfg)
	v.validateTracing(cfg)

	return v.errors
}

func (v *Validator) addError(path, message string, kind error) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message, Err: kind})
}

// validateRequired enforces the four connection settings. Zero values
// count as missing.
func (v *Validator) validateRequired(cfg *AdapterConfig) {
	if cfg.URL == "" {
		v.addError("url", "url is required", ErrMissingSetting)
	}
	if cfg.APIKey == "" {
		v.addError("api_key", "api_key is required", ErrMissingSetting)
	}
	if cfg.Port == 0 {
		v.addError("port", "port is required", ErrMissingSetting)
	} else if cfg.Port < 0 || cfg.Port > 65535 {
		v.addError("port", fmt.Sprintf("port out of range: %d", cfg.Port), ErrInvalidSetting)
	}
	if cfg.VectorSize == 0 {
		v.addError("vector_size", "vector_size is required", ErrMissingSetting)
	} else if cfg.VectorSize < 0 {
		v.addError("vector_size", "vector_size must be positive", ErrInvalidSetting)
	}
}

func (v *Validator) validateStore(cfg *AdapterConfig) {
	switch cfg.Store.Backend {
	case "", StoreQdrant, StoreMemory:
	default:
		v.addError("store.backend", fmt.Sprintf("unknown store backend: %s", cfg.Store.Backend), ErrInvalidSetting)
	}
}

func (v *Validator) validateCache(cfg *AdapterConfig) {
	c := cfg.Cache
	if c.MaxEntries < 0 {
		v.addError("cache.max_entries", "max_entries must be non-negative", ErrInvalidSetting)
	}
	if c.TTL < 0 {
		v.addError("cache.ttl", "ttl must be non-negative", ErrInvalidSetting)
	}

	switch c.Backend {
	case "", CacheMemory:
	case CacheRedis:
		if c.Redis.Addr == "" {
			v.addError("cache.redis.addr", "addr is required for the redis cache", ErrMissingSetting)
		}
	case CacheBadger:
		if c.Badger.Path == "" && !c.Badger.InMemory {
			v.addError("cache.badger.path", "path is required unless in_memory is set", ErrMissingSetting)
		}
	case CacheSQLite:
		if c.SQLite.Path == "" {
			v.addError("cache.sqlite.path", "path is required for the sqlite cache", ErrMissingSetting)
		}
	case CachePostgres:
		if c.Postgres.Host == "" {
			v.addError("cache.postgres.host", "host is required for the postgres cache", ErrMissingSetting)
		}
	case CacheMongoDB:
		if c.MongoDB.URI == "" {
			v.addError("cache.mongodb.uri", "uri is required for the mongodb cache", ErrMissingSetting)
		}
	case CacheDynamoDB:
		if c.DynamoDB.Region == "" {
			v.addError("cache.dynamodb.region", "region is required for the dynamodb cache", ErrMissingSetting)
		}
	default:
		v.addError("cache.backend", fmt.Sprintf("unknown cache backend: %s", c.Backend), ErrInvalidSetting)
	}
}

func (v *Validator) validateResilience(cfg *AdapterConfig) {
	r := cfg.Resilience
	if r.MaxConcurrent < 0 {
		v.addError("resilience.max_concurrent", "max_concurrent must be non-negative", ErrInvalidSetting)
	}
	if r.FailureThreshold < 0 {
		v.addError("resilience.failure_threshold", "failure_threshold must be non-negative", ErrInvalidSetting)
	}
	if r.RetryAttempts < 0 {
		v.addError("resilience.retry_attempts", "retry_attempts must be non-negative", ErrInvalidSetting)
	}
	if r.RateLimit < 0 || r.RateBurst < 0 {
		v.addError("resilience.rate_limit", "rate_limit and rate_burst must be non-negative", ErrInvalidSetting)
	}
}

func (v *Validator) validateTracing(cfg *AdapterConfig) {
	t := cfg.Tracing
	if !t.Enabled {
		return
	}
	switch t.Exporter {
	case ExporterOTLP:
		if t.Endpoint == "" {
			v.addError("tracing.endpoint", "endpoint is required for the otlp exporter", ErrMissingSetting)
		}
	case ExporterStdout, ExporterNoop:
	default:
		v.addError("tracing.exporter", fmt.Sprintf("unknown trace exporter: %s", t.Exporter), ErrInvalidSetting)
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		v.addError("tracing.sample_rate", "sample_rate must be between 0 and 1", ErrInvalidSetting)
	}
}
