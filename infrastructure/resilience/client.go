// Package resilience protects a vector client with a bulkhead, a circuit
// breaker and optional retry, using fortify.
package resilience

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/agent-memory/domain/vector"
)

// ErrRateLimited is returned when a call exceeds the configured rate.
var ErrRateLimited = errors.New("vector client rate limit exceeded")

// Client decorates a vector.Client.
type Client struct {
	next     vector.Client
	limiter  ratelimit.RateLimiter
	bulkhead bulkhead.Bulkhead[any]
	breaker  circuitbreaker.CircuitBreaker[any]
	retry    retry.Retry[any]
	retries  bool
}

// New wraps next with the given configuration.
func New(next vector.Client, config Config, opts ...Option) *Client {
	for _, opt := range opts {
		opt(&config)
	}

	def := DefaultConfig()
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = def.MaxConcurrent
	}
	threshold := config.FailureThreshold
	if threshold <= 0 {
		threshold = def.FailureThreshold
	}
	openTimeout := config.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = def.OpenTimeout
	}
	multiplier := config.RetryMultiplier
	if multiplier <= 0 {
		multiplier = def.RetryMultiplier
	}

	var limiter ratelimit.RateLimiter
	if config.Rate > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = config.Rate
		}
		limiter = ratelimit.New(&ratelimit.Config{
			Rate:  config.Rate,
			Burst: burst,
		})
	}

	return &Client{
		next:    next,
		limiter: limiter,
		bulkhead: bulkhead.New[any](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		breaker: circuitbreaker.New[any](circuitbreaker.Config{
			MaxRequests: uint32(maxConcurrent), // #nosec G115 -- positive, checked above
			Interval:    openTimeout,
			Timeout:     openTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- positive, checked above
			},
		}),
		retry: retry.New[any](retry.Config{
			MaxAttempts:   max(config.RetryAttempts, 1),
			InitialDelay:  config.RetryDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    multiplier,
			NonRetryableErrors: []error{
				context.Canceled,
				context.DeadlineExceeded,
				vector.ErrCollectionNotFound,
				vector.ErrCollectionExists,
				vector.ErrDimensionMismatch,
				vector.ErrClientClosed,
			},
		}),
		retries: config.RetryAttempts > 1,
	}
}

// run applies the rate limit, bulkhead, circuit breaker and retry to fn,
// in that order. op keys the rate limiter.
func run[T any](ctx context.Context, c *Client, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if c.limiter != nil && !c.limiter.Allow(ctx, op) {
		return zero, ErrRateLimited
	}

	call := func(ctx context.Context) (any, error) {
		return fn(ctx)
	}

	res, err := c.bulkhead.Execute(ctx, func(ctx context.Context) (any, error) {
		return c.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
			if c.retries {
				return c.retry.Do(ctx, call)
			}
			return call(ctx)
		})
	})

	if err != nil {
		return zero, err
	}
	out, ok := res.(T)
	if !ok {
		return zero, nil
	}
	return out, nil
}

func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	return run(ctx, c, "list_collections", c.next.ListCollections)
}

func (c *Client) CreateCollection(ctx context.Context, name string, cfg vector.CollectionConfig) error {
	_, err := run(ctx, c, "create_collection", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.next.CreateCollection(ctx, name, cfg)
	})
	return err
}

func (c *Client) Upsert(ctx context.Context, collection string, req vector.UpsertRequest) error {
	_, err := run(ctx, c, "upsert", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.next.Upsert(ctx, collection, req)
	})
	return err
}

func (c *Client) Search(ctx context.Context, collection string, req vector.SearchRequest) ([]vector.ScoredPoint, error) {
	return run(ctx, c, "search", func(ctx context.Context) ([]vector.ScoredPoint, error) {
		return c.next.Search(ctx, collection, req)
	})
}

func (c *Client) Scroll(ctx context.Context, collection string, req vector.ScrollRequest) ([]vector.Point, error) {
	return run(ctx, c, "scroll", func(ctx context.Context) ([]vector.Point, error) {
		return c.next.Scroll(ctx, collection, req)
	})
}

func (c *Client) Retrieve(ctx context.Context, collection string, req vector.RetrieveRequest) ([]vector.Point, error) {
	return run(ctx, c, "retrieve", func(ctx context.Context) ([]vector.Point, error) {
		return c.next.Retrieve(ctx, collection, req)
	})
}

// Close closes the wrapped client directly.
func (c *Client) Close() error {
	return c.next.Close()
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() circuitbreaker.State {
	return c.breaker.State()
}

var _ vector.Client = (*Client)(nil)
