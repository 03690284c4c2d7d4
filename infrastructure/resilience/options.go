package resilience

import "time"

// Config configures the resilient client.
type Config struct {
	// MaxConcurrent limits in-flight calls to the wrapped client.
	MaxConcurrent int

	// FailureThreshold is the number of consecutive failures that opens
	// the circuit.
	FailureThreshold int

	// OpenTimeout is how long the circuit stays open.
	OpenTimeout time.Duration

	// RetryAttempts is the total number of attempts per call. Values
	// below 2 disable retry.
	RetryAttempts int

	// RetryDelay is the initial delay between attempts.
	RetryDelay time.Duration

	// RetryMultiplier is the exponential backoff multiplier.
	RetryMultiplier float64

	// Rate is the number of calls per second allowed for each client
	// operation. Zero disables rate limiting.
	Rate int

	// Burst is the token bucket capacity. Defaults to Rate.
	Burst int
}

// DefaultConfig returns a configuration with sensible defaults. Retry is
// off so transport errors surface on the first failure.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:    32,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		RetryAttempts:    1,
		RetryDelay:       100 * time.Millisecond,
		RetryMultiplier:  2.0,
	}
}

// Option configures the client.
type Option func(*Config)

// WithMaxConcurrent sets the maximum concurrent calls.
func WithMaxConcurrent(n int) Option {
	return func(c *Config) {
		c.MaxConcurrent = n
	}
}

// WithFailureThreshold sets the failure threshold for the circuit breaker.
func WithFailureThreshold(n int) Option {
	return func(c *Config) {
		c.FailureThreshold = n
	}
}

// WithOpenTimeout sets the circuit breaker open duration.
func WithOpenTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.OpenTimeout = d
	}
}

// WithRetry sets the attempt count and initial delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Config) {
		c.RetryAttempts = attempts
		c.RetryDelay = delay
	}
}

// WithRateLimit enables token bucket rate limiting.
func WithRateLimit(rate, burst int) Option {
	return func(c *Config) {
		c.Rate = rate
		c.Burst = burst
	}
}
