package cache

import "errors"

var (
	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("invalid cache key")

	// ErrConnectionFailed is returned when the backend cannot be reached.
	ErrConnectionFailed = errors.New("cache connection failed")

	// ErrOperationTimeout is returned when a backend call exceeds its deadline.
	ErrOperationTimeout = errors.New("cache operation timeout")

	// ErrClosed is returned by backends used after Close.
	ErrClosed = errors.New("cache closed")
)
