package vector

import "errors"

var (
	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrCollectionExists is returned when creating a collection twice.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrDimensionMismatch is returned when a vector does not fit the collection.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrClientClosed is returned by clients used after Close.
	ErrClientClosed = errors.New("vector client closed")
)
