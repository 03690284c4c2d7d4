package memory

import "errors"

var (
	// ErrMissingTableName is returned when a listing omits the table name.
	ErrMissingTableName = errors.New("table name is required")

	// ErrMissingRoomID is returned when a listing omits the room id.
	ErrMissingRoomID = errors.New("room id is required")

	// ErrDimensionMismatch is returned when an embedding length differs
	// from the configured vector size.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrMissingEmbedding is returned when a search has no query vector.
	ErrMissingEmbedding = errors.New("embedding is required")

	// ErrUnsupported is returned by operations this store does not implement.
	ErrUnsupported = errors.New("operation not supported")
)
