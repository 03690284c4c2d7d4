// Package vector describes the point, filter and client model of the
// vector database that backs agent memory.
package vector

// Point is the store's atomic unit: an identifier, a vector and a payload.
type Point struct {
	// ID is a UUID string. Use NormalizeID to derive it from external ids.
	ID string

	// Vector may be empty for points stored without an embedding.
	Vector []float32

	Payload map[string]any
}

// ScoredPoint is a point returned by a similarity search.
type ScoredPoint struct {
	Point
	Score float32
}

// Distance is the similarity metric of a collection.
type Distance string

const (
	DistanceCosine    Distance = "cosine"
	DistanceEuclidean Distance = "euclid"
	DistanceDot       Distance = "dot"
)

// CollectionConfig configures a new collection.
type CollectionConfig struct {
	VectorSize int
	Distance   Distance
}

// UpsertRequest writes points. Wait blocks until the write is durable.
type UpsertRequest struct {
	Wait   bool
	Points []Point
}

// SearchRequest runs a similarity query.
type SearchRequest struct {
	Vector         []float32
	Limit          int
	ScoreThreshold *float32
	Filter         *Filter
	WithPayload    bool
	WithVector     bool
}

// ScrollRequest lists points matching a filter without ranking.
type ScrollRequest struct {
	Limit       int
	Filter      *Filter
	WithPayload bool
	WithVector  bool
}

// RetrieveRequest fetches points by identifier.
type RetrieveRequest struct {
	IDs         []string
	WithPayload bool
	WithVector  bool
}
