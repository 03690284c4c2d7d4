// Package memory defines the agent memory records and the store
// interfaces the runtime consumes.
package memory

// Content is free text plus open-ended metadata.
type Content struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Memory is a single remembered item, such as a message or a fact.
type Memory struct {
	ID        string    `json:"id,omitempty"`
	Type      string    `json:"type,omitempty"`
	RoomID    string    `json:"roomId,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	AgentID   string    `json:"agentId,omitempty"`
	Content   Content   `json:"content"`
	Embedding []float32 `json:"embedding,omitempty"`
	Unique    *bool     `json:"unique,omitempty"`

	// CreatedAt is epoch milliseconds.
	CreatedAt int64 `json:"createdAt,omitempty"`

	// Similarity is set on search results only.
	Similarity float32 `json:"similarity,omitempty"`
}

// KnowledgeMetadata carries the chunking attributes of a knowledge item.
type KnowledgeMetadata struct {
	IsMain     bool           `json:"isMain,omitempty"`
	OriginalID string         `json:"originalId,omitempty"`
	ChunkIndex *int           `json:"chunkIndex,omitempty"`
	IsShared   bool           `json:"isShared,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// KnowledgeContent is the text and chunk metadata of a knowledge item.
type KnowledgeContent struct {
	Text     string            `json:"text"`
	Metadata KnowledgeMetadata `json:"metadata"`
}

// Knowledge is a document or document chunk made available to agents.
// An empty AgentID marks knowledge shared across agents.
type Knowledge struct {
	ID         string           `json:"id"`
	AgentID    string           `json:"agentId,omitempty"`
	Content    KnowledgeContent `json:"content"`
	Embedding  []float32        `json:"embedding,omitempty"`
	CreatedAt  int64            `json:"createdAt,omitempty"`
	Similarity float32          `json:"similarity,omitempty"`
}

// ListParams selects memories for a filtered listing.
type ListParams struct {
	TableName string
	RoomID    string
	AgentID   string
	Unique    *bool

	// Start and End bound CreatedAt in epoch milliseconds.
	Start *int64
	End   *int64

	// Count limits the result size. Zero means DefaultListCount.
	Count int
}

// SearchParams drives a similarity search over memories.
type SearchParams struct {
	TableName      string
	RoomID         string
	AgentID        string
	Unique         *bool
	Embedding      []float32
	MatchThreshold float32
	Count          int
}

// EmbeddingSearchParams drives SearchMemoriesByEmbedding.
type EmbeddingSearchParams struct {
	TableName      string
	RoomID         string
	AgentID        string
	Unique         *bool
	MatchThreshold *float32
	Count          int
}

// KnowledgeSearchParams drives SearchKnowledge. IDs selects the points
// to return; Embedding only participates in the cache fingerprint.
type KnowledgeSearchParams struct {
	AgentID   string
	Embedding []float32
	IDs       []string
}

const (
	// DefaultListCount is the listing limit when ListParams.Count is zero.
	DefaultListCount = 100

	// DefaultSearchCount is the result limit for embedding searches.
	DefaultSearchCount = 10

	// DuplicateThreshold is the similarity above which a new memory is
	// considered a duplicate of an existing one.
	DuplicateThreshold float32 = 0.95
)
