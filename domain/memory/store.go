package memory

import "context"

// Store persists and searches memories and knowledge.
type Store interface {
	Init(ctx context.Context) error
	UpsertKnowledge(ctx context.Context, k Knowledge) error
	UpsertMemory(ctx context.Context, m Memory, tableName string, unique *bool) error
	GetMemoryByID(ctx context.Context, id string) (*Memory, error)
	GetMemoriesByIDs(ctx context.Context, ids []string) ([]Memory, error)
	ListMemories(ctx context.Context, params ListParams) ([]Memory, error)
	SearchMemories(ctx context.Context, params SearchParams) ([]Memory, error)
	SearchMemoriesByEmbedding(ctx context.Context, embedding []float32, params EmbeddingSearchParams) ([]Memory, error)
	SearchKnowledge(ctx context.Context, params KnowledgeSearchParams) ([]Knowledge, error)
	Close() error
}

// CacheStore is the per-agent key-value surface exposed to the runtime.
type CacheStore interface {
	GetCache(ctx context.Context, agentID, key string) (string, bool, error)
	SetCache(ctx context.Context, agentID, key, value string) (bool, error)
	DeleteCache(ctx context.Context, agentID, key string) (bool, error)
}
