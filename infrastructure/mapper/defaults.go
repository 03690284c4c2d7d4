package mapper

import (
	"time"

	"github.com/felixgeelhaar/agent-memory/domain/memory"
)

// Defaulting policy for absent record fields.
//
//	knowledge agentId         nil when shared, else the record agent id
//	knowledge createdAt       now (epoch ms) when zero
//	knowledge originalId      nil when empty
//	knowledge chunkIndex      nil when absent
//	knowledge vector          embedding, else empty
//	memory id                 random id when empty
//	memory vector             embedding, else vectorSize zeros
//	memory createdAt          write time (epoch ms)

func knowledgeAgentID(k memory.Knowledge) any {
	if k.Content.Metadata.IsShared {
		return nil
	}
	return k.AgentID
}

func createdAtOrNow(ts int64, now func() time.Time) int64 {
	if ts != 0 {
		return ts
	}
	return now().UnixMilli()
}

func knowledgeVector(embedding []float32) []float32 {
	if len(embedding) == 0 {
		return []float32{}
	}
	return embedding
}

func memoryID(id string, newID func() string) string {
	if id != "" {
		return id
	}
	return newID()
}

func memoryVector(embedding []float32, size int) []float32 {
	if len(embedding) > 0 {
		return embedding
	}
	return make([]float32, size)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}
