// Package mapper converts memory and knowledge records to vector points
// and back.
package mapper

import (
	"strconv"
	"time"

	"github.com/felixgeelhaar/agent-memory/domain/memory"
	"github.com/felixgeelhaar/agent-memory/domain/vector"
)

// Payload keys shared by the write and read directions.
const (
	keyID          = "id"
	keyType        = "type"
	keyAgentID     = "agentId"
	keyRoomID      = "roomId"
	keyUserID      = "userId"
	keyContent     = "content"
	keyText        = "text"
	keyMetadata    = "metadata"
	keyCreatedAt   = "createdAt"
	keyUnique      = "unique"
	keyIsMain      = "isMain"
	keyOriginalID  = "originalId"
	keyChunkIndex  = "chunkIndex"
	keyIsShared    = "isShared"
	keyDescription = "description"
)

// Payload field names the query builder filters on.
const (
	FieldType      = keyType
	FieldRoomID    = keyRoomID
	FieldAgentID   = keyAgentID
	FieldUnique    = keyUnique
	FieldCreatedAt = keyCreatedAt
)

// Mapper translates between domain records and vector points.
type Mapper struct {
	vectorSize int
	now        func() time.Time
	newID      func() string
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithClock overrides the time source used for createdAt defaults.
func WithClock(now func() time.Time) Option {
	return func(m *Mapper) {
		m.now = now
	}
}

// WithIDGenerator overrides the generator for memories without an id.
func WithIDGenerator(newID func() string) Option {
	return func(m *Mapper) {
		m.newID = newID
	}
}

// New creates a mapper for collections of the given vector size.
func New(vectorSize int, opts ...Option) *Mapper {
	m := &Mapper{
		vectorSize: vectorSize,
		now:        time.Now,
		newID:      vector.NewPointID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// KnowledgeToPoint builds the point stored for a knowledge item.
func (m *Mapper) KnowledgeToPoint(k memory.Knowledge) vector.Point {
	meta := k.Content.Metadata

	metadata := coerceMap(meta.Extra)
	metadata[keyIsMain] = meta.IsMain
	metadata[keyOriginalID] = nullableString(meta.OriginalID)
	metadata[keyChunkIndex] = nullableInt(meta.ChunkIndex)
	metadata[keyIsShared] = meta.IsShared

	return vector.Point{
		ID:     vector.NormalizeID(k.ID),
		Vector: knowledgeVector(k.Embedding),
		Payload: map[string]any{
			keyID:      k.ID,
			keyAgentID: knowledgeAgentID(k),
			keyContent: map[string]any{
				keyText:     k.Content.Text,
				keyMetadata: metadata,
			},
			keyCreatedAt:  createdAtOrNow(k.CreatedAt, m.now),
			keyIsMain:     meta.IsMain,
			keyOriginalID: nullableString(meta.OriginalID),
			keyChunkIndex: nullableInt(meta.ChunkIndex),
			keyIsShared:   meta.IsShared,
		},
	}
}

// MemoryToPoint builds the point stored for a memory in tableName. The
// caller resolves unique before mapping. The flag is stored as "true" or
// "false" so keyword filters on it match.
func (m *Mapper) MemoryToPoint(mem memory.Memory, tableName string, unique bool) vector.Point {
	id := memoryID(mem.ID, m.newID)

	return vector.Point{
		ID:     vector.NormalizeID(id),
		Vector: memoryVector(mem.Embedding, m.vectorSize),
		Payload: map[string]any{
			keyID:   id,
			keyType: tableName,
			keyContent: map[string]any{
				keyText:     mem.Content.Text,
				keyMetadata: coerceMap(mem.Content.Metadata),
			},
			keyUserID:    mem.UserID,
			keyRoomID:    mem.RoomID,
			keyAgentID:   mem.AgentID,
			keyUnique:    strconv.FormatBool(unique),
			keyCreatedAt: m.now().UnixMilli(),
		},
	}
}

// PointToKnowledge rebuilds a knowledge item. The text is read from the
// payload description field.
func (m *Mapper) PointToKnowledge(p vector.Point) memory.Knowledge {
	payload := p.Payload

	k := memory.Knowledge{
		ID:        stringOr(payload, keyID, p.ID),
		AgentID:   stringOr(payload, keyAgentID, ""),
		CreatedAt: int64Of(payload, keyCreatedAt),
		Content: memory.KnowledgeContent{
			Text: stringOr(payload, keyDescription, ""),
			Metadata: memory.KnowledgeMetadata{
				IsMain:     boolOf(payload, keyIsMain),
				OriginalID: stringOr(payload, keyOriginalID, ""),
				ChunkIndex: intPtrOf(payload, keyChunkIndex),
				IsShared:   boolOf(payload, keyIsShared),
			},
		},
	}

	if content, ok := payload[keyContent].(map[string]any); ok {
		if meta, ok := content[keyMetadata].(map[string]any); ok {
			k.Content.Metadata.Extra = extraMetadata(meta)
		}
	}
	if len(p.Vector) > 0 {
		k.Embedding = p.Vector
	}
	return k
}

// PointToMemory rebuilds a memory.
func (m *Mapper) PointToMemory(p vector.Point) memory.Memory {
	payload := p.Payload

	mem := memory.Memory{
		ID:        stringOr(payload, keyID, p.ID),
		Type:      stringOr(payload, keyType, ""),
		RoomID:    stringOr(payload, keyRoomID, ""),
		UserID:    stringOr(payload, keyUserID, ""),
		AgentID:   stringOr(payload, keyAgentID, ""),
		CreatedAt: int64Of(payload, keyCreatedAt),
	}

	if content, ok := payload[keyContent].(map[string]any); ok {
		mem.Content.Text = stringOr(content, keyText, "")
		if meta, ok := content[keyMetadata].(map[string]any); ok && len(meta) > 0 {
			mem.Content.Metadata = meta
		}
	}
	if _, ok := payload[keyUnique]; ok {
		u := boolOf(payload, keyUnique)
		mem.Unique = &u
	}
	if len(p.Vector) > 0 {
		mem.Embedding = p.Vector
	}
	return mem
}

// ScoredToMemory rebuilds a memory and carries the search score as its
// similarity.
func (m *Mapper) ScoredToMemory(sp vector.ScoredPoint) memory.Memory {
	mem := m.PointToMemory(sp.Point)
	mem.Similarity = sp.Score
	return mem
}

// ScoredToKnowledge rebuilds a knowledge item with its similarity.
func (m *Mapper) ScoredToKnowledge(sp vector.ScoredPoint) memory.Knowledge {
	k := m.PointToKnowledge(sp.Point)
	k.Similarity = sp.Score
	return k
}

// PointsToMemories maps a slice of points.
func (m *Mapper) PointsToMemories(points []vector.Point) []memory.Memory {
	out := make([]memory.Memory, 0, len(points))
	for _, p := range points {
		out = append(out, m.PointToMemory(p))
	}
	return out
}

// ScoredToMemories maps a slice of scored points.
func (m *Mapper) ScoredToMemories(points []vector.ScoredPoint) []memory.Memory {
	out := make([]memory.Memory, 0, len(points))
	for _, p := range points {
		out = append(out, m.ScoredToMemory(p))
	}
	return out
}

// PointsToKnowledge maps a slice of points.
func (m *Mapper) PointsToKnowledge(points []vector.Point) []memory.Knowledge {
	out := make([]memory.Knowledge, 0, len(points))
	for _, p := range points {
		out = append(out, m.PointToKnowledge(p))
	}
	return out
}
