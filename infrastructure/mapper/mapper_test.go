package mapper

import (
	"reflect"
	"testing"
	"time"

	"github.com/felixgeelhaar/agent-memory/domain/memory"
	"github.com/felixgeelhaar/agent-memory/domain/vector"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func newTestMapper() *Mapper {
	return New(3,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "generated-id" }),
	)
}

func intPtr(i int) *int { return &i }

func TestKnowledgeToPoint(t *testing.T) {
	t.Parallel()

	m := newTestMapper()
	k := memory.Knowledge{
		ID:      "doc-1",
		AgentID: "agent-1",
		Content: memory.KnowledgeContent{
			Text: "hello",
			Metadata: memory.KnowledgeMetadata{
				IsMain:     true,
				OriginalID: "parent",
				ChunkIndex: intPtr(2),
				Extra:      map[string]any{"source": "wiki"},
			},
		},
		Embedding: []float32{0.1, 0.2, 0.3},
	}

	p := m.KnowledgeToPoint(k)

	if p.ID != vector.NormalizeID("doc-1") {
		t.Errorf("ID = %q, want normalized doc-1", p.ID)
	}
	if !reflect.DeepEqual(p.Vector, k.Embedding) {
		t.Errorf("Vector = %v, want %v", p.Vector, k.Embedding)
	}
	if p.Payload["id"] != "doc-1" {
		t.Errorf("payload id = %v, want doc-1", p.Payload["id"])
	}
	if p.Payload["agentId"] != "agent-1" {
		t.Errorf("payload agentId = %v, want agent-1", p.Payload["agentId"])
	}
	if p.Payload["createdAt"] != fixedNow.UnixMilli() {
		t.Errorf("payload createdAt = %v, want %d", p.Payload["createdAt"], fixedNow.UnixMilli())
	}
	if p.Payload["originalId"] != "parent" {
		t.Errorf("payload originalId = %v, want parent", p.Payload["originalId"])
	}
	if p.Payload["chunkIndex"] != 2 {
		t.Errorf("payload chunkIndex = %v, want 2", p.Payload["chunkIndex"])
	}
	content := p.Payload["content"].(map[string]any)
	if content["text"] != "hello" {
		t.Errorf("content.text = %v, want hello", content["text"])
	}
	meta := content["metadata"].(map[string]any)
	if meta["source"] != "wiki" {
		t.Errorf("content.metadata.source = %v, want wiki", meta["source"])
	}
}

func TestKnowledgeToPoint_Defaults(t *testing.T) {
	t.Parallel()

	m := newTestMapper()
	p := m.KnowledgeToPoint(memory.Knowledge{
		ID:        "shared",
		AgentID:   "agent-1",
		CreatedAt: 42,
		Content: memory.KnowledgeContent{
			Metadata: memory.KnowledgeMetadata{IsShared: true},
		},
	})

	if p.Payload["agentId"] != nil {
		t.Errorf("shared knowledge agentId = %v, want nil", p.Payload["agentId"])
	}
	if p.Payload["createdAt"] != int64(42) {
		t.Errorf("createdAt = %v, want 42", p.Payload["createdAt"])
	}
	if p.Payload["originalId"] != nil || p.Payload["chunkIndex"] != nil {
		t.Errorf("originalId/chunkIndex = %v/%v, want nil", p.Payload["originalId"], p.Payload["chunkIndex"])
	}
	if p.Payload["isMain"] != false || p.Payload["isShared"] != true {
		t.Errorf("isMain/isShared = %v/%v, want false/true", p.Payload["isMain"], p.Payload["isShared"])
	}
	if p.Vector == nil || len(p.Vector) != 0 {
		t.Errorf("Vector = %v, want empty non-nil", p.Vector)
	}
}

// Knowledge text is written under content.text but read from the
// description key, so it does not survive a round trip on its own.
func TestKnowledgeRoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestMapper()
	in := memory.Knowledge{
		ID:      "doc-1",
		AgentID: "agent-1",
		Content: memory.KnowledgeContent{
			Text: "body",
			Metadata: memory.KnowledgeMetadata{
				OriginalID: "parent",
				ChunkIndex: intPtr(0),
				Extra:      map[string]any{"lang": "en"},
			},
		},
		Embedding: []float32{1, 0, 0},
		CreatedAt: 99,
	}

	out := m.PointToKnowledge(m.KnowledgeToPoint(in))

	if out.ID != in.ID {
		t.Errorf("ID = %q, want %q", out.ID, in.ID)
	}
	if out.AgentID != in.AgentID {
		t.Errorf("AgentID = %q, want %q", out.AgentID, in.AgentID)
	}
	if !reflect.DeepEqual(out.Embedding, in.Embedding) {
		t.Errorf("Embedding = %v, want %v", out.Embedding, in.Embedding)
	}
	if out.CreatedAt != 99 {
		t.Errorf("CreatedAt = %d, want 99", out.CreatedAt)
	}
	if out.Content.Metadata.OriginalID != "parent" {
		t.Errorf("OriginalID = %q, want parent", out.Content.Metadata.OriginalID)
	}
	if out.Content.Metadata.ChunkIndex == nil || *out.Content.Metadata.ChunkIndex != 0 {
		t.Errorf("ChunkIndex = %v, want 0", out.Content.Metadata.ChunkIndex)
	}
	if out.Content.Metadata.Extra["lang"] != "en" {
		t.Errorf("Extra = %v, want lang=en", out.Content.Metadata.Extra)
	}
	if out.Content.Text != "" {
		t.Errorf("Text = %q, want empty (read from description)", out.Content.Text)
	}

	p := m.KnowledgeToPoint(in)
	p.Payload["description"] = "from description"
	if got := m.PointToKnowledge(p).Content.Text; got != "from description" {
		t.Errorf("Text = %q, want description value", got)
	}
}

func TestPointToKnowledge_FallsBackToPointID(t *testing.T) {
	t.Parallel()

	m := newTestMapper()
	k := m.PointToKnowledge(vector.Point{ID: "point-uuid", Payload: map[string]any{}})
	if k.ID != "point-uuid" {
		t.Errorf("ID = %q, want point-uuid", k.ID)
	}
	if k.Embedding != nil {
		t.Errorf("Embedding = %v, want nil", k.Embedding)
	}
}

func TestScoredToKnowledge(t *testing.T) {
	t.Parallel()

	m := newTestMapper()
	p := m.KnowledgeToPoint(memory.Knowledge{ID: "doc-2", Embedding: []float32{0, 1, 0}})
	k := m.ScoredToKnowledge(vector.ScoredPoint{Point: p, Score: 0.75})
	if k.ID != "doc-2" || k.Similarity != 0.75 {
		t.Errorf("ScoredToKnowledge() = %+v, want doc-2 at 0.75", k)
	}
}

func TestMemoryToPoint(t *testing.T) {
	t.Parallel()

	m := newTestMapper()
	p := m.MemoryToPoint(memory.Memory{
		ID:      "m-1",
		RoomID:  "r1",
		UserID:  "u1",
		AgentID: "a1",
		Content: memory.Content{Text: "hi", Metadata: map[string]any{"n": 1}},
	}, "facts", true)

	if p.ID != vector.NormalizeID("m-1") {
		t.Errorf("ID = %q, want normalized m-1", p.ID)
	}
	if !reflect.DeepEqual(p.Vector, []float32{0, 0, 0}) {
		t.Errorf("Vector = %v, want 3 zeros", p.Vector)
	}
	want := map[string]any{
		"id":        "m-1",
		"type":      "facts",
		"userId":    "u1",
		"roomId":    "r1",
		"agentId":   "a1",
		"unique":    "true",
		"createdAt": fixedNow.UnixMilli(),
		"content": map[string]any{
			"text":     "hi",
			"metadata": map[string]any{"n": float64(1)},
		},
	}
	if !reflect.DeepEqual(p.Payload, want) {
		t.Errorf("Payload = %#v, want %#v", p.Payload, want)
	}
}

func TestMemoryToPoint_GeneratesID(t *testing.T) {
	t.Parallel()

	m := newTestMapper()
	p := m.MemoryToPoint(memory.Memory{}, "messages", false)

	if p.Payload["id"] != "generated-id" {
		t.Errorf("payload id = %v, want generated-id", p.Payload["id"])
	}
	if p.ID != vector.NormalizeID("generated-id") {
		t.Errorf("ID = %q, want normalized generated-id", p.ID)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestMapper()
	in := memory.Memory{
		ID:        "m-1",
		RoomID:    "r1",
		UserID:    "u1",
		AgentID:   "a1",
		Content:   memory.Content{Text: "hi", Metadata: map[string]any{"k": "v"}},
		Embedding: []float32{0.5, 0.5, 0},
	}

	p := m.MemoryToPoint(in, "facts", false)
	out := m.ScoredToMemory(vector.ScoredPoint{Point: p, Score: 0.9})

	if out.ID != "m-1" || out.Type != "facts" || out.RoomID != "r1" || out.UserID != "u1" || out.AgentID != "a1" {
		t.Errorf("identity fields = %+v", out)
	}
	if out.Content.Text != "hi" || out.Content.Metadata["k"] != "v" {
		t.Errorf("Content = %+v", out.Content)
	}
	if out.Unique == nil || *out.Unique {
		t.Errorf("Unique = %v, want false", out.Unique)
	}
	if out.CreatedAt != fixedNow.UnixMilli() {
		t.Errorf("CreatedAt = %d, want %d", out.CreatedAt, fixedNow.UnixMilli())
	}
	if out.Similarity != 0.9 {
		t.Errorf("Similarity = %v, want 0.9", out.Similarity)
	}
	if !reflect.DeepEqual(out.Embedding, in.Embedding) {
		t.Errorf("Embedding = %v, want %v", out.Embedding, in.Embedding)
	}
}

func TestPointToMemory_NumericForms(t *testing.T) {
	t.Parallel()

	m := newTestMapper()
	for _, v := range []any{int64(5), float64(5), 5} {
		mem := m.PointToMemory(vector.Point{Payload: map[string]any{"createdAt": v}})
		if mem.CreatedAt != 5 {
			t.Errorf("CreatedAt from %T = %d, want 5", v, mem.CreatedAt)
		}
	}
}

func TestCoerceMap(t *testing.T) {
	t.Parallel()

	type custom struct {
		A int `json:"a"`
	}
	got := coerceMap(map[string]any{
		"s":      "x",
		"i":      3,
		"struct": custom{A: 1},
		"list":   []string{"a"},
		"nil":    nil,
	})
	want := map[string]any{
		"s":      "x",
		"i":      float64(3),
		"struct": map[string]any{"a": float64(1)},
		"list":   []any{"a"},
		"nil":    nil,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("coerceMap = %#v, want %#v", got, want)
	}
	if coerceMap(nil) == nil {
		t.Error("coerceMap(nil) should return an empty map")
	}
}
