package mapper

import (
	"encoding/json"
	"fmt"
	"math"
)

var knowledgeMetaKeys = map[string]bool{
	keyIsMain:     true,
	keyOriginalID: true,
	keyChunkIndex: true,
	keyIsShared:   true,
}

// coerceMap rewrites arbitrary metadata into the JSON value space
// (string, float64, bool, nil, map[string]any, []any) that every store
// payload accepts. Values that cannot be encoded are replaced by their
// fmt string form. The result is never nil.
func coerceMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = coerceValue(v)
	}
	return out
}

func coerceValue(v any) any {
	switch v.(type) {
	case nil, string, bool, float64:
		return v
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Sprint(v)
	}
	return out
}

func extraMetadata(meta map[string]any) map[string]any {
	var extra map[string]any
	for k, v := range meta {
		if knowledgeMetaKeys[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra
}

func stringOr(payload map[string]any, key, fallback string) string {
	if s, ok := payload[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func boolOf(payload map[string]any, key string) bool {
	switch v := payload[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// number reads a numeric payload value. Stores return integers as int64
// and JSON-decoded values as float64.
func number(payload map[string]any, key string) (float64, bool) {
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func int64Of(payload map[string]any, key string) int64 {
	f, ok := number(payload, key)
	if !ok || math.IsNaN(f) {
		return 0
	}
	return int64(f)
}

func intPtrOf(payload map[string]any, key string) *int {
	f, ok := number(payload, key)
	if !ok {
		return nil
	}
	i := int(f)
	return &i
}
