package config

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/felixgeelhaar/agent-memory/domain/config"
)

func TestGenerateSchema(t *testing.T) {
	t.Parallel()

	schema := GenerateSchema()

	if schema.Schema != "https://json-schema.org/draft/2020-12/schema" {
		t.Errorf("Schema = %s, want draft/2020-12", schema.Schema)
	}
	if schema.Type != "object" {
		t.Errorf("Type = %s, want object", schema.Type)
	}
	for _, r := range []string{"url", "api_key", "port", "vector_size"} {
		if !slices.Contains(schema.Required, r) {
			t.Errorf("%s should be required", r)
		}
		if _, ok := schema.Properties[r]; !ok {
			t.Errorf("missing property: %s", r)
		}
	}

	cache := schema.Properties["cache"]
	if cache == nil {
		t.Fatal("missing cache property")
	}
	backends := cache.Properties["backend"].Enum
	for _, b := range []string{config.CacheMemory, config.CacheRedis, config.CacheBadger, config.CacheSQLite, config.CachePostgres, config.CacheMongoDB, config.CacheDynamoDB} {
		if !slices.Contains(backends, b) {
			t.Errorf("cache backend enum missing %s", b)
		}
		if b != config.CacheMemory && cache.Properties[b] == nil {
			t.Errorf("missing cache.%s settings", b)
		}
	}
}

func TestSchemaJSON(t *testing.T) {
	t.Parallel()

	out, err := SchemaJSON()
	if err != nil {
		t.Fatalf("SchemaJSON() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if decoded["title"] != "Memory Adapter Configuration" {
		t.Errorf("title = %v", decoded["title"])
	}
	props := decoded["properties"].(map[string]any)
	collection := props["collection"].(map[string]any)
	if collection["default"] != config.DefaultCollection {
		t.Errorf("collection default = %v", collection["default"])
	}
}
