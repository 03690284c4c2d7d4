package config

import (
	"encoding/json"

	"github.com/felixgeelhaar/agent-memory/domain/config"
)

// JSONSchema represents a JSON Schema document.
type JSONSchema struct {
	Schema               string                 `json:"$schema,omitempty"`
	ID                   string                 `json:"$id,omitempty"`
	Title                string                 `json:"title,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Type                 string                 `json:"type,omitempty"`
	Properties           map[string]*JSONSchema `json:"properties,omitempty"`
	Required             []string               `json:"required,omitempty"`
	AdditionalProperties *bool                  `json:"additionalProperties,omitempty"`
	Enum                 []string               `json:"enum,omitempty"`
	Default              any                    `json:"default,omitempty"`
	Minimum              *float64               `json:"minimum,omitempty"`
	Maximum              *float64               `json:"maximum,omitempty"`
	Pattern              string                 `json:"pattern,omitempty"`
	Format               string                 `json:"format,omitempty"`
}

// durationPattern accepts Go duration strings such as "30s" or "1m30s".
const durationPattern = `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`

// GenerateSchema generates a JSON Schema for the AdapterConfig.
func GenerateSchema() *JSONSchema {
	return &JSONSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		ID:          "https://github.com/felixgeelhaar/agent-memory/adapter-config.schema.json",
		Title:       "Memory Adapter Configuration",
		Description: "Configuration schema for the agent-memory vector adapter",
		Type:        "object",
		Required:    []string{"url", "api_key", "port", "vector_size"},
		Properties: map[string]*JSONSchema{
			"url": {
				Type:        "string",
				Description: "Vector database endpoint",
			},
			"api_key": {
				Type:        "string",
				Description: "Vector database API key",
			},
			"port": {
				Type:        "integer",
				Description: "Vector database gRPC port",
				Minimum:     floatPtr(1),
				Maximum:     floatPtr(65535),
			},
			"vector_size": {
				Type:        "integer",
				Description: "Embedding dimension",
				Minimum:     floatPtr(1),
			},
			"collection": {
				Type:        "string",
				Description: "Collection holding every point",
				Default:     config.DefaultCollection,
			},
			"store":      generateStoreSchema(),
			"cache":      generateCacheSchema(),
			"resilience": generateResilienceSchema(),
			"logging":    generateLoggingSchema(),
			"tracing":    generateTracingSchema(),
		},
	}
}

func generateStoreSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "Vector client selection",
		Properties: map[string]*JSONSchema{
			"backend": {
				Type:    "string",
				Enum:    []string{config.StoreQdrant, config.StoreMemory},
				Default: config.StoreQdrant,
			},
			"timeout": durationSchema("Per-call timeout", "10s"),
		},
	}
}

func generateCacheSchema() *JSONSchema {
	str := func(desc string) *JSONSchema { return &JSONSchema{Type: "string", Description: desc} }
	integer := func(desc string) *JSONSchema { return &JSONSchema{Type: "integer", Description: desc} }
	object := func(desc string, props map[string]*JSONSchema) *JSONSchema {
		return &JSONSchema{Type: "object", Description: desc, Properties: props}
	}

	return &JSONSchema{
		Type:        "object",
		Description: "Result cache backend",
		Properties: map[string]*JSONSchema{
			"backend": {
				Type: "string",
				Enum: []string{
					config.CacheMemory, config.CacheRedis, config.CacheBadger, config.CacheSQLite,
					config.CachePostgres, config.CacheMongoDB, config.CacheDynamoDB,
				},
				Default: config.CacheMemory,
			},
			"max_entries": {
				Type:        "integer",
				Description: "Bound for the in-memory backend, 0 is unbounded",
				Minimum:     floatPtr(0),
			},
			"ttl":        durationSchema("Entry lifetime, 0 keeps entries until overwritten", nil),
			"key_prefix": str("Key namespace on shared backends"),
			"redis": object("Redis backend", map[string]*JSONSchema{
				"addr":     str("host:port"),
				"password": str("Password"),
				"db":       integer("Database number"),
			}),
			"badger": object("Badger backend", map[string]*JSONSchema{
				"path":      str("Data directory"),
				"in_memory": {Type: "boolean"},
			}),
			"sqlite": object("SQLite backend", map[string]*JSONSchema{
				"path": str("Database file"),
			}),
			"postgres": object("PostgreSQL backend", map[string]*JSONSchema{
				"host":     str("Host"),
				"port":     integer("Port"),
				"database": str("Database"),
				"user":     str("User"),
				"password": str("Password"),
				"ssl_mode": str("SSL mode"),
				"schema":   str("Schema holding the cache table"),
			}),
			"mongodb": object("MongoDB backend", map[string]*JSONSchema{
				"uri":        {Type: "string", Format: "uri"},
				"database":   str("Database"),
				"collection": str("Collection"),
			}),
			"dynamodb": object("DynamoDB backend", map[string]*JSONSchema{
				"region":   str("AWS region"),
				"endpoint": str("Endpoint override for local testing"),
				"table":    str("Table name"),
			}),
		},
	}
}

func generateResilienceSchema() *JSONSchema {
	nonNegative := func(desc string) *JSONSchema {
		return &JSONSchema{Type: "integer", Description: desc, Minimum: floatPtr(0)}
	}
	return &JSONSchema{
		Type:        "object",
		Description: "Fault tolerance around the vector client",
		Properties: map[string]*JSONSchema{
			"enabled":           {Type: "boolean", Default: false},
			"max_concurrent":    nonNegative("Bulkhead size"),
			"failure_threshold": nonNegative("Consecutive failures that open the circuit"),
			"open_timeout":      durationSchema("Open circuit duration", "30s"),
			"retry_attempts":    nonNegative("Total attempts per call, 1 disables retry"),
			"retry_delay":       durationSchema("Initial retry delay", "100ms"),
			"rate_limit":        nonNegative("Calls per second per operation, 0 disables limiting"),
			"rate_burst":        nonNegative("Token bucket capacity"),
		},
	}
}

func generateLoggingSchema() *JSONSchema {
	return &JSONSchema{
		Type: "object",
		Properties: map[string]*JSONSchema{
			"level": {
				Type:    "string",
				Enum:    []string{"trace", "debug", "info", "warn", "error"},
				Default: "info",
			},
			"format": {
				Type:    "string",
				Enum:    []string{"json", "console"},
				Default: "json",
			},
		},
	}
}

func generateTracingSchema() *JSONSchema {
	return &JSONSchema{
		Type:        "object",
		Description: "OpenTelemetry spans around vector client calls",
		Properties: map[string]*JSONSchema{
			"enabled": {Type: "boolean", Default: false},
			"exporter": {
				Type:    "string",
				Enum:    []string{config.ExporterOTLP, config.ExporterStdout, config.ExporterNoop},
				Default: config.ExporterStdout,
			},
			"endpoint":     {Type: "string", Description: "OTLP gRPC endpoint"},
			"insecure":     {Type: "boolean", Description: "Disable TLS for the OTLP connection"},
			"service_name": {Type: "string", Default: "agent-memory"},
			"sample_rate": {
				Type:    "number",
				Minimum: floatPtr(0),
				Maximum: floatPtr(1),
				Default: 1.0,
			},
		},
	}
}

func durationSchema(desc string, def any) *JSONSchema {
	return &JSONSchema{
		Type:        "string",
		Description: desc,
		Pattern:     durationPattern,
		Default:     def,
	}
}

func floatPtr(f float64) *float64 {
	return &f
}

// SchemaJSON returns the schema as indented JSON.
func SchemaJSON() (string, error) {
	data, err := json.MarshalIndent(GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
