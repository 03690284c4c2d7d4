package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/agent-memory/domain/config"
)

const validYAML = `
url: http://localhost
api_key: secret
port: 6334
vector_size: 384
cache:
  backend: redis
  ttl: 5m
  redis:
    addr: localhost:6379
resilience:
  enabled: true
  retry_attempts: 3
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoader_LoadFile_YAML(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader().LoadFile(writeFile(t, "config.yaml", validYAML))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.URL != "http://localhost" || cfg.APIKey != "secret" {
		t.Errorf("connection = %s/%s", cfg.URL, cfg.APIKey)
	}
	if cfg.Port != 6334 || cfg.VectorSize != 384 {
		t.Errorf("Port/VectorSize = %d/%d, want 6334/384", cfg.Port, cfg.VectorSize)
	}
	if cfg.Cache.Backend != config.CacheRedis || cfg.Cache.Redis.Addr != "localhost:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration() != 5*time.Minute {
		t.Errorf("Cache.TTL = %v, want 5m", cfg.Cache.TTL.Duration())
	}
	if cfg.Resilience.RetryAttempts != 3 {
		t.Errorf("RetryAttempts = %d, want 3", cfg.Resilience.RetryAttempts)
	}
	// defaults
	if cfg.Collection != config.DefaultCollection {
		t.Errorf("Collection = %s, want %s", cfg.Collection, config.DefaultCollection)
	}
	if cfg.Store.Backend != config.StoreQdrant {
		t.Errorf("Store.Backend = %s, want qdrant", cfg.Store.Backend)
	}
	if cfg.Resilience.FailureThreshold != 5 {
		t.Errorf("FailureThreshold = %d, want 5", cfg.Resilience.FailureThreshold)
	}
}

func TestLoader_LoadFile_JSON(t *testing.T) {
	t.Parallel()

	content := `{
  "url": "https://qdrant.example.com",
  "api_key": "k",
  "port": 6334,
  "vector_size": 3,
  "collection": "agent",
  "store": {"backend": "memory", "timeout": "2s"}
}`
	cfg, err := NewLoader().LoadFile(writeFile(t, "config.json", content))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Collection != "agent" {
		t.Errorf("Collection = %s, want agent", cfg.Collection)
	}
	if cfg.Store.Backend != config.StoreMemory || cfg.Store.Timeout.Duration() != 2*time.Second {
		t.Errorf("Store = %+v", cfg.Store)
	}
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want error
	}{
		{"not found", filepath.Join(dir, "missing.yaml"), config.ErrConfigNotFound},
		{"directory", dir, config.ErrInvalidFormat},
		{"unsupported extension", writeFile(t, "config.toml", "url = 1"), config.ErrUnsupportedFormat},
		{"invalid yaml", writeFile(t, "bad.yaml", "url: [unclosed"), config.ErrInvalidFormat},
		{"invalid json", writeFile(t, "bad.json", "{"), config.ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewLoader().LoadFile(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("LoadFile() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoader_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().LoadString("url: http://localhost\n", FormatYAML)
	if !errors.Is(err, config.ErrValidationFailed) {
		t.Fatalf("error = %v, want ErrValidationFailed", err)
	}
	if !errors.Is(err, config.ErrMissingSetting) {
		t.Errorf("error = %v, want ErrMissingSetting", err)
	}
	var verrs config.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 3 {
		t.Errorf("ValidationErrors = %v, want 3 entries", verrs)
	}

	cfg, err := NewLoaderWithOptions(WithValidation(false)).LoadString("url: http://localhost\n", FormatYAML)
	if err != nil {
		t.Fatalf("unvalidated load error = %v", err)
	}
	if cfg.Collection != config.DefaultCollection {
		t.Errorf("defaults should apply without validation, Collection = %q", cfg.Collection)
	}
}

func TestLoader_EnvExpansion(t *testing.T) {
	t.Setenv("AGENT_MEMORY_TEST_KEY", "from-env")

	content := "url: ${AGENT_MEMORY_TEST_URL:-http://localhost}\napi_key: ${AGENT_MEMORY_TEST_KEY}\nport: 6334\nvector_size: 4\n"

	cfg, err := NewLoader().LoadString(content, FormatYAML)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if cfg.APIKey != "from-env" || cfg.URL != "http://localhost" {
		t.Errorf("expanded = %s/%s", cfg.URL, cfg.APIKey)
	}

	raw, err := NewLoaderWithOptions(WithEnvExpansion(false), WithValidation(false)).LoadString(content, FormatYAML)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	if raw.APIKey != "${AGENT_MEMORY_TEST_KEY}" {
		t.Errorf("APIKey = %q, want unexpanded", raw.APIKey)
	}

	_, err = NewLoaderWithOptions(WithStrictEnv(true)).LoadString("api_key: ${AGENT_MEMORY_UNSET}\n", FormatYAML)
	if !errors.Is(err, config.ErrEnvExpansionFailed) || !errors.Is(err, config.ErrMissingEnvVar) {
		t.Errorf("strict error = %v", err)
	}
}

func TestLoader_LoadBytes_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().LoadBytes([]byte("{}"), Format("toml"))
	if !errors.Is(err, config.ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoader_FromEnv(t *testing.T) {
	t.Parallel()

	l := NewLoader()

	cfg, err := l.fromLookup(fakeEnv(map[string]string{
		EnvURL:        "http://qdrant:6334",
		EnvAPIKey:     "key",
		EnvPort:       " 6334 ",
		EnvVectorSize: "768",
	}))
	if err != nil {
		t.Fatalf("fromLookup() error = %v", err)
	}
	if cfg.Port != 6334 || cfg.VectorSize != 768 {
		t.Errorf("Port/VectorSize = %d/%d", cfg.Port, cfg.VectorSize)
	}
	if cfg.Collection != config.DefaultCollection {
		t.Errorf("Collection = %s", cfg.Collection)
	}

	_, err = l.fromLookup(fakeEnv(map[string]string{EnvPort: "abc"}))
	if !errors.Is(err, config.ErrInvalidSetting) {
		t.Errorf("bad port error = %v, want ErrInvalidSetting", err)
	}

	_, err = l.fromLookup(fakeEnv(nil))
	if !errors.Is(err, config.ErrMissingSetting) {
		t.Errorf("empty env error = %v, want ErrMissingSetting", err)
	}
}
