package config

import (
	"errors"
	"strings"
	"testing"

	domainconfig "github.com/felixgeelhaar/agent-memory/domain/config"
)

func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func TestEnvExpander_Expand(t *testing.T) {
	t.Parallel()

	env := fakeEnv(map[string]string{
		"QDRANT_HOST": "qdrant.internal",
		"EMPTY":       "",
		"DOLLAR":      "$QDRANT_HOST",
	})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bracket syntax", "${QDRANT_HOST}", "qdrant.internal"},
		{"dollar syntax", "$QDRANT_HOST", "qdrant.internal"},
		{"embedded in text", "https://${QDRANT_HOST}:6334", "https://qdrant.internal:6334"},
		{"multiple variables", "${QDRANT_HOST} $QDRANT_HOST", "qdrant.internal qdrant.internal"},
		{"unset default", "${MISSING:-localhost}", "localhost"},
		{"empty uses default", "${EMPTY:-fallback}", "fallback"},
		{"set ignores default", "${QDRANT_HOST:-localhost}", "qdrant.internal"},
		{"default with colon", "${MISSING:-http://localhost:6334}", "http://localhost:6334"},
		{"empty default", "${MISSING:-}", ""},
		{"unset is empty", "a${MISSING}b", "ab"},
		{"values are not re-expanded", "${DOLLAR}", "$QDRANT_HOST"},
		{"no variables", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := &envExpander{lookup: env}
			got, err := e.Expand(tt.input)
			if err != nil {
				t.Fatalf("Expand(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnvExpander_Required(t *testing.T) {
	t.Parallel()

	e := &envExpander{lookup: fakeEnv(map[string]string{"SET": "v"})}

	got, err := e.Expand("${SET:?must be set}")
	if err != nil || got != "v" {
		t.Fatalf("Expand() = %q, %v; want v, nil", got, err)
	}

	_, err = e.Expand("key: ${QDRANT_API_KEY:?api key required}")
	if !errors.Is(err, domainconfig.ErrMissingEnvVar) {
		t.Fatalf("error = %v, want ErrMissingEnvVar", err)
	}
	if want := "QDRANT_API_KEY: api key required"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q should mention %q", err, want)
	}
}

func TestEnvExpander_Strict(t *testing.T) {
	t.Parallel()

	lenient := &envExpander{lookup: fakeEnv(nil)}
	if _, err := lenient.Expand("${A} $B"); err != nil {
		t.Errorf("lenient Expand() error = %v", err)
	}

	strict := &envExpander{strict: true, lookup: fakeEnv(nil)}
	_, err := strict.Expand("${A} $B")
	if !errors.Is(err, domainconfig.ErrMissingEnvVar) {
		t.Fatalf("strict error = %v, want ErrMissingEnvVar", err)
	}
	if !strings.Contains(err.Error(), "A, B") {
		t.Errorf("error %q should list A and B", err)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("AGENT_MEMORY_TEST_VAR", "hello")

	if got := ExpandEnv("${AGENT_MEMORY_TEST_VAR}-x"); got != "hello-x" {
		t.Errorf("ExpandEnv() = %q, want hello-x", got)
	}
	if got := ExpandEnv("${AGENT_MEMORY_UNSET_VAR:?required}"); got != "${AGENT_MEMORY_UNSET_VAR:?required}" {
		t.Errorf("ExpandEnv() = %q, want input unchanged", got)
	}
	if _, err := ExpandEnvStrict("$AGENT_MEMORY_UNSET_VAR"); err == nil {
		t.Error("ExpandEnvStrict() should fail for an unset variable")
	}
}
