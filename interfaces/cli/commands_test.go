package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/agent-memory/application"
	"github.com/felixgeelhaar/agent-memory/domain/cache"
	"github.com/felixgeelhaar/agent-memory/domain/config"
	"github.com/felixgeelhaar/agent-memory/domain/memory"
	"github.com/felixgeelhaar/agent-memory/domain/vector"
	storemem "github.com/felixgeelhaar/agent-memory/infrastructure/storage/memory"
)

// sharedClient outlives the adapter each command opens and closes.
type sharedClient struct {
	*storemem.VectorClient
}

func (sharedClient) Close() error { return nil }

type sharedCache struct {
	cache.Cache
}

func (sharedCache) Close() error { return nil }

// harness runs commands against one in-memory store.
type harness struct {
	t      *testing.T
	config string
	client *storemem.VectorClient
	cache  *storemem.Cache
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return &harness{
		t:      t,
		config: writeConfig(t, validConfig),
		client: storemem.NewVectorClient(),
		cache:  storemem.NewCache(),
	}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()

	var out, errOut bytes.Buffer
	app := New().
		WithOutput(&out, &errOut).
		WithInput(strings.NewReader(stdin)).
		WithAdapterOptions(
			application.WithClientFactory(func(*config.AdapterConfig) (vector.Client, error) {
				return sharedClient{h.client}, nil
			}),
			application.WithCache(sharedCache{h.cache}),
		)
	err := app.ExecuteWithArgs(context.Background(), append(args, "-c", h.config))
	return out.String(), err
}

func (h *harness) mustRun(stdin string, args ...string) string {
	h.t.Helper()
	out, err := h.run(stdin, args...)
	if err != nil {
		h.t.Fatalf("%s failed: %v", strings.Join(args, " "), err)
	}
	return out
}

func decodeMemories(t *testing.T, out string) []memory.Memory {
	t.Helper()
	var memories []memory.Memory
	if err := json.Unmarshal([]byte(out), &memories); err != nil {
		t.Fatalf("output is not a memory list: %v\n%s", err, out)
	}
	return memories
}

func TestCLI_Init(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("", "init")
	if !strings.Contains(out, `"status": "ready"`) || !strings.Contains(out, "cli-test") {
		t.Errorf("unexpected init output: %s", out)
	}
	h.mustRun("", "init")

	if got := h.client.Calls("create_collection"); got != 1 {
		t.Errorf("create_collection calls = %d, want 1", got)
	}
}

func TestCLI_MemoryFlow(t *testing.T) {
	h := newHarness(t)
	h.mustRun("", "init")

	records := []string{
		`{"id":"m1","roomId":"r1","agentId":"a1","content":{"text":"first"},"embedding":[1,0,0]}`,
		`{"id":"m2","roomId":"r1","agentId":"a1","content":{"text":"second"},"embedding":[0,1,0]}`,
		`{"id":"m3","roomId":"r2","agentId":"a1","content":{"text":"other room"},"embedding":[1,0,0]}`,
	}
	for _, rec := range records {
		out := h.mustRun(rec, "memory", "upsert", "--table", "messages")
		if !strings.Contains(out, `"status": "stored"`) {
			t.Errorf("unexpected upsert output: %s", out)
		}
	}

	listed := decodeMemories(t, h.mustRun("", "memory", "list", "--table", "messages", "--room", "r1"))
	if len(listed) != 2 {
		t.Fatalf("listed %d memories, want 2", len(listed))
	}

	found := decodeMemories(t, h.mustRun("", "memory", "search",
		"--table", "messages", "--room", "r1", "--embedding", "1,0.05,0", "--threshold", "0.9"))
	if len(found) != 1 || found[0].ID != "m1" {
		t.Errorf("search returned %+v, want m1 only", found)
	}

	got := decodeMemories(t, h.mustRun("", "memory", "get", "m2", "missing"))
	if len(got) != 1 || got[0].Content.Text != "second" {
		t.Errorf("get returned %+v", got)
	}
}

func TestCLI_MemoryUpsertFromFile(t *testing.T) {
	h := newHarness(t)
	h.mustRun("", "init")

	path := filepath.Join(t.TempDir(), "memory.json")
	if err := os.WriteFile(path, []byte(`{"id":"f1","roomId":"r1","content":{"text":"from file"}}`), 0644); err != nil {
		t.Fatalf("failed to write record: %v", err)
	}
	h.mustRun("", "memory", "upsert", "--table", "facts", "--file", path, "--unique=false")

	listed := decodeMemories(t, h.mustRun("", "memory", "list", "--table", "facts", "--room", "r1", "--unique=false"))
	if len(listed) != 1 || listed[0].ID != "f1" {
		t.Errorf("listed %+v, want f1", listed)
	}
	if h.client.Calls("search") != 0 {
		t.Error("explicit --unique should skip the duplicate search")
	}
}

func TestCLI_MemoryValidationErrors(t *testing.T) {
	h := newHarness(t)
	h.mustRun("", "init")

	if _, err := h.run("", "memory", "list", "--table", "messages"); err == nil {
		t.Error("list without --room should fail")
	}
	_, err := h.run("", "memory", "search", "--embedding", "1,2")
	if err == nil || !strings.Contains(err.Error(), "dimension") {
		t.Errorf("search with a short embedding error = %v, want dimension mismatch", err)
	}
	if _, err := h.run("not json", "memory", "upsert", "--table", "messages"); err == nil {
		t.Error("upsert with an invalid record should fail")
	}
}

func TestCLI_KnowledgeFlow(t *testing.T) {
	h := newHarness(t)
	h.mustRun("", "init")

	h.mustRun(`{"id":"doc-1","agentId":"a1","content":{"text":"chunk","metadata":{"isMain":true}},"embedding":[0,0,1]}`,
		"knowledge", "upsert")

	args := []string{"knowledge", "search", "--agent", "a1", "--embedding", "0,0,1", "--id", "doc-1"}
	first := h.mustRun("", args...)
	second := h.mustRun("", args...)

	if first != second {
		t.Errorf("cached output differs:\n%s\n%s", first, second)
	}
	if got := h.client.Calls("retrieve"); got != 1 {
		t.Errorf("retrieve calls = %d, want 1", got)
	}

	var items []memory.Knowledge
	if err := json.Unmarshal([]byte(first), &items); err != nil || len(items) != 1 {
		t.Fatalf("unexpected knowledge output: %v\n%s", err, first)
	}
	if !items[0].Content.Metadata.IsMain {
		t.Error("metadata should survive the round trip")
	}

	if _, err := h.run(`{"content":{"text":"no id"}}`, "knowledge", "upsert"); err == nil {
		t.Error("knowledge without id should fail")
	}

	// Knowledge search selects by id only; similarity flags are not accepted.
	for _, flag := range []string{"--threshold", "--count"} {
		_, err := h.run("", append(args, flag, "1")...)
		if err == nil || !strings.Contains(err.Error(), "unknown flag") {
			t.Errorf("knowledge search %s error = %v, want unknown flag", flag, err)
		}
	}
}

func TestCLI_Cache(t *testing.T) {
	h := newHarness(t)

	h.mustRun("", "cache", "set", "--agent", "a1", "greeting", "hello")
	if out := h.mustRun("", "cache", "get", "--agent", "a1", "greeting"); strings.TrimSpace(out) != "hello" {
		t.Errorf("cache get = %q, want hello", out)
	}
	if _, err := h.run("", "cache", "get", "--agent", "a2", "greeting"); err == nil {
		t.Error("keys should be scoped per agent")
	}

	out := h.mustRun("", "cache", "delete", "--agent", "a1", "greeting")
	if !strings.Contains(out, `"deleted": true`) {
		t.Errorf("unexpected delete output: %s", out)
	}
	if _, err := h.run("", "cache", "get", "--agent", "a1", "greeting"); err == nil {
		t.Error("deleted key should be gone")
	}
}

func TestCLI_FromEnvironment(t *testing.T) {
	t.Setenv("QDRANT_URL", "http://localhost")
	t.Setenv("QDRANT_API_KEY", "secret")
	t.Setenv("QDRANT_PORT", "6334")
	t.Setenv("VECTOR_SIZE", "3")

	var out, errOut bytes.Buffer
	client := storemem.NewVectorClient()
	app := New().WithOutput(&out, &errOut).WithAdapterOptions(
		application.WithClientFactory(func(*config.AdapterConfig) (vector.Client, error) {
			return client, nil
		}),
	)
	if err := app.ExecuteWithArgs(context.Background(), []string{"init"}); err != nil {
		t.Fatalf("init from environment failed: %v", err)
	}
	if !strings.Contains(out.String(), config.DefaultCollection) {
		t.Errorf("expected default collection in output, got: %s", out.String())
	}
}
