package badger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/agent-memory/domain/cache"
	"github.com/felixgeelhaar/agent-memory/infrastructure/storage/badger"
)

func newTestCache(t *testing.T, opts ...badger.Option) *badger.Cache {
	t.Helper()
	opts = append([]badger.Option{badger.WithInMemory()}, opts...)
	c, err := badger.NewCache(badger.DefaultConfig(), opts...)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCache_SetAndGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "agent-1:abc", []byte(`[{"id":"k1"}]`), cache.SetOptions{}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found, err := c.Get(ctx, "agent-1:abc")
	if err != nil || !found {
		t.Fatalf("Get = %v, %v", found, err)
	}
	if string(val) != `[{"id":"k1"}]` {
		t.Errorf("Get = %s", val)
	}

	_, found, err = c.Get(ctx, "agent-2:abc")
	if err != nil || found {
		t.Errorf("Get(other agent) = %v, %v; want miss", found, err)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Size != 1 {
		t.Errorf("Stats = %+v, want 1 hit, 1 miss, size 1", stats)
	}
}

func TestCache_Overwrite(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v1"), cache.SetOptions{})
	_ = c.Set(ctx, "k", []byte("v2"), cache.SetOptions{})

	val, _, _ := c.Get(ctx, "k")
	if string(val) != "v2" {
		t.Errorf("Get = %s, want v2", val)
	}
}

func TestCache_SetWithTTL(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	// badger stores expiry with second precision
	if err := c.Set(ctx, "short", []byte("v"), cache.SetOptions{TTL: time.Second}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if ok, _ := c.Exists(ctx, "short"); !ok {
		t.Fatal("key should exist before expiry")
	}

	time.Sleep(2100 * time.Millisecond)

	if _, found, _ := c.Get(ctx, "short"); found {
		t.Error("key should have expired")
	}
}

func TestCache_DeleteAndExists(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}

	_ = c.Set(ctx, "k", []byte("v"), cache.SetOptions{})
	if ok, err := c.Exists(ctx, "k"); err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, _ := c.Exists(ctx, "k"); ok {
		t.Error("key should be gone after Delete")
	}
}

func TestCache_Clear(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), cache.SetOptions{})
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if size := c.Stats().Size; size != 0 {
		t.Errorf("Size after Clear = %d, want 0", size)
	}
}

func TestCache_Guards(t *testing.T) {
	c := newTestCache(t)

	if err := c.Set(context.Background(), "", []byte("v"), cache.SetOptions{}); !errors.Is(err, cache.ErrInvalidKey) {
		t.Errorf("Set(empty) error = %v, want ErrInvalidKey", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := c.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get(canceled) error = %v, want context.Canceled", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if err := c.Set(context.Background(), "k", nil, cache.SetOptions{}); !errors.Is(err, cache.ErrClosed) {
		t.Errorf("Set after Close error = %v, want ErrClosed", err)
	}
}

func TestCache_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, err := badger.NewCache(badger.DefaultConfig(), badger.WithDir(dir), badger.WithGCInterval(time.Hour))
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}
	_ = c.Set(ctx, "k", []byte("persisted"), cache.SetOptions{})
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := badger.NewCache(badger.DefaultConfig(), badger.WithDir(dir))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	val, found, err := reopened.Get(ctx, "k")
	if err != nil || !found || string(val) != "persisted" {
		t.Errorf("Get after reopen = %q, %v, %v", val, found, err)
	}
}
