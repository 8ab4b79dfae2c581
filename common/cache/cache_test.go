package cache

import (
	"context"
	"testing"
	"time"

	"github.com/flowcore/bpmnengine/common/logger"
)

func newTestCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]*cacheEntry), log: logger.New("error", "text")}
}

func TestMemoryCache_SetThenGet(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected to find key k, ok=%v err=%v", ok, err)
	}
	if string(got) != "v" {
		t.Errorf("expected value 'v', got %q", got)
	}
}

func TestMemoryCache_GetMissingKey(t *testing.T) {
	c := newTestCache()
	if _, ok, err := c.Get(context.Background(), "missing"); ok || err != nil {
		t.Errorf("expected ok=false for a missing key, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryCache_ExpiredEntryNotReturned(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()
	_ = c.Set(ctx, "k", []byte("v"), -time.Second)

	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("expected an already-expired entry to report ok=false, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()
	_ = c.Set(ctx, "k", []byte("v"), time.Minute)

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Errorf("expected the key to be gone after Delete")
	}
}

func TestMemoryCache_CloseClearsData(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()
	_ = c.Set(ctx, "k", []byte("v"), time.Minute)

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if c.data != nil {
		t.Errorf("expected Close to nil out the backing map")
	}
}

func TestMemoryCache_StatsReportsEntryCount(t *testing.T) {
	c := newTestCache()
	ctx := context.Background()
	_ = c.Set(ctx, "a", []byte("1"), time.Minute)
	_ = c.Set(ctx, "b", []byte("2"), time.Minute)

	stats := c.Stats()
	if stats["entries"] != 2 {
		t.Errorf("expected 2 entries, got %v", stats["entries"])
	}
	if stats["type"] != "memory" {
		t.Errorf("expected type=memory, got %v", stats["type"])
	}
}

func TestMemoryCache_SatisfiesDefinitionCacheShape(t *testing.T) {
	// host.DefinitionCache requires Get(ctx, key) ([]byte, bool, error) and
	// Set(ctx, key, value, ttl) error — confirm the signatures line up
	// without importing workflow/host here (common must not depend on
	// workflow, only the other way around).
	var _ interface {
		Get(ctx context.Context, key string) ([]byte, bool, error)
		Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	} = (*MemoryCache)(nil)
}
