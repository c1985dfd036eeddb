package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/port/cache"
)

// mapCache is a minimal Cache used to exercise the contract suite.
type mapCache struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, key)
	return nil
}

// runContract checks the behavior every Cache implementation must share.
func runContract(t *testing.T, c cache.Cache) {
	t.Helper()
	ctx := context.Background()

	t.Run("SetThenGet", func(t *testing.T) {
		if err := c.Set(ctx, "asset/report.pdf", []byte("https://files/report.pdf?sig=1"), time.Minute); err != nil {
			t.Fatal(err)
		}
		val, found, err := c.Get(ctx, "asset/report.pdf")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected hit after Set")
		}
		if string(val) != "https://files/report.pdf?sig=1" {
			t.Fatalf("unexpected value %q", val)
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		_, found, err := c.Get(ctx, "asset/absent")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss for key never written")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		_ = c.Set(ctx, "asset/tmp", []byte("x"), time.Minute)
		if err := c.Delete(ctx, "asset/tmp"); err != nil {
			t.Fatal(err)
		}
		_, found, err := c.Get(ctx, "asset/tmp")
		if err != nil {
			t.Fatal(err)
		}
		if found {
			t.Fatal("expected miss after Delete")
		}
	})

	t.Run("DeleteAbsent", func(t *testing.T) {
		if err := c.Delete(ctx, "asset/never"); err != nil {
			t.Fatalf("deleting an absent key should succeed, got %v", err)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		_ = c.Set(ctx, "asset/rot", []byte("old-url"), time.Minute)
		_ = c.Set(ctx, "asset/rot", []byte("new-url"), time.Minute)
		val, found, err := c.Get(ctx, "asset/rot")
		if err != nil {
			t.Fatal(err)
		}
		if !found {
			t.Fatal("expected hit after overwrite")
		}
		if string(val) != "new-url" {
			t.Fatalf("expected latest value, got %q", val)
		}
	})
}

func TestCacheContract(t *testing.T) {
	runContract(t, &mapCache{m: make(map[string][]byte)})
}
