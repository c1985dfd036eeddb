package tiered_test

import (
	"context"
	"testing"
	"time"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/tiered"
)

// memCache is an in-memory stand-in for the ristretto and NATS KV tiers.
type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func newTiered() (*memCache, *memCache, *tiered.Cache) {
	l1 := newMemCache()
	l2 := newMemCache()
	return l1, l2, tiered.New(l1, l2, 5*time.Minute)
}

func TestTieredL1Hit(t *testing.T) {
	l1, _, c := newTiered()
	l1.data["asset/a"] = []byte("url-a")

	val, found, err := c.Get(context.Background(), "asset/a")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(val) != "url-a" {
		t.Fatalf("expected L1 hit with url-a, got found=%v val=%s", found, val)
	}
}

func TestTieredL2HitBackfillsL1(t *testing.T) {
	l1, l2, c := newTiered()
	l2.data["asset/b"] = []byte("url-b")

	val, found, err := c.Get(context.Background(), "asset/b")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(val) != "url-b" {
		t.Fatalf("expected L2 hit with url-b, got found=%v val=%s", found, val)
	}

	if got := string(l1.data["asset/b"]); got != "url-b" {
		t.Fatalf("expected L2 value promoted into L1, got %q", got)
	}
}

func TestTieredMiss(t *testing.T) {
	_, _, c := newTiered()

	_, found, err := c.Get(context.Background(), "asset/absent")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected miss when neither tier holds the key")
	}
}

func TestTieredSetWritesBothTiers(t *testing.T) {
	l1, l2, c := newTiered()

	if err := c.Set(context.Background(), "asset/c", []byte("url-c"), time.Minute); err != nil {
		t.Fatal(err)
	}

	if _, ok := l1.data["asset/c"]; !ok {
		t.Fatal("expected value in L1")
	}
	if _, ok := l2.data["asset/c"]; !ok {
		t.Fatal("expected value in L2")
	}
}

func TestTieredDeleteClearsBothTiers(t *testing.T) {
	l1, l2, c := newTiered()
	l1.data["asset/d"] = []byte("url-d")
	l2.data["asset/d"] = []byte("url-d")

	if err := c.Delete(context.Background(), "asset/d"); err != nil {
		t.Fatal(err)
	}

	if _, ok := l1.data["asset/d"]; ok {
		t.Fatal("expected key gone from L1")
	}
	if _, ok := l2.data["asset/d"]; ok {
		t.Fatal("expected key gone from L2")
	}
}

func TestTieredWithoutL2(t *testing.T) {
	l1 := newMemCache()
	c := tiered.New(l1, nil, 5*time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "asset/e", []byte("url-e"), time.Minute); err != nil {
		t.Fatal(err)
	}

	val, found, err := c.Get(ctx, "asset/e")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(val) != "url-e" {
		t.Fatalf("expected L1-only hit, got found=%v val=%s", found, val)
	}

	if err := c.Delete(ctx, "asset/e"); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := c.Get(ctx, "asset/e"); found {
		t.Fatal("expected miss after delete")
	}
}
