// Package ristretto implements the cache port with an in-process
// dgraph-io/ristretto cache, used as the L1 tier for resolved asset URLs.
package ristretto

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Entries are short presigned URLs, so size the admission counters for
// small values.
const assumedEntryBytes = 100

// Cache is a byte-value cache backed by ristretto. Cost equals value length,
// so maxCostBytes bounds total memory held by cached values.
type Cache struct {
	c *ristretto.Cache[string, []byte]
}

// New creates a cache that holds at most maxCostBytes of values.
func New(maxCostBytes int64) (*Cache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: maxCostBytes / assumedEntryBytes * 10,
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{c: c}, nil
}

// Get returns the cached value for key, reporting whether it was present.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := c.c.Get(key)
	return val, found, nil
}

// Set stores value under key for at most ttl. Writes pass through
// ristretto's admission buffer, so a Set is not guaranteed to be visible
// to an immediate Get.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, value, int64(len(value)), ttl)
	return nil
}

// Delete drops key from the cache.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

// Close releases the cache's internal goroutines and buffers.
func (c *Cache) Close() {
	c.c.Close()
}
