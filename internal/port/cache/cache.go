// Package cache defines the port for the byte-value caches that hold
// resolved asset URLs.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys. Implementations may
// evict entries before ttl elapses; callers treat every Get as a hint.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
