package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/otel"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/domain/chat"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/port/cache"
)

// resolveConcurrency caps parallel backend URL requests for one citation set.
const resolveConcurrency = 4

// AssetLinkService resolves storage keys into presigned asset URLs. Each key
// resolves at most once per TTL window: results land in the cache and
// concurrent lookups for the same key collapse into a single backend call.
type AssetLinkService struct {
	client  *soldieriq.Client
	cache   cache.Cache
	metrics *otel.Metrics
	ttl     time.Duration
	group   singleflight.Group
}

// NewAssetLinkService creates an AssetLinkService. ttl bounds how long a
// resolved URL is reused; keep it below the backend's presign expiry.
func NewAssetLinkService(client *soldieriq.Client, c cache.Cache, metrics *otel.Metrics, ttl time.Duration) *AssetLinkService {
	return &AssetLinkService{
		client:  client,
		cache:   c,
		metrics: metrics,
		ttl:     ttl,
	}
}

// Resolve returns the asset URL for one storage key.
func (s *AssetLinkService) Resolve(ctx context.Context, tokens soldieriq.TokenProvider, storageKey string) (string, error) {
	if storageKey == "" {
		return "", fmt.Errorf("resolve asset: empty storage key")
	}

	ctx, span := otel.StartResolveSpan(ctx, storageKey)
	defer span.End()

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, cacheKey(storageKey)); err == nil && ok {
			if s.metrics != nil {
				s.metrics.AssetCacheHits.Add(ctx, 1)
			}
			return string(cached), nil
		}
	}
	if s.metrics != nil {
		s.metrics.AssetCacheMisses.Add(ctx, 1)
	}

	v, err, _ := s.group.Do(storageKey, func() (any, error) {
		token := ""
		if tokens != nil {
			var err error
			token, err = tokens.Token(ctx)
			if err != nil {
				return nil, err
			}
		}
		u, err := s.client.ResolveFileURL(ctx, token, storageKey)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, cacheKey(storageKey), []byte(u), s.ttl); err != nil {
				slog.Warn("cache asset url", "storage_key", storageKey, "error", err)
			}
		}
		return u, nil
	})
	if err != nil {
		return "", fmt.Errorf("resolve asset %s: %w", storageKey, err)
	}
	return v.(string), nil
}

// ResolveCitations fills in URL fields for a citation set in place. Keys that
// fail to resolve are logged and left empty; one bad key never blocks the
// rest of the set.
func (s *AssetLinkService) ResolveCitations(ctx context.Context, tokens soldieriq.TokenProvider, citations []chat.Citation) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)

	for i := range citations {
		g.Go(func() error {
			c := &citations[i]
			if c.StorageKey != "" {
				u, err := s.Resolve(gctx, tokens, c.StorageKey)
				if err != nil {
					slog.Warn("resolve citation asset", "storage_key", c.StorageKey, "error", err)
				} else {
					c.FileURL = u
				}
			}
			if c.Video != nil && c.Video.KeyframeStorageKey != "" {
				u, err := s.Resolve(gctx, tokens, c.Video.KeyframeStorageKey)
				if err != nil {
					slog.Warn("resolve keyframe asset", "storage_key", c.Video.KeyframeStorageKey, "error", err)
				} else {
					c.Video.KeyframeURL = u
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

func cacheKey(storageKey string) string {
	return "asset-url:" + storageKey
}
