package cache

import (
	"context"
	"time"
)

// FeedCache is the interface the live-feed fetcher caches raw feed
// bytes behind. The default backend is an in-process TTLCache; when
// TRANSIT_REDIS_ADDR is set, realtime.NewFeedCache returns RedisBackend
// instead, so multiple planner instances can share one fetch cache.
type FeedCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// MemoryFeedCache adapts TTLCache[[]byte] to FeedCache.
type MemoryFeedCache struct {
	cache *TTLCache[[]byte]
}

func NewMemoryFeedCache(defaultTTL time.Duration, maxSize int, cleanupInterval time.Duration) *MemoryFeedCache {
	return &MemoryFeedCache{cache: NewTTLCache[[]byte](defaultTTL, maxSize, cleanupInterval)}
}

func (m *MemoryFeedCache) Get(_ context.Context, key string) ([]byte, bool) {
	return m.cache.Get(key)
}

func (m *MemoryFeedCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.cache.SetTTL(key, value, ttl)
}

func (m *MemoryFeedCache) Stats() Stats {
	return m.cache.Stats()
}
