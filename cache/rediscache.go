package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend is an optional FeedCache implementation for
// deployments that run more than one planner process against the
// same live feeds — an in-process TTLCache can't be shared across
// processes. Grounded on drobiAlex-wabus-backend's RedisCache
// (gzip-compressed blobs, same Set/Get shape); only wired up when
// TRANSIT_REDIS_ADDR is configured, per SPEC_FULL's domain-stack
// section.
type RedisBackend struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisBackend(addr string, log *slog.Logger) *RedisBackend {
	if log == nil {
		log = slog.Default()
	}
	return &RedisBackend{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		log:    log,
	}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool) {
	compressed, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn("redis feed cache get failed", "key", key, "error", err)
		}
		return nil, false
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		r.log.Warn("redis feed cache decompress failed", "key", key, "error", err)
		return nil, false
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		r.log.Warn("redis feed cache read failed", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(value); err != nil {
		r.log.Warn("redis feed cache compress failed", "key", key, "error", err)
		return
	}
	if err := zw.Close(); err != nil {
		r.log.Warn("redis feed cache compress failed", "key", key, "error", err)
		return
	}

	if err := r.client.Set(ctx, key, buf.Bytes(), ttl).Err(); err != nil {
		r.log.Warn("redis feed cache set failed", "key", key, "error", err)
	}
}
