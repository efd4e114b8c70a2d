package news

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"soulthread/internal/domain"
	"soulthread/internal/ports"
)

// RedisCache stores provider results as JSON blobs with a fixed TTL.
// Cache failures only cost a refetch, so every error degrades silently.
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.NewsCache = (*RedisCache)(nil)

// NewRedisCache connects a cache client; returns nil when addr is empty so
// callers can pass the result straight through as a disabled cache.
func NewRedisCache(addr string, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if addr == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns cached items for key, if present and decodable.
func (c *RedisCache) Get(ctx context.Context, key string) ([]domain.NewsItem, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var items []domain.NewsItem
	if err := json.Unmarshal(raw, &items); err != nil {
		c.logger.Warn("cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return items, true
}

// Put stores items under key for the configured TTL.
func (c *RedisCache) Put(ctx context.Context, key string, items []domain.NewsItem) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(items)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
