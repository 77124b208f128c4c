package narrative

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultCacheTTL bounds how long a story is reused for an identical round.
const DefaultCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "climatechance:narrative:"

// Cache stores stories by key. A miss returns ok == false and no error.
type Cache interface {
	Get(ctx context.Context, key string) (text string, ok bool, err error)
	Set(ctx context.Context, key, text string) error
}

// RedisCache is a Cache backed by Redis string keys with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	text, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, text string) error {
	return c.client.Set(ctx, key, text, c.ttl).Err()
}

// Cached wraps a Narrator so identical rounds reuse one story. Cache errors
// are logged and otherwise ignored.
type Cached struct {
	next   Narrator
	cache  Cache
	logger *slog.Logger
}

func NewCached(next Narrator, cache Cache, logger *slog.Logger) *Cached {
	return &Cached{next: next, cache: cache, logger: logger}
}

func (c *Cached) Narrate(ctx context.Context, req Request) (string, error) {
	key, err := cacheKey(req)
	if err != nil {
		return c.next.Narrate(ctx, req)
	}

	text, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("narrative cache read failed", "error", err)
	}
	if ok {
		return text, nil
	}

	text, err = c.next.Narrate(ctx, req)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, text); err != nil {
		c.logger.Warn("narrative cache write failed", "error", err)
	}
	return text, nil
}

func cacheKey(req Request) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return cacheKeyPrefix + hex.EncodeToString(sum[:]), nil
}
