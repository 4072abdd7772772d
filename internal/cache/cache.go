// Package cache is a Redis cache-aside layer for feed and leaderboard reads.
// A Cache built without a reachable Redis is valid and every call is a no-op.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"missionhub/pkg/logger"
)

const keyPrefix = "missionhub:"

// Well-known keys
const (
	FeedKey        = "feed"
	LeaderboardKey = "leaderboard"
)

type Cache struct {
	rdb *redis.Client
}

// New connects to redisURL. An empty URL, a bad URL or a failed ping all
// yield a disabled cache rather than an error.
func New(ctx context.Context, redisURL string) *Cache {
	if redisURL == "" {
		logger.Info("redis: no URL configured, caching disabled")
		return &Cache{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logger.Warnf("redis: invalid URL, caching disabled: %v", err)
		return &Cache{}
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warnf("redis: connection failed, caching disabled: %v", err)
		_ = rdb.Close()
		return &Cache{}
	}

	logger.Info("redis: connected, caching enabled")
	return &Cache{rdb: rdb}
}

// NewWithClient wraps an existing client; nil disables the cache
func NewWithClient(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// GetJSON decodes the cached value into dest and reports whether it was found
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	data, err := c.rdb.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if !c.Enabled() || ttl <= 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, keyPrefix+key, b, ttl).Err()
}

// Invalidate removes keys
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}
	return c.rdb.Del(ctx, full...).Err()
}

// InvalidatePrefix removes every key starting with prefix
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if !c.Enabled() {
		return nil
	}
	var keys []string
	iter := c.rdb.Scan(ctx, 0, keyPrefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan %s: %w", prefix, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Ping is used by the health endpoint. A disabled cache is healthy.
func (c *Cache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.rdb.Close()
}

// LeaderboardPageKey scopes a cached leaderboard page
func LeaderboardPageKey(limit, offset int) string {
	return fmt.Sprintf("%s:%d:%d", LeaderboardKey, limit, offset)
}

// FeedLimitKey scopes a cached feed by its entry limit
func FeedLimitKey(limit int) string {
	return fmt.Sprintf("%s:%d", FeedKey, limit)
}
