// Package cache stores rendered leaderboards in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyPrefix namespaces leaderboard keys.
const KeyPrefix = "leaderboard:"

// Cache is a JSON value cache.
type Cache interface {
	// Get decodes the value stored under key into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)

	// Set stores v under key for ttl.
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error

	// Delete removes keys.
	Delete(ctx context.Context, keys ...string) error
}

type redisCache struct {
	client redis.UniversalClient
	logger *zap.SugaredLogger
}

// NewRedis creates a cache backed by redis.
func NewRedis(client redis.UniversalClient, logger *zap.SugaredLogger) Cache {
	return &redisCache{client: client, logger: logger}
}

func (c *redisCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warnw("corrupt leaderboard cache entry", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, KeyPrefix+key, raw, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = KeyPrefix + k
	}
	return c.client.Del(ctx, prefixed...).Err()
}

type nopCache struct{}

// Nop returns a cache that never stores anything.
func Nop() Cache {
	return nopCache{}
}

func (nopCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }

func (nopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (nopCache) Delete(context.Context, ...string) error { return nil }
