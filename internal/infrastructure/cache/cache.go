package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/bakehouse-api/internal/config"
)

const defaultTTL = 5 * time.Minute

// Cache stores JSON-serializable values with a TTL. Used for dashboard
// aggregates and per-tenant tax profiles, both read far more often than
// they change.
type Cache interface {
	// GetJSON unmarshals the cached value into dest.
	// Returns (false, nil) on a cache miss.
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	// SetJSON marshals value and stores it under key.
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Delete removes a key.
	Delete(ctx context.Context, keys ...string) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache from config.
func NewRedisCache(cfg config.RedisConfig) Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &redisCache{client: client, ttl: defaultTTL}
}

func (c *redisCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *redisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

type noopCache struct{}

// NewNoopCache creates a cache that stores nothing. Used when Redis is
// disabled; callers always fall through to the database.
func NewNoopCache() Cache {
	return &noopCache{}
}

func (noopCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (noopCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (noopCache) Delete(ctx context.Context, keys ...string) error {
	return nil
}
