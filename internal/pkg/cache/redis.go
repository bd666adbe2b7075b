// Package cache provides a small read-cache port with a Redis
// implementation. The query layer uses it to avoid re-reading immutable
// records; it is always optional — a nil Cache simply disables caching.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get returns the cached value, or "" when the key is absent.
	// A miss is not an error.
	Get(ctx context.Context, key string) (string, error)
	GenerateKey(kind, id string) string
}

type redisCache struct {
	client    *redis.Client
	namespace string
}

// NewRedisCache connects to Redis at addr. namespace prefixes every key so
// several deployments can share one Redis instance.
func NewRedisCache(addr, namespace string) Cache {
	return &redisCache{
		client:    redis.NewClient(&redis.Options{Addr: addr}),
		namespace: namespace,
	}
}

func (r redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r redisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r redisCache) GenerateKey(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", r.namespace, kind, id)
}
