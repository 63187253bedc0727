package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Cache is the read-model cache contract used by the read repositories.
type Cache[T any] interface {
	Get(ctx context.Context, key string) (*T, bool)
	Set(ctx context.Context, key string, value *T)
	Delete(ctx context.Context, keys ...string)
}

// NewCache returns a Redis-backed cache, or a NopCache when client is nil so
// the service can run without Redis.
func NewCache[T any](client *goredis.Client, ttl time.Duration) Cache[T] {
	if client == nil {
		return NopCache[T]{}
	}
	return NewViewCache[T](client, ttl)
}

// ViewCache is a generic JSON-backed Redis cache for read model projections.
// Bind it to a specific view type T; each instance holds a Redis client and an
// optional TTL (pass 0 for keys that should not expire).
type ViewCache[T any] struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewViewCache creates a ViewCache backed by the provided Redis client.
func NewViewCache[T any](client *goredis.Client, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, ttl: ttl}
}

// Get retrieves and unmarshals a value from Redis.
// Returns (nil, false) on any miss or deserialisation error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			log.Printf("ViewCache: read error for key %s: %v", key, err)
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// Set marshals value and stores it in Redis under key. A failed write is
// logged and otherwise ignored.
func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("ViewCache: marshal error for key %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("ViewCache: write error for key %s: %v", key, err)
	}
}

// Delete removes keys from Redis.
func (c *ViewCache[T]) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("ViewCache: delete error for keys %v: %v", keys, err)
	}
}

// NopCache never stores anything; every Get is a miss.
type NopCache[T any] struct{}

func (NopCache[T]) Get(context.Context, string) (*T, bool) { return nil, false }
func (NopCache[T]) Set(context.Context, string, *T)        {}
func (NopCache[T]) Delete(context.Context, ...string)      {}
