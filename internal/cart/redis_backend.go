package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-cart/pkg/redis"
)

type redisStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	CartKey(sessionID string) string
}

// RedisBackend stores snapshots under sf:cart:<session>. Every save refreshes
// the TTL, so a cart expires ttl after its last change.
type RedisBackend struct {
	client redisStore
	ttl    time.Duration
}

func NewRedisBackend(client redisStore, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

func (r *RedisBackend) Name() string { return "redis" }

func (r *RedisBackend) Get(ctx context.Context, sessionID string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.client.CartKey(sessionID))
	if redis.IsNil(err) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return []byte(val), nil
}

func (r *RedisBackend) Put(ctx context.Context, sessionID string, data []byte) error {
	if err := r.client.Set(ctx, r.client.CartKey(sessionID), data, r.ttl); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.client.CartKey(sessionID))
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
