package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements the fixed window with INCR + EXPIRE so the count is
// shared and atomic across horizontally scaled instances.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Check(ctx context.Context, key string, limit int, window time.Duration) (Result, error) {
	k := s.prefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	// set the window TTL only on first increment so the window stays fixed
	pipe.ExpireNX(ctx, k, window)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("ratelimit check %q: %w", key, err)
	}

	resetAt := time.Now().Add(ttl.Val())
	count := int(incr.Val())
	if count > limit {
		return Result{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	return Result{Allowed: true, Remaining: limit - count, ResetAt: resetAt}, nil
}
