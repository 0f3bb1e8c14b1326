package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter is a fixed-window counter shared by every instance that
// points at the same Redis.
type RedisCounter struct {
	client   *redis.Client
	prefix   string
	limit    int64
	duration time.Duration
}

// NewRedis returns a counter allowing limit hits per duration per key.
func NewRedis(client *redis.Client, prefix string, limit int, duration time.Duration) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix, limit: int64(limit), duration: duration}
}

func (c *RedisCounter) Hit(ctx context.Context, key string) (bool, error) {
	k := c.prefix + key
	n, err := c.client.Incr(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.client.Expire(ctx, k, c.duration).Err(); err != nil {
			return false, err
		}
	}
	return n <= c.limit, nil
}

func (c *RedisCounter) Reset(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
