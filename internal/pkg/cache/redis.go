package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client redis.UniversalClient // works with both single and cluster
}

func NewRedis(addrs []string, password string, useCluster bool) *Redis {
	var rdb redis.UniversalClient

	if useCluster && len(addrs) > 1 {
		rdb = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    addrs,
			Password: password,
		})
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:     addrs[0],
			Password: password,
			DB:       0,
		})
	}

	return &Redis{client: rdb}
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Set(ctx context.Context, namespace, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, fullKey(namespace, key), value, ttl).Err()
}

func (c *Redis) SetNX(ctx context.Context, namespace, key string, value string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, fullKey(namespace, key), value, ttl).Result()
}

func (c *Redis) Get(ctx context.Context, namespace, key string) (string, error) {
	v, err := c.client.Get(ctx, fullKey(namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (c *Redis) Delete(ctx context.Context, namespace, key string) (bool, error) {
	n, err := c.client.Del(ctx, fullKey(namespace, key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *Redis) GetTTL(ctx context.Context, namespace, key string) (time.Duration, error) {
	return c.client.TTL(ctx, fullKey(namespace, key)).Result()
}

func (c *Redis) IncrWithExpire(ctx context.Context, namespace, key string, window time.Duration) (int64, error) {
	countKey := fullKey(namespace, key)

	cnt, err := c.client.Incr(ctx, countKey).Result()
	if err != nil {
		return 0, err
	}

	// If it's the first time the key is incremented, set its TTL
	if cnt == 1 {
		_ = c.client.Expire(ctx, countKey, window).Err()
	}

	return cnt, nil
}

func (c *Redis) Close() error {
	return c.client.Close()
}
