package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis"

	"market-data-adapter/internal/logger"
)

// redisStore relies on Redis key expiry
type redisStore struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	res, err := client.WithContext(ctx).Ping().Result()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	logger.Debug(ctx, "Connected to redis", "addr", addr, "reply", res)

	return newCache("redis", &redisStore{client: client}, ttl), nil
}

func (r *redisStore) put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.WithContext(ctx).Set(key, value, ttl).Err()
}

func (r *redisStore) get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.WithContext(ctx).Get(key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *redisStore) close() error {
	return r.client.Close()
}
