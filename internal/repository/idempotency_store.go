package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore backs the Idempotency-Key middleware with Redis.
type RedisIdempotencyStore struct {
	client *redis.Client
}

func NewRedisIdempotencyStore(url string) (*RedisIdempotencyStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisIdempotencyStore{client: redis.NewClient(opts)}, nil
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}
