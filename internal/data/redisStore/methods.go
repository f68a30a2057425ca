package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	return count > 0, err
}

func (s *Store) ListPush(ctx context.Context, key string, value interface{}) error {
	return s.client.RPush(ctx, key, value).Err()
}

// ListTrimTail keeps only the newest max entries of the list.
func (s *Store) ListTrimTail(ctx context.Context, key string, max int) error {
	return s.client.LTrim(ctx, key, int64(-max), -1).Err()
}

func (s *Store) ListGetAll(ctx context.Context, key string) ([]string, error) {
	return s.client.LRange(ctx, key, 0, -1).Result()
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}
