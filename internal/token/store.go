// Package token keeps short-lived, single-use credential tokens in Redis.
//
// Stored values are opaque blobs. Callers own serialization, which keeps store
// failures (ErrNotFound, ErrStoreFailure) apart from format errors raised once
// a blob has been read back.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound     = errors.New("token not found")
	ErrStoreFailure = errors.New("token store failure")
)

// Store is a key-value store with per-entry expiry
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete returns the number of removed entries (0 or 1)
	Delete(ctx context.Context, key string) (int64, error)
}

// RedisStore implements Store on top of plain Redis strings
type RedisStore struct {
	client redis.Cmdable
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the raw value stored under key
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrStoreFailure, key, err)
	}

	return value, nil
}

// Put stores value under key, replacing any previous value and its TTL
func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: put %s: ttl must be positive", ErrStoreFailure, key)
	}

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: put %s: %v", ErrStoreFailure, key, err)
	}

	return nil
}

// Delete removes key. A missing key is not an error here; it yields a count of 0.
func (s *RedisStore) Delete(ctx context.Context, key string) (int64, error) {
	count, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: delete %s: %v", ErrStoreFailure, key, err)
	}

	return count, nil
}
