package adapter

import (
	"context"
	"errors"
	"fmt"
	"quizbox/internal/cache"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	resetScanCount = 100
	storageTimeout = 3 * time.Second
)

// RedisSessionStorage is a fiber.Storage backed by Redis, used by the fiber
// session store to keep session data server side.
type RedisSessionStorage struct {
	client redis.UniversalClient
}

var _ fiber.Storage = (*RedisSessionStorage)(nil)

// NewRedisSessionStorage creates a session storage on client. Close closes
// the client, so pass a client owned by the storage or never call Close.
func NewRedisSessionStorage(client redis.UniversalClient) *RedisSessionStorage {
	return &RedisSessionStorage{client: client}
}

// Get returns (nil, nil) for an unknown or expired session, as fiber expects.
func (s *RedisSessionStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, cache.SessionKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", key, err)
	}
	return val, nil
}

// Set ignores empty keys and values. A zero exp keeps the session forever.
func (s *RedisSessionStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	if err := s.client.Set(ctx, cache.SessionKey(key), val, exp).Err(); err != nil {
		return fmt.Errorf("failed to save session %s: %w", key, err)
	}
	return nil
}

func (s *RedisSessionStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	if err := s.client.Del(ctx, cache.SessionKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", key, err)
	}
	return nil
}

// Reset deletes every stored session. Keys outside the session namespace are
// left alone.
func (s *RedisSessionStorage) Reset() error {
	ctx := context.Background()
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, cache.SessionKeyPattern(), resetScanCount).Result()
		if err != nil {
			return fmt.Errorf("failed to scan sessions: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete sessions: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (s *RedisSessionStorage) Close() error {
	return s.client.Close()
}
