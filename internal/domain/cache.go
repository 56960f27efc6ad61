package domain

import (
	"context"
	"time"
)

// CacheError is a sentinel error raised by Cache implementations.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned by Get when the key does not exist or has expired.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key/value port used for state that lives beside the user
// session, such as random play progress. Values are opaque strings; callers
// encode them.
type Cache interface {
	// Get returns ErrCacheMiss for an unknown key.
	Get(ctx context.Context, key string) (string, error)
	// Set overwrites key. A zero expiration keeps it until deleted.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	// Expire resets the expiration of an existing key. It returns ErrCacheMiss
	// when the key does not exist.
	Expire(ctx context.Context, key string, expiration time.Duration) error
	// Delete is a no-op for an unknown key.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
