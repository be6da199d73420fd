package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is missing or expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache is a namespaced key/value store with per-key expiry.
// Implementations: Redis for shared deployments, Memory for single-process runs and tests.
type Cache interface {
	Set(ctx context.Context, namespace, key string, value string, ttl time.Duration) error
	// SetNX stores value only when key is absent and reports whether it did.
	SetNX(ctx context.Context, namespace, key string, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, namespace, key string) (string, error)
	// Delete reports whether the key existed.
	Delete(ctx context.Context, namespace, key string) (bool, error)
	GetTTL(ctx context.Context, namespace, key string) (time.Duration, error)
	IncrWithExpire(ctx context.Context, namespace, key string, window time.Duration) (int64, error)
	Close() error
}

func fullKey(namespace, key string) string {
	return namespace + ":" + key
}
