// Package cache defines the TTL key/value contract used for short-lived
// credentials such as refresh and recovery tokens.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("cache: key not found")

// Store represents a simple TTL-based cache abstraction. A ttl <= 0 keeps the
// entry until it is deleted.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Flusher is implemented by stores that can drop every entry at once.
type Flusher interface {
	Flush(ctx context.Context) error
}
