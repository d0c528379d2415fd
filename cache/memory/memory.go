// Package memory implements cache.Store in process on top of go-cache.
package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/adeilh/gotrue-go/cache"
)

const defaultCleanupInterval = time.Minute

// Store keeps byte slices in memory. Values are copied on the way in and out.
type Store struct {
	items *gocache.Cache
}

type Option func(*options)

type options struct {
	cleanup time.Duration
}

// WithCleanupInterval sets how often expired entries are purged.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cleanup = d
		}
	}
}

func NewStore(opts ...Option) *Store {
	cfg := options{cleanup: defaultCleanupInterval}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Store{items: gocache.New(gocache.NoExpiration, cfg.cleanup)}
}

var (
	_ cache.Store   = (*Store)(nil)
	_ cache.Flusher = (*Store)(nil)
)

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	v, ok := s.items.Get(key)
	if !ok {
		return nil, cache.ErrNotFound
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, cache.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	s.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Delete removes key, returning cache.ErrNotFound when it was absent.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	if _, ok := s.items.Get(key); !ok {
		return cache.ErrNotFound
	}
	s.items.Delete(key)
	return nil
}

func (s *Store) Flush(ctx context.Context) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.items.Flush()
	return nil
}

// Len reports the number of entries, expired ones included until cleanup.
func (s *Store) Len() int { return s.items.ItemCount() }

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
