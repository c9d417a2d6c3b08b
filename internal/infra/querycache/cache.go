// Package querycache keeps the latest known value per logical resource key,
// de-duplicates concurrent fetches, and hosts the optimistic mutation
// primitive every write flow is built on.
//
// The cache is the single owner of the canonical "latest known" value per
// key. Keys must carry enough context to disambiguate (book id, search term,
// user identity), so a stale in-flight response for an old context can never
// overwrite the entry for a new one.
package querycache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"libris/config"
	"libris/internal/errors"

	"go.uber.org/fx"
	"golang.org/x/sync/singleflight"
)

// Params defines the required parameters
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

type entry struct {
	value     any
	stale     bool
	fetchedAt time.Time
}

// Cache is a key-addressed store of server-derived data.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	pending map[string][]*ticket

	group  singleflight.Group
	ttl    time.Duration
	logger *slog.Logger

	now func() time.Time
}

// New creates the cache.
func New(params Params) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		pending: make(map[string][]*ticket),
		ttl:     params.Config.Cache.TTL,
		logger:  params.Logger,
		now:     time.Now,
	}
}

// Put publishes a value for the key, marking it fresh.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{value: value, fetchedAt: c.now()}
}

// Invalidate marks entries stale so the next read refetches. Unknown keys are
// ignored.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if e, ok := c.entries[key]; ok {
			e.stale = true
		}
	}
}

// Peek returns the cached value regardless of freshness. The second result
// reports whether a value exists at all.
func (c *Cache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	return e.value, true
}

// fresh returns the cached value only when it is usable without a refetch.
func (c *Cache) fresh(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.stale {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.fetchedAt) > c.ttl {
		return nil, false
	}

	return e.value, true
}

// Fetch returns the fresh cached value for key, or fetches it. Concurrent
// callers for the same key while a fetch is in flight share the single
// request and receive the same resolved value.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.fresh(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return value, err
		}
		c.Put(key, value)

		return value, nil
	})
	if err != nil {
		var zero T

		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		var zero T

		return zero, errors.Errorf("querycache: unexpected value type for key %q", key)
	}

	return typed, nil
}
