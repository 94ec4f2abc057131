// Package querycache memoises telemetry API responses for a fixed TTL so that
// panels and cards sharing a query key share one upstream call.
package querycache

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// LookupObserver is notified of every cache lookup.
type LookupObserver interface {
	CacheLookup(hit bool)
}

// Cache provides TTL caching of fetch results keyed by query.
type Cache struct {
	cache    *cache.Cache
	group    singleflight.Group
	observer LookupObserver
}

// New creates a new query cache. Entries live for ttl and expired entries are
// purged every cleanupInterval.
func New(ttl, cleanupInterval time.Duration, observer LookupObserver) *Cache {
	return &Cache{
		cache:    cache.New(ttl, cleanupInterval),
		observer: observer,
	}
}

type freshKey struct{}

// Fresh marks ctx so that Get skips the cache lookup and always refetches.
// The fetched value is still stored for later callers.
func Fresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshKey{}, true)
}

func isFresh(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshKey{}).(bool)
	return fresh
}

// Get returns the cached value for key. On a miss it calls fetch once, even
// when several callers miss the same key concurrently, and caches the result.
// Errors are never cached.
//
// The shared fetch runs detached from the caller's cancellation, so one
// caller giving up does not fail the others waiting on the same key. Each
// caller still returns as soon as its own ctx is done.
func Get[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if !isFresh(ctx) {
		if v, found := c.cache.Get(key); found {
			if res, ok := v.(T); ok {
				c.observe(true)
				return res, nil
			}
		}
	}
	c.observe(false)

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		res, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, res)
		return res, nil
	})

	var r singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case r = <-ch:
	}
	if r.Err != nil {
		return zero, r.Err
	}
	res, ok := r.Val.(T)
	if !ok {
		return zero, fmt.Errorf("cached value for %q has type %T", key, r.Val)
	}
	return res, nil
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.cache.Flush()
}

// ItemCount returns the number of entries, including expired ones not yet
// purged.
func (c *Cache) ItemCount() int {
	return c.cache.ItemCount()
}

func (c *Cache) observe(hit bool) {
	if c.observer != nil {
		c.observer.CacheLookup(hit)
	}
}
