package cachemanager

import (
	"context"
	"time"
)

// Loader memoizes load, keying each result by the input it was built from.
type Loader[K ~string, V any, I any] struct {
	cache CacheManager[K, V]
	key   func(I) K
	load  func(ctx context.Context, input I) (V, error)
	ttl   time.Duration
}

// NewLoader stores results in cache for ttl. A zero ttl uses the cache's
// default expiration.
func NewLoader[K ~string, V any, I any](
	cache CacheManager[K, V],
	key func(I) K,
	load func(ctx context.Context, input I) (V, error),
	ttl time.Duration,
) *Loader[K, V, I] {
	return &Loader[K, V, I]{cache: cache, key: key, load: load, ttl: ttl}
}

// Get returns the result for input, calling load only on a miss. Failed
// loads are not cached.
func (l *Loader[K, V, I]) Get(ctx context.Context, input I) (V, error) {
	k := l.key(input)
	if value, ok := l.cache.Get(ctx, k); ok {
		return value, nil
	}
	value, err := l.load(ctx, input)
	if err != nil {
		return value, err
	}
	l.cache.Set(ctx, k, value, l.ttl)
	return value, nil
}

// Invalidate drops every cached result.
func (l *Loader[K, V, I]) Invalidate(ctx context.Context) {
	l.cache.Flush(ctx)
}

// Len returns the number of cached results.
func (l *Loader[K, V, I]) Len() int {
	return l.cache.Len()
}
