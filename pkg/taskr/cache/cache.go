// Package cache provides the fetch-or-compute memoization used by the task
// selector and aggregator. Values are stored JSON encoded so that every
// backend behaves the same and callers never share mutable state through it.
package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Cache is a key/value store with a backend-defined expiry window
type Cache interface {
	// Get returns the stored value and true, or false when absent or expired
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Observer is notified about hits and misses. The metrics package implements it.
type Observer interface {
	CacheHit(name string)
	CacheMiss(name string)
}

// Fetch returns the cached value under key, or computes, stores and returns
// it. Backend errors never fail the call: reads fall through to compute and
// failed writes are logged.
func Fetch[T any](ctx context.Context, c Cache, key string, compute func() (T, error)) (T, error) {
	return FetchObserved(ctx, c, key, "", nil, nil, compute)
}

// FetchObserved is Fetch with hit/miss reporting and logging
func FetchObserved[T any](ctx context.Context, c Cache, key, name string, obs Observer, log logrus.FieldLogger, compute func() (T, error)) (T, error) {
	if c == nil {
		return compute()
	}

	raw, ok, err := c.Get(ctx, key)
	if err != nil && log != nil {
		log.WithError(err).WithField("key", key).Warn("cache read failed")
	}
	if ok {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			if obs != nil {
				obs.CacheHit(name)
			}
			return value, nil
		} else if log != nil {
			log.WithError(err).WithField("key", key).Warn("discarding undecodable cache entry")
		}
	}
	if obs != nil {
		obs.CacheMiss(name)
	}

	value, err := compute()
	if err != nil {
		return value, err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return value, fmt.Errorf("encode cache value: %w", err)
	}
	if err := c.Set(ctx, key, encoded); err != nil && log != nil {
		log.WithError(err).WithField("key", key).Warn("cache write failed")
	}
	return value, nil
}

// Noop never stores anything, so every Fetch recomputes
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte) error         { return nil }
func (Noop) Delete(context.Context, string) error              { return nil }
