package cache

import (
	"context"
	"fmt"

	"github.com/mikepea/taskr/pkg/taskr/config"
)

// New builds the cache selected by cfg. The returned close function is never nil.
func New(ctx context.Context, cfg *config.Config) (Cache, func() error, error) {
	noClose := func() error { return nil }

	if !cfg.CacheEnabled() {
		return Noop{}, noClose, nil
	}

	switch cfg.CacheBackend {
	case config.CacheMemory:
		return NewMemory(cfg.CacheSize, cfg.CacheTTL()), noClose, nil
	case config.CacheRedis:
		r, err := NewRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.CacheTTL())
		if err != nil {
			return nil, noClose, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return r, r.Close, nil
	default:
		return Noop{}, noClose, nil
	}
}
