package store

import (
	"context"
	"fmt"

	"go-restaurant-sync/internal/config"
)

// Open builds the store named by cfg.StoreDriver. The returned func releases
// it.
func Open(ctx context.Context, cfg *config.Config) (Store, func() error, error) {
	switch cfg.StoreDriver {
	case "remote", "":
		return NewRemote(cfg.SyncURL), func() error { return nil }, nil
	case "redis":
		r, err := NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	case "memory":
		return NewMemory(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
