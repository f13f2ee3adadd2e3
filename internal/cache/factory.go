package cache

import (
	"context"
	"fmt"
	"os"

	"market-data-adapter/internal/store"
)

// New creates the backend selected by cfg.Cache.Backend
func New(ctx context.Context, cfg *store.Config) (*Cache, error) {
	c := cfg.Cache
	switch c.Backend {
	case "memory", "":
		return NewMemory(c.TTL), nil
	case "file":
		return NewFile(c.Dir, c.TTL)
	case "sqlite":
		return NewSQLite(ctx, c.SQLitePath, c.TTL)
	case "redis":
		return NewRedis(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB, c.TTL)
	case "postgres":
		dsn := os.Getenv(c.PostgresDSNEnv)
		if dsn == "" {
			return nil, fmt.Errorf("%s is not set", c.PostgresDSNEnv)
		}
		return NewPostgres(ctx, dsn, c.TTL)
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", c.Backend)
	}
}
