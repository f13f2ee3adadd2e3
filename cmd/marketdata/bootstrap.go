package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"market-data-adapter/internal/adapter"
	"market-data-adapter/internal/adapter/adapterobs"
	"market-data-adapter/internal/cache"
	"market-data-adapter/internal/interfaces"
	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/store"
	"market-data-adapter/internal/trace"
	"market-data-adapter/internal/types"
	"market-data-adapter/internal/vendors"
)

// initializeSystem loads .env and starts the logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func shutdownSystem() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = trace.Shutdown(ctx)
}

// app holds the wired components for one command invocation.
type app struct {
	cfg     *store.Config
	cache   *cache.Cache
	adapter interfaces.DataAdapter
}

func (a *app) close() {
	if a.cache == nil {
		return
	}
	if err := a.cache.Close(); err != nil {
		logger.Warn(context.Background(), "Failed to close cache", "error", err)
	}
}

// newApp wires config, cache, vendor and adapter. policy, when non-empty,
// overrides both the -policy flag and the config.
func newApp(ctx context.Context, policy string) (*app, error) {
	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", *configPath)
		return nil, err
	}

	if policy == "" {
		policy = *policyOverride
	}
	if policy == "" {
		policy = cfg.Adapter.Policy
	}
	p, err := types.ParsePolicy(policy)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Backend, err)
	}

	v, err := vendor.New(cfg)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to build vendor: %w", err)
	}

	core := adapter.New(v, c,
		adapter.WithPolicy(p),
		adapter.WithDefaultLimit(cfg.Adapter.DefaultLimit),
	)

	logger.Debug(ctx, "Adapter ready",
		"provider", cfg.Vendor.Provider,
		"news_source", cfg.News.Source,
		"cache", c.Backend(),
		"policy", p.String(),
	)

	return &app{
		cfg:     cfg,
		cache:   c,
		adapter: adapterobs.Wrap(core),
	}, nil
}
