package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"market-data-adapter/internal/logger"
	"market-data-adapter/internal/scheduler"
	"market-data-adapter/internal/server"
	"market-data-adapter/internal/types"
)

type serveCmd struct {
	addr string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the adapter over HTTP" }
func (*serveCmd) Usage() string {
	return `serve [-addr :8080]

  Runs the HTTP API with the propagate policy and the cache cleanup job.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address (defaults to server.addr from config)")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// vendor failures must surface as 502 rather than empty bodies
	a, err := newApp(ctx, types.PolicyPropagate.String())
	if err != nil {
		return fail(err)
	}
	defer a.close()

	addr := c.addr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	srv := server.New(server.Config{
		Addr:         addr,
		ReadTimeout:  time.Duration(a.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(a.cfg.Server.WriteTimeoutSeconds) * time.Second,
		CORSOrigins:  a.cfg.Server.CORSOrigins,
		Adapter:      a.adapter,
		Cache:        a.cache,
	})

	sched := scheduler.New()
	if err := sched.AddJob(a.cfg.Scheduler.CleanupCron, scheduler.NewCacheCleanupJob(a.cache)); err != nil {
		return fail(fmt.Errorf("invalid scheduler.cleanup_cron: %w", err))
	}
	sched.Start()
	defer sched.Stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Start()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "HTTP server failed", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
