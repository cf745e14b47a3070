package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finboard/internal/board"
	"finboard/internal/cache"
	"finboard/internal/cli"
	apphttp "finboard/internal/http"
	"finboard/internal/log"
	"finboard/internal/state"
	"finboard/internal/worker"
)

func main() {
	bootstrap := log.New(log.DefaultConfig())
	cli.LoadEnvFile(bootstrap)

	cfg := cli.LoadAndValidateConfig(bootstrap)
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentApp)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backend := cli.InitBackend(ctx, logger, cfg)

	dashboards := cache.NewLRUCache[*board.Dashboard](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(dashboards)
	cacheManager.StartCleanup(cfg.CacheTTL)

	now := time.Now()
	b := board.New(board.Options{
		Seed:      cfg.Seed(now),
		Store:     backend.Store,
		Publisher: backend.Publisher,
		Cache:     dashboards,
		Logger:    logger,
	})
	if _, err := b.Restore(ctx, cfg.StartPeriod(now)); err != nil {
		logger.Error("Failed to select initial period",
			log.NewFields().WithError(err, log.ErrorTypeConfiguration).WithOperation(log.OpStartup).ToSlice()...)
		os.Exit(1)
	}

	// Follow selections made on other instances.
	followDone := make(chan struct{})
	if backend.Subscriber != nil {
		follower := worker.NewFollowWorker(b, logger)
		go func() {
			defer close(followDone)
			err := backend.Subscriber.ConsumePeriodSelected(ctx, follower.HandlePeriodSelected)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Period event consumption stopped", log.FieldError, err)
			}
			applied, skipped := follower.Stats()
			logger.Info("Period follower stopped", "applied", applied, "skipped", skipped)
		}()
	} else {
		close(followDone)
	}

	var pinger state.Pinger
	if p, ok := backend.Store.(state.Pinger); ok {
		pinger = p
	}
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Board:              b,
		Logger:             logger,
		Pinger:             pinger,
		Historian:          backend.Store,
		CacheStats:         dashboards.Stats,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting finboard server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", cfg.AMQPEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		}
	}

	stop()
	ok := cli.GracefulShutdown(logger, cfg.ShutdownTimeout,
		srv.Shutdown,
		func(ctx context.Context) error {
			select {
			case <-followDone:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		func(context.Context) error { cacheManager.Stop(); return nil },
		func(context.Context) error { return backend.Close() },
	)
	if !ok {
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
