// Package cli holds the start-up and shutdown steps of cmd/finboard.
package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finboard/internal/backend"
	"finboard/internal/config"
	"finboard/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is not an
// error; a malformed one is reported.
func LoadEnvFile(logger *log.Logger) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to load .env file", log.FieldError, err)
	}
}

// SetupLogger builds the process logger at level and installs it as the
// slog default. An unknown level falls back to info with a warning.
func SetupLogger(level, component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	lvl, err := log.ParseLevel(level)
	cfg.Level = lvl
	logger := log.New(cfg)
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", log.FieldError, err)
	}
	return logger
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.NewFields().WithError(err, log.ErrorTypeConfiguration).WithOperation(log.OpStartup).ToSlice()...)
		os.Exit(1)
	}
	return cfg
}

// InitBackend opens the configured selection store and optional publisher,
// exiting the process on failure.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	bcfg, err := backend.FromAppConfig(cfg)
	if err == nil {
		var res *backend.BackendResult
		res, err = backend.NewFactory(logger).CreateBackend(ctx, bcfg)
		if err == nil {
			return res
		}
	}
	logger.Error("Failed to initialize backend",
		log.NewFields().WithError(err, log.ErrorTypeDatabase).WithOperation(log.OpStartup).ToSlice()...)
	os.Exit(1)
	return nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
	}()
	return ctx, cancel
}

// GracefulShutdown runs each step with one shared timeout, logging
// failures, and reports whether all of them finished in time.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, steps ...func(context.Context) error) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ok := true
	for _, step := range steps {
		if err := step(ctx); err != nil {
			ok = false
			logger.Error("Shutdown step failed",
				log.NewFields().WithError(err, log.ErrorTypeInternal).WithOperation(log.OpShutdown).ToSlice()...)
		}
	}
	if ctx.Err() != nil {
		logger.Warn("Shutdown timeout reached", log.FieldOperation, log.OpShutdown)
		return false
	}
	return ok
}
