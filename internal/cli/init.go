// Package cli holds the start-up steps shared by cmd/anggaran and
// cmd/anggaran-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"anggaran/internal/budget"
	"anggaran/internal/config"
	applog "anggaran/internal/log"
)

// LoadEnvFile loads .env for local development. A missing file is ignored.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger at LOG_LEVEL and installs it as the
// slog default.
func SetupLogger(component string) *applog.Logger {
	level, err := applog.ParseLevel(os.Getenv("LOG_LEVEL"))
	logger := applog.New(applog.Config{Level: level, Component: component, Output: os.Stdout})
	if err != nil {
		logger.Warn("Unknown LOG_LEVEL, using info", applog.FieldError, err)
	}
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig exits the process when the configuration is invalid.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// LoadAllocator builds the allocator from BUDGET_POLICY_FILE, or the default
// household policy when no file is configured.
func LoadAllocator(cfg *config.Config) (*budget.Allocator, error) {
	policy := budget.DefaultPolicy()
	if cfg.BudgetPolicyFile != "" {
		p, err := budget.LoadPolicyFile(cfg.BudgetPolicyFile)
		if err != nil {
			return nil, fmt.Errorf("load budget policy: %w", err)
		}
		policy = p
	}
	return budget.NewAllocator(policy)
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
	}()
	return ctx, cancel
}
