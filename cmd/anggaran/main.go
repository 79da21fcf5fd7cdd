package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"anggaran/internal/auth"
	"anggaran/internal/backend"
	"anggaran/internal/cli"
	apphttp "anggaran/internal/http"
	applog "anggaran/internal/log"
	"anggaran/internal/objectstore"
	"anggaran/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	allocator, err := cli.LoadAllocator(cfg)
	if err != nil {
		logger.Error("Failed to load budget policy", applog.FieldError, err, "path", cfg.BudgetPolicyFile)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	be, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	var mediaDir string
	if local, ok := be.Objects.(*objectstore.LocalStore); ok {
		mediaDir = local.Dir()
	}

	sessions := auth.NewService(be.Store, cfg.SessionTTL)
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Auth:               sessions,
		Ledger:             services.NewLedgerService(be.Store, be.Publisher),
		Household:          services.NewHouseholdService(be.Store, allocator),
		Profiles:           services.NewProfileService(be.Store, be.Objects),
		Ready:              be.Store.Ping,
		MediaDir:           mediaDir,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Location:           cfg.Location(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting anggaran server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"object_store", cfg.ObjectStore,
			"amqp_enabled", be.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		events, cancel := sessions.Subscribe()
		defer cancel()
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-events:
				logger.WithComponent(applog.ComponentAuth).Info("Session changed", "type", ev.Type, applog.FieldUserID, ev.UserID)
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
