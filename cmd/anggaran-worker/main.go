package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"anggaran/internal/backend"
	"anggaran/internal/cli"
	applog "anggaran/internal/log"
	"anggaran/internal/sheets"
	gsheet "anggaran/internal/sheets/google"
	memsheet "anggaran/internal/sheets/memory"
	"anggaran/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting anggaran-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	// The worker reads rows written by the server, so it needs the shared
	// SQLite file rather than a process-local store.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	if backendCfg.Type != backend.SQLiteBackend {
		logger.Warn("Worker running against a non-SQLite backend; only rows in this process will sync",
			"backend", backendCfg.Type)
	}
	be, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()
	if be.Publisher == nil {
		logger.Error("AMQP broker unreachable", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		os.Exit(1)
	}

	var journal sheets.Journal
	if cfg.JournalEnabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		journal = client
		logger.Info("Google Sheets journal initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		journal = memsheet.New()
		logger.Info("Google Sheets disabled - mirroring into memory")
	}

	syncWorker := worker.NewSyncWorker(be.Store, journal, cfg.SyncBatchSize)
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		// keep consuming; the scheduled resync retries
		logger.Error("Failed startup sync check", applog.FieldError, err)
	}

	scheduler := worker.NewResyncScheduler(syncWorker, cfg.ResyncSchedule)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("Failed to start resync scheduler", applog.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := be.Publisher.ConsumeTransactionSync(gctx, syncWorker.HandleSyncMessage)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		logger.Info("Shutting down worker...")
		return scheduler.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
