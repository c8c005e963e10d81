package main

import (
	"context"
	"errors"
	"os"
	"time"

	"retailtracker/internal/amqp"
	"retailtracker/internal/cli"
	applog "retailtracker/internal/log"
	"retailtracker/internal/sheets"
	gsheet "retailtracker/internal/sheets/google"
	"retailtracker/internal/storage"
	"retailtracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting export-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	// Events carry ids only; the current row is read from the shared database
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	var exporter sheets.LedgerExporter = sheets.LogExporter{}
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
			os.Exit(1)
		}
		headerCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := client.EnsureHeader(headerCtx); err != nil {
			// Not fatal; appends still land below whatever row 1 holds
			logger.Error("Failed to ensure ledger header", applog.FieldError, err)
		}
		cancel()
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, logging ledger rows")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(repo, exporter)

	ctx, stop, done := cli.GracefulShutdown(logger, 30*time.Second, nil)
	defer stop()

	if err := amqpClient.ConsumeEntryEvents(ctx, exportWorker.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		stop()
		<-done
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
