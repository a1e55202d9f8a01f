package main

import (
	"context"
	"errors"
	"os"
	"time"

	"tiempos/internal/amqp"
	"tiempos/internal/cli"
	"tiempos/internal/config"
	"tiempos/internal/log"
	gsheet "tiempos/internal/sheets/google"
	"tiempos/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting tiempos-worker")

	cfg := config.Load()
	if err := cfg.ValidateMirror(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx := context.Background()
	mirror, err := gsheet.NewMirror(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", log.FieldComponent, log.ComponentSheets, log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldComponent, log.ComponentAMQP, log.FieldError, err)
		os.Exit(1)
	}

	mw := worker.NewMirrorWorker(mirror)
	runCtx, stop, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		processed, failed := mw.Counts()
		logger.Info("Shutting down worker", "processed", processed, "failed", failed)
	})

	// The worker exits when the broker connection ends; the supervisor
	// restarts it.
	err = amqpClient.ConsumeRecordEvents(runCtx, mw.Handle)
	stop()
	<-done
	if cerr := amqpClient.Close(); cerr != nil {
		logger.Warn("AMQP close failed", log.FieldError, cerr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
