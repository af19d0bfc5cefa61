package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/application/tracking"
	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/infrastructure/config"
	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/infrastructure/logger"
	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/infrastructure/mainfreight"
	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/infrastructure/odoo"
	"github.com/trvlprogrammer/odoo-mainfreight-tacking/internal/infrastructure/runlog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tracking-sync:", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()
	log = log.With(zap.String("run_id", uuid.NewString()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting tracking-sync",
		zap.String("odoo_url", cfg.Odoo.URL),
		zap.String("odoo_database", cfg.Odoo.Database),
		zap.Int("max_pickings", cfg.Job.MaxPickings),
		zap.Int64s("company_ids", cfg.Job.CompanyIDs),
	)

	// Run-log store: SQLite always, Google Sheets when enabled.
	db, err := runlog.Open(cfg.RunLog.Path)
	if err != nil {
		return fmt.Errorf("open run-log database: %w", err)
	}
	sqliteSink, err := runlog.NewSQLiteSink(db)
	if err != nil {
		return fmt.Errorf("initialize run-log store: %w", err)
	}

	var secondaries []runlog.Sink
	if cfg.Sheets.Enabled {
		sheetsSink, err := runlog.NewSheetsSink(ctx, runlog.SheetsConfig{
			CredentialsFile: cfg.Sheets.CredentialsFile,
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			Tab:             cfg.Sheets.Tab,
			BatchSize:       cfg.Sheets.BatchSize,
		})
		if err != nil {
			// The spreadsheet mirror is best effort: keep going on the
			// durable store alone.
			log.Warn("sheets sink unavailable", zap.Error(err))
		} else {
			secondaries = append(secondaries, sheetsSink)
		}
	}
	sink := runlog.NewFanoutSink(log, sqliteSink, secondaries...)
	defer func() {
		if err := sink.Close(); err != nil {
			log.Error("closing run-log sinks", zap.Error(err))
		}
	}()

	gateway, err := odoo.NewClient(odoo.Config{
		URL:      cfg.Odoo.URL,
		Database: cfg.Odoo.Database,
		User:     cfg.Odoo.User,
		Password: cfg.Odoo.Password,
	}, nil)
	if err != nil {
		return fmt.Errorf("initialize odoo client: %w", err)
	}

	tracker := mainfreight.NewClient(mainfreight.Config{
		BaseURL: cfg.Mainfreight.BaseURL,
		APIKey:  cfg.Mainfreight.APIKey,
		Timeout: cfg.Mainfreight.Timeout,
	})

	pipeline := tracking.NewPipeline(gateway, tracker, sink, log, tracking.Options{
		CompanyIDs:    cfg.Job.CompanyIDs,
		MaxCandidates: cfg.Job.MaxPickings,
	})

	if _, err := pipeline.Run(ctx); err != nil {
		return fmt.Errorf("reconciliation run: %w", err)
	}
	return nil
}
