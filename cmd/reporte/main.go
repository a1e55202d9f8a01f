// Command reporte writes the rolling quarterly report of one clinic to disk
// using the configured backend.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tiempos/internal/cli"
	"tiempos/internal/core"
	"tiempos/internal/export"
	"tiempos/internal/log"
	"tiempos/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentReport)

	clinicCode := flag.String("clinic", "", "clinic code (required)")
	todayFlag := flag.String("today", "", "reference date YYYY-MM-DD (default today)")
	outDir := flag.String("out", ".", "output directory")
	scopeFlag := flag.String("scope", "", "total scope: window or all (default REPORT_TOTAL_SCOPE)")
	flag.Parse()

	code := strings.TrimSpace(*clinicCode)
	if code == "" {
		logger.Error("Missing -clinic flag")
		flag.Usage()
		os.Exit(2)
	}

	today := time.Now()
	if *todayFlag != "" {
		t, err := time.ParseInLocation("2006-01-02", *todayFlag, time.Local)
		if err != nil {
			logger.Error("Invalid -today flag", log.FieldError, err)
			os.Exit(2)
		}
		today = t
	}

	cfg := cli.LoadAndValidateConfig(logger)
	scope := cfg.TotalScope()
	if *scopeFlag != "" {
		s, err := core.ParseTotalScope(*scopeFlag)
		if err != nil {
			logger.Error("Invalid -scope flag", log.FieldError, err)
			os.Exit(2)
		}
		scope = s
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res := cli.InitBackend(ctx, logger, cfg)
	if res.Cleanup != nil {
		defer func() { _ = res.Cleanup() }()
	}

	if err := run(ctx, res.Backend, code, today, scope, *outDir, logger); err != nil {
		logger.Error("Report generation failed", log.FieldClinic, code, log.FieldError, err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, be store.Backend, code string, today time.Time, scope core.TotalScope, outDir string, logger *log.Logger) error {
	clinic, err := be.Clinic(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		clinic = core.Clinic{Code: code}
	} else if err != nil {
		return err
	}

	records, err := be.List(ctx, code)
	if err != nil {
		return err
	}

	report := core.BuildRollingReport(records, today, scope)
	path := filepath.Join(outDir, export.FileName(code))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := (export.PDFExporter{Author: "tiempos"}).Export(f, clinic, report); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("Report written", log.FieldClinic, code, log.FieldOperation, log.OpExport,
		"path", path, "records", len(records), "scope", scope.String())
	return nil
}
