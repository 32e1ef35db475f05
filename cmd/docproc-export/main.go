package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/scandesk/docproc/internal/export"
	"github.com/scandesk/docproc/internal/store"
)

func main() {
	fs := ff.NewFlagSet("docproc-export")
	var (
		dbDSN   = fs.StringLong("db", "", "results store DSN (sqlite path or postgres:// URL, required)")
		out     = fs.StringLong("out", "documents.xlsx", "output XLSX file path")
		fromStr = fs.StringLong("from", "", "from date YYYY-MM-DD")
		toStr   = fs.StringLong("to", "", "to date YYYY-MM-DD")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("DOCPROC"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *dbDSN == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --db is required")
		os.Exit(1)
	}

	var from, to *time.Time
	if *fromStr != "" {
		parsed, err := time.Parse("2006-01-02", *fromStr)
		if err != nil {
			logger.Error("invalid --from date, use YYYY-MM-DD", "value", *fromStr, "error", err)
			os.Exit(1)
		}
		from = &parsed
	}
	if *toStr != "" {
		parsed, err := time.Parse("2006-01-02", *toStr)
		if err != nil {
			logger.Error("invalid --to date, use YYYY-MM-DD", "value", *toStr, "error", err)
			os.Exit(1)
		}
		to = &parsed
	}

	ctx := context.Background()

	st, err := store.Open(ctx, *dbDSN, logger)
	if err != nil {
		logger.Error("open results store", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("close results store", "error", cerr)
		}
	}()

	svc := export.NewService(st, logger)
	data, err := svc.ExportXLSX(ctx, from, to)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("write workbook", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("export written", "path", *out, "bytes", len(data))
}
