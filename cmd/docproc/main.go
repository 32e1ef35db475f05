package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/scandesk/docproc/internal/batch"
	"github.com/scandesk/docproc/internal/common"
	"github.com/scandesk/docproc/internal/llm/openai"
	"github.com/scandesk/docproc/internal/ocr"
	"github.com/scandesk/docproc/internal/pipeline"
	"github.com/scandesk/docproc/internal/store"
)

func main() {
	fs := ff.NewFlagSet("docproc")
	var (
		input   = fs.StringLong("input", "", "path to input file or directory (required)")
		out     = fs.StringLong("out", "output", "output directory for JSON results")
		dpi     = fs.IntLong("dpi", 0, "DPI for PDF rasterization (default from OCR_DPI or 300)")
		workers = fs.IntLong("workers", 4, "max documents processed in parallel")
		dbDSN   = fs.StringLong("db", "", "optional results store DSN (sqlite path or postgres:// URL)")
		debug   = fs.BoolLong("debug", "enable debug logging")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("DOCPROC"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if *input == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --input is required")
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if *dpi > 0 {
		cfg.OCR.DPI = *dpi
	}
	if *dbDSN != "" {
		cfg.Store.DSN = *dbDSN
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	extractor := ocr.NewExtractor(ocr.Config{
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)

	client := openai.NewClient(openai.Config{
		APIKey:        cfg.LLM.APIKey,
		BaseURL:       cfg.LLM.BaseURL,
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		Timeout:       cfg.LLM.Timeout,
		LenientFields: cfg.LLM.LenientFields,
	}, logger)

	pipe := pipeline.New(client, logger)

	var st *store.Store
	if cfg.Store.DSN != "" {
		var err error
		st, err = store.Open(ctx, cfg.Store.DSN, logger)
		if err != nil {
			logger.Error("open results store", "error", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Error("close results store", "error", cerr)
			}
		}()
	}

	processor := batch.NewProcessor(extractor, pipe, st, *out, *workers, logger)

	stats, err := processor.ProcessPath(ctx, *input)
	if err != nil {
		logger.Error("processing failed", "input", *input, "error", err)
		os.Exit(1)
	}

	logger.Info("processing complete",
		"input", *input,
		"output", *out,
		"processed", stats.Processed,
		"extracted", stats.Extracted,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
}
