// Package batch runs the document pipeline over one file or a whole
// directory. Each document is an independent pipeline run over its own
// record; a failed document is recorded in its own result and never aborts
// its siblings.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scandesk/docproc/internal/ingest"
	"github.com/scandesk/docproc/internal/ocr"
	"github.com/scandesk/docproc/internal/pipeline"
	"github.com/scandesk/docproc/internal/store"
)

const defaultWorkers = 4

// TextSource supplies raw text for an input path. Satisfied by
// ocr.Extractor; stubbed in tests.
type TextSource interface {
	Extract(ctx context.Context, path string) (ocr.Result, error)
}

// Stats aggregates one batch run.
type Stats struct {
	Processed int
	Extracted int
	Skipped   int
	Failed    int
}

// Processor coordinates OCR, the pipeline, result files, and the optional
// history store.
type Processor struct {
	Source  TextSource
	Pipe    *pipeline.Pipeline
	Store   *store.Store // optional
	Logger  *slog.Logger
	Workers int
	OutDir  string
}

func NewProcessor(source TextSource, pipe *pipeline.Pipeline, st *store.Store, outDir string, workers int, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Processor{
		Source:  source,
		Pipe:    pipe,
		Store:   st,
		Logger:  logger,
		Workers: workers,
		OutDir:  outDir,
	}
}

// ProcessPath processes a single file or every supported document under a
// directory.
func (p *Processor) ProcessPath(ctx context.Context, path string) (Stats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Stats{}, fmt.Errorf("stat input: %w", err)
	}
	if info.IsDir() {
		return p.ProcessDirectory(ctx, path)
	}

	res, err := p.ProcessFile(ctx, path)
	if err != nil {
		return Stats{Processed: 1, Failed: 1}, err
	}
	return statsFor(res), nil
}

// ProcessDirectory fans out over the directory's documents with bounded
// parallelism. Per-document failures land in that document's result file;
// only enumeration and output-write errors are returned.
func (p *Processor) ProcessDirectory(ctx context.Context, dir string) (Stats, error) {
	paths, walkStats, err := ingest.ListDocuments(dir, nil, true)
	if err != nil {
		return Stats{}, fmt.Errorf("list documents: %w", err)
	}
	p.Logger.Info("batch.start",
		"dir", dir,
		"matched", walkStats.Matched,
		"scanned", walkStats.Scanned,
		"workers", p.Workers,
	)

	var mu sync.Mutex
	var stats Stats

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers)

	for _, path := range paths {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			res, err := p.ProcessFile(gctx, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Output-write failure: the document's own errors are
				// already inside res.
				p.Logger.Error("batch.document_failed", "path", path, "error", err)
				stats.Processed++
				stats.Failed++
				return nil
			}
			s := statsFor(res)
			stats.Processed += s.Processed
			stats.Extracted += s.Extracted
			stats.Skipped += s.Skipped
			stats.Failed += s.Failed
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}

	p.Logger.Info("batch.done",
		"processed", stats.Processed,
		"extracted", stats.Extracted,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)
	return stats, nil
}

// ProcessFile runs the full pipeline for one document and writes its JSON
// result next to its siblings in OutDir, named after the input file. The
// result is written even when the document failed; the returned error covers
// only result-persistence problems.
func (p *Processor) ProcessFile(ctx context.Context, path string) (pipeline.Result, error) {
	start := time.Now()

	rec := pipeline.Record{SourcePath: path}
	src, err := p.Source.Extract(ctx, path)
	if err != nil {
		// Upstream failure: the pipeline sees a pre-set error and
		// short-circuits without running any stage.
		rec.Err = fmt.Sprintf("OCR processing failed: %v", err)
	} else {
		rec.RawText = src.Text
	}

	rec = p.Pipe.Run(ctx, rec)
	res := rec.Result(start)

	if err := p.writeResult(path, res); err != nil {
		return res, err
	}
	if p.Store != nil {
		if err := p.Store.SaveResult(ctx, res); err != nil {
			return res, fmt.Errorf("save result: %w", err)
		}
	}
	return res, nil
}

func (p *Processor) writeResult(inputPath string, res pipeline.Result) error {
	if p.OutDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
	outPath := filepath.Join(p.OutDir, name)

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	p.Logger.Debug("batch.result_written", "path", outPath)
	return nil
}

func statsFor(res pipeline.Result) Stats {
	s := Stats{Processed: 1}
	switch {
	case res.Error != "":
		s.Failed = 1
	case len(res.StructuredData) > 0:
		s.Extracted = 1
	default:
		s.Skipped = 1
	}
	return s
}
