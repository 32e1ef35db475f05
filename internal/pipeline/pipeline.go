package pipeline

import (
	"context"
	"log/slog"

	"github.com/scandesk/docproc/internal/common"
	"github.com/scandesk/docproc/internal/llm"
)

// Pipeline runs the full document state machine. It holds no per-document
// state; each Record runs the machine exactly once.
type Pipeline struct {
	extractor llm.StructuredExtractor
	logger    *slog.Logger
}

func New(extractor llm.StructuredExtractor, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{extractor: extractor, logger: logger}
}

// Run sequences normalize -> classify -> extract over the record. A record
// arriving with an error (failed OCR upstream) is returned untouched; a
// classification of "other" ends the run without extraction and without
// error; an extraction failure is recorded on the document, never raised.
func (p *Pipeline) Run(ctx context.Context, rec Record) Record {
	if rec.Failed() {
		p.logger.Warn("pipeline.upstream_error", "source", rec.SourcePath, "error", rec.Err)
		return rec
	}

	out := Continue
	for _, stage := range []Stage{NormalizeStage, ClassifyStage} {
		rec, out = stage(rec)
		if out != Continue {
			p.logger.Info("pipeline.done",
				"source", rec.SourcePath,
				"outcome", out.String(),
				"note", rec.Note,
				"error", rec.Err,
			)
			return rec
		}
	}

	rec = p.extract(ctx, rec)
	p.logger.Info("pipeline.done",
		"source", rec.SourcePath,
		"outcome", extractOutcome(rec).String(),
		"type", rec.Classification.Type,
		"confidence", rec.Classification.Confidence,
		"error", rec.Err,
	)
	return rec
}

func (p *Pipeline) extract(ctx context.Context, rec Record) Record {
	data, err := p.extractor.Extract(ctx, llm.ExtractRequest{
		Text:       rec.NormalizedText,
		DocType:    rec.Classification.Type,
		SourceHint: rec.SourcePath,
	})
	if err != nil {
		rec.Err = common.WrapError(err, "data extraction failed").Error()
		return rec
	}
	rec.StructuredData = data
	return rec
}

func extractOutcome(rec Record) Outcome {
	if rec.Failed() {
		return Fail
	}
	return Continue
}
