package pipeline

import (
	"github.com/scandesk/docproc/internal/textproc"
)

// Stage is a pure step over the document record.
type Stage func(Record) (Record, Outcome)

// NormalizeStage cleans the raw OCR text. Normalization itself never fails;
// the stage only fails when an upstream error is already recorded.
func NormalizeStage(rec Record) (Record, Outcome) {
	if rec.Failed() {
		return rec, Fail
	}
	rec.NormalizedText = textproc.Normalize(rec.RawText)
	return rec, Continue
}

// ClassifyStage scores the normalized text. A classification of "other" ends
// the run as a skip: a valid terminal state, not an error.
func ClassifyStage(rec Record) (Record, Outcome) {
	if rec.Failed() {
		return rec, Fail
	}
	c := textproc.Classify(rec.NormalizedText)
	rec.Classification = &c
	if !c.Type.Extractable() {
		rec.Note = "structured extraction not attempted for document type 'other'"
		return rec, Skip
	}
	return rec, Continue
}
