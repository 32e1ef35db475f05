// Package pipeline sequences normalization, classification, and conditional
// structured extraction over one document. Each stage is a pure function on a
// Record passed by value; the orchestrator composes them and stops on the
// first non-Continue outcome.
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/scandesk/docproc/internal/textproc"
)

// Outcome tags a stage result for the sequencer.
type Outcome int

const (
	// Continue hands the record to the next stage.
	Continue Outcome = iota
	// Skip ends the run as a success without structured data.
	Skip
	// Fail ends the run with the record's error set.
	Fail
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Skip:
		return "skip"
	case Fail:
		return "fail"
	default:
		return "unknown"
	}
}

// Record is the per-document state threaded through the pipeline. It is
// passed and returned by value; an upstream collaborator (OCR) populates
// RawText, or Err when that collaborator already failed.
type Record struct {
	SourcePath     string
	RawText        string
	NormalizedText string
	Classification *textproc.Classification
	StructuredData json.RawMessage
	Note           string
	Err            string
}

// Failed reports whether an error has been recorded. Once set, no stage
// mutates the record further.
func (r Record) Failed() bool {
	return r.Err != ""
}

// Result is the serialized shape of a finished record.
type Result struct {
	SourcePath     string                   `json:"source_path"`
	RawText        string                   `json:"raw_text"`
	CleanedText    string                   `json:"cleaned_text"`
	Classification *textproc.Classification `json:"classification,omitempty"`
	StructuredData json.RawMessage          `json:"structured_data,omitempty"`
	Note           string                   `json:"note,omitempty"`
	Error          string                   `json:"error,omitempty"`
	ProcessedAt    time.Time                `json:"processed_at"`
	DurationMS     int64                    `json:"duration_ms"`
}

// Result converts a finished record into its emitted form.
func (r Record) Result(start time.Time) Result {
	return Result{
		SourcePath:     r.SourcePath,
		RawText:        r.RawText,
		CleanedText:    r.NormalizedText,
		Classification: r.Classification,
		StructuredData: r.StructuredData,
		Note:           r.Note,
		Error:          r.Err,
		ProcessedAt:    time.Now().UTC(),
		DurationMS:     time.Since(start).Milliseconds(),
	}
}
