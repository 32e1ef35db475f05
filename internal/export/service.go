// Package export produces XLSX workbooks from the results history store.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/scandesk/docproc/internal/llm"
	"github.com/scandesk/docproc/internal/store"
)

// Service is a tiny façade over the store that produces XLSX bytes.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

func NewService(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

// ExportXLSX returns an XLSX workbook (as bytes) for the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all stored documents.
func (s *Service) ExportXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC); the "to" bound covers the whole day.
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	results, err := s.store.ListResults(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Processed At",
		"Source",
		"Type",
		"Confidence",
		"Store",
		"Date",
		"Sub Total",
		"Tax",
		"Tip",
		"Total",
		"Items",
		"Error",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range results {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.ProcessedAt.Format("2006-01-02 15:04:05"))
		write(2, r.SourcePath)
		if r.Classification != nil {
			write(3, string(r.Classification.Type))
			write(4, r.Classification.Confidence)
		}

		if len(r.StructuredData) > 0 {
			var data llm.ReceiptData
			if err := json.Unmarshal(r.StructuredData, &data); err != nil {
				s.logger.Warn("export.decode_structured", "source", r.SourcePath, "error", err)
			} else {
				write(5, data.StoreName)
				write(6, data.Date)
				write(7, data.SubTotal)
				write(8, data.Tax)
				write(9, data.Tip)
				write(10, data.Total)
				write(11, len(data.Items))
			}
		}
		write(12, r.Error)
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.ok",
		"documents", len(results),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
