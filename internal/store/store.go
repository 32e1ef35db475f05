// Package store persists finished document results for later export. It is
// optional: the pipeline works without it. A DSN with a postgres scheme opens
// a pgx-backed connection, anything else is treated as a sqlite file path.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/scandesk/docproc/constants"
	"github.com/scandesk/docproc/internal/pipeline"
	"github.com/scandesk/docproc/internal/textproc"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id              TEXT PRIMARY KEY,
	source_path     TEXT NOT NULL,
	raw_text        TEXT NOT NULL,
	cleaned_text    TEXT NOT NULL,
	doc_type        TEXT NOT NULL DEFAULT '',
	confidence      REAL NOT NULL DEFAULT 0,
	structured_json TEXT NOT NULL DEFAULT '',
	note            TEXT NOT NULL DEFAULT '',
	error_message   TEXT NOT NULL DEFAULT '',
	processed_at    TEXT NOT NULL,
	duration_ms     INTEGER NOT NULL DEFAULT 0
)`

// tsFormat is fixed-width so string comparison on processed_at matches
// chronological order across both drivers.
const tsFormat = "2006-01-02T15:04:05.000000000Z"

type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects per the DSN and ensures the schema exists.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	}

	logger.Info("opening results store", "driver", driver)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s store: %w", driver, err)
	}

	s := &Store{db: db, driver: driver, logger: logger}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveResult records one finished document.
func (s *Store) SaveResult(ctx context.Context, res pipeline.Result) error {
	var docType string
	var confidence float64
	if res.Classification != nil {
		docType = string(res.Classification.Type)
		confidence = res.Classification.Confidence
	}

	q := s.rebind(`INSERT INTO documents
		(id, source_path, raw_text, cleaned_text, doc_type, confidence,
		 structured_json, note, error_message, processed_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, q,
		uuid.New().String(),
		res.SourcePath,
		res.RawText,
		res.CleanedText,
		docType,
		confidence,
		string(res.StructuredData),
		res.Note,
		res.Error,
		res.ProcessedAt.UTC().Format(tsFormat),
		res.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// ListResults returns stored results, newest first, optionally bounded by a
// processed-at window (inclusive).
func (s *Store) ListResults(ctx context.Context, from, to *time.Time) ([]pipeline.Result, error) {
	q := `SELECT source_path, raw_text, cleaned_text, doc_type, confidence,
		structured_json, note, error_message, processed_at, duration_ms
		FROM documents`
	var conds []string
	var args []any
	if from != nil {
		conds = append(conds, "processed_at >= ?")
		args = append(args, from.UTC().Format(tsFormat))
	}
	if to != nil {
		conds = append(conds, "processed_at <= ?")
		args = append(args, to.UTC().Format(tsFormat))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY processed_at DESC"

	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logger.Warn("close rows", "error", cerr)
		}
	}()

	var out []pipeline.Result
	for rows.Next() {
		var (
			res         pipeline.Result
			docType     string
			confidence  float64
			structured  string
			processedAt string
		)
		if err := rows.Scan(
			&res.SourcePath, &res.RawText, &res.CleanedText,
			&docType, &confidence, &structured,
			&res.Note, &res.Error, &processedAt, &res.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if docType != "" {
			res.Classification = &textproc.Classification{
				Type:       constants.DocType(docType),
				Confidence: confidence,
			}
		}
		if structured != "" {
			res.StructuredData = []byte(structured)
		}
		if ts, perr := time.Parse(tsFormat, processedAt); perr == nil {
			res.ProcessedAt = ts
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

// rebind rewrites ? placeholders to $n for the pgx driver.
func (s *Store) rebind(q string) string {
	if s.driver != "pgx" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
