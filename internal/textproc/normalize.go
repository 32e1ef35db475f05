// Package textproc cleans raw OCR output and classifies the resulting text
// as a receipt, an invoice, or neither. Both operations are pure string
// transforms with no configuration and no failure mode.
package textproc

import (
	"regexp"
	"strings"
)

var (
	// Single-letter tokens OCR commonly reads in place of digits.
	// Word-boundary anchored so letters inside words are never touched.
	reTokenI = regexp.MustCompile(`\bI\b`)
	reTokenO = regexp.MustCompile(`\bO\b`)
	reTokenB = regexp.MustCompile(`\bB\b`)

	// "12 . 50" -> "12.50"
	reDecimalSpacing = regexp.MustCompile(`(\d+)\s*\.\s*(\d{2})`)
	// "12 50" -> "12.50"; the trailing group stands in for a lookahead,
	// the two-digit run must be followed by whitespace or end of text.
	reMissingDecimal = regexp.MustCompile(`(\d+)\s+(\d{2})(\s|$)`)
)

// Normalize cleans raw OCR text. It preserves line structure, fixes the
// common digit/letter confusions, and repairs mis-spaced or missing decimal
// points in prices. Idempotent; empty input yields empty output.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	// Preserve line breaks, strip per-line padding.
	lines := strings.Split(raw, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s := strings.Join(lines, "\n")

	s = reTokenI.ReplaceAllString(s, "1")
	s = reTokenO.ReplaceAllString(s, "0")
	s = reTokenB.ReplaceAllString(s, "8")

	// Decimal spacing first, then missing decimals, so already-repaired
	// prices are not processed twice.
	s = reDecimalSpacing.ReplaceAllString(s, "$1.$2")
	s = reMissingDecimal.ReplaceAllString(s, "$1.$2$3")

	return strings.TrimSpace(s)
}
