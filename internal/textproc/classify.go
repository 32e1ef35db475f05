package textproc

import (
	"math"
	"regexp"
	"strings"

	"github.com/scandesk/docproc/constants"
)

// Classification is the outcome of the heuristic scorer.
type Classification struct {
	Type       constants.DocType `json:"type"`
	Confidence float64           `json:"confidence"`
}

// Keyword sets and patterns are empirical; they are scored against
// lower-cased text as plain substrings.
var receiptKeywords = []string{
	"total", "subtotal", "tax", "tip", "merchant", "store", "change due",
	"cash", "card", "payment", "balance", "amount", "receipt", "transaction",
	"sale", "terminal", "register",
}

var invoiceKeywords = []string{
	"invoice", "due date", "amount due", "billing", "invoice number",
	"account", "payment terms", "bill to", "ship to", "po number",
	"order number", "net", "terms",
}

var (
	rePrice      = regexp.MustCompile(`\$?\d+\.\d{2}`)
	reDate       = regexp.MustCompile(`\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`)
	reInvoiceNum = regexp.MustCompile(`inv[oice]*[^a-zA-Z0-9]?\s*#?\s*\d+`)
	reDueDate    = regexp.MustCompile(`due\s+date|payment\s+due`)
)

// Classify scores normalized text against the receipt and invoice models and
// returns the winning type with a confidence in [0,1]. Receipt is checked
// before invoice, so text qualifying for both resolves to receipt. When both
// scores are zero, confidence is 0 and the type is "other". Never fails.
func Classify(text string) Classification {
	t := strings.ToLower(text)

	receiptScore := scoreReceipt(t)
	invoiceScore := scoreInvoice(t)

	total := receiptScore + invoiceScore
	var receiptConf, invoiceConf float64
	if total > 0 {
		receiptConf = receiptScore / total
		invoiceConf = invoiceScore / total
	}

	switch {
	case receiptScore >= 2 && receiptConf > 0.6:
		return Classification{Type: constants.Receipt, Confidence: receiptConf}
	case invoiceScore >= 2 && invoiceConf > 0.6:
		return Classification{Type: constants.Invoice, Confidence: invoiceConf}
	default:
		return Classification{Type: constants.Other, Confidence: math.Max(receiptConf, invoiceConf)}
	}
}

func scoreReceipt(t string) float64 {
	score := 0.0

	for _, kw := range receiptKeywords {
		if strings.Contains(t, kw) {
			score += 0.5
		}
	}

	// Price hits contribute up to 2.0 (three matches saturate one point).
	priceMatches := len(rePrice.FindAllString(t, -1))
	score += math.Min(float64(priceMatches)/3, 2.0)

	if reDate.MatchString(t) {
		score += 1.0
	}

	return score
}

func scoreInvoice(t string) float64 {
	score := 0.0

	for _, kw := range invoiceKeywords {
		if strings.Contains(t, kw) {
			score += 0.5
		}
	}

	if reInvoiceNum.MatchString(t) {
		score += 2.0
	}

	if reDueDate.MatchString(t) {
		score += 1.0
	}

	return score
}
