package llm

import (
	"context"
	"encoding/json"

	"github.com/scandesk/docproc/constants"
)

// ReceiptItem is one line item of an extracted receipt.
type ReceiptItem struct {
	Name        string  `json:"name"`
	Number      int     `json:"number"`
	PriceSingle float64 `json:"price_single"`
	PriceTotal  float64 `json:"price_total"`
	VATCode     string  `json:"vat_code"`
}

// ReceiptData is the typed shape of a structured_data object. Consumers that
// only need to pass the object through can stay on the raw JSON.
type ReceiptData struct {
	StoreName  string        `json:"store_name"`
	StorePhone string        `json:"store_phone,omitempty"`
	Date       string        `json:"date"`
	Items      []ReceiptItem `json:"items"`
	SubTotal   float64       `json:"sub_total"`
	Tax        float64       `json:"tax"`
	Tip        float64       `json:"tip"`
	Total      float64       `json:"total"`
}

// ExtractRequest carries the inputs for a structured-extraction call.
type ExtractRequest struct {
	Text       string            // normalized document text
	DocType    constants.DocType // declared type; must be extractable
	SourceHint string            // filename, for logging only
}

// StructuredExtractor is the interface the pipeline depends on. The returned
// JSON is guaranteed by implementations to conform to ReceiptSchema.
type StructuredExtractor interface {
	Extract(ctx context.Context, req ExtractRequest) (json.RawMessage, error)
}
