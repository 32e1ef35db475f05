package constants

// DocType is the canonical document category produced by classification.
type DocType string

// Stable values (these exact strings appear in result records).
const (
	Receipt DocType = "receipt"
	Invoice DocType = "invoice"
	Other   DocType = "other"
)

// Extractable reports whether structured extraction applies to this type.
// "other" is a valid terminal classification, never extracted.
func (d DocType) Extractable() bool {
	return d == Receipt || d == Invoice
}
