package llm

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
)

var moneyFields = []string{"sub_total", "tax", "tip", "total"}

// SanitizeReceiptJSON normalizes a model response that narrowly misses the
// schema so the document can still validate:
//   - drops null/empty optionals (store_phone)
//   - coerces numeric strings to numbers for money fields (top-level and per item)
//   - coerces item quantity strings to integers
//   - removes unknown top-level keys
//
// Returns the cleaned JSON plus the list of touched keys.
func SanitizeReceiptJSON(raw []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var touched []string

	// store_phone is the only optional: drop it rather than fail on noise.
	if v, ok := m["store_phone"]; ok {
		switch t := v.(type) {
		case nil:
			delete(m, "store_phone")
			touched = append(touched, "store_phone(null)")
		case string:
			if strings.TrimSpace(t) == "" {
				delete(m, "store_phone")
				touched = append(touched, "store_phone(empty)")
			}
		default:
			delete(m, "store_phone")
			touched = append(touched, "store_phone(type)")
		}
	}

	for _, k := range moneyFields {
		if n, ok := coerceNumber(m[k]); ok {
			if _, was := m[k].(float64); !was {
				touched = append(touched, k)
			}
			m[k] = n
		}
	}

	if items, ok := m["items"].([]any); ok {
		for i, it := range items {
			obj, ok := it.(map[string]any)
			if !ok {
				continue
			}
			for _, k := range []string{"price_single", "price_total"} {
				if n, ok := coerceNumber(obj[k]); ok {
					if _, was := obj[k].(float64); !was {
						touched = append(touched, fmt.Sprintf("items[%d].%s", i, k))
					}
					obj[k] = n
				}
			}
			if s, ok := obj["number"].(string); ok {
				if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
					obj["number"] = n
					touched = append(touched, fmt.Sprintf("items[%d].number", i))
				}
			}
		}
	}

	// Strict schemas dislike stray keys the model invented.
	allowed := map[string]struct{}{
		"store_name": {}, "store_phone": {}, "date": {}, "items": {},
		"sub_total": {}, "tax": {}, "tip": {}, "total": {},
	}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			touched = append(touched, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, touched, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, touched, nil
}

// coerceNumber returns a float64 for numbers and numeric strings,
// stripping a leading currency symbol from strings.
func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "$"))
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
