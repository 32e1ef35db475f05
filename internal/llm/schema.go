package llm

// ReceiptSchema returns the JSON Schema constraining structured extraction,
// as a generic map. It is passed to the model as a structured-output
// constraint and also used locally to validate the response.
func ReceiptSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"store_name":  map[string]any{"type": "string"},
			"store_phone": map[string]any{"type": "string"},
			"date":        map[string]any{"type": "string"},
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":         map[string]any{"type": "string"},
						"number":       map[string]any{"type": "integer"},
						"price_single": map[string]any{"type": "number"},
						"price_total":  map[string]any{"type": "number"},
						"vat_code":     map[string]any{"type": "string"},
					},
					"required": []string{"name", "number", "price_single", "price_total", "vat_code"},
				},
			},
			"sub_total": map[string]any{"type": "number"},
			"tax":       map[string]any{"type": "number"},
			"tip":       map[string]any{"type": "number"},
			"total":     map[string]any{"type": "number"},
		},
		"required": []string{"store_name", "date", "items", "sub_total", "tax", "tip", "total"},
	}
}
