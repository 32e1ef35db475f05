package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// The schema map is the wire artifact sent to the model; validation runs
// against a compiled form, built once and cached for the process lifetime.
var compiledReceiptSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	b, err := json.Marshal(ReceiptSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal receipt schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("receipt.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add receipt schema: %w", err)
	}
	return compiler.Compile("receipt.json")
})

// ValidateReceipt checks that data conforms to ReceiptSchema.
func ValidateReceipt(data []byte) error {
	schema, err := compiledReceiptSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode receipt json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("receipt does not match schema: %w", err)
	}
	return nil
}
