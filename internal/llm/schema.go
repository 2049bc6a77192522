package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Veraticus/spent/internal/model"
)

// extractionSchema describes a normalized extraction document.
func extractionSchema() map[string]any {
	categories := make([]any, 0, 10)
	for _, c := range model.AllCategories() {
		categories = append(categories, string(c))
	}
	fields := make([]any, 0, len(model.FieldOrder))
	for _, f := range model.FieldOrder {
		fields = append(fields, string(f))
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required": []any{
			"isValidExpense", "confidence", "amount", "description",
			"category", "date", "missingFields", "reasoning",
		},
		"properties": map[string]any{
			"isValidExpense": map[string]any{"type": "boolean"},
			"confidence":     map[string]any{"enum": []any{"high", "medium", "low"}},
			"amount": map[string]any{
				"type":    []any{"string", "null"},
				"pattern": `^\d+(\.\d+)?$`,
			},
			"description": map[string]any{"type": []any{"string", "null"}, "minLength": 1},
			"category":    map[string]any{"enum": categories},
			"date":        map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
			"missingFields": map[string]any{
				"type":        "array",
				"uniqueItems": true,
				"items":       map[string]any{"enum": fields},
			},
			"reasoning": map[string]any{"type": "string"},
		},
	}
}

var (
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
	compileSchemaOnce sync.Once
)

func loadSchema() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		b, err := json.Marshal(extractionSchema())
		if err != nil {
			compiledSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("extraction.json", bytes.NewReader(b)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile("extraction.json")
		if compiledSchemaErr != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", compiledSchemaErr)
		}
	})
	return compiledSchema, compiledSchemaErr
}

// validateDocument checks a JSON document against the extraction schema.
func validateDocument(data []byte) error {
	schema, err := loadSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
