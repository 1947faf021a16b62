package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildRecordJSONSchema describes one successful entry of the results array.
func BuildRecordJSONSchema() map[string]any {
	readings := map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":    "string",
			"pattern": `^\S+ \S+$`,
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"file", "month", "fasting", "post_lunch"},
		"properties": map[string]any{
			"file":       map[string]any{"type": "string"},
			"month":      map[string]any{"type": []any{"string", "null"}, "pattern": `^\S+ \d{4}$`},
			"fasting":    readings,
			"post_lunch": readings,
		},
	}
}

// BuildFailureJSONSchema describes one failed entry of the results array.
func BuildFailureJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"file", "status", "error"},
		"properties": map[string]any{
			"file":   map[string]any{"type": "string"},
			"status": map[string]any{"type": "string"},
			"error":  map[string]any{"type": "string"},
		},
	}
}

// BuildResultsJSONSchema is the schema of an upload/batch response body.
func BuildResultsJSONSchema() map[string]any {
	return map[string]any{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "array",
		"items": map[string]any{
			"oneOf": []any{BuildRecordJSONSchema(), BuildFailureJSONSchema()},
		},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	schema, err := compileSchema(schemaMap)
	if err != nil {
		return err
	}
	return validate(schema, data)
}

var resultsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema(BuildResultsJSONSchema())
})

// ValidateResultsJSON checks a rendered results array.
func ValidateResultsJSON(data []byte) error {
	schema, err := resultsSchema()
	if err != nil {
		return err
	}
	return validate(schema, data)
}

func compileSchema(schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
