package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Payload structure rules. Validity depends only on structure: any
// non-empty question_type, any populated question_number/correct_answer.
var questionDefinition = map[string]any{
	"type":     "object",
	"required": []any{"question_number", "correct_answer"},
	"properties": map[string]any{
		"question_number": map[string]any{
			"type":      []any{"integer", "string"},
			"minLength": 1,
		},
		"correct_answer": map[string]any{
			"type":      []any{"string", "number", "boolean", "array"},
			"minLength": 1,
			"minItems":  1,
		},
	},
}

var questionGroupDefinition = map[string]any{
	"type":     "object",
	"required": []any{"question_type", "questions"},
	"properties": map[string]any{
		"question_type": map[string]any{"type": "string", "minLength": 1},
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    questionDefinition,
		},
	},
}

func payloadDefinition(requirePassage bool) map[string]any {
	def := map[string]any{
		"type":     "object",
		"required": []any{"question_groups"},
		"properties": map[string]any{
			"question_groups": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    questionGroupDefinition,
			},
		},
	}
	if requirePassage {
		def["required"] = []any{"question_groups", "passage"}
		def["properties"].(map[string]any)["passage"] = map[string]any{
			"type":     "object",
			"required": []any{"content"},
			"properties": map[string]any{
				"content": map[string]any{"type": "string", "minLength": 1},
			},
		}
	}
	return def
}

var (
	schemaOnce     sync.Once
	schemaErr      error
	basePayload    *jsonschema.Schema
	passagePayload *jsonschema.Schema
)

func compiledSchemas() (*jsonschema.Schema, *jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if schemaErr = c.AddResource("schema://test-payload.json", payloadDefinition(false)); schemaErr != nil {
			return
		}
		if schemaErr = c.AddResource("schema://reading-payload.json", payloadDefinition(true)); schemaErr != nil {
			return
		}
		if basePayload, schemaErr = c.Compile("schema://test-payload.json"); schemaErr != nil {
			return
		}
		passagePayload, schemaErr = c.Compile("schema://reading-payload.json")
	})
	return basePayload, passagePayload, schemaErr
}

// ValidatePayload checks that raw is a structurally complete test for module.
// It returns a DomainError with code ErrInvalidPayload on failure.
func ValidatePayload(module Module, raw json.RawMessage) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return NewError(ErrInvalidPayload, "payload is empty", nil)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return NewError(ErrInvalidPayload, "payload is not valid JSON", err)
	}

	base, reading, err := compiledSchemas()
	if err != nil {
		return NewInternalError("compile payload schema", err)
	}

	schema := base
	if module == ModuleReading {
		schema = reading
	}
	if err := schema.Validate(doc); err != nil {
		return NewError(ErrInvalidPayload, fmt.Sprintf("%s payload failed structural validation", module), err)
	}
	return nil
}

// IsValidPayload is ValidatePayload as a predicate.
func IsValidPayload(module Module, raw json.RawMessage) bool {
	return ValidatePayload(module, raw) == nil
}
