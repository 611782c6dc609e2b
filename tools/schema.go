package tools

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tailored-agentic-units/reviewkit/core/protocol"
)

const schemaBaseURL = "https://reviewkit.local/tools/"

// compileSchema compiles the tool's Parameters as a JSON Schema document.
// A tool without parameters accepts any JSON object.
func compileSchema(tool protocol.Tool) (*jsonschema.Schema, error) {
	params := tool.Parameters
	if params == nil {
		params = map[string]any{"type": "object"}
	}

	doc, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, tool.Name, err)
	}

	url := schemaBaseURL + tool.Name + ".json"
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, tool.Name, err)
	}

	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, tool.Name, err)
	}
	return schema, nil
}

// validateArgs decodes args and checks them against schema. Empty args are
// treated as an empty object.
func validateArgs(name string, schema *jsonschema.Schema, args json.RawMessage) error {
	if len(bytes.TrimSpace(args)) == 0 {
		args = json.RawMessage(`{}`)
	}

	dec := json.NewDecoder(bytes.NewReader(args))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("%w: %s: malformed JSON: %v", ErrInvalidArguments, name, err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
	}
	return nil
}
