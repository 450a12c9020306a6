package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed template.schema.json
var templateSchema []byte

const templateSchemaURL = "template.schema.json"

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(templateSchemaURL, bytes.NewReader(templateSchema)); err != nil {
		return nil, fmt.Errorf("add template schema: %w", err)
	}
	schema, err := compiler.Compile(templateSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile template schema: %w", err)
	}
	return schema, nil
}

// validateDocument checks a YAML or JSON template definition against the schema.
// The document goes through JSON so numbers reach the validator as json.Number.
func validateDocument(schema *jsonschema.Schema, data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("malformed YAML: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("empty document")
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("document is not representable as JSON: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("unmarshal document: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("does not match template schema: %w", err)
	}
	return nil
}
