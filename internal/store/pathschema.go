package store

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed path.schema.json
var pathSchemaJSON []byte

const pathSchemaURL = "schema://learning-path.json"

var (
	pathSchemaOnce sync.Once
	pathSchema     *jsonschema.Schema
	pathSchemaErr  error
)

func compiledPathSchema() (*jsonschema.Schema, error) {
	pathSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(pathSchemaJSON))
		if err != nil {
			pathSchemaErr = fmt.Errorf("parse path schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(pathSchemaURL, doc); err != nil {
			pathSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		pathSchema, pathSchemaErr = c.Compile(pathSchemaURL)
	})
	return pathSchema, pathSchemaErr
}

// ValidatePathJSON checks raw learning path JSON against the path schema
// before it is decoded.
func ValidatePathJSON(raw []byte) error {
	schema, err := compiledPathSchema()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("learning path schema validation failed: %w", err)
	}
	return nil
}
