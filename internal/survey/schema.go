package survey

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed document.schema.json
var schemaFS embed.FS

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := schemaFS.ReadFile("document.schema.json")
		if err != nil {
			schemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("document.schema.json", bytes.NewReader(raw)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("document.schema.json")
	})
	return compiledSchema, schemaErr
}

// ValidateShape checks a document against the embedded JSON schema. This is a
// shape check only; domain rules live in the structure validator.
func ValidateShape(d *Document) error {
	schema, err := documentSchema()
	if err != nil {
		return fmt.Errorf("compiling survey schema: %w", err)
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshaling survey document: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("normalizing survey document for schema validation: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("survey schema validation failed: %w", err)
	}
	return nil
}

// SaveDocument writes a schema-valid document to disk as indented JSON.
func SaveDocument(path string, d *Document) error {
	if d == nil {
		return fmt.Errorf("survey document is nil")
	}
	if err := ValidateShape(d); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0644)
}

// LoadDocument reads a document previously written by SaveDocument.
func LoadDocument(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(b)
}
