package tokenfmt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DocumentSchema is the JSON Schema of a Document in FormatJSON
const DocumentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["filename", "digest", "tokens"],
  "additionalProperties": false,
  "properties": {
    "filename": {"type": "string"},
    "digest": {"type": "string", "pattern": "^[0-9a-f]{64}$"},
    "tokens": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["type", "text", "line", "column", "offset"],
        "additionalProperties": false,
        "properties": {
          "type": {"enum": ["EOF", "BRACKET", "PUNCTUATION", "OPERATOR", "NUMBER", "BIGINT"]},
          "text": {"type": "string"},
          "line": {"type": "integer", "minimum": 1},
          "column": {"type": "integer", "minimum": 0},
          "offset": {"type": "integer", "minimum": 0},
          "value": {"type": "string"}
        }
      }
    }
  }
}`

const schemaURL = "document.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.LoadURL = func(url string) (io.ReadCloser, error) {
		return nil, fmt.Errorf("external $ref not allowed: %s", url)
	}
	if err := compiler.AddResource(schemaURL, strings.NewReader(DocumentSchema)); err != nil {
		return nil, fmt.Errorf("loading document schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// ValidateJSON checks that data is a Document encoded in FormatJSON
func ValidateJSON(data []byte) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("document schema compilation failed: %w", err)
	}

	// Numbers stay json.Number so integer keywords see exact values
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON: trailing data after document")
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Errorf("document does not match schema: %w", err)
	}
	return nil
}
