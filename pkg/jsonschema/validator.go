// Package jsonschema validates JSON documents against JSON Schema.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidJSON is returned when the document is not valid JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// ValidationErrors lists every schema violation found in a document.
type ValidationErrors []error

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, err := range ve {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Schema is a compiled JSON Schema. It is safe for concurrent use.
type Schema struct {
	schema *jsonschema.Schema
}

// Compile compiles a schema document.
func Compile(schemaJSON []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: schema}, nil
}

// Validate checks data against the schema. It returns ErrInvalidJSON for
// unparseable data and ValidationErrors for schema violations.
func (s *Schema) Validate(data []byte) error {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		if errs := flatten(validationErr); len(errs) > 0 {
			return errs
		}
	}
	return ValidationErrors{err}
}

// Validate compiles schemaJSON and validates data against it.
func Validate(data, schemaJSON []byte) error {
	schema, err := Compile(schemaJSON)
	if err != nil {
		return err
	}
	return schema.Validate(data)
}

// flatten collects the leaf causes of a validation error.
func flatten(err *jsonschema.ValidationError) ValidationErrors {
	if len(err.Causes) == 0 {
		return ValidationErrors{fmt.Errorf("at %q: %s", err.InstanceLocation, err.Message)}
	}

	var errs ValidationErrors
	for _, cause := range err.Causes {
		errs = append(errs, flatten(cause)...)
	}
	return errs
}
