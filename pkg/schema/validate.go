// Package schema validates resolved configuration documents against the
// embedded JSON schema.
package schema

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://skysim-labs.github.io/skysim/config.schema.json"

// ValidationError is a schema violation with the YAML path of the
// offending value.
type ValidationError struct {
	Path   *yaml.Path // YAML path to the validation error.
	Detail string     // Detailed error message.
}

func (e *ValidationError) Error() string {
	if e.Path != nil {
		return fmt.Sprintf("error at %s: %s", e.Path.String(), e.Detail)
	}
	return "validation error: " + e.Detail
}

// Validator validates documents against the embedded configuration
// schema.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	var doc any
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Validator{schema: compiled}, nil
}

// Validate checks data against the schema. Data is normalized through a
// JSON round trip so YAML-decoded values (int, map[string]any) validate
// the same way JSON input would.
func (v *Validator) Validate(data any) error {
	normalized, err := normalize(data)
	if err != nil {
		return fmt.Errorf("normalize document: %w", err)
	}

	err = v.schema.Validate(normalized)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("schema validation: %w", err)
	}

	location := mostSpecificLocation(validationErr)
	path, pathErr := buildPath(location)
	if pathErr != nil {
		return &ValidationError{Detail: validationErr.Error()}
	}
	return &ValidationError{Path: path, Detail: validationErr.Error()}
}

func normalize(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// mostSpecificLocation finds the cause with the longest instance
// location, which points closest to the offending value.
func mostSpecificLocation(err *jsonschema.ValidationError) []string {
	longest := err.InstanceLocation
	for _, cause := range err.Causes {
		candidate := mostSpecificLocation(cause)
		if len(candidate) > len(longest) {
			longest = candidate
		}
	}
	return longest
}

func buildPath(location []string) (*yaml.Path, error) {
	builder := (&yaml.PathBuilder{}).Root()
	for _, segment := range location {
		if idx, err := strconv.Atoi(segment); err == nil {
			builder = builder.Index(uint(idx))
			continue
		}
		builder = builder.Child(segment)
	}
	return builder.Build(), nil
}
