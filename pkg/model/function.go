package model

import (
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Function describes a single callable function offered to the model: a
// name (unique within one request), a human-readable description, and a
// JSON-Schema description of its arguments. The same schema is sent to the
// service and used locally to validate the arguments it returns.
type Function struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Validate checks the descriptor before it is sent on the wire.
func (f Function) Validate() error {
	if f.Name == "" {
		return errors.New("function name is required")
	}
	return nil
}

// ValidateArguments checks a decoded argument mapping against the declared
// parameter schema. A violation is returned as *SchemaValidationError;
// arguments are never coerced or defaulted.
func (f Function) ValidateArguments(args map[string]any) error {
	if f.Parameters == nil {
		return nil
	}
	resolved, err := f.Parameters.Resolve(nil)
	if err != nil {
		return fmt.Errorf("resolve parameter schema for %q: %w", f.Name, err)
	}
	if err := resolved.Validate(args); err != nil {
		return &SchemaValidationError{Function: f.Name, Err: err}
	}
	return nil
}
