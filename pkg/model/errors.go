package model

import (
	"errors"
	"fmt"
)

// ErrUnsupported reports an operation the adapter deliberately does not
// implement. Callers can detect it with errors.Is.
var ErrUnsupported = errors.New("operation not supported by this model adapter")

// ConfigError reports a required configuration value that could not be
// resolved from either an explicit argument or the environment. It is
// returned at construction time, before any network call is possible.
type ConfigError struct {
	// Field is the configuration value that is missing.
	Field string
	// EnvVar is the environment variable consulted as a fallback.
	EnvVar string
	// Hint points at where to obtain the value.
	Hint string
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("missing %s: set it explicitly or export %s", e.Field, e.EnvVar)
	if e.Hint != "" {
		msg += " (see " + e.Hint + ")"
	}
	return msg
}

// MalformedResponseError reports a service response that violates the chat
// completion contract: a missing choice, a missing function call, or
// arguments that are not valid JSON.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed model response: %s: %v", e.Reason, e.Err)
	}
	return "malformed model response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// SchemaValidationError reports function-call arguments that do not satisfy
// the declared parameter schema.
type SchemaValidationError struct {
	Function string
	Err      error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("arguments for function %q violate its parameter schema: %v", e.Function, e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return e.Err }
