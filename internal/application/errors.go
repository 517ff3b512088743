package application

import (
	"errors"
	"strings"
)

// Sentinel errors surfaced by the services. Handlers translate these into
// redirects, flash messages or JSON errors; anything else is a persistence
// or infrastructure failure and gets the generic treatment.
var (
	// ErrInvalidCredentials covers unknown email, inactive account and wrong
	// password alike so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked means the lockout window is still open; it is
	// returned regardless of password correctness.
	ErrAccountLocked = errors.New("account temporarily locked")

	// ErrEmailTaken is internal: callers surface the same generic message as
	// a fresh validation failure.
	ErrEmailTaken = errors.New("email already registered")

	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// FieldViolation is one failed validation rule on one field.
type FieldViolation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError aggregates the violations found by an explicit validation
// pass. It is produced by validation functions invoked before construction,
// never as a side effect of assignment.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Details returns the violations as a field→message map for inline display.
func (e *ValidationError) Details() map[string]string {
	out := make(map[string]string, len(e.Violations))
	for _, v := range e.Violations {
		out[v.Field] = v.Message
	}
	return out
}

func (e *ValidationError) add(field, rule, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Rule: rule, Message: message})
}

func (e *ValidationError) orNil() *ValidationError {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
