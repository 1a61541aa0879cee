package types

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. A rejected request is always one of these;
// a partial or empty team is never an error.
var (
	ErrInvalidRequirement = errors.New("invalid requirement")
	ErrConstraintConflict = errors.New("constraint conflict")
	ErrUnknownSuggestion  = errors.New("unknown suggestion")
)

// ValidationError describes why a request was rejected before any filtering ran
type ValidationError struct {
	Kind    error
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// Is matches the error against its kind sentinel
func (e *ValidationError) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the kind sentinel
func (e *ValidationError) Unwrap() error {
	return e.Kind
}
