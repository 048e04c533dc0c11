package domain

import (
	"errors"
	"fmt"
)

// MaxTextLength is the column width of every free-text field.
const MaxTextLength = 255

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrIDPresent is returned when an entity that is about to be created
	// already carries an identifier.
	ErrIDPresent = errors.New("a new entity cannot already have an ID")

	// ErrIDMissing is returned when an update targets an entity without an identifier.
	ErrIDMissing = errors.New("entity ID is missing")

	// ErrIDMismatch is returned when the path identifier and the body identifier differ.
	ErrIDMismatch = errors.New("entity ID does not match path ID")

	// ErrTextTooLong is returned when a text field exceeds MaxTextLength.
	ErrTextTooLong = errors.New("text exceeds maximum length")

	// ErrInvalidSalary is returned when a salary is negative or the range is inverted.
	ErrInvalidSalary = errors.New("invalid salary")
)

// ValidationError reports which field failed and why.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap exposes the sentinel so callers can use errors.Is.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// Is makes every ValidationError match ErrValidation as well as its own sentinel.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError for field wrapping err.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
