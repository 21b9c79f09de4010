package service

import (
	"errors"
	"fmt"
)

// Service error taxonomy. Handlers map these onto HTTP status codes with
// errors.Is; everything else is treated as an internal error.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")

	// ErrDefaultQuestionnaire and ErrLanguageIncomplete are conflict
	// refinements carrying their own API error codes.
	ErrDefaultQuestionnaire = fmt.Errorf("default questionnaire protected: %w", ErrConflict)
	ErrLanguageIncomplete   = fmt.Errorf("language incomplete: %w", ErrConflict)
)

// validationError wraps ErrValidation with a field-level detail map.
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string { return "validation failed" }

func (e *validationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a field-addressed validation failure.
func NewValidationError(fields map[string]string) error {
	return &validationError{fields: fields}
}

// ValidationFields extracts the field detail map from a validation error, if
// any.
func ValidationFields(err error) map[string]string {
	var ve *validationError
	if errors.As(err, &ve) {
		return ve.fields
	}
	return nil
}
