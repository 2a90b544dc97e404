package shared

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so a sentinel still
// matches after the message was specialised with NewDomainErrorf.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Common domain errors
var (
	ErrNotFound     = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrAmbiguous    = NewDomainError("AMBIGUOUS", "Reference matches more than one resource")
)

// FieldViolation describes one failed check on one input field
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every violated field of an input. It is produced
// before any side effect and reported back to the caller as a normal result.
type ValidationError struct {
	Fields []FieldViolation `json:"fields"`
}

// NewValidationError creates a validation error from the given violations
func NewValidationError(fields ...FieldViolation) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Add appends a violation
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldViolation{Field: field, Message: message})
}

// HasErrors reports whether any violation was recorded
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// Error renders one line per violation: "- field: message"
func (e *ValidationError) Error() string {
	lines := make([]string, 0, len(e.Fields)+1)
	lines = append(lines, "Invalid input:")
	for _, f := range e.Fields {
		lines = append(lines, fmt.Sprintf("- %s: %s", f.Field, f.Message))
	}
	return strings.Join(lines, "\n")
}

// Is lets errors.Is(err, ErrInvalidInput) match validation errors
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
