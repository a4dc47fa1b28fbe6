package shared

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches domain errors by code so wrapped variants compare equal to the sentinels
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes shared by all bounded contexts
const (
	CodeNotFound      = "NOT_FOUND"
	CodeAlreadyExists = "ALREADY_EXISTS"
	CodeValidation    = "VALIDATION_ERROR"
	CodePersistence   = "PERSISTENCE_ERROR"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInvalidInput  = "INVALID_INPUT"
)

// Common domain errors
var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput  = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrValidation    = NewDomainError(CodeValidation, "Validation failed")
	ErrPersistence   = NewDomainError(CodePersistence, "Database operation failed")
	ErrUnauthorized  = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
)

// NewValidationError reports missing or empty required fields.
func NewValidationError(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// NewPersistenceError wraps a failed database operation. The cause stays
// reachable through errors.Unwrap but is not shown to API clients.
func NewPersistenceError(op string, cause error) *DomainError {
	return &DomainError{
		Code:    CodePersistence,
		Message: "failed to " + op,
		cause:   cause,
	}
}

// NewNotFoundError reports a referenced id that does not exist.
func NewNotFoundError(resource string) *DomainError {
	return NewDomainError(CodeNotFound, resource+" not found")
}

// IsNotFound reports whether err is (or wraps) a not-found domain error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is (or wraps) a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsPersistence reports whether err is (or wraps) a persistence error
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
