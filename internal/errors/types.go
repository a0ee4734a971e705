// Package errors defines the structured error taxonomy used across codetour.
//
// Every failure a page can hit degrades to a visible but non-crashing state:
// fetch failures become placeholder text, malformed line ranges become
// warnings, and a missing selection store becomes a no-op. The TourError type
// carries enough context for the logging package to emit structured fields.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeFetch      ErrorType = "fetch"
	ErrorTypeStore      ErrorType = "store"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeInvalidRange    = "INVALID_RANGE"
	ErrCodeFetchFailed     = "FETCH_FAILED"
	ErrCodeMissingStore    = "MISSING_STORE"
	ErrCodeInvalidPath     = "INVALID_PATH"
	ErrCodePathTraversal   = "PATH_TRAVERSAL"
	ErrCodeTourNotFound    = "TOUR_NOT_FOUND"
	ErrCodeTourInvalid     = "TOUR_INVALID"
	ErrCodeUnknownRef      = "UNKNOWN_REFERENCE"
	ErrCodeSessionNotFound = "SESSION_NOT_FOUND"
	ErrCodeConfigInvalid   = "CONFIG_INVALID"
	ErrCodeReadFailed      = "READ_FAILED"
	ErrCodeInternal        = "INTERNAL"
)

// TourError is a structured error type with context.
type TourError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Path        string
	Recoverable bool
}

// Error implements the error interface.
func (e *TourError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *TourError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a TourError with the same type and code.
func (e *TourError) Is(target error) bool {
	var t *TourError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *TourError) WithContext(key string, value interface{}) *TourError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the file or tour path the error relates to.
func (e *TourError) WithPath(path string) *TourError {
	e.Path = path

	return e
}

// NewValidationError creates a validation error. Malformed line ranges are
// reported this way.
func NewValidationError(code, message string) *TourError {
	return &TourError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewFetchError creates a fetch error for a file that could not be loaded.
func NewFetchError(path string, cause error) *TourError {
	return &TourError{
		Type:        ErrorTypeFetch,
		Code:        ErrCodeFetchFailed,
		Message:     "failed to load file content",
		Cause:       cause,
		Path:        path,
		Recoverable: true,
	}
}

// NewStoreError creates an error describing a missing selection store.
func NewStoreError(operation string) *TourError {
	return &TourError{
		Type:        ErrorTypeStore,
		Code:        ErrCodeMissingStore,
		Message:     "no selection store bound for " + operation,
		Recoverable: true,
	}
}

// NewSecurityError creates a security error.
func NewSecurityError(code, message string) *TourError {
	return &TourError{
		Type:        ErrorTypeSecurity,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *TourError {
	return &TourError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *TourError {
	return &TourError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *TourError {
	return &TourError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var te *TourError
	if errors.As(err, &te) {
		return te.Recoverable
	}

	return false
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsFetchError checks if an error is a fetch error.
func IsFetchError(err error) bool {
	return hasType(err, ErrorTypeFetch)
}

// IsSecurityError checks if an error is security-related.
func IsSecurityError(err error) bool {
	return hasType(err, ErrorTypeSecurity)
}

// IsStoreError checks if an error reports a missing selection store.
func IsStoreError(err error) bool {
	return hasType(err, ErrorTypeStore)
}

func hasType(err error, t ErrorType) bool {
	var te *TourError
	if errors.As(err, &te) {
		return te.Type == t
	}

	return false
}

// ErrInvalidRange creates the validation error for a malformed range token.
func ErrInvalidRange(token, reason string) *TourError {
	return NewValidationError(ErrCodeInvalidRange, fmt.Sprintf("invalid line range %q: %s", token, reason)).
		WithContext("token", token)
}

// ErrPathTraversal creates a path traversal security error.
func ErrPathTraversal(path string) *TourError {
	return NewSecurityError(ErrCodePathTraversal, "path traversal attempt: "+path)
}

// ErrInvalidPath creates a path validation error.
func ErrInvalidPath(path string) *TourError {
	return NewValidationError(ErrCodeInvalidPath, "invalid path: "+path)
}

// ErrTourNotFound creates a not-found error for a tour slug.
func ErrTourNotFound(slug string) *TourError {
	return NewValidationError(ErrCodeTourNotFound, "tour not found: "+slug)
}

// ErrSessionNotFound creates a not-found error for a page session.
func ErrSessionNotFound(id string) *TourError {
	return NewValidationError(ErrCodeSessionNotFound, "session not found: "+id)
}

// ErrTourInvalid creates the validation error for a tour document that
// cannot be used.
func ErrTourInvalid(slug, reason string, cause error) *TourError {
	err := NewValidationError(ErrCodeTourInvalid, "invalid tour "+slug+": "+reason).
		WithContext("slug", slug)
	err.Cause = cause
	return err
}

// ErrUnknownReference reports an event for a reference the session does
// not own.
func ErrUnknownReference(id int64) *TourError {
	return NewValidationError(ErrCodeUnknownRef, fmt.Sprintf("unknown reference %d", id))
}
