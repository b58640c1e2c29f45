// Package apperrors provides the typed error taxonomy shared by the voting
// core and the HTTP layer, with mapping to HTTP status codes.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Type categorizes an error for response mapping and logging.
type Type string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation Type = "validation"
	// TypeAuthorization indicates a forbidden action such as a self-vote (HTTP 403)
	TypeAuthorization Type = "authorization"
	// TypeNotFound indicates a missing target entity (HTTP 404)
	TypeNotFound Type = "not_found"
	// TypeConflict indicates a unique-constraint race that survived retry (HTTP 409)
	TypeConflict Type = "conflict"
	// TypeInternal indicates a persistence or server-side failure (HTTP 500)
	TypeInternal Type = "internal"
)

// Error is a structured error with a type, message, and optional cause.
type Error struct {
	Type    Type
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the status code this error maps to.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeAuthorization:
		return http.StatusForbidden
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a validation error (HTTP 400).
func Validation(message string) *Error {
	return &Error{Type: TypeValidation, Message: message}
}

// Authorization creates an authorization error (HTTP 403).
func Authorization(message string) *Error {
	return &Error{Type: TypeAuthorization, Message: message}
}

// NotFound creates a not-found error (HTTP 404).
func NotFound(message string) *Error {
	return &Error{Type: TypeNotFound, Message: message}
}

// Conflict creates a conflict error (HTTP 409).
func Conflict(message string, cause error) *Error {
	return &Error{Type: TypeConflict, Message: message, Cause: cause}
}

// Internal wraps an unexpected failure (HTTP 500).
func Internal(message string, cause error) *Error {
	return &Error{Type: TypeInternal, Message: message, Cause: cause}
}

// IsType reports whether err is an *Error of the given type.
func IsType(err error, t Type) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// StatusOf returns the HTTP status for any error, defaulting to 500.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
