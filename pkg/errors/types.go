package errors

import (
	"fmt"
	"net/http"
)

// Error is a structured error with a code, message, and optional cause. It
// implements the standard error interface and carries enough context for
// logging, API responses, and error-chain inspection.
//
// Error values are immutable after creation and safe to share.
type Error struct {
	// Code is the machine-readable error code (e.g. "AUTH_003").
	Code Code

	// Message is the human-readable error message. It may be returned to
	// clients and must not contain sensitive detail such as key paths or
	// which verification check failed.
	Message string

	// Cause is the underlying error, if any. Use Unwrap to access it.
	Cause error

	// Details holds additional structured data about the error, such as
	// the offending field name or a resource identifier.
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, supporting errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code implied by the error's category.
func (e *Error) HTTPStatus() int {
	switch e.Code.Category() {
	case "VAL":
		return http.StatusBadRequest
	case "AUTH":
		return http.StatusUnauthorized
	case "AUTHZ":
		return http.StatusForbidden
	case "NF":
		return http.StatusNotFound
	case "CONF":
		return http.StatusConflict
	case "UNAVAIL":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithDetail returns a new Error with one detail key-value pair added.
// The receiver is not modified.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Cause:   e.Cause,
		Details: details,
	}
}
