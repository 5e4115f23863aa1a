package apperr

// Package apperr defines the application error taxonomy. Every error that
// crosses the HTTP boundary is one of these, carrying a machine-readable
// code and a human-readable message. Provider-specific details stay in the
// wrapped cause, which is logged server-side and never serialized.

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a classified application error.
type Error struct {
	Code    string // stable machine-readable code, e.g. "INVALID_QUESTION"
	Message string // safe for response bodies
	Status  int    // HTTP status
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches an underlying error for server-side logs.
func (e *Error) WithCause(cause error) *Error {
	clone := *e
	clone.cause = cause
	return &clone
}

func newError(status int, code, message string) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

// Validation failures (400). Terminal, never retried.
func InvalidRequest(message string) *Error {
	return newError(http.StatusBadRequest, "INVALID_REQUEST", message)
}

func InvalidQuestion(message string) *Error {
	return newError(http.StatusBadRequest, "INVALID_QUESTION", message)
}

// Unauthorized covers missing, invalid, or expired tokens (401).
func Unauthorized(message string) *Error {
	return newError(http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Forbidden covers a valid identity with insufficient role (403). Terminal.
func Forbidden(message string) *Error {
	return newError(http.StatusForbidden, "FORBIDDEN", message)
}

// GatewayMalformed marks an unexpected response shape from an intermediary,
// such as an HTML error page where JSON was promised (502).
func GatewayMalformed(message string) *Error {
	return newError(http.StatusBadGateway, "GATEWAY_ERROR", message)
}

// Unavailable covers unreachable or erroring dependencies: object store,
// generative model, identity directory (503).
func Unavailable(message string) *Error {
	return newError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message)
}

// Misconfigured marks a dependency that cannot be used because required
// configuration is absent (503).
func Misconfigured(message string) *Error {
	return newError(http.StatusServiceUnavailable, "CONFIGURATION_ERROR", message)
}

// Internal is the catch-all (500).
func Internal(message string) *Error {
	return newError(http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// From classifies an arbitrary error. Already-classified errors pass
// through; anything else becomes INTERNAL_ERROR with a generic message so
// internals never leak into response bodies.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("an unexpected error occurred").WithCause(err)
}
