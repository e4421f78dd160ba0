// Package apperror defines the typed errors returned by handlers and
// middleware. Every error carries a kind that maps to an HTTP status, a
// client-facing message and an optional per-field detail payload. The echo
// error handler in this package translates them into the response envelope.
package apperror

import "net/http"

// Kind classifies an error into the taxonomy used across the API.
type Kind int

const (
	KindValidation Kind = iota // malformed or missing input
	KindUnauthorized           // missing/invalid/expired token, bad credentials
	KindForbidden              // role or permission denied
	KindNotFound               // resource does not exist
	KindConflict               // uniqueness violation
	KindInternal               // everything else
)

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the tagged error variant passed up from handlers to the boundary.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string // optional validation detail, keyed by field
	Err     error             // wrapped cause, never shown to clients
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation returns a 400 error with per-field messages.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Unauthorized returns a 401 error.
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// Forbidden returns a 403 error.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// NotFound returns a 404 error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Conflict returns a 409 error.
func Conflict(message string) *Error { return New(KindConflict, message) }

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
