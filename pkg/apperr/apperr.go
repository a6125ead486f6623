package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a named application error with an HTTP status code.
// It implements the error interface and supports errors.Is/As through
// Unwrap. Treat an Error as immutable once it has been handed off:
// the fluent builders are for construction only.
type Error struct {
	// Name uniquely identifies the error kind. Boundaries and the
	// cross-boundary serializer dispatch on this value.
	Name string

	// StatusCode is the HTTP status associated with this kind.
	StatusCode int

	// Message is the human-readable text. Each kind has a default
	// that can be overridden at construction.
	Message string

	// Data holds extra properties attached to the error. Only
	// allow-listed keys survive serialization (see pkg/serialize).
	Data map[string]any

	// Err is the optional underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Name + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Name + ": " + e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithData attaches an extra property to the error.
// Returns the error for chaining.
func (e *Error) WithData(key string, value any) *Error {
	if e.Data == nil {
		e.Data = make(map[string]any)
	}
	e.Data[key] = value
	return e
}

// Wrap records an underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// Get returns an extra property by key.
func (e *Error) Get(key string) (any, bool) {
	v, ok := e.Data[key]
	return v, ok
}

// New creates an error of a custom kind.
//
//	var errTrialExpired = apperr.New("TrialExpiredError", 403, "Your trial has expired")
func New(name string, statusCode int, message string) *Error {
	return &Error{
		Name:       name,
		StatusCode: statusCode,
		Message:    message,
	}
}

// Newf creates an error of a custom kind with a formatted message.
func Newf(name string, statusCode int, format string, args ...any) *Error {
	return &Error{
		Name:       name,
		StatusCode: statusCode,
		Message:    fmt.Sprintf(format, args...),
	}
}

// From extracts an *Error from an error chain via errors.As.
func From(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Internal flattens an arbitrary error into the generic kind used for
// unexpected failures. The original error is preserved as the cause
// but never exposed in the message sent to clients.
func Internal(err error) *Error {
	return &Error{
		Name:       NameError,
		StatusCode: http.StatusInternalServerError,
		Message:    "Internal server error",
		Err:        err,
	}
}

// StatusCode returns the HTTP status code carried by an error chain.
// Returns (code, true) when the chain contains an *Error,
// (0, false) otherwise.
//
//	if code, ok := apperr.StatusCode(err); ok {
//	    w.WriteHeader(code)
//	}
func StatusCode(err error) (int, bool) {
	if ae, ok := From(err); ok {
		return ae.StatusCode, true
	}
	return 0, false
}

// IsNamed reports whether the error chain contains an *Error of the
// given kind.
func IsNamed(err error, name string) bool {
	if ae, ok := From(err); ok {
		return ae.Name == name
	}
	return false
}

// IsAuthError reports whether the error is an authentication or
// authorization failure. CSRF mismatches count: they are rejected
// credentials as far as the client is concerned.
func IsAuthError(err error) bool {
	if ae, ok := From(err); ok {
		switch ae.Name {
		case NameAuthentication, NameAuthorization, NameCSRFTokenMismatch:
			return true
		}
	}
	return false
}
