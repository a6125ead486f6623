package apperr

import "net/http"

// Names of the built-in error kinds. Use these when registering
// fallbacks or checking kinds with IsNamed.
const (
	// NameError is the generic kind unexpected failures flatten to.
	NameError = "Error"

	NameAuthentication    = "AuthenticationError"
	NameCSRFTokenMismatch = "CSRFTokenMismatchError"
	NameAuthorization     = "AuthorizationError"
	NameNotFound          = "NotFoundError"
	NameRedirect          = "RedirectError"
)

// Default messages for the built-in kinds.
const (
	defaultAuthenticationMessage    = "You must be logged in to access this"
	defaultCSRFTokenMismatchMessage = "CSRF token does not match"
	defaultAuthorizationMessage     = "You are not authorized to access this"
	defaultNotFoundMessage          = "This could not be found"
)

// RedirectURLKey is the Data key carrying a RedirectError's target.
const RedirectURLKey = "url"

// NewAuthenticationError creates a 401 AuthenticationError.
// Thrown when a request requires a logged-in user and none is present.
// A provided message replaces the default, even when empty.
//
//	return apperr.NewAuthenticationError()
//	return apperr.NewAuthenticationError("Log in to view this project")
func NewAuthenticationError(message ...string) *Error {
	return builtin(NameAuthentication, http.StatusUnauthorized, defaultAuthenticationMessage, message)
}

// NewCSRFTokenMismatchError creates a 401 CSRFTokenMismatchError.
// Thrown when the anti-CSRF token submitted with a request does not
// match the token bound to the session.
func NewCSRFTokenMismatchError(message ...string) *Error {
	return builtin(NameCSRFTokenMismatch, http.StatusUnauthorized, defaultCSRFTokenMismatchMessage, message)
}

// NewAuthorizationError creates a 403 AuthorizationError.
// Thrown when the user is authenticated but lacks permission.
func NewAuthorizationError(message ...string) *Error {
	return builtin(NameAuthorization, http.StatusForbidden, defaultAuthorizationMessage, message)
}

// NewNotFoundError creates a 404 NotFoundError.
func NewNotFoundError(message ...string) *Error {
	return builtin(NameNotFound, http.StatusNotFound, defaultNotFoundMessage, message)
}

// NewRedirectError creates a 302 RedirectError pointing at url.
// Boundaries translate it into an HTTP redirect instead of a fallback
// view. The target survives serialization: "url" is allow-listed for
// this kind.
func NewRedirectError(url string) *Error {
	e := New(NameRedirect, http.StatusFound, "Redirecting")
	return e.WithData(RedirectURLKey, url)
}

func builtin(name string, statusCode int, defaultMessage string, override []string) *Error {
	msg := defaultMessage
	if len(override) > 0 {
		msg = override[0]
	}
	return New(name, statusCode, msg)
}

// BuiltinNames returns the names of all built-in kinds in taxonomy
// order. Used by the CLI to print the kinds table.
func BuiltinNames() []string {
	return []string{
		NameAuthentication,
		NameCSRFTokenMismatch,
		NameAuthorization,
		NameNotFound,
		NameRedirect,
	}
}

// Builtin constructs a built-in kind by name with its default message.
// Returns (nil, false) for unknown names.
func Builtin(name string) (*Error, bool) {
	switch name {
	case NameAuthentication:
		return NewAuthenticationError(), true
	case NameCSRFTokenMismatch:
		return NewCSRFTokenMismatchError(), true
	case NameAuthorization:
		return NewAuthorizationError(), true
	case NameNotFound:
		return NewNotFoundError(), true
	case NameRedirect:
		return New(NameRedirect, http.StatusFound, "Redirecting"), true
	case NameError:
		return New(NameError, http.StatusInternalServerError, "Internal server error"), true
	default:
		return nil, false
	}
}
