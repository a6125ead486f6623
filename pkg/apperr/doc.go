// Package apperr defines the error taxonomy shared by every layer of a
// bulwark application.
//
// An *Error carries a Name that uniquely identifies its kind, an HTTP
// status code, a human-readable message, and optional extra Data.
// Boundaries dispatch fallbacks on Name, middleware maps errors to
// responses via StatusCode, and pkg/serialize moves them across the
// server/client boundary.
//
// Four kinds are built in:
//
//	AuthenticationError    401  "You must be logged in to access this"
//	CSRFTokenMismatchError 401  "CSRF token does not match"
//	AuthorizationError     403  "You are not authorized to access this"
//	NotFoundError          404  "This could not be found"
//
// Applications define their own kinds with New or Newf:
//
//	var errTrialExpired = apperr.New("TrialExpiredError", 403, "Your trial has expired")
package apperr
