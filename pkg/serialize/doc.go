// Package serialize moves application errors across the server/client
// boundary.
//
// Errors are transported as a flat JSON envelope carrying the kind
// name, HTTP status, message, and allow-listed extra data. The
// receiving side reconstructs the original kind from the registry, so
// a fallback registered for "TrialExpiredError" on the client fires
// for a TrialExpiredError thrown on the server.
//
// Custom kinds must be registered before they cross the boundary, and
// every extra data field they carry must be explicitly allow-listed:
//
//	serialize.Register("TrialExpiredError", serialize.WithFields("expiredAt"))
//
// Anything not registered or not allow-listed is stripped. This is a
// deliberate default-deny policy: an error created deep in server code
// may carry internal state that must never reach a browser.
package serialize
