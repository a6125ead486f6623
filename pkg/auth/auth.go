package auth

import (
	"context"
	"log/slog"
	"reflect"

	"github.com/bulwark-go/bulwark/pkg/apperr"
)

// Session provides minimal session access needed by auth helpers.
// Any session store with string-keyed values satisfies it.
type Session interface {
	Get(key string) any
	Set(key string, value any)
	Delete(key string)
}

// DebugMode enables extra validation and logging for development.
var DebugMode bool

// SessionKey is the standard session key for the authenticated user.
const SessionKey = "bulwark_auth_user"

type userKey struct{}

// ContextWithUser returns a context carrying the authenticated user.
// Authentication middleware calls this after validating credentials;
// handlers read the user back with Get or Require.
func ContextWithUser(ctx context.Context, user any) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the raw user value, or nil if the request is
// not authenticated. Prefer the typed Get and Require helpers.
func UserFromContext(ctx context.Context) any {
	return ctx.Value(userKey{})
}

// Get retrieves the authenticated user from the context.
//
// Returns (user, true) if authenticated, (zero, false) otherwise.
//
// In debug mode, logs a warning if a value exists but type assertion
// fails, helping developers catch common value/pointer mismatches.
//
// Example:
//
//	user, ok := auth.Get[*models.User](r.Context())
//	if !ok {
//	    // User not authenticated
//	}
func Get[T any](ctx context.Context) (T, bool) {
	val := UserFromContext(ctx)
	if val == nil {
		var zero T
		return zero, false
	}

	if user, ok := val.(T); ok {
		return user, true
	}

	// Only runs if a value exists but the assertion failed.
	if DebugMode {
		storedType := reflect.TypeOf(val)
		var zero T
		requestedType := reflect.TypeOf(zero)
		if requestedType == nil {
			// T is an interface type, get it differently
			requestedType = reflect.TypeOf((*T)(nil)).Elem()
		}

		slog.Warn("bulwark/auth: type mismatch",
			"stored_type", storedType,
			"requested_type", requestedType,
			"hint", "Did you store a struct (User) but request a pointer (*User)?",
		)
	}

	var zero T
	return zero, false
}

// Require returns the authenticated user or an AuthenticationError.
// Use in handlers that require authentication:
//
//	func DeleteProject(w http.ResponseWriter, r *http.Request) error {
//	    user, err := auth.Require[*models.User](r.Context())
//	    if err != nil {
//	        return err
//	    }
//	    // ...
//	}
func Require[T any](ctx context.Context) (T, error) {
	user, ok := Get[T](ctx)
	if !ok {
		return user, apperr.NewAuthenticationError()
	}
	return user, nil
}

// MustGet is like Get but panics if authentication fails.
// Use sparingly, prefer Require for proper error handling.
func MustGet[T any](ctx context.Context) T {
	user, ok := Get[T](ctx)
	if !ok {
		panic("auth.MustGet: user not authenticated")
	}
	return user
}

// IsAuthenticated returns whether the context has an authenticated user.
func IsAuthenticated(ctx context.Context) bool {
	return UserFromContext(ctx) != nil
}

// Set stores the authenticated user in the session.
// Call from a login handler after validating credentials.
func Set[T any](session Session, user T) {
	if isNilSession(session) {
		return
	}
	session.Set(SessionKey, user)
}

// Clear removes the authenticated user from the session.
// Call this on logout.
func Clear(session Session) {
	if isNilSession(session) {
		return
	}
	session.Delete(SessionKey)
}

// FromSession reads the stored user from a session and attaches it to
// the context. Session-loading middleware calls this so that Get and
// Require see the user on subsequent requests.
func FromSession(ctx context.Context, session Session) context.Context {
	if isNilSession(session) {
		return ctx
	}
	user := session.Get(SessionKey)
	if user == nil {
		return ctx
	}
	return ContextWithUser(ctx, user)
}

func isNilSession(session Session) bool {
	if session == nil {
		return true
	}
	v := reflect.ValueOf(session)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Map, reflect.Ptr, reflect.Interface, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
