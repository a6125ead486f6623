package auth

import (
	"net/http"

	"github.com/bulwark-go/bulwark/pkg/apperr"
	"github.com/bulwark-go/bulwark/pkg/boundary"
)

// RequireAuth is middleware that requires an authenticated user.
// Unauthenticated requests throw an AuthenticationError to the nearest
// boundary.
//
// Usage with chi:
//
//	r.Group(func(r chi.Router) {
//	    r.Use(auth.RequireAuth)
//	    r.Get("/dashboard", dashboardHandler)
//	})
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAuthenticated(r.Context()) {
			boundary.Throw(apperr.NewAuthenticationError())
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that requires a specific role.
// The check function receives the user and returns true if authorized.
// A missing user throws AuthenticationError; a failed check throws
// AuthorizationError.
//
// Usage:
//
//	r.Use(auth.RequireRole(func(u *models.User) bool {
//	    return u.Role == "admin"
//	}))
func RequireRole[T any](check func(T) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := Get[T](r.Context())
			if !ok {
				boundary.Throw(apperr.NewAuthenticationError())
			}
			if !check(user) {
				boundary.Throw(apperr.NewAuthorizationError())
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission returns middleware that checks for a specific
// permission. Semantically equivalent to RequireRole but communicates
// intent better for permission-based authorization.
//
// Usage:
//
//	auth.RequirePermission(func(u *models.User) bool {
//	    return u.Can("projects.delete")
//	})
func RequirePermission[T any](check func(T) bool) func(http.Handler) http.Handler {
	return RequireRole(check)
}

// RequireAny returns middleware that requires at least one of the
// checks to pass.
//
// Usage:
//
//	auth.RequireAny(
//	    func(u *User) bool { return u.IsAdmin },
//	    func(u *User) bool { return u.IsOwner },
//	)
func RequireAny[T any](checks ...func(T) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := Get[T](r.Context())
			if !ok {
				boundary.Throw(apperr.NewAuthenticationError())
			}
			for _, check := range checks {
				if check(user) {
					next.ServeHTTP(w, r)
					return
				}
			}
			boundary.Throw(apperr.NewAuthorizationError())
		})
	}
}

// RequireAll returns middleware that requires all checks to pass.
//
// Usage:
//
//	auth.RequireAll(
//	    func(u *User) bool { return u.IsActive },
//	    func(u *User) bool { return u.EmailVerified },
//	)
func RequireAll[T any](checks ...func(T) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := Get[T](r.Context())
			if !ok {
				boundary.Throw(apperr.NewAuthenticationError())
			}
			for _, check := range checks {
				if !check(user) {
					boundary.Throw(apperr.NewAuthorizationError())
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
