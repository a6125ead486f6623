// Package boundary intercepts errors raised while handling a request
// and renders a fallback view in place of the failed handler, instead
// of letting the whole request crash with a blank 500.
//
// A Boundary wraps a subtree of handlers as middleware. Handlers and
// middleware below it raise errors with Throw (or by returning an
// error through Wrap); the nearest enclosing boundary catches the
// error and dispatches on its kind name:
//
//	b := boundary.New(
//	    boundary.WithFallback(apperr.NameAuthentication, loginPrompt),
//	    boundary.WithFallback(apperr.NameNotFound, notFoundPage),
//	)
//	r.Use(b.Middleware)
//
// A boundary with no fallback for the error's kind and no catch-all
// re-throws to the next boundary out. Errors nothing catches reach the
// root boundary (see Root), which always renders a default fallback.
// Ordinary panics are captured with their stack and surface as the
// generic internal error kind.
package boundary
