package boundary

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/bulwark-go/bulwark/internal/errpage"
	"github.com/bulwark-go/bulwark/pkg/apperr"
)

// Fallback renders the view shown in place of a failed handler.
type Fallback func(w http.ResponseWriter, r *http.Request, err *apperr.Error)

// Observer is notified when a boundary handles an error. Observers run
// before the fallback renders; use them for reporting and metrics.
type Observer func(r *http.Request, err *apperr.Error)

// thrown marks a panic raised by Throw so boundaries can tell a
// deliberate error from a crash.
type thrown struct {
	err error
}

// Throw propagates an error to the nearest enclosing boundary.
// Calling Throw outside a boundary subtree panics all the way up, the
// same way an uncaught exception would.
//
//	if !ok {
//	    boundary.Throw(apperr.NewAuthenticationError())
//	}
func Throw(err error) {
	if err == nil {
		return
	}
	panic(thrown{err: err})
}

// PanicError wraps a non-error panic caught by a boundary, preserving
// the panic value and the stack at the point of capture.
type PanicError struct {
	Panic any
	Stack []byte
}

// Error returns the panic description.
func (e *PanicError) Error() string {
	return fmt.Sprintf("boundary: handler panic: %v", e.Panic)
}

// Boundary catches errors from the handlers it wraps and renders a
// fallback keyed on the error's kind name.
type Boundary struct {
	fallbacks map[string]Fallback
	catchAll  Fallback
	observers []Observer
	logger    *slog.Logger
}

// Option configures a Boundary.
type Option func(*Boundary)

// WithFallback registers a fallback for one error kind.
func WithFallback(name string, fb Fallback) Option {
	return func(b *Boundary) {
		b.fallbacks[name] = fb
	}
}

// WithCatchAll registers a fallback for every kind without a specific
// one. A boundary without a catch-all re-throws unmatched errors.
func WithCatchAll(fb Fallback) Option {
	return func(b *Boundary) {
		b.catchAll = fb
	}
}

// WithObserver adds an observer.
func WithObserver(obs Observer) Option {
	return func(b *Boundary) {
		b.observers = append(b.observers, obs)
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Boundary) {
		b.logger = logger
	}
}

// New creates a boundary. Without a catch-all it only handles the
// kinds it has fallbacks for; everything else propagates outward.
func New(opts ...Option) *Boundary {
	b := &Boundary{
		fallbacks: make(map[string]Fallback),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Root creates a root boundary: one that always renders. Unmatched
// kinds get the default fallback (JSON envelope for API clients, HTML
// error page otherwise; dev adds cause and stack). Mount it outermost.
func Root(dev bool, opts ...Option) *Boundary {
	b := New(opts...)
	if b.catchAll == nil {
		b.catchAll = func(w http.ResponseWriter, r *http.Request, err *apperr.Error) {
			errpage.Render(w, r, err, stackOf(err), dev)
		}
	}
	return b
}

func stackOf(err *apperr.Error) []byte {
	var pe *PanicError
	if !errors.As(err, &pe) {
		return nil
	}
	return pe.Stack
}

// Middleware wraps next in this boundary. Compatible with chi's
// r.Use().
func (b *Boundary) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			var err error
			if t, ok := rec.(thrown); ok {
				err = t.err
			} else {
				err = apperr.Internal(&PanicError{Panic: rec, Stack: debug.Stack()})
			}

			b.handle(w, r, err)
		}()

		next.ServeHTTP(w, r)
	})
}

// Wrap adapts an error-returning handler. A non-nil return propagates
// to the nearest boundary, which is this one if the result is mounted
// beneath b.Middleware.
func Wrap(h func(w http.ResponseWriter, r *http.Request) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			Throw(err)
		}
	})
}

// ServeError runs an error through this boundary's dispatch directly,
// without a panic in flight. Useful for rendering errors produced
// outside the middleware chain.
func (b *Boundary) ServeError(w http.ResponseWriter, r *http.Request, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			// Re-thrown with nothing outside to catch it: render the
			// default page rather than crash the connection.
			ae := toAppError(err)
			errpage.Render(w, r, ae, stackOf(ae), false)
		}
	}()
	b.handle(w, r, err)
}

func toAppError(err error) *apperr.Error {
	if ae, ok := apperr.From(err); ok {
		return ae
	}
	return apperr.Internal(err)
}

// handle dispatches the error. Called inside the recover.
func (b *Boundary) handle(w http.ResponseWriter, r *http.Request, err error) {
	ae := toAppError(err)

	fb, ok := b.fallbacks[ae.Name]
	if !ok {
		fb = b.catchAll
	}
	if fb == nil {
		// Not ours: re-throw to the enclosing boundary.
		panic(thrown{err: err})
	}

	record(r, ae)
	for _, obs := range b.observers {
		obs(r, ae)
	}

	if ae.StatusCode >= 500 {
		b.logger.Error("request failed",
			"kind", ae.Name,
			"status", ae.StatusCode,
			"path", r.URL.Path,
			"error", errpage.FormatText(ae))
	} else {
		b.logger.Debug("request error",
			"kind", ae.Name,
			"status", ae.StatusCode,
			"path", r.URL.Path)
	}

	fb(w, r, ae)
}
