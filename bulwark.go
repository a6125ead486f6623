// Package bulwark wires error handling for server-driven Go web apps:
// a small taxonomy of named HTTP errors, boundaries that catch thrown
// errors and render per-kind fallback views, a default-deny serializer
// for shipping errors across process boundaries, and observability
// middleware.
//
// Minimal usage:
//
//	app := bulwark.New(bulwark.Config{DevMode: dev})
//	defer app.Close()
//
//	r := chi.NewRouter()
//	r.Use(app.Middleware()...)
//	r.Get("/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
//	    project, err := load(r)
//	    if err != nil {
//	        bulwark.Throw(bulwark.NewNotFoundError())
//	    }
//	    render(w, project)
//	})
package bulwark

import (
	"log/slog"
	"net/http"

	"github.com/bulwark-go/bulwark/pkg/apperr"
	"github.com/bulwark-go/bulwark/pkg/boundary"
	"github.com/bulwark-go/bulwark/pkg/middleware"
	"github.com/bulwark-go/bulwark/pkg/report"
	"github.com/bulwark-go/bulwark/pkg/serialize"
)

// Error is the framework error record. See pkg/apperr.
type Error = apperr.Error

// Constructors for the built-in error kinds, re-exported so most apps
// only import the root package.
var (
	NewError               = apperr.New
	NewAuthenticationError = apperr.NewAuthenticationError
	NewCSRFTokenMismatch   = apperr.NewCSRFTokenMismatchError
	NewAuthorizationError  = apperr.NewAuthorizationError
	NewNotFoundError       = apperr.NewNotFoundError
	NewRedirectError       = apperr.NewRedirectError
)

// Throw raises an error to the nearest boundary. See pkg/boundary.
func Throw(err error) {
	boundary.Throw(err)
}

// RegisterErrorKind adds a custom kind to the default serializer
// registry so it survives process boundaries with its identity intact.
// See pkg/serialize for field allow-listing and factories.
func RegisterErrorKind(name string, opts ...serialize.Option) {
	serialize.Register(name, opts...)
}

// App bundles the root boundary, observability middleware, and the
// reporting pipeline behind one handle.
//
// Create an App with bulwark.New():
//
//	app := bulwark.New(bulwark.Config{
//	    DevMode:  os.Getenv("ENV") != "production",
//	    Reporter: report.NewS3Reporter(s3Client, "errors", "prod/"),
//	})
type App struct {
	config Config
	logger *slog.Logger
	root   *boundary.Boundary
	queue  *report.Queue
}

// New creates a new application with the given configuration.
func New(cfg Config) *App {
	cfg = cfg.withDefaults()

	app := &App{
		config: cfg,
		logger: cfg.Logger,
	}

	opts := []boundary.Option{boundary.WithLogger(cfg.Logger)}
	for name, fb := range cfg.Fallbacks {
		opts = append(opts, boundary.WithFallback(name, fb))
	}
	if cfg.Reporter != nil {
		app.queue = report.NewQueue(cfg.Reporter, report.QueueConfig{Logger: cfg.Logger})
		opts = append(opts, boundary.WithObserver(app.queue.Observer(cfg.ReportMinStatus)))
	}
	app.root = boundary.Root(cfg.DevMode, opts...)

	return app
}

// Root returns the root boundary for mounting nested boundaries or
// direct ServeError calls.
func (a *App) Root() *boundary.Boundary {
	return a.root
}

// Middleware returns the app's middleware chain, outermost first:
// tracing, then metrics, then the root boundary, then CSRF protection
// if configured. CSRF sits inside the boundary so its failures render
// like any other error. Pass it to chi's Use:
//
//	r.Use(app.Middleware()...)
func (a *App) Middleware() []func(http.Handler) http.Handler {
	var chain []func(http.Handler) http.Handler
	if !a.config.DisableTracing {
		chain = append(chain, middleware.OpenTelemetry(a.config.TracingOptions...))
	}
	if !a.config.DisableMetrics {
		chain = append(chain, middleware.Prometheus(a.config.MetricsOptions...))
	}
	chain = append(chain, a.root.Middleware)
	if a.config.CSRF != nil && !a.config.DevMode {
		chain = append(chain, a.config.CSRF.Protect)
	}
	return chain
}

// ServeError renders err through the root boundary outside the normal
// throw path. Useful in custom 404 handlers:
//
//	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
//	    app.ServeError(w, r, bulwark.NewNotFoundError())
//	})
func (a *App) ServeError(w http.ResponseWriter, r *http.Request, err error) {
	a.root.ServeError(w, r, err)
}

// Handler adapts an error-returning handler; non-nil errors are thrown
// to the nearest boundary.
func Handler(h func(w http.ResponseWriter, r *http.Request) error) http.Handler {
	return boundary.Wrap(h)
}

// Close flushes pending error reports and releases the reporter.
func (a *App) Close() error {
	if a.queue != nil {
		return a.queue.Close()
	}
	return nil
}
