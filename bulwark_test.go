package bulwark

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bulwark-go/bulwark/pkg/apperr"
	"github.com/bulwark-go/bulwark/pkg/auth"
	"github.com/bulwark-go/bulwark/pkg/boundary"
	"github.com/bulwark-go/bulwark/pkg/report"
)

func chainHandler(app *App, h http.Handler) http.Handler {
	chain := app.Middleware()
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

func jsonRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Accept", "application/json")
	return req
}

func TestAppRendersDefaultFallback(t *testing.T) {
	app := New(Config{DisableMetrics: true, DisableTracing: true})
	defer app.Close()

	h := chainHandler(app, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Throw(NewNotFoundError())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonRequest("GET", "/missing"))

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"name":"NotFoundError"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestAppCustomFallback(t *testing.T) {
	app := New(Config{
		DisableMetrics: true,
		DisableTracing: true,
		Fallbacks: map[string]boundary.Fallback{
			apperr.NameAuthentication: func(w http.ResponseWriter, r *http.Request, err *apperr.Error) {
				http.Redirect(w, r, "/login", http.StatusFound)
			},
		},
	})
	defer app.Close()

	h := chainHandler(app, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Throw(NewAuthenticationError())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/dash", nil))

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Errorf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestAppReportsServerErrors(t *testing.T) {
	sink := report.NewMemoryReporter()
	app := New(Config{
		DisableMetrics: true,
		DisableTracing: true,
		Reporter:       sink,
	})

	h := chainHandler(app, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	h.ServeHTTP(httptest.NewRecorder(), jsonRequest("GET", "/x"))

	// Client errors stay below the default threshold.
	h = chainHandler(app, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Throw(NewNotFoundError())
	}))
	h.ServeHTTP(httptest.NewRecorder(), jsonRequest("GET", "/y"))

	if err := app.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	reports := sink.Reports()
	if len(reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(reports))
	}
	if reports[0].StatusCode != 500 || reports[0].Stack == "" {
		t.Errorf("report = %+v, want 500 with stack", reports[0])
	}
}

func TestAppServeError(t *testing.T) {
	app := New(Config{DisableMetrics: true, DisableTracing: true})
	defer app.Close()

	rec := httptest.NewRecorder()
	app.ServeError(rec, jsonRequest("GET", "/x"), NewAuthorizationError())
	if rec.Code != 403 {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestHandlerAdapter(t *testing.T) {
	app := New(Config{DisableMetrics: true, DisableTracing: true})
	defer app.Close()

	h := chainHandler(app, Handler(func(w http.ResponseWriter, r *http.Request) error {
		return NewAuthenticationError("Session expired")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonRequest("GET", "/x"))

	if rec.Code != 401 {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Session expired") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestAppCSRFRendersThroughBoundary(t *testing.T) {
	app := New(Config{
		DisableMetrics: true,
		DisableTracing: true,
		CSRF:           &auth.CSRF{},
	})
	defer app.Close()

	h := chainHandler(app, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, jsonRequest("POST", "/items"))

	if rec.Code != 401 {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"name":"CSRFTokenMismatchError"`) {
		t.Errorf("body = %q", rec.Body.String())
	}

	// Dev mode skips CSRF validation entirely.
	devApp := New(Config{
		DevMode:        true,
		DisableMetrics: true,
		DisableTracing: true,
		CSRF:           &auth.CSRF{},
	})
	defer devApp.Close()

	rec = httptest.NewRecorder()
	chainHandler(devApp, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})).ServeHTTP(rec, jsonRequest("POST", "/items"))
	if rec.Code != http.StatusCreated {
		t.Errorf("dev mode status = %d, want 201", rec.Code)
	}
}

func TestDevModeLeaksOnlyInDev(t *testing.T) {
	run := func(dev bool) string {
		app := New(Config{DevMode: dev, DisableMetrics: true, DisableTracing: true})
		defer app.Close()

		h := chainHandler(app, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("secret detail")
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))
		return rec.Body.String()
	}

	if !strings.Contains(run(true), "secret detail") {
		t.Error("dev mode should show the panic value")
	}
	if strings.Contains(run(false), "secret detail") {
		t.Error("prod mode must not leak the panic value")
	}
}
