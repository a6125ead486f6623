package errpage

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bulwark-go/bulwark/pkg/apperr"
)

func TestRenderHTML(t *testing.T) {
	req := httptest.NewRequest("GET", "/projects/9", nil)
	rec := httptest.NewRecorder()

	Render(rec, req, apperr.NewNotFoundError(), nil, false)

	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "NotFoundError") || !strings.Contains(body, "This could not be found") {
		t.Errorf("body missing error details: %s", body)
	}
}

func TestRenderJSONForAPIClients(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/projects/9", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	Render(rec, req, apperr.NewAuthorizationError(), nil, false)

	if rec.Code != 403 {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"name":"AuthorizationError"`) {
		t.Errorf("body = %s", body)
	}
}

func TestRenderRedirect(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()

	Render(rec, req, apperr.NewRedirectError("/login"), nil, false)

	if rec.Code != 302 {
		t.Errorf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestDevModeDetail(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	err := apperr.Internal(cause)
	stack := []byte("goroutine 1 [running]:\nmain.main()")

	req := httptest.NewRequest("GET", "/", nil)

	rec := httptest.NewRecorder()
	Render(rec, req, err, stack, true)
	body := rec.Body.String()
	if !strings.Contains(body, "relation does not exist") {
		t.Error("dev mode should show the cause")
	}
	if !strings.Contains(body, "goroutine 1") {
		t.Error("dev mode should show the stack")
	}

	rec = httptest.NewRecorder()
	Render(rec, req, err, stack, false)
	body = rec.Body.String()
	if strings.Contains(body, "relation does not exist") || strings.Contains(body, "goroutine 1") {
		t.Error("production mode must not leak cause or stack")
	}
}

func TestWantsJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/thing", nil)
	req.Header.Set("Content-Type", "application/json")
	if !WantsJSON(req) {
		t.Error("JSON request bodies expect JSON responses")
	}

	req = httptest.NewRequest("GET", "/page", nil)
	req.Header.Set("Accept", "text/html")
	if WantsJSON(req) {
		t.Error("HTML requests should get HTML")
	}
}

func TestFormatText(t *testing.T) {
	err := apperr.NewNotFoundError().Wrap(errors.New("row missing"))
	got := FormatText(err)
	want := "NotFoundError (404): This could not be found: row missing"
	if got != want {
		t.Errorf("FormatText = %q, want %q", got, want)
	}
}
