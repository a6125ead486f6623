package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestBuiltinDefaults(t *testing.T) {
	tests := []struct {
		name       string
		err        *Error
		wantName   string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "authentication",
			err:        NewAuthenticationError(),
			wantName:   NameAuthentication,
			wantStatus: 401,
			wantMsg:    "You must be logged in to access this",
		},
		{
			name:       "csrf token mismatch",
			err:        NewCSRFTokenMismatchError(),
			wantName:   NameCSRFTokenMismatch,
			wantStatus: 401,
			wantMsg:    "CSRF token does not match",
		},
		{
			name:       "authorization",
			err:        NewAuthorizationError(),
			wantName:   NameAuthorization,
			wantStatus: 403,
			wantMsg:    "You are not authorized to access this",
		},
		{
			name:       "not found",
			err:        NewNotFoundError(),
			wantName:   NameNotFound,
			wantStatus: 404,
			wantMsg:    "This could not be found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", tt.err.Name, tt.wantName)
			}
			if tt.err.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", tt.err.StatusCode, tt.wantStatus)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestMessageOverride(t *testing.T) {
	e := NewAuthenticationError("Log in to view this project")
	if e.Message != "Log in to view this project" {
		t.Errorf("Message = %q, want override", e.Message)
	}
	if e.Name != NameAuthentication {
		t.Errorf("Name = %q, override must not change the kind", e.Name)
	}
	if e.StatusCode != 401 {
		t.Errorf("StatusCode = %d, override must not change the status", e.StatusCode)
	}

	// A provided message always wins, even an empty one.
	e = NewNotFoundError("")
	if e.Message != "" {
		t.Errorf("Message = %q, explicit empty override must be honored", e.Message)
	}
	if e.Name != NameNotFound || e.StatusCode != 404 {
		t.Errorf("kind = (%q, %d), override must not change the kind", e.Name, e.StatusCode)
	}
}

func TestError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("row not found")
	e := NewNotFoundError().Wrap(cause)

	want := "NotFoundError: This could not be found: row not found"
	if got := e.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(e, cause) {
		t.Error("errors.Is should match the wrapped cause")
	}

	plain := NewNotFoundError()
	if got := plain.Error(); got != "NotFoundError: This could not be found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestNewAndNewf(t *testing.T) {
	e := New("TrialExpiredError", 403, "Your trial has expired")
	if e.Name != "TrialExpiredError" || e.StatusCode != 403 {
		t.Errorf("New = (%q, %d)", e.Name, e.StatusCode)
	}

	e = Newf("QuotaError", 429, "quota exceeded by %d requests", 7)
	if e.Message != "quota exceeded by 7 requests" {
		t.Errorf("Newf message = %q", e.Message)
	}
}

func TestFrom(t *testing.T) {
	inner := NewAuthorizationError()
	wrapped := fmt.Errorf("handling request: %w", inner)

	got, ok := From(wrapped)
	if !ok {
		t.Fatal("From should find *Error in a wrapped chain")
	}
	if got != inner {
		t.Error("From should return the original *Error")
	}

	if _, ok := From(errors.New("plain")); ok {
		t.Error("From should not match a plain error")
	}
	if _, ok := From(nil); ok {
		t.Error("From(nil) should not match")
	}
}

func TestStatusCode(t *testing.T) {
	if code, ok := StatusCode(NewNotFoundError()); !ok || code != 404 {
		t.Errorf("StatusCode = (%d, %v), want (404, true)", code, ok)
	}
	if _, ok := StatusCode(errors.New("plain")); ok {
		t.Error("StatusCode should not match a plain error")
	}
}

func TestIsNamed(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewCSRFTokenMismatchError())
	if !IsNamed(err, NameCSRFTokenMismatch) {
		t.Error("IsNamed should match through wrapping")
	}
	if IsNamed(err, NameNotFound) {
		t.Error("IsNamed should not match a different kind")
	}
}

func TestIsAuthError(t *testing.T) {
	for _, err := range []error{
		NewAuthenticationError(),
		NewAuthorizationError(),
		NewCSRFTokenMismatchError(),
	} {
		if !IsAuthError(err) {
			t.Errorf("IsAuthError(%v) = false, want true", err)
		}
	}
	if IsAuthError(NewNotFoundError()) {
		t.Error("IsAuthError should not match NotFoundError")
	}
	if IsAuthError(nil) {
		t.Error("IsAuthError(nil) should be false")
	}
}

func TestInternal(t *testing.T) {
	cause := errors.New("db: connection refused")
	e := Internal(cause)

	if e.Name != NameError || e.StatusCode != 500 {
		t.Errorf("Internal = (%q, %d)", e.Name, e.StatusCode)
	}
	if e.Message != "Internal server error" {
		t.Errorf("Message = %q, cause must not leak into the message", e.Message)
	}
	if !errors.Is(e, cause) {
		t.Error("Internal should preserve the cause for errors.Is")
	}
}

func TestRedirectError(t *testing.T) {
	e := NewRedirectError("/login")
	if e.Name != NameRedirect || e.StatusCode != 302 {
		t.Errorf("RedirectError = (%q, %d)", e.Name, e.StatusCode)
	}
	url, ok := e.Get(RedirectURLKey)
	if !ok || url != "/login" {
		t.Errorf("Get(url) = (%v, %v)", url, ok)
	}
}

func TestWithData(t *testing.T) {
	e := New("PaymentError", 402, "Payment required").
		WithData("plan", "pro").
		WithData("amount", 49)

	if v, _ := e.Get("plan"); v != "pro" {
		t.Errorf("Data[plan] = %v", v)
	}
	if v, _ := e.Get("amount"); v != 49 {
		t.Errorf("Data[amount] = %v", v)
	}
	if _, ok := e.Get("missing"); ok {
		t.Error("Get should report missing keys")
	}
}

func TestBuiltin(t *testing.T) {
	for _, name := range BuiltinNames() {
		e, ok := Builtin(name)
		if !ok {
			t.Errorf("Builtin(%q) not found", name)
			continue
		}
		if e.Name != name {
			t.Errorf("Builtin(%q).Name = %q", name, e.Name)
		}
	}
	if _, ok := Builtin("NopeError"); ok {
		t.Error("Builtin should not know unregistered kinds")
	}
}
