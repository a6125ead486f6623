package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/bulwark-go/bulwark/pkg/apperr"
	"github.com/bulwark-go/bulwark/pkg/boundary"
)

// CSRFCookieName is the default name of the CSRF cookie.
const CSRFCookieName = "__bulwark_csrf"

// CSRFHeaderName is the default request header carrying the token.
const CSRFHeaderName = "X-CSRF-Token"

// CSRFFieldName is the default form field carrying the token.
const CSRFFieldName = "csrf_token"

// CSRF implements the Double Submit Cookie pattern. The token is set
// as a JS-readable cookie and must be echoed back in a header or form
// field on state-changing requests. With a Secret configured, tokens
// are additionally HMAC-signed so they cannot be minted by an attacker
// who can set cookies on a sibling subdomain.
type CSRF struct {
	// Secret enables HMAC signing of tokens. Optional but recommended.
	Secret []byte

	// CookieName overrides the default cookie name.
	CookieName string

	// HeaderName overrides the default header name.
	HeaderName string

	// FieldName overrides the default form field name.
	FieldName string

	// CookieDomain scopes the cookie to a domain. Empty means host-only.
	CookieDomain string

	// SecureCookies sets the Secure flag on the cookie.
	SecureCookies bool

	// SameSite controls the cookie SameSite mode.
	// Default: http.SameSiteLaxMode.
	SameSite http.SameSite
}

func (c *CSRF) cookieName() string {
	if c.CookieName != "" {
		return c.CookieName
	}
	return CSRFCookieName
}

func (c *CSRF) headerName() string {
	if c.HeaderName != "" {
		return c.HeaderName
	}
	return CSRFHeaderName
}

func (c *CSRF) fieldName() string {
	if c.FieldName != "" {
		return c.FieldName
	}
	return CSRFFieldName
}

// GenerateToken generates a new cryptographically secure CSRF token.
// If Secret is set, the token is HMAC-signed.
func (c *CSRF) GenerateToken() string {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		// SECURITY: Fatal on entropy failure - weak tokens are dangerous
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}

	if c.Secret == nil {
		return base64.URLEncoding.EncodeToString(nonce)
	}

	h := hmac.New(sha256.New, c.Secret)
	h.Write(nonce)
	sig := h.Sum(nil)

	// Token = nonce + signature (both base64 encoded together)
	token := make([]byte, len(nonce)+len(sig))
	copy(token[:len(nonce)], nonce)
	copy(token[len(nonce):], sig)

	return base64.URLEncoding.EncodeToString(token)
}

// SetCookie sets the CSRF cookie on the response. Call this when
// rendering a page that will make state-changing requests.
func (c *CSRF) SetCookie(w http.ResponseWriter, token string) {
	sameSite := c.SameSite
	if sameSite == 0 {
		sameSite = http.SameSiteLaxMode
	}
	cookie := &http.Cookie{
		Name:     c.cookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: false, // Must be readable by JS for Double Submit
		SameSite: sameSite,
		Secure:   c.SecureCookies,
	}
	if c.CookieDomain != "" {
		cookie.Domain = c.CookieDomain
	}
	http.SetCookie(w, cookie)
}

// TokenFromRequest extracts the submitted token from the header or,
// failing that, the form field.
func (c *CSRF) TokenFromRequest(r *http.Request) string {
	if token := r.Header.Get(c.headerName()); token != "" {
		return token
	}
	return r.PostFormValue(c.fieldName())
}

// Validate checks a submitted token against the request cookie using
// the Double Submit Cookie pattern. If Secret is set, the HMAC
// signature is verified too.
func (c *CSRF) Validate(r *http.Request, token string) bool {
	if token == "" {
		return false
	}

	cookie, err := r.Cookie(c.cookieName())
	if err != nil || cookie.Value == "" {
		return false
	}

	// First check: submitted token must match cookie (Double Submit)
	if !hmac.Equal([]byte(token), []byte(cookie.Value)) {
		return false
	}

	// Second check: if we have a secret, validate the HMAC signature
	if c.Secret != nil {
		decoded, err := base64.URLEncoding.DecodeString(token)
		if err != nil {
			return false
		}

		// Token format: 16-byte nonce + 32-byte HMAC-SHA256 signature
		if len(decoded) != 48 {
			return false
		}

		nonce := decoded[:16]
		providedSig := decoded[16:]

		h := hmac.New(sha256.New, c.Secret)
		h.Write(nonce)
		expectedSig := h.Sum(nil)

		if !hmac.Equal(providedSig, expectedSig) {
			return false
		}
	}

	return true
}

// Protect is middleware enforcing CSRF validation on state-changing
// requests. Safe methods (GET, HEAD, OPTIONS, TRACE) pass through.
// A missing or mismatched token throws CSRFTokenMismatchError to the
// nearest boundary.
func (c *CSRF) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
			next.ServeHTTP(w, r)
			return
		}

		if !c.Validate(r, c.TokenFromRequest(r)) {
			boundary.Throw(apperr.NewCSRFTokenMismatchError())
		}
		next.ServeHTTP(w, r)
	})
}
