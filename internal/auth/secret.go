// Package auth implements the single shared-secret admin gate. There is no
// identity, no session table and no role model: one operator, one secret.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

const (
	CookieName   = "admin_token"
	CookieMaxAge = 8 * time.Hour
)

type Gate struct {
	secret string
	secure bool
}

// NewGate returns a gate for the configured secret. An empty secret rejects
// every credential.
func NewGate(secret string, secureCookies bool) *Gate {
	return &Gate{secret: secret, secure: secureCookies}
}

// Configured reports whether a secret is set.
func (g *Gate) Configured() bool {
	return g.secret != ""
}

// CheckPassword compares a submitted password with the secret.
func (g *Gate) CheckPassword(password string) bool {
	return g.matches(password)
}

// Authorized checks the admin cookie first, then an "Authorization: Bearer"
// header.
func (g *Gate) Authorized(r *http.Request) bool {
	if !g.Configured() {
		return false
	}
	if c, err := r.Cookie(CookieName); err == nil && g.matches(c.Value) {
		return true
	}
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && g.matches(token) {
		return true
	}
	return false
}

func (g *Gate) matches(candidate string) bool {
	if g.secret == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(g.secret)) == 1
}

// SetSessionCookie issues the admin cookie carrying the secret.
func (g *Gate) SetSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, g.cookie(g.secret, int(CookieMaxAge/time.Second)))
}

// ClearSessionCookie overwrites the admin cookie with an expired empty value.
func (g *Gate) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, g.cookie("", -1))
}

func (g *Gate) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
