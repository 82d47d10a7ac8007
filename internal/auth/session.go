package auth

import (
	"fmt"
	"net/http"
	"time"
)

// UserSession identifies the logged-in user behind a request
type UserSession struct {
	UserID    int64  `json:"user_id"`
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
}

// SessionManager reads, writes and clears the session bound to a request
type SessionManager interface {
	Get(r *http.Request) (*UserSession, bool)
	Set(w http.ResponseWriter, session UserSession) error
	Unset(w http.ResponseWriter)
}

// NewTokenService returns the session codec for format ("paseto" or "jwt")
func NewTokenService(format string, key []byte) (TokenService, error) {
	switch format {
	case "paseto":
		svc, err := NewPasetoService(key)
		if err != nil {
			return nil, err
		}
		return svc, nil
	case "jwt":
		svc, err := NewJWTService(key)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown session token format %q", format)
	}
}

// CookieSessionManager keeps the session in an HttpOnly cookie sealed by a TokenService
type CookieSessionManager struct {
	tokens     TokenService
	cookieName string
	duration   time.Duration
	secure     bool
}

// NewCookieSessionManager creates a cookie-backed session manager.
// secure should be true everywhere except local development over plain HTTP.
func NewCookieSessionManager(tokens TokenService, cookieName string, duration time.Duration, secure bool) *CookieSessionManager {
	return &CookieSessionManager{
		tokens:     tokens,
		cookieName: cookieName,
		duration:   duration,
		secure:     secure,
	}
}

// Get returns the session carried by the request cookie, if it is present and valid
func (m *CookieSessionManager) Get(r *http.Request) (*UserSession, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	session, err := m.tokens.VerifyToken(cookie.Value)
	if err != nil {
		return nil, false
	}

	return session, true
}

// Set seals session into the response cookie
func (m *CookieSessionManager) Set(w http.ResponseWriter, session UserSession) error {
	value, err := m.tokens.CreateToken(session, m.duration)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.duration.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Unset expires the session cookie
func (m *CookieSessionManager) Unset(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
