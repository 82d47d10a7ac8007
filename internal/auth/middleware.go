package auth

import (
	"context"
	"net/http"

	"github.com/redmonkez12/go-blog-auth/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const SessionContextKey ContextKey = "user_session"

// Middleware guards routes that need a logged-in user
type Middleware struct {
	sessions SessionManager
}

func NewMiddleware(sessions SessionManager) *Middleware {
	return &Middleware{sessions: sessions}
}

// RequireSession rejects requests without a valid session and puts the session
// into the request context otherwise
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := m.sessions.Get(r)
		if !ok {
			httputil.RespondErrorWithCode(w, "missing or invalid session", httputil.CodeMissingSession, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// WithSession stores session in ctx
func WithSession(ctx context.Context, session *UserSession) context.Context {
	return context.WithValue(ctx, SessionContextKey, session)
}

// GetSessionFromContext extracts the session placed by RequireSession
func GetSessionFromContext(ctx context.Context) (*UserSession, bool) {
	session, ok := ctx.Value(SessionContextKey).(*UserSession)
	return session, ok && session != nil
}
