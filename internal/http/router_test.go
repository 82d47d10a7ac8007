package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-blog-auth/internal/auth"
	"github.com/redmonkez12/go-blog-auth/internal/config"
	"github.com/redmonkez12/go-blog-auth/internal/logging"
)

func newTestRouter(t *testing.T, env string) http.Handler {
	t.Helper()

	tokens, err := auth.NewPasetoService([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	sessions := auth.NewCookieSessionManager(tokens, "session", time.Hour, false)

	reg := prometheus.NewRegistry()
	auth.NewMetrics(reg)

	cfg := &config.Config{Server: config.ServerConfig{Env: env, TrustedOrigins: []string{"http://localhost:3000"}}}
	return NewRouter(
		cfg,
		auth.NewHandler(nil, sessions, nil),
		auth.NewMiddleware(sessions),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		logging.NewLoggerWithWriter(io.Discard, false),
	)
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(t, "prod")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"api is running"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t, "prod")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SessionRequired(t *testing.T) {
	router := newTestRouter(t, "prod")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/1"},
		{http.MethodPatch, "/users/1"},
		{http.MethodDelete, "/users/1"},
		{http.MethodGet, "/auth"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	}
}

func TestRouter_SwaggerOnlyInDevelopment(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, "prod").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CORS(t *testing.T) {
	router := newTestRouter(t, "prod")

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
