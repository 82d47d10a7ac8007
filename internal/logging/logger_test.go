package logging

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(&buf, true)

	log.WithFields(map[string]any{"user_id": 7, "email": "park@email.com"}).Info("hello", "k", "v")

	out := buf.String()
	for _, s := range []string{"level=INFO", "msg=hello", "user_id=7", "email=park@email.com", "k=v"} {
		assert.Contains(t, out, s)
	}
}

func TestLogger_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(&buf, false)

	log.Debug("hidden")
	log.Info("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
}

func TestErrorAttrs(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		attrs := ErrorAttrs(errors.New("boom"))
		assert.Equal(t, []any{"error", "boom"}, attrs)
	})

	t.Run("oops error carries code and context", func(t *testing.T) {
		err := oops.Code("USER_NOT_FOUND").With("email", "e@x.com").Errorf("user not found")
		attrs := ErrorAttrs(err)
		require.GreaterOrEqual(t, len(attrs), 4)
		assert.Equal(t, "error", attrs[0])
		assert.Contains(t, attrs, "code")
		assert.Contains(t, attrs, "context")
	})

	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, ErrorAttrs(nil))
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerWithWriter(&buf, true)

	var fromCtx *Logger
	handler := middleware.RequestID(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = GetLoggerFromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/9", nil))

	require.NotNil(t, fromCtx)
	assert.NotSame(t, log, fromCtx)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	out := buf.String()
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "status=404")
	assert.Contains(t, out, "path=/users/9")
}

func TestGetLoggerFromContext_Fallback(t *testing.T) {
	assert.NotNil(t, GetLoggerFromContext(context.Background()))
}
