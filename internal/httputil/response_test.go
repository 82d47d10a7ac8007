package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondData(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondData(rec, true, http.StatusOK)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"data":true}`, rec.Body.String())
}

func TestRespondErrorWithCode(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithCode(rec, "user not found", CodeUserNotFound, http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "user not found", body.Error)
	assert.Equal(t, CodeUserNotFound, body.Code)
}

func TestRespondError_OmitsEmptyCode(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, "boom", http.StatusInternalServerError)

	assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
}
