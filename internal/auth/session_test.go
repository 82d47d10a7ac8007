package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTokenServices(t *testing.T) map[string]TokenService {
	t.Helper()
	pasetoService, err := NewPasetoService(testKey)
	require.NoError(t, err)
	jwtService, err := NewJWTService(testKey)
	require.NoError(t, err)

	return map[string]TokenService{"paseto": pasetoService, "jwt": jwtService}
}

func TestTokenServices(t *testing.T) {
	session := UserSession{UserID: 5, UserEmail: "park@email.com", UserName: "park"}

	for name, svc := range newTokenServices(t) {
		t.Run(name, func(t *testing.T) {
			sealed, err := svc.CreateToken(session, time.Minute)
			require.NoError(t, err)

			got, err := svc.VerifyToken(sealed)
			require.NoError(t, err)
			assert.Equal(t, &session, got)

			expired, err := svc.CreateToken(session, -time.Minute)
			require.NoError(t, err)
			got, err = svc.VerifyToken(expired)
			assert.Error(t, err)
			assert.Nil(t, got)

			_, err = svc.VerifyToken("garbage")
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTService_Expired(t *testing.T) {
	svc, err := NewJWTService(testKey)
	require.NoError(t, err)

	expired, err := svc.CreateToken(UserSession{UserID: 5}, -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(expired)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenServices_RejectOtherKeys(t *testing.T) {
	otherKey := []byte("fedcba9876543210fedcba9876543210")
	session := UserSession{UserID: 5, UserEmail: "park@email.com", UserName: "park"}

	pasetoA, err := NewPasetoService(testKey)
	require.NoError(t, err)
	pasetoB, err := NewPasetoService(otherKey)
	require.NoError(t, err)
	sealed, err := pasetoA.CreateToken(session, time.Minute)
	require.NoError(t, err)
	_, err = pasetoB.VerifyToken(sealed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	jwtA, err := NewJWTService(testKey)
	require.NoError(t, err)
	jwtB, err := NewJWTService(otherKey)
	require.NoError(t, err)
	signed, err := jwtA.CreateToken(session, time.Minute)
	require.NoError(t, err)
	_, err = jwtB.VerifyToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServices_KeyLength(t *testing.T) {
	_, err := NewPasetoService([]byte("short"))
	assert.Error(t, err)
	_, err = NewJWTService([]byte("short"))
	assert.Error(t, err)
}

func TestCookieSessionManager(t *testing.T) {
	tokens, err := NewPasetoService(testKey)
	require.NoError(t, err)
	manager := NewCookieSessionManager(tokens, "session", time.Hour, true)
	session := UserSession{UserID: 5, UserEmail: "park@email.com", UserName: "park"}

	rec := httptest.NewRecorder()
	require.NoError(t, manager.Set(rec, session))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, "session", cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, 3600, cookie.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.AddCookie(cookie)
	got, ok := manager.Get(req)
	require.True(t, ok)
	assert.Equal(t, &session, got)

	rec = httptest.NewRecorder()
	manager.Unset(rec)
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.Less(t, cleared[0].MaxAge, 0)

	_, ok = manager.Get(httptest.NewRequest(http.MethodGet, "/auth", nil))
	assert.False(t, ok)

	tampered := httptest.NewRequest(http.MethodGet, "/auth", nil)
	tampered.AddCookie(&http.Cookie{Name: "session", Value: cookie.Value + "x"})
	_, ok = manager.Get(tampered)
	assert.False(t, ok)
}

func TestMiddleware_RequireSession(t *testing.T) {
	tokens, err := NewJWTService(testKey)
	require.NoError(t, err)
	manager := NewCookieSessionManager(tokens, "session", time.Hour, false)

	var seen *UserSession
	protected := NewMiddleware(manager).RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)

	setRec := httptest.NewRecorder()
	require.NoError(t, manager.Set(setRec, UserSession{UserID: 7, UserEmail: "kim@email.com", UserName: "kim"}))
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(setRec.Result().Cookies()[0])

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, int64(7), seen.UserID)
}

func TestNewTokenService(t *testing.T) {
	svc, err := NewTokenService("paseto", testKey)
	require.NoError(t, err)
	assert.IsType(t, &PasetoService{}, svc)

	svc, err = NewTokenService("jwt", testKey)
	require.NoError(t, err)
	assert.IsType(t, &JWTService{}, svc)

	_, err = NewTokenService("cookie", testKey)
	assert.Error(t, err)
}
