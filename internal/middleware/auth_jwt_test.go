package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func authedRequest(t *testing.T, claims TokenClaims) *http.Request {
	t.Helper()
	token, err := SignJWT(testSecret, claims)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/grimoire", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthJWTInjectsUserID(t *testing.T) {
	var seen string
	handler := AuthJWT(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest(t, TokenClaims{Sub: "user-1", Exp: time.Now().Add(time.Hour).Unix()}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", seen)
}

func TestAuthJWTRejections(t *testing.T) {
	handler := AuthJWT(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/grimoire", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"unauthorized"`)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/grimoire", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("tampered signature", func(t *testing.T) {
		token, err := SignJWT("some-other-secret", TokenClaims{Sub: "user-1"})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/v1/grimoire", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, TokenClaims{Sub: "user-1", Exp: time.Now().Add(-time.Minute).Unix()}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty subject", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest(t, TokenClaims{Exp: time.Now().Add(time.Hour).Unix()}))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
