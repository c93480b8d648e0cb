package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDHonorsWellFormedHeader(t *testing.T) {
	supplied := uuid.NewString()
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", supplied)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, supplied, seen)
	assert.Equal(t, supplied, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDReplacesMalformedHeader(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, supplied := range []string{"", "not-a-uuid", "<script>alert(1)</script>"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if supplied != "" {
			req.Header.Set("X-Request-ID", supplied)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		echoed := rec.Header().Get("X-Request-ID")
		require.NotEqual(t, supplied, echoed)
		_, err := uuid.Parse(echoed)
		assert.NoError(t, err)
	}
}

func TestRequestIDFromContextWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}
