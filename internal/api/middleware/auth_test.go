package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	var gotActorID int64
	var gotOK bool

	handler := Auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActorID, gotOK = ActorIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/1", nil)
		req.Header.Set(HeaderActorID, "500")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, gotOK)
		assert.Equal(t, int64(500), gotActorID)
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/1", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/1", nil)
		req.Header.Set(HeaderActorID, "admin")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non-positive id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/1", nil)
		req.Header.Set(HeaderActorID, "-3")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestActorIDFromContext_WithoutAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	_, ok := ActorIDFromContext(req.Context())
	assert.False(t, ok)
}
