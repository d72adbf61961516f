package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnableCORS(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	EnableCORS(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers", nil))
	assert.True(t, called)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	t.Run("preflight short-circuits", func(t *testing.T) {
		called = false
		rec := httptest.NewRecorder()
		EnableCORS(next).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/customers", nil))
		assert.False(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestWithTimeout(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok := r.Context().Deadline()
		require.True(t, ok)
		assert.True(t, deadline.After(time.Now().Add(-time.Second)))
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	WithTimeout(time.Minute, next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	t.Run("zero duration leaves requests unbounded", func(t *testing.T) {
		unbounded := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := r.Context().Deadline()
			assert.False(t, ok)
		})
		rec := httptest.NewRecorder()
		WithTimeout(0, unbounded).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers", nil))
	})
}
