package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileServer(t *testing.T) {
	store := NewMemoryStore()
	key := NewKey(".jpg")
	require.NoError(t, store.Save(context.Background(), key, strings.NewReader("jpeg"), 4, "image/jpeg"))

	r := chi.NewRouter()
	r.Get("/uploads/{name}", FileServer(store))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/"+key, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg", rec.Body.String())

	missing := httptest.NewRecorder()
	r.ServeHTTP(missing, httptest.NewRequest(http.MethodGet, "/uploads/"+NewKey(".jpg"), nil))
	assert.Equal(t, http.StatusNotFound, missing.Code)

	bad := httptest.NewRecorder()
	r.ServeHTTP(bad, httptest.NewRequest(http.MethodGet, "/uploads/passwd", nil))
	assert.Equal(t, http.StatusNotFound, bad.Code)
}
