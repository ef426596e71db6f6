package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth(t *testing.T) {
	tokens, err := NewPasetoService(testPasetoKey)
	require.NoError(t, err)
	mw := NewMiddleware(tokens)

	userID := uuid.New()
	valid, err := tokens.CreateToken(userID, "a@example.com", time.Hour)
	require.NoError(t, err)
	expired, err := tokens.CreateToken(userID, "a@example.com", -time.Hour)
	require.NoError(t, err)

	var seen Identity
	protected := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing", "", http.StatusUnauthorized, `"MISSING_AUTH"`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, `"INVALID_AUTH_HEADER"`},
		{"garbage", "Bearer nope", http.StatusUnauthorized, `"INVALID_TOKEN"`},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, `"TOKEN_EXPIRED"`},
		{"valid", "Bearer " + valid, http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			}
		})
	}

	assert.Equal(t, Identity{UserID: userID, Email: "a@example.com"}, seen)
}

func TestGetClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", getClientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", getClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", getClientIP(req))
}
