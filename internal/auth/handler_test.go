package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/favorite-movies-api/internal/httputil"
	"github.com/redmonkez12/favorite-movies-api/internal/ratelimit"
)

func newTestRouter(t *testing.T, limiter ratelimit.Limiter) (http.Handler, *serviceFixture) {
	t.Helper()
	f := newServiceFixture(t, nil)
	h := NewHandler(f.svc, limiter)
	mw := NewMiddleware(f.tokens)

	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/google", h.GoogleLogin)
	r.Post("/auth/forgot-password", h.ForgotPassword)
	r.Post("/auth/reset-password", h.ResetPassword)
	r.With(mw.RequireAuth).Get("/auth/profile", h.Profile)
	return r, f
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var e httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestHandler_RegisterLoginProfile(t *testing.T) {
	router, _ := newTestRouter(t, ratelimit.NewMemoryLimiter(ratelimit.Options{Limit: 100}))

	rec := postJSON(t, router, "/auth/register", RegisterRequest{Email: "a@example.com", Password: "secret1", Name: "Alice"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var reg AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.NotEmpty(t, reg.AccessToken)
	assert.NotContains(t, rec.Body.String(), "password")

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+reg.AccessToken)
	prof := httptest.NewRecorder()
	router.ServeHTTP(prof, req)
	require.Equal(t, http.StatusOK, prof.Code)
	assert.Contains(t, prof.Body.String(), `"email":"a@example.com"`)
	assert.NotContains(t, prof.Body.String(), "resetToken")
}

func TestHandler_DuplicateEmailAndIndistinguishableLogin(t *testing.T) {
	router, _ := newTestRouter(t, ratelimit.NewMemoryLimiter(ratelimit.Options{Limit: 100}))

	body := RegisterRequest{Email: "a@example.com", Password: "secret1", Name: "Alice"}
	require.Equal(t, http.StatusCreated, postJSON(t, router, "/auth/register", body).Code)

	dup := postJSON(t, router, "/auth/register", body)
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Equal(t, httputil.CodeEmailAlreadyExists, decodeError(t, dup).Code)

	wrong := postJSON(t, router, "/auth/login", LoginRequest{Email: "a@example.com", Password: "wrong12"})
	unknown := postJSON(t, router, "/auth/login", LoginRequest{Email: "nobody@example.com", Password: "wrong12"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Code, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
}

func TestHandler_RegisterValidation(t *testing.T) {
	router, _ := newTestRouter(t, ratelimit.NewMemoryLimiter(ratelimit.Options{Limit: 100}))

	rec := postJSON(t, router, "/auth/register", RegisterRequest{Email: "a@example.com", Password: "123", Name: "A"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, httputil.CodeValidationFailed, e.Code)
	assert.Contains(t, e.Fields, "password")

	bad := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{"))
	badRec := httptest.NewRecorder()
	router.ServeHTTP(badRec, bad)
	assert.Equal(t, http.StatusBadRequest, badRec.Code)
}

func TestHandler_ForgotPasswordSameMessage(t *testing.T) {
	router, f := newTestRouter(t, ratelimit.NewMemoryLimiter(ratelimit.Options{Limit: 100}))

	require.Equal(t, http.StatusCreated, postJSON(t, router, "/auth/register",
		RegisterRequest{Email: "a@example.com", Password: "secret1", Name: "Alice"}).Code)

	existing := postJSON(t, router, "/auth/forgot-password", ForgotPasswordRequest{Email: "a@example.com"})
	missing := postJSON(t, router, "/auth/forgot-password", ForgotPasswordRequest{Email: "ghost@example.com"})
	f.svc.WaitForMail()

	assert.Equal(t, http.StatusOK, existing.Code)
	assert.Equal(t, existing.Code, missing.Code)
	assert.Equal(t, existing.Body.String(), missing.Body.String())
	assert.Contains(t, existing.Body.String(), ForgotPasswordMessage)
}

func TestHandler_ForgotPasswordCooldown(t *testing.T) {
	router, f := newTestRouter(t, ratelimit.NewMemoryLimiter(ratelimit.Options{Limit: 100, EmailCooldown: time.Hour}))

	first := postJSON(t, router, "/auth/forgot-password", ForgotPasswordRequest{Email: "ghost@example.com"})
	second := postJSON(t, router, "/auth/forgot-password", ForgotPasswordRequest{Email: "ghost@example.com"})
	f.svc.WaitForMail()

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, httputil.CodeCooldownActive, decodeError(t, second).Code)
}

func TestHandler_ResetPasswordInvalidToken(t *testing.T) {
	router, _ := newTestRouter(t, ratelimit.NewMemoryLimiter(ratelimit.Options{Limit: 100}))

	rec := postJSON(t, router, "/auth/reset-password", ResetPasswordRequest{Token: "deadbeef", Password: "brandnew"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httputil.CodeInvalidResetToken, decodeError(t, rec).Code)
}

func TestHandler_IPRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, ratelimit.NewMemoryLimiter(ratelimit.Options{Limit: 2, Window: time.Hour}))

	for i := 0; i < 2; i++ {
		rec := postJSON(t, router, "/auth/login", LoginRequest{Email: "a@example.com", Password: "secret1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := postJSON(t, router, "/auth/login", LoginRequest{Email: "a@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHandler_GoogleDisabled(t *testing.T) {
	router, _ := newTestRouter(t, ratelimit.NewMemoryLimiter(ratelimit.Options{Limit: 100}))

	rec := postJSON(t, router, "/auth/google", GoogleLoginRequest{Credential: "x"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
