package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/redmonkez12/favorite-movies-api/internal/httputil"
	"github.com/redmonkez12/favorite-movies-api/internal/logging"
	"github.com/redmonkez12/favorite-movies-api/internal/ratelimit"
	"github.com/redmonkez12/favorite-movies-api/internal/user"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service     *Service
	rateLimiter ratelimit.Limiter
}

func NewHandler(service *Service, rateLimiter ratelimit.Limiter) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
	}
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create an account with email, password and display name and sign it in.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      409 {object} httputil.ErrorResponse "Email already exists"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allowIP(w, r, "register") {
		return
	}

	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		if httputil.RespondValidationError(w, err) {
			return
		}
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", resp.User.ID)
	httputil.RespondJSON(w, resp, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate with email and password and receive a session token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allowIP(w, r, "login") {
		return
	}

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, ErrInvalidCredentials.Error(), httputil.CodeInvalidCredentials, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", resp.User.ID)
	httputil.RespondJSON(w, resp, http.StatusOK)
}

// GoogleLogin handles sign-in with a Google ID token
// @Summary      Google sign-in
// @Description  Verify a Google ID token and sign in, linking or creating the account as needed
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body GoogleLoginRequest true "Google credential"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid Google token"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Failure      503 {object} httputil.ErrorResponse "Google sign-in not configured"
// @Router       /auth/google [post]
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allowIP(w, r, "google") {
		return
	}

	var req GoogleLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.GoogleLogin(r.Context(), req.Credential)
	if err != nil {
		switch {
		case errors.Is(err, ErrGoogleDisabled):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeGoogleDisabled, http.StatusServiceUnavailable)
		case errors.Is(err, ErrInvalidGoogleToken):
			logger.Warn("google login failed: invalid token", "error", err.Error())
			httputil.RespondErrorWithCode(w, "invalid google token", httputil.CodeInvalidGoogleToken, http.StatusUnauthorized)
		default:
			logger.Error("google login failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to login with google", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user logged in with google", "user_id", resp.User.ID)
	httputil.RespondJSON(w, resp, http.StatusOK)
}

// ForgotPassword handles password reset requests
// @Summary      Request password reset
// @Description  Mail a password reset link. The response is the same whether or not the account exists.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email address"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation error"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if !h.allowIP(w, r, "forgot-password") {
		return
	}

	var req ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := req.Validate(); err != nil {
		httputil.RespondValidationError(w, err)
		return
	}

	acquired, err := h.rateLimiter.AcquireEmailCooldown(r.Context(), req.Email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
	} else if !acquired {
		logger.Warn("email on cooldown", "email", req.Email)
		httputil.RespondErrorWithCode(w, "please wait before requesting another reset", httputil.CodeCooldownActive, http.StatusTooManyRequests)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req); err != nil {
		if httputil.RespondValidationError(w, err) {
			return
		}
		logger.Error("password reset request failed", "error", err.Error())
	}

	httputil.RespondMessage(w, ForgotPasswordMessage, http.StatusOK)
}

// ResetPassword handles password reset with token
// @Summary      Reset password
// @Description  Set a new password using the token from a reset link
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset token and new password"
// @Success      200 {object} httputil.MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request or token"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.service.ResetPassword(r.Context(), req)
	if err != nil {
		if httputil.RespondValidationError(w, err) {
			return
		}
		if errors.Is(err, ErrInvalidResetToken) {
			logger.Warn("password reset failed: invalid or expired token")
			httputil.RespondErrorWithCode(w, ErrInvalidResetToken.Error(), httputil.CodeInvalidResetToken, http.StatusBadRequest)
			return
		}
		logger.Error("password reset failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to reset password", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("password reset successfully")
	httputil.RespondMessage(w, ResetPasswordMessage, http.StatusOK)
}

// Profile returns the authenticated user
// @Summary      Current user
// @Description  Return the signed-in user's account without secrets
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} user.Public
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /auth/profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	profile, err := h.service.Profile(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeUserNotFound, http.StatusUnauthorized)
			return
		}
		logger.Error("failed to load profile", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to load profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, profile, http.StatusOK)
}

// allowIP applies the per-IP limit for purpose. Limiter errors let the
// request through.
func (h *Handler) allowIP(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())
	ip := getClientIP(r)

	allowed, err := h.rateLimiter.AllowIP(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return true
	}
	if !allowed {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logging.GetLoggerFromContext(r.Context()).Warn("invalid request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return false
	}
	return true
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
