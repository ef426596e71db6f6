package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/favorite-movies-api/internal/logging"
	"github.com/redmonkez12/favorite-movies-api/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrGoogleDisabled     = errors.New("google sign-in is not configured")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	ForgotPasswordMessage = "If an account with that email exists, a reset link has been sent."
	ResetPasswordMessage  = "Password has been reset successfully."

	defaultSessionTTL    = 24 * time.Hour
	defaultResetTokenTTL = time.Hour
	mailDispatchTimeout  = 30 * time.Second
)

// Config holds the knobs of the auth Service.
type Config struct {
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	// ResetURL turns a raw reset token into the link sent to the user.
	ResetURL func(token string) string
}

// AuthResponse is returned by every successful sign-in.
type AuthResponse struct {
	User        user.Public `json:"user"`
	AccessToken string      `json:"accessToken"`
}

// Service handles authentication business logic
type Service struct {
	users  UserStore
	tokens TokenService
	mailer Mailer
	google IDTokenVerifier
	logger *logging.Logger
	cfg    Config
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string

	mailWG sync.WaitGroup
}

// NewService wires the auth service. google may be nil, which disables
// Google sign-in.
func NewService(users UserStore, tokens TokenService, mailer Mailer, google IDTokenVerifier, logger *logging.Logger, cfg Config) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenTTL
	}
	if cfg.ResetURL == nil {
		cfg.ResetURL = func(token string) string { return "/reset-password?token=" + token }
	}
	return &Service{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		google: google,
		logger: logger,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Register creates a password account and signs it in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, req.Email, passwordHash, strings.TrimSpace(req.Name))
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.authResponse(newUser)
}

// Login authenticates with email and password. Every failure, including an
// account that only has Google sign-in, is ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// burn the same hashing time as a real check
			verifyPassword(s.dummyPasswordHash(), req.Password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !existingUser.HasPassword() || !verifyPassword(*existingUser.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.authResponse(existingUser)
}

// GoogleLogin verifies a Google ID token and signs in the matching account,
// linking by email or creating one when needed.
func (s *Service) GoogleLogin(ctx context.Context, credential string) (*AuthResponse, error) {
	if s.google == nil {
		return nil, ErrGoogleDisabled
	}

	identity, err := s.google.Verify(ctx, credential)
	if err != nil {
		return nil, err
	}

	u, err := s.findOrCreateGoogleUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	return s.authResponse(u)
}

func (s *Service) findOrCreateGoogleUser(ctx context.Context, identity *GoogleIdentity) (*user.User, error) {
	u, err := s.users.GetByGoogleID(ctx, identity.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user by google id: %w", err)
	}

	u, err = s.users.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if err := s.users.LinkGoogleID(ctx, u.ID, identity.Subject); err != nil {
			return nil, fmt.Errorf("failed to link google account: %w", err)
		}
		subject := identity.Subject
		u.GoogleID = &subject
		return u, nil
	case !errors.Is(err, user.ErrNotFound):
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name, _, _ = strings.Cut(identity.Email, "@")
	}

	u, err = s.users.CreateWithGoogle(ctx, identity.Email, identity.Subject, name)
	if errors.Is(err, user.ErrDuplicateEmail) {
		// lost a race with a concurrent first sign-in
		return s.users.GetByGoogleID(ctx, identity.Subject)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create google user: %w", err)
	}
	return u, nil
}

// RequestPasswordReset stores a fresh reset token for email and mails the
// link. The caller always gets the same answer whether or not the account
// exists, so only validation errors are returned.
func (s *Service) RequestPasswordReset(ctx context.Context, req ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	existingUser, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.logger.Warn("failed to get user for password reset", "error", err)
		}
		return nil
	}

	token, err := generateRandomToken()
	if err != nil {
		s.logger.Warn("failed to generate password reset token", "error", err)
		return nil
	}

	expiresAt := s.now().Add(s.cfg.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, existingUser.ID, hashToken(token), expiresAt); err != nil {
		s.logger.Warn("failed to store password reset token", "error", err)
		return nil
	}

	s.dispatchResetMail(ctx, existingUser.Email, s.cfg.ResetURL(token))
	return nil
}

// dispatchResetMail sends in the background. A failed send keeps the stored
// token; the user can ask again once the cooldown ends.
func (s *Service) dispatchResetMail(ctx context.Context, email, resetURL string) {
	s.mailWG.Add(1)
	go func() {
		defer s.mailWG.Done()

		mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailDispatchTimeout)
		defer cancel()

		if err := s.mailer.SendPasswordReset(mailCtx, email, resetURL); err != nil {
			s.logger.Warn("failed to send password reset email", "email", email, "error", err)
		}
	}()
}

// WaitForMail blocks until background reset mails have been handed off.
func (s *Service) WaitForMail() {
	s.mailWG.Wait()
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if req.Token == "" {
		return ErrInvalidResetToken
	}
	if err := req.Validate(); err != nil {
		return err
	}

	passwordHash, err := hashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.ResetPassword(ctx, hashToken(req.Token), passwordHash); err != nil {
		if errors.Is(err, user.ErrInvalidResetToken) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}

	return nil
}

// Profile returns the caller's account without secrets.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*user.Public, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	p := u.Public()
	return &p, nil
}

func (s *Service) authResponse(u *user.User) (*AuthResponse, error) {
	token, err := s.tokens.CreateToken(u.ID, u.Email, s.cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}
	return &AuthResponse{User: u.Public(), AccessToken: token}, nil
}

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = hashPassword("not-a-real-password")
	})
	return s.dummyHash
}
