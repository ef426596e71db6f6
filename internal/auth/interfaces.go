package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/favorite-movies-api/internal/user"
)

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserStore is the credential store. Satisfied by user.Repository and
// user.MemoryRepository.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, name string) (*user.User, error)
	CreateWithGoogle(ctx context.Context, email, googleID, name string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*user.User, error)
	LinkGoogleID(ctx context.Context, userID uuid.UUID, googleID string) error
	SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, tokenHash, passwordHash string) error
}

// Mailer delivers password reset links. Implemented by email.Service (SMTP)
// and queue.Producer (Kafka).
type Mailer interface {
	SendPasswordReset(ctx context.Context, toEmail, resetURL string) error
}

// IDTokenVerifier checks a Google sign-in credential.
type IDTokenVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleIdentity, error)
}
