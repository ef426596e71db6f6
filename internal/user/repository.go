package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/favorite-movies-api/internal/database"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a password account.
func (r *Repository) Create(ctx context.Context, email, passwordHash, name string) (*User, error) {
	dbUser := &database.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: &passwordHash,
		Name:         name,
		CreatedAt:    time.Now(),
	}
	return r.insert(ctx, dbUser)
}

// CreateWithGoogle inserts an account that can only sign in through Google.
func (r *Repository) CreateWithGoogle(ctx context.Context, email, googleID, name string) (*User, error) {
	dbUser := &database.User{
		ID:        uuid.New(),
		Email:     email,
		GoogleID:  &googleID,
		Name:      name,
		CreatedAt: time.Now(),
	}
	return r.insert(ctx, dbUser)
}

func (r *Repository) insert(ctx context.Context, dbUser *database.User) (*User, error) {
	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("NULL").
		Exec(ctx)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "email = ?", email)
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByGoogleID retrieves a user by the subject of their Google identity.
func (r *Repository) GetByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return r.getOne(ctx, "google_id = ?", googleID)
}

func (r *Repository) getOne(ctx context.Context, where string, arg any) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where(where, arg).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// LinkGoogleID attaches a Google identity to an existing account.
func (r *Repository) LinkGoogleID(ctx context.Context, userID uuid.UUID, googleID string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("google_id = ?", googleID).
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to link google id: %w", err)
	}

	return requireOneRow(result, ErrNotFound)
}

// SetResetToken stores the hash of a password reset token and its expiry,
// replacing any earlier token.
func (r *Repository) SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("reset_token_hash = ?", tokenHash).
		Set("reset_token_expiry = ?", expiresAt).
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	return requireOneRow(result, ErrNotFound)
}

// ResetPassword swaps the password hash of the account holding an unexpired
// token and clears the token in the same statement, so a token works once.
func (r *Repository) ResetPassword(ctx context.Context, tokenHash, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("reset_token_hash = NULL").
		Set("reset_token_expiry = NULL").
		Where("reset_token_hash = ?", tokenHash).
		Where("reset_token_expiry > now()").
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	return requireOneRow(result, ErrInvalidResetToken)
}

func requireOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:               dbu.ID,
		Email:            dbu.Email,
		Name:             dbu.Name,
		PasswordHash:     dbu.PasswordHash,
		GoogleID:         dbu.GoogleID,
		ResetTokenHash:   dbu.ResetTokenHash,
		ResetTokenExpiry: dbu.ResetTokenExpiry,
		CreatedAt:        dbu.CreatedAt,
	}
}
