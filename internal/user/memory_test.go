package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_DuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, "a@example.com", "h", "A")
	require.NoError(t, err)

	_, err = repo.Create(ctx, "a@example.com", "h2", "A2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = repo.CreateWithGoogle(ctx, "a@example.com", "g1", "A3")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemoryRepository_EmailIsCaseSensitive(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, "a@example.com", "h", "A")
	require.NoError(t, err)

	_, err = repo.GetByEmail(ctx, "A@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_ResetTokenIsSingleUse(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	u, err := repo.Create(ctx, "a@example.com", "old", "A")
	require.NoError(t, err)
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "tok", time.Now().Add(time.Hour)))

	require.NoError(t, repo.ResetPassword(ctx, "tok", "new"))
	assert.ErrorIs(t, repo.ResetPassword(ctx, "tok", "newer"), ErrInvalidResetToken)

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", *got.PasswordHash)
	assert.Nil(t, got.ResetTokenHash)
}

func TestMemoryRepository_ExpiredResetToken(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	u, err := repo.Create(ctx, "a@example.com", "old", "A")
	require.NoError(t, err)
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "tok", time.Now().Add(-time.Minute)))

	assert.ErrorIs(t, repo.ResetPassword(ctx, "tok", "new"), ErrInvalidResetToken)
}

func TestMemoryRepository_GoogleLink(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	u, err := repo.Create(ctx, "a@example.com", "h", "A")
	require.NoError(t, err)
	require.NoError(t, repo.LinkGoogleID(ctx, u.ID, "sub-1"))

	got, err := repo.GetByGoogleID(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}
