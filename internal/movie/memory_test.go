package movie

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/favorite-movies-api/internal/user"
)

var ownerID = uuid.MustParse("a1b2c3d4-0000-4000-8000-000000000001")

func newSeededMemory(t *testing.T, movies ...*Movie) *MemoryRepository {
	t.Helper()
	repo := NewMemoryRepository(func(_ context.Context, id uuid.UUID) (*Owner, error) {
		return &Owner{ID: id, Name: "Owner", Email: "owner@example.com"}, nil
	})
	for _, m := range movies {
		require.NoError(t, repo.Create(context.Background(), m))
	}
	return repo
}

// catalog returns n movies, every other one tagged Sci-Fi.
func catalog(n int) []*Movie {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	movies := make([]*Movie, 0, n)
	for i := range n {
		genres := []string{"Drama"}
		if i%2 == 0 {
			genres = []string{"Sci-Fi", "Drama"}
		}
		movies = append(movies, &Movie{
			Title:     fmt.Sprintf("Movie %02d", i),
			Year:      1990 + i,
			Genres:    genres,
			Director:  "Someone",
			Rating:    float64(i%10) + 1,
			UserID:    ownerID,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return movies
}

func TestMemoryRepository_PageSizing(t *testing.T) {
	repo := newSeededMemory(t, catalog(25)...)
	ctx := context.Background()

	q := DefaultQuery()
	q.Page, q.Limit = 3, 10
	data, total, err := repo.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Len(t, data, 5)
	assert.Equal(t, 3, NewPage(data, total, q).TotalPages)

	q.Page = 4
	data, total, err = repo.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, data)
}

func TestMemoryRepository_HugePageIsEmpty(t *testing.T) {
	repo := newSeededMemory(t, catalog(3)...)

	q := DefaultQuery()
	q.Page = math.MaxInt
	data, total, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, data)
}

func TestMemoryRepository_TotalIgnoresPagination(t *testing.T) {
	repo := newSeededMemory(t, catalog(25)...)
	ctx := context.Background()

	for _, limit := range []int{1, 7, 10, 100} {
		for page := 1; page <= 4; page++ {
			q := DefaultQuery()
			q.Page, q.Limit = page, limit
			data, total, err := repo.List(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, 25, total)
			assert.Len(t, data, max(0, min(limit, total-(page-1)*limit)))
		}
	}
}

func TestMemoryRepository_GenresMatchAny(t *testing.T) {
	repo := newSeededMemory(t, catalog(10)...)

	q := DefaultQuery()
	q.Genres = []string{"Sci-Fi", "Western"}
	data, total, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	for _, m := range data {
		assert.Contains(t, m.Genres, "Sci-Fi")
	}
}

func TestMemoryRepository_RatingOrderReverses(t *testing.T) {
	movies := catalog(12)
	for i, m := range movies {
		m.Rating = 1 + float64(i)*0.5
	}
	repo := newSeededMemory(t, movies...)
	ctx := context.Background()

	q := DefaultQuery()
	q.Limit = 100
	q.SortBy = SortRating

	q.SortOrder = Desc
	desc, _, err := repo.List(ctx, q)
	require.NoError(t, err)

	q.SortOrder = Asc
	asc, _, err := repo.List(ctx, q)
	require.NoError(t, err)

	require.Len(t, asc, len(desc))
	for i := range desc {
		assert.Equal(t, desc[i].ID, asc[len(asc)-1-i].ID)
	}
}

func TestMemoryRepository_DefaultOrderNewestFirst(t *testing.T) {
	repo := newSeededMemory(t, catalog(3)...)

	data, _, err := repo.List(context.Background(), DefaultQuery())
	require.NoError(t, err)
	require.Len(t, data, 3)
	assert.Equal(t, "Movie 02", data[0].Title)
	assert.Equal(t, "Movie 00", data[2].Title)
	require.NotNil(t, data[0].User)
	assert.Equal(t, ownerID, data[0].User.ID)
}

func TestMemoryRepository_UpdateKeepsOwnership(t *testing.T) {
	repo := newSeededMemory(t, catalog(1)...)
	ctx := context.Background()

	data, _, err := repo.List(ctx, DefaultQuery())
	require.NoError(t, err)
	m := data[0]

	m.Title = "Renamed"
	m.UserID = uuid.New()
	m.CreatedAt = time.Time{}
	require.NoError(t, repo.Update(ctx, &m))

	got, err := repo.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, ownerID, got.UserID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestMemoryRepository_NotFound(t *testing.T) {
	repo := newSeededMemory(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &Movie{ID: uuid.New()}), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), ErrNotFound)
}

func TestMemoryRepository_CreateRequiresOwner(t *testing.T) {
	repo := NewMemoryRepository(func(context.Context, uuid.UUID) (*Owner, error) {
		return nil, ErrNotFound
	})
	err := repo.Create(context.Background(), &Movie{Title: "Orphan", UserID: uuid.New()})
	assert.Error(t, err)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := newSeededMemory(t, catalog(1)...)
	ctx := context.Background()

	data, _, err := repo.List(ctx, DefaultQuery())
	require.NoError(t, err)
	data[0].Genres[0] = "Mutated"

	got, err := repo.Get(ctx, data[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Mutated", got.Genres[0])
}

func TestOwnersFrom(t *testing.T) {
	users := user.NewMemoryRepository()
	u, err := users.Create(context.Background(), "owner@example.com", "hash", "Owner")
	require.NoError(t, err)

	repo := NewMemoryRepository(OwnersFrom(users))
	m := &Movie{Title: "Heat", Genres: []string{"Crime"}, UserID: u.ID}
	require.NoError(t, repo.Create(context.Background(), m))

	got, err := repo.Get(context.Background(), m.ID)
	require.NoError(t, err)
	require.NotNil(t, got.User)
	assert.Equal(t, "owner@example.com", got.User.Email)

	err = repo.Create(context.Background(), &Movie{Title: "Orphan", UserID: uuid.New()})
	assert.ErrorIs(t, err, user.ErrNotFound)
}
