package movie

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/favorite-movies-api/internal/database"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return NewRepository(database.NewBunDB(sqlDB)), mock
}

var movieColumns = []string{
	"id", "title", "year", "genres", "director", "rating", "notes", "image",
	"have_cats", "user_id", "created_at", "user__id", "user__name", "user__email",
}

func movieRow(rows *sqlmock.Rows, id uuid.UUID, title string, rating float64) *sqlmock.Rows {
	return rows.AddRow(
		id.String(), title, 2021, []byte(`["Sci-Fi","Adventure"]`), "Denis Villeneuve", rating,
		nil, nil, nil, ownerID.String(), time.Now(), ownerID.String(), "Owner", "owner@example.com",
	)
}

func TestRepository_ListFiltersCountAndPage(t *testing.T) {
	repo, mock := newMockRepo(t)

	q := DefaultQuery()
	q.Search = "Du_ne"
	q.YearFrom = ptr(1990)
	q.Genres = []string{"Sci-Fi", "Drama"}
	q.RatingMin = ptr(7.5)
	q.HaveCats = ptr(true)
	q.SortBy = SortRating
	q.SortOrder = Asc

	filters := `LOWER\(movie.title\) LIKE '%du\\_ne%'.*movie.year >= 1990.*` +
		`jsonb_exists_any\(movie.genres, '\{.*Sci-Fi.*Drama.*\}'\).*movie.rating >= 7.5.*(?i:movie.have_cats = true)`

	mock.ExpectQuery(`SELECT count\(\*\) FROM "movies" AS "movie" WHERE .*` + filters).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	id := uuid.New()
	mock.ExpectQuery(`SELECT .* FROM "movies" AS "movie" LEFT JOIN "users" AS "user" .*` + filters +
		`.*ORDER BY movie.rating ASC, movie.id ASC LIMIT 10`).
		WillReturnRows(movieRow(sqlmock.NewRows(movieColumns), id, "Du_ne", 8.5))

	data, total, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, data, 1)
	assert.Equal(t, id, data[0].ID)
	assert.Equal(t, []string{"Sci-Fi", "Adventure"}, data[0].Genres)
	require.NotNil(t, data[0].User)
	assert.Equal(t, "Owner", data[0].User.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListGenresOrderNullsLast(t *testing.T) {
	repo, mock := newMockRepo(t)

	q := DefaultQuery()
	q.Page = 2
	q.SortBy = SortGenres

	mock.ExpectQuery(`SELECT count\(\*\) FROM "movies" AS "movie"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(15))
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY movie.genres->>0 DESC NULLS LAST, movie.id ASC LIMIT 10 OFFSET 10`)).
		WillReturnRows(sqlmock.NewRows(movieColumns))

	data, total, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.NotNil(t, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListPastTheEndSkipsDataQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	q := DefaultQuery()
	q.Page = 5

	mock.ExpectQuery(`SELECT count\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	data, total, err := repo.List(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	assert.Empty(t, data)
	assert.NotNil(t, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Get(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .* FROM "movies" AS "movie" .*WHERE \(movie.id = '` + id.String() + `'\) LIMIT 1`).
		WillReturnRows(movieRow(sqlmock.NewRows(movieColumns), id, "Dune", 9))

	m, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Dune", m.Title)
	assert.Equal(t, 9.0, m.Rating)
	assert.Equal(t, ownerID, m.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM "movies"`).
		WillReturnRows(sqlmock.NewRows(movieColumns))

	_, err := repo.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO "movies" .*'Dune'.*'\["Sci-Fi"\]'`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	m := &Movie{Title: "Dune", Year: 2021, Genres: []string{"Sci-Fi"}, Director: "Denis Villeneuve", Rating: 9, UserID: ownerID}
	require.NoError(t, repo.Create(context.Background(), m))
	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.False(t, m.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateOnlyWritesMutableColumns(t *testing.T) {
	repo, mock := newMockRepo(t)
	m := &Movie{ID: uuid.New(), Title: "Dune", Year: 2021, Genres: []string{"Sci-Fi"}, Rating: 9.5, UserID: ownerID}

	mock.ExpectExec(`UPDATE "movies" AS "movie" SET "title" = 'Dune', "year" = 2021, "genres" = .*"rating" = 9.5.*"have_cats" = NULL WHERE \("movie"."id" = '` + m.ID.String() + `'\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateMissingRow(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE "movies"`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &Movie{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM "movies" AS "movie" WHERE \(id = '` + id.String() + `'\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), id))

	mock.ExpectExec(`DELETE FROM "movies"`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrNotFound)

	mock.ExpectExec(`DELETE FROM "movies"`).WillReturnError(errors.New("connection reset"))
	err := repo.Delete(context.Background(), id)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
