package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_SkipsExistingRows(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db := NewBunDB(sqlDB)

	mock.ExpectExec(`INSERT INTO "users" .*ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "users" .*ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	movies := seedMovies()
	for i := range movies {
		exists := i == 0
		mock.ExpectQuery(`SELECT EXISTS \(SELECT .* FROM "movies"`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
		if !exists {
			mock.ExpectExec(`INSERT INTO "movies"`).
				WillReturnResult(sqlmock.NewResult(0, 1))
		}
	}

	res, err := Seed(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Users)
	assert.Equal(t, len(movies)-1, res.Movies)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedMovies_AreValid(t *testing.T) {
	for _, m := range seedMovies() {
		assert.NotEmpty(t, m.Genres, m.Title)
		assert.GreaterOrEqual(t, m.Year, 1888, m.Title)
		assert.LessOrEqual(t, m.Rating, 10.0, m.Title)
	}
}
