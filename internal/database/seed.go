package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	SeedOwnerID    = uuid.MustParse("a1b2c3d4-e5f6-7890-abcd-ef1234567890")
	SeedTestUserID = uuid.MustParse("1bbf68b4-1dd2-4b04-a8d6-ef3acd8f9caa")
)

// bcrypt hashes of "owner123" and "test123"
const (
	seedOwnerPasswordHash = "$2b$10$au8F/IZPZ.KNOKgRekuJDeTuhj57HVFQ5NYbgiDpw9JwgJAXEnHYW"
	seedTestPasswordHash  = "$2b$10$tnqSgmbwCKTZcKCWeBDu8Od03H29IzYMCbPbF5RmXIOzq/vXrrgc2"
)

// SeedResult reports how many rows a Seed call inserted.
type SeedResult struct {
	Users  int
	Movies int
}

func seedUsers() []*User {
	ownerHash := seedOwnerPasswordHash
	testHash := seedTestPasswordHash
	return []*User{
		{ID: SeedOwnerID, Email: "owner@owner.com", PasswordHash: &ownerHash, Name: "Owner"},
		{ID: SeedTestUserID, Email: "test@test.com", PasswordHash: &testHash, Name: "Test User"},
	}
}

func strPtr(s string) *string { return &s }

func seedMovies() []*Movie {
	return []*Movie{
		{Title: "Open Season", Year: 2006, Genres: []string{"Animation", "Adventure", "Comedy"}, Director: "Roger Allers & Jill Culton & Anthony Stacchi", Rating: 10},
		{Title: "The Rubber", Year: 2010, Genres: []string{"Horror", "Action", "Adventure"}, Director: "Quentin Dupieux", Rating: 10, Notes: strPtr("One of the best horror movies I saw.")},
		{Title: "Harry Potter series", Year: 2001, Genres: []string{"Fantasy", "Adventure", "Family"}, Director: "J.K. Rowling & Steve Kloves", Rating: 10},
		{Title: "Avengers: End Game", Year: 2019, Genres: []string{"Action", "Sci-Fi", "Superhero"}, Director: "Anthony Russo & Joe Russo", Rating: 10, Notes: strPtr("Best avengers movie.")},
		{Title: "Fractured", Year: 2019, Genres: []string{"Mystery", "Thriller", "Psychological Thriller"}, Director: "Brad Anderson", Rating: 10},
		{Title: "Vacation Friends", Year: 2021, Genres: []string{"Comedy", "Adventure"}, Director: "Clay Tarver", Rating: 10},
		{Title: "21 Jump Street", Year: 2012, Genres: []string{"Comedy", "Action", "Crime"}, Director: "Phil Lord & Christopher Miller", Rating: 10, Notes: strPtr("Ice Cube was best suited for his role.")},
		{Title: "The Giver", Year: 2014, Genres: []string{"Sci-Fi", "Thriller", "Drama", "Romance"}, Director: "Phillip Noyce", Rating: 9},
		{Title: "ARQ", Year: 2016, Genres: []string{"Sci-Fi", "Thriller", "Action", "Time Travel"}, Director: "Tony Elliott", Rating: 9, Notes: strPtr("Movie about couple stuck in the time loop.")},
		{Title: "The Garfield Movie", Year: 2004, Genres: []string{"Comedy", "Fantasy", "Adventure", "Family"}, Director: "Peter Hewitt", Rating: 8},
		{Title: "Black Sheep", Year: 2006, Genres: []string{"Horror", "Comedy", "Sci-Fi"}, Director: "Jonathan King", Rating: 7.5, Notes: strPtr("Sheeps were not actually black.")},
		{Title: "Hereditary", Year: 2018, Genres: []string{"Horror", "Mystery", "Drama"}, Director: "Ari Aster", Rating: 4.5, Notes: strPtr("Horror movie, which made no sense most of the time.")},
	}
}

// Seed inserts the demo accounts and the owner's movie list. It is safe to
// run repeatedly: existing users (by id) and movies (by owner and title) are
// left untouched.
func Seed(ctx context.Context, db *bun.DB) (SeedResult, error) {
	var result SeedResult
	now := time.Now()

	for _, u := range seedUsers() {
		u.CreatedAt = now
		res, err := db.NewInsert().
			Model(u).
			On("CONFLICT DO NOTHING").
			Returning("NULL").
			Exec(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			result.Users += int(n)
		}
	}

	for i, m := range seedMovies() {
		exists, err := db.NewSelect().
			Model((*Movie)(nil)).
			Where("title = ?", m.Title).
			Where("user_id = ?", SeedOwnerID).
			Exists(ctx)
		if err != nil {
			return result, fmt.Errorf("failed to check movie %q: %w", m.Title, err)
		}
		if exists {
			continue
		}

		m.ID = uuid.New()
		m.UserID = SeedOwnerID
		// Spread creation times so the default createdAt ordering is stable.
		m.CreatedAt = now.Add(-time.Duration(i) * time.Minute)

		if _, err := db.NewInsert().Model(m).Returning("NULL").Exec(ctx); err != nil {
			return result, fmt.Errorf("failed to seed movie %q: %w", m.Title, err)
		}
		result.Movies++
	}

	return result, nil
}
