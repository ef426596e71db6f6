package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the bun model of the users table.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID               uuid.UUID  `bun:"id,pk,type:uuid"`
	Email            string     `bun:"email,notnull"`
	PasswordHash     *string    `bun:"password_hash"`
	GoogleID         *string    `bun:"google_id"`
	Name             string     `bun:"name,notnull"`
	ResetTokenHash   *string    `bun:"reset_token_hash"`
	ResetTokenExpiry *time.Time `bun:"reset_token_expiry"`
	CreatedAt        time.Time  `bun:"created_at,notnull"`
}

// Movie is the bun model of the movies table.
type Movie struct {
	bun.BaseModel `bun:"table:movies,alias:movie"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Title     string    `bun:"title,notnull"`
	Year      int       `bun:"year,notnull"`
	Genres    []string  `bun:"genres,type:jsonb,notnull"`
	Director  string    `bun:"director,notnull"`
	Rating    float64   `bun:"rating,notnull"`
	Notes     *string   `bun:"notes"`
	Image     *string   `bun:"image"`
	HaveCats  *bool     `bun:"have_cats"`
	UserID    uuid.UUID `bun:"user_id,type:uuid,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}
