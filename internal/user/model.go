package user

import (
	"time"

	"github.com/google/uuid"
)

// User is a stored account. Secrets never leave the server.
type User struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	PasswordHash     *string    `json:"-"`
	GoogleID         *string    `json:"-"`
	ResetTokenHash   *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// HasPassword reports whether the account can sign in with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// Public is the user as returned by the API.
type Public struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GoogleID  *string   `json:"googleId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Public() Public {
	return Public{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		GoogleID:  u.GoogleID,
		CreatedAt: u.CreatedAt,
	}
}
