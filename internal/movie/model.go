package movie

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("movie not found")
	ErrForbidden = errors.New("you can only modify your own movies")
)

// Owner is the public part of the user who owns a movie.
type Owner struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Movie is a catalog entry. Genres keep their order; the first one is the
// main genre.
type Movie struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Year      int       `json:"year"`
	Genres    []string  `json:"genres"`
	Director  string    `json:"director"`
	Rating    float64   `json:"rating"`
	Notes     *string   `json:"notes"`
	Image     *string   `json:"image"`
	HaveCats  *bool     `json:"haveCats,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    uuid.UUID `json:"userId"`
	User      *Owner    `json:"user,omitempty"`
}

// MainGenre returns the first genre or "" when there is none.
func (m *Movie) MainGenre() string {
	if len(m.Genres) == 0 {
		return ""
	}
	return m.Genres[0]
}

func (m *Movie) clone() *Movie {
	c := *m
	c.Genres = append([]string(nil), m.Genres...)
	if m.User != nil {
		u := *m.User
		c.User = &u
	}
	return &c
}

// Page is one page of a filtered, sorted listing.
type Page struct {
	Data       []Movie `json:"data"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// NewPage builds the response envelope for q. data is never nil.
func NewPage(data []Movie, total int, q Query) Page {
	if data == nil {
		data = []Movie{}
	}
	totalPages := 0
	if q.Limit > 0 {
		totalPages = (total + q.Limit - 1) / q.Limit
	}
	return Page{
		Data:       data,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages,
	}
}
