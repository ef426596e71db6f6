package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sort orders accepted by the API.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Default list parameters, matching the server.
const (
	DefaultPage   = 1
	DefaultLimit  = 10
	DefaultSortBy = "createdAt"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GoogleID  *string   `json:"googleId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"accessToken"`
}

type Owner struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

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

// Page is one page of a movie listing.
type Page struct {
	Data       []Movie `json:"data"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}

// MovieInput is the body of create and update requests. Nil fields are
// left out, so an update only touches what is set.
type MovieInput struct {
	Title    *string   `json:"title,omitempty"`
	Year     *int      `json:"year,omitempty"`
	Genres   *[]string `json:"genres,omitempty"`
	Director *string   `json:"director,omitempty"`
	Rating   *float64  `json:"rating,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	HaveCats *bool     `json:"haveCats,omitempty"`
}

// Query selects a page of movies. Zero values are omitted from the request
// and the server applies its defaults.
type Query struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
	Genres    []string
	YearFrom  *int
	YearTo    *int
	RatingMin *float64
	RatingMax *float64
	HaveCats  *bool
}

// DefaultQuery is the first page sorted newest first.
func DefaultQuery() Query {
	return Query{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortBy:    DefaultSortBy,
		SortOrder: SortDesc,
	}
}

// Values encodes q as URL query parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", q.SortOrder)
	}
	if len(q.Genres) > 0 {
		v.Set("genres", strings.Join(q.Genres, ","))
	}
	if q.YearFrom != nil {
		v.Set("yearFrom", strconv.Itoa(*q.YearFrom))
	}
	if q.YearTo != nil {
		v.Set("yearTo", strconv.Itoa(*q.YearTo))
	}
	if q.RatingMin != nil {
		v.Set("ratingMin", strconv.FormatFloat(*q.RatingMin, 'f', -1, 64))
	}
	if q.RatingMax != nil {
		v.Set("ratingMax", strconv.FormatFloat(*q.RatingMax, 'f', -1, 64))
	}
	if q.HaveCats != nil {
		v.Set("haveCats", strconv.FormatBool(*q.HaveCats))
	}
	return v
}

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}
