package movie

import (
	"bytes"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/redmonkez12/favorite-movies-api/internal/validation"
)

type SortField string

const (
	SortTitle     SortField = "title"
	SortYear      SortField = "year"
	SortGenres    SortField = "genres"
	SortDirector  SortField = "director"
	SortRating    SortField = "rating"
	SortCreatedAt SortField = "createdAt"
)

var sortColumns = map[SortField]string{
	SortTitle:     "movie.title",
	SortYear:      "movie.year",
	SortGenres:    "movie.genres->>0",
	SortDirector:  "movie.director",
	SortRating:    "movie.rating",
	SortCreatedAt: "movie.created_at",
}

type SortOrder string

const (
	Asc  SortOrder = "ASC"
	Desc SortOrder = "DESC"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Query is a validated listing request. Nil pointers and empty values mean
// "no filter".
type Query struct {
	Page      int
	Limit     int
	Search    string
	SortBy    SortField
	SortOrder SortOrder
	YearFrom  *int
	YearTo    *int
	Genres    []string
	RatingMin *float64
	RatingMax *float64
	HaveCats  *bool
}

// DefaultQuery is the first page of the newest movies.
func DefaultQuery() Query {
	return Query{
		Page:      DefaultPage,
		Limit:     DefaultLimit,
		SortBy:    SortCreatedAt,
		SortOrder: Desc,
	}
}

// ParseQuery validates listing parameters. Out of range values are
// reported, never clamped.
func ParseQuery(v url.Values) (Query, error) {
	q := DefaultQuery()
	errs := validation.Errors{}

	if s := v.Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			errs.Add("page", "must be an integer of at least 1")
		} else {
			q.Page = n
		}
	}

	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxLimit {
			errs.Add("limit", "must be an integer between 1 and 100")
		} else {
			q.Limit = n
		}
	}

	q.Search = strings.TrimSpace(v.Get("search"))

	if s := v.Get("sortBy"); s != "" {
		if _, ok := sortColumns[SortField(s)]; !ok {
			errs.Add("sortBy", "must be one of title, year, genres, director, rating, createdAt")
		} else {
			q.SortBy = SortField(s)
		}
	}

	if s := v.Get("sortOrder"); s != "" {
		switch SortOrder(strings.ToUpper(s)) {
		case Asc:
			q.SortOrder = Asc
		case Desc:
			q.SortOrder = Desc
		default:
			errs.Add("sortOrder", "must be ASC or DESC")
		}
	}

	q.YearFrom = parseIntParam(errs, v, "yearFrom")
	q.YearTo = parseIntParam(errs, v, "yearTo")

	if s := v.Get("genres"); s != "" {
		q.Genres = splitGenres(s)
	}

	q.RatingMin = parseRatingParam(errs, v, "ratingMin")
	q.RatingMax = parseRatingParam(errs, v, "ratingMax")

	if s := v.Get("haveCats"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			errs.Add("haveCats", "must be true or false")
		} else {
			q.HaveCats = &b
		}
	}

	if _, bad := errs["page"]; !bad && q.Page-1 > math.MaxInt/q.Limit {
		errs.Add("page", "is too large")
	}

	if err := errs.Err(); err != nil {
		return Query{}, err
	}
	return q, nil
}

func parseIntParam(errs validation.Errors, v url.Values, name string) *int {
	s := v.Get(name)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		errs.Add(name, "must be an integer")
		return nil
	}
	return &n
}

func parseRatingParam(errs validation.Errors, v url.Values, name string) *float64 {
	s := v.Get(name)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > 10 {
		errs.Add(name, "must be a number between 0 and 10")
		return nil
	}
	return &f
}

// splitGenres parses "Sci-Fi, Drama" into distinct, trimmed tags.
func splitGenres(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range strings.Split(s, ",") {
		g = strings.TrimSpace(g)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// Offset is the number of rows skipped before the page starts.
// It saturates instead of overflowing.
func (q Query) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// Values renders q back into URL parameters, omitting defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page != DefaultPage {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit != DefaultLimit {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortBy != "" && q.SortBy != SortCreatedAt {
		v.Set("sortBy", string(q.SortBy))
	}
	if q.SortOrder != "" && q.SortOrder != Desc {
		v.Set("sortOrder", string(q.SortOrder))
	}
	if q.YearFrom != nil {
		v.Set("yearFrom", strconv.Itoa(*q.YearFrom))
	}
	if q.YearTo != nil {
		v.Set("yearTo", strconv.Itoa(*q.YearTo))
	}
	if len(q.Genres) > 0 {
		v.Set("genres", strings.Join(q.Genres, ","))
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

// Matches reports whether m passes every filter of q. It is the in-memory
// twin of applyFilters.
func (q Query) Matches(m *Movie) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(q.Search)) {
		return false
	}
	if q.YearFrom != nil && m.Year < *q.YearFrom {
		return false
	}
	if q.YearTo != nil && m.Year > *q.YearTo {
		return false
	}
	if len(q.Genres) > 0 && !hasAnyGenre(m.Genres, q.Genres) {
		return false
	}
	if q.RatingMin != nil && m.Rating < *q.RatingMin {
		return false
	}
	if q.RatingMax != nil && m.Rating > *q.RatingMax {
		return false
	}
	if q.HaveCats != nil && (m.HaveCats == nil || *m.HaveCats != *q.HaveCats) {
		return false
	}
	return true
}

func hasAnyGenre(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// less orders a before b the way applyOrder does in SQL: the requested key,
// movies without genres last when sorting by main genre, then id ascending.
func (q Query) less(a, b *Movie) bool {
	if c := q.compare(a, b); c != 0 {
		return c < 0
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

func (q Query) compare(a, b *Movie) int {
	if q.SortBy == SortGenres {
		ag, bg := a.MainGenre(), b.MainGenre()
		switch {
		case ag == "" && bg == "":
			return 0
		case ag == "":
			return 1
		case bg == "":
			return -1
		}
		return q.direction(strings.Compare(ag, bg))
	}

	var c int
	switch q.SortBy {
	case SortTitle:
		c = strings.Compare(a.Title, b.Title)
	case SortYear:
		c = cmpOrdered(a.Year, b.Year)
	case SortDirector:
		c = strings.Compare(a.Director, b.Director)
	case SortRating:
		c = cmpOrdered(a.Rating, b.Rating)
	default:
		c = a.CreatedAt.Compare(b.CreatedAt)
	}
	return q.direction(c)
}

func (q Query) direction(c int) int {
	if q.SortOrder == Asc {
		return c
	}
	return -c
}

func cmpOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// escapeLike makes user input literal inside a LIKE pattern.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
