package movie

import (
	"encoding/json"
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/redmonkez12/favorite-movies-api/internal/validation"
)

const (
	MinYear        = 1888
	MaxYear        = 2030
	MinRating      = 1.0
	MaxRating      = 10.0
	MaxTitleLen    = 255
	MaxDirectorLen = 255
	MaxNotesLen    = 1000
)

// Patch lists the fields a request may write. Nil means "leave unchanged".
// Identity, ownership and timestamps are not part of it and can never be
// set by a caller.
type Patch struct {
	Title    *string   `json:"title,omitempty"`
	Year     *int      `json:"year,omitempty"`
	Genres   *[]string `json:"genres,omitempty"`
	Director *string   `json:"director,omitempty"`
	Rating   *float64  `json:"rating,omitempty"`
	// Notes set to "" clears them.
	Notes    *string `json:"notes,omitempty"`
	HaveCats *bool   `json:"haveCats,omitempty"`

	// Image is the storage key of a freshly uploaded poster. It is set by the
	// handler, never decoded from a body.
	Image       *string `json:"-"`
	RemoveImage bool    `json:"removeImage,omitempty"`
}

// ValidateCreate checks a patch used to create a movie: every required
// field must be present.
func (p *Patch) ValidateCreate() error {
	errs := validation.Errors{}
	if p.Title == nil {
		errs.Add("title", "is required")
	}
	if p.Year == nil {
		errs.Add("year", "is required")
	}
	if p.Genres == nil {
		errs.Add("genres", "is required")
	}
	if p.Director == nil {
		errs.Add("director", "is required")
	}
	if p.Rating == nil {
		errs.Add("rating", "is required")
	}
	p.validateFields(errs)
	return errs.Err()
}

// ValidateUpdate checks only the fields that are present.
func (p *Patch) ValidateUpdate() error {
	errs := validation.Errors{}
	p.validateFields(errs)
	if p.RemoveImage && p.Image != nil {
		errs.Add("image", "cannot upload and remove an image at the same time")
	}
	return errs.Err()
}

func (p *Patch) validateFields(errs validation.Errors) {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		switch {
		case t == "":
			errs.Add("title", "must not be empty")
		case utf8.RuneCountInString(t) > MaxTitleLen:
			errs.Add("title", "must be at most 255 characters")
		}
		p.Title = &t
	}

	if p.Year != nil && (*p.Year < MinYear || *p.Year > MaxYear) {
		errs.Add("year", "must be between 1888 and 2030")
	}

	if p.Genres != nil {
		genres := make([]string, 0, len(*p.Genres))
		for _, g := range *p.Genres {
			g = strings.TrimSpace(g)
			if g == "" {
				errs.Add("genres", "must not contain empty values")
				continue
			}
			genres = append(genres, g)
		}
		if len(*p.Genres) == 0 {
			errs.Add("genres", "must contain at least one genre")
		}
		p.Genres = &genres
	}

	if p.Director != nil {
		d := strings.TrimSpace(*p.Director)
		switch {
		case d == "":
			errs.Add("director", "must not be empty")
		case utf8.RuneCountInString(d) > MaxDirectorLen:
			errs.Add("director", "must be at most 255 characters")
		}
		p.Director = &d
	}

	if p.Rating != nil {
		r := *p.Rating
		if math.IsNaN(r) || r < MinRating || r > MaxRating {
			errs.Add("rating", "must be a number between 1 and 10")
		} else {
			r = math.Round(r*10) / 10
			p.Rating = &r
		}
	}

	if p.Notes != nil && utf8.RuneCountInString(*p.Notes) > MaxNotesLen {
		errs.Add("notes", "must be at most 1000 characters")
	}
}

// Apply writes the present fields onto m. It returns the poster key that
// the change displaced, if any.
func (p *Patch) Apply(m *Movie) (oldImage *string) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Year != nil {
		m.Year = *p.Year
	}
	if p.Genres != nil {
		m.Genres = append([]string(nil), (*p.Genres)...)
	}
	if p.Director != nil {
		m.Director = *p.Director
	}
	if p.Rating != nil {
		m.Rating = *p.Rating
	}
	if p.Notes != nil {
		if *p.Notes == "" {
			m.Notes = nil
		} else {
			notes := *p.Notes
			m.Notes = &notes
		}
	}
	if p.HaveCats != nil {
		hc := *p.HaveCats
		m.HaveCats = &hc
	}

	switch {
	case p.Image != nil:
		oldImage = m.Image
		img := *p.Image
		m.Image = &img
	case p.RemoveImage:
		oldImage = m.Image
		m.Image = nil
	}
	return oldImage
}

// ParseForm reads a patch from multipart or urlencoded form values. Genres
// may be a JSON array or a comma separated list.
func ParseForm(form url.Values) (Patch, error) {
	var p Patch
	errs := validation.Errors{}

	if _, ok := form["title"]; ok {
		s := form.Get("title")
		p.Title = &s
	}
	if s := form.Get("year"); s != "" {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			errs.Add("year", "must be an integer")
		} else {
			p.Year = &n
		}
	}
	if _, ok := form["genres"]; ok {
		genres, err := parseGenresField(form["genres"])
		if err != nil {
			errs.Add("genres", "must be a JSON array or a comma separated list")
		} else {
			p.Genres = &genres
		}
	}
	if _, ok := form["director"]; ok {
		s := form.Get("director")
		p.Director = &s
	}
	if s := form.Get("rating"); s != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			errs.Add("rating", "must be a number")
		} else {
			p.Rating = &f
		}
	}
	if _, ok := form["notes"]; ok {
		s := form.Get("notes")
		p.Notes = &s
	}
	if s := form.Get("haveCats"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			errs.Add("haveCats", "must be true or false")
		} else {
			p.HaveCats = &b
		}
	}
	if s := form.Get("removeImage"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			errs.Add("removeImage", "must be true or false")
		} else {
			p.RemoveImage = b
		}
	}

	if err := errs.Err(); err != nil {
		return Patch{}, err
	}
	return p, nil
}

func parseGenresField(values []string) ([]string, error) {
	if len(values) == 1 {
		s := strings.TrimSpace(values[0])
		if strings.HasPrefix(s, "[") {
			var genres []string
			if err := json.Unmarshal([]byte(s), &genres); err != nil {
				return nil, err
			}
			return genres, nil
		}
		var genres []string
		for _, g := range strings.Split(s, ",") {
			if g = strings.TrimSpace(g); g != "" {
				genres = append(genres, g)
			}
		}
		return genres, nil
	}
	// repeated genres=a&genres=b fields
	return append([]string(nil), values...), nil
}
