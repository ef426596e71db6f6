package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/redmonkez12/favorite-movies-api/pkg/client"
)

// MovieForm holds movie fields as typed at the prompt or on the command line.
type MovieForm struct {
	Title    string
	Year     string
	Genres   string
	Director string
	Rating   string
	Notes    string
	Image    string
}

// Complete reports whether every required field has a value, so the form
// can be skipped.
func (f *MovieForm) Complete() bool {
	return strings.TrimSpace(f.Title) != "" &&
		strings.TrimSpace(f.Year) != "" &&
		strings.TrimSpace(f.Genres) != "" &&
		strings.TrimSpace(f.Director) != "" &&
		strings.TrimSpace(f.Rating) != ""
}

// Input converts the form into a create request. Range checks are left to
// the server; only the shape of each field is checked here.
func (f *MovieForm) Input() (client.MovieInput, error) {
	title := strings.TrimSpace(f.Title)
	if title == "" {
		return client.MovieInput{}, fmt.Errorf("title is required")
	}
	director := strings.TrimSpace(f.Director)
	if director == "" {
		return client.MovieInput{}, fmt.Errorf("director is required")
	}

	year, err := parseYear(f.Year)
	if err != nil {
		return client.MovieInput{}, err
	}
	rating, err := parseRating(f.Rating)
	if err != nil {
		return client.MovieInput{}, err
	}
	genres := SplitGenres(f.Genres)
	if len(genres) == 0 {
		return client.MovieInput{}, fmt.Errorf("at least one genre is required")
	}

	in := client.MovieInput{
		Title:    &title,
		Year:     &year,
		Genres:   &genres,
		Director: &director,
		Rating:   &rating,
	}
	if notes := strings.TrimSpace(f.Notes); notes != "" {
		in.Notes = &notes
	}
	return in, nil
}

// SplitGenres splits a comma separated list, dropping blanks.
func SplitGenres(s string) []string {
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("year must be a whole number")
	}
	return year, nil
}

func parseRating(s string) (float64, error) {
	rating, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("rating must be a number")
	}
	return rating, nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
