package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/redmonkez12/favorite-movies-api/pkg/client"
)

// Credentials are the values collected by the login form.
type Credentials struct {
	Email    string
	Password string
}

// RunLoginForm prompts for whatever credentials are still empty.
func RunLoginForm(creds *Credentials) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("owner@owner.com").
				Value(&creds.Email).
				Validate(required("email")),

			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&creds.Password).
				Validate(required("password")),
		),
	).WithTheme(huh.ThemeCatppuccin())

	return form.Run()
}

// RunMovieForm prompts for a new movie, prefilled with anything given as
// flags.
func RunMovieForm(f *MovieForm) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&f.Title).
				Validate(required("title")),

			huh.NewInput().
				Title("Year").
				Placeholder("2021").
				Value(&f.Year).
				Validate(func(s string) error {
					_, err := parseYear(s)
					return err
				}),

			huh.NewInput().
				Title("Genres").
				Description("Comma separated, e.g. Sci-Fi, Drama").
				Value(&f.Genres).
				Validate(func(s string) error {
					if len(SplitGenres(s)) == 0 {
						return fmt.Errorf("at least one genre is required")
					}
					return nil
				}),

			huh.NewInput().
				Title("Director").
				Value(&f.Director).
				Validate(required("director")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Rating").
				Description("1 to 10").
				Value(&f.Rating).
				Validate(func(s string) error {
					_, err := parseRating(s)
					return err
				}),

			huh.NewText().
				Title("Notes").
				Description("Optional").
				Value(&f.Notes),

			huh.NewInput().
				Title("Poster").
				Description("Optional path to a jpeg, png, webp or gif").
				Value(&f.Image),
		),
	).WithTheme(huh.ThemeCatppuccin())

	return form.Run()
}

// Confirm asks a yes/no question.
func Confirm(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeCatppuccin())

	err := form.Run()
	return ok, err
}

// PrintPage writes a page of movies as a table.
func PrintPage(w io.Writer, s client.CacheState) {
	fmt.Fprintln(w, titleStyle.Render("Movies"))
	if len(s.Movies) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("  No movies found"))
		return
	}

	fmt.Fprintf(w, "  %s\n", headerStyle.Render(fmt.Sprintf("%-36s  %-30s  %4s  %6s  %s", "ID", "TITLE", "YEAR", "RATING", "GENRES")))
	for _, m := range s.Movies {
		rating := ratingStyle.Render(fmt.Sprintf("%6.1f", m.Rating))
		fmt.Fprintf(w, "  %-36s  %-30s  %4d  %s  %s\n", m.ID, truncate(m.Title, 30), m.Year, rating, strings.Join(m.Genres, ", "))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, subtleStyle.Render(fmt.Sprintf("  page %d of %d, %d movies, sorted by %s %s",
		s.Page, s.TotalPages, s.Total, s.SortBy, s.SortOrder)))
}

// PrintMovie writes one movie in detail.
func PrintMovie(w io.Writer, m *client.Movie) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d)", m.Title, m.Year)))
	fmt.Fprintf(w, "  ID:       %s\n", m.ID)
	fmt.Fprintf(w, "  Director: %s\n", m.Director)
	fmt.Fprintf(w, "  Genres:   %s\n", strings.Join(m.Genres, ", "))
	fmt.Fprintf(w, "  Rating:   %s\n", ratingStyle.Render(fmt.Sprintf("%.1f", m.Rating)))
	if m.Notes != nil {
		fmt.Fprintf(w, "  Notes:    %s\n", *m.Notes)
	}
	if m.Image != nil {
		fmt.Fprintf(w, "  Poster:   %s\n", *m.Image)
	}
	if m.User != nil {
		fmt.Fprintf(w, "  Added by: %s\n", m.User.Name)
	}
	fmt.Fprintln(w)
}

// PrintSuccess prints a success message.
func PrintSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render(msg))
}

// PrintHint prints a secondary line.
func PrintHint(w io.Writer, msg string) {
	fmt.Fprintln(w, subtleStyle.Render(msg))
}

// PrintError prints an error message.
func PrintError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+msg))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
