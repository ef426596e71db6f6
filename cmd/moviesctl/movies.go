package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/redmonkez12/favorite-movies-api/cmd/moviesctl/ui"
	"github.com/redmonkez12/favorite-movies-api/pkg/client"
)

func newMoviesCmd() *cobra.Command {
	moviesCmd := &cobra.Command{
		Use:   "movies",
		Short: "Browse and edit the movie list",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of movies",
		RunE:  runList,
	}
	listCmd.Flags().Int("page", client.DefaultPage, "Page number")
	listCmd.Flags().Int("limit", client.DefaultLimit, "Movies per page")
	listCmd.Flags().String("search", "", "Title contains")
	listCmd.Flags().String("sort", client.DefaultSortBy, "Sort column (title, year, rating, director, genres, createdAt)")
	listCmd.Flags().Bool("asc", false, "Sort ascending")
	listCmd.Flags().StringSlice("genre", nil, "Match any of these genres")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one movie",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a movie",
		RunE:  runAdd,
	}
	addCmd.Flags().String("title", "", "Title")
	addCmd.Flags().String("year", "", "Release year")
	addCmd.Flags().String("genres", "", "Comma separated genres")
	addCmd.Flags().String("director", "", "Director")
	addCmd.Flags().String("rating", "", "Rating from 1 to 10")
	addCmd.Flags().String("notes", "", "Notes")
	addCmd.Flags().String("image", "", "Poster file")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your movies",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
	deleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through movies interactively",
		RunE:  runBrowse,
	}

	moviesCmd.AddCommand(listCmd, browseCmd, showCmd, addCmd, deleteCmd)
	return moviesCmd
}

func runList(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	search, _ := cmd.Flags().GetString("search")
	sortBy, _ := cmd.Flags().GetString("sort")
	asc, _ := cmd.Flags().GetBool("asc")
	genres, _ := cmd.Flags().GetStringSlice("genre")

	order := client.SortDesc
	if asc {
		order = client.SortAsc
	}
	q := client.Query{
		Page:      page,
		Limit:     limit,
		Search:    search,
		SortBy:    sortBy,
		SortOrder: order,
		Genres:    genres,
	}

	result, err := apiClient(cmd).ListMovies(cmd.Context(), q)
	if err != nil {
		return err
	}

	ui.PrintPage(cmd.OutOrStdout(), client.CacheState{
		Movies:     result.Data,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
		Search:     search,
		SortBy:     sortBy,
		SortOrder:  order,
		Status:     client.StatusSucceeded,
	})
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid movie id %q", args[0])
	}

	m, err := apiClient(cmd).GetMovie(cmd.Context(), id)
	if err != nil {
		return err
	}
	ui.PrintMovie(cmd.OutOrStdout(), m)
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	var f ui.MovieForm
	f.Title, _ = cmd.Flags().GetString("title")
	f.Year, _ = cmd.Flags().GetString("year")
	f.Genres, _ = cmd.Flags().GetString("genres")
	f.Director, _ = cmd.Flags().GetString("director")
	f.Rating, _ = cmd.Flags().GetString("rating")
	f.Notes, _ = cmd.Flags().GetString("notes")
	f.Image, _ = cmd.Flags().GetString("image")

	// Interactive mode unless every required flag was given
	if !f.Complete() {
		if err := ui.RunMovieForm(&f); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
	}

	in, err := f.Input()
	if err != nil {
		return err
	}

	c := apiClient(cmd)
	var m *client.Movie
	if f.Image != "" {
		file, err := os.Open(f.Image)
		if err != nil {
			return fmt.Errorf("open poster: %w", err)
		}
		defer file.Close()
		m, err = c.CreateMovieWithImage(cmd.Context(), in, filepath.Base(f.Image), file)
		if err != nil {
			return err
		}
	} else {
		m, err = c.CreateMovie(cmd.Context(), in)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	ui.PrintSuccess(out, "Movie added")
	ui.PrintMovie(out, m)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid movie id %q", args[0])
	}

	c := apiClient(cmd)
	if !yes {
		m, err := c.GetMovie(cmd.Context(), id)
		if err != nil {
			return err
		}
		ok, err := ui.Confirm(fmt.Sprintf("Delete %q?", m.Title))
		if err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
		if !ok {
			ui.PrintHint(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	if err := c.DeleteMovie(cmd.Context(), id); err != nil {
		return err
	}
	ui.PrintSuccess(cmd.OutOrStdout(), "Movie deleted")
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cache := client.NewMovieCache(apiClient(cmd))

	for {
		if err := cache.Fetch(cmd.Context()); err != nil {
			ui.PrintError(out, err.Error())
		}
		state := cache.Snapshot()
		ui.PrintPage(out, state)

		action, err := ui.RunBrowseMenu(state)
		if err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}

		switch action.Kind {
		case ui.ActionNext:
			cache.SetPage(state.Page + 1)
		case ui.ActionPrev:
			cache.SetPage(state.Page - 1)
		case ui.ActionSearch:
			cache.SetSearch(action.Value)
		case ui.ActionSort:
			cache.SetSortBy(action.Value)
		case ui.ActionQuit:
			return nil
		}
	}
}
