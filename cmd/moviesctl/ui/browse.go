package ui

import (
	"github.com/charmbracelet/huh"

	"github.com/redmonkez12/favorite-movies-api/pkg/client"
)

type ActionKind string

const (
	ActionNext   ActionKind = "next"
	ActionPrev   ActionKind = "prev"
	ActionSearch ActionKind = "search"
	ActionSort   ActionKind = "sort"
	ActionQuit   ActionKind = "quit"
)

// Action is one step chosen in the browse menu.
type Action struct {
	Kind  ActionKind
	Value string
}

var sortColumns = []string{"title", "year", "rating", "director", "genres", "createdAt"}

// BrowseOptions lists the actions available on the page described by s.
func BrowseOptions(s client.CacheState) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, 5)
	if s.Page < s.TotalPages {
		opts = append(opts, huh.NewOption("Next page", string(ActionNext)))
	}
	if s.Page > 1 {
		opts = append(opts, huh.NewOption("Previous page", string(ActionPrev)))
	}
	opts = append(opts,
		huh.NewOption("Search by title", string(ActionSearch)),
		huh.NewOption("Sort", string(ActionSort)),
		huh.NewOption("Quit", string(ActionQuit)),
	)
	return opts
}

// RunBrowseMenu asks what to do next, with a follow-up prompt for search
// text or the sort column.
func RunBrowseMenu(s client.CacheState) (Action, error) {
	var kind string
	menu := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Next").
				Options(BrowseOptions(s)...).
				Value(&kind),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := menu.Run(); err != nil {
		return Action{}, err
	}

	action := Action{Kind: ActionKind(kind)}
	var field huh.Field
	switch action.Kind {
	case ActionSearch:
		action.Value = s.Search
		field = huh.NewInput().
			Title("Title contains").
			Description("Leave empty to clear").
			Value(&action.Value)
	case ActionSort:
		action.Value = s.SortBy
		field = huh.NewSelect[string]().
			Title("Sort by").
			Description("Choosing the current column flips the order").
			Options(huh.NewOptions(sortColumns...)...).
			Value(&action.Value)
	default:
		return action, nil
	}

	form := huh.NewForm(huh.NewGroup(field)).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		return Action{}, err
	}
	return action, nil
}
