package client

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Fetcher loads one page of movies. *Client satisfies it.
type Fetcher interface {
	ListMovies(ctx context.Context, q Query) (*Page, error)
}

// CacheState is a copy of the cache contents at one point in time.
type CacheState struct {
	Movies     []Movie
	Total      int
	Page       int
	Limit      int
	TotalPages int
	Search     string
	SortBy     string
	SortOrder  string
	Status     Status
	Err        error
}

// MovieCache keeps the last fetched page together with the query that
// produced it. Mutations reported through Created, Updated and Deleted are
// applied locally without a round trip.
type MovieCache struct {
	fetcher Fetcher

	mu    sync.Mutex
	state CacheState
}

func NewMovieCache(fetcher Fetcher) *MovieCache {
	q := DefaultQuery()
	return &MovieCache{
		fetcher: fetcher,
		state: CacheState{
			Movies:    []Movie{},
			Page:      q.Page,
			Limit:     q.Limit,
			SortBy:    q.SortBy,
			SortOrder: q.SortOrder,
			Status:    StatusIdle,
		},
	}
}

func (c *MovieCache) SetPage(page int) {
	c.mu.Lock()
	c.state.Page = page
	c.mu.Unlock()
}

// SetSearch changes the title filter and goes back to the first page.
func (c *MovieCache) SetSearch(search string) {
	c.mu.Lock()
	c.state.Search = search
	c.state.Page = 1
	c.mu.Unlock()
}

// SetSortBy selects field ascending. Choosing the current field again
// flips the order. Either way the first page is selected.
func (c *MovieCache) SetSortBy(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.SortBy == field {
		if c.state.SortOrder == SortAsc {
			c.state.SortOrder = SortDesc
		} else {
			c.state.SortOrder = SortAsc
		}
	} else {
		c.state.SortBy = field
		c.state.SortOrder = SortAsc
	}
	c.state.Page = 1
}

// Query returns the query the next Fetch will send.
func (c *MovieCache) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query()
}

func (c *MovieCache) query() Query {
	return Query{
		Page:      c.state.Page,
		Limit:     c.state.Limit,
		Search:    c.state.Search,
		SortBy:    c.state.SortBy,
		SortOrder: c.state.SortOrder,
	}
}

// Fetch loads the current query. On failure the previous page is kept and
// the error is recorded.
func (c *MovieCache) Fetch(ctx context.Context) error {
	c.mu.Lock()
	q := c.query()
	c.state.Status = StatusLoading
	c.state.Err = nil
	c.mu.Unlock()

	page, err := c.fetcher.ListMovies(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state.Status = StatusFailed
		c.state.Err = err
		return err
	}
	c.state.Movies = slices.Clone(page.Data)
	if c.state.Movies == nil {
		c.state.Movies = []Movie{}
	}
	c.state.Total = page.Total
	c.state.Page = page.Page
	c.state.Limit = page.Limit
	c.state.TotalPages = page.TotalPages
	c.state.Status = StatusSucceeded
	return nil
}

// Invalidate re-fetches the current query.
func (c *MovieCache) Invalidate(ctx context.Context) error {
	return c.Fetch(ctx)
}

func (c *MovieCache) Created(m Movie) {
	c.mu.Lock()
	c.state.Movies = slices.Insert(c.state.Movies, 0, m)
	c.state.Total++
	c.mu.Unlock()
}

func (c *MovieCache) Updated(m Movie) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.state.Movies, func(x Movie) bool { return x.ID == m.ID })
	if i >= 0 {
		c.state.Movies[i] = m
	}
}

func (c *MovieCache) Deleted(id uuid.UUID) {
	c.mu.Lock()
	c.state.Movies = slices.DeleteFunc(c.state.Movies, func(x Movie) bool { return x.ID == id })
	c.state.Total--
	c.mu.Unlock()
}

func (c *MovieCache) Snapshot() CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Movies = slices.Clone(c.state.Movies)
	return s
}
