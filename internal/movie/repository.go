package movie

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/redmonkez12/favorite-movies-api/internal/database"
)

// Store is the catalog persistence used by Service. Repository and
// MemoryRepository implement it with the same filtering and ordering.
type Store interface {
	List(ctx context.Context, q Query) ([]Movie, int, error)
	Get(ctx context.Context, id uuid.UUID) (*Movie, error)
	Create(ctx context.Context, m *Movie) error
	Update(ctx context.Context, m *Movie) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository stores movies in Postgres through bun.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List counts the filtered set and returns one sorted page of it. Both
// statements are built from applyFilters.
func (r *Repository) List(ctx context.Context, q Query) ([]Movie, int, error) {
	total, err := r.db.NewSelect().
		Model((*database.Movie)(nil)).
		Apply(applyFilters(q)).
		Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}

	if total == 0 || q.Offset() >= total {
		return []Movie{}, total, nil
	}

	var rows []database.Movie
	err = r.db.NewSelect().
		Model(&rows).
		Relation("User", ownerColumns).
		Apply(applyFilters(q)).
		Apply(applyOrder(q)).
		Limit(q.Limit).
		Offset(q.Offset()).
		Scan(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}

	movies := make([]Movie, 0, len(rows))
	for i := range rows {
		movies = append(movies, *mapDBMovieToModel(&rows[i]))
	}
	return movies, total, nil
}

// Get returns a movie with its owner.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Movie, error) {
	row := new(database.Movie)
	err := r.db.NewSelect().
		Model(row).
		Relation("User", ownerColumns).
		Where("movie.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}

	return mapDBMovieToModel(row), nil
}

// Create inserts m, filling in its id and creation time when unset.
func (r *Repository) Create(ctx context.Context, m *Movie) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	_, err := r.db.NewInsert().
		Model(mapModelToDBMovie(m)).
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create movie: %w", err)
	}
	return nil
}

// Update writes the mutable columns of m. Owner and creation time are
// never touched.
func (r *Repository) Update(ctx context.Context, m *Movie) error {
	result, err := r.db.NewUpdate().
		Model(mapModelToDBMovie(m)).
		Column("title", "year", "genres", "director", "rating", "notes", "image", "have_cats").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}
	return requireOneRow(result)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Movie)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	return requireOneRow(result)
}

func ownerColumns(sq *bun.SelectQuery) *bun.SelectQuery {
	return sq.Column("id", "name", "email")
}

// applyFilters ANDs every present filter of q. It is the SQL twin of
// Query.Matches.
func applyFilters(q Query) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(sq *bun.SelectQuery) *bun.SelectQuery {
		if q.Search != "" {
			sq = sq.Where("LOWER(movie.title) LIKE ?", "%"+escapeLike(strings.ToLower(q.Search))+"%")
		}
		if q.YearFrom != nil {
			sq = sq.Where("movie.year >= ?", *q.YearFrom)
		}
		if q.YearTo != nil {
			sq = sq.Where("movie.year <= ?", *q.YearTo)
		}
		if len(q.Genres) > 0 {
			sq = sq.Where("jsonb_exists_any(movie.genres, ?)", pgdialect.Array(q.Genres))
		}
		if q.RatingMin != nil {
			sq = sq.Where("movie.rating >= ?", *q.RatingMin)
		}
		if q.RatingMax != nil {
			sq = sq.Where("movie.rating <= ?", *q.RatingMax)
		}
		if q.HaveCats != nil {
			sq = sq.Where("movie.have_cats = ?", *q.HaveCats)
		}
		return sq
	}
}

// applyOrder sorts by the requested column and breaks ties by id so pages
// stay stable across calls.
func applyOrder(q Query) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(sq *bun.SelectQuery) *bun.SelectQuery {
		column, ok := sortColumns[q.SortBy]
		if !ok {
			column = sortColumns[SortCreatedAt]
		}
		order := Desc
		if q.SortOrder == Asc {
			order = Asc
		}

		if q.SortBy == SortGenres {
			sq = sq.OrderExpr("? ? NULLS LAST", bun.Safe(column), bun.Safe(string(order)))
		} else {
			sq = sq.OrderExpr("? ?", bun.Safe(column), bun.Safe(string(order)))
		}
		return sq.OrderExpr("movie.id ASC")
	}
}

func requireOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func mapDBMovieToModel(row *database.Movie) *Movie {
	m := &Movie{
		ID:        row.ID,
		Title:     row.Title,
		Year:      row.Year,
		Genres:    row.Genres,
		Director:  row.Director,
		Rating:    row.Rating,
		Notes:     row.Notes,
		Image:     row.Image,
		HaveCats:  row.HaveCats,
		CreatedAt: row.CreatedAt,
		UserID:    row.UserID,
	}
	if m.Genres == nil {
		m.Genres = []string{}
	}
	if row.User != nil && row.User.ID != uuid.Nil {
		m.User = &Owner{
			ID:    row.User.ID,
			Name:  row.User.Name,
			Email: row.User.Email,
		}
	}
	return m
}

func mapModelToDBMovie(m *Movie) *database.Movie {
	return &database.Movie{
		ID:        m.ID,
		Title:     m.Title,
		Year:      m.Year,
		Genres:    m.Genres,
		Director:  m.Director,
		Rating:    m.Rating,
		Notes:     m.Notes,
		Image:     m.Image,
		HaveCats:  m.HaveCats,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}
