package movie

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/favorite-movies-api/internal/user"
)

// OwnerLookup resolves the public profile of a movie owner.
type OwnerLookup func(ctx context.Context, id uuid.UUID) (*Owner, error)

// UserGetter is satisfied by both user repositories.
type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// OwnersFrom adapts a user repository to an OwnerLookup.
func OwnersFrom(users UserGetter) OwnerLookup {
	return func(ctx context.Context, id uuid.UUID) (*Owner, error) {
		u, err := users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &Owner{ID: u.ID, Name: u.Name, Email: u.Email}, nil
	}
}

// MemoryRepository keeps the catalog in process. It applies the same
// filters and ordering as Repository through Query.Matches and Query.less.
type MemoryRepository struct {
	mu     sync.RWMutex
	movies map[uuid.UUID]*Movie
	owners OwnerLookup
	now    func() time.Time
}

// NewMemoryRepository returns an empty catalog. owners may be nil, in which
// case movies are returned without their owner.
func NewMemoryRepository(owners OwnerLookup) *MemoryRepository {
	return &MemoryRepository{
		movies: make(map[uuid.UUID]*Movie),
		owners: owners,
		now:    time.Now,
	}
}

func (r *MemoryRepository) List(ctx context.Context, q Query) ([]Movie, int, error) {
	r.mu.RLock()
	matched := make([]*Movie, 0, len(r.movies))
	for _, m := range r.movies {
		if q.Matches(m) {
			matched = append(matched, m.clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return q.less(matched[i], matched[j])
	})

	total := len(matched)
	start := max(0, min(q.Offset(), total))
	end := min(start+q.Limit, total)

	page := make([]Movie, 0, end-start)
	for _, m := range matched[start:end] {
		if err := r.attachOwner(ctx, m); err != nil {
			return nil, 0, err
		}
		page = append(page, *m)
	}
	return page, total, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id uuid.UUID) (*Movie, error) {
	r.mu.RLock()
	m, ok := r.movies[id]
	if ok {
		m = m.clone()
	}
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if err := r.attachOwner(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *MemoryRepository) Create(ctx context.Context, m *Movie) error {
	if r.owners != nil {
		if _, err := r.owners(ctx, m.UserID); err != nil {
			return fmt.Errorf("failed to create movie: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = r.now()
	}
	stored := m.clone()
	stored.User = nil
	r.movies[m.ID] = stored
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, m *Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.movies[m.ID]
	if !ok {
		return ErrNotFound
	}
	updated := m.clone()
	updated.User = nil
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	r.movies[m.ID] = updated
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.movies[id]; !ok {
		return ErrNotFound
	}
	delete(r.movies, id)
	return nil
}

func (r *MemoryRepository) attachOwner(ctx context.Context, m *Movie) error {
	if r.owners == nil {
		return nil
	}
	owner, err := r.owners(ctx, m.UserID)
	if err != nil {
		return fmt.Errorf("failed to load movie owner: %w", err)
	}
	m.User = owner
	return nil
}
