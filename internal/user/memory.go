package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process credential store with the same contract
// as Repository. Used by STORAGE_DRIVER=memory and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*User
	now   func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[uuid.UUID]*User),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, email, passwordHash, name string) (*User, error) {
	return r.insert(&User{Email: email, PasswordHash: &passwordHash, Name: name})
}

func (r *MemoryRepository) CreateWithGoogle(ctx context.Context, email, googleID, name string) (*User, error) {
	return r.insert(&User{Email: email, GoogleID: &googleID, Name: name})
}

func (r *MemoryRepository) insert(u *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, ErrDuplicateEmail
		}
		if u.GoogleID != nil && existing.GoogleID != nil && *existing.GoogleID == *u.GoogleID {
			return nil, ErrDuplicateEmail
		}
	}

	u.ID = uuid.New()
	u.CreatedAt = r.now()
	r.users[u.ID] = u

	return clone(u), nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.find(func(u *User) bool { return u.Email == email })
}

func (r *MemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.find(func(u *User) bool { return u.ID == id })
}

func (r *MemoryRepository) GetByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return r.find(func(u *User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (r *MemoryRepository) find(match func(*User) bool) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) LinkGoogleID(ctx context.Context, userID uuid.UUID, googleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.GoogleID = &googleID
	return nil
}

func (r *MemoryRepository) SetResetToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.ResetTokenHash = &tokenHash
	u.ResetTokenExpiry = &expiresAt
	return nil
}

func (r *MemoryRepository) ResetPassword(ctx context.Context, tokenHash, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, u := range r.users {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash {
			continue
		}
		if u.ResetTokenExpiry == nil || !u.ResetTokenExpiry.After(now) {
			return ErrInvalidResetToken
		}
		u.PasswordHash = &passwordHash
		u.ResetTokenHash = nil
		u.ResetTokenExpiry = nil
		return nil
	}
	return ErrInvalidResetToken
}

// Put stores u as is, keeping its id. Seeding and tests only.
func (r *MemoryRepository) Put(u *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = clone(u)
}

func clone(u *User) *User {
	c := *u
	return &c
}
