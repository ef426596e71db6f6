package movie

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/redmonkez12/favorite-movies-api/internal/logging"
	"github.com/redmonkez12/favorite-movies-api/internal/storage"
)

// Service runs catalog operations through the ownership policy and keeps
// stored posters in step with the rows that reference them.
type Service struct {
	store  Store
	images storage.Store
	policy Policy
	logger *logging.Logger
}

// NewService wires the catalog. images may be nil when uploads are disabled.
func NewService(store Store, images storage.Store, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		images: images,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, q Query) (Page, error) {
	movies, total, err := s.store.List(ctx, q)
	if err != nil {
		return Page{}, err
	}
	return NewPage(movies, total, q), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Movie, error) {
	return s.store.Get(ctx, id)
}

// Create adds a movie owned by caller. Any owner the request carried is
// ignored.
func (s *Service) Create(ctx context.Context, caller uuid.UUID, p Patch) (*Movie, error) {
	if err := s.policy.CanCreate(caller); err != nil {
		return nil, err
	}
	if err := p.ValidateCreate(); err != nil {
		return nil, err
	}

	m := &Movie{UserID: caller}
	p.Apply(m)

	if err := s.store.Create(ctx, m); err != nil {
		return nil, err
	}

	created, err := s.store.Get(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload movie: %w", err)
	}
	return created, nil
}

// Update applies p to the movie when caller owns it. Ownership is checked
// before the payload is looked at, so a non-owner is refused whatever
// they send.
// Authorize reports whether caller may modify movie id. Handlers call it
// before reading a request body so a non-owner is refused whatever it sent.
func (s *Service) Authorize(ctx context.Context, caller, id uuid.UUID) error {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.policy.CanModify(caller, m)
}

func (s *Service) Update(ctx context.Context, caller, id uuid.UUID, p Patch) (*Movie, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.CanModify(caller, m); err != nil {
		return nil, err
	}
	if err := p.ValidateUpdate(); err != nil {
		return nil, err
	}

	oldImage := p.Apply(m)

	if err := s.store.Update(ctx, m); err != nil {
		return nil, err
	}

	if oldImage != nil {
		s.deleteImage(ctx, *oldImage)
	}
	return m, nil
}

// Delete removes the movie when caller owns it, then its poster.
func (s *Service) Delete(ctx context.Context, caller, id uuid.UUID) error {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.CanModify(caller, m); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if m.Image != nil {
		s.deleteImage(ctx, *m.Image)
	}
	return nil
}

// deleteImage is best effort. A failure is logged and never reaches the
// caller.
func (s *Service) deleteImage(ctx context.Context, key string) {
	if s.images == nil || key == "" {
		return
	}
	err := s.images.Delete(context.WithoutCancel(ctx), key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("failed to delete poster image", "key", key, "error", err.Error())
	}
}
