package movie

import (
	"errors"

	"github.com/google/uuid"
)

var ErrUnauthenticated = errors.New("authentication required")

// Policy decides who may create and change catalog entries. Reads are
// gated at the router, not here.
type Policy struct{}

// CanCreate allows any authenticated caller.
func (Policy) CanCreate(caller uuid.UUID) error {
	if caller == uuid.Nil {
		return ErrUnauthenticated
	}
	return nil
}

// CanModify allows only the owner of m to update or delete it.
func (Policy) CanModify(caller uuid.UUID, m *Movie) error {
	if caller == uuid.Nil {
		return ErrUnauthenticated
	}
	if m.UserID != caller {
		return ErrForbidden
	}
	return nil
}
