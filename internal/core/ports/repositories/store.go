package repositories

import (
	"context"
)

// Store is the single keyed-store contract every entity kind persists
// through. Implementations assign an identifier on the first save of an
// entity with an empty id; saving an entity that already has an id updates it
// in place. Lookups that do not resolve return apperrors.ErrNotFound rather
// than a silent nil.
type Store[T any] interface {
	// FindByID retrieves the entity with the given id.
	FindByID(ctx context.Context, id string) (*T, error)

	// FindAll retrieves every persisted entity of this kind.
	FindAll(ctx context.Context) ([]T, error)

	// Save persists the entity, assigning and returning a fresh id when the
	// entity's id is empty.
	Save(ctx context.Context, entity *T) (string, error)

	// DeleteByID removes the entity with the given id.
	DeleteByID(ctx context.Context, id string) error
}
