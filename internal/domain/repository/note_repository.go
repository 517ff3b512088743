package repository

import (
	"context"

	"github.com/jolivares/cuaderno/internal/domain/entity"
)

// NoteFilter narrows and pages owner-scoped note listings. The active-only
// default is explicit here rather than injected by any hidden query layer;
// set IncludeInactive to see soft-deleted rows.
type NoteFilter struct {
	Search          string
	Page            int
	PageSize        int
	IncludeInactive bool
}

// NoteUpdate carries the mutable note fields for an update.
type NoteUpdate struct {
	Title       string
	Description string
}

// NoteRepository defines persistence for notes. Every mutating method takes
// the acting owner's id and evaluates it inside the store-side predicate, so
// ownership is re-verified at the moment of mutation.
type NoteRepository interface {
	Create(ctx context.Context, n *entity.Note) error
	GetByID(ctx context.Context, id string) (*entity.Note, error)

	// ListByOwner returns the owner's notes matching the filter ordered by
	// most recently updated first, plus the total match count for pagination.
	ListByOwner(ctx context.Context, ownerID string, f NoteFilter) ([]entity.Note, int, error)

	// Update mutates title/description and touches updated_at for the note
	// with the given id and owner. It reports whether a row matched.
	Update(ctx context.Context, id, ownerID string, fields NoteUpdate) (*entity.Note, bool, error)

	// SoftDelete sets is_active=false for the note with the given id and
	// owner. Already-inactive notes still match, which makes the operation
	// idempotent. It reports whether a row matched.
	SoftDelete(ctx context.Context, id, ownerID string) (bool, error)
}
