package repository

import (
	"context"

	"github.com/jolivares/cuaderno/internal/domain/entity"
)

// ContactMessageRepository defines persistence for contact-form messages.
type ContactMessageRepository interface {
	Create(ctx context.Context, m *entity.ContactMessage) error
	GetByID(ctx context.Context, id string) (*entity.ContactMessage, error)

	// UpdateStatus advances the workflow state. It reports whether a row
	// matched.
	UpdateStatus(ctx context.Context, id, status string) (bool, error)
}
