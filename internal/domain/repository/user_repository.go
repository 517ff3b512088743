package repository

import (
	"context"
	"time"

	"github.com/jolivares/cuaderno/internal/domain/entity"
)

// UserRepository defines the persistence operations for user accounts.
// Lookups always return a fresh row; callers must not cache users across
// requests.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetActiveByEmail resolves an active account by email,
	// case-insensitively. Inactive accounts are not visible here.
	GetActiveByEmail(ctx context.Context, email string) (*entity.User, error)

	// RecordLoginFailure increments the failed-attempt counter atomically in
	// the store and applies a lock of lockFor once the counter reaches
	// threshold. It returns the post-increment state so concurrent attempts
	// against the same account never lose increments.
	RecordLoginFailure(ctx context.Context, id string, threshold int, lockFor time.Duration) (attempts int, lockUntil *time.Time, err error)

	// RecordLoginSuccess resets the failed-attempt counter, clears any lock
	// and stamps last_login.
	RecordLoginSuccess(ctx context.Context, id string, at time.Time) error

	SetEmailVerified(ctx context.Context, id string) error
	SetAvatarURL(ctx context.Context, id, url string) error

	// Deactivate performs the logical delete: is_active=false, row retained.
	Deactivate(ctx context.Context, id string) error
}
