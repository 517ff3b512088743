package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, name, email, password_hash, role, avatar_url,
	is_active, email_verified, last_login, login_attempts, lock_until,
	created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.AvatarURL, &u.IsActive, &u.EmailVerified, &u.LastLogin,
		&u.LoginAttempts, &u.LockUntil, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_active, email_verified, created_at, updated_at
	`, u.Name, u.Email, u.PasswordHash, u.Role)

	err := row.Scan(&u.ID, &u.IsActive, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetActiveByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) AND is_active`, email))
}

// RecordLoginFailure runs the increment and conditional lock as one UPDATE so
// concurrent failed attempts against the same account serialize in the store
// instead of overwriting each other.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, id string, threshold int, lockFor time.Duration) (int, *time.Time, error) {
	var attempts int
	var lockUntil *time.Time
	err := r.pool.QueryRow(ctx, `
		UPDATE users
		SET login_attempts = login_attempts + 1,
		    lock_until = CASE
		        WHEN login_attempts + 1 >= $2 THEN now() + make_interval(secs => $3)
		        ELSE lock_until
		    END,
		    updated_at = now()
		WHERE id = $1
		RETURNING login_attempts, lock_until
	`, id, threshold, lockFor.Seconds()).Scan(&attempts, &lockUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil, nil
	}
	return attempts, lockUntil, err
}

func (r *UserRepository) RecordLoginSuccess(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users
		SET login_attempts = 0, lock_until = NULL, last_login = $2, updated_at = now()
		WHERE id = $1
	`, id, at)
	return err
}

func (r *UserRepository) SetEmailVerified(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET email_verified = true, updated_at = now() WHERE id = $1`, id)
	return err
}

func (r *UserRepository) SetAvatarURL(ctx context.Context, id, url string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET avatar_url = $2, updated_at = now() WHERE id = $1`, id, url)
	return err
}

func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = false, updated_at = now() WHERE id = $1`, id)
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
