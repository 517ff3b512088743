package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/internal/domain/repository"
)

type ContactMessageRepository struct {
	pool *pgxpool.Pool
}

func NewContactMessageRepository(pool *pgxpool.Pool) *ContactMessageRepository {
	return &ContactMessageRepository{pool: pool}
}

func (r *ContactMessageRepository) Create(ctx context.Context, m *entity.ContactMessage) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO contact_messages (name, email, subject, body, user_id, source_ip)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, status, created_at, updated_at
	`, m.Name, m.Email, m.Subject, m.Body, m.UserID, m.SourceIP)
	return row.Scan(&m.ID, &m.Status, &m.CreatedAt, &m.UpdatedAt)
}

func (r *ContactMessageRepository) GetByID(ctx context.Context, id string) (*entity.ContactMessage, error) {
	m := &entity.ContactMessage{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, email, subject, body, status, user_id, source_ip, created_at, updated_at
		FROM contact_messages
		WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &m.Status,
		&m.UserID, &m.SourceIP, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *ContactMessageRepository) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE contact_messages SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

var _ repository.ContactMessageRepository = (*ContactMessageRepository)(nil)
