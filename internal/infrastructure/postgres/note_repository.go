package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/internal/domain/repository"
)

const noteColumns = `id, user_id, title, description, is_active, created_at, updated_at`

type NoteRepository struct {
	pool *pgxpool.Pool
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

func scanNote(row pgx.Row) (*entity.Note, error) {
	n := &entity.Note{}
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Description, &n.IsActive,
		&n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NoteRepository) Create(ctx context.Context, n *entity.Note) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notes (user_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at, updated_at
	`, n.UserID, n.Title, n.Description)
	return row.Scan(&n.ID, &n.IsActive, &n.CreatedAt, &n.UpdatedAt)
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (*entity.Note, error) {
	return scanNote(r.pool.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1`, id))
}

// escapeLike neutralizes LIKE metacharacters in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID string, f repository.NoteFilter) ([]entity.Note, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 10
	}
	pattern := "%" + escapeLike(strings.TrimSpace(f.Search)) + "%"

	where := `user_id = $1
		AND ($2::bool OR is_active)
		AND (title ILIKE $3 OR description ILIKE $3)`

	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM notes WHERE `+where,
		ownerID, f.IncludeInactive, pattern).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE `+where+`
		ORDER BY updated_at DESC
		LIMIT $4 OFFSET $5
	`, ownerID, f.IncludeInactive, pattern, f.PageSize, (f.Page-1)*f.PageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes := make([]entity.Note, 0, f.PageSize)
	for rows.Next() {
		var n entity.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Description,
			&n.IsActive, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, 0, err
		}
		notes = append(notes, n)
	}
	return notes, total, rows.Err()
}

// Update re-verifies ownership inside the predicate: a note that changed
// hands or disappeared between the caller's read and this statement simply
// does not match.
func (r *NoteRepository) Update(ctx context.Context, id, ownerID string, fields repository.NoteUpdate) (*entity.Note, bool, error) {
	n, err := scanNote(r.pool.QueryRow(ctx, `
		UPDATE notes
		SET title = $3, description = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND is_active
		RETURNING `+noteColumns, id, ownerID, fields.Title, fields.Description))
	if err != nil {
		return nil, false, err
	}
	return n, n != nil, nil
}

// SoftDelete leaves updated_at alone on rows that are already inactive so a
// repeated delete is a true no-op.
func (r *NoteRepository) SoftDelete(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE notes
		SET is_active = false,
		    updated_at = CASE WHEN is_active THEN now() ELSE updated_at END
		WHERE id = $1 AND user_id = $2
	`, id, ownerID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() > 0, nil
}

var _ repository.NoteRepository = (*NoteRepository)(nil)
