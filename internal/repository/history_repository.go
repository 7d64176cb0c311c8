package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// HistoryRepository stores the immutable traitement trail of a bordereau.
type HistoryRepository interface {
	Create(ctx context.Context, entry *domain.TraitementHistory) error
	ListByBordereau(ctx context.Context, bordereauID string, limit, offset int) ([]domain.TraitementHistory, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository instantiates the repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Create(ctx context.Context, entry *domain.TraitementHistory) error {
	const query = `
        INSERT INTO traitement_history (bordereau_id, user_id, action, from_status, to_status, comment)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.BordereauID,
		entry.UserID,
		entry.Action,
		entry.FromStatus,
		entry.ToStatus,
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *historyRepository) ListByBordereau(ctx context.Context, bordereauID string, limit, offset int) ([]domain.TraitementHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, bordereau_id, user_id, action, from_status, to_status, comment, created_at
        FROM traitement_history WHERE bordereau_id=$1
        ORDER BY created_at, id LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, bordereauID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TraitementHistory
	for rows.Next() {
		var entry domain.TraitementHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.BordereauID,
			&entry.UserID,
			&entry.Action,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.Comment,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
