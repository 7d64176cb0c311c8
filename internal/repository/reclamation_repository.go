package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// ReclamationFilter captures complaint listing parameters.
type ReclamationFilter struct {
	ClientID         *string
	ClientIDs        []string
	AssignedToUserID *string
	AssignedToAnyOf  []string
	Statuses         []domain.ReclamationStatus
	Severities       []domain.ReclamationSeverity
	Limit            int
	Offset           int
}

// ReclamationRepository encapsulates complaint persistence.
type ReclamationRepository interface {
	Create(ctx context.Context, rec *domain.Reclamation) error
	Update(ctx context.Context, rec *domain.Reclamation) error
	GetByID(ctx context.Context, id string) (*domain.Reclamation, error)
	ListWithFilter(ctx context.Context, filter ReclamationFilter) ([]domain.Reclamation, error)
}

type reclamationRepository struct {
	pool *pgxpool.Pool
}

// NewReclamationRepository instantiates the repository.
func NewReclamationRepository(pool *pgxpool.Pool) ReclamationRepository {
	return &reclamationRepository{pool: pool}
}

const reclamationColumns = `id, client_id, bordereau_id, assigned_to_user_id, status, severity, subject, description, created_at, updated_at, resolved_at`

func (r *reclamationRepository) Create(ctx context.Context, rec *domain.Reclamation) error {
	const query = `
        INSERT INTO reclamations (client_id, bordereau_id, assigned_to_user_id, status, severity, subject, description)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rec.ClientID,
		rec.BordereauID,
		rec.AssignedToUserID,
		rec.Status,
		rec.Severity,
		rec.Subject,
		rec.Description,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

func (r *reclamationRepository) Update(ctx context.Context, rec *domain.Reclamation) error {
	const query = `
        UPDATE reclamations SET assigned_to_user_id=$1, status=$2, severity=$3, subject=$4,
            description=$5, resolved_at=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		rec.AssignedToUserID,
		rec.Status,
		rec.Severity,
		rec.Subject,
		rec.Description,
		rec.ResolvedAt,
		rec.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reclamationRepository) GetByID(ctx context.Context, id string) (*domain.Reclamation, error) {
	query := fmt.Sprintf(`SELECT %s FROM reclamations WHERE id=$1`, reclamationColumns)
	var rec domain.Reclamation
	if err := scanReclamation(r.pool.QueryRow(ctx, query, id), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *reclamationRepository) ListWithFilter(ctx context.Context, filter ReclamationFilter) ([]domain.Reclamation, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		clauses = append(clauses, fmt.Sprintf("client_id=$%d", len(args)))
	}
	if len(filter.ClientIDs) > 0 {
		args = append(args, filter.ClientIDs)
		clauses = append(clauses, fmt.Sprintf("client_id=ANY($%d)", len(args)))
	}
	if filter.AssignedToUserID != nil {
		args = append(args, *filter.AssignedToUserID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_user_id=$%d", len(args)))
	}
	if len(filter.AssignedToAnyOf) > 0 {
		args = append(args, filter.AssignedToAnyOf)
		clauses = append(clauses, fmt.Sprintf("assigned_to_user_id=ANY($%d)", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Severities) > 0 {
		placeholders := make([]string, len(filter.Severities))
		for i, severity := range filter.Severities {
			args = append(args, severity)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("severity IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM reclamations WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		reclamationColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Reclamation
	for rows.Next() {
		var rec domain.Reclamation
		if err := scanReclamation(rows, &rec); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func scanReclamation(row pgx.Row, rec *domain.Reclamation) error {
	return row.Scan(
		&rec.ID,
		&rec.ClientID,
		&rec.BordereauID,
		&rec.AssignedToUserID,
		&rec.Status,
		&rec.Severity,
		&rec.Subject,
		&rec.Description,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.ResolvedAt,
	)
}
