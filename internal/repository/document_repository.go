package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// DocumentFilter captures scan-queue query parameters.
type DocumentFilter struct {
	BordereauID      *string
	AssignedToUserID *string
	AssignedToAnyOf  []string
	Unassigned       *bool
	Statuses         []domain.DocumentStatus
	IncludeArchived  bool
	Limit            int
	Offset           int
}

// DocumentRepository encapsulates document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	Update(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	ListByBordereau(ctx context.Context, bordereauID string) ([]domain.Document, error)
	ListWithFilter(ctx context.Context, filter DocumentFilter) ([]domain.Document, error)
	CountOpenByAssignee(ctx context.Context, terminal []domain.DocumentStatus) (map[string]int, error)
}

type documentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository instantiates the repository.
func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepository{pool: pool}
}

const documentColumns = `id, bordereau_id, name, doc_type, status, assigned_to_user_id,
       received_at, due_at, archived, created_at, updated_at`

func (r *documentRepository) Create(ctx context.Context, d *domain.Document) error {
	const query = `
        INSERT INTO documents (bordereau_id, name, doc_type, status, assigned_to_user_id, received_at, due_at, archived)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		d.BordereauID,
		d.Name,
		d.Type,
		d.Status,
		d.AssignedToUserID,
		d.ReceivedAt,
		d.DueAt,
		d.Archived,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *documentRepository) Update(ctx context.Context, d *domain.Document) error {
	const query = `
        UPDATE documents SET name=$1, doc_type=$2, status=$3, assigned_to_user_id=$4,
            due_at=$5, archived=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		d.Name,
		d.Type,
		d.Status,
		d.AssignedToUserID,
		d.DueAt,
		d.Archived,
		d.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	query := fmt.Sprintf(`SELECT %s FROM documents WHERE id=$1`, documentColumns)
	var d domain.Document
	if err := scanDocument(r.pool.QueryRow(ctx, query, id), &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepository) ListByBordereau(ctx context.Context, bordereauID string) ([]domain.Document, error) {
	return r.ListWithFilter(ctx, DocumentFilter{BordereauID: &bordereauID, IncludeArchived: true})
}

func (r *documentRepository) ListWithFilter(ctx context.Context, filter DocumentFilter) ([]domain.Document, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if !filter.IncludeArchived {
		clauses = append(clauses, "archived=FALSE")
	}
	if filter.BordereauID != nil {
		args = append(args, *filter.BordereauID)
		clauses = append(clauses, fmt.Sprintf("bordereau_id=$%d", len(args)))
	}
	if filter.AssignedToUserID != nil {
		args = append(args, *filter.AssignedToUserID)
		clauses = append(clauses, fmt.Sprintf("assigned_to_user_id=$%d", len(args)))
	}
	if len(filter.AssignedToAnyOf) > 0 {
		args = append(args, filter.AssignedToAnyOf)
		clauses = append(clauses, fmt.Sprintf("assigned_to_user_id=ANY($%d)", len(args)))
	}
	if filter.Unassigned != nil && *filter.Unassigned {
		clauses = append(clauses, "assigned_to_user_id IS NULL")
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM documents WHERE %s ORDER BY received_at DESC, id LIMIT %d OFFSET %d`,
		documentColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := scanDocument(rows, &d); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *documentRepository) CountOpenByAssignee(ctx context.Context, terminal []domain.DocumentStatus) (map[string]int, error) {
	args := []any{}
	placeholders := make([]string, len(terminal))
	for i, status := range terminal {
		args = append(args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	notIn := ""
	if len(placeholders) > 0 {
		notIn = fmt.Sprintf(" AND status NOT IN (%s)", strings.Join(placeholders, ","))
	}
	query := fmt.Sprintf(`
        SELECT assigned_to_user_id, COUNT(*) FROM documents
        WHERE assigned_to_user_id IS NOT NULL AND archived=FALSE%s
        GROUP BY assigned_to_user_id`, notIn)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var userID string
		var count int
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, err
		}
		counts[userID] = count
	}
	return counts, rows.Err()
}

func scanDocument(row pgx.Row, d *domain.Document) error {
	return row.Scan(
		&d.ID,
		&d.BordereauID,
		&d.Name,
		&d.Type,
		&d.Status,
		&d.AssignedToUserID,
		&d.ReceivedAt,
		&d.DueAt,
		&d.Archived,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
}
