package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// VirementFilter captures batch listing parameters.
type VirementFilter struct {
	ClientID    *string
	ClientIDs   []string
	Statuses    []domain.OrdreVirementStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// VirementRepository persists wire-transfer batches and their line items.
type VirementRepository interface {
	// CreateWithItems inserts the batch and its items in one transaction.
	CreateWithItems(ctx context.Context, ordre *domain.OrdreVirement) error
	GetByID(ctx context.Context, id string) (*domain.OrdreVirement, error)
	GetByReference(ctx context.Context, reference string) (*domain.OrdreVirement, error)
	MarkExecuted(ctx context.Context, id string, at time.Time) error
	ListWithFilter(ctx context.Context, filter VirementFilter) ([]domain.OrdreVirement, error)
	ListItems(ctx context.Context, ordreID string) ([]domain.VirementItem, error)
}

type virementRepository struct {
	pool *pgxpool.Pool
}

// NewVirementRepository instantiates the repository.
func NewVirementRepository(pool *pgxpool.Pool) VirementRepository {
	return &virementRepository{pool: pool}
}

const virementColumns = `id, reference, client_id, status, montant_total, generated_by_id, executed_at, created_at, updated_at`

func (r *virementRepository) CreateWithItems(ctx context.Context, ordre *domain.OrdreVirement) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertOrdre = `
        INSERT INTO ordres_virement (reference, client_id, status, montant_total, generated_by_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertOrdre,
		ordre.Reference,
		ordre.ClientID,
		ordre.Status,
		ordre.MontantTotal,
		ordre.GeneratedByID,
	).Scan(&ordre.ID, &ordre.CreatedAt, &ordre.UpdatedAt); err != nil {
		return err
	}

	const insertItem = `
        INSERT INTO virement_items (ordre_virement_id, bordereau_id, montant)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	for i := range ordre.Items {
		item := &ordre.Items[i]
		item.OrdreVirementID = ordre.ID
		if err := tx.QueryRow(ctx, insertItem,
			item.OrdreVirementID,
			item.BordereauID,
			item.Montant,
		).Scan(&item.ID, &item.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *virementRepository) GetByID(ctx context.Context, id string) (*domain.OrdreVirement, error) {
	query := fmt.Sprintf(`SELECT %s FROM ordres_virement WHERE id=$1`, virementColumns)
	var ordre domain.OrdreVirement
	if err := scanVirement(r.pool.QueryRow(ctx, query, id), &ordre); err != nil {
		return nil, err
	}
	return &ordre, nil
}

func (r *virementRepository) GetByReference(ctx context.Context, reference string) (*domain.OrdreVirement, error) {
	query := fmt.Sprintf(`SELECT %s FROM ordres_virement WHERE reference=$1`, virementColumns)
	var ordre domain.OrdreVirement
	if err := scanVirement(r.pool.QueryRow(ctx, query, reference), &ordre); err != nil {
		return nil, err
	}
	return &ordre, nil
}

func (r *virementRepository) MarkExecuted(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE ordres_virement SET status=$1, executed_at=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	cmd, err := r.pool.Exec(ctx, query, domain.OrdreVirementStatusExecute, at, id, domain.OrdreVirementStatusGenere)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *virementRepository) ListWithFilter(ctx context.Context, filter VirementFilter) ([]domain.OrdreVirement, error) {
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
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM ordres_virement WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		virementColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OrdreVirement
	for rows.Next() {
		var ordre domain.OrdreVirement
		if err := scanVirement(rows, &ordre); err != nil {
			return nil, err
		}
		result = append(result, ordre)
	}
	return result, rows.Err()
}

func (r *virementRepository) ListItems(ctx context.Context, ordreID string) ([]domain.VirementItem, error) {
	const query = `
        SELECT id, ordre_virement_id, bordereau_id, montant, created_at
        FROM virement_items WHERE ordre_virement_id=$1 ORDER BY created_at, id`
	rows, err := r.pool.Query(ctx, query, ordreID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.VirementItem
	for rows.Next() {
		var item domain.VirementItem
		if err := rows.Scan(
			&item.ID,
			&item.OrdreVirementID,
			&item.BordereauID,
			&item.Montant,
			&item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func scanVirement(row pgx.Row, ordre *domain.OrdreVirement) error {
	return row.Scan(
		&ordre.ID,
		&ordre.Reference,
		&ordre.ClientID,
		&ordre.Status,
		&ordre.MontantTotal,
		&ordre.GeneratedByID,
		&ordre.ExecutedAt,
		&ordre.CreatedAt,
		&ordre.UpdatedAt,
	)
}
