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

// BordereauFilter captures corbeille and dashboard query parameters.
type BordereauFilter struct {
	ClientID         *string
	ClientIDs        []string
	ContractIDs      []string
	TeamID           *string
	AssignedToUserID *string
	AssignedToAnyOf  []string
	Unassigned       *bool
	Statuses         []domain.BordereauStatus
	IncludeArchived  bool
	ReceivedFrom     *time.Time
	ReceivedTo       *time.Time
	Limit            int
	Offset           int
}

// BordereauRepository encapsulates bordereau persistence.
type BordereauRepository interface {
	Create(ctx context.Context, bordereau *domain.Bordereau) error
	Update(ctx context.Context, bordereau *domain.Bordereau) error
	GetByID(ctx context.Context, id string) (*domain.Bordereau, error)
	GetByReference(ctx context.Context, reference string) (*domain.Bordereau, error)
	ListWithFilter(ctx context.Context, filter BordereauFilter) ([]domain.Bordereau, error)
	// CountOpenByAssignee returns, per assignee, the number of live
	// bordereaux: assigned, not archived, status outside the terminal set.
	CountOpenByAssignee(ctx context.Context, terminal []domain.BordereauStatus) (map[string]int, error)
}

type bordereauRepository struct {
	pool *pgxpool.Pool
}

// NewBordereauRepository instantiates the repository.
func NewBordereauRepository(pool *pgxpool.Pool) BordereauRepository {
	return &bordereauRepository{pool: pool}
}

const bordereauColumns = `id, reference, client_id, contract_id, team_id, assigned_to_user_id,
       status, nombre_documents, montant_total, date_reception, due_at,
       date_debut_scan, date_fin_scan, date_cloture, archived, created_at, updated_at`

func (r *bordereauRepository) Create(ctx context.Context, b *domain.Bordereau) error {
	const query = `
        INSERT INTO bordereaux (reference, client_id, contract_id, team_id, assigned_to_user_id,
            status, nombre_documents, montant_total, date_reception, due_at, archived)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		b.Reference,
		b.ClientID,
		b.ContractID,
		b.TeamID,
		b.AssignedToUserID,
		b.Status,
		b.NombreDocuments,
		b.MontantTotal,
		b.DateReception,
		b.DueAt,
		b.Archived,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

func (r *bordereauRepository) Update(ctx context.Context, b *domain.Bordereau) error {
	const query = `
        UPDATE bordereaux SET contract_id=$1, team_id=$2, assigned_to_user_id=$3, status=$4,
            nombre_documents=$5, montant_total=$6, due_at=$7, date_debut_scan=$8,
            date_fin_scan=$9, date_cloture=$10, archived=$11, updated_at=NOW()
        WHERE id=$12`
	cmd, err := r.pool.Exec(ctx, query,
		b.ContractID,
		b.TeamID,
		b.AssignedToUserID,
		b.Status,
		b.NombreDocuments,
		b.MontantTotal,
		b.DueAt,
		b.DateDebutScan,
		b.DateFinScan,
		b.DateCloture,
		b.Archived,
		b.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *bordereauRepository) GetByID(ctx context.Context, id string) (*domain.Bordereau, error) {
	query := fmt.Sprintf(`SELECT %s FROM bordereaux WHERE id=$1`, bordereauColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *bordereauRepository) GetByReference(ctx context.Context, reference string) (*domain.Bordereau, error) {
	query := fmt.Sprintf(`SELECT %s FROM bordereaux WHERE reference=$1`, bordereauColumns)
	return r.fetchSingle(ctx, query, reference)
}

func (r *bordereauRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Bordereau, error) {
	var b domain.Bordereau
	if err := scanBordereau(r.pool.QueryRow(ctx, query, arg), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bordereauRepository) ListWithFilter(ctx context.Context, filter BordereauFilter) ([]domain.Bordereau, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if !filter.IncludeArchived {
		clauses = append(clauses, "archived=FALSE")
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		clauses = append(clauses, fmt.Sprintf("client_id=$%d", len(args)))
	}
	if len(filter.ClientIDs) > 0 {
		args = append(args, filter.ClientIDs)
		clauses = append(clauses, fmt.Sprintf("client_id=ANY($%d)", len(args)))
	}
	if len(filter.ContractIDs) > 0 {
		args = append(args, filter.ContractIDs)
		clauses = append(clauses, fmt.Sprintf("contract_id=ANY($%d)", len(args)))
	}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("team_id=$%d", len(args)))
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
	if filter.ReceivedFrom != nil {
		args = append(args, *filter.ReceivedFrom)
		clauses = append(clauses, fmt.Sprintf("date_reception >= $%d", len(args)))
	}
	if filter.ReceivedTo != nil {
		args = append(args, *filter.ReceivedTo)
		clauses = append(clauses, fmt.Sprintf("date_reception <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM bordereaux WHERE %s ORDER BY date_reception DESC, id LIMIT %d OFFSET %d`,
		bordereauColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBordereaux(rows)
}

func (r *bordereauRepository) CountOpenByAssignee(ctx context.Context, terminal []domain.BordereauStatus) (map[string]int, error) {
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
        SELECT assigned_to_user_id, COUNT(*) FROM bordereaux
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

func scanBordereau(row pgx.Row, b *domain.Bordereau) error {
	return row.Scan(
		&b.ID,
		&b.Reference,
		&b.ClientID,
		&b.ContractID,
		&b.TeamID,
		&b.AssignedToUserID,
		&b.Status,
		&b.NombreDocuments,
		&b.MontantTotal,
		&b.DateReception,
		&b.DueAt,
		&b.DateDebutScan,
		&b.DateFinScan,
		&b.DateCloture,
		&b.Archived,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

func scanBordereaux(rows pgx.Rows) ([]domain.Bordereau, error) {
	var result []domain.Bordereau
	for rows.Next() {
		var b domain.Bordereau
		if err := scanBordereau(rows, &b); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}
