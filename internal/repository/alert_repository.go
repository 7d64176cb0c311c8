package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// AlertFilter captures dashboard history query parameters.
type AlertFilter struct {
	SubjectUserID *string
	AlertType     *domain.AlertType
	AlertLevel    *domain.AlertLevel
	Resolved      *bool
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Limit         int
	Offset        int
}

// AlertRepository encapsulates alert persistence. The backing table carries
// a partial unique index on (subject_user_id, alert_type) for unresolved
// rows, so a racing duplicate insert fails instead of duplicating.
type AlertRepository interface {
	Create(ctx context.Context, alert *domain.AlertRecord) error
	FindUnresolved(ctx context.Context, userID string, alertType domain.AlertType) (*domain.AlertRecord, error)
	UpdateMessage(ctx context.Context, id, message string, level domain.AlertLevel) error
	Resolve(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter AlertFilter) ([]domain.AlertRecord, error)
}

// IsUniqueViolation reports whether err is a Postgres duplicate-key error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type alertRepository struct {
	pool *pgxpool.Pool
}

// NewAlertRepository instantiates the repository.
func NewAlertRepository(pool *pgxpool.Pool) AlertRepository {
	return &alertRepository{pool: pool}
}

const alertColumns = `id, alert_type, alert_level, subject_user_id, bordereau_id, message, resolved, created_at, resolved_at`

func (r *alertRepository) Create(ctx context.Context, alert *domain.AlertRecord) error {
	const query = `
        INSERT INTO alert_records (alert_type, alert_level, subject_user_id, bordereau_id, message, resolved)
        VALUES ($1,$2,$3,$4,$5,FALSE)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		alert.AlertType,
		alert.AlertLevel,
		alert.SubjectUserID,
		alert.BordereauID,
		alert.Message,
	).Scan(&alert.ID, &alert.CreatedAt)
}

func (r *alertRepository) FindUnresolved(ctx context.Context, userID string, alertType domain.AlertType) (*domain.AlertRecord, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM alert_records
        WHERE subject_user_id=$1 AND alert_type=$2 AND resolved=FALSE
        ORDER BY created_at LIMIT 1`, alertColumns)
	var alert domain.AlertRecord
	if err := scanAlert(r.pool.QueryRow(ctx, query, userID, alertType), &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) UpdateMessage(ctx context.Context, id, message string, level domain.AlertLevel) error {
	const query = `UPDATE alert_records SET message=$1, alert_level=$2 WHERE id=$3 AND resolved=FALSE`
	cmd, err := r.pool.Exec(ctx, query, message, level, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *alertRepository) Resolve(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE alert_records SET resolved=TRUE, resolved_at=$1 WHERE id=$2 AND resolved=FALSE`
	cmd, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *alertRepository) List(ctx context.Context, filter AlertFilter) ([]domain.AlertRecord, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SubjectUserID != nil {
		args = append(args, *filter.SubjectUserID)
		clauses = append(clauses, fmt.Sprintf("subject_user_id=$%d", len(args)))
	}
	if filter.AlertType != nil {
		args = append(args, *filter.AlertType)
		clauses = append(clauses, fmt.Sprintf("alert_type=$%d", len(args)))
	}
	if filter.AlertLevel != nil {
		args = append(args, *filter.AlertLevel)
		clauses = append(clauses, fmt.Sprintf("alert_level=$%d", len(args)))
	}
	if filter.Resolved != nil {
		args = append(args, *filter.Resolved)
		clauses = append(clauses, fmt.Sprintf("resolved=$%d", len(args)))
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

	query := fmt.Sprintf(`SELECT %s FROM alert_records WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		alertColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AlertRecord
	for rows.Next() {
		var alert domain.AlertRecord
		if err := scanAlert(rows, &alert); err != nil {
			return nil, err
		}
		result = append(result, alert)
	}
	return result, rows.Err()
}

func scanAlert(row pgx.Row, alert *domain.AlertRecord) error {
	return row.Scan(
		&alert.ID,
		&alert.AlertType,
		&alert.AlertLevel,
		&alert.SubjectUserID,
		&alert.BordereauID,
		&alert.Message,
		&alert.Resolved,
		&alert.CreatedAt,
		&alert.ResolvedAt,
	)
}
