package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// ClientRepository handles persistence for insured clients.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	ListByAccountManager(ctx context.Context, userID string) ([]domain.Client, error)
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository instantiates the repository.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

const clientColumns = `id, name, account_manager_id, reglement_delay_days, active_flag, created_at, updated_at`

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (name, account_manager_id, reglement_delay_days, active_flag)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		client.Name,
		client.AccountManagerID,
		client.ReglementDelayDays,
		client.Active,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	const query = `
        SELECT id, name, account_manager_id, reglement_delay_days, active_flag, created_at, updated_at
        FROM clients WHERE id=$1`
	var client domain.Client
	if err := scanClient(r.pool.QueryRow(ctx, query, id), &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) ListByAccountManager(ctx context.Context, userID string) ([]domain.Client, error) {
	const query = `
        SELECT id, name, account_manager_id, reglement_delay_days, active_flag, created_at, updated_at
        FROM clients WHERE account_manager_id=$1 AND active_flag=TRUE ORDER BY name`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Client
	for rows.Next() {
		var client domain.Client
		if err := scanClient(rows, &client); err != nil {
			return nil, err
		}
		result = append(result, client)
	}
	return result, rows.Err()
}

func scanClient(row pgx.Row, client *domain.Client) error {
	return row.Scan(
		&client.ID,
		&client.Name,
		&client.AccountManagerID,
		&client.ReglementDelayDays,
		&client.Active,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
}
