package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// ContractRepository handles persistence for client contracts.
type ContractRepository interface {
	Create(ctx context.Context, contract *domain.Contract) error
	GetByID(ctx context.Context, id string) (*domain.Contract, error)
	// GetActiveByClient returns the currently active contract for a client,
	// or pgx.ErrNoRows when none exists.
	GetActiveByClient(ctx context.Context, clientID string) (*domain.Contract, error)
	ListByTeamLeader(ctx context.Context, userID string) ([]domain.Contract, error)
}

type contractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository instantiates the repository.
func NewContractRepository(pool *pgxpool.Pool) ContractRepository {
	return &contractRepository{pool: pool}
}

const contractColumns = `id, client_id, delai_reglement_days, team_leader_id, starts_at, ends_at, active_flag, created_at, updated_at`

func (r *contractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	const query = `
        INSERT INTO contracts (client_id, delai_reglement_days, team_leader_id, starts_at, ends_at, active_flag)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		contract.ClientID,
		contract.DelaiReglementDays,
		contract.TeamLeaderID,
		contract.StartsAt,
		contract.EndsAt,
		contract.Active,
	).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt)
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (*domain.Contract, error) {
	const query = `
        SELECT id, client_id, delai_reglement_days, team_leader_id, starts_at, ends_at, active_flag, created_at, updated_at
        FROM contracts WHERE id=$1`
	var contract domain.Contract
	if err := scanContract(r.pool.QueryRow(ctx, query, id), &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) GetActiveByClient(ctx context.Context, clientID string) (*domain.Contract, error) {
	const query = `
        SELECT id, client_id, delai_reglement_days, team_leader_id, starts_at, ends_at, active_flag, created_at, updated_at
        FROM contracts
        WHERE client_id=$1 AND active_flag=TRUE AND starts_at <= NOW() AND (ends_at IS NULL OR ends_at >= NOW())
        ORDER BY starts_at DESC LIMIT 1`
	var contract domain.Contract
	if err := scanContract(r.pool.QueryRow(ctx, query, clientID), &contract); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) ListByTeamLeader(ctx context.Context, userID string) ([]domain.Contract, error) {
	const query = `
        SELECT id, client_id, delai_reglement_days, team_leader_id, starts_at, ends_at, active_flag, created_at, updated_at
        FROM contracts WHERE team_leader_id=$1 AND active_flag=TRUE ORDER BY starts_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Contract
	for rows.Next() {
		var contract domain.Contract
		if err := scanContract(rows, &contract); err != nil {
			return nil, err
		}
		result = append(result, contract)
	}
	return result, rows.Err()
}

func scanContract(row pgx.Row, contract *domain.Contract) error {
	return row.Scan(
		&contract.ID,
		&contract.ClientID,
		&contract.DelaiReglementDays,
		&contract.TeamLeaderID,
		&contract.StartsAt,
		&contract.EndsAt,
		&contract.Active,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)
}
