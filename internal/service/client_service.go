package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

// ClientService manages insured clients and their contracts.
type ClientService struct {
	clients   repository.ClientRepository
	contracts repository.ContractRepository
}

// ClientInput describes a client registration payload.
type ClientInput struct {
	Name               string
	AccountManagerID   *string
	ReglementDelayDays *int
}

// ContractInput describes a contract registration payload.
type ContractInput struct {
	ClientID           string
	DelaiReglementDays *int
	TeamLeaderID       *string
	StartsAt           time.Time
	EndsAt             *time.Time
}

// NewClientService constructs the service.
func NewClientService(clients repository.ClientRepository, contracts repository.ContractRepository) *ClientService {
	return &ClientService{clients: clients, contracts: contracts}
}

// CreateClient registers a client.
func (s *ClientService) CreateClient(ctx context.Context, input ClientInput) (*domain.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("client name required", nil)
	}
	client := &domain.Client{
		Name:               name,
		AccountManagerID:   input.AccountManagerID,
		ReglementDelayDays: input.ReglementDelayDays,
		Active:             true,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, apperrors.MapError(err)
	}
	return client, nil
}

// CreateContract registers a contract under an existing client.
func (s *ClientService) CreateContract(ctx context.Context, input ContractInput) (*domain.Contract, error) {
	client, err := s.clients.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !client.Active {
		return nil, apperrors.NewConflict("client inactive", map[string]any{"client_id": client.ID})
	}
	starts := input.StartsAt
	if starts.IsZero() {
		starts = time.Now()
	}
	contract := &domain.Contract{
		ClientID:           client.ID,
		DelaiReglementDays: input.DelaiReglementDays,
		TeamLeaderID:       input.TeamLeaderID,
		StartsAt:           starts,
		EndsAt:             input.EndsAt,
		Active:             true,
	}
	if err := s.contracts.Create(ctx, contract); err != nil {
		return nil, apperrors.MapError(err)
	}
	return contract, nil
}

// GetClient fetches a client.
func (s *ClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return client, nil
}

// Portfolio lists the clients managed by a gestionnaire senior.
func (s *ClientService) Portfolio(ctx context.Context, accountManagerID string) ([]domain.Client, error) {
	return s.clients.ListByAccountManager(ctx, accountManagerID)
}
