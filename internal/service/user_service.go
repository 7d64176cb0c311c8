package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ars-claims-service/internal/auth"
	"github.com/spec-kit/ars-claims-service/internal/config"
	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

// UserService manages staff accounts, reporting lines and capacities.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// UserCreateInput describes a staff provisioning payload.
type UserCreateInput struct {
	FullName     string
	Email        string
	Password     string
	Role         domain.StaffRole
	Capacity     *int
	TeamLeaderID *string
}

// UserUpdateInput describes mutable staff fields.
type UserUpdateInput struct {
	FullName     string
	Email        string
	Role         domain.StaffRole
	Capacity     *int
	TeamLeaderID *string
	Active       bool
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, users repository.UserRepository) *UserService {
	return &UserService{users: users, bcryptCost: cfg.Auth.BcryptCost}
}

func requireAdmin(actor *domain.User) error {
	if actor == nil || actor.Role != domain.StaffRoleSuperAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// Create provisions a staff account.
func (s *UserService) Create(ctx context.Context, actor *domain.User, input UserCreateInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if existing, err := s.users.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already exists", map[string]any{"email": input.Email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	if err := s.validateTeamLeader(ctx, input.Role, input.TeamLeaderID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Capacity:     input.Capacity,
		TeamLeaderID: input.TeamLeaderID,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Update modifies a staff account.
func (s *UserService) Update(ctx context.Context, actor *domain.User, userID string, input UserUpdateInput) (*domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if input.Email != "" && input.Email != user.Email {
		if existing, err := s.users.GetByEmail(ctx, input.Email); err == nil && existing != nil && existing.ID != user.ID {
			return nil, apperrors.NewConflict("email already exists", map[string]any{"email": input.Email})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		user.Email = input.Email
	}
	if err := s.validateTeamLeader(ctx, input.Role, input.TeamLeaderID); err != nil {
		return nil, err
	}

	user.FullName = input.FullName
	user.Role = input.Role
	user.Capacity = input.Capacity
	user.TeamLeaderID = input.TeamLeaderID
	user.Active = input.Active

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// List returns staff accounts matching the filter.
func (s *UserService) List(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx, filter)
}

// GetByID fetches a staff account.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Team returns the direct reports of a chef d'équipe.
func (s *UserService) Team(ctx context.Context, leaderID string) ([]domain.User, error) {
	return s.users.ListSubordinates(ctx, leaderID)
}

func (s *UserService) validateTeamLeader(ctx context.Context, role domain.StaffRole, leaderID *string) error {
	if leaderID == nil || *leaderID == "" {
		return nil
	}
	if role == domain.StaffRoleChefEquipe || role == domain.StaffRoleSuperAdmin {
		return apperrors.NewValidationError("role cannot report to a team leader", map[string]any{"role": role})
	}
	leader, err := s.users.GetByID(ctx, *leaderID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if leader.Role != domain.StaffRoleChefEquipe {
		return apperrors.NewValidationError("team leader must be chef d'équipe", map[string]any{"team_leader_id": *leaderID})
	}
	return nil
}
