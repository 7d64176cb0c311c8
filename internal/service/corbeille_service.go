package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	"github.com/spec-kit/ars-claims-service/internal/workflow"
)

// CorbeilleService builds the role-scoped work basket for a staff member.
// Scope decides which rows are even fetched; the workflow classifier then
// buckets whatever the scope returned.
type CorbeilleService struct {
	bordereaux repository.BordereauRepository
	documents  repository.DocumentRepository
	users      repository.UserRepository
	clients    repository.ClientRepository
	contracts  repository.ContractRepository
	profiles   map[domain.StaffRole]workflow.RoleProfile
	cache      *redis.Client
	cacheTTL   time.Duration
	opts       workflow.Options
	logger     *zap.Logger
	now        func() time.Time
}

// CorbeilleDependencies bundles collaborators for the corbeille service.
type CorbeilleDependencies struct {
	BordereauRepo repository.BordereauRepository
	DocumentRepo  repository.DocumentRepository
	UserRepo      repository.UserRepository
	ClientRepo    repository.ClientRepository
	ContractRepo  repository.ContractRepository
	Profiles      map[domain.StaffRole]workflow.RoleProfile
	Cache         *redis.Client
	CacheTTL      time.Duration
	Options       workflow.Options
	Logger        *zap.Logger
}

// NewCorbeilleService constructs the service.
func NewCorbeilleService(deps CorbeilleDependencies) *CorbeilleService {
	profiles := deps.Profiles
	if profiles == nil {
		profiles = workflow.DefaultProfiles()
	}
	opts := deps.Options
	if opts.CriticalMultiplier == 0 {
		opts = workflow.DefaultOptions()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CorbeilleService{
		bordereaux: deps.BordereauRepo,
		documents:  deps.DocumentRepo,
		users:      deps.UserRepo,
		clients:    deps.ClientRepo,
		contracts:  deps.ContractRepo,
		profiles:   profiles,
		cache:      deps.Cache,
		cacheTTL:   deps.CacheTTL,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

// GetCorbeille returns the basket view for a user. A role without a profile
// yields an empty corbeille rather than an error; the caller may simply have
// nothing to work on.
func (s *CorbeilleService) GetCorbeille(ctx context.Context, user *domain.User) (workflow.Corbeille, error) {
	profile, ok := s.profiles[user.Role]
	if !ok {
		s.logger.Warn("no corbeille profile for role", zap.String("role", string(user.Role)))
		return workflow.Build(nil, workflow.RoleProfile{}, s.now(), s.opts), nil
	}

	items, err := s.scopedItems(ctx, user, profile)
	if err != nil {
		return workflow.Corbeille{}, err
	}
	return workflow.Build(items, profile, s.now(), s.opts), nil
}

// GetStats returns the corbeille counters, served from Redis when a fresh
// snapshot exists. Cache failures degrade to a direct rebuild.
func (s *CorbeilleService) GetStats(ctx context.Context, user *domain.User) (workflow.Stats, error) {
	key := statsCacheKey(user)
	if s.cache != nil && s.cacheTTL > 0 {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			var stats workflow.Stats
			if jsonErr := json.Unmarshal([]byte(raw), &stats); jsonErr == nil {
				return stats, nil
			}
		}
	}

	corbeille, err := s.GetCorbeille(ctx, user)
	if err != nil {
		return workflow.Stats{}, err
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if payload, jsonErr := json.Marshal(corbeille.Stats); jsonErr == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("stats cache write failed", zap.Error(err))
			}
		}
	}
	return corbeille.Stats, nil
}

// InvalidateStats drops the cached counters for a user after a mutation.
func (s *CorbeilleService) InvalidateStats(ctx context.Context, user *domain.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey(user)).Err(); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

func statsCacheKey(user *domain.User) string {
	return fmt.Sprintf("ars:corbeille:stats:%s:%s", user.Role, user.ID)
}

// scopePageSize bounds each scope query; wide scopes drain page by page so
// the repository's default limit never truncates a corbeille.
const scopePageSize = 500

// scopedItems resolves which work items a user may act on. The sets from the
// individual filters can overlap; merge deduplicates by item ID.
func (s *CorbeilleService) scopedItems(ctx context.Context, user *domain.User, profile workflow.RoleProfile) ([]domain.WorkItem, error) {
	visible := visibleBordereauStatuses(profile)

	switch user.Role {
	case domain.StaffRoleBureauOrdre:
		return s.poolAndOwn(ctx, user.ID, visible)

	case domain.StaffRoleScan:
		items, err := s.poolAndOwn(ctx, user.ID, visible)
		if err != nil {
			return nil, err
		}
		docItems, err := s.scanDocuments(ctx, user.ID, profile)
		if err != nil {
			return nil, err
		}
		return mergeItems(items, docItems), nil

	case domain.StaffRoleGestionnaire:
		bordereaux, err := s.listBordereaux(ctx, repository.BordereauFilter{
			AssignedToUserID: &user.ID,
			Statuses:         visible,
		})
		if err != nil {
			return nil, err
		}
		return bordereauxToItems(bordereaux), nil

	case domain.StaffRoleChefEquipe:
		return s.teamScope(ctx, user, visible)

	case domain.StaffRoleGestionnaireSenior:
		return s.portfolioScope(ctx, user, visible)

	case domain.StaffRoleSuperAdmin:
		bordereaux, err := s.listBordereaux(ctx, repository.BordereauFilter{})
		if err != nil {
			return nil, err
		}
		return bordereauxToItems(bordereaux), nil
	}

	return nil, nil
}

// listBordereaux drains every page matching the filter.
func (s *CorbeilleService) listBordereaux(ctx context.Context, filter repository.BordereauFilter) ([]domain.Bordereau, error) {
	var all []domain.Bordereau
	filter.Limit = scopePageSize
	for offset := 0; ; offset += scopePageSize {
		filter.Offset = offset
		page, err := s.bordereaux.ListWithFilter(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < scopePageSize {
			return all, nil
		}
	}
}

// listDocuments drains every page matching the filter.
func (s *CorbeilleService) listDocuments(ctx context.Context, filter repository.DocumentFilter) ([]domain.Document, error) {
	var all []domain.Document
	filter.Limit = scopePageSize
	for offset := 0; ; offset += scopePageSize {
		filter.Offset = offset
		page, err := s.documents.ListWithFilter(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < scopePageSize {
			return all, nil
		}
	}
}

// poolAndOwn covers intake-style roles: everything assigned to the user plus
// the unassigned pool in the statuses the role handles.
func (s *CorbeilleService) poolAndOwn(ctx context.Context, userID string, visible []domain.BordereauStatus) ([]domain.WorkItem, error) {
	own, err := s.listBordereaux(ctx, repository.BordereauFilter{
		AssignedToUserID: &userID,
		Statuses:         visible,
	})
	if err != nil {
		return nil, err
	}
	unassigned := true
	pool, err := s.listBordereaux(ctx, repository.BordereauFilter{
		Unassigned: &unassigned,
		Statuses:   visible,
	})
	if err != nil {
		return nil, err
	}
	return mergeItems(bordereauxToItems(own), bordereauxToItems(pool)), nil
}

func (s *CorbeilleService) scanDocuments(ctx context.Context, userID string, profile workflow.RoleProfile) ([]domain.WorkItem, error) {
	statuses := visibleDocumentStatuses(profile)
	own, err := s.listDocuments(ctx, repository.DocumentFilter{
		AssignedToUserID: &userID,
		Statuses:         statuses,
	})
	if err != nil {
		return nil, err
	}
	unassigned := true
	pool, err := s.listDocuments(ctx, repository.DocumentFilter{
		Unassigned: &unassigned,
		Statuses:   statuses,
	})
	if err != nil {
		return nil, err
	}
	return mergeItems(documentsToItems(own), documentsToItems(pool)), nil
}

// teamScope gathers everything a chef d'équipe supervises: work assigned to
// them or their reports, work routed to their team, and work under contracts
// they lead.
func (s *CorbeilleService) teamScope(ctx context.Context, user *domain.User, visible []domain.BordereauStatus) ([]domain.WorkItem, error) {
	subordinates, err := s.users.ListSubordinates(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	assignees := make([]string, 0, len(subordinates)+1)
	assignees = append(assignees, user.ID)
	for _, sub := range subordinates {
		assignees = append(assignees, sub.ID)
	}

	assigned, err := s.listBordereaux(ctx, repository.BordereauFilter{
		AssignedToAnyOf: assignees,
		Statuses:        visible,
	})
	if err != nil {
		return nil, err
	}

	team, err := s.listBordereaux(ctx, repository.BordereauFilter{
		TeamID:   &user.ID,
		Statuses: visible,
	})
	if err != nil {
		return nil, err
	}

	items := mergeItems(bordereauxToItems(assigned), bordereauxToItems(team))

	contracts, err := s.contracts.ListByTeamLeader(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(contracts) > 0 {
		contractIDs := make([]string, 0, len(contracts))
		for _, c := range contracts {
			contractIDs = append(contractIDs, c.ID)
		}
		underContract, err := s.listBordereaux(ctx, repository.BordereauFilter{
			ContractIDs: contractIDs,
			Statuses:    visible,
		})
		if err != nil {
			return nil, err
		}
		items = mergeItems(items, bordereauxToItems(underContract))
	}
	return items, nil
}

// portfolioScope limits a gestionnaire senior to bordereaux of the clients
// they manage.
func (s *CorbeilleService) portfolioScope(ctx context.Context, user *domain.User, visible []domain.BordereauStatus) ([]domain.WorkItem, error) {
	clients, err := s.clients.ListByAccountManager(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, nil
	}
	clientIDs := make([]string, 0, len(clients))
	for _, c := range clients {
		clientIDs = append(clientIDs, c.ID)
	}
	bordereaux, err := s.listBordereaux(ctx, repository.BordereauFilter{
		ClientIDs: clientIDs,
		Statuses:  visible,
	})
	if err != nil {
		return nil, err
	}
	return bordereauxToItems(bordereaux), nil
}

func visibleBordereauStatuses(profile workflow.RoleProfile) []domain.BordereauStatus {
	all := []domain.BordereauStatus{
		domain.BordereauStatusEnAttente,
		domain.BordereauStatusAScanner,
		domain.BordereauStatusScanEnCours,
		domain.BordereauStatusScanne,
		domain.BordereauStatusAAffecter,
		domain.BordereauStatusAssigne,
		domain.BordereauStatusEnCours,
		domain.BordereauStatusTraite,
		domain.BordereauStatusCloture,
		domain.BordereauStatusVirementExecute,
		domain.BordereauStatusRejete,
	}
	var visible []domain.BordereauStatus
	for _, status := range all {
		if profile.Visible(string(status)) {
			visible = append(visible, status)
		}
	}
	return visible
}

func visibleDocumentStatuses(profile workflow.RoleProfile) []domain.DocumentStatus {
	all := []domain.DocumentStatus{
		domain.DocumentStatusUploade,
		domain.DocumentStatusEnCoursScan,
		domain.DocumentStatusScanne,
		domain.DocumentStatusTraite,
		domain.DocumentStatusRejete,
	}
	var visible []domain.DocumentStatus
	for _, status := range all {
		if profile.Visible(string(status)) {
			visible = append(visible, status)
		}
	}
	return visible
}

func bordereauxToItems(bordereaux []domain.Bordereau) []domain.WorkItem {
	items := make([]domain.WorkItem, 0, len(bordereaux))
	for i := range bordereaux {
		items = append(items, bordereaux[i].WorkItem())
	}
	return items
}

func documentsToItems(documents []domain.Document) []domain.WorkItem {
	items := make([]domain.WorkItem, 0, len(documents))
	for i := range documents {
		items = append(items, documents[i].WorkItem())
	}
	return items
}

func mergeItems(groups ...[]domain.WorkItem) []domain.WorkItem {
	seen := make(map[string]struct{})
	var merged []domain.WorkItem
	for _, group := range groups {
		for _, item := range group {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			merged = append(merged, item)
		}
	}
	return merged
}
