package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	"github.com/spec-kit/ars-claims-service/internal/workflow"
)

// DashboardKPIs summarizes the bordereau pipeline within the caller's scope.
type DashboardKPIs struct {
	TotalBordereaux     int
	Processed           int
	InProgress          int
	Pending             int
	Rejected            int
	SLABreaches         int
	SLACompliance       float64
	ProcessingRate      float64
	PendingReclamations int
}

// TeamMemberLoad pairs one staff member with their corbeille counters and
// effective capacity.
type TeamMemberLoad struct {
	UserID     string
	FullName   string
	Role       domain.StaffRole
	Stats      workflow.Stats
	Capacity   int
	Overloaded bool
}

// Dashboard is the manager-tier aggregate over the pipeline, the team and
// the alert backlog.
type Dashboard struct {
	KPIs             DashboardKPIs
	Team             []TeamMemberLoad
	UnresolvedAlerts map[domain.AlertType]int
	GeneratedAt      time.Time
}

// AnalyticsService computes cross-team dashboard aggregates. It reuses the
// corbeille scope rules, so a manager's dashboard covers exactly the work
// their corbeille covers.
type AnalyticsService struct {
	users        repository.UserRepository
	reclamations repository.ReclamationRepository
	alerts       repository.AlertRepository
	corbeilles   *CorbeilleService
	profiles     map[domain.StaffRole]workflow.RoleProfile
	logger       *zap.Logger
	now          func() time.Time
}

// AnalyticsDependencies bundles collaborators for the analytics service.
type AnalyticsDependencies struct {
	UserRepo        repository.UserRepository
	ReclamationRepo repository.ReclamationRepository
	AlertRepo       repository.AlertRepository
	Corbeilles      *CorbeilleService
	Profiles        map[domain.StaffRole]workflow.RoleProfile
	Logger          *zap.Logger
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(deps AnalyticsDependencies) *AnalyticsService {
	profiles := deps.Profiles
	if profiles == nil {
		profiles = workflow.DefaultProfiles()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		users:        deps.UserRepo,
		reclamations: deps.ReclamationRepo,
		alerts:       deps.AlertRepo,
		corbeilles:   deps.Corbeilles,
		profiles:     profiles,
		logger:       logger,
		now:          time.Now,
	}
}

var processedStatuses = map[string]struct{}{
	string(domain.BordereauStatusTraite):          {},
	string(domain.BordereauStatusCloture):         {},
	string(domain.BordereauStatusVirementExecute): {},
}

var inProgressStatuses = map[string]struct{}{
	string(domain.BordereauStatusScanEnCours): {},
	string(domain.BordereauStatusAssigne):     {},
	string(domain.BordereauStatusEnCours):     {},
}

var settledStatuses = map[string]struct{}{
	string(domain.BordereauStatusCloture):         {},
	string(domain.BordereauStatusVirementExecute): {},
}

// BuildDashboard assembles the dashboard for a manager. An actor whose role
// has no corbeille profile gets an empty dashboard, matching the corbeille's
// unknown-role behavior.
func (s *AnalyticsService) BuildDashboard(ctx context.Context, actor *domain.User) (*Dashboard, error) {
	now := s.now()
	dashboard := &Dashboard{
		Team:             []TeamMemberLoad{},
		UnresolvedAlerts: map[domain.AlertType]int{},
		GeneratedAt:      now,
	}

	profile, ok := s.profiles[actor.Role]
	if !ok {
		s.logger.Warn("no dashboard scope for role", zap.String("role", string(actor.Role)))
		return dashboard, nil
	}

	items, err := s.corbeilles.scopedItems(ctx, actor, profile)
	if err != nil {
		return nil, err
	}
	dashboard.KPIs = pipelineKPIs(items, now)

	pending, err := s.countPendingReclamations(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.KPIs.PendingReclamations = pending

	team, err := s.teamLoads(ctx, actor)
	if err != nil {
		return nil, err
	}
	dashboard.Team = team

	unresolved, err := s.countUnresolvedAlerts(ctx)
	if err != nil {
		return nil, err
	}
	dashboard.UnresolvedAlerts = unresolved

	return dashboard, nil
}

// pipelineKPIs computes the status breakdown over bordereau items. Document
// items ride through corbeille scopes but stay out of pipeline counters.
func pipelineKPIs(items []domain.WorkItem, now time.Time) DashboardKPIs {
	var kpis DashboardKPIs
	for i := range items {
		item := &items[i]
		if item.Kind != domain.WorkItemKindBordereau {
			continue
		}
		kpis.TotalBordereaux++

		switch {
		case item.Status == string(domain.BordereauStatusRejete):
			kpis.Rejected++
		case statusIn(item.Status, processedStatuses):
			kpis.Processed++
		case statusIn(item.Status, inProgressStatuses):
			kpis.InProgress++
		default:
			kpis.Pending++
		}

		if now.After(item.DueAt) && !statusIn(item.Status, settledStatuses) {
			kpis.SLABreaches++
		}
	}

	if kpis.TotalBordereaux > 0 {
		total := float64(kpis.TotalBordereaux)
		kpis.SLACompliance = (total - float64(kpis.SLABreaches)) / total * 100
		kpis.ProcessingRate = float64(kpis.Processed) / total * 100
	} else {
		kpis.SLACompliance = 100
	}
	return kpis
}

func statusIn(status string, set map[string]struct{}) bool {
	_, ok := set[status]
	return ok
}

// teamLoads resolves the members the actor supervises and rebuilds each
// member's corbeille counters. A chef d'équipe sees direct reports; senior
// managers and admins see every active capacity-limited user.
func (s *AnalyticsService) teamLoads(ctx context.Context, actor *domain.User) ([]TeamMemberLoad, error) {
	var members []domain.User
	var err error

	switch actor.Role {
	case domain.StaffRoleChefEquipe:
		members, err = s.users.ListSubordinates(ctx, actor.ID)
	case domain.StaffRoleGestionnaireSenior, domain.StaffRoleSuperAdmin:
		roles := make([]domain.StaffRole, 0, len(s.profiles))
		for role, profile := range s.profiles {
			if profile.CapacityLimited {
				roles = append(roles, role)
			}
		}
		active := true
		members, err = s.users.List(ctx, repository.UserFilter{Roles: roles, Active: &active})
	default:
		return []TeamMemberLoad{}, nil
	}
	if err != nil {
		return nil, err
	}

	loads := make([]TeamMemberLoad, 0, len(members))
	for i := range members {
		member := &members[i]
		corbeille, err := s.corbeilles.GetCorbeille(ctx, member)
		if err != nil {
			return nil, err
		}
		capacity := s.profiles[member.Role].CapacityFor(member)
		loads = append(loads, TeamMemberLoad{
			UserID:     member.ID,
			FullName:   member.FullName,
			Role:       member.Role,
			Stats:      corbeille.Stats,
			Capacity:   capacity,
			Overloaded: corbeille.Stats.InProgressCount > capacity,
		})
	}
	return loads, nil
}

func (s *AnalyticsService) countPendingReclamations(ctx context.Context) (int, error) {
	filter := repository.ReclamationFilter{
		Statuses: []domain.ReclamationStatus{
			domain.ReclamationStatusOuverte,
			domain.ReclamationStatusEnCours,
			domain.ReclamationStatusEscalade,
		},
		Limit: scopePageSize,
	}
	total := 0
	for offset := 0; ; offset += scopePageSize {
		filter.Offset = offset
		page, err := s.reclamations.ListWithFilter(ctx, filter)
		if err != nil {
			return 0, err
		}
		total += len(page)
		if len(page) < scopePageSize {
			return total, nil
		}
	}
}

func (s *AnalyticsService) countUnresolvedAlerts(ctx context.Context) (map[domain.AlertType]int, error) {
	resolved := false
	filter := repository.AlertFilter{Resolved: &resolved, Limit: scopePageSize}
	counts := map[domain.AlertType]int{}
	for offset := 0; ; offset += scopePageSize {
		filter.Offset = offset
		page, err := s.alerts.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		for i := range page {
			counts[page[i].AlertType]++
		}
		if len(page) < scopePageSize {
			return counts, nil
		}
	}
}
