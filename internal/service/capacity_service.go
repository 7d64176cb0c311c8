package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/events"
	"github.com/spec-kit/ars-claims-service/internal/observability"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	"github.com/spec-kit/ars-claims-service/internal/workflow"
)

// closedBordereauStatuses are excluded from a user's open workload.
var closedBordereauStatuses = []domain.BordereauStatus{
	domain.BordereauStatusTraite,
	domain.BordereauStatusCloture,
	domain.BordereauStatusVirementExecute,
	domain.BordereauStatusRejete,
}

// closedDocumentStatuses are excluded from a user's open workload.
var closedDocumentStatuses = []domain.DocumentStatus{
	domain.DocumentStatusScanne,
	domain.DocumentStatusTraite,
	domain.DocumentStatusRejete,
}

// SweepResult summarizes one capacity evaluation pass.
type SweepResult struct {
	Created  int
	Updated  int
	Resolved int
}

// CapacityService watches per-user workload and keeps surcharge alerts in
// sync with it. Sweeps are idempotent: running twice against an unchanged
// snapshot leaves the alert table untouched.
type CapacityService struct {
	users      repository.UserRepository
	bordereaux repository.BordereauRepository
	documents  repository.DocumentRepository
	alerts     repository.AlertRepository
	profiles   map[domain.StaffRole]workflow.RoleProfile
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// CapacityDependencies bundles collaborators for the capacity service.
type CapacityDependencies struct {
	UserRepo      repository.UserRepository
	BordereauRepo repository.BordereauRepository
	DocumentRepo  repository.DocumentRepository
	AlertRepo     repository.AlertRepository
	Profiles      map[domain.StaffRole]workflow.RoleProfile
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// NewCapacityService constructs the service.
func NewCapacityService(deps CapacityDependencies) *CapacityService {
	profiles := deps.Profiles
	if profiles == nil {
		profiles = workflow.DefaultProfiles()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CapacityService{
		users:      deps.UserRepo,
		bordereaux: deps.BordereauRepo,
		documents:  deps.DocumentRepo,
		alerts:     deps.AlertRepo,
		profiles:   profiles,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		now:        time.Now,
	}
}

// EvaluateCapacity runs one sweep over every capacity-limited user. A user is
// overloaded when open items strictly exceed capacity; sitting exactly at
// capacity is fine. Per user at most one unresolved surcharge alert exists:
// new overloads create one, changed loads rewrite the message in place,
// recovered users get theirs resolved.
func (s *CapacityService) EvaluateCapacity(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	bordereauCounts, err := s.bordereaux.CountOpenByAssignee(ctx, closedBordereauStatuses)
	if err != nil {
		return result, err
	}
	documentCounts, err := s.documents.CountOpenByAssignee(ctx, closedDocumentStatuses)
	if err != nil {
		return result, err
	}

	users, err := s.capacityLimitedUsers(ctx)
	if err != nil {
		return result, err
	}

	now := s.now()
	for i := range users {
		user := &users[i]
		profile := s.profiles[user.Role]
		capacity := profile.CapacityFor(user)
		open := bordereauCounts[user.ID] + documentCounts[user.ID]

		outcome, err := s.syncSurchargeAlert(ctx, user, open, capacity, now)
		if err != nil {
			return result, err
		}
		result.Created += outcome.Created
		result.Updated += outcome.Updated
		result.Resolved += outcome.Resolved
	}

	if s.metrics != nil {
		s.metrics.RecordCapacitySweep(result.Created, result.Updated, result.Resolved)
	}
	s.logger.Info("capacity sweep finished",
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("resolved", result.Resolved),
	)
	return result, nil
}

func (s *CapacityService) capacityLimitedUsers(ctx context.Context) ([]domain.User, error) {
	roles := make([]domain.StaffRole, 0, len(s.profiles))
	for role, profile := range s.profiles {
		if profile.CapacityLimited {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return nil, nil
	}
	active := true
	return s.users.List(ctx, repository.UserFilter{Roles: roles, Active: &active})
}

func (s *CapacityService) syncSurchargeAlert(ctx context.Context, user *domain.User, open, capacity int, now time.Time) (SweepResult, error) {
	var result SweepResult
	overloaded := open > capacity

	existing, err := s.alerts.FindUnresolved(ctx, user.ID, domain.AlertTypeSurcharge)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return result, err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		existing = nil
	}

	if !overloaded {
		if existing == nil {
			return result, nil
		}
		if err := s.alerts.Resolve(ctx, existing.ID, now); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// another sweep resolved it first
				return result, nil
			}
			return result, err
		}
		result.Resolved++
		s.publish(ctx, events.Event{
			Type:      events.EventAlertResolved,
			SubjectID: existing.ID,
			Payload: events.AlertResolvedPayload{
				AlertType:     domain.AlertTypeSurcharge,
				SubjectUserID: &user.ID,
			},
		})
		return result, nil
	}

	message := surchargeMessage(open, capacity)
	level := surchargeLevel(open, capacity)

	if existing == nil {
		alert := &domain.AlertRecord{
			AlertType:     domain.AlertTypeSurcharge,
			AlertLevel:    level,
			SubjectUserID: user.ID,
			Message:       message,
		}
		if err := s.alerts.Create(ctx, alert); err != nil {
			if repository.IsUniqueViolation(err) {
				// concurrent sweep already created it; the partial unique
				// index guarantees at most one unresolved row
				s.logger.Debug("surcharge alert already present", zap.String("user_id", user.ID))
				return result, nil
			}
			return result, err
		}
		result.Created++
		s.publish(ctx, events.Event{
			Type:      events.EventAlertRaised,
			SubjectID: alert.ID,
			Payload: events.AlertRaisedPayload{
				AlertType:     domain.AlertTypeSurcharge,
				AlertLevel:    level,
				SubjectUserID: &user.ID,
				Message:       message,
			},
		})
		return result, nil
	}

	if existing.Message == message && existing.AlertLevel == level {
		return result, nil
	}
	if err := s.alerts.UpdateMessage(ctx, existing.ID, message, level); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return result, nil
		}
		return result, err
	}
	result.Updated++
	return result, nil
}

// EvaluateSLABreaches keeps one SLA breach alert per assignee in sync with
// their late workload, mirroring the surcharge dedup rules.
func (s *CapacityService) EvaluateSLABreaches(ctx context.Context, opts workflow.Options) (SweepResult, error) {
	var result SweepResult
	now := s.now()

	bordereaux, err := s.bordereaux.ListWithFilter(ctx, repository.BordereauFilter{
		ReceivedTo: &now,
		Limit:      5000,
	})
	if err != nil {
		return result, err
	}

	type lateLoad struct {
		late     int
		critical int
	}
	loads := make(map[string]lateLoad)
	for i := range bordereaux {
		b := &bordereaux[i]
		if b.AssignedToUserID == nil || b.Archived {
			continue
		}
		item := b.WorkItem()
		profile := s.profiles[domain.StaffRoleGestionnaire]
		c := workflow.Classify(item, profile, now, opts)
		if !c.Late {
			continue
		}
		load := loads[*b.AssignedToUserID]
		load.late++
		if c.Critical {
			load.critical++
		}
		loads[*b.AssignedToUserID] = load
	}

	users, err := s.capacityLimitedUsers(ctx)
	if err != nil {
		return result, err
	}
	for i := range users {
		user := &users[i]
		load := loads[user.ID]
		outcome, err := s.syncSLAAlert(ctx, user, load.late, load.critical, now)
		if err != nil {
			return result, err
		}
		result.Created += outcome.Created
		result.Updated += outcome.Updated
		result.Resolved += outcome.Resolved
	}
	return result, nil
}

func (s *CapacityService) syncSLAAlert(ctx context.Context, user *domain.User, late, critical int, now time.Time) (SweepResult, error) {
	var result SweepResult

	existing, err := s.alerts.FindUnresolved(ctx, user.ID, domain.AlertTypeSLABreach)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return result, err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		existing = nil
	}

	if late == 0 {
		if existing == nil {
			return result, nil
		}
		if err := s.alerts.Resolve(ctx, existing.ID, now); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return result, nil
			}
			return result, err
		}
		result.Resolved++
		return result, nil
	}

	message := fmt.Sprintf("Retards SLA: %d dossiers en retard dont %d critiques", late, critical)
	level := domain.AlertLevelWarning
	if critical > 0 {
		level = domain.AlertLevelCritical
	}

	if existing == nil {
		alert := &domain.AlertRecord{
			AlertType:     domain.AlertTypeSLABreach,
			AlertLevel:    level,
			SubjectUserID: user.ID,
			Message:       message,
		}
		if err := s.alerts.Create(ctx, alert); err != nil {
			if repository.IsUniqueViolation(err) {
				return result, nil
			}
			return result, err
		}
		result.Created++
		s.publish(ctx, events.Event{
			Type:      events.EventAlertRaised,
			SubjectID: alert.ID,
			Payload: events.AlertRaisedPayload{
				AlertType:     domain.AlertTypeSLABreach,
				AlertLevel:    level,
				SubjectUserID: &user.ID,
				Message:       message,
			},
		})
		return result, nil
	}

	if existing.Message == message && existing.AlertLevel == level {
		return result, nil
	}
	if err := s.alerts.UpdateMessage(ctx, existing.ID, message, level); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return result, nil
		}
		return result, err
	}
	result.Updated++
	return result, nil
}

// ListAlerts exposes alert history for dashboards.
func (s *CapacityService) ListAlerts(ctx context.Context, filter repository.AlertFilter) ([]domain.AlertRecord, error) {
	return s.alerts.List(ctx, filter)
}

// ResolveAlert manually closes an alert, for chef d'équipe intervention.
func (s *CapacityService) ResolveAlert(ctx context.Context, id string) error {
	return s.alerts.Resolve(ctx, id, s.now())
}

func surchargeMessage(open, capacity int) string {
	pct := 0
	if capacity > 0 {
		pct = (open - capacity) * 100 / capacity
	}
	return fmt.Sprintf("Charge actuelle %d/%d (+%d%%)", open, capacity, pct)
}

func surchargeLevel(open, capacity int) domain.AlertLevel {
	if capacity > 0 && open*2 > capacity*3 {
		return domain.AlertLevelCritical
	}
	return domain.AlertLevelWarning
}

func (s *CapacityService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
