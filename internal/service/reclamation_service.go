package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/events"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

// ReclamationService tracks customer complaints alongside bordereaux.
type ReclamationService struct {
	reclamations repository.ReclamationRepository
	clients      repository.ClientRepository
	bordereaux   repository.BordereauRepository
	dispatcher   events.Dispatcher
	now          func() time.Time
}

// ReclamationDependencies bundles repositories for the reclamation service.
type ReclamationDependencies struct {
	ReclamationRepo repository.ReclamationRepository
	ClientRepo      repository.ClientRepository
	BordereauRepo   repository.BordereauRepository
	Dispatcher      events.Dispatcher
}

// ReclamationInput describes an intake payload.
type ReclamationInput struct {
	ClientID    string
	BordereauID *string
	Severity    domain.ReclamationSeverity
	Subject     string
	Description string
}

// NewReclamationService constructs the service.
func NewReclamationService(deps ReclamationDependencies) *ReclamationService {
	return &ReclamationService{
		reclamations: deps.ReclamationRepo,
		clients:      deps.ClientRepo,
		bordereaux:   deps.BordereauRepo,
		dispatcher:   deps.Dispatcher,
		now:          time.Now,
	}
}

var allowedReclamationTransitions = map[domain.ReclamationStatus][]domain.ReclamationStatus{
	domain.ReclamationStatusOuverte:  {domain.ReclamationStatusEnCours, domain.ReclamationStatusRejetee},
	domain.ReclamationStatusEnCours:  {domain.ReclamationStatusEscalade, domain.ReclamationStatusResolue, domain.ReclamationStatusRejetee},
	domain.ReclamationStatusEscalade: {domain.ReclamationStatusResolue, domain.ReclamationStatusRejetee},
	domain.ReclamationStatusResolue:  {},
	domain.ReclamationStatusRejetee:  {},
}

func isValidReclamationTransition(current, next domain.ReclamationStatus) bool {
	for _, candidate := range allowedReclamationTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Open registers a new complaint.
func (s *ReclamationService) Open(ctx context.Context, actor *domain.User, input ReclamationInput) (*domain.Reclamation, error) {
	if strings.TrimSpace(input.Subject) == "" {
		return nil, apperrors.NewValidationError("subject required", nil)
	}
	if _, err := s.clients.GetByID(ctx, input.ClientID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if input.BordereauID != nil {
		if _, err := s.bordereaux.GetByID(ctx, *input.BordereauID); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	severity := input.Severity
	if severity == "" {
		severity = domain.ReclamationSeverityMoyenne
	}

	rec := &domain.Reclamation{
		ClientID:    input.ClientID,
		BordereauID: input.BordereauID,
		Status:      domain.ReclamationStatusOuverte,
		Severity:    severity,
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.reclamations.Create(ctx, rec); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventReclamationOpened,
		SubjectID: rec.ID,
		Actor:     eventActor(actor),
		Payload: events.ReclamationOpenedPayload{
			ClientID: rec.ClientID,
			Severity: rec.Severity,
			Subject:  rec.Subject,
		},
	})
	return rec, nil
}

// UpdateStatus moves a complaint along its lifecycle.
func (s *ReclamationService) UpdateStatus(ctx context.Context, id string, next domain.ReclamationStatus) (*domain.Reclamation, error) {
	rec, err := s.reclamations.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !isValidReclamationTransition(rec.Status, next) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": rec.Status,
			"to":   next,
		})
	}
	rec.Status = next
	if next == domain.ReclamationStatusResolue || next == domain.ReclamationStatusRejetee {
		now := s.now()
		rec.ResolvedAt = &now
	}
	if err := s.reclamations.Update(ctx, rec); err != nil {
		return nil, apperrors.MapError(err)
	}
	return rec, nil
}

// Assign routes a complaint to a handler.
func (s *ReclamationService) Assign(ctx context.Context, id string, assigneeID *string) (*domain.Reclamation, error) {
	rec, err := s.reclamations.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	rec.AssignedToUserID = assigneeID
	if rec.Status == domain.ReclamationStatusOuverte && assigneeID != nil {
		rec.Status = domain.ReclamationStatusEnCours
	}
	if err := s.reclamations.Update(ctx, rec); err != nil {
		return nil, apperrors.MapError(err)
	}
	return rec, nil
}

// Get fetches a complaint.
func (s *ReclamationService) Get(ctx context.Context, id string) (*domain.Reclamation, error) {
	rec, err := s.reclamations.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rec, nil
}

// List returns complaints matching the filter.
func (s *ReclamationService) List(ctx context.Context, filter repository.ReclamationFilter) ([]domain.Reclamation, error) {
	return s.reclamations.ListWithFilter(ctx, filter)
}

func (s *ReclamationService) publish(ctx context.Context, event events.Event) {
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
