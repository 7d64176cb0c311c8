package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/events"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

// BordereauService coordinates the bordereau lifecycle from intake to
// settlement.
type BordereauService struct {
	bordereaux     repository.BordereauRepository
	documents      repository.DocumentRepository
	clients        repository.ClientRepository
	contracts      repository.ContractRepository
	history        repository.HistoryRepository
	dispatcher     events.Dispatcher
	defaultSLADays int
	now            func() time.Time
}

// BordereauDependencies bundles repositories for the bordereau service.
type BordereauDependencies struct {
	BordereauRepo  repository.BordereauRepository
	DocumentRepo   repository.DocumentRepository
	ClientRepo     repository.ClientRepository
	ContractRepo   repository.ContractRepository
	HistoryRepo    repository.HistoryRepository
	Dispatcher     events.Dispatcher
	DefaultSLADays int
}

// BordereauIntakeInput describes a reception payload from the bureau d'ordre.
type BordereauIntakeInput struct {
	Reference       string
	ClientID        string
	NombreDocuments int
	MontantTotal    float64
	DateReception   time.Time
}

// NewBordereauService constructs the service.
func NewBordereauService(deps BordereauDependencies) *BordereauService {
	slaDays := deps.DefaultSLADays
	if slaDays <= 0 {
		slaDays = 30
	}
	return &BordereauService{
		bordereaux:     deps.BordereauRepo,
		documents:      deps.DocumentRepo,
		clients:        deps.ClientRepo,
		contracts:      deps.ContractRepo,
		history:        deps.HistoryRepo,
		dispatcher:     deps.Dispatcher,
		defaultSLADays: slaDays,
		now:            time.Now,
	}
}

// allowedBordereauTransitions encodes the lifecycle. Statuses absent from
// the map are terminal.
var allowedBordereauTransitions = map[domain.BordereauStatus][]domain.BordereauStatus{
	domain.BordereauStatusEnAttente:       {domain.BordereauStatusAScanner, domain.BordereauStatusRejete},
	domain.BordereauStatusAScanner:        {domain.BordereauStatusScanEnCours, domain.BordereauStatusRejete},
	domain.BordereauStatusScanEnCours:     {domain.BordereauStatusScanne, domain.BordereauStatusRejete},
	domain.BordereauStatusScanne:          {domain.BordereauStatusAAffecter},
	domain.BordereauStatusAAffecter:       {domain.BordereauStatusAssigne},
	domain.BordereauStatusAssigne:         {domain.BordereauStatusEnCours, domain.BordereauStatusAAffecter},
	domain.BordereauStatusEnCours:         {domain.BordereauStatusTraite, domain.BordereauStatusAAffecter},
	domain.BordereauStatusTraite:          {domain.BordereauStatusCloture, domain.BordereauStatusVirementExecute},
	domain.BordereauStatusCloture:         {},
	domain.BordereauStatusVirementExecute: {},
	domain.BordereauStatusRejete:          {},
}

func isValidBordereauTransition(current, next domain.BordereauStatus) bool {
	for _, candidate := range allowedBordereauTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Intake registers a freshly received bordereau. The settlement deadline
// derives from the active contract's delay, then the client's, then the
// configured default.
func (s *BordereauService) Intake(ctx context.Context, actor *domain.User, input BordereauIntakeInput) (*domain.Bordereau, error) {
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = generateBordereauReference()
	} else if existing, err := s.bordereaux.GetByReference(ctx, reference); err == nil && existing != nil {
		return nil, apperrors.NewConflict("bordereau reference already exists", map[string]any{"reference": reference})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	client, err := s.clients.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !client.Active {
		return nil, apperrors.NewConflict("client inactive", map[string]any{"client_id": client.ID})
	}

	received := input.DateReception
	if received.IsZero() {
		received = s.now()
	}

	var contractID *string
	var teamID *string
	slaDays := s.defaultSLADays
	contract, err := s.contracts.GetActiveByClient(ctx, client.ID)
	switch {
	case err == nil:
		contractID = &contract.ID
		teamID = contract.TeamLeaderID
		if contract.DelaiReglementDays != nil && *contract.DelaiReglementDays > 0 {
			slaDays = *contract.DelaiReglementDays
		} else if client.ReglementDelayDays != nil && *client.ReglementDelayDays > 0 {
			slaDays = *client.ReglementDelayDays
		}
	case errors.Is(err, pgx.ErrNoRows):
		if client.ReglementDelayDays != nil && *client.ReglementDelayDays > 0 {
			slaDays = *client.ReglementDelayDays
		}
	default:
		return nil, apperrors.MapError(err)
	}

	bordereau := &domain.Bordereau{
		Reference:       reference,
		ClientID:        client.ID,
		ContractID:      contractID,
		TeamID:          teamID,
		Status:          domain.BordereauStatusEnAttente,
		NombreDocuments: input.NombreDocuments,
		MontantTotal:    input.MontantTotal,
		DateReception:   received,
		DueAt:           received.AddDate(0, 0, slaDays),
	}
	if err := s.bordereaux.Create(ctx, bordereau); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.recordHistory(ctx, actorID(actor), bordereau.ID, domain.ActionIntake, nil, &bordereau.Status, "reception"); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventBordereauReceived,
		SubjectID: bordereau.ID,
		Actor:     eventActor(actor),
		Payload: events.BordereauReceivedPayload{
			Reference:       bordereau.Reference,
			ClientID:        bordereau.ClientID,
			NombreDocuments: bordereau.NombreDocuments,
			DueAt:           bordereau.DueAt,
		},
	})
	return bordereau, nil
}

// UpdateStatus moves a bordereau along the lifecycle, stamping the scan and
// closure dates as the relevant states are reached.
func (s *BordereauService) UpdateStatus(ctx context.Context, actor *domain.User, bordereauID string, next domain.BordereauStatus, comment string) (*domain.Bordereau, error) {
	bordereau, err := s.bordereaux.GetByID(ctx, bordereauID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if bordereau.Archived {
		return nil, apperrors.NewConflict("bordereau archived", map[string]any{"bordereau_id": bordereauID})
	}
	if !isValidBordereauTransition(bordereau.Status, next) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": bordereau.Status,
			"to":   next,
		})
	}

	old := bordereau.Status
	now := s.now()
	switch next {
	case domain.BordereauStatusScanEnCours:
		bordereau.DateDebutScan = &now
	case domain.BordereauStatusScanne:
		bordereau.DateFinScan = &now
	case domain.BordereauStatusCloture:
		bordereau.DateCloture = &now
	}
	bordereau.Status = next
	if err := s.bordereaux.Update(ctx, bordereau); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.recordHistory(ctx, actorID(actor), bordereau.ID, domain.ActionStatusChange, &old, &next, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventBordereauStatusChanged,
		SubjectID: bordereau.ID,
		Actor:     eventActor(actor),
		Payload: events.BordereauStatusChangedPayload{
			OldStatus: old,
			NewStatus: next,
			Comment:   comment,
		},
	})
	return bordereau, nil
}

// Assign hands the bordereau to a gestionnaire. A nil assignee returns it to
// the pool. Reassignment overwrites silently; the last writer wins and the
// history trail keeps both entries.
func (s *BordereauService) Assign(ctx context.Context, actor *domain.User, bordereauID string, assigneeID *string) (*domain.Bordereau, error) {
	bordereau, err := s.bordereaux.GetByID(ctx, bordereauID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if bordereau.Archived {
		return nil, apperrors.NewConflict("bordereau archived", map[string]any{"bordereau_id": bordereauID})
	}

	old := bordereau.Status
	bordereau.AssignedToUserID = assigneeID
	if assigneeID != nil && bordereau.Status == domain.BordereauStatusAAffecter {
		bordereau.Status = domain.BordereauStatusAssigne
	}
	if assigneeID == nil && bordereau.Status == domain.BordereauStatusAssigne {
		bordereau.Status = domain.BordereauStatusAAffecter
	}
	if err := s.bordereaux.Update(ctx, bordereau); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.recordHistory(ctx, actorID(actor), bordereau.ID, domain.ActionAssignment, &old, &bordereau.Status, ""); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventBordereauAssigned,
		SubjectID: bordereau.ID,
		Actor:     eventActor(actor),
		Payload: events.BordereauAssignedPayload{
			AssigneeUserID: assigneeID,
			TeamID:         bordereau.TeamID,
		},
	})
	return bordereau, nil
}

// Archive removes the bordereau from every corbeille without deleting it.
func (s *BordereauService) Archive(ctx context.Context, actor *domain.User, bordereauID string) (*domain.Bordereau, error) {
	bordereau, err := s.bordereaux.GetByID(ctx, bordereauID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if bordereau.Archived {
		return bordereau, nil
	}
	bordereau.Archived = true
	if err := s.bordereaux.Update(ctx, bordereau); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordHistory(ctx, actorID(actor), bordereau.ID, domain.ActionArchive, &bordereau.Status, &bordereau.Status, ""); err != nil {
		return nil, apperrors.MapError(err)
	}
	return bordereau, nil
}

// Get fetches a bordereau with its documents.
func (s *BordereauService) Get(ctx context.Context, bordereauID string) (*domain.Bordereau, []domain.Document, error) {
	bordereau, err := s.bordereaux.GetByID(ctx, bordereauID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	docs, err := s.documents.ListByBordereau(ctx, bordereauID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return bordereau, docs, nil
}

// List returns bordereaux matching the filter.
func (s *BordereauService) List(ctx context.Context, filter repository.BordereauFilter) ([]domain.Bordereau, error) {
	return s.bordereaux.ListWithFilter(ctx, filter)
}

// History returns the traitement trail.
func (s *BordereauService) History(ctx context.Context, bordereauID string, limit, offset int) ([]domain.TraitementHistory, error) {
	return s.history.ListByBordereau(ctx, bordereauID, limit, offset)
}

func (s *BordereauService) recordHistory(ctx context.Context, userID *string, bordereauID string, action domain.TraitementAction, from, to *domain.BordereauStatus, comment string) error {
	if s.history == nil {
		return nil
	}
	entry := &domain.TraitementHistory{
		BordereauID: bordereauID,
		UserID:      userID,
		Action:      action,
		FromStatus:  from,
		ToStatus:    to,
		Comment:     comment,
	}
	return s.history.Create(ctx, entry)
}

func (s *BordereauService) publish(ctx context.Context, event events.Event) {
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

func generateBordereauReference() string {
	return "BDX-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

func actorID(actor *domain.User) *string {
	if actor == nil {
		return nil
	}
	return &actor.ID
}

func eventActor(actor *domain.User) events.Actor {
	if actor == nil {
		return events.Actor{}
	}
	return events.Actor{UserID: &actor.ID, Role: actor.Role}
}
