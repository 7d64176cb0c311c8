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

// VirementService groups processed bordereaux into wire-transfer batches.
// Only the relational records live here; rendering bank flat files is out of
// scope.
type VirementService struct {
	virements  repository.VirementRepository
	bordereaux repository.BordereauRepository
	history    repository.HistoryRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// VirementDependencies bundles repositories for the virement service.
type VirementDependencies struct {
	VirementRepo  repository.VirementRepository
	BordereauRepo repository.BordereauRepository
	HistoryRepo   repository.HistoryRepository
	Dispatcher    events.Dispatcher
}

// NewVirementService constructs the service.
func NewVirementService(deps VirementDependencies) *VirementService {
	return &VirementService{
		virements:  deps.VirementRepo,
		bordereaux: deps.BordereauRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// Generate batches every TRAITE bordereau of the client into a new ordre de
// virement and advances them to VIREMENT_EXECUTE.
func (s *VirementService) Generate(ctx context.Context, actor *domain.User, clientID string) (*domain.OrdreVirement, error) {
	ready, err := s.bordereaux.ListWithFilter(ctx, repository.BordereauFilter{
		ClientID: &clientID,
		Statuses: []domain.BordereauStatus{domain.BordereauStatusTraite},
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(ready) == 0 {
		return nil, apperrors.NewConflict("no processed bordereaux to settle", map[string]any{"client_id": clientID})
	}

	ordre := &domain.OrdreVirement{
		Reference: generateVirementReference(),
		ClientID:  clientID,
		Status:    domain.OrdreVirementStatusGenere,
	}
	if actor != nil {
		ordre.GeneratedByID = actor.ID
	}
	for i := range ready {
		ordre.MontantTotal += ready[i].MontantTotal
		ordre.Items = append(ordre.Items, domain.VirementItem{
			BordereauID: ready[i].ID,
			Montant:     ready[i].MontantTotal,
		})
	}

	if err := s.virements.CreateWithItems(ctx, ordre); err != nil {
		return nil, apperrors.MapError(err)
	}

	for i := range ready {
		b := &ready[i]
		old := b.Status
		b.Status = domain.BordereauStatusVirementExecute
		if err := s.bordereaux.Update(ctx, b); err != nil {
			return nil, apperrors.MapError(err)
		}
		if s.history != nil {
			err := s.history.Create(ctx, &domain.TraitementHistory{
				BordereauID: b.ID,
				UserID:      actorID(actor),
				Action:      domain.ActionStatusChange,
				FromStatus:  &old,
				ToStatus:    &b.Status,
				Comment:     "ordre de virement " + ordre.Reference,
			})
			if err != nil {
				return nil, apperrors.MapError(err)
			}
		}
	}

	s.publish(ctx, events.Event{
		Type:      events.EventVirementGenerated,
		SubjectID: ordre.ID,
		Actor:     eventActor(actor),
		Payload: events.VirementGeneratedPayload{
			Reference:    ordre.Reference,
			ClientID:     ordre.ClientID,
			MontantTotal: ordre.MontantTotal,
			ItemCount:    len(ordre.Items),
		},
	})
	return ordre, nil
}

// ConfirmExecution records that the bank executed the batch.
func (s *VirementService) ConfirmExecution(ctx context.Context, actor *domain.User, ordreID string) (*domain.OrdreVirement, error) {
	now := s.now()
	if err := s.virements.MarkExecuted(ctx, ordreID, now); err != nil {
		return nil, apperrors.MapError(err)
	}
	ordre, err := s.virements.GetByID(ctx, ordreID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{
		Type:      events.EventVirementExecuted,
		SubjectID: ordre.ID,
		Actor:     eventActor(actor),
		Payload: events.VirementExecutedPayload{
			Reference:  ordre.Reference,
			ExecutedAt: now,
		},
	})
	return ordre, nil
}

// Get fetches a batch with its items.
func (s *VirementService) Get(ctx context.Context, ordreID string) (*domain.OrdreVirement, error) {
	ordre, err := s.virements.GetByID(ctx, ordreID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	items, err := s.virements.ListItems(ctx, ordreID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ordre.Items = items
	return ordre, nil
}

// List returns batches matching the filter.
func (s *VirementService) List(ctx context.Context, filter repository.VirementFilter) ([]domain.OrdreVirement, error) {
	return s.virements.ListWithFilter(ctx, filter)
}

func (s *VirementService) publish(ctx context.Context, event events.Event) {
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

func generateVirementReference() string {
	return "OV-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
