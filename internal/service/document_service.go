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

// DocumentService tracks the digitization of individual claim artifacts.
// Bordereau-level scan progress derives from its documents: the first scan
// start moves the bordereau to SCAN_EN_COURS, the last completed scan to
// SCANNE.
type DocumentService struct {
	documents  repository.DocumentRepository
	bordereaux repository.BordereauRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// DocumentDependencies bundles repositories for the document service.
type DocumentDependencies struct {
	DocumentRepo  repository.DocumentRepository
	BordereauRepo repository.BordereauRepository
	Dispatcher    events.Dispatcher
}

// DocumentInput describes a document registration payload.
type DocumentInput struct {
	Name string
	Type string
}

// NewDocumentService constructs the service.
func NewDocumentService(deps DocumentDependencies) *DocumentService {
	return &DocumentService{
		documents:  deps.DocumentRepo,
		bordereaux: deps.BordereauRepo,
		dispatcher: deps.Dispatcher,
		now:        time.Now,
	}
}

// Register attaches a document to a bordereau awaiting scan.
func (s *DocumentService) Register(ctx context.Context, bordereauID string, input DocumentInput) (*domain.Document, error) {
	bordereau, err := s.bordereaux.GetByID(ctx, bordereauID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if bordereau.Archived {
		return nil, apperrors.NewConflict("bordereau archived", map[string]any{"bordereau_id": bordereauID})
	}

	doc := &domain.Document{
		BordereauID: bordereau.ID,
		Name:        strings.TrimSpace(input.Name),
		Type:        strings.TrimSpace(input.Type),
		Status:      domain.DocumentStatusUploade,
		ReceivedAt:  bordereau.DateReception,
		DueAt:       bordereau.DueAt,
	}
	if doc.Name == "" {
		return nil, apperrors.NewValidationError("document name required", nil)
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, apperrors.MapError(err)
	}
	return doc, nil
}

// StartScan claims a document for a scan operator.
func (s *DocumentService) StartScan(ctx context.Context, operator *domain.User, documentID string) (*domain.Document, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if doc.Status != domain.DocumentStatusUploade {
		return nil, apperrors.NewConflict("document not awaiting scan", map[string]any{
			"document_id": documentID,
			"status":      doc.Status,
		})
	}
	doc.Status = domain.DocumentStatusEnCoursScan
	if operator != nil {
		doc.AssignedToUserID = &operator.ID
	}
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, apperrors.MapError(err)
	}

	bordereau, err := s.bordereaux.GetByID(ctx, doc.BordereauID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if bordereau.Status == domain.BordereauStatusAScanner {
		now := s.now()
		bordereau.Status = domain.BordereauStatusScanEnCours
		bordereau.DateDebutScan = &now
		if err := s.bordereaux.Update(ctx, bordereau); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	return doc, nil
}

// CompleteScan marks a document scanned. When it was the last open document
// of the bordereau, the bordereau itself moves to SCANNE.
func (s *DocumentService) CompleteScan(ctx context.Context, operator *domain.User, documentID string) (*domain.Document, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if doc.Status != domain.DocumentStatusEnCoursScan {
		return nil, apperrors.NewConflict("document scan not in progress", map[string]any{
			"document_id": documentID,
			"status":      doc.Status,
		})
	}
	doc.Status = domain.DocumentStatusScanne
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, apperrors.MapError(err)
	}

	siblings, err := s.documents.ListByBordereau(ctx, doc.BordereauID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	last := true
	for i := range siblings {
		if siblings[i].ID == doc.ID {
			continue
		}
		switch siblings[i].Status {
		case domain.DocumentStatusScanne, domain.DocumentStatusTraite, domain.DocumentStatusRejete:
		default:
			last = false
		}
	}

	if last {
		bordereau, err := s.bordereaux.GetByID(ctx, doc.BordereauID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if bordereau.Status == domain.BordereauStatusScanEnCours {
			now := s.now()
			bordereau.Status = domain.BordereauStatusScanne
			bordereau.DateFinScan = &now
			if err := s.bordereaux.Update(ctx, bordereau); err != nil {
				return nil, apperrors.MapError(err)
			}
		}
	}

	s.publish(ctx, events.Event{
		Type:      events.EventDocumentScanned,
		SubjectID: doc.ID,
		Actor:     eventActor(operator),
		Payload: events.DocumentScannedPayload{
			BordereauID:  doc.BordereauID,
			LastDocument: last,
		},
	})
	return doc, nil
}

// Reject flags a document as unusable.
func (s *DocumentService) Reject(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	doc.Status = domain.DocumentStatusRejete
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, apperrors.MapError(err)
	}
	return doc, nil
}

// ListByBordereau returns the documents of a bordereau.
func (s *DocumentService) ListByBordereau(ctx context.Context, bordereauID string) ([]domain.Document, error) {
	return s.documents.ListByBordereau(ctx, bordereauID)
}

func (s *DocumentService) publish(ctx context.Context, event events.Event) {
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
