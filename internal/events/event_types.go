package events

import (
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBordereauReceived      EventType = "bordereau_received"
	EventBordereauStatusChanged EventType = "bordereau_status_changed"
	EventBordereauAssigned      EventType = "bordereau_assigned"
	EventDocumentScanned        EventType = "document_scanned"
	EventAlertRaised            EventType = "alert_raised"
	EventAlertResolved          EventType = "alert_resolved"
	EventReclamationOpened      EventType = "reclamation_opened"
	EventVirementGenerated      EventType = "virement_generated"
	EventVirementExecuted       EventType = "virement_executed"
)

// Actor identifies the staff member behind an event. System sweeps leave
// UserID nil.
type Actor struct {
	UserID *string          `json:"user_id,omitempty"`
	Role   domain.StaffRole `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// BordereauReceivedPayload payload.
type BordereauReceivedPayload struct {
	Reference       string    `json:"reference"`
	ClientID        string    `json:"client_id"`
	NombreDocuments int       `json:"nombre_documents"`
	DueAt           time.Time `json:"due_at"`
}

// BordereauStatusChangedPayload payload.
type BordereauStatusChangedPayload struct {
	OldStatus domain.BordereauStatus `json:"old_status"`
	NewStatus domain.BordereauStatus `json:"new_status"`
	Comment   string                 `json:"comment,omitempty"`
}

// BordereauAssignedPayload payload.
type BordereauAssignedPayload struct {
	AssigneeUserID *string `json:"assignee_user_id,omitempty"`
	TeamID         *string `json:"team_id,omitempty"`
}

// DocumentScannedPayload payload.
type DocumentScannedPayload struct {
	BordereauID  string `json:"bordereau_id"`
	LastDocument bool   `json:"last_document"`
}

// AlertRaisedPayload payload.
type AlertRaisedPayload struct {
	AlertType     domain.AlertType  `json:"alert_type"`
	AlertLevel    domain.AlertLevel `json:"alert_level"`
	SubjectUserID *string           `json:"subject_user_id,omitempty"`
	Message       string            `json:"message"`
}

// AlertResolvedPayload payload.
type AlertResolvedPayload struct {
	AlertType     domain.AlertType `json:"alert_type"`
	SubjectUserID *string          `json:"subject_user_id,omitempty"`
}

// ReclamationOpenedPayload payload.
type ReclamationOpenedPayload struct {
	ClientID string                     `json:"client_id"`
	Severity domain.ReclamationSeverity `json:"severity"`
	Subject  string                     `json:"subject"`
}

// VirementGeneratedPayload payload.
type VirementGeneratedPayload struct {
	Reference    string  `json:"reference"`
	ClientID     string  `json:"client_id"`
	MontantTotal float64 `json:"montant_total"`
	ItemCount    int     `json:"item_count"`
}

// VirementExecutedPayload payload.
type VirementExecutedPayload struct {
	Reference  string    `json:"reference"`
	ExecutedAt time.Time `json:"executed_at"`
}
