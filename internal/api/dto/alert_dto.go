package dto

import (
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// AlertResponse represents a monitor alert.
type AlertResponse struct {
	ID            string            `json:"id"`
	AlertType     domain.AlertType  `json:"alert_type"`
	AlertLevel    domain.AlertLevel `json:"alert_level"`
	SubjectUserID string            `json:"subject_user_id"`
	BordereauID   *string           `json:"bordereau_id"`
	Message       string            `json:"message"`
	Resolved      bool              `json:"resolved"`
	CreatedAt     time.Time         `json:"created_at"`
	ResolvedAt    *time.Time        `json:"resolved_at"`
}

// ReclamationCreateRequest payload.
type ReclamationCreateRequest struct {
	ClientID    string                     `json:"client_id"`
	BordereauID *string                    `json:"bordereau_id"`
	Severity    domain.ReclamationSeverity `json:"severity"`
	Subject     string                     `json:"subject"`
	Description string                     `json:"description"`
}

// ReclamationStatusRequest payload for a lifecycle transition.
type ReclamationStatusRequest struct {
	Status domain.ReclamationStatus `json:"status"`
}

// ReclamationAssignRequest payload.
type ReclamationAssignRequest struct {
	UserID *string `json:"user_id"`
}

// ReclamationResponse represents a complaint.
type ReclamationResponse struct {
	ID               string                     `json:"id"`
	ClientID         string                     `json:"client_id"`
	BordereauID      *string                    `json:"bordereau_id"`
	AssignedToUserID *string                    `json:"assigned_to_user_id"`
	Status           domain.ReclamationStatus   `json:"status"`
	Severity         domain.ReclamationSeverity `json:"severity"`
	Subject          string                     `json:"subject"`
	Description      string                     `json:"description,omitempty"`
	CreatedAt        time.Time                  `json:"created_at"`
	ResolvedAt       *time.Time                 `json:"resolved_at"`
}

// VirementGenerateRequest payload.
type VirementGenerateRequest struct {
	ClientID string `json:"client_id"`
}

// VirementItemResponse is one bordereau settled in a batch.
type VirementItemResponse struct {
	ID          string  `json:"id"`
	BordereauID string  `json:"bordereau_id"`
	Montant     float64 `json:"montant"`
}

// VirementResponse represents a wire-transfer batch.
type VirementResponse struct {
	ID            string                     `json:"id"`
	Reference     string                     `json:"reference"`
	ClientID      string                     `json:"client_id"`
	Status        domain.OrdreVirementStatus `json:"status"`
	MontantTotal  float64                    `json:"montant_total"`
	GeneratedByID string                     `json:"generated_by_id"`
	ExecutedAt    *time.Time                 `json:"executed_at"`
	CreatedAt     time.Time                  `json:"created_at"`
	Items         []VirementItemResponse     `json:"items,omitempty"`
}
