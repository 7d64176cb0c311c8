package dto

import (
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// BordereauIntakeRequest payload for bureau d'ordre reception.
type BordereauIntakeRequest struct {
	Reference       string  `json:"reference"`
	ClientID        string  `json:"client_id"`
	NombreDocuments int     `json:"nombre_documents"`
	MontantTotal    float64 `json:"montant_total"`
	DateReception   *string `json:"date_reception"`
}

// BordereauStatusRequest payload for a lifecycle transition.
type BordereauStatusRequest struct {
	Status  domain.BordereauStatus `json:"status"`
	Comment string                 `json:"comment"`
}

// BordereauAssignRequest payload. A null user_id returns the bordereau to
// the pool.
type BordereauAssignRequest struct {
	UserID *string `json:"user_id"`
}

// BordereauListQuery captures list filters.
type BordereauListQuery struct {
	Statuses     []domain.BordereauStatus
	ClientID     *string
	AssignedTo   *string
	ReceivedFrom *time.Time
	ReceivedTo   *time.Time
	Page         int
	PageSize     int
}

// BordereauSummary response.
type BordereauSummary struct {
	ID               string                 `json:"id"`
	Reference        string                 `json:"reference"`
	ClientID         string                 `json:"client_id"`
	ContractID       *string                `json:"contract_id"`
	TeamID           *string                `json:"team_id"`
	AssignedToUserID *string                `json:"assigned_to_user_id"`
	Status           domain.BordereauStatus `json:"status"`
	NombreDocuments  int                    `json:"nombre_documents"`
	MontantTotal     float64                `json:"montant_total"`
	DateReception    time.Time              `json:"date_reception"`
	DueAt            time.Time              `json:"due_at"`
	Archived         bool                   `json:"archived"`
}

// BordereauDetailResponse provides full bordereau info.
type BordereauDetailResponse struct {
	BordereauSummary
	DateDebutScan *time.Time         `json:"date_debut_scan"`
	DateFinScan   *time.Time         `json:"date_fin_scan"`
	DateCloture   *time.Time         `json:"date_cloture"`
	Documents     []DocumentResponse `json:"documents"`
}

// HistoryEntryResponse represents one traitement trail entry.
type HistoryEntryResponse struct {
	ID         string                  `json:"id"`
	UserID     *string                 `json:"user_id"`
	Action     domain.TraitementAction `json:"action"`
	FromStatus *domain.BordereauStatus `json:"from_status"`
	ToStatus   *domain.BordereauStatus `json:"to_status"`
	Comment    string                  `json:"comment,omitempty"`
	CreatedAt  time.Time               `json:"created_at"`
}

// DocumentCreateRequest payload for attaching a document.
type DocumentCreateRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// DocumentResponse represents a claim artifact.
type DocumentResponse struct {
	ID               string                `json:"id"`
	BordereauID      string                `json:"bordereau_id"`
	Name             string                `json:"name"`
	Type             string                `json:"type"`
	Status           domain.DocumentStatus `json:"status"`
	AssignedToUserID *string               `json:"assigned_to_user_id"`
	ReceivedAt       time.Time             `json:"received_at"`
	DueAt            time.Time             `json:"due_at"`
}
