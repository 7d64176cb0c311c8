package domain

import "time"

// BordereauStatus enumerates lifecycle states for claim bundles. Wire values
// keep the French labels used across the back office.
type BordereauStatus string

const (
	BordereauStatusEnAttente        BordereauStatus = "EN_ATTENTE"
	BordereauStatusAScanner         BordereauStatus = "A_SCANNER"
	BordereauStatusScanEnCours      BordereauStatus = "SCAN_EN_COURS"
	BordereauStatusScanne           BordereauStatus = "SCANNE"
	BordereauStatusAAffecter        BordereauStatus = "A_AFFECTER"
	BordereauStatusAssigne          BordereauStatus = "ASSIGNE"
	BordereauStatusEnCours          BordereauStatus = "EN_COURS"
	BordereauStatusTraite           BordereauStatus = "TRAITE"
	BordereauStatusCloture          BordereauStatus = "CLOTURE"
	BordereauStatusVirementExecute  BordereauStatus = "VIREMENT_EXECUTE"
	BordereauStatusRejete           BordereauStatus = "REJETE"
)

// Bordereau is a batch of claim documents received together from a client.
type Bordereau struct {
	ID               string
	Reference        string
	ClientID         string
	ContractID       *string
	TeamID           *string
	AssignedToUserID *string
	Status           BordereauStatus
	NombreDocuments  int
	MontantTotal     float64
	DateReception    time.Time
	DueAt            time.Time
	DateDebutScan    *time.Time
	DateFinScan      *time.Time
	DateCloture      *time.Time
	Archived         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// WorkItem projects the bordereau into the shape the workflow core consumes.
func (b *Bordereau) WorkItem() WorkItem {
	return WorkItem{
		ID:             b.ID,
		Kind:           WorkItemKindBordereau,
		Reference:      b.Reference,
		Status:         string(b.Status),
		Archived:       b.Archived,
		AssignedUserID: b.AssignedToUserID,
		TeamID:         b.TeamID,
		ContractID:     b.ContractID,
		ClientID:       &b.ClientID,
		ReceivedAt:     b.DateReception,
		DueAt:          b.DueAt,
	}
}
