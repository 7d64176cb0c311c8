package domain

import "time"

// ReclamationStatus enumerates complaint lifecycle states.
type ReclamationStatus string

const (
	ReclamationStatusOuverte  ReclamationStatus = "OUVERTE"
	ReclamationStatusEnCours  ReclamationStatus = "EN_COURS"
	ReclamationStatusEscalade ReclamationStatus = "ESCALADEE"
	ReclamationStatusResolue  ReclamationStatus = "RESOLUE"
	ReclamationStatusRejetee  ReclamationStatus = "REJETEE"
)

// ReclamationSeverity grades a complaint.
type ReclamationSeverity string

const (
	ReclamationSeverityBasse   ReclamationSeverity = "BASSE"
	ReclamationSeverityMoyenne ReclamationSeverity = "MOYENNE"
	ReclamationSeverityHaute   ReclamationSeverity = "HAUTE"
)

// Reclamation is a customer complaint, tracked alongside bordereaux but with
// its own lifecycle.
type Reclamation struct {
	ID               string
	ClientID         string
	BordereauID      *string
	AssignedToUserID *string
	Status           ReclamationStatus
	Severity         ReclamationSeverity
	Subject          string
	Description      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ResolvedAt       *time.Time
}
