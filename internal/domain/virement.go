package domain

import "time"

// OrdreVirementStatus enumerates wire-transfer batch states.
type OrdreVirementStatus string

const (
	OrdreVirementStatusGenere  OrdreVirementStatus = "GENERE"
	OrdreVirementStatusExecute OrdreVirementStatus = "EXECUTE"
	OrdreVirementStatusAnnule  OrdreVirementStatus = "ANNULE"
)

// OrdreVirement is a reimbursement wire-transfer batch grouping processed
// bordereaux for one client. Flat-file rendering is out of scope; only the
// relational records live here.
type OrdreVirement struct {
	ID            string
	Reference     string
	ClientID      string
	Status        OrdreVirementStatus
	MontantTotal  float64
	GeneratedByID string
	ExecutedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Items         []VirementItem
}

// VirementItem is one bordereau settled inside a batch.
type VirementItem struct {
	ID              string
	OrdreVirementID string
	BordereauID     string
	Montant         float64
	CreatedAt       time.Time
}
