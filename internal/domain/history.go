package domain

import "time"

// TraitementAction captures what happened in a history entry.
type TraitementAction string

const (
	ActionIntake       TraitementAction = "INTAKE"
	ActionStatusChange TraitementAction = "STATUS_CHANGE"
	ActionAssignment   TraitementAction = "ASSIGNMENT"
	ActionArchive      TraitementAction = "ARCHIVE"
)

// TraitementHistory is an immutable audit trail entry for a bordereau.
type TraitementHistory struct {
	ID          string
	BordereauID string
	UserID      *string
	Action      TraitementAction
	FromStatus  *BordereauStatus
	ToStatus    *BordereauStatus
	Comment     string
	CreatedAt   time.Time
}
