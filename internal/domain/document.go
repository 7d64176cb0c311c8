package domain

import "time"

// DocumentStatus enumerates digitization states of a single claim artifact.
type DocumentStatus string

const (
	DocumentStatusUploade     DocumentStatus = "UPLOADE"
	DocumentStatusEnCoursScan DocumentStatus = "EN_COURS_SCAN"
	DocumentStatusScanne      DocumentStatus = "SCANNE"
	DocumentStatusTraite      DocumentStatus = "TRAITE"
	DocumentStatusRejete      DocumentStatus = "REJETE"
)

// Document is an individual claim artifact within a bordereau.
type Document struct {
	ID               string
	BordereauID      string
	Name             string
	Type             string
	Status           DocumentStatus
	AssignedToUserID *string
	ReceivedAt       time.Time
	DueAt            time.Time
	Archived         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// WorkItem projects the document into the shape the workflow core consumes.
// Scoping fields beyond the assignee come from the parent bordereau and are
// filled by the caller when needed.
func (d *Document) WorkItem() WorkItem {
	return WorkItem{
		ID:             d.ID,
		Kind:           WorkItemKindDocument,
		Reference:      d.Name,
		Status:         string(d.Status),
		Archived:       d.Archived,
		AssignedUserID: d.AssignedToUserID,
		ReceivedAt:     d.ReceivedAt,
		DueAt:          d.DueAt,
	}
}
