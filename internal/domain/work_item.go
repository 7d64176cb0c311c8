package domain

import "time"

// WorkItemKind distinguishes the entity behind a generalized work item.
type WorkItemKind string

const (
	WorkItemKindBordereau WorkItemKind = "BORDEREAU"
	WorkItemKindDocument  WorkItemKind = "DOCUMENT"
)

// WorkItem generalizes bordereaux and documents for basket classification.
// Status stays a plain string here because bordereaux and documents carry
// different enumerations; role profiles decide which values they recognize.
type WorkItem struct {
	ID             string
	Kind           WorkItemKind
	Reference      string
	Status         string
	Archived       bool
	AssignedUserID *string
	TeamID         *string
	ContractID     *string
	ClientID       *string
	ReceivedAt     time.Time
	DueAt          time.Time
}
