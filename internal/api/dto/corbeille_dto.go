package dto

import (
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/workflow"
)

// CorbeilleItem is one classified entry in a basket.
type CorbeilleItem struct {
	ID               string              `json:"id"`
	Kind             domain.WorkItemKind `json:"kind"`
	Reference        string              `json:"reference"`
	Status           string              `json:"status"`
	AssignedToUserID *string             `json:"assigned_to_user_id"`
	ReceivedAt       time.Time           `json:"received_at"`
	DueAt            time.Time           `json:"due_at"`
	EnRetard         bool                `json:"enRetard"`
	Critique         bool                `json:"critique"`
}

// CorbeilleResponse is the three-bucket basket view. Bucket keys mirror the
// stats payload the dashboards already consume.
type CorbeilleResponse struct {
	NonAffectes []CorbeilleItem `json:"nonAffectes"`
	EnCours     []CorbeilleItem `json:"enCours"`
	Traites     []CorbeilleItem `json:"traites"`
	Stats       workflow.Stats  `json:"stats"`
}
