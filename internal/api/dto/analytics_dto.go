package dto

import (
	"time"

	"github.com/spec-kit/ars-claims-service/internal/workflow"
)

// DashboardKPIsResponse is the pipeline breakdown block of the dashboard.
type DashboardKPIsResponse struct {
	TotalBordereaux     int     `json:"total_bordereaux"`
	Processed           int     `json:"processed"`
	InProgress          int     `json:"in_progress"`
	Pending             int     `json:"pending"`
	Rejected            int     `json:"rejected"`
	SLABreaches         int     `json:"sla_breaches"`
	SLACompliance       float64 `json:"sla_compliance"`
	ProcessingRate      float64 `json:"processing_rate"`
	PendingReclamations int     `json:"pending_reclamations"`
}

// TeamMemberLoadResponse carries one team member's corbeille counters.
type TeamMemberLoadResponse struct {
	UserID     string         `json:"user_id"`
	FullName   string         `json:"full_name"`
	Role       string         `json:"role"`
	Stats      workflow.Stats `json:"stats"`
	Capacity   int            `json:"capacity"`
	Overloaded bool           `json:"overloaded"`
}

// DashboardResponse is the manager dashboard payload.
type DashboardResponse struct {
	KPIs             DashboardKPIsResponse    `json:"kpis"`
	Team             []TeamMemberLoadResponse `json:"team"`
	UnresolvedAlerts map[string]int           `json:"unresolved_alerts"`
	GeneratedAt      time.Time                `json:"generated_at"`
}
