package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ars-claims-service/internal/api/dto"
	"github.com/spec-kit/ars-claims-service/internal/auth"
	"github.com/spec-kit/ars-claims-service/internal/service"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

// AnalyticsHandler exposes the manager dashboard aggregates.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard handles GET /analytics/dashboard.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	dashboard, err := h.analytics.BuildDashboard(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dashboardResponse(dashboard)})
}

func dashboardResponse(dashboard *service.Dashboard) dto.DashboardResponse {
	team := make([]dto.TeamMemberLoadResponse, 0, len(dashboard.Team))
	for _, load := range dashboard.Team {
		team = append(team, dto.TeamMemberLoadResponse{
			UserID:     load.UserID,
			FullName:   load.FullName,
			Role:       string(load.Role),
			Stats:      load.Stats,
			Capacity:   load.Capacity,
			Overloaded: load.Overloaded,
		})
	}
	alerts := make(map[string]int, len(dashboard.UnresolvedAlerts))
	for alertType, count := range dashboard.UnresolvedAlerts {
		alerts[string(alertType)] = count
	}
	return dto.DashboardResponse{
		KPIs: dto.DashboardKPIsResponse{
			TotalBordereaux:     dashboard.KPIs.TotalBordereaux,
			Processed:           dashboard.KPIs.Processed,
			InProgress:          dashboard.KPIs.InProgress,
			Pending:             dashboard.KPIs.Pending,
			Rejected:            dashboard.KPIs.Rejected,
			SLABreaches:         dashboard.KPIs.SLABreaches,
			SLACompliance:       dashboard.KPIs.SLACompliance,
			ProcessingRate:      dashboard.KPIs.ProcessingRate,
			PendingReclamations: dashboard.KPIs.PendingReclamations,
		},
		Team:             team,
		UnresolvedAlerts: alerts,
		GeneratedAt:      dashboard.GeneratedAt,
	}
}
