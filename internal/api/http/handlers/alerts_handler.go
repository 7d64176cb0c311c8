package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ars-claims-service/internal/api/dto"
	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	"github.com/spec-kit/ars-claims-service/internal/service"
)

// AlertsHandler exposes the capacity and SLA alert endpoints.
type AlertsHandler struct {
	capacity *service.CapacityService
}

// NewAlertsHandler constructs handler.
func NewAlertsHandler(capacity *service.CapacityService) *AlertsHandler {
	return &AlertsHandler{capacity: capacity}
}

// List handles GET /alerts.
func (h *AlertsHandler) List(c *fiber.Ctx) error {
	alerts, err := h.capacity.ListAlerts(c.Context(), parseAlertFilter(c))
	if err != nil {
		return err
	}
	resp := make([]dto.AlertResponse, 0, len(alerts))
	for i := range alerts {
		resp = append(resp, alertResponse(&alerts[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Resolve handles POST /alerts/:id/resolve.
func (h *AlertsHandler) Resolve(c *fiber.Ctx) error {
	if err := h.capacity.ResolveAlert(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "resolved"}})
}

func parseAlertFilter(c *fiber.Ctx) repository.AlertFilter {
	var filter repository.AlertFilter
	if userID := c.Query("subject_user_id"); userID != "" {
		filter.SubjectUserID = &userID
	}
	if typeStr := c.Query("type"); typeStr != "" {
		alertType := domain.AlertType(typeStr)
		filter.AlertType = &alertType
	}
	if levelStr := c.Query("level"); levelStr != "" {
		level := domain.AlertLevel(levelStr)
		filter.AlertLevel = &level
	}
	if resolved := c.Query("resolved"); resolved != "" {
		if val, err := strconv.ParseBool(resolved); err == nil {
			filter.Resolved = &val
		}
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func alertResponse(alert *domain.AlertRecord) dto.AlertResponse {
	return dto.AlertResponse{
		ID:            alert.ID,
		AlertType:     alert.AlertType,
		AlertLevel:    alert.AlertLevel,
		SubjectUserID: alert.SubjectUserID,
		BordereauID:   alert.BordereauID,
		Message:       alert.Message,
		Resolved:      alert.Resolved,
		CreatedAt:     alert.CreatedAt,
		ResolvedAt:    alert.ResolvedAt,
	}
}
