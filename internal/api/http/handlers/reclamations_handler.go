package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ars-claims-service/internal/api/dto"
	"github.com/spec-kit/ars-claims-service/internal/auth"
	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	"github.com/spec-kit/ars-claims-service/internal/service"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

// ReclamationsHandler manages complaint endpoints.
type ReclamationsHandler struct {
	reclamations *service.ReclamationService
}

// NewReclamationsHandler constructs handler.
func NewReclamationsHandler(reclamations *service.ReclamationService) *ReclamationsHandler {
	return &ReclamationsHandler{reclamations: reclamations}
}

// Create handles POST /reclamations.
func (h *ReclamationsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ReclamationCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ClientID == "" || req.Subject == "" {
		return apperrors.NewValidationError("client_id and subject required", nil)
	}

	rec, err := h.reclamations.Open(c.Context(), principal.User, service.ReclamationInput{
		ClientID:    req.ClientID,
		BordereauID: req.BordereauID,
		Severity:    req.Severity,
		Subject:     req.Subject,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": reclamationResponse(rec)})
}

// UpdateStatus handles POST /reclamations/:id/status.
func (h *ReclamationsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.ReclamationStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	rec, err := h.reclamations.UpdateStatus(c.Context(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reclamationResponse(rec)})
}

// Assign handles POST /reclamations/:id/assign.
func (h *ReclamationsHandler) Assign(c *fiber.Ctx) error {
	var req dto.ReclamationAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rec, err := h.reclamations.Assign(c.Context(), c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reclamationResponse(rec)})
}

// Get handles GET /reclamations/:id.
func (h *ReclamationsHandler) Get(c *fiber.Ctx) error {
	rec, err := h.reclamations.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": reclamationResponse(rec)})
}

// List handles GET /reclamations.
func (h *ReclamationsHandler) List(c *fiber.Ctx) error {
	list, err := h.reclamations.List(c.Context(), parseReclamationFilter(c))
	if err != nil {
		return err
	}
	resp := make([]dto.ReclamationResponse, 0, len(list))
	for i := range list {
		resp = append(resp, reclamationResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

func parseReclamationFilter(c *fiber.Ctx) repository.ReclamationFilter {
	var filter repository.ReclamationFilter
	if clientID := c.Query("client_id"); clientID != "" {
		filter.ClientID = &clientID
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedToUserID = &assignee
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.ReclamationStatus(strings.TrimSpace(part)))
		}
	}
	if severityStr := c.Query("severity"); severityStr != "" {
		for _, part := range strings.Split(severityStr, ",") {
			filter.Severities = append(filter.Severities, domain.ReclamationSeverity(strings.TrimSpace(part)))
		}
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func reclamationResponse(rec *domain.Reclamation) dto.ReclamationResponse {
	return dto.ReclamationResponse{
		ID:               rec.ID,
		ClientID:         rec.ClientID,
		BordereauID:      rec.BordereauID,
		AssignedToUserID: rec.AssignedToUserID,
		Status:           rec.Status,
		Severity:         rec.Severity,
		Subject:          rec.Subject,
		Description:      rec.Description,
		CreatedAt:        rec.CreatedAt,
		ResolvedAt:       rec.ResolvedAt,
	}
}
