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

// VirementsHandler manages wire-transfer batch endpoints.
type VirementsHandler struct {
	virements *service.VirementService
}

// NewVirementsHandler constructs handler.
func NewVirementsHandler(virements *service.VirementService) *VirementsHandler {
	return &VirementsHandler{virements: virements}
}

// Generate handles POST /virements.
func (h *VirementsHandler) Generate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.VirementGenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ClientID == "" {
		return apperrors.NewValidationError("client_id required", nil)
	}
	ordre, err := h.virements.Generate(c.Context(), principal.User, req.ClientID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": virementResponse(ordre)})
}

// ConfirmExecution handles POST /virements/:id/execute.
func (h *VirementsHandler) ConfirmExecution(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ordre, err := h.virements.ConfirmExecution(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": virementResponse(ordre)})
}

// Get handles GET /virements/:id.
func (h *VirementsHandler) Get(c *fiber.Ctx) error {
	ordre, err := h.virements.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": virementResponse(ordre)})
}

// List handles GET /virements.
func (h *VirementsHandler) List(c *fiber.Ctx) error {
	list, err := h.virements.List(c.Context(), parseVirementFilter(c))
	if err != nil {
		return err
	}
	resp := make([]dto.VirementResponse, 0, len(list))
	for i := range list {
		resp = append(resp, virementResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

func parseVirementFilter(c *fiber.Ctx) repository.VirementFilter {
	var filter repository.VirementFilter
	if clientID := c.Query("client_id"); clientID != "" {
		filter.ClientID = &clientID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.OrdreVirementStatus(strings.TrimSpace(part)))
		}
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func virementResponse(ordre *domain.OrdreVirement) dto.VirementResponse {
	items := make([]dto.VirementItemResponse, 0, len(ordre.Items))
	for _, item := range ordre.Items {
		items = append(items, dto.VirementItemResponse{
			ID:          item.ID,
			BordereauID: item.BordereauID,
			Montant:     item.Montant,
		})
	}
	return dto.VirementResponse{
		ID:            ordre.ID,
		Reference:     ordre.Reference,
		ClientID:      ordre.ClientID,
		Status:        ordre.Status,
		MontantTotal:  ordre.MontantTotal,
		GeneratedByID: ordre.GeneratedByID,
		ExecutedAt:    ordre.ExecutedAt,
		CreatedAt:     ordre.CreatedAt,
		Items:         items,
	}
}
