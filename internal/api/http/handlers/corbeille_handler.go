package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ars-claims-service/internal/api/dto"
	"github.com/spec-kit/ars-claims-service/internal/auth"
	"github.com/spec-kit/ars-claims-service/internal/service"
	"github.com/spec-kit/ars-claims-service/internal/workflow"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

// CorbeilleHandler exposes the role-scoped basket views.
type CorbeilleHandler struct {
	corbeilles *service.CorbeilleService
}

// NewCorbeilleHandler constructs handler.
func NewCorbeilleHandler(corbeilles *service.CorbeilleService) *CorbeilleHandler {
	return &CorbeilleHandler{corbeilles: corbeilles}
}

// Get handles GET /corbeille, returning the caller's basket.
func (h *CorbeilleHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	corbeille, err := h.corbeilles.GetCorbeille(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": corbeilleResponse(corbeille)})
}

// Stats handles GET /corbeille/stats.
func (h *CorbeilleHandler) Stats(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.corbeilles.GetStats(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

func corbeilleResponse(corbeille workflow.Corbeille) dto.CorbeilleResponse {
	return dto.CorbeilleResponse{
		NonAffectes: corbeilleItems(corbeille.Unassigned),
		EnCours:     corbeilleItems(corbeille.InProgress),
		Traites:     corbeilleItems(corbeille.Completed),
		Stats:       corbeille.Stats,
	}
}

func corbeilleItems(entries []workflow.ClassifiedItem) []dto.CorbeilleItem {
	items := make([]dto.CorbeilleItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.CorbeilleItem{
			ID:               entry.Item.ID,
			Kind:             entry.Item.Kind,
			Reference:        entry.Item.Reference,
			Status:           entry.Item.Status,
			AssignedToUserID: entry.Item.AssignedUserID,
			ReceivedAt:       entry.Item.ReceivedAt,
			DueAt:            entry.Item.DueAt,
			EnRetard:         entry.Late,
			Critique:         entry.Critical,
		})
	}
	return items
}
