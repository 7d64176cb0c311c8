package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ars-claims-service/internal/api/dto"
	"github.com/spec-kit/ars-claims-service/internal/auth"
	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	"github.com/spec-kit/ars-claims-service/internal/service"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

// BordereauxHandler manages bordereau lifecycle endpoints.
type BordereauxHandler struct {
	bordereaux *service.BordereauService
	corbeilles *service.CorbeilleService
	users      *service.UserService
}

// NewBordereauxHandler constructs handler.
func NewBordereauxHandler(bordereaux *service.BordereauService, corbeilles *service.CorbeilleService, users *service.UserService) *BordereauxHandler {
	return &BordereauxHandler{bordereaux: bordereaux, corbeilles: corbeilles, users: users}
}

// Intake handles POST /bordereaux.
func (h *BordereauxHandler) Intake(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BordereauIntakeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ClientID == "" {
		return apperrors.NewValidationError("client_id required", nil)
	}

	input := service.BordereauIntakeInput{
		Reference:       req.Reference,
		ClientID:        req.ClientID,
		NombreDocuments: req.NombreDocuments,
		MontantTotal:    req.MontantTotal,
	}
	if req.DateReception != nil {
		received, err := time.Parse(time.RFC3339, *req.DateReception)
		if err != nil {
			return apperrors.NewValidationError("date_reception must be RFC3339", nil)
		}
		input.DateReception = received
	}

	bordereau, err := h.bordereaux.Intake(c.Context(), principal.User, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": bordereauSummary(bordereau)})
}

// UpdateStatus handles POST /bordereaux/:id/status.
func (h *BordereauxHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BordereauStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	bordereau, err := h.bordereaux.UpdateStatus(c.Context(), principal.User, c.Params("id"), req.Status, req.Comment)
	if err != nil {
		return err
	}
	h.invalidateStatsFor(c, bordereau.AssignedToUserID)
	return c.JSON(fiber.Map{"data": bordereauSummary(bordereau)})
}

// Assign handles POST /bordereaux/:id/assign.
func (h *BordereauxHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BordereauAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	before, _, err := h.bordereaux.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	previousAssignee := before.AssignedToUserID

	bordereau, err := h.bordereaux.Assign(c.Context(), principal.User, c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	h.invalidateStatsFor(c, previousAssignee)
	h.invalidateStatsFor(c, bordereau.AssignedToUserID)
	return c.JSON(fiber.Map{"data": bordereauSummary(bordereau)})
}

// Archive handles POST /bordereaux/:id/archive.
func (h *BordereauxHandler) Archive(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	bordereau, err := h.bordereaux.Archive(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	h.invalidateStatsFor(c, bordereau.AssignedToUserID)
	return c.JSON(fiber.Map{"data": bordereauSummary(bordereau)})
}

// Get handles GET /bordereaux/:id.
func (h *BordereauxHandler) Get(c *fiber.Ctx) error {
	bordereau, docs, err := h.bordereaux.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bordereauDetail(bordereau, docs)})
}

// List handles GET /bordereaux.
func (h *BordereauxHandler) List(c *fiber.Ctx) error {
	list, err := h.bordereaux.List(c.Context(), parseBordereauFilter(c))
	if err != nil {
		return err
	}
	resp := make([]dto.BordereauSummary, 0, len(list))
	for i := range list {
		resp = append(resp, bordereauSummary(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// History handles GET /bordereaux/:id/history.
func (h *BordereauxHandler) History(c *fiber.Ctx) error {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	entries, err := h.bordereaux.History(c.Context(), c.Params("id"), pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	resp := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.HistoryEntryResponse{
			ID:         entry.ID,
			UserID:     entry.UserID,
			Action:     entry.Action,
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			Comment:    entry.Comment,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// invalidateStatsFor drops the cached corbeille stats of the given user so
// the next dashboard read reflects the mutation.
func (h *BordereauxHandler) invalidateStatsFor(c *fiber.Ctx, userID *string) {
	if userID == nil || h.corbeilles == nil {
		return
	}
	user, err := h.users.GetByID(c.Context(), *userID)
	if err != nil {
		return
	}
	h.corbeilles.InvalidateStats(c.Context(), user)
}

func parseBordereauFilter(c *fiber.Ctx) repository.BordereauFilter {
	var filter repository.BordereauFilter
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.BordereauStatus(strings.TrimSpace(part)))
		}
	}
	if clientID := c.Query("client_id"); clientID != "" {
		filter.ClientID = &clientID
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedToUserID = &assignee
	}
	if from := parseTimeQuery(c.Query("received_from")); from != nil {
		filter.ReceivedFrom = from
	}
	if to := parseTimeQuery(c.Query("received_to")); to != nil {
		filter.ReceivedTo = to
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTimeQuery(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func bordereauSummary(b *domain.Bordereau) dto.BordereauSummary {
	return dto.BordereauSummary{
		ID:               b.ID,
		Reference:        b.Reference,
		ClientID:         b.ClientID,
		ContractID:       b.ContractID,
		TeamID:           b.TeamID,
		AssignedToUserID: b.AssignedToUserID,
		Status:           b.Status,
		NombreDocuments:  b.NombreDocuments,
		MontantTotal:     b.MontantTotal,
		DateReception:    b.DateReception,
		DueAt:            b.DueAt,
		Archived:         b.Archived,
	}
}

func bordereauDetail(b *domain.Bordereau, docs []domain.Document) dto.BordereauDetailResponse {
	resp := dto.BordereauDetailResponse{
		BordereauSummary: bordereauSummary(b),
		DateDebutScan:    b.DateDebutScan,
		DateFinScan:      b.DateFinScan,
		DateCloture:      b.DateCloture,
		Documents:        make([]dto.DocumentResponse, 0, len(docs)),
	}
	for i := range docs {
		resp.Documents = append(resp.Documents, documentResponse(&docs[i]))
	}
	return resp
}
