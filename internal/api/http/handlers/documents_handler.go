package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ars-claims-service/internal/api/dto"
	"github.com/spec-kit/ars-claims-service/internal/auth"
	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/service"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

// DocumentsHandler manages document scan endpoints.
type DocumentsHandler struct {
	documents *service.DocumentService
}

// NewDocumentsHandler constructs handler.
func NewDocumentsHandler(documents *service.DocumentService) *DocumentsHandler {
	return &DocumentsHandler{documents: documents}
}

// Register handles POST /bordereaux/:id/documents.
func (h *DocumentsHandler) Register(c *fiber.Ctx) error {
	var req dto.DocumentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" {
		return apperrors.NewValidationError("name required", nil)
	}

	doc, err := h.documents.Register(c.Context(), c.Params("id"), service.DocumentInput{
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": documentResponse(doc)})
}

// StartScan handles POST /documents/:id/scan/start.
func (h *DocumentsHandler) StartScan(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	doc, err := h.documents.StartScan(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": documentResponse(doc)})
}

// CompleteScan handles POST /documents/:id/scan/complete.
func (h *DocumentsHandler) CompleteScan(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	doc, err := h.documents.CompleteScan(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": documentResponse(doc)})
}

// Reject handles POST /documents/:id/reject.
func (h *DocumentsHandler) Reject(c *fiber.Ctx) error {
	doc, err := h.documents.Reject(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": documentResponse(doc)})
}

// ListByBordereau handles GET /bordereaux/:id/documents.
func (h *DocumentsHandler) ListByBordereau(c *fiber.Ctx) error {
	docs, err := h.documents.ListByBordereau(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		resp = append(resp, documentResponse(&docs[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

func documentResponse(doc *domain.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:               doc.ID,
		BordereauID:      doc.BordereauID,
		Name:             doc.Name,
		Type:             doc.Type,
		Status:           doc.Status,
		AssignedToUserID: doc.AssignedToUserID,
		ReceivedAt:       doc.ReceivedAt,
		DueAt:            doc.DueAt,
	}
}
