package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ars-claims-service/internal/api/dto"
	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/service"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

// ClientsHandler manages client and contract endpoints.
type ClientsHandler struct {
	clients *service.ClientService
}

// NewClientsHandler constructs handler.
func NewClientsHandler(clients *service.ClientService) *ClientsHandler {
	return &ClientsHandler{clients: clients}
}

// Create handles POST /clients.
func (h *ClientsHandler) Create(c *fiber.Ctx) error {
	var req dto.ClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	client, err := h.clients.CreateClient(c.Context(), service.ClientInput{
		Name:               req.Name,
		AccountManagerID:   req.AccountManagerID,
		ReglementDelayDays: req.ReglementDelayDays,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": clientResponse(client)})
}

// Get handles GET /clients/:id.
func (h *ClientsHandler) Get(c *fiber.Ctx) error {
	client, err := h.clients.GetClient(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

// Portfolio handles GET /clients/portfolio/:managerId, listing the clients
// of a gestionnaire senior.
func (h *ClientsHandler) Portfolio(c *fiber.Ctx) error {
	clients, err := h.clients.Portfolio(c.Context(), c.Params("managerId"))
	if err != nil {
		return err
	}
	resp := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		resp = append(resp, clientResponse(&clients[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreateContract handles POST /contracts.
func (h *ClientsHandler) CreateContract(c *fiber.Ctx) error {
	var req dto.ContractRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ClientID == "" {
		return apperrors.NewValidationError("client_id required", nil)
	}
	input := service.ContractInput{
		ClientID:           req.ClientID,
		DelaiReglementDays: req.DelaiReglementDays,
		TeamLeaderID:       req.TeamLeaderID,
		EndsAt:             req.EndsAt,
	}
	if req.StartsAt != nil {
		input.StartsAt = *req.StartsAt
	}
	contract, err := h.clients.CreateContract(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": contractResponse(contract)})
}

func clientResponse(client *domain.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:                 client.ID,
		Name:               client.Name,
		AccountManagerID:   client.AccountManagerID,
		ReglementDelayDays: client.ReglementDelayDays,
		Active:             client.Active,
	}
}

func contractResponse(contract *domain.Contract) dto.ContractResponse {
	return dto.ContractResponse{
		ID:                 contract.ID,
		ClientID:           contract.ClientID,
		DelaiReglementDays: contract.DelaiReglementDays,
		TeamLeaderID:       contract.TeamLeaderID,
		StartsAt:           contract.StartsAt,
		EndsAt:             contract.EndsAt,
		Active:             contract.Active,
	}
}
