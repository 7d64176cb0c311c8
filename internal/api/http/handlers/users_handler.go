package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ars-claims-service/internal/api/dto"
	"github.com/spec-kit/ars-claims-service/internal/auth"
	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/repository"
	"github.com/spec-kit/ars-claims-service/internal/service"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

// UsersHandler exposes staff administration endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return apperrors.NewValidationError("full_name, email, password, role required", nil)
	}

	user, err := h.users.Create(c.Context(), principal.User, service.UserCreateInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		Capacity:     req.Capacity,
		TeamLeaderID: req.TeamLeaderID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// Update handles PUT /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	current, err := h.users.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	input := service.UserUpdateInput{
		FullName:     current.FullName,
		Email:        current.Email,
		Role:         current.Role,
		Capacity:     current.Capacity,
		TeamLeaderID: current.TeamLeaderID,
		Active:       current.Active,
	}
	if req.FullName != "" {
		input.FullName = req.FullName
	}
	if req.Email != "" {
		input.Email = req.Email
	}
	if req.Role != "" {
		input.Role = req.Role
	}
	if req.Capacity != nil {
		input.Capacity = req.Capacity
	}
	if req.TeamLeaderID != nil {
		input.TeamLeaderID = req.TeamLeaderID
	}
	if req.Active != nil {
		input.Active = *req.Active
	}

	updated, err := h.users.Update(c.Context(), principal.User, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(updated)})
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	list, err := h.users.List(c.Context(), principal.User, parseUserFilter(c))
	if err != nil {
		return err
	}
	resp := make([]dto.UserResponse, 0, len(list))
	for i := range list {
		resp = append(resp, userResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// Team handles GET /users/:id/team, listing the members reporting to a chef
// d'equipe.
func (h *UsersHandler) Team(c *fiber.Ctx) error {
	members, err := h.users.Team(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := make([]dto.UserResponse, 0, len(members))
	for i := range members {
		resp = append(resp, userResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

func parseUserFilter(c *fiber.Ctx) repository.UserFilter {
	var filter repository.UserFilter
	if roleStr := c.Query("role"); roleStr != "" {
		for _, part := range strings.Split(roleStr, ",") {
			filter.Roles = append(filter.Roles, domain.StaffRole(strings.TrimSpace(part)))
		}
	}
	if leaderID := c.Query("team_leader_id"); leaderID != "" {
		filter.TeamLeaderID = &leaderID
	}
	if active := c.Query("active"); active != "" {
		if val, err := strconv.ParseBool(active); err == nil {
			filter.Active = &val
		}
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:           user.ID,
		FullName:     user.FullName,
		Email:        user.Email,
		Role:         user.Role,
		Capacity:     user.Capacity,
		TeamLeaderID: user.TeamLeaderID,
		Active:       user.Active,
		CreatedAt:    user.CreatedAt,
	}
}
