package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/agent-portal/internal/api/dto"
	"github.com/spec-kit/agent-portal/internal/auth"
	"github.com/spec-kit/agent-portal/internal/domain"
	"github.com/spec-kit/agent-portal/internal/service"
	apperrors "github.com/spec-kit/agent-portal/pkg/util"
)

// AdminHandler exposes the lifecycle operations behind the admin guard.
type AdminHandler struct {
	lifecycle *service.LifecycleService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(lifecycle *service.LifecycleService) *AdminHandler {
	return &AdminHandler{lifecycle: lifecycle}
}

// ListUsers handles GET /admin/users with optional status / deleted
// filters.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	var (
		users []domain.User
		err   error
	)

	switch {
	case c.Query("deleted") == "true":
		users, err = h.lifecycle.ListDeleted(c.Context())
	case c.Query("status") == string(domain.UserStatusPending):
		users, err = h.lifecycle.ListPending(c.Context())
	case c.Query("status") == string(domain.UserStatusBlocked):
		users, err = h.lifecycle.ListBlocked(c.Context())
	default:
		users, err = h.lifecycle.ListAll(c.Context())
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "users fetched",
		"data":    fiber.Map{"users": dto.NewUserListResponse(users)},
	})
}

// AddUser handles POST /admin/users: direct creation bypassing the
// pending state.
func (h *AdminHandler) AddUser(c *fiber.Ctx) error {
	adminID, err := principalID(c)
	if err != nil {
		return err
	}

	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("name, email, password required", nil)
	}

	user, err := h.lifecycle.AddUser(c.Context(), service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Organization: req.Organization,
		Phone:        req.Phone,
		State:        req.State,
		City:         req.City,
		DocumentURLs: req.Documents,
	}, adminID)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "user created",
		"data":    fiber.Map{"user": dto.NewUserResponse(user)},
	})
}

// Approve handles PUT /admin/users/:id/approve.
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, "user approved", h.lifecycle.Approve)
}

// Reject handles PUT /admin/users/:id/reject.
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, "user rejected", h.lifecycle.Reject)
}

// Block handles PUT /admin/users/:id/block.
func (h *AdminHandler) Block(c *fiber.Ctx) error {
	return h.transition(c, "user blocked", h.lifecycle.Block)
}

// Unblock handles PUT /admin/users/:id/unblock.
func (h *AdminHandler) Unblock(c *fiber.Ctx) error {
	return h.transition(c, "user unblocked", h.lifecycle.Unblock)
}

// SoftDelete handles DELETE /admin/users/:id.
func (h *AdminHandler) SoftDelete(c *fiber.Ctx) error {
	return h.transition(c, "user deleted", h.lifecycle.SoftDelete)
}

type transitionFunc func(ctx context.Context, targetID, adminID string) (*domain.User, error)

func (h *AdminHandler) transition(c *fiber.Ctx, message string, op transitionFunc) error {
	adminID, err := principalID(c)
	if err != nil {
		return err
	}

	targetID := c.Params("id")
	if targetID == "" {
		return apperrors.NewValidationError("user id required", nil)
	}

	user, err := op(c.Context(), targetID, adminID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": message,
		"data":    fiber.Map{"user": dto.NewUserResponse(user)},
	})
}

func principalID(c *fiber.Ctx) (string, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return "", apperrors.NewUnauthorized("authentication required")
	}
	return principal.ID, nil
}
