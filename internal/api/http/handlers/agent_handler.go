package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/agent-portal/internal/api/dto"
	"github.com/spec-kit/agent-portal/internal/auth"
	apperrors "github.com/spec-kit/agent-portal/pkg/util"
)

// AgentHandler exposes the agent-facing endpoints.
type AgentHandler struct{}

// NewAgentHandler constructs handler.
func NewAgentHandler() *AgentHandler {
	return &AgentHandler{}
}

// Profile handles GET /agent/profile: returns the caller's own record.
func (h *AgentHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	return c.JSON(fiber.Map{
		"message": "profile fetched",
		"data":    fiber.Map{"user": dto.NewUserResponse(principal)},
	})
}
