package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/agent-portal/internal/domain"
	apperrors "github.com/spec-kit/agent-portal/pkg/util"
)

// RequireAdmin ensures the authenticated caller holds the admin role.
// Lifecycle transitions are admin-initiated only.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role != domain.UserRoleAdmin {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}

// RequireAgent ensures the caller is an authenticated agent account.
func RequireAgent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role != domain.UserRoleAgent {
			return apperrors.NewForbidden("agent role required")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures the caller is authenticated, agent or admin.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
