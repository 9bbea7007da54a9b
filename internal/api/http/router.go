package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/agent-portal/internal/api/http/handlers"
	"github.com/spec-kit/agent-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Agent          *handlers.AgentHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Every lifecycle operation sits
// behind the token middleware plus the admin guard.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	agentGroup := app.Group("/agent", cfg.AuthMiddleware.Handle, auth.RequireAgent())
	agentGroup.Get("/profile", cfg.Agent.Profile)

	adminGroup := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	adminGroup.Get("/users", cfg.Admin.ListUsers)
	adminGroup.Post("/users", cfg.Admin.AddUser)
	adminGroup.Put("/users/:id/approve", cfg.Admin.Approve)
	adminGroup.Put("/users/:id/reject", cfg.Admin.Reject)
	adminGroup.Put("/users/:id/block", cfg.Admin.Block)
	adminGroup.Put("/users/:id/unblock", cfg.Admin.Unblock)
	adminGroup.Delete("/users/:id", cfg.Admin.SoftDelete)
}
