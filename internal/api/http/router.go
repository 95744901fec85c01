package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sav-suite/reclamation-service/internal/api/http/handlers"
	"github.com/sav-suite/reclamation-service/internal/auth"
	"github.com/sav-suite/reclamation-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Reclamations   *handlers.ReclamationsHandler
	WorkOrders     *handlers.WorkOrdersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/auth/password/change", cfg.Auth.ChangePassword)

	reclamations := protected.Group("/reclamations")
	reclamations.Post("", cfg.Reclamations.Create)
	reclamations.Get("", cfg.Reclamations.List)
	reclamations.Get("/:id", cfg.Reclamations.Get)
	reclamations.Get("/:id/history", cfg.Reclamations.History)
	reclamations.Post("/:id/assign", auth.RequireRole(domain.RoleAdmin, domain.RoleAssistant), cfg.Reclamations.Assign)
	reclamations.Post("/:id/unassign", auth.RequireRole(domain.RoleAdmin, domain.RoleAssistant), cfg.Reclamations.Unassign)
	reclamations.Post("/:id/status", auth.RequireRole(domain.RoleAdmin, domain.RoleAssistant, domain.RoleTechnician), cfg.Reclamations.SetStatus)

	protected.Get("/intervention-requests", cfg.WorkOrders.ListInterventions)

	workOrders := protected.Group("/work-orders")
	workOrders.Get("", cfg.WorkOrders.List)
	workOrders.Get("/:id", cfg.WorkOrders.Get)
	workOrders.Post("/:id/close", auth.RequireRole(domain.RoleAdmin, domain.RoleTechnician), cfg.WorkOrders.Close)
}
