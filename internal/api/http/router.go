package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ars-claims-service/internal/api/http/handlers"
	"github.com/spec-kit/ars-claims-service/internal/auth"
	"github.com/spec-kit/ars-claims-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Clients        *handlers.ClientsHandler
	Bordereaux     *handlers.BordereauxHandler
	Documents      *handlers.DocumentsHandler
	Corbeille      *handlers.CorbeilleHandler
	Analytics      *handlers.AnalyticsHandler
	Alerts         *handlers.AlertsHandler
	Reclamations   *handlers.ReclamationsHandler
	Virements      *handlers.VirementsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	users := api.Group("/users")
	users.Post("", auth.RequireRole(domain.StaffRoleSuperAdmin), cfg.Users.Create)
	users.Get("", auth.RequireRole(domain.StaffRoleSuperAdmin), cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Put("/:id", auth.RequireRole(domain.StaffRoleSuperAdmin), cfg.Users.Update)
	users.Get("/:id/team", auth.RequireRole(domain.StaffRoleChefEquipe, domain.StaffRoleGestionnaireSenior), cfg.Users.Team)

	clients := api.Group("/clients")
	clients.Post("", auth.RequireRole(domain.StaffRoleGestionnaireSenior), cfg.Clients.Create)
	clients.Get("/portfolio/:managerId", auth.RequireRole(domain.StaffRoleGestionnaireSenior), cfg.Clients.Portfolio)
	clients.Get("/:id", cfg.Clients.Get)
	api.Post("/contracts", auth.RequireRole(domain.StaffRoleGestionnaireSenior), cfg.Clients.CreateContract)

	bordereaux := api.Group("/bordereaux")
	bordereaux.Post("", auth.RequireRole(domain.StaffRoleBureauOrdre), cfg.Bordereaux.Intake)
	bordereaux.Get("", cfg.Bordereaux.List)
	bordereaux.Get("/:id", cfg.Bordereaux.Get)
	bordereaux.Get("/:id/history", cfg.Bordereaux.History)
	bordereaux.Post("/:id/status", auth.RequireRole(
		domain.StaffRoleScan,
		domain.StaffRoleGestionnaire,
		domain.StaffRoleChefEquipe,
		domain.StaffRoleGestionnaireSenior,
	), cfg.Bordereaux.UpdateStatus)
	bordereaux.Post("/:id/assign", auth.RequireRole(domain.StaffRoleChefEquipe, domain.StaffRoleGestionnaireSenior), cfg.Bordereaux.Assign)
	bordereaux.Post("/:id/archive", auth.RequireRole(domain.StaffRoleChefEquipe, domain.StaffRoleGestionnaireSenior), cfg.Bordereaux.Archive)
	bordereaux.Post("/:id/documents", auth.RequireRole(domain.StaffRoleBureauOrdre, domain.StaffRoleScan), cfg.Documents.Register)
	bordereaux.Get("/:id/documents", cfg.Documents.ListByBordereau)

	documents := api.Group("/documents", auth.RequireRole(domain.StaffRoleScan))
	documents.Post("/:id/scan/start", cfg.Documents.StartScan)
	documents.Post("/:id/scan/complete", cfg.Documents.CompleteScan)
	documents.Post("/:id/reject", cfg.Documents.Reject)

	api.Get("/corbeille", cfg.Corbeille.Get)
	api.Get("/corbeille/stats", cfg.Corbeille.Stats)

	analytics := api.Group("/analytics", auth.RequireRole(domain.StaffRoleChefEquipe, domain.StaffRoleGestionnaireSenior))
	analytics.Get("/dashboard", cfg.Analytics.Dashboard)

	alerts := api.Group("/alerts", auth.RequireRole(domain.StaffRoleChefEquipe, domain.StaffRoleGestionnaireSenior))
	alerts.Get("", cfg.Alerts.List)
	alerts.Post("/:id/resolve", cfg.Alerts.Resolve)

	reclamations := api.Group("/reclamations", auth.RequireRole(
		domain.StaffRoleGestionnaire,
		domain.StaffRoleChefEquipe,
		domain.StaffRoleGestionnaireSenior,
	))
	reclamations.Post("", cfg.Reclamations.Create)
	reclamations.Get("", cfg.Reclamations.List)
	reclamations.Get("/:id", cfg.Reclamations.Get)
	reclamations.Post("/:id/status", cfg.Reclamations.UpdateStatus)
	reclamations.Post("/:id/assign", cfg.Reclamations.Assign)

	virements := api.Group("/virements", auth.RequireRole(domain.StaffRoleChefEquipe, domain.StaffRoleGestionnaireSenior))
	virements.Post("", cfg.Virements.Generate)
	virements.Get("", cfg.Virements.List)
	virements.Get("/:id", cfg.Virements.Get)
	virements.Post("/:id/execute", cfg.Virements.ConfirmExecution)
}
