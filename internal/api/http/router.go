package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report-service/internal/api/http/handlers"
	"github.com/spec-kit/civic-report-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Reports        *handlers.ReportsHandler
	Webhooks       *handlers.WebhooksHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/issues", cfg.Reports.SubmitIssue)
	app.Post("/webhooks/sms/telerivet", cfg.Webhooks.Telerivet)
	app.Post("/webhooks/sms/gateway", cfg.Webhooks.Gateway)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	app.Get("/tickets/:ticket_id", cfg.Tickets.GetTicket)
	app.Get("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Tickets.ListTickets)
	app.Patch("/tickets/:ticket_id/status", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Tickets.UpdateStatus)
}
