package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/partyplanning/console/internal/api/http/handlers"
	"github.com/partyplanning/console/internal/gate"
	"github.com/partyplanning/console/internal/observability"
	"github.com/partyplanning/console/internal/views"
	apperrors "github.com/partyplanning/console/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Views    *handlers.ViewsHandler
	Sessions gate.SnapshotSource
	Metrics  *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Get("/session", cfg.Auth.Session)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/clear-error", cfg.Auth.ClearError)

	for _, view := range views.Catalog() {
		app.Get(view.Path, gate.Middleware(cfg.Sessions, cfg.Metrics, view.Roles), cfg.Views.Render(view))
	}

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("page " + c.Path())
	})
}
