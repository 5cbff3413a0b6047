package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/embed-service/internal/api/http/handlers"
	"github.com/spec-kit/embed-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Projects       *handlers.ProjectsHandler
	Collaborators  *handlers.CollaboratorsHandler
	Embed          *handlers.EmbedHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The embed validation endpoint is
// deliberately outside the authenticated group: anonymous embedding
// viewers call it.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)

	app.Get("/projects/:id/embed", cfg.Embed.ValidateAccess)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/projects", cfg.Projects.CreateProject)
	protected.Get("/projects", cfg.Projects.ListProjects)
	protected.Get("/projects/:id", cfg.Projects.GetProject)
	protected.Patch("/projects/:id", cfg.Projects.UpdateProject)
	protected.Delete("/projects/:id", cfg.Projects.DeleteProject)
	protected.Get("/projects/:id/activity", cfg.Projects.ListActivity)

	protected.Post("/projects/:id/collaborators", cfg.Collaborators.Invite)
	protected.Get("/projects/:id/collaborators", cfg.Collaborators.List)
	protected.Delete("/projects/:id/collaborators/:userId", cfg.Collaborators.Remove)
	protected.Post("/invitations/:id/respond", cfg.Collaborators.Respond)

	protected.Post("/projects/:id/embed", cfg.Embed.IssueToken)
}
