package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Staff          *handlers.StaffHandler
	Tickets        *handlers.TicketsHandler
	StaffTickets   *handlers.StaffTicketsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/staff/login", cfg.Staff.Login)
	authGroup.Post("/password/reset/request", cfg.Staff.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Staff.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Staff.ChangePassword)

	// end-user surface
	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireUser())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/close", cfg.Tickets.CloseTicket)

	// staff surface
	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaffRole())
	staff.Get("/tickets", cfg.StaffTickets.ListTickets)
	staff.Get("/tickets/:id", cfg.StaffTickets.GetTicket)
	staff.Get("/tickets/:id/history", cfg.StaffTickets.GetHistory)
	staff.Post("/tickets/:id/comments", cfg.StaffTickets.AddComment)
	staff.Patch("/tickets/:id/status", cfg.StaffTickets.UpdateStatus)
	staff.Patch("/tickets/:id/priority", cfg.StaffTickets.UpdatePriority)
	staff.Patch("/tickets/:id/category", cfg.StaffTickets.UpdateCategory)
	staff.Post("/tickets/:id/assign/self", cfg.StaffTickets.SelfAssign)
	staff.Post("/tickets/:id/assign/auto", cfg.StaffTickets.AutoAssign)
	staff.Post("/tickets/:id/assign", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.StaffTickets.Assign)
	staff.Delete("/tickets/:id/assign", auth.RequireStaffRole(domain.StaffRoleAdmin), cfg.StaffTickets.Unassign)
	staff.Get("/dashboard", cfg.Admin.Dashboard)
	staff.Get("/categories", cfg.Admin.ListCategories)
	staff.Get("/priorities", cfg.Admin.ListPriorities)

	// admin surface
	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireStaffRole(domain.StaffRoleAdmin))
	admin.Post("/categories", cfg.Admin.CreateCategory)
	admin.Patch("/categories/:id", cfg.Admin.UpdateCategory)
	admin.Post("/categories/:id/archive", cfg.Admin.ArchiveCategory)
	admin.Post("/categories/:id/restore", cfg.Admin.RestoreCategory)
	admin.Patch("/priorities/:id", cfg.Admin.UpdatePriorityAppearance)
	admin.Put("/priorities/:id/sla-target", cfg.Admin.UpsertSlaTarget)
	admin.Get("/settings", cfg.Admin.GetSettings)
	admin.Patch("/settings", cfg.Admin.UpdateSettings)
	admin.Post("/staff", cfg.Admin.CreateStaff)
	admin.Get("/staff", cfg.Admin.ListStaff)
	admin.Patch("/staff/:id/active", cfg.Admin.SetStaffActive)
	admin.Get("/activity", cfg.Admin.ListActivity)
}
