package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/yashitanamdeo/janmat-sub001/internal/api/http/handlers"
	"github.com/yashitanamdeo/janmat-sub001/internal/auth"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Complaints     *handlers.ComplaintsHandler
	Admin          *handlers.AdminHandler
	QuickActions   *handlers.QuickActionsHandler
	Notifications  *handlers.NotificationsHandler
	Feedback       *handlers.FeedbackHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	complaints := app.Group("/complaints", cfg.AuthMiddleware.Handle)
	complaints.Post("/", auth.RequireRole(domain.RoleCitizen), cfg.Complaints.Create)
	complaints.Get("/", cfg.Complaints.List)
	complaints.Get("/:id", cfg.Complaints.Get)
	complaints.Patch("/:id/status", auth.RequireRole(domain.RoleOfficer, domain.RoleAdmin), cfg.Complaints.UpdateStatus)
	complaints.Post("/:id/feedback", auth.RequireRole(domain.RoleCitizen), cfg.Feedback.Submit)
	complaints.Put("/:id/feedback", auth.RequireRole(domain.RoleCitizen), cfg.Feedback.Update)
	complaints.Get("/:id/feedback", cfg.Feedback.Get)

	feedback := app.Group("/feedback", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleOfficer, domain.RoleAdmin))
	feedback.Get("/", cfg.Feedback.List)
	feedback.Get("/stats", cfg.Feedback.Stats)

	notifications := app.Group("/notifications", cfg.AuthMiddleware.Handle)
	notifications.Get("/", cfg.Notifications.List)
	notifications.Patch("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/stats", cfg.Admin.Stats)
	admin.Get("/officers", cfg.Admin.ListOfficers)
	admin.Post("/officers", cfg.Admin.CreateOfficer)
	admin.Put("/officers/:id", cfg.Admin.UpdateOfficer)
	admin.Patch("/officers/:id/department", cfg.Admin.SetOfficerDepartment)
	admin.Post("/complaints/:id/assign", cfg.Admin.AssignComplaint)
	admin.Patch("/complaints/:id/department", cfg.Admin.UpdateComplaintDepartment)
	admin.Get("/departments", cfg.Admin.ListDepartments)
	admin.Post("/departments", cfg.Admin.CreateDepartment)

	quick := admin.Group("/quick-actions")
	quick.Post("/assign-urgent", cfg.QuickActions.AssignUrgent)
	quick.Post("/balance-workload", cfg.QuickActions.BalanceWorkload)
	quick.Post("/send-reminders", cfg.QuickActions.SendReminders)
	quick.Post("/escalate-overdue", cfg.QuickActions.EscalateOverdue)
	quick.Post("/archive-resolved", cfg.QuickActions.ArchiveResolved)
}
