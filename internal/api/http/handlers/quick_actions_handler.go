package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/yashitanamdeo/janmat-sub001/internal/service"
)

// QuickActionsHandler exposes the admin batch actions.
type QuickActionsHandler struct {
	actions *service.QuickActionService
}

// NewQuickActionsHandler constructs handler.
func NewQuickActionsHandler(actions *service.QuickActionService) *QuickActionsHandler {
	return &QuickActionsHandler{actions: actions}
}

// AssignUrgent POST /admin/quick-actions/assign-urgent.
func (h *QuickActionsHandler) AssignUrgent(c *fiber.Ctx) error {
	return h.respond(c, h.actions.AssignUrgent, "assignedCount")
}

// BalanceWorkload POST /admin/quick-actions/balance-workload.
func (h *QuickActionsHandler) BalanceWorkload(c *fiber.Ctx) error {
	return h.respond(c, h.actions.BalanceWorkload, "balancedCount")
}

// SendReminders POST /admin/quick-actions/send-reminders.
func (h *QuickActionsHandler) SendReminders(c *fiber.Ctx) error {
	return h.respond(c, h.actions.SendReminders, "remindersSent")
}

// EscalateOverdue POST /admin/quick-actions/escalate-overdue.
func (h *QuickActionsHandler) EscalateOverdue(c *fiber.Ctx) error {
	return h.respond(c, h.actions.EscalateOverdue, "escalatedCount")
}

// ArchiveResolved POST /admin/quick-actions/archive-resolved.
func (h *QuickActionsHandler) ArchiveResolved(c *fiber.Ctx) error {
	return h.respond(c, h.actions.ArchiveResolved, "archivedCount")
}

func (h *QuickActionsHandler) respond(c *fiber.Ctx, action func(context.Context) (*service.BatchResult, error), countField string) error {
	res, err := action(c.UserContext())
	if err != nil {
		return err
	}
	body := fiber.Map{
		"success":      res.Success(),
		"message":      res.Message,
		countField:     res.Succeeded,
		"skippedCount": res.Skipped,
		"failedCount":  res.Failed,
	}
	if res.Note != "" {
		body["note"] = res.Note
	}
	if res.Interrupted {
		body["interrupted"] = true
	}
	return c.JSON(body)
}
