package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/yashitanamdeo/janmat-sub001/internal/api/dto"
	"github.com/yashitanamdeo/janmat-sub001/internal/service"
)

// NotificationsHandler serves the caller's in-app inbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "pageSize", 50)
	items, err := h.notifications.List(c.UserContext(), user, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	resp := make([]dto.NotificationResponse, 0, len(items))
	for i := range items {
		resp = append(resp, notificationResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// MarkRead PATCH /notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.UserContext(), user, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// MarkAllRead PATCH /notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	updated, err := h.notifications.MarkAllRead(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": updated}})
}
