// Package worker hosts the background consumers of domain events.
package worker

import (
	"go.uber.org/zap"

	"github.com/yashitanamdeo/janmat-sub001/internal/service"
)

// StartNotificationWorker subscribes the notification relay to complaint events.
// Delivery runs inline with Publish on the in-memory dispatcher.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
	if logger != nil {
		logger.Info("notification worker subscribed")
	}
}
