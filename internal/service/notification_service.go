package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/yashitanamdeo/janmat-sub001/internal/config"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/events"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

// NotificationService serves the in-app inbox and relays domain events to
// outbound channels.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        nopLogger(logger),
		cfg:           cfg,
	}
}

// List returns the caller's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, user *domain.User, limit, offset int) ([]domain.Notification, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	items, err := n.notifications.ListByUser(ctx, user.ID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// MarkRead flags one of the caller's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, user *domain.User, id string) error {
	if user == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := n.notifications.MarkRead(ctx, id, user.ID); err != nil {
		return notFound(err, "notification", "notification_id", id)
	}
	return nil
}

// MarkAllRead flags every unread notification of the caller and returns how many changed.
func (n *NotificationService) MarkAllRead(ctx context.Context, user *domain.User) (int64, error) {
	if user == nil {
		return 0, apperrors.NewUnauthorized("authentication required")
	}
	updated, err := n.notifications.MarkAllRead(ctx, user.ID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return updated, nil
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventComplaintCreated, n.handleComplaintCreated)
	n.dispatcher.Subscribe(events.EventComplaintStatusChanged, n.handleComplaintStatusChanged)
	n.dispatcher.Subscribe(events.EventComplaintAssigned, n.handleComplaintAssigned)
	n.dispatcher.Subscribe(events.EventComplaintEscalated, n.handleComplaintEscalated)
	n.dispatcher.Subscribe(events.EventComplaintArchived, n.handleComplaintArchived)
	n.dispatcher.Subscribe(events.EventReminderSent, n.handleReminderSent)
}

func (n *NotificationService) handleComplaintCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintCreated", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleComplaintStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintStatusChanged", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleComplaintAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintAssigned", zap.String("complaint_id", event.ComplaintID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleComplaintEscalated(ctx context.Context, event events.Event) error {
	n.logger.Info("ComplaintEscalated", zap.String("complaint_id", event.ComplaintID))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleComplaintArchived(_ context.Context, event events.Event) error {
	n.logger.Info("ComplaintArchived", zap.String("complaint_id", event.ComplaintID))
	return nil
}

func (n *NotificationService) handleReminderSent(ctx context.Context, event events.Event) error {
	n.logger.Info("ReminderSent", zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("complaint_id", event.ComplaintID),
		zap.String("event_type", string(event.Type)))
}
