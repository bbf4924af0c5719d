package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yashitanamdeo/janmat-sub001/internal/config"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/events"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository/memory"
	"github.com/yashitanamdeo/janmat-sub001/internal/service"
)

func TestNotificationInbox(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := store.Repos().Notifications
	svc := service.NewNotificationService(repo, nil, nil, config.NotificationConfig{})
	owner := &domain.User{ID: "u1"}
	stranger := &domain.User{ID: "u2"}
	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Notification{UserID: owner.ID, Title: "t", Message: "m", Type: domain.NotificationInfo}))
	}

	items, err := svc.List(ctx, owner, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	err = svc.MarkRead(ctx, stranger, items[0].ID)
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
	require.NoError(t, svc.MarkRead(ctx, owner, items[0].ID))

	updated, err := svc.MarkAllRead(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)
}

func TestNotificationService_RegistersHandlers(t *testing.T) {
	dispatcher := new(MockDispatcher)
	dispatcher.On("Subscribe", mock.Anything, mock.Anything).Return()
	svc := service.NewNotificationService(nil, dispatcher, nil, config.NotificationConfig{WebhookURL: "http://hooks.local"})

	svc.RegisterHandlers()

	for _, et := range []events.EventType{
		events.EventComplaintCreated,
		events.EventComplaintStatusChanged,
		events.EventComplaintAssigned,
		events.EventComplaintEscalated,
		events.EventComplaintArchived,
		events.EventReminderSent,
	} {
		dispatcher.AssertCalled(t, "Subscribe", et, mock.Anything)
	}
}
