// Package service implements the complaint workflows behind the HTTP handlers.
package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/events"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func userActor(user *domain.User) events.Actor {
	if user == nil {
		return events.SystemActor
	}
	id := user.ID
	return events.Actor{UserID: &id, Role: user.Role, Label: user.Name}
}

// notFound converts pgx.ErrNoRows into a typed NOT_FOUND error for resource.
func notFound(err error, resource, key, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, map[string]any{key: id})
	}
	return apperrors.MapError(err)
}

func nopLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
