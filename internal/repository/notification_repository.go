package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationRepository struct {
	db DBTX
}

// NewNotificationRepository builds repository.
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, title, message, type)
        VALUES ($1,$2,$3,$4)
        RETURNING id, read, created_at`
	return r.db.QueryRow(ctx, query,
		n.UserID,
		n.Title,
		n.Message,
		n.Type,
	).Scan(&n.ID, &n.Read, &n.CreatedAt)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, user_id, title, message, type, read, created_at
        FROM notifications WHERE user_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE notifications SET read=TRUE WHERE user_id=$1 AND read=FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
