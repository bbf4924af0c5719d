package dto

import (
	"time"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// NotificationResponse model.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      domain.NotificationType `json:"type"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"createdAt"`
}
