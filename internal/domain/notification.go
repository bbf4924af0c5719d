package domain

import "time"

// NotificationType tags the severity or purpose of a notification.
type NotificationType string

const (
	NotificationInfo       NotificationType = "INFO"
	NotificationWarning    NotificationType = "WARNING"
	NotificationSuccess    NotificationType = "SUCCESS"
	NotificationError      NotificationType = "ERROR"
	NotificationAssignment NotificationType = "ASSIGNMENT"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      NotificationType
	Read      bool
	CreatedAt time.Time
}
