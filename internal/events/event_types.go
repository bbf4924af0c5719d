package events

import (
	"time"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintAssigned      EventType = "complaint_assigned"
	EventComplaintEscalated     EventType = "complaint_escalated"
	EventComplaintArchived      EventType = "complaint_archived"
	EventReminderSent           EventType = "reminder_sent"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID *string     `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
	Label  string      `json:"label"`
}

// SystemActor marks events raised by automated actions.
var SystemActor = Actor{Label: domain.SystemAuthor}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id,omitempty"`
	Actor       Actor       `json:"actor"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	CitizenID    string         `json:"citizen_id"`
	DepartmentID *string        `json:"department_id,omitempty"`
	Urgency      domain.Urgency `json:"urgency"`
	Title        string         `json:"title"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	CitizenID string                 `json:"citizen_id"`
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
	Comment   string                 `json:"comment,omitempty"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	OfficerID string `json:"officer_id"`
	Reason    string `json:"reason"`
	Title     string `json:"title"`
}

// ComplaintEscalatedPayload payload.
type ComplaintEscalatedPayload struct {
	OldUrgency domain.Urgency `json:"old_urgency"`
}

// ComplaintArchivedPayload payload.
type ComplaintArchivedPayload struct {
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// ReminderSentPayload payload.
type ReminderSentPayload struct {
	OfficerID    string `json:"officer_id"`
	PendingCount int    `json:"pending_count"`
}
