package domain

import "time"

// SystemAuthor labels timeline entries written by automated actions.
const SystemAuthor = "System"

// TimelineEntry is an immutable audit trail row for a complaint.
type TimelineEntry struct {
	ID          string
	ComplaintID string
	Status      ComplaintStatus
	Comment     string
	UpdatedBy   string
	CreatedAt   time.Time
}
