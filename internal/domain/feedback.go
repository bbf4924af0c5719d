package domain

import "time"

// Rating bounds for complaint feedback.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a citizen's rating of how a resolved complaint was handled.
// A complaint carries at most one feedback.
type Feedback struct {
	ID          string
	ComplaintID string
	UserID      string
	Rating      int
	Comment     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FeedbackEntry is a feedback joined with its author and complaint for listings.
type FeedbackEntry struct {
	Feedback
	AuthorName      string
	ComplaintTitle  string
	ComplaintStatus ComplaintStatus
	AssignedTo      *string
	DepartmentID    *string
}
