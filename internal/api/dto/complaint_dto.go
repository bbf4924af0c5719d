package dto

import (
	"time"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Location     string         `json:"location"`
	Urgency      domain.Urgency `json:"urgency"`
	DepartmentID *string        `json:"departmentId"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status  domain.ComplaintStatus `json:"status"`
	Comment string                 `json:"comment"`
}

// ComplaintResponse represents a complaint.
type ComplaintResponse struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"userId"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Location     string                 `json:"location,omitempty"`
	Urgency      domain.Urgency         `json:"urgency"`
	Status       domain.ComplaintStatus `json:"status"`
	DepartmentID *string                `json:"departmentId"`
	AssignedTo   *string                `json:"assignedTo"`
	CreatedAt    time.Time              `json:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt"`
	ResolvedAt   *time.Time             `json:"resolvedAt"`
	ArchivedAt   *time.Time             `json:"archivedAt,omitempty"`
}

// ComplaintDetailResponse adds the timeline.
type ComplaintDetailResponse struct {
	ComplaintResponse
	Timeline []TimelineEntryResponse `json:"timeline"`
}

// TimelineEntryResponse represents one audit row.
type TimelineEntryResponse struct {
	ID        string                 `json:"id"`
	Status    domain.ComplaintStatus `json:"status"`
	Comment   string                 `json:"comment"`
	UpdatedBy string                 `json:"updatedBy"`
	CreatedAt time.Time              `json:"createdAt"`
}
