package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "PENDING"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
	ComplaintStatusRejected   ComplaintStatus = "REJECTED"
)

// OpenStatuses are the statuses that count towards an officer's workload.
var OpenStatuses = []ComplaintStatus{ComplaintStatusPending, ComplaintStatusInProgress}

// IsOpen reports whether the status is PENDING or IN_PROGRESS.
func (s ComplaintStatus) IsOpen() bool {
	return s == ComplaintStatusPending || s == ComplaintStatusInProgress
}

// Valid reports whether s is a known status.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case ComplaintStatusPending, ComplaintStatusInProgress, ComplaintStatusResolved, ComplaintStatusRejected:
		return true
	}
	return false
}

// Urgency enumerates complaint urgency levels.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// Rank orders urgencies so that HIGH > MEDIUM > LOW.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	}
	return 0
}

// Valid reports whether u is a known urgency.
func (u Urgency) Valid() bool {
	return u.Rank() > 0
}

// Complaint is the aggregate for a citizen-filed issue.
type Complaint struct {
	ID           string
	UserID       string
	Title        string
	Description  string
	Location     string
	Urgency      Urgency
	Status       ComplaintStatus
	DepartmentID *string
	AssignedTo   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
	ArchivedAt   *time.Time
}

// IsAssigned reports whether an officer owns the complaint.
func (c *Complaint) IsAssigned() bool {
	return c.AssignedTo != nil && *c.AssignedTo != ""
}
