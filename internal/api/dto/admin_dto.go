package dto

// AssignComplaintRequest payload.
type AssignComplaintRequest struct {
	OfficerID string `json:"officerId"`
}

// OfficerDepartmentRequest payload; a null departmentId detaches the officer.
type OfficerDepartmentRequest struct {
	DepartmentID *string `json:"departmentId"`
}

// OfficerRequest payload for creating and updating officers. Password is ignored on update.
type OfficerRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Password     string  `json:"password"`
	DepartmentID *string `json:"departmentId"`
	Designation  string  `json:"designation"`
}

// ComplaintDepartmentRequest payload. Omitting officerId keeps the assignee; an empty
// officerId unassigns.
type ComplaintDepartmentRequest struct {
	DepartmentID *string `json:"departmentId"`
	OfficerID    *string `json:"officerId"`
}

// CreateDepartmentRequest payload.
type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DepartmentResponse model.
type DepartmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

// OfficerResponse is an officer with workload counters.
type OfficerResponse struct {
	UserResponse
	AssignedComplaints int `json:"assignedComplaints"`
	OpenComplaints     int `json:"openComplaints"`
	ResolvedComplaints int `json:"resolvedComplaints"`
}

// StatsResponse is the admin dashboard payload.
type StatsResponse struct {
	TotalComplaints      int `json:"totalComplaints"`
	PendingComplaints    int `json:"pendingComplaints"`
	InProgressComplaints int `json:"inProgressComplaints"`
	ResolvedComplaints   int `json:"resolvedComplaints"`
	RejectedComplaints   int `json:"rejectedComplaints"`
	TotalUsers           int `json:"totalUsers"`
	TotalOfficers        int `json:"totalOfficers"`
}
