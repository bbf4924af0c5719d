package domain

import "time"

// Role enumerates the kinds of accounts on the platform.
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleOfficer Role = "OFFICER"
	RoleAdmin   Role = "ADMIN"
)

// User is a citizen, officer or administrator account.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	DepartmentID *string
	Designation  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOfficer reports whether the user can be assigned complaints.
func (u *User) IsOfficer() bool {
	return u != nil && u.Role == RoleOfficer
}
