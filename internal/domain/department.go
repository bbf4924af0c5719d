package domain

import "time"

// Department represents a municipal unit complaints are routed to.
type Department struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
