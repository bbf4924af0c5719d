package assignment

import (
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// Eligible reports whether officer may take the complaint: any officer qualifies
// for a complaint without department, otherwise departments must match.
func Eligible(c *domain.Complaint, officer *domain.User) bool {
	if c.DepartmentID == nil || *c.DepartmentID == "" {
		return true
	}
	return officer.DepartmentID != nil && *officer.DepartmentID == *c.DepartmentID
}

// Pick returns the eligible officer with the lowest load in idx.
// Equal loads resolve to the lowest officer id so the result does not depend on
// the order officers were loaded in. The second result is false when no officer
// is eligible.
func Pick(c *domain.Complaint, officers []domain.User, idx WorkloadIndex) (*domain.User, bool) {
	var best *domain.User
	bestLoad := 0
	for i := range officers {
		officer := &officers[i]
		if !Eligible(c, officer) {
			continue
		}
		load := idx.Load(officer.ID)
		if best == nil || load < bestLoad || (load == bestLoad && officer.ID < best.ID) {
			best = officer
			bestLoad = load
		}
	}
	return best, best != nil
}
