// Package assignment holds the complaint selection and least-busy officer
// selection used by the admin quick actions. Everything here is free of I/O:
// callers load complaints and officers, and persist the outcome.
package assignment

import (
	"sort"
	"time"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// Mode identifies which quick action a candidate list is built for.
type Mode string

const (
	ModeUrgent   Mode = "urgent"
	ModeBalance  Mode = "balance"
	ModeEscalate Mode = "escalate"
	ModeArchive  Mode = "archive"
)

const (
	DefaultEscalateAfter = 72 * time.Hour
	DefaultArchiveAfter  = 30 * 24 * time.Hour
)

// Thresholds configures the age cut-offs of the escalate and archive modes.
type Thresholds struct {
	EscalateAfter time.Duration
	ArchiveAfter  time.Duration
}

// DefaultThresholds returns 3 days for escalation and 30 days for archival.
func DefaultThresholds() Thresholds {
	return Thresholds{EscalateAfter: DefaultEscalateAfter, ArchiveAfter: DefaultArchiveAfter}
}

// Criteria is the predicate a mode applies to the complaint set.
// Time bounds are strict: a complaint matches only if its timestamp is before the bound.
type Criteria struct {
	Mode            Mode
	Statuses        []domain.ComplaintStatus
	Urgency         *domain.Urgency
	ExcludeUrgency  *domain.Urgency
	Unassigned      bool
	CreatedBefore   *time.Time
	ResolvedBefore  *time.Time
	ExcludeArchived bool
	OrderByUrgency  bool
}

// CriteriaFor builds the selection criteria for mode relative to now.
func CriteriaFor(mode Mode, now time.Time, th Thresholds) (Criteria, bool) {
	if th.EscalateAfter <= 0 {
		th.EscalateAfter = DefaultEscalateAfter
	}
	if th.ArchiveAfter <= 0 {
		th.ArchiveAfter = DefaultArchiveAfter
	}
	high := domain.UrgencyHigh
	switch mode {
	case ModeUrgent:
		return Criteria{
			Mode:       mode,
			Statuses:   domain.OpenStatuses,
			Urgency:    &high,
			Unassigned: true,
		}, true
	case ModeBalance:
		return Criteria{
			Mode:           mode,
			Statuses:       domain.OpenStatuses,
			Unassigned:     true,
			OrderByUrgency: true,
		}, true
	case ModeEscalate:
		cutoff := now.Add(-th.EscalateAfter)
		return Criteria{
			Mode:           mode,
			Statuses:       domain.OpenStatuses,
			ExcludeUrgency: &high,
			CreatedBefore:  &cutoff,
		}, true
	case ModeArchive:
		cutoff := now.Add(-th.ArchiveAfter)
		return Criteria{
			Mode:            mode,
			Statuses:        []domain.ComplaintStatus{domain.ComplaintStatusResolved},
			ResolvedBefore:  &cutoff,
			ExcludeArchived: true,
		}, true
	}
	return Criteria{}, false
}

// Matches reports whether c satisfies the criteria.
func (cr Criteria) Matches(c *domain.Complaint) bool {
	if c == nil {
		return false
	}
	if len(cr.Statuses) > 0 && !containsStatus(cr.Statuses, c.Status) {
		return false
	}
	if cr.Urgency != nil && c.Urgency != *cr.Urgency {
		return false
	}
	if cr.ExcludeUrgency != nil && c.Urgency == *cr.ExcludeUrgency {
		return false
	}
	if cr.Unassigned && c.IsAssigned() {
		return false
	}
	if cr.CreatedBefore != nil && !c.CreatedAt.Before(*cr.CreatedBefore) {
		return false
	}
	if cr.ResolvedBefore != nil && (c.ResolvedAt == nil || !c.ResolvedAt.Before(*cr.ResolvedBefore)) {
		return false
	}
	if cr.ExcludeArchived && c.ArchivedAt != nil {
		return false
	}
	return true
}

// Select filters complaints by the criteria and applies its ordering.
// Input order is treated as arrival order unless OrderByUrgency is set, in which
// case HIGH sorts before MEDIUM before LOW and arrival order breaks ties.
func Select(cr Criteria, complaints []domain.Complaint) []domain.Complaint {
	out := make([]domain.Complaint, 0, len(complaints))
	for i := range complaints {
		if cr.Matches(&complaints[i]) {
			out = append(out, complaints[i])
		}
	}
	if cr.OrderByUrgency {
		SortByUrgency(out)
	}
	return out
}

// SortByUrgency stable-sorts complaints with the most urgent first.
func SortByUrgency(complaints []domain.Complaint) {
	sort.SliceStable(complaints, func(i, j int) bool {
		return complaints[i].Urgency.Rank() > complaints[j].Urgency.Rank()
	})
}

func containsStatus(statuses []domain.ComplaintStatus, s domain.ComplaintStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}
