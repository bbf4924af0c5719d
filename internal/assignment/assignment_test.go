package assignment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashitanamdeo/janmat-sub001/internal/assignment"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func officer(id, dept string) domain.User {
	u := domain.User{ID: id, Name: "Officer " + id, Role: domain.RoleOfficer}
	if dept != "" {
		u.DepartmentID = strPtr(dept)
	}
	return u
}

func complaint(id string, urgency domain.Urgency, status domain.ComplaintStatus) domain.Complaint {
	return domain.Complaint{
		ID:        id,
		Title:     "complaint " + id,
		Urgency:   urgency,
		Status:    status,
		CreatedAt: now.Add(-time.Hour),
	}
}

func ids(complaints []domain.Complaint) []string {
	out := make([]string, 0, len(complaints))
	for _, c := range complaints {
		out = append(out, c.ID)
	}
	return out
}

func criteria(t *testing.T, mode assignment.Mode) assignment.Criteria {
	t.Helper()
	cr, ok := assignment.CriteriaFor(mode, now, assignment.DefaultThresholds())
	require.True(t, ok)
	return cr
}

func TestCriteriaFor_UnknownMode(t *testing.T) {
	_, ok := assignment.CriteriaFor("purge", now, assignment.DefaultThresholds())
	assert.False(t, ok)
}

func TestSelectUrgent(t *testing.T) {
	// Arrange
	assigned := complaint("c4", domain.UrgencyHigh, domain.ComplaintStatusPending)
	assigned.AssignedTo = strPtr("o1")
	complaints := []domain.Complaint{
		complaint("c1", domain.UrgencyHigh, domain.ComplaintStatusPending),
		complaint("c2", domain.UrgencyMedium, domain.ComplaintStatusPending),
		complaint("c3", domain.UrgencyHigh, domain.ComplaintStatusResolved),
		assigned,
		complaint("c5", domain.UrgencyHigh, domain.ComplaintStatusInProgress),
	}

	// Act
	selected := assignment.Select(criteria(t, assignment.ModeUrgent), complaints)

	// Assert
	assert.Equal(t, []string{"c1", "c5"}, ids(selected))
}

func TestSelectBalance_OrdersByUrgencyStable(t *testing.T) {
	complaints := []domain.Complaint{
		complaint("low1", domain.UrgencyLow, domain.ComplaintStatusPending),
		complaint("med1", domain.UrgencyMedium, domain.ComplaintStatusPending),
		complaint("high1", domain.UrgencyHigh, domain.ComplaintStatusPending),
		complaint("low2", domain.UrgencyLow, domain.ComplaintStatusInProgress),
		complaint("high2", domain.UrgencyHigh, domain.ComplaintStatusPending),
		complaint("rejected", domain.UrgencyHigh, domain.ComplaintStatusRejected),
	}

	selected := assignment.Select(criteria(t, assignment.ModeBalance), complaints)

	assert.Equal(t, []string{"high1", "high2", "med1", "low1", "low2"}, ids(selected))
}

func TestSelectEscalate_Threshold(t *testing.T) {
	overdue := complaint("overdue", domain.UrgencyMedium, domain.ComplaintStatusPending)
	overdue.CreatedAt = now.Add(-(72*time.Hour + time.Second))
	recent := complaint("recent", domain.UrgencyMedium, domain.ComplaintStatusPending)
	recent.CreatedAt = now.Add(-48 * time.Hour)
	exact := complaint("exact", domain.UrgencyLow, domain.ComplaintStatusInProgress)
	exact.CreatedAt = now.Add(-72 * time.Hour)
	alreadyHigh := complaint("high", domain.UrgencyHigh, domain.ComplaintStatusPending)
	alreadyHigh.CreatedAt = now.Add(-10 * 24 * time.Hour)
	closed := complaint("closed", domain.UrgencyLow, domain.ComplaintStatusResolved)
	closed.CreatedAt = now.Add(-10 * 24 * time.Hour)

	selected := assignment.Select(criteria(t, assignment.ModeEscalate),
		[]domain.Complaint{overdue, recent, exact, alreadyHigh, closed})

	assert.Equal(t, []string{"overdue"}, ids(selected))
}

func TestSelectArchive_StrictBoundary(t *testing.T) {
	exactly := complaint("exactly30", domain.UrgencyLow, domain.ComplaintStatusResolved)
	exactly.ResolvedAt = timePtr(now.Add(-30 * 24 * time.Hour))
	older := complaint("older31", domain.UrgencyLow, domain.ComplaintStatusResolved)
	older.ResolvedAt = timePtr(now.Add(-31 * 24 * time.Hour))
	archived := complaint("archived", domain.UrgencyLow, domain.ComplaintStatusResolved)
	archived.ResolvedAt = timePtr(now.Add(-60 * 24 * time.Hour))
	archived.ArchivedAt = timePtr(now.Add(-24 * time.Hour))
	rejected := complaint("rejected", domain.UrgencyLow, domain.ComplaintStatusRejected)
	rejected.ResolvedAt = timePtr(now.Add(-60 * 24 * time.Hour))

	selected := assignment.Select(criteria(t, assignment.ModeArchive),
		[]domain.Complaint{exactly, older, archived, rejected})

	assert.Equal(t, []string{"older31"}, ids(selected))
}

func TestCriteriaFor_CustomThresholds(t *testing.T) {
	cr, ok := assignment.CriteriaFor(assignment.ModeEscalate, now, assignment.Thresholds{EscalateAfter: time.Hour})
	require.True(t, ok)

	c := complaint("c", domain.UrgencyLow, domain.ComplaintStatusPending)
	c.CreatedAt = now.Add(-2 * time.Hour)

	assert.True(t, cr.Matches(&c))
	require.NotNil(t, cr.CreatedBefore)
	assert.Equal(t, now.Add(-time.Hour), *cr.CreatedBefore)
}

func TestNewWorkloadIndex_SeedsEveryOfficer(t *testing.T) {
	officers := []domain.User{officer("o1", "d1"), officer("o2", "d1"), officer("o3", "")}

	idx := assignment.NewWorkloadIndex(officers, map[string]int{"o1": 2, "ghost": 7})

	assert.Equal(t, assignment.WorkloadIndex{"o1": 2, "o2": 0, "o3": 0}, idx)
}

func TestPick_RespectsDepartment(t *testing.T) {
	officers := []domain.User{officer("o1", "roads"), officer("o2", "water"), officer("o3", "")}
	idx := assignment.NewWorkloadIndex(officers, map[string]int{"o2": 5})
	c := complaint("c", domain.UrgencyHigh, domain.ComplaintStatusPending)
	c.DepartmentID = strPtr("water")

	picked, ok := assignment.Pick(&c, officers, idx)

	require.True(t, ok)
	assert.Equal(t, "o2", picked.ID, "only the water officer is eligible despite higher load")
}

func TestPick_NoEligibleOfficer(t *testing.T) {
	officers := []domain.User{officer("o1", "roads")}
	c := complaint("c", domain.UrgencyHigh, domain.ComplaintStatusPending)
	c.DepartmentID = strPtr("parks")

	picked, ok := assignment.Pick(&c, officers, assignment.NewWorkloadIndex(officers, nil))

	assert.False(t, ok)
	assert.Nil(t, picked)
}

func TestPick_AnyOfficerWhenNoDepartment(t *testing.T) {
	officers := []domain.User{officer("o1", "roads"), officer("o2", "")}
	idx := assignment.NewWorkloadIndex(officers, map[string]int{"o1": 3, "o2": 1})
	c := complaint("c", domain.UrgencyLow, domain.ComplaintStatusPending)

	picked, ok := assignment.Pick(&c, officers, idx)

	require.True(t, ok)
	assert.Equal(t, "o2", picked.ID)
}

func TestPick_TieBreaksOnLowestID(t *testing.T) {
	officers := []domain.User{officer("o9", "d"), officer("o3", "d"), officer("o5", "d")}
	idx := assignment.NewWorkloadIndex(officers, nil)
	c := complaint("c", domain.UrgencyLow, domain.ComplaintStatusPending)

	picked, ok := assignment.Pick(&c, officers, idx)

	require.True(t, ok)
	assert.Equal(t, "o3", picked.ID)
}

func TestPick_IncrementSpreadsLoad(t *testing.T) {
	// Arrange
	officers := []domain.User{officer("A", "d"), officer("B", "d")}
	idx := assignment.NewWorkloadIndex(officers, nil)
	c := complaint("c1", domain.UrgencyLow, domain.ComplaintStatusPending)
	c.DepartmentID = strPtr("d")

	// Act
	first, ok := assignment.Pick(&c, officers, idx)
	require.True(t, ok)
	idx.Increment(first.ID)
	second, ok := assignment.Pick(&c, officers, idx)
	require.True(t, ok)

	// Assert
	assert.Equal(t, "A", first.ID)
	assert.Equal(t, "B", second.ID)
}
