package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashitanamdeo/janmat-sub001/internal/assignment"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/lock"
	"github.com/yashitanamdeo/janmat-sub001/internal/observability"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository/memory"
	"github.com/yashitanamdeo/janmat-sub001/internal/service"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

var now = time.Date(2026, 4, 20, 10, 0, 0, 0, time.UTC)

type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *memory.Store
	locker  *lock.LocalLocker
	metrics *observability.Metrics
	svc     *service.QuickActionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SetClock(func() time.Time { return now })
	locker := lock.NewLocalLocker()
	metrics := observability.NewMetrics()
	svc := service.NewQuickActionService(service.QuickActionDependencies{
		Store:      store,
		Locker:     locker,
		Metrics:    metrics,
		Thresholds: assignment.DefaultThresholds(),
		Clock:      func() time.Time { return now },
	})
	return &fixture{t: t, ctx: context.Background(), store: store, locker: locker, metrics: metrics, svc: svc}
}

func (f *fixture) repos() repository.Repositories {
	return f.store.Repos()
}

func (f *fixture) officer(id, dept string) domain.User {
	f.t.Helper()
	u := &domain.User{ID: id, Name: "Officer " + id, Email: id + "@janmat.local", Role: domain.RoleOfficer}
	if dept != "" {
		d := dept
		u.DepartmentID = &d
	}
	require.NoError(f.t, f.repos().Users.Create(f.ctx, u))
	return *u
}

func (f *fixture) complaint(id string, urgency domain.Urgency, mutate ...func(*domain.Complaint)) {
	f.t.Helper()
	c := &domain.Complaint{
		ID:          id,
		UserID:      "citizen",
		Title:       "Complaint " + id,
		Description: "something is broken",
		Urgency:     urgency,
		Status:      domain.ComplaintStatusPending,
		CreatedAt:   now.Add(-time.Hour),
	}
	for _, m := range mutate {
		m(c)
	}
	require.NoError(f.t, f.repos().Complaints.Create(f.ctx, c))
}

func (f *fixture) get(id string) *domain.Complaint {
	f.t.Helper()
	c, err := f.repos().Complaints.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return c
}

func (f *fixture) timeline(id string) []domain.TimelineEntry {
	f.t.Helper()
	entries, err := f.repos().Timeline.ListByComplaint(f.ctx, id)
	require.NoError(f.t, err)
	return entries
}

func (f *fixture) inbox(userID string) []domain.Notification {
	f.t.Helper()
	items, err := f.repos().Notifications.ListByUser(f.ctx, userID, 100, 0)
	require.NoError(f.t, err)
	return items
}

func inDept(dept string) func(*domain.Complaint) {
	return func(c *domain.Complaint) { c.DepartmentID = &dept }
}

func assignedTo(officerID string, status domain.ComplaintStatus) func(*domain.Complaint) {
	return func(c *domain.Complaint) {
		c.AssignedTo = &officerID
		c.Status = status
	}
}

func createdAgo(d time.Duration) func(*domain.Complaint) {
	return func(c *domain.Complaint) { c.CreatedAt = now.Add(-d) }
}

func resolvedAgo(d time.Duration) func(*domain.Complaint) {
	return func(c *domain.Complaint) {
		c.Status = domain.ComplaintStatusResolved
		at := now.Add(-d)
		c.ResolvedAt = &at
	}
}

func TestAssignUrgent_AssignsAndIsIdempotent(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.officer("o1", "")
	f.complaint("c1", domain.UrgencyHigh)
	f.complaint("c2", domain.UrgencyHigh)
	f.complaint("c3", domain.UrgencyMedium)

	// Act
	first, err := f.svc.AssignUrgent(f.ctx)
	require.NoError(t, err)
	second, err := f.svc.AssignUrgent(f.ctx)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 2, first.Succeeded)
	assert.True(t, first.Success())
	assert.Equal(t, "Successfully auto-assigned 2 urgent complaints", first.Message)
	assert.Equal(t, 0, second.Succeeded)
	assert.Equal(t, "Successfully auto-assigned 0 urgent complaints", second.Message)

	c1 := f.get("c1")
	require.NotNil(t, c1.AssignedTo)
	assert.Equal(t, "o1", *c1.AssignedTo)
	assert.Equal(t, domain.ComplaintStatusInProgress, c1.Status)
	assert.Nil(t, f.get("c3").AssignedTo)

	entries := f.timeline("c1")
	require.Len(t, entries, 1)
	assert.Equal(t, "Auto-assigned to Officer o1 (urgent complaint)", entries[0].Comment)
	assert.Equal(t, domain.SystemAuthor, entries[0].UpdatedBy)
	assert.Equal(t, domain.ComplaintStatusInProgress, entries[0].Status)

	inbox := f.inbox("o1")
	require.Len(t, inbox, 2)
	assert.Equal(t, domain.NotificationWarning, inbox[0].Type)
	assert.Contains(t, []string{"Urgent complaint auto-assigned: Complaint c1", "Urgent complaint auto-assigned: Complaint c2"}, inbox[0].Message)

	assert.Equal(t, observability.BatchTotals{Runs: 2, Succeeded: 2}, f.metrics.Batch(service.ActionAssignUrgent))
}

func TestAssignUrgent_DepartmentEligibility(t *testing.T) {
	f := newFixture(t)
	f.officer("o1", "roads")
	f.officer("o2", "water")
	f.complaint("busy1", domain.UrgencyLow, assignedTo("o2", domain.ComplaintStatusInProgress))
	f.complaint("busy2", domain.UrgencyLow, assignedTo("o2", domain.ComplaintStatusPending))
	f.complaint("leak", domain.UrgencyHigh, inDept("water"))
	f.complaint("park", domain.UrgencyHigh, inDept("parks"))

	res, err := f.svc.AssignUrgent(f.ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, "o2", *f.get("leak").AssignedTo, "only the department officer qualifies")
	assert.Nil(t, f.get("park").AssignedTo)
	assert.Empty(t, f.timeline("park"))
}

func TestAssignUrgent_TakesOfficerDepartmentWhenUnset(t *testing.T) {
	f := newFixture(t)
	f.officer("o1", "roads")
	f.complaint("c1", domain.UrgencyHigh)

	_, err := f.svc.AssignUrgent(f.ctx)

	require.NoError(t, err)
	c := f.get("c1")
	require.NotNil(t, c.DepartmentID)
	assert.Equal(t, "roads", *c.DepartmentID)
}

func TestBalanceWorkload_SpreadsWithinBatch(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.officer("A", "d")
	f.officer("B", "d")
	f.complaint("low", domain.UrgencyLow, inDept("d"), createdAgo(4*time.Hour))
	f.complaint("high", domain.UrgencyHigh, inDept("d"), createdAgo(time.Hour))
	f.complaint("med", domain.UrgencyMedium, inDept("d"), createdAgo(3*time.Hour))
	f.complaint("med2", domain.UrgencyMedium, inDept("d"), createdAgo(2*time.Hour))

	// Act
	res, err := f.svc.BalanceWorkload(f.ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, res.Succeeded)
	assert.Equal(t, "Successfully balanced 4 complaints across officers", res.Message)
	assert.Equal(t, "A", *f.get("high").AssignedTo)
	assert.Equal(t, "B", *f.get("med").AssignedTo)
	assert.Equal(t, "A", *f.get("med2").AssignedTo)
	assert.Equal(t, "B", *f.get("low").AssignedTo)

	counts, err := f.repos().Complaints.CountByAssignee(f.ctx, domain.OpenStatuses)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 2, "B": 2}, counts)

	for _, id := range []string{"low", "high", "med", "med2"} {
		entries := f.timeline(id)
		require.Len(t, entries, 1, "exactly one entry per mutated complaint")
		assert.Contains(t, entries[0].Comment, "(workload balancing)")
	}
	inbox := f.inbox("A")
	require.Len(t, inbox, 2)
	assert.Equal(t, domain.NotificationInfo, inbox[0].Type)
}

func TestBalanceWorkload_AccountsForExistingLoad(t *testing.T) {
	f := newFixture(t)
	f.officer("A", "")
	f.officer("B", "")
	f.complaint("old1", domain.UrgencyLow, assignedTo("A", domain.ComplaintStatusInProgress))
	f.complaint("old2", domain.UrgencyLow, assignedTo("A", domain.ComplaintStatusInProgress))
	f.complaint("done", domain.UrgencyLow, assignedTo("B", domain.ComplaintStatusResolved), resolvedAgo(time.Hour))
	f.complaint("n1", domain.UrgencyLow, createdAgo(2*time.Hour))
	f.complaint("n2", domain.UrgencyLow, createdAgo(time.Hour))

	_, err := f.svc.BalanceWorkload(f.ctx)

	require.NoError(t, err)
	assert.Equal(t, "B", *f.get("n1").AssignedTo)
	assert.Equal(t, "B", *f.get("n2").AssignedTo, "resolved work does not count as load")
}

func TestBalanceWorkload_NoOfficers(t *testing.T) {
	f := newFixture(t)
	f.complaint("c1", domain.UrgencyLow)

	res, err := f.svc.BalanceWorkload(f.ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Succeeded)
	assert.Equal(t, 1, res.Skipped)
	assert.True(t, res.Success())
}

func TestBalanceWorkload_PartialFailureKeepsGoing(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.officer("A", "")
	f.complaint("c1", domain.UrgencyHigh, createdAgo(3*time.Hour))
	f.complaint("c2", domain.UrgencyHigh, createdAgo(2*time.Hour))
	f.complaint("c3", domain.UrgencyHigh, createdAgo(time.Hour))
	f.store.FailWhen(func(op, id string) error {
		if op == "timeline.append" && id == "c2" {
			return errors.New("write timeout")
		}
		return nil
	})

	// Act
	res, err := f.svc.BalanceWorkload(f.ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, res.Success())
	assert.Nil(t, f.get("c2").AssignedTo, "failed item is rolled back")
	assert.Equal(t, domain.ComplaintStatusPending, f.get("c2").Status)
	assert.Equal(t, "A", *f.get("c3").AssignedTo)
	assert.Len(t, f.inbox("A"), 2)
}

func TestBalanceWorkload_ConcurrentChangeIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.officer("A", "")
	f.complaint("c1", domain.UrgencyLow)
	f.complaint("c2", domain.UrgencyLow)
	f.store.FailWhen(func(op, id string) error {
		if op == "complaints.assign" && id == "c1" {
			return repository.ErrNotApplied
		}
		return nil
	})

	res, err := f.svc.BalanceWorkload(f.ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Skipped)
	assert.True(t, res.Success())
	assert.Empty(t, f.timeline("c1"))
}

func TestQuickActions_RejectConcurrentRun(t *testing.T) {
	f := newFixture(t)
	release, err := f.locker.Acquire(f.ctx, "quick-actions", time.Minute)
	require.NoError(t, err)

	_, err = f.svc.EscalateOverdue(f.ctx)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "BATCH_IN_PROGRESS", domainErr.Code)
	assert.Equal(t, http.StatusConflict, domainErr.HTTPStatus)

	release()
	_, err = f.svc.EscalateOverdue(f.ctx)
	assert.NoError(t, err)
}

func TestQuickActions_StopWhenContextEnds(t *testing.T) {
	f := newFixture(t)
	f.officer("A", "")
	f.complaint("c1", domain.UrgencyHigh)
	ctx, cancel := context.WithCancel(f.ctx)
	cancel()

	res, err := f.svc.AssignUrgent(ctx)

	require.NoError(t, err)
	assert.True(t, res.Interrupted)
	assert.Equal(t, 0, res.Succeeded)
	assert.Nil(t, f.get("c1").AssignedTo)
}

func TestSendReminders_CountsOfficersWithOpenWork(t *testing.T) {
	f := newFixture(t)
	f.officer("o1", "")
	f.officer("o2", "")
	f.officer("o3", "")
	f.complaint("a", domain.UrgencyLow, assignedTo("o1", domain.ComplaintStatusInProgress))
	f.complaint("b", domain.UrgencyLow, assignedTo("o1", domain.ComplaintStatusPending))
	f.complaint("c", domain.UrgencyLow, assignedTo("o2", domain.ComplaintStatusRejected))
	f.complaint("d", domain.UrgencyLow, assignedTo("o3", domain.ComplaintStatusInProgress))

	res, err := f.svc.SendReminders(f.ctx)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, "Sent reminders to 2 officers", res.Message)
	inbox := f.inbox("o1")
	require.Len(t, inbox, 1)
	assert.Equal(t, "You have 2 pending complaints. Please review and update their status.", inbox[0].Message)
	assert.Equal(t, domain.NotificationInfo, inbox[0].Type)
	assert.Empty(t, f.inbox("o2"))
	assert.Empty(t, f.timeline("a"), "reminders do not touch complaints")
}

func TestEscalateOverdue_Threshold(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.complaint("overdue", domain.UrgencyMedium, createdAgo(72*time.Hour+time.Second))
	f.complaint("working", domain.UrgencyLow, createdAgo(5*24*time.Hour), assignedTo("o1", domain.ComplaintStatusInProgress))
	f.complaint("recent", domain.UrgencyLow, createdAgo(48*time.Hour))
	f.complaint("high", domain.UrgencyHigh, createdAgo(10*24*time.Hour))

	// Act
	res, err := f.svc.EscalateOverdue(f.ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, "Escalated 2 overdue complaints to HIGH urgency", res.Message)
	assert.Equal(t, domain.UrgencyHigh, f.get("overdue").Urgency)
	assert.Equal(t, domain.UrgencyLow, f.get("recent").Urgency)

	working := f.get("working")
	assert.Equal(t, "o1", *working.AssignedTo, "escalation never reassigns")
	entries := f.timeline("working")
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ComplaintStatusInProgress, entries[0].Status)
	assert.Equal(t, "Escalated to HIGH urgency due to being overdue", entries[0].Comment)

	again, err := f.svc.EscalateOverdue(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Succeeded)
}

func TestArchiveResolved_BoundaryAndRerun(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.complaint("exactly30", domain.UrgencyLow, resolvedAgo(30*24*time.Hour))
	f.complaint("older31", domain.UrgencyLow, resolvedAgo(31*24*time.Hour), assignedTo("o1", domain.ComplaintStatusResolved))
	f.complaint("open", domain.UrgencyLow, createdAgo(90*24*time.Hour))

	// Act
	res, err := f.svc.ArchiveResolved(f.ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, "Archived 1 resolved complaints", res.Message)
	assert.Equal(t, service.ArchiveNote, res.Note)
	assert.Empty(t, f.timeline("exactly30"))

	archived := f.get("older31")
	assert.Equal(t, domain.ComplaintStatusResolved, archived.Status)
	assert.Equal(t, "o1", *archived.AssignedTo)
	require.NotNil(t, archived.ArchivedAt)
	entries := f.timeline("older31")
	require.Len(t, entries, 1)
	assert.Equal(t, "Archived (resolved >30 days ago)", entries[0].Comment)
	assert.Equal(t, domain.ComplaintStatusResolved, entries[0].Status)

	again, err := f.svc.ArchiveResolved(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Succeeded)
	assert.Len(t, f.timeline("older31"), 1, "re-running does not append a second marker")
}

func TestEscalateThenBalance_AppendsTimelineInOrder(t *testing.T) {
	// Arrange
	f := newFixture(t)
	f.officer("o1", "")
	f.complaint("c1", domain.UrgencyMedium, createdAgo(4*24*time.Hour))
	require.NoError(t, f.repos().Timeline.Append(f.ctx, &domain.TimelineEntry{
		ComplaintID: "c1",
		Status:      domain.ComplaintStatusPending,
		Comment:     "Complaint registered",
		UpdatedBy:   "Citizen",
	}))
	registered := f.timeline("c1")[0]

	// Act
	escalated, err := f.svc.EscalateOverdue(f.ctx)
	require.NoError(t, err)
	balanced, err := f.svc.BalanceWorkload(f.ctx)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, escalated.Succeeded)
	assert.Equal(t, 1, balanced.Succeeded)
	entries := f.timeline("c1")
	require.Len(t, entries, 3)
	assert.Equal(t, registered, entries[0], "existing entries are never rewritten")
	got := make([]string, len(entries))
	for i, e := range entries {
		got[i] = e.Comment
	}
	assert.Equal(t, []string{
		"Complaint registered",
		"Escalated to HIGH urgency due to being overdue",
		"Assigned to Officer o1 (workload balancing)",
	}, got)
	assert.Equal(t, domain.ComplaintStatusPending, entries[1].Status)
	assert.Equal(t, domain.ComplaintStatusInProgress, entries[2].Status)

	c := f.get("c1")
	assert.Equal(t, domain.UrgencyHigh, c.Urgency)
	assert.Equal(t, "o1", *c.AssignedTo)
}

func TestArchiveResolved_CommentFollowsThreshold(t *testing.T) {
	// Arrange
	f := newFixture(t)
	svc := service.NewQuickActionService(service.QuickActionDependencies{
		Store:      f.store,
		Locker:     f.locker,
		Thresholds: assignment.Thresholds{ArchiveAfter: 7 * 24 * time.Hour},
		Clock:      func() time.Time { return now },
	})
	f.complaint("old", domain.UrgencyLow, resolvedAgo(8*24*time.Hour))
	f.complaint("fresh", domain.UrgencyLow, resolvedAgo(6*24*time.Hour))

	// Act
	res, err := svc.ArchiveResolved(f.ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	entries := f.timeline("old")
	require.Len(t, entries, 1)
	assert.Equal(t, "Archived (resolved >7 days ago)", entries[0].Comment)
	assert.Empty(t, f.timeline("fresh"))
}
