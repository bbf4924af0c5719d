package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yashitanamdeo/janmat-sub001/internal/config"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/events"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository/memory"
	"github.com/yashitanamdeo/janmat-sub001/internal/service"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

// MockDispatcher records published events.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	m.Called(eventType, handler)
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

type complaintFixture struct {
	ctx        context.Context
	store      *memory.Store
	dispatcher *MockDispatcher
	svc        *service.ComplaintService
	citizen    *domain.User
	officer    *domain.User
	admin      *domain.User
}

func newComplaintFixture(t *testing.T) *complaintFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	store.SetClock(func() time.Time { return now })
	dispatcher := new(MockDispatcher)
	dispatcher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	users := store.Repos().Users
	citizen := &domain.User{ID: "cit", Name: "Meera", Email: "meera@janmat.local", Role: domain.RoleCitizen}
	officer := &domain.User{ID: "off", Name: "Arjun", Email: "arjun@janmat.local", Role: domain.RoleOfficer}
	admin := &domain.User{ID: "adm", Name: "Admin", Email: "admin@janmat.local", Role: domain.RoleAdmin}
	for _, u := range []*domain.User{citizen, officer, admin} {
		require.NoError(t, users.Create(ctx, u))
	}

	svc := service.NewComplaintService(service.ComplaintDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Clock:      func() time.Time { return now },
	})
	return &complaintFixture{ctx: ctx, store: store, dispatcher: dispatcher, svc: svc, citizen: citizen, officer: officer, admin: admin}
}

func (f *complaintFixture) file(t *testing.T) *domain.Complaint {
	t.Helper()
	c, err := f.svc.Create(f.ctx, f.citizen, service.ComplaintCreateInput{
		Title:       "Broken streetlight",
		Description: "The streetlight on 5th cross has been out for a week",
		Location:    "5th cross",
		Urgency:     domain.UrgencyMedium,
	})
	require.NoError(t, err)
	return c
}

func TestComplaintCreate(t *testing.T) {
	f := newComplaintFixture(t)

	c := f.file(t)

	assert.Equal(t, domain.ComplaintStatusPending, c.Status)
	assert.Nil(t, c.AssignedTo)
	_, timeline, err := f.svc.Get(f.ctx, f.citizen, c.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, "Complaint registered", timeline[0].Comment)
	f.dispatcher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		return e.Type == events.EventComplaintCreated && e.ComplaintID == c.ID
	}))
}

func TestComplaintCreate_Validation(t *testing.T) {
	f := newComplaintFixture(t)
	missing := "nope"

	_, err := f.svc.Create(f.ctx, f.citizen, service.ComplaintCreateInput{Title: "x", Description: "short", Urgency: "SEVERE"})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	_, err = f.svc.Create(f.ctx, f.officer, service.ComplaintCreateInput{})
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))

	_, err = f.svc.Create(f.ctx, f.citizen, service.ComplaintCreateInput{
		Title:        "Garbage pile",
		Description:  "Uncollected for ten days",
		Urgency:      domain.UrgencyLow,
		DepartmentID: &missing,
	})
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestComplaintUpdateStatus_ResolvedAtInvariant(t *testing.T) {
	// Arrange
	f := newComplaintFixture(t)
	c := f.file(t)
	require.NoError(t, f.store.Repos().Complaints.AssignIfUnassigned(f.ctx, c.ID, f.officer.ID, nil))

	// Act
	resolved, err := f.svc.UpdateStatus(f.ctx, f.officer, c.ID, domain.ComplaintStatusResolved, "Replaced the bulb")
	require.NoError(t, err)
	reopened, err := f.svc.UpdateStatus(f.ctx, f.admin, c.ID, domain.ComplaintStatusInProgress, "Citizen reports it is out again")
	require.NoError(t, err)

	// Assert
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, now, *resolved.ResolvedAt)
	assert.Nil(t, reopened.ResolvedAt)

	_, timeline, err := f.svc.Get(f.ctx, f.citizen, c.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 3)
	assert.Equal(t, "Arjun", timeline[1].UpdatedBy)
	assert.Equal(t, domain.ComplaintStatusResolved, timeline[1].Status)

	inbox, err := f.store.Repos().Notifications.ListByUser(f.ctx, f.citizen.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, domain.NotificationSuccess, inbox[1].Type)
}

func TestComplaintUpdateStatus_Permissions(t *testing.T) {
	f := newComplaintFixture(t)
	c := f.file(t)

	_, err := f.svc.UpdateStatus(f.ctx, f.officer, c.ID, domain.ComplaintStatusResolved, "done")
	assert.Equal(t, "FORBIDDEN", errorCode(t, err), "officer is not assigned")

	_, err = f.svc.UpdateStatus(f.ctx, f.citizen, c.ID, domain.ComplaintStatusRejected, "spam")
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))

	_, err = f.svc.UpdateStatus(f.ctx, f.admin, c.ID, domain.ComplaintStatusPending, "noop")
	assert.Equal(t, "CONFLICT", errorCode(t, err))

	_, err = f.svc.UpdateStatus(f.ctx, f.admin, c.ID, domain.ComplaintStatusRejected, "")
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
}

func TestComplaintList_ScopedByRole(t *testing.T) {
	f := newComplaintFixture(t)
	mine := f.file(t)
	other := &domain.Complaint{UserID: "someone", Title: "Other", Urgency: domain.UrgencyLow, Status: domain.ComplaintStatusPending}
	require.NoError(t, f.store.Repos().Complaints.Create(f.ctx, other))
	require.NoError(t, f.store.Repos().Complaints.AssignIfUnassigned(f.ctx, other.ID, f.officer.ID, nil))

	citizenView, err := f.svc.List(f.ctx, f.citizen, service.ComplaintListFilter{})
	require.NoError(t, err)
	officerView, err := f.svc.List(f.ctx, f.officer, service.ComplaintListFilter{})
	require.NoError(t, err)
	adminView, err := f.svc.List(f.ctx, f.admin, service.ComplaintListFilter{})
	require.NoError(t, err)

	require.Len(t, citizenView, 1)
	assert.Equal(t, mine.ID, citizenView[0].ID)
	require.Len(t, officerView, 1)
	assert.Equal(t, other.ID, officerView[0].ID)
	assert.Len(t, adminView, 2)

	_, _, err = f.svc.Get(f.ctx, f.citizen, other.ID)
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))
}

func TestAdminAssignComplaint(t *testing.T) {
	// Arrange
	f := newComplaintFixture(t)
	dept := "roads"
	f.officer.DepartmentID = &dept
	require.NoError(t, f.store.Repos().Users.Update(f.ctx, f.officer))
	c := f.file(t)
	admin := service.NewAdminService(service.AdminDependencies{Store: f.store, Dispatcher: f.dispatcher})

	// Act
	assigned, err := admin.AssignComplaint(f.ctx, f.admin, c.ID, f.officer.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, f.officer.ID, *assigned.AssignedTo)
	assert.Equal(t, "roads", *assigned.DepartmentID)
	assert.Equal(t, domain.ComplaintStatusInProgress, assigned.Status)

	inbox, err := f.store.Repos().Notifications.ListByUser(f.ctx, f.officer.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "New Complaint Assigned", inbox[0].Title)
	assert.Equal(t, "You have been assigned: Broken streetlight", inbox[0].Message)
	assert.Equal(t, domain.NotificationAssignment, inbox[0].Type)

	_, err = admin.AssignComplaint(f.ctx, f.admin, c.ID, f.citizen.ID)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
}

func TestAdminStatsAndOfficers(t *testing.T) {
	f := newComplaintFixture(t)
	c := f.file(t)
	f.file(t)
	require.NoError(t, f.store.Repos().Complaints.AssignIfUnassigned(f.ctx, c.ID, f.officer.ID, nil))
	admin := service.NewAdminService(service.AdminDependencies{Store: f.store})

	stats, err := admin.Stats(f.ctx)
	require.NoError(t, err)
	officers, err := admin.ListOfficers(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalComplaints)
	assert.Equal(t, 1, stats.PendingComplaints)
	assert.Equal(t, 1, stats.InProgressComplaints)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 1, stats.TotalOfficers)
	require.Len(t, officers, 1)
	assert.Equal(t, 1, officers[0].OpenComplaints)
	assert.Equal(t, 0, officers[0].ResolvedComplaints)
}

func TestAdminDepartments(t *testing.T) {
	f := newComplaintFixture(t)
	admin := service.NewAdminService(service.AdminDependencies{Store: f.store})

	dept, err := admin.CreateDepartment(f.ctx, "Water Supply", "Leaks and outages")
	require.NoError(t, err)
	officer, err := admin.SetOfficerDepartment(f.ctx, f.officer.ID, &dept.ID)
	require.NoError(t, err)
	list, err := admin.ListDepartments(f.ctx, false)
	require.NoError(t, err)

	assert.Equal(t, dept.ID, *officer.DepartmentID)
	require.Len(t, list, 1)
	assert.Equal(t, "Water Supply", list[0].Name)

	_, err = admin.CreateDepartment(f.ctx, " ", "")
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	_, err = admin.CreateDepartment(f.ctx, "water supply", "")
	assert.Equal(t, "CONFLICT", errorCode(t, err))
}

func TestAuthRegisterAndLogin(t *testing.T) {
	store := memory.NewStore()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test", AccessTokenTTLMinutes: 5, BcryptCost: bcrypt.MinCost}}
	svc := service.NewAuthService(cfg, service.AuthDependencies{UserRepo: store.Repos().Users})
	ctx := context.Background()

	session, err := svc.Register(ctx, service.RegisterInput{Name: "Kavya", Email: "Kavya@Example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCitizen, session.User.Role)
	assert.Equal(t, "kavya@example.com", session.User.Email)
	assert.NotEmpty(t, session.Token)

	_, err = svc.Register(ctx, service.RegisterInput{Name: "Kavya", Email: "kavya@example.com", Password: "hunter22"})
	assert.Equal(t, "CONFLICT", errorCode(t, err))

	_, err = svc.Login(ctx, "kavya@example.com", "wrong")
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))

	login, err := svc.Login(ctx, "kavya@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, login.User.ID)
}

func TestComplaintCreate_DispatcherStampsEvents(t *testing.T) {
	f := newComplaintFixture(t)
	dispatcher := events.NewInMemoryDispatcher()
	var seen []events.Event
	dispatcher.Subscribe(events.EventComplaintCreated, func(_ context.Context, e events.Event) error {
		seen = append(seen, e)
		return nil
	})
	svc := service.NewComplaintService(service.ComplaintDependencies{Store: f.store, Dispatcher: dispatcher})

	c, err := svc.Create(f.ctx, f.citizen, service.ComplaintCreateInput{
		Title:       "Fallen tree",
		Description: "A tree is blocking the lane since last night",
		Urgency:     domain.UrgencyHigh,
	})

	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, c.ID, seen[0].ComplaintID)
	assert.NotEmpty(t, seen[0].ID)
	assert.False(t, seen[0].Timestamp.IsZero())
}
