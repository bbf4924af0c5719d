package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/yashitanamdeo/janmat-sub001/internal/auth"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/events"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

// AdminService manages departments, officers and manual assignment.
type AdminService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AdminDependencies encapsulates collaborators required for administration.
type AdminDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// BcryptCost hashes passwords of officer accounts; out-of-range values fall back to the default.
	BcryptCost int
}

// OfficerInput describes an officer account. Password is required on create only.
type OfficerInput struct {
	Name         string
	Email        string
	Phone        string
	Password     string
	DepartmentID *string
	Designation  string
}

// DashboardStats aggregates platform counters.
type DashboardStats struct {
	TotalComplaints      int
	PendingComplaints    int
	InProgressComplaints int
	ResolvedComplaints   int
	RejectedComplaints   int
	TotalUsers           int
	TotalOfficers        int
}

// OfficerSummary is an officer with derived workload counters.
type OfficerSummary struct {
	Officer            domain.User
	AssignedComplaints int
	OpenComplaints     int
	ResolvedComplaints int
}

// NewAdminService constructs the service.
func NewAdminService(deps AdminDependencies) *AdminService {
	return &AdminService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     nopLogger(deps.Logger),
		bcryptCost: deps.BcryptCost,
	}
}

// Stats returns complaint and user counters.
func (s *AdminService) Stats(ctx context.Context) (*DashboardStats, error) {
	repos := s.store.Repos()
	byStatus, err := repos.Complaints.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byRole, err := repos.Users.CountByRole(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &DashboardStats{
		PendingComplaints:    byStatus[domain.ComplaintStatusPending],
		InProgressComplaints: byStatus[domain.ComplaintStatusInProgress],
		ResolvedComplaints:   byStatus[domain.ComplaintStatusResolved],
		RejectedComplaints:   byStatus[domain.ComplaintStatusRejected],
		TotalOfficers:        byRole[domain.RoleOfficer],
	}
	for _, n := range byStatus {
		stats.TotalComplaints += n
	}
	for _, n := range byRole {
		stats.TotalUsers += n
	}
	return stats, nil
}

// ListOfficers returns every officer with assigned, open and resolved counts.
func (s *AdminService) ListOfficers(ctx context.Context) ([]OfficerSummary, error) {
	repos := s.store.Repos()
	officers, err := repos.Users.ListByRole(ctx, domain.RoleOfficer)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assigned, err := repos.Complaints.CountByAssignee(ctx, nil)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	open, err := repos.Complaints.CountByAssignee(ctx, domain.OpenStatuses)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	resolved, err := repos.Complaints.CountByAssignee(ctx, []domain.ComplaintStatus{domain.ComplaintStatusResolved})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	out := make([]OfficerSummary, 0, len(officers))
	for _, officer := range officers {
		out = append(out, OfficerSummary{
			Officer:            officer,
			AssignedComplaints: assigned[officer.ID],
			OpenComplaints:     open[officer.ID],
			ResolvedComplaints: resolved[officer.ID],
		})
	}
	return out, nil
}

// AssignComplaint hands an open complaint to an officer chosen by an admin. The
// complaint takes the officer's department and moves to IN_PROGRESS.
func (s *AdminService) AssignComplaint(ctx context.Context, actor *domain.User, complaintID, officerID string) (*domain.Complaint, error) {
	if strings.TrimSpace(officerID) == "" {
		return nil, apperrors.NewValidationError("officerId is required", map[string]any{"officerId": "is required"})
	}
	repos := s.store.Repos()
	officer, err := repos.Users.GetByID(ctx, officerID)
	if err != nil {
		return nil, notFound(err, "officer", "officer_id", officerID)
	}
	if !officer.IsOfficer() {
		return nil, apperrors.NewValidationError("user is not an officer", map[string]any{"officerId": officerID})
	}
	var complaint *domain.Complaint
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		current, err := tx.Complaints.GetForUpdate(ctx, complaintID)
		if err != nil {
			return notFound(err, "complaint", "complaint_id", complaintID)
		}
		if err := tx.Complaints.AssignTo(ctx, current.ID, officer.ID, officer.DepartmentID); err != nil {
			if errors.Is(err, repository.ErrNotApplied) {
				return apperrors.NewConflict("complaint is closed", map[string]any{"status": current.Status})
			}
			return err
		}
		if err := tx.Timeline.Append(ctx, &domain.TimelineEntry{
			ComplaintID: current.ID,
			Status:      domain.ComplaintStatusInProgress,
			Comment:     fmt.Sprintf("Assigned to %s", officer.Name),
			UpdatedBy:   actor.Name,
		}); err != nil {
			return err
		}
		if err := tx.Notifications.Create(ctx, &domain.Notification{
			UserID:  officer.ID,
			Title:   "New Complaint Assigned",
			Message: "You have been assigned: " + current.Title,
			Type:    domain.NotificationAssignment,
		}); err != nil {
			return err
		}
		complaint, err = tx.Complaints.GetByID(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventComplaintAssigned,
		ComplaintID: complaint.ID,
		Actor:       userActor(actor),
		Payload: events.ComplaintAssignedPayload{
			OfficerID: officer.ID,
			Reason:    "manual",
			Title:     complaint.Title,
		},
	})
	return complaint, nil
}

// SetOfficerDepartment moves an officer to a department, or clears it when departmentID is nil.
func (s *AdminService) SetOfficerDepartment(ctx context.Context, officerID string, departmentID *string) (*domain.User, error) {
	repos := s.store.Repos()
	officer, err := repos.Users.GetByID(ctx, officerID)
	if err != nil {
		return nil, notFound(err, "officer", "officer_id", officerID)
	}
	if !officer.IsOfficer() {
		return nil, apperrors.NewValidationError("user is not an officer", map[string]any{"officer_id": officerID})
	}
	if err := s.activeDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	officer.DepartmentID = departmentID
	if err := repos.Users.Update(ctx, officer); err != nil {
		return nil, apperrors.MapError(err)
	}
	return officer, nil
}

// CreateOfficer opens an officer account.
func (s *AdminService) CreateOfficer(ctx context.Context, input OfficerInput) (*domain.User, error) {
	officer, err := s.officerFromInput(ctx, &domain.User{Role: domain.RoleOfficer}, input)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError("invalid officer", map[string]any{"password": "must be at least 6 characters"})
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	officer.PasswordHash = hash

	if err := s.store.Repos().Users.Create(ctx, officer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": officer.Email})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("officer created", zap.String("officer_id", officer.ID))
	return officer, nil
}

// UpdateOfficer rewrites an officer's profile. The password is left unchanged.
func (s *AdminService) UpdateOfficer(ctx context.Context, officerID string, input OfficerInput) (*domain.User, error) {
	users := s.store.Repos().Users
	existing, err := users.GetByID(ctx, officerID)
	if err != nil {
		return nil, notFound(err, "officer", "officer_id", officerID)
	}
	if !existing.IsOfficer() {
		return nil, apperrors.NewNotFound("officer", map[string]any{"officer_id": officerID})
	}
	officer, err := s.officerFromInput(ctx, existing, input)
	if err != nil {
		return nil, err
	}
	if err := users.Update(ctx, officer); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": officer.Email})
		}
		return nil, notFound(err, "officer", "officer_id", officerID)
	}
	return officer, nil
}

func (s *AdminService) officerFromInput(ctx context.Context, officer *domain.User, input OfficerInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	details := map[string]any{}
	if len(name) < 2 {
		details["name"] = "must be at least 2 characters"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		details["email"] = "must be a valid email address"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid officer", details)
	}
	if err := s.activeDepartment(ctx, input.DepartmentID); err != nil {
		return nil, err
	}
	officer.Name = name
	officer.Email = email
	officer.Phone = strings.TrimSpace(input.Phone)
	officer.Designation = strings.TrimSpace(input.Designation)
	officer.DepartmentID = input.DepartmentID
	return officer, nil
}

func (s *AdminService) activeDepartment(ctx context.Context, departmentID *string) error {
	if departmentID == nil {
		return nil
	}
	dept, err := s.store.Repos().Departments.GetByID(ctx, *departmentID)
	if err != nil {
		return notFound(err, "department", "department_id", *departmentID)
	}
	if !dept.IsActive {
		return apperrors.NewConflict("department inactive", map[string]any{"department_id": dept.ID})
	}
	return nil
}

// UpdateComplaintDepartment routes a complaint to a department, or detaches it when
// departmentID is nil. A non-nil officerID also replaces the assignee: an empty value
// unassigns, an officer id assigns and moves the complaint to IN_PROGRESS.
func (s *AdminService) UpdateComplaintDepartment(ctx context.Context, actor *domain.User, complaintID string, departmentID, officerID *string) (*domain.Complaint, error) {
	if err := s.activeDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	var officer *domain.User
	if officerID != nil && *officerID != "" {
		found, err := s.store.Repos().Users.GetByID(ctx, *officerID)
		if err != nil {
			return nil, notFound(err, "officer", "officer_id", *officerID)
		}
		if !found.IsOfficer() {
			return nil, apperrors.NewValidationError("user is not an officer", map[string]any{"officerId": *officerID})
		}
		officer = found
	}

	var complaint *domain.Complaint
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		current, err := tx.Complaints.GetForUpdate(ctx, complaintID)
		if err != nil {
			return notFound(err, "complaint", "complaint_id", complaintID)
		}
		if err := tx.Complaints.Route(ctx, current.ID, departmentID, officerID); err != nil {
			if errors.Is(err, repository.ErrNotApplied) {
				return apperrors.NewConflict("complaint is closed", map[string]any{"status": current.Status})
			}
			return err
		}
		complaint, err = tx.Complaints.GetByID(ctx, current.ID)
		if err != nil {
			return err
		}
		if err := tx.Timeline.Append(ctx, &domain.TimelineEntry{
			ComplaintID: complaint.ID,
			Status:      complaint.Status,
			Comment:     routeComment(departmentID, officerID, officer),
			UpdatedBy:   actor.Name,
		}); err != nil {
			return err
		}
		if officer == nil {
			return nil
		}
		return tx.Notifications.Create(ctx, &domain.Notification{
			UserID:  officer.ID,
			Title:   "New Complaint Assigned",
			Message: "You have been assigned: " + complaint.Title,
			Type:    domain.NotificationAssignment,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if officer != nil {
		publishEvent(ctx, s.dispatcher, s.logger, events.Event{
			Type:        events.EventComplaintAssigned,
			ComplaintID: complaint.ID,
			Actor:       userActor(actor),
			Payload: events.ComplaintAssignedPayload{
				OfficerID: officer.ID,
				Reason:    "manual",
				Title:     complaint.Title,
			},
		})
	}
	return complaint, nil
}

func routeComment(departmentID, officerID *string, officer *domain.User) string {
	comment := "Department cleared"
	if departmentID != nil {
		comment = "Department changed"
	}
	switch {
	case officer != nil:
		comment += fmt.Sprintf("; assigned to %s", officer.Name)
	case officerID != nil:
		comment += "; officer unassigned"
	}
	return comment
}

// CreateDepartment creates a new active department.
func (s *AdminService) CreateDepartment(ctx context.Context, name, description string) (*domain.Department, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, apperrors.NewValidationError("invalid department", map[string]any{"name": "must be at least 2 characters"})
	}
	dept := &domain.Department{
		Name:        name,
		Description: strings.TrimSpace(description),
		IsActive:    true,
	}
	if err := s.store.Repos().Departments.Create(ctx, dept); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("department already exists", map[string]any{"name": name})
		}
		return nil, apperrors.MapError(err)
	}
	return dept, nil
}

// ListDepartments returns departments (optionally inactive).
func (s *AdminService) ListDepartments(ctx context.Context, includeInactive bool) ([]domain.Department, error) {
	depts, err := s.store.Repos().Departments.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return depts, nil
}
