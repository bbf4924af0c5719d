package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/events"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

// ComplaintService coordinates complaint workflows.
type ComplaintService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ComplaintDependencies bundles collaborators for complaint service.
type ComplaintDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      func() time.Time
}

// ComplaintCreateInput describes complaint creation payload.
type ComplaintCreateInput struct {
	Title        string
	Description  string
	Location     string
	Urgency      domain.Urgency
	DepartmentID *string
}

// ComplaintListFilter describes listing filters; scope is derived from the caller.
type ComplaintListFilter struct {
	Statuses     []domain.ComplaintStatus
	Urgencies    []domain.Urgency
	DepartmentID *string
	SearchTerm   *string
	Limit        int
	Offset       int
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ComplaintService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		logger:     nopLogger(deps.Logger),
		now:        clock,
	}
}

// Create files a complaint for a citizen.
func (s *ComplaintService) Create(ctx context.Context, citizen *domain.User, input ComplaintCreateInput) (*domain.Complaint, error) {
	if citizen == nil || citizen.Role != domain.RoleCitizen {
		return nil, apperrors.NewForbidden("only citizens can file complaints")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	details := map[string]any{}
	if len(title) < 3 {
		details["title"] = "must be at least 3 characters"
	}
	if len(description) < 10 {
		details["description"] = "must be at least 10 characters"
	}
	if !input.Urgency.Valid() {
		details["urgency"] = "must be one of LOW, MEDIUM, HIGH"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid complaint", details)
	}

	repos := s.store.Repos()
	if input.DepartmentID != nil {
		dept, err := repos.Departments.GetByID(ctx, *input.DepartmentID)
		if err != nil {
			return nil, notFound(err, "department", "department_id", *input.DepartmentID)
		}
		if !dept.IsActive {
			return nil, apperrors.NewConflict("department inactive", map[string]any{"department_id": dept.ID})
		}
	}

	complaint := &domain.Complaint{
		UserID:       citizen.ID,
		Title:        title,
		Description:  description,
		Location:     strings.TrimSpace(input.Location),
		Urgency:      input.Urgency,
		Status:       domain.ComplaintStatusPending,
		DepartmentID: input.DepartmentID,
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Complaints.Create(ctx, complaint); err != nil {
			return err
		}
		return tx.Timeline.Append(ctx, &domain.TimelineEntry{
			ComplaintID: complaint.ID,
			Status:      domain.ComplaintStatusPending,
			Comment:     "Complaint registered",
			UpdatedBy:   domain.SystemAuthor,
		})
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		Actor:       userActor(citizen),
		Payload: events.ComplaintCreatedPayload{
			CitizenID:    citizen.ID,
			DepartmentID: complaint.DepartmentID,
			Urgency:      complaint.Urgency,
			Title:        complaint.Title,
		},
	})
	return complaint, nil
}

// List returns complaints visible to the caller: citizens see their own,
// officers those assigned to them, admins everything.
func (s *ComplaintService) List(ctx context.Context, actor *domain.User, filter ComplaintListFilter) ([]domain.Complaint, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	repoFilter := repository.ComplaintFilter{
		Statuses:     filter.Statuses,
		Urgencies:    filter.Urgencies,
		DepartmentID: filter.DepartmentID,
		SearchTerm:   filter.SearchTerm,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
	switch actor.Role {
	case domain.RoleCitizen:
		repoFilter.UserID = &actor.ID
	case domain.RoleOfficer:
		repoFilter.AssignedTo = &actor.ID
	case domain.RoleAdmin:
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}
	complaints, err := s.store.Repos().Complaints.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// Get returns a complaint with its timeline.
func (s *ComplaintService) Get(ctx context.Context, actor *domain.User, id string) (*domain.Complaint, []domain.TimelineEntry, error) {
	repos := s.store.Repos()
	complaint, err := repos.Complaints.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, "complaint", "complaint_id", id)
	}
	if !canView(actor, complaint) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	timeline, err := repos.Timeline.ListByComplaint(ctx, id)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return complaint, timeline, nil
}

// UpdateStatus moves a complaint to a new status. Only the assigned officer or an
// admin may do so. resolvedAt is set on RESOLVED and cleared otherwise.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor *domain.User, id string, status domain.ComplaintStatus, comment string) (*domain.Complaint, error) {
	comment = strings.TrimSpace(comment)
	details := map[string]any{}
	if !status.Valid() {
		details["status"] = "must be one of PENDING, IN_PROGRESS, RESOLVED, REJECTED"
	}
	if comment == "" {
		details["comment"] = "is required"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid status update", details)
	}

	var resolvedAt *time.Time
	notificationType := domain.NotificationInfo
	if status == domain.ComplaintStatusResolved {
		at := s.now()
		resolvedAt = &at
		notificationType = domain.NotificationSuccess
	}

	var (
		complaint *domain.Complaint
		oldStatus domain.ComplaintStatus
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		current, err := tx.Complaints.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "complaint", "complaint_id", id)
		}
		if !canChangeStatus(actor, current) {
			return apperrors.NewForbidden("only the assigned officer or an admin can update status")
		}
		if current.ArchivedAt != nil {
			return apperrors.NewConflict("complaint is archived", map[string]any{"complaint_id": id})
		}
		if current.Status == status {
			return apperrors.NewConflict("complaint already has this status", map[string]any{"status": status})
		}
		oldStatus = current.Status
		if err := tx.Complaints.SetStatus(ctx, current.ID, oldStatus, status, resolvedAt); err != nil {
			if errors.Is(err, repository.ErrNotApplied) {
				return apperrors.NewConflict("complaint changed concurrently", map[string]any{"complaint_id": id})
			}
			return err
		}
		if err := tx.Timeline.Append(ctx, &domain.TimelineEntry{
			ComplaintID: current.ID,
			Status:      status,
			Comment:     comment,
			UpdatedBy:   actor.Name,
		}); err != nil {
			return err
		}
		if err := tx.Notifications.Create(ctx, &domain.Notification{
			UserID:  current.UserID,
			Title:   "Complaint Status Updated",
			Message: fmt.Sprintf("Your complaint %q is now %s", current.Title, status),
			Type:    notificationType,
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
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: complaint.ID,
		Actor:       userActor(actor),
		Payload: events.ComplaintStatusChangedPayload{
			CitizenID: complaint.UserID,
			OldStatus: oldStatus,
			NewStatus: status,
			Comment:   comment,
		},
	})
	return complaint, nil
}

func canView(actor *domain.User, c *domain.Complaint) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleCitizen:
		return c.UserID == actor.ID
	case domain.RoleOfficer:
		if c.AssignedTo != nil && *c.AssignedTo == actor.ID {
			return true
		}
		return actor.DepartmentID != nil && c.DepartmentID != nil && *actor.DepartmentID == *c.DepartmentID
	}
	return false
}

func canChangeStatus(actor *domain.User, c *domain.Complaint) bool {
	if actor == nil {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return actor.Role == domain.RoleOfficer && c.AssignedTo != nil && *c.AssignedTo == actor.ID
}
