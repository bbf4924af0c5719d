package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yashitanamdeo/janmat-sub001/internal/assignment"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/events"
	"github.com/yashitanamdeo/janmat-sub001/internal/lock"
	"github.com/yashitanamdeo/janmat-sub001/internal/observability"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

// Quick action names, also used as metric and log keys.
const (
	ActionAssignUrgent    = "assign-urgent"
	ActionBalanceWorkload = "balance-workload"
	ActionSendReminders   = "send-reminders"
	ActionEscalateOverdue = "escalate-overdue"
	ActionArchiveResolved = "archive-resolved"
)

const batchLockKey = "quick-actions"

// ArchiveNote accompanies every archive run.
const ArchiveNote = "Complaints marked as archived in timeline. In production, these would be moved to archive storage."

// BatchResult summarizes one quick action run.
type BatchResult struct {
	Action    string
	Succeeded int
	Skipped   int
	Failed    int
	// Interrupted is set when the request context ended before all candidates were handled.
	Interrupted bool
	Message     string
	Note        string
}

// Success reports whether every attempted write went through.
func (r *BatchResult) Success() bool {
	return r.Failed == 0
}

// QuickActionService runs the admin batch actions.
type QuickActionService struct {
	store      repository.Store
	locker     lock.Locker
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	thresholds assignment.Thresholds
	lockTTL    time.Duration
	now        func() time.Time
}

// QuickActionDependencies bundles collaborators for the quick action service.
type QuickActionDependencies struct {
	Store      repository.Store
	Locker     lock.Locker
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Thresholds assignment.Thresholds
	LockTTL    time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewQuickActionService creates the service.
func NewQuickActionService(deps QuickActionDependencies) *QuickActionService {
	locker := deps.Locker
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	ttl := deps.LockTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &QuickActionService{
		store:      deps.Store,
		locker:     locker,
		dispatcher: deps.Dispatcher,
		logger:     nopLogger(deps.Logger),
		metrics:    deps.Metrics,
		thresholds: deps.Thresholds,
		lockTTL:    ttl,
		now:        clock,
	}
}

type assignStyle struct {
	mode         assignment.Mode
	comment      func(officerName string) string
	title        string
	message      func(complaintTitle string) string
	notification domain.NotificationType
}

var (
	urgentStyle = assignStyle{
		mode:         assignment.ModeUrgent,
		comment:      func(name string) string { return fmt.Sprintf("Auto-assigned to %s (urgent complaint)", name) },
		title:        "Urgent Complaint Assigned",
		message:      func(title string) string { return "Urgent complaint auto-assigned: " + title },
		notification: domain.NotificationWarning,
	}
	balanceStyle = assignStyle{
		mode:         assignment.ModeBalance,
		comment:      func(name string) string { return fmt.Sprintf("Assigned to %s (workload balancing)", name) },
		title:        "Complaint Assigned",
		message:      func(title string) string { return "Complaint assigned (workload balancing): " + title },
		notification: domain.NotificationInfo,
	}
)

// AssignUrgent assigns every unassigned open HIGH complaint to the least busy eligible officer.
func (s *QuickActionService) AssignUrgent(ctx context.Context) (*BatchResult, error) {
	return s.run(ctx, ActionAssignUrgent, func(ctx context.Context, res *BatchResult) error {
		if err := s.assignBatch(ctx, urgentStyle, res); err != nil {
			return err
		}
		res.Message = fmt.Sprintf("Successfully auto-assigned %d urgent complaints", res.Succeeded)
		return nil
	})
}

// BalanceWorkload assigns every unassigned open complaint, most urgent first.
func (s *QuickActionService) BalanceWorkload(ctx context.Context) (*BatchResult, error) {
	return s.run(ctx, ActionBalanceWorkload, func(ctx context.Context, res *BatchResult) error {
		if err := s.assignBatch(ctx, balanceStyle, res); err != nil {
			return err
		}
		res.Message = fmt.Sprintf("Successfully balanced %d complaints across officers", res.Succeeded)
		return nil
	})
}

// SendReminders notifies every officer that has open assigned complaints.
func (s *QuickActionService) SendReminders(ctx context.Context) (*BatchResult, error) {
	return s.run(ctx, ActionSendReminders, func(ctx context.Context, res *BatchResult) error {
		repos := s.store.Repos()
		officers, err := repos.Users.ListByRole(ctx, domain.RoleOfficer)
		if err != nil {
			return err
		}
		counts, err := repos.Complaints.CountByAssignee(ctx, domain.OpenStatuses)
		if err != nil {
			return err
		}
		idx := assignment.NewWorkloadIndex(officers, counts)

		for i := range officers {
			if ctx.Err() != nil {
				res.Interrupted = true
				break
			}
			officer := &officers[i]
			pending := idx.Load(officer.ID)
			if pending == 0 {
				continue
			}
			err := repos.Notifications.Create(ctx, &domain.Notification{
				UserID:  officer.ID,
				Title:   "Pending Complaints Reminder",
				Message: fmt.Sprintf("You have %d pending complaints. Please review and update their status.", pending),
				Type:    domain.NotificationInfo,
			})
			if err != nil {
				res.Failed++
				s.logger.Error("reminder failed", zap.String("officer_id", officer.ID), zap.Error(err))
				continue
			}
			res.Succeeded++
			publishEvent(ctx, s.dispatcher, s.logger, events.Event{
				Type:    events.EventReminderSent,
				Actor:   events.SystemActor,
				Payload: events.ReminderSentPayload{OfficerID: officer.ID, PendingCount: pending},
			})
		}
		res.Message = fmt.Sprintf("Sent reminders to %d officers", res.Succeeded)
		return nil
	})
}

// EscalateOverdue raises open complaints older than the escalation threshold to HIGH.
func (s *QuickActionService) EscalateOverdue(ctx context.Context) (*BatchResult, error) {
	return s.run(ctx, ActionEscalateOverdue, func(ctx context.Context, res *BatchResult) error {
		candidates, err := s.candidates(ctx, assignment.ModeEscalate)
		if err != nil {
			return err
		}
		s.applyEach(ctx, res, candidates, func(ctx context.Context, tx repository.Repositories, c *domain.Complaint) error {
			if err := tx.Complaints.EscalateUrgency(ctx, c.ID); err != nil {
				return err
			}
			return tx.Timeline.Append(ctx, &domain.TimelineEntry{
				ComplaintID: c.ID,
				Status:      c.Status,
				Comment:     "Escalated to HIGH urgency due to being overdue",
				UpdatedBy:   domain.SystemAuthor,
			})
		}, func(ctx context.Context, c *domain.Complaint) {
			publishEvent(ctx, s.dispatcher, s.logger, events.Event{
				Type:        events.EventComplaintEscalated,
				ComplaintID: c.ID,
				Actor:       events.SystemActor,
				Payload:     events.ComplaintEscalatedPayload{OldUrgency: c.Urgency},
			})
		})
		res.Message = fmt.Sprintf("Escalated %d overdue complaints to HIGH urgency", res.Succeeded)
		return nil
	})
}

// ArchiveResolved marks complaints resolved longer than the archive threshold as archived.
// Status and assignment stay untouched.
func (s *QuickActionService) ArchiveResolved(ctx context.Context) (*BatchResult, error) {
	return s.run(ctx, ActionArchiveResolved, func(ctx context.Context, res *BatchResult) error {
		candidates, err := s.candidates(ctx, assignment.ModeArchive)
		if err != nil {
			return err
		}
		archivedAt := s.now()
		comment := fmt.Sprintf("Archived (resolved >%d days ago)", s.archiveAfterDays())
		s.applyEach(ctx, res, candidates, func(ctx context.Context, tx repository.Repositories, c *domain.Complaint) error {
			if err := tx.Complaints.MarkArchived(ctx, c.ID, archivedAt); err != nil {
				return err
			}
			return tx.Timeline.Append(ctx, &domain.TimelineEntry{
				ComplaintID: c.ID,
				Status:      domain.ComplaintStatusResolved,
				Comment:     comment,
				UpdatedBy:   domain.SystemAuthor,
			})
		}, func(ctx context.Context, c *domain.Complaint) {
			publishEvent(ctx, s.dispatcher, s.logger, events.Event{
				Type:        events.EventComplaintArchived,
				ComplaintID: c.ID,
				Actor:       events.SystemActor,
				Payload:     events.ComplaintArchivedPayload{ResolvedAt: c.ResolvedAt},
			})
		})
		res.Message = fmt.Sprintf("Archived %d resolved complaints", res.Succeeded)
		res.Note = ArchiveNote
		return nil
	})
}

func (s *QuickActionService) archiveAfterDays() int {
	after := s.thresholds.ArchiveAfter
	if after <= 0 {
		after = assignment.DefaultArchiveAfter
	}
	return int(after / (24 * time.Hour))
}

func (s *QuickActionService) run(ctx context.Context, action string, fn func(context.Context, *BatchResult) error) (*BatchResult, error) {
	release, err := s.locker.Acquire(ctx, batchLockKey, s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return nil, apperrors.NewBatchInProgress(action)
		}
		s.logger.Error("acquire batch lock", zap.String("action", action), zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}
	defer release()

	start := time.Now()
	res := &BatchResult{Action: action}
	if err := fn(ctx, res); err != nil {
		s.logger.Error("quick action aborted", zap.String("action", action), zap.Error(err))
		return nil, apperrors.MapError(err)
	}

	s.metrics.RecordBatch(action, res.Succeeded, res.Skipped, res.Failed)
	s.logger.Info("quick action finished",
		zap.String("action", action),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Bool("interrupted", res.Interrupted),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (s *QuickActionService) candidates(ctx context.Context, mode assignment.Mode) ([]domain.Complaint, error) {
	criteria, ok := assignment.CriteriaFor(mode, s.now(), s.thresholds)
	if !ok {
		return nil, fmt.Errorf("unknown selection mode %q", mode)
	}
	return s.store.Repos().Complaints.ListByCriteria(ctx, criteria)
}

// assignBatch loads the workload index once, then picks and writes candidates in
// selection order. The index is bumped only after a committed write.
func (s *QuickActionService) assignBatch(ctx context.Context, style assignStyle, res *BatchResult) error {
	candidates, err := s.candidates(ctx, style.mode)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}

	repos := s.store.Repos()
	officers, err := repos.Users.ListByRole(ctx, domain.RoleOfficer)
	if err != nil {
		return err
	}
	counts, err := repos.Complaints.CountByAssignee(ctx, domain.OpenStatuses)
	if err != nil {
		return err
	}
	idx := assignment.NewWorkloadIndex(officers, counts)

	for i := range candidates {
		if ctx.Err() != nil {
			res.Interrupted = true
			return nil
		}
		c := &candidates[i]
		officer, ok := assignment.Pick(c, officers, idx)
		if !ok {
			res.Skipped++
			s.logger.Debug("no eligible officer", zap.String("complaint_id", c.ID))
			continue
		}

		err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
			if err := tx.Complaints.AssignIfUnassigned(ctx, c.ID, officer.ID, officer.DepartmentID); err != nil {
				return err
			}
			if err := tx.Timeline.Append(ctx, &domain.TimelineEntry{
				ComplaintID: c.ID,
				Status:      domain.ComplaintStatusInProgress,
				Comment:     style.comment(officer.Name),
				UpdatedBy:   domain.SystemAuthor,
			}); err != nil {
				return err
			}
			return tx.Notifications.Create(ctx, &domain.Notification{
				UserID:  officer.ID,
				Title:   style.title,
				Message: style.message(c.Title),
				Type:    style.notification,
			})
		})
		switch {
		case err == nil:
			res.Succeeded++
			idx.Increment(officer.ID)
			publishEvent(ctx, s.dispatcher, s.logger, events.Event{
				Type:        events.EventComplaintAssigned,
				ComplaintID: c.ID,
				Actor:       events.SystemActor,
				Payload: events.ComplaintAssignedPayload{
					OfficerID: officer.ID,
					Reason:    string(style.mode),
					Title:     c.Title,
				},
			})
		case errors.Is(err, repository.ErrNotApplied):
			res.Skipped++
			s.logger.Info("complaint changed since selection", zap.String("complaint_id", c.ID))
		default:
			res.Failed++
			s.logger.Error("assign complaint",
				zap.String("complaint_id", c.ID),
				zap.String("officer_id", officer.ID),
				zap.Error(err))
		}
	}
	return nil
}

// applyEach runs write for every candidate in its own transaction and tallies the outcome.
func (s *QuickActionService) applyEach(
	ctx context.Context,
	res *BatchResult,
	candidates []domain.Complaint,
	write func(ctx context.Context, tx repository.Repositories, c *domain.Complaint) error,
	after func(ctx context.Context, c *domain.Complaint),
) {
	for i := range candidates {
		if ctx.Err() != nil {
			res.Interrupted = true
			return
		}
		c := &candidates[i]
		err := s.store.WithinTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
			return write(ctx, tx, c)
		})
		switch {
		case err == nil:
			res.Succeeded++
			after(ctx, c)
		case errors.Is(err, repository.ErrNotApplied):
			res.Skipped++
		default:
			res.Failed++
			s.logger.Error("quick action item failed",
				zap.String("action", res.Action),
				zap.String("complaint_id", c.ID),
				zap.Error(err))
		}
	}
}
