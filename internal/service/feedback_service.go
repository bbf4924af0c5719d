package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

const maxFeedbackComment = 1000

// FeedbackService lets citizens rate resolved complaints and staff review the ratings.
type FeedbackService struct {
	store  repository.Store
	logger *zap.Logger
}

// FeedbackDependencies bundles collaborators for the feedback service.
type FeedbackDependencies struct {
	Store  repository.Store
	Logger *zap.Logger
}

// FeedbackInput is the rating payload for submit and update.
type FeedbackInput struct {
	Rating  int
	Comment string
}

// FeedbackStats summarizes ratings. Distribution always has keys 1 through 5.
type FeedbackStats struct {
	Total        int
	Average      float64
	Distribution map[int]int
}

// NewFeedbackService constructs the service.
func NewFeedbackService(deps FeedbackDependencies) *FeedbackService {
	return &FeedbackService{store: deps.Store, logger: nopLogger(deps.Logger)}
}

// Submit records the citizen's feedback on their own resolved complaint.
func (s *FeedbackService) Submit(ctx context.Context, citizen *domain.User, complaintID string, input FeedbackInput) (*domain.Feedback, error) {
	if citizen == nil || citizen.Role != domain.RoleCitizen {
		return nil, apperrors.NewForbidden("only citizens can submit feedback")
	}
	comment, err := validateFeedback(input)
	if err != nil {
		return nil, err
	}

	complaint, err := s.store.Repos().Complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFound(err, "complaint", "complaint_id", complaintID)
	}
	if complaint.UserID != citizen.ID {
		return nil, apperrors.NewForbidden("you can only provide feedback for your own complaints")
	}
	if complaint.Status != domain.ComplaintStatusResolved {
		return nil, apperrors.NewConflict("feedback can only be provided for resolved complaints", map[string]any{"status": complaint.Status})
	}

	feedback := &domain.Feedback{
		ComplaintID: complaint.ID,
		UserID:      citizen.ID,
		Rating:      input.Rating,
		Comment:     comment,
	}
	if err := s.store.Repos().Feedback.Create(ctx, feedback); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("feedback already submitted for this complaint", map[string]any{"complaint_id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("feedback submitted", zap.String("complaint_id", complaint.ID), zap.Int("rating", feedback.Rating))
	return feedback, nil
}

// Update lets the author revise rating and comment.
func (s *FeedbackService) Update(ctx context.Context, citizen *domain.User, complaintID string, input FeedbackInput) (*domain.Feedback, error) {
	comment, err := validateFeedback(input)
	if err != nil {
		return nil, err
	}
	feedbackRepo := s.store.Repos().Feedback
	existing, err := feedbackRepo.GetByComplaint(ctx, complaintID)
	if err != nil {
		return nil, notFound(err, "feedback", "complaint_id", complaintID)
	}
	if citizen == nil || existing.UserID != citizen.ID {
		return nil, apperrors.NewForbidden("you can only update your own feedback")
	}

	existing.Rating = input.Rating
	existing.Comment = comment
	if err := feedbackRepo.Update(ctx, existing); err != nil {
		return nil, notFound(err, "feedback", "complaint_id", complaintID)
	}
	return existing, nil
}

// Get returns the feedback of a complaint the actor may view.
func (s *FeedbackService) Get(ctx context.Context, actor *domain.User, complaintID string) (*domain.Feedback, error) {
	repos := s.store.Repos()
	complaint, err := repos.Complaints.GetByID(ctx, complaintID)
	if err != nil {
		return nil, notFound(err, "complaint", "complaint_id", complaintID)
	}
	if !canView(actor, complaint) {
		return nil, apperrors.NewForbidden("not allowed to view this complaint")
	}
	feedback, err := repos.Feedback.GetByComplaint(ctx, complaintID)
	if err != nil {
		return nil, notFound(err, "feedback", "complaint_id", complaintID)
	}
	return feedback, nil
}

// List returns feedback newest first. Officers only see feedback on complaints assigned to them.
func (s *FeedbackService) List(ctx context.Context, actor *domain.User) ([]domain.FeedbackEntry, error) {
	filter, err := feedbackScope(actor)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Repos().Feedback.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// Stats aggregates ratings within the actor's scope. The average is rounded to one decimal.
func (s *FeedbackService) Stats(ctx context.Context, actor *domain.User) (*FeedbackStats, error) {
	filter, err := feedbackScope(actor)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.Repos().Feedback.RatingCounts(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &FeedbackStats{Distribution: make(map[int]int, domain.MaxRating)}
	sum := 0
	for rating := domain.MinRating; rating <= domain.MaxRating; rating++ {
		n := counts[rating]
		stats.Distribution[rating] = n
		stats.Total += n
		sum += rating * n
	}
	if stats.Total > 0 {
		stats.Average = math.Round(float64(sum)/float64(stats.Total)*10) / 10
	}
	return stats, nil
}

func feedbackScope(actor *domain.User) (repository.FeedbackFilter, error) {
	if actor == nil {
		return repository.FeedbackFilter{}, apperrors.NewUnauthorized("authentication required")
	}
	switch actor.Role {
	case domain.RoleAdmin:
		return repository.FeedbackFilter{}, nil
	case domain.RoleOfficer:
		id := actor.ID
		return repository.FeedbackFilter{AssignedTo: &id}, nil
	}
	return repository.FeedbackFilter{}, apperrors.NewForbidden("only officers and admins can review feedback")
}

func validateFeedback(input FeedbackInput) (string, error) {
	comment := strings.TrimSpace(input.Comment)
	details := map[string]any{}
	if input.Rating < domain.MinRating || input.Rating > domain.MaxRating {
		details["rating"] = "must be between 1 and 5"
	}
	if len(comment) > maxFeedbackComment {
		details["comment"] = "must be at most 1000 characters"
	}
	if len(details) > 0 {
		return "", apperrors.NewValidationError("invalid feedback", details)
	}
	return comment, nil
}
