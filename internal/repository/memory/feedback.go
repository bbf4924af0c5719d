package memory

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
)

type feedbackRepository struct{ s *Store }

func (r *feedbackRepository) Create(_ context.Context, feedback *domain.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("feedback.create", feedback.ComplaintID); err != nil {
		return err
	}
	if r.find(feedback.ComplaintID) != nil {
		return repository.ErrDuplicate
	}
	feedback.ID = r.s.newID()
	now := r.s.now()
	feedback.CreatedAt, feedback.UpdatedAt = now, now
	r.s.data.feedback = append(r.s.data.feedback, *feedback)
	return nil
}

func (r *feedbackRepository) Update(_ context.Context, feedback *domain.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.find(feedback.ComplaintID)
	if stored == nil {
		return pgx.ErrNoRows
	}
	stored.Rating = feedback.Rating
	stored.Comment = feedback.Comment
	stored.UpdatedAt = r.s.now()
	*feedback = *stored
	return nil
}

func (r *feedbackRepository) GetByComplaint(_ context.Context, complaintID string) (*domain.Feedback, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.find(complaintID)
	if stored == nil {
		return nil, pgx.ErrNoRows
	}
	out := *stored
	return &out, nil
}

func (r *feedbackRepository) List(_ context.Context, filter repository.FeedbackFilter) ([]domain.FeedbackEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.FeedbackEntry
	for i := len(r.s.data.feedback) - 1; i >= 0; i-- {
		if entry, ok := r.join(r.s.data.feedback[i], filter); ok {
			result = append(result, entry)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *feedbackRepository) RatingCounts(_ context.Context, filter repository.FeedbackFilter) (map[int]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make(map[int]int)
	for _, f := range r.s.data.feedback {
		if _, ok := r.join(f, filter); ok {
			result[f.Rating]++
		}
	}
	return result, nil
}

// join must be called with s.mu held.
func (r *feedbackRepository) join(f domain.Feedback, filter repository.FeedbackFilter) (domain.FeedbackEntry, bool) {
	entry := domain.FeedbackEntry{Feedback: f}
	var complaint *domain.Complaint
	for i := range r.s.data.complaints {
		if r.s.data.complaints[i].ID == f.ComplaintID {
			complaint = &r.s.data.complaints[i]
			break
		}
	}
	if complaint == nil {
		return entry, false
	}
	if filter.AssignedTo != nil && (complaint.AssignedTo == nil || *complaint.AssignedTo != *filter.AssignedTo) {
		return entry, false
	}
	entry.ComplaintTitle = complaint.Title
	entry.ComplaintStatus = complaint.Status
	entry.AssignedTo = complaint.AssignedTo
	entry.DepartmentID = complaint.DepartmentID
	for _, u := range r.s.data.users {
		if u.ID == f.UserID {
			entry.AuthorName = u.Name
			break
		}
	}
	return entry, true
}

// find must be called with s.mu held.
func (r *feedbackRepository) find(complaintID string) *domain.Feedback {
	for i := range r.s.data.feedback {
		if r.s.data.feedback[i].ComplaintID == complaintID {
			return &r.s.data.feedback[i]
		}
	}
	return nil
}
