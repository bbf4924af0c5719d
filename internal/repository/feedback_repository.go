package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// FeedbackFilter narrows feedback listings. AssignedTo scopes to one officer's complaints.
type FeedbackFilter struct {
	AssignedTo *string
}

// FeedbackRepository persists complaint feedback.
type FeedbackRepository interface {
	// Create returns ErrDuplicate when the complaint already has feedback.
	Create(ctx context.Context, feedback *domain.Feedback) error
	// Update rewrites rating and comment of the complaint's feedback.
	Update(ctx context.Context, feedback *domain.Feedback) error
	GetByComplaint(ctx context.Context, complaintID string) (*domain.Feedback, error)
	// List returns entries newest first.
	List(ctx context.Context, filter FeedbackFilter) ([]domain.FeedbackEntry, error)
	// RatingCounts returns how many feedbacks carry each rating.
	RatingCounts(ctx context.Context, filter FeedbackFilter) (map[int]int, error)
}

const feedbackColumns = `f.id, f.complaint_id, f.user_id, f.rating, f.comment, f.created_at, f.updated_at`

type feedbackRepository struct {
	db DBTX
}

// NewFeedbackRepository returns a Postgres-backed implementation.
func NewFeedbackRepository(db DBTX) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        INSERT INTO complaint_feedback (complaint_id, user_id, rating, comment)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		feedback.ComplaintID,
		feedback.UserID,
		feedback.Rating,
		feedback.Comment,
	).Scan(&feedback.ID, &feedback.CreatedAt, &feedback.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *feedbackRepository) Update(ctx context.Context, feedback *domain.Feedback) error {
	const query = `
        UPDATE complaint_feedback SET rating=$1, comment=$2, updated_at=NOW()
        WHERE complaint_id=$3
        RETURNING id, user_id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		feedback.Rating,
		feedback.Comment,
		feedback.ComplaintID,
	).Scan(&feedback.ID, &feedback.UserID, &feedback.CreatedAt, &feedback.UpdatedAt)
}

func (r *feedbackRepository) GetByComplaint(ctx context.Context, complaintID string) (*domain.Feedback, error) {
	query := `SELECT ` + feedbackColumns + ` FROM complaint_feedback f WHERE f.complaint_id=$1`
	var f domain.Feedback
	if err := r.db.QueryRow(ctx, query, complaintID).Scan(
		&f.ID, &f.ComplaintID, &f.UserID, &f.Rating, &f.Comment, &f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *feedbackRepository) List(ctx context.Context, filter FeedbackFilter) ([]domain.FeedbackEntry, error) {
	where, args := feedbackWhere(filter)
	query := fmt.Sprintf(`
        SELECT %s, u.name, c.title, c.status, c.assigned_to, c.department_id
        FROM complaint_feedback f
        JOIN complaints c ON c.id = f.complaint_id
        JOIN users u ON u.id = f.user_id
        WHERE %s
        ORDER BY f.created_at DESC`, feedbackColumns, where)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FeedbackEntry
	for rows.Next() {
		var e domain.FeedbackEntry
		if err := rows.Scan(
			&e.ID, &e.ComplaintID, &e.UserID, &e.Rating, &e.Comment, &e.CreatedAt, &e.UpdatedAt,
			&e.AuthorName, &e.ComplaintTitle, &e.ComplaintStatus, &e.AssignedTo, &e.DepartmentID,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *feedbackRepository) RatingCounts(ctx context.Context, filter FeedbackFilter) (map[int]int, error) {
	where, args := feedbackWhere(filter)
	query := fmt.Sprintf(`
        SELECT f.rating, COUNT(*)
        FROM complaint_feedback f
        JOIN complaints c ON c.id = f.complaint_id
        WHERE %s
        GROUP BY f.rating`, where)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int]int)
	for rows.Next() {
		var rating, count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		result[rating] = count
	}
	return result, rows.Err()
}

func feedbackWhere(filter FeedbackFilter) (string, []any) {
	clauses := []string{"1=1"}
	var args []any
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("c.assigned_to=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}
