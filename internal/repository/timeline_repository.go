package repository

import (
	"context"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// TimelineRepository stores the append-only complaint audit trail.
// There is deliberately no update or delete.
type TimelineRepository interface {
	Append(ctx context.Context, entry *domain.TimelineEntry) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.TimelineEntry, error)
}

type timelineRepository struct {
	db DBTX
}

// NewTimelineRepository builds repository.
func NewTimelineRepository(db DBTX) TimelineRepository {
	return &timelineRepository{db: db}
}

func (r *timelineRepository) Append(ctx context.Context, entry *domain.TimelineEntry) error {
	const query = `
        INSERT INTO complaint_timeline (complaint_id, status, comment, updated_by)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.ComplaintID,
		entry.Status,
		entry.Comment,
		entry.UpdatedBy,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *timelineRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.TimelineEntry, error) {
	const query = `
        SELECT id, complaint_id, status, comment, updated_by, created_at
        FROM complaint_timeline WHERE complaint_id=$1 ORDER BY created_at ASC, seq ASC`
	rows, err := r.db.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimelineEntry
	for rows.Next() {
		var entry domain.TimelineEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.Status,
			&entry.Comment,
			&entry.UpdatedBy,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
