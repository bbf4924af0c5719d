package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yashitanamdeo/janmat-sub001/internal/assignment"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// ComplaintFilter captures listing parameters for complaint search.
type ComplaintFilter struct {
	UserID       *string
	DepartmentID *string
	AssignedTo   *string
	Statuses     []domain.ComplaintStatus
	Urgencies    []domain.Urgency
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	// GetForUpdate reads a complaint and locks its row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	ListByCriteria(ctx context.Context, criteria assignment.Criteria) ([]domain.Complaint, error)
	CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int, error)
	CountByAssignee(ctx context.Context, statuses []domain.ComplaintStatus) (map[string]int, error)
	AssignIfUnassigned(ctx context.Context, id, officerID string, departmentID *string) error
	// AssignTo (re)assigns an open, unarchived complaint and moves it to IN_PROGRESS.
	// A nil departmentID keeps the current department.
	AssignTo(ctx context.Context, id, officerID string, departmentID *string) error
	// SetStatus changes the status only while it still equals from.
	SetStatus(ctx context.Context, id string, from, to domain.ComplaintStatus, resolvedAt *time.Time) error
	// Route sets the department of an unarchived complaint. A non-nil officerID also
	// replaces the assignee: empty unassigns, anything else assigns and moves to IN_PROGRESS.
	Route(ctx context.Context, id string, departmentID, officerID *string) error
	EscalateUrgency(ctx context.Context, id string) error
	MarkArchived(ctx context.Context, id string, at time.Time) error
}

const complaintColumns = `id, user_id, title, description, location, urgency, status, department_id,
               assigned_to, created_at, updated_at, resolved_at, archived_at`

type complaintRepository struct {
	db DBTX
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(db DBTX) ComplaintRepository {
	return &complaintRepository{db: db}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (user_id, title, description, location, urgency, status, department_id, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		complaint.UserID,
		complaint.Title,
		complaint.Description,
		complaint.Location,
		complaint.Urgency,
		complaint.Status,
		complaint.DepartmentID,
		complaint.AssignedTo,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	complaint, err := scanComplaint(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return complaint, nil
}

func (r *complaintRepository) GetForUpdate(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1 FOR UPDATE`
	return scanComplaint(r.db.QueryRow(ctx, query, id))
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, inClause("status", toAny(filter.Statuses), &args))
	}
	if len(filter.Urgencies) > 0 {
		clauses = append(clauses, inClause("urgency", toAny(filter.Urgencies), &args))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		complaintColumns, strings.Join(clauses, " AND "), limit, offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) ListByCriteria(ctx context.Context, criteria assignment.Criteria) ([]domain.Complaint, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(criteria.Statuses) > 0 {
		clauses = append(clauses, inClause("status", toAny(criteria.Statuses), &args))
	}
	if criteria.Urgency != nil {
		args = append(args, *criteria.Urgency)
		clauses = append(clauses, fmt.Sprintf("urgency=$%d", len(args)))
	}
	if criteria.ExcludeUrgency != nil {
		args = append(args, *criteria.ExcludeUrgency)
		clauses = append(clauses, fmt.Sprintf("urgency<>$%d", len(args)))
	}
	if criteria.Unassigned {
		clauses = append(clauses, "assigned_to IS NULL")
	}
	if criteria.CreatedBefore != nil {
		args = append(args, *criteria.CreatedBefore)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if criteria.ResolvedBefore != nil {
		args = append(args, *criteria.ResolvedBefore)
		clauses = append(clauses, fmt.Sprintf("resolved_at < $%d", len(args)))
	}
	if criteria.ExcludeArchived {
		clauses = append(clauses, "archived_at IS NULL")
	}

	order := "created_at ASC, id ASC"
	if criteria.OrderByUrgency {
		order = "CASE urgency WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 1 ELSE 0 END DESC, " + order
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY %s`,
		complaintColumns, strings.Join(clauses, " AND "), order)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) CountByStatus(ctx context.Context) (map[domain.ComplaintStatus]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[domain.ComplaintStatus]int)
	for rows.Next() {
		var (
			status domain.ComplaintStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		result[status] = count
	}
	return result, rows.Err()
}

func (r *complaintRepository) CountByAssignee(ctx context.Context, statuses []domain.ComplaintStatus) (map[string]int, error) {
	args := []any{}
	clauses := []string{"assigned_to IS NOT NULL"}
	if len(statuses) > 0 {
		clauses = append(clauses, inClause("status", toAny(statuses), &args))
	}
	query := fmt.Sprintf(`SELECT assigned_to, COUNT(*) FROM complaints WHERE %s GROUP BY assigned_to`,
		strings.Join(clauses, " AND "))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var (
			officerID string
			count     int
		)
		if err := rows.Scan(&officerID, &count); err != nil {
			return nil, err
		}
		result[officerID] = count
	}
	return result, rows.Err()
}

func (r *complaintRepository) AssignIfUnassigned(ctx context.Context, id, officerID string, departmentID *string) error {
	const query = `
        UPDATE complaints SET assigned_to=$1, department_id=COALESCE(department_id, $2),
            status='IN_PROGRESS', updated_at=NOW()
        WHERE id=$3 AND assigned_to IS NULL AND status IN ('PENDING','IN_PROGRESS')`
	cmd, err := r.db.Exec(ctx, query, officerID, departmentID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotApplied
	}
	return nil
}

func (r *complaintRepository) AssignTo(ctx context.Context, id, officerID string, departmentID *string) error {
	const query = `
        UPDATE complaints SET assigned_to=$1, department_id=COALESCE($2, department_id),
            status='IN_PROGRESS', updated_at=NOW()
        WHERE id=$3 AND archived_at IS NULL AND status IN ('PENDING','IN_PROGRESS')`
	return execGuarded(ctx, r.db, query, officerID, departmentID, id)
}

func (r *complaintRepository) SetStatus(ctx context.Context, id string, from, to domain.ComplaintStatus, resolvedAt *time.Time) error {
	const query = `
        UPDATE complaints SET status=$1, resolved_at=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4 AND archived_at IS NULL`
	return execGuarded(ctx, r.db, query, to, resolvedAt, id, from)
}

func (r *complaintRepository) Route(ctx context.Context, id string, departmentID, officerID *string) error {
	switch {
	case officerID == nil:
		const query = `
            UPDATE complaints SET department_id=$1, updated_at=NOW()
            WHERE id=$2 AND archived_at IS NULL`
		return execGuarded(ctx, r.db, query, departmentID, id)
	case *officerID == "":
		const query = `
            UPDATE complaints SET department_id=$1, assigned_to=NULL, updated_at=NOW()
            WHERE id=$2 AND archived_at IS NULL`
		return execGuarded(ctx, r.db, query, departmentID, id)
	default:
		const query = `
            UPDATE complaints SET department_id=$1, assigned_to=$2, status='IN_PROGRESS', updated_at=NOW()
            WHERE id=$3 AND archived_at IS NULL AND status IN ('PENDING','IN_PROGRESS')`
		return execGuarded(ctx, r.db, query, departmentID, *officerID, id)
	}
}

func (r *complaintRepository) EscalateUrgency(ctx context.Context, id string) error {
	const query = `
        UPDATE complaints SET urgency='HIGH', updated_at=NOW()
        WHERE id=$1 AND urgency<>'HIGH' AND status IN ('PENDING','IN_PROGRESS')`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotApplied
	}
	return nil
}

func (r *complaintRepository) MarkArchived(ctx context.Context, id string, at time.Time) error {
	const query = `
        UPDATE complaints SET archived_at=$1
        WHERE id=$2 AND archived_at IS NULL AND status='RESOLVED'`
	cmd, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotApplied
	}
	return nil
}

func execGuarded(ctx context.Context, db DBTX, query string, args ...any) error {
	cmd, err := db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotApplied
	}
	return nil
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var complaint domain.Complaint
	if err := row.Scan(
		&complaint.ID,
		&complaint.UserID,
		&complaint.Title,
		&complaint.Description,
		&complaint.Location,
		&complaint.Urgency,
		&complaint.Status,
		&complaint.DepartmentID,
		&complaint.AssignedTo,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
		&complaint.ResolvedAt,
		&complaint.ArchivedAt,
	); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *complaint)
	}
	return result, rows.Err()
}

func inClause(column string, values []any, args *[]any) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		*args = append(*args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(*args))
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ","))
}

func toAny[T ~string](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
