package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yashitanamdeo/janmat-sub001/internal/assignment"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
)

type userRepository struct{ s *Store }

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.create", user.Email); err != nil {
		return err
	}
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = r.s.newID()
	}
	now := r.s.now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.data.users = append(r.s.data.users, *user)
	return nil
}

func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.update", user.ID); err != nil {
		return err
	}
	for _, u := range r.s.data.users {
		if u.ID != user.ID && strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	for i := range r.s.data.users {
		if r.s.data.users[i].ID == user.ID {
			user.UpdatedAt = r.s.now()
			r.s.data.users[i] = *user
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepository) ListByRole(_ context.Context, role domain.Role) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.list", string(role)); err != nil {
		return nil, err
	}
	var result []domain.User
	for _, u := range r.s.data.users {
		if u.Role == role {
			result = append(result, u)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *userRepository) CountByRole(_ context.Context) (map[domain.Role]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make(map[domain.Role]int)
	for _, u := range r.s.data.users {
		result[u.Role]++
	}
	return result, nil
}

type departmentRepository struct{ s *Store }

func (r *departmentRepository) Create(_ context.Context, dept *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.data.departments {
		if strings.EqualFold(d.Name, dept.Name) {
			return repository.ErrDuplicate
		}
	}
	if dept.ID == "" {
		dept.ID = r.s.newID()
	}
	now := r.s.now()
	dept.CreatedAt, dept.UpdatedAt = now, now
	r.s.data.departments = append(r.s.data.departments, *dept)
	return nil
}

func (r *departmentRepository) Update(_ context.Context, dept *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.departments {
		if r.s.data.departments[i].ID == dept.ID {
			dept.UpdatedAt = r.s.now()
			r.s.data.departments[i] = *dept
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *departmentRepository) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.data.departments {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *departmentRepository) GetByName(_ context.Context, name string) (*domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.data.departments {
		if strings.EqualFold(d.Name, name) {
			return &d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *departmentRepository) List(_ context.Context, includeInactive bool) ([]domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.Department
	for _, d := range r.s.data.departments {
		if d.IsActive || includeInactive {
			result = append(result, d)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

type complaintRepository struct{ s *Store }

// Create keeps caller-provided CreatedAt, ResolvedAt and ArchivedAt so tests and
// seeds can place complaints in the past.
func (r *complaintRepository) Create(_ context.Context, complaint *domain.Complaint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("complaints.create", complaint.ID); err != nil {
		return err
	}
	if complaint.ID == "" {
		complaint.ID = r.s.newID()
	}
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = r.s.now()
	}
	complaint.UpdatedAt = complaint.CreatedAt
	r.s.data.complaints = append(r.s.data.complaints, *complaint)
	return nil
}

func (r *complaintRepository) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := r.find(id)
	if c == nil {
		return nil, pgx.ErrNoRows
	}
	out := *c
	return &out, nil
}

// GetForUpdate needs no row lock here: WithinTx already serializes transactions.
func (r *complaintRepository) GetForUpdate(ctx context.Context, id string) (*domain.Complaint, error) {
	return r.GetByID(ctx, id)
}

func (r *complaintRepository) List(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []domain.Complaint
	for _, c := range r.s.data.complaints {
		if matchesFilter(&c, filter) {
			matched = append(matched, c)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (r *complaintRepository) ListByCriteria(_ context.Context, criteria assignment.Criteria) ([]domain.Complaint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("complaints.list_criteria", string(criteria.Mode)); err != nil {
		return nil, err
	}
	ordered := append([]domain.Complaint(nil), r.s.data.complaints...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].CreatedAt.Before(ordered[j].CreatedAt) })
	return assignment.Select(criteria, ordered), nil
}

func (r *complaintRepository) CountByStatus(_ context.Context) (map[domain.ComplaintStatus]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	result := make(map[domain.ComplaintStatus]int)
	for _, c := range r.s.data.complaints {
		result[c.Status]++
	}
	return result, nil
}

func (r *complaintRepository) CountByAssignee(_ context.Context, statuses []domain.ComplaintStatus) (map[string]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("complaints.count_by_assignee", ""); err != nil {
		return nil, err
	}
	result := make(map[string]int)
	for _, c := range r.s.data.complaints {
		if !c.IsAssigned() {
			continue
		}
		if len(statuses) > 0 && !hasStatus(statuses, c.Status) {
			continue
		}
		result[*c.AssignedTo]++
	}
	return result, nil
}

func (r *complaintRepository) AssignIfUnassigned(_ context.Context, id, officerID string, departmentID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("complaints.assign", id); err != nil {
		return err
	}
	c := r.find(id)
	if c == nil || c.IsAssigned() || !c.Status.IsOpen() {
		return repository.ErrNotApplied
	}
	assignee := officerID
	c.AssignedTo = &assignee
	if c.DepartmentID == nil && departmentID != nil {
		dept := *departmentID
		c.DepartmentID = &dept
	}
	c.Status = domain.ComplaintStatusInProgress
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *complaintRepository) AssignTo(_ context.Context, id, officerID string, departmentID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("complaints.update", id); err != nil {
		return err
	}
	c := r.find(id)
	if c == nil || c.ArchivedAt != nil || !c.Status.IsOpen() {
		return repository.ErrNotApplied
	}
	assignee := officerID
	c.AssignedTo = &assignee
	if departmentID != nil {
		dept := *departmentID
		c.DepartmentID = &dept
	}
	c.Status = domain.ComplaintStatusInProgress
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *complaintRepository) SetStatus(_ context.Context, id string, from, to domain.ComplaintStatus, resolvedAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("complaints.update", id); err != nil {
		return err
	}
	c := r.find(id)
	if c == nil || c.ArchivedAt != nil || c.Status != from {
		return repository.ErrNotApplied
	}
	c.Status = to
	c.ResolvedAt = nil
	if resolvedAt != nil {
		at := *resolvedAt
		c.ResolvedAt = &at
	}
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *complaintRepository) Route(_ context.Context, id string, departmentID, officerID *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("complaints.update", id); err != nil {
		return err
	}
	c := r.find(id)
	if c == nil || c.ArchivedAt != nil {
		return repository.ErrNotApplied
	}
	assigning := officerID != nil && *officerID != ""
	if assigning && !c.Status.IsOpen() {
		return repository.ErrNotApplied
	}
	c.DepartmentID = nil
	if departmentID != nil {
		dept := *departmentID
		c.DepartmentID = &dept
	}
	switch {
	case assigning:
		assignee := *officerID
		c.AssignedTo = &assignee
		c.Status = domain.ComplaintStatusInProgress
	case officerID != nil:
		c.AssignedTo = nil
	}
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *complaintRepository) EscalateUrgency(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("complaints.escalate", id); err != nil {
		return err
	}
	c := r.find(id)
	if c == nil || c.Urgency == domain.UrgencyHigh || !c.Status.IsOpen() {
		return repository.ErrNotApplied
	}
	c.Urgency = domain.UrgencyHigh
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *complaintRepository) MarkArchived(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("complaints.archive", id); err != nil {
		return err
	}
	c := r.find(id)
	if c == nil || c.ArchivedAt != nil || c.Status != domain.ComplaintStatusResolved {
		return repository.ErrNotApplied
	}
	archivedAt := at
	c.ArchivedAt = &archivedAt
	return nil
}

// find must be called with s.mu held.
func (r *complaintRepository) find(id string) *domain.Complaint {
	for i := range r.s.data.complaints {
		if r.s.data.complaints[i].ID == id {
			return &r.s.data.complaints[i]
		}
	}
	return nil
}

func matchesFilter(c *domain.Complaint, f repository.ComplaintFilter) bool {
	if f.UserID != nil && c.UserID != *f.UserID {
		return false
	}
	if f.DepartmentID != nil && (c.DepartmentID == nil || *c.DepartmentID != *f.DepartmentID) {
		return false
	}
	if f.AssignedTo != nil && (c.AssignedTo == nil || *c.AssignedTo != *f.AssignedTo) {
		return false
	}
	if len(f.Statuses) > 0 && !hasStatus(f.Statuses, c.Status) {
		return false
	}
	if len(f.Urgencies) > 0 {
		found := false
		for _, u := range f.Urgencies {
			if u == c.Urgency {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.CreatedFrom != nil && c.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && c.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	if f.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*f.SearchTerm))
		if term != "" && !strings.Contains(strings.ToLower(c.Title), term) &&
			!strings.Contains(strings.ToLower(c.Description), term) {
			return false
		}
	}
	return true
}

func hasStatus(statuses []domain.ComplaintStatus, s domain.ComplaintStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

type timelineRepository struct{ s *Store }

func (r *timelineRepository) Append(_ context.Context, entry *domain.TimelineEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("timeline.append", entry.ComplaintID); err != nil {
		return err
	}
	entry.ID = r.s.newID()
	entry.CreatedAt = r.s.now()
	r.s.data.timeline = append(r.s.data.timeline, *entry)
	return nil
}

func (r *timelineRepository) ListByComplaint(_ context.Context, complaintID string) ([]domain.TimelineEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var result []domain.TimelineEntry
	for _, e := range r.s.data.timeline {
		if e.ComplaintID == complaintID {
			result = append(result, e)
		}
	}
	return result, nil
}

type notificationRepository struct{ s *Store }

func (r *notificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("notifications.create", n.UserID); err != nil {
		return err
	}
	n.ID = r.s.newID()
	n.Read = false
	n.CreatedAt = r.s.now()
	r.s.data.notifications = append(r.s.data.notifications, *n)
	return nil
}

func (r *notificationRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var result []domain.Notification
	for i := len(r.s.data.notifications) - 1; i >= 0; i-- {
		if n := r.s.data.notifications[i]; n.UserID == userID {
			result = append(result, n)
		}
	}
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (r *notificationRepository) MarkRead(_ context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.data.notifications {
		n := &r.s.data.notifications[i]
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *notificationRepository) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var updated int64
	for i := range r.s.data.notifications {
		n := &r.s.data.notifications[i]
		if n.UserID == userID && !n.Read {
			n.Read = true
			updated++
		}
	}
	return updated, nil
}
