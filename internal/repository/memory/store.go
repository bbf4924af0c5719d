// Package memory is an in-process implementation of the repository interfaces.
// The API uses it when no Postgres DSN is configured, and tests use it as a fake.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
)

// FailFunc lets callers inject an error for an operation on a given record id.
type FailFunc func(op, id string) error

// Store keeps all records in slices guarded by a mutex.
// Transactions are serialized and roll back by restoring a snapshot; writes made
// outside a transaction while one is running may be lost on its rollback.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data state
	now  func() time.Time
	fail FailFunc
}

type state struct {
	users         []domain.User
	departments   []domain.Department
	complaints    []domain.Complaint
	timeline      []domain.TimelineEntry
	notifications []domain.Notification
	feedback      []domain.Feedback
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// SetClock overrides the time source used for generated timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// FailWhen installs an error injector; nil removes it.
func (s *Store) FailWhen(fn FailFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fn
}

func (s *Store) Repos() repository.Repositories {
	return repository.Repositories{
		Users:         &userRepository{s: s},
		Departments:   &departmentRepository{s: s},
		Complaints:    &complaintRepository{s: s},
		Timeline:      &timelineRepository{s: s},
		Notifications: &notificationRepository{s: s},
		Feedback:      &feedbackRepository{s: s},
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(ctx, s.Repos()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// check must be called with s.mu held.
func (s *Store) check(op, id string) error {
	if s.fail == nil {
		return nil
	}
	return s.fail(op, id)
}

func (s *Store) newID() string {
	return uuid.NewString()
}

func (st state) clone() state {
	return state{
		users:         append([]domain.User(nil), st.users...),
		departments:   append([]domain.Department(nil), st.departments...),
		complaints:    append([]domain.Complaint(nil), st.complaints...),
		timeline:      append([]domain.TimelineEntry(nil), st.timeline...),
		notifications: append([]domain.Notification(nil), st.notifications...),
		feedback:      append([]domain.Feedback(nil), st.feedback...),
	}
}
