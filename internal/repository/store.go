package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotApplied is returned by conditional updates whose guard no longer holds,
// e.g. assigning a complaint that someone else assigned in the meantime.
var ErrNotApplied = errors.New("conditional update not applied")

// ErrDuplicate is returned when an insert collides with a unique column
// (department name, user email, one feedback per complaint).
var ErrDuplicate = errors.New("duplicate record")

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// DBTX is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles every aggregate repository bound to one connection or transaction.
type Repositories struct {
	Users         UserRepository
	Departments   DepartmentRepository
	Complaints    ComplaintRepository
	Timeline      TimelineRepository
	Notifications NotificationRepository
	Feedback      FeedbackRepository
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	Repos() Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}

type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore builds a Store over a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Repos() Repositories {
	return reposFor(s.pool)
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()
	if err = fn(ctx, reposFor(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func reposFor(db DBTX) Repositories {
	return Repositories{
		Users:         NewUserRepository(db),
		Departments:   NewDepartmentRepository(db),
		Complaints:    NewComplaintRepository(db),
		Timeline:      NewTimelineRepository(db),
		Notifications: NewNotificationRepository(db),
		Feedback:      NewFeedbackRepository(db),
	}
}
