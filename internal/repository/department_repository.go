package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
)

// DepartmentRepository manages the municipal departments complaints are routed to.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	GetByName(ctx context.Context, name string) (*domain.Department, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Department, error)
}

const departmentColumns = `id, name, description, is_active, created_at, updated_at`

type departmentRepository struct {
	db DBTX
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(db DBTX) DepartmentRepository {
	return &departmentRepository{db: db}
}

// Create inserts a department. A name already taken (case-insensitive) yields ErrDuplicate.
func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO departments (name, description, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`,
		dept.Name, dept.Description, dept.IsActive,
	).Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	err := r.db.QueryRow(ctx, `
        UPDATE departments SET name=$1, description=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`,
		dept.Name, dept.Description, dept.IsActive, dept.ID,
	).Scan(&dept.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	return scanDepartment(r.db.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id=$1`, id))
}

func (r *departmentRepository) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	return scanDepartment(r.db.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE LOWER(name)=LOWER($1)`, name))
}

// List orders departments by name; inactive ones are hidden unless asked for.
func (r *departmentRepository) List(ctx context.Context, includeInactive bool) ([]domain.Department, error) {
	query := `SELECT ` + departmentColumns + ` FROM departments`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Department
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *dept)
	}
	return result, rows.Err()
}

func scanDepartment(row pgx.Row) (*domain.Department, error) {
	var dept domain.Department
	if err := row.Scan(&dept.ID, &dept.Name, &dept.Description, &dept.IsActive, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
		return nil, err
	}
	return &dept, nil
}
