// Command seed loads departments and staff accounts into Postgres.
// Rows that already exist (by department name or user email) are left untouched.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/yashitanamdeo/janmat-sub001/internal/auth"
	"github.com/yashitanamdeo/janmat-sub001/internal/config"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/observability"
	"github.com/yashitanamdeo/janmat-sub001/internal/persistence"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
)

var departments = []domain.Department{
	{Name: "Public Works", Description: "Roads, bridges and public infrastructure"},
	{Name: "Sanitation", Description: "Waste collection and street cleaning"},
	{Name: "Water Supply", Description: "Water distribution and drainage"},
	{Name: "Electricity", Description: "Street lights and power supply"},
	{Name: "Traffic & Transport", Description: "Signals, parking and public transport"},
	{Name: "Health & Safety", Description: "Public health hazards"},
	{Name: "Parks & Recreation", Description: "Parks, playgrounds and open spaces"},
	{Name: "Building & Planning", Description: "Construction permits and violations"},
	{Name: "Environment", Description: "Pollution and tree protection"},
	{Name: "Animal Control", Description: "Stray and injured animals"},
}

type seedUser struct {
	name        string
	email       string
	role        domain.Role
	department  string
	designation string
}

var users = []seedUser{
	{name: "Admin User", email: "admin@test.com", role: domain.RoleAdmin},
	{name: "Officer Smith", email: "officer@test.com", role: domain.RoleOfficer, department: "Public Works", designation: "Assistant Engineer"},
	{name: "Officer Johnson", email: "officer2@test.com", role: domain.RoleOfficer, department: "Sanitation", designation: "Sanitary Inspector"},
	{name: "Officer Williams", email: "officer3@test.com", role: domain.RoleOfficer, department: "Water Supply", designation: "Junior Engineer"},
	{name: "John Doe", email: "citizen@test.com", role: domain.RoleCitizen},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.DSN == "" {
		logger.Fatal("POSTGRES_DSN is required for seeding")
	}

	ctx := context.Background()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "password"
	}

	store := repository.NewPostgresStore(pg.PoolHandle())
	if err := store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return seed(ctx, repos, password, cfg.Auth.BcryptCost, logger)
	}); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Info("seed complete")
}

func seed(ctx context.Context, repos repository.Repositories, password string, cost int, logger *zap.Logger) error {
	deptIDs := make(map[string]string, len(departments))
	for i := range departments {
		dept := departments[i]
		existing, err := repos.Departments.GetByName(ctx, dept.Name)
		switch {
		case err == nil:
			deptIDs[dept.Name] = existing.ID
			continue
		case !errors.Is(err, pgx.ErrNoRows):
			return err
		}
		dept.IsActive = true
		if err := repos.Departments.Create(ctx, &dept); err != nil {
			return err
		}
		deptIDs[dept.Name] = dept.ID
		logger.Info("department created", zap.String("name", dept.Name))
	}

	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return err
	}
	for _, u := range users {
		_, err := repos.Users.GetByEmail(ctx, u.email)
		if err == nil {
			continue
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		user := &domain.User{
			Name:         u.name,
			Email:        u.email,
			PasswordHash: hash,
			Role:         u.role,
			Designation:  u.designation,
		}
		if u.department != "" {
			id := deptIDs[u.department]
			user.DepartmentID = &id
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		logger.Info("user created", zap.String("email", u.email), zap.String("role", string(u.role)))
	}
	return nil
}
