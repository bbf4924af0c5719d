package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yashitanamdeo/janmat-sub001/internal/auth"
	"github.com/yashitanamdeo/janmat-sub001/internal/config"
	"github.com/yashitanamdeo/janmat-sub001/internal/domain"
	"github.com/yashitanamdeo/janmat-sub001/internal/repository"
	apperrors "github.com/yashitanamdeo/janmat-sub001/pkg/util/errorutil"
)

const minPasswordLength = 6

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
}

// RegisterInput is the citizen sign-up payload.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

// Session is an issued access token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tm := deps.TokenManager
	if tm == nil {
		tm = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   tm,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a citizen account. Officer and admin accounts come from the seed.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	details := map[string]any{}
	if len(name) < 2 {
		details["name"] = "must be at least 2 characters"
	}
	if _, err := mail.ParseAddress(email); err != nil {
		details["email"] = "must be a valid email address"
	}
	if len(input.Password) < minPasswordLength {
		details["password"] = "must be at least 6 characters"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", details)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hash,
		Role:         domain.RoleCitizen,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	return s.issue(user)
}

// Login authenticates any account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if auth.NeedsRehash(user.PasswordHash, s.bcryptCost) {
		// Best effort; the login succeeds either way.
		if hash, err := auth.HashPassword(password, s.bcryptCost); err == nil {
			user.PasswordHash = hash
			_ = s.users.Update(ctx, user)
		}
	}
	return s.issue(user)
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, currentPassword, newPassword string) error {
	if user == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError("invalid password", map[string]any{"newPassword": "must be at least 6 characters"})
	}
	stored, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return notFound(err, "user", "user_id", user.ID)
	}
	if err := auth.ComparePassword(stored.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	stored.PasswordHash = hash
	return apperrors.MapError(s.users.Update(ctx, stored))
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}
