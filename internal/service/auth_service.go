package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/agent-portal/internal/auth"
	"github.com/spec-kit/agent-portal/internal/config"
	"github.com/spec-kit/agent-portal/internal/domain"
	"github.com/spec-kit/agent-portal/internal/events"
	"github.com/spec-kit/agent-portal/internal/repository"
	apperrors "github.com/spec-kit/agent-portal/pkg/util"
)

// RegisterInput carries the self-service registration payload.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Organization string
	Phone        string
	State        string
	City         string
	DocumentURLs []string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	limiter    auth.AttemptLimiter
	bcryptCost int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Limiter    auth.AttemptLimiter
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	limiter := deps.Limiter
	if limiter == nil {
		limiter = auth.NoopLimiter{}
	}
	return &AuthService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		limiter:    limiter,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new agent account. New registrations always start
// pending and not deleted, regardless of input; an admin has to approve
// the account before it can log in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewDuplicateEmail(input.Email)
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.UserRoleAgent,
		Status:       domain.UserStatusPending,
		IsDeleted:    false,
		Organization: input.Organization,
		Phone:        input.Phone,
		State:        input.State,
		City:         input.City,
		DocumentURLs: input.DocumentURLs,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.EventAgentRegistered, user, "")
	return user, nil
}

// Login authenticates an account and issues a session token. Pending
// and blocked accounts are rejected even with correct credentials.
func (s *AuthService) Login(ctx context.Context, email, password, addr string) (*domain.User, string, time.Time, error) {
	if allowed, _ := s.limiter.Allow(ctx, email, addr); !allowed {
		return nil, "", time.Time{}, apperrors.NewTooManyAttempts()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if user.IsDeleted {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	switch user.Status {
	case domain.UserStatusPending:
		return nil, "", time.Time{}, apperrors.NewAccountPending()
	case domain.UserStatusBlocked:
		return nil, "", time.Time{}, apperrors.NewAccountBlocked()
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Logout is a no-op server side: tokens are not revoked, the handler
// clears the session cookie and the client discards its copy.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, user *domain.User, actorID string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     user.ID,
		UserName:   user.Name,
		UserEmail:  user.Email,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	})
}
