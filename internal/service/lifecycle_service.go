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

// LifecycleService centralizes every admin-driven status transition on
// agent accounts. All role and existence guards live here, so no call
// site can mutate status without passing through them. Callers must
// already have passed the admin route guard.
type LifecycleService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	bcryptCost int
}

// LifecycleDependencies encapsulates collaborators.
type LifecycleDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewLifecycleService builds the service.
func NewLifecycleService(cfg config.Config, deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Approve transitions a pending account to active and records the
// approving admin.
func (s *LifecycleService) Approve(ctx context.Context, targetID, adminID string) (*domain.User, error) {
	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateStatus(ctx, target.ID, domain.UserStatusActive, &adminID, nil); err != nil {
		return nil, s.mapUpdateErr(err)
	}
	target.Status = domain.UserStatusActive
	target.ApprovedBy = &adminID

	s.publish(ctx, events.EventAgentApproved, target, adminID)
	return target, nil
}

// Reject transitions a pending account to blocked.
func (s *LifecycleService) Reject(ctx context.Context, targetID, adminID string) (*domain.User, error) {
	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateStatus(ctx, target.ID, domain.UserStatusBlocked, nil, nil); err != nil {
		return nil, s.mapUpdateErr(err)
	}
	target.Status = domain.UserStatusBlocked

	s.publish(ctx, events.EventAgentRejected, target, adminID)
	return target, nil
}

// Block transitions an account to blocked. Admin accounts can never be
// blocked.
func (s *LifecycleService) Block(ctx context.Context, targetID, adminID string) (*domain.User, error) {
	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() {
		return nil, apperrors.NewForbidden("admin accounts cannot be blocked")
	}

	if err := s.users.UpdateStatus(ctx, target.ID, domain.UserStatusBlocked, nil, &adminID); err != nil {
		return nil, s.mapUpdateErr(err)
	}
	target.Status = domain.UserStatusBlocked
	target.BlockedBy = &adminID

	s.publish(ctx, events.EventAgentBlocked, target, adminID)
	return target, nil
}

// Unblock transitions a blocked account back to active.
func (s *LifecycleService) Unblock(ctx context.Context, targetID, adminID string) (*domain.User, error) {
	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateStatus(ctx, target.ID, domain.UserStatusActive, nil, nil); err != nil {
		return nil, s.mapUpdateErr(err)
	}
	target.Status = domain.UserStatusActive

	s.publish(ctx, events.EventAgentUnblocked, target, adminID)
	return target, nil
}

// SoftDelete hides an account from default views without removing it.
// Admin accounts cannot be deleted. Re-deleting an already deleted
// account succeeds and leaves it deleted. Status is left untouched:
// deletion and lifecycle status are orthogonal.
func (s *LifecycleService) SoftDelete(ctx context.Context, targetID, adminID string) (*domain.User, error) {
	target, err := s.getTarget(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() {
		return nil, apperrors.NewForbidden("admin accounts cannot be deleted")
	}

	if err := s.users.SetDeleted(ctx, target.ID, &adminID); err != nil {
		return nil, s.mapUpdateErr(err)
	}
	target.IsDeleted = true
	target.DeletedBy = &adminID

	s.publish(ctx, events.EventAgentDeleted, target, adminID)
	return target, nil
}

// AddUser creates an account directly as an admin, bypassing the
// pending state: the account is active immediately.
func (s *LifecycleService) AddUser(ctx context.Context, input RegisterInput, adminID string) (*domain.User, error) {
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
		Status:       domain.UserStatusActive,
		ApprovedBy:   &adminID,
		Organization: input.Organization,
		Phone:        input.Phone,
		State:        input.State,
		City:         input.City,
		DocumentURLs: input.DocumentURLs,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListAll returns every non-deleted account.
func (s *LifecycleService) ListAll(ctx context.Context) ([]domain.User, error) {
	deleted := false
	return s.list(ctx, repository.ListFilter{Deleted: &deleted})
}

// ListPending returns accounts awaiting approval.
func (s *LifecycleService) ListPending(ctx context.Context) ([]domain.User, error) {
	return s.listByStatus(ctx, domain.UserStatusPending)
}

// ListBlocked returns blocked accounts.
func (s *LifecycleService) ListBlocked(ctx context.Context) ([]domain.User, error) {
	return s.listByStatus(ctx, domain.UserStatusBlocked)
}

// ListDeleted returns soft-deleted accounts regardless of status.
func (s *LifecycleService) ListDeleted(ctx context.Context) ([]domain.User, error) {
	deleted := true
	return s.list(ctx, repository.ListFilter{Deleted: &deleted})
}

func (s *LifecycleService) listByStatus(ctx context.Context, status domain.UserStatus) ([]domain.User, error) {
	deleted := false
	return s.list(ctx, repository.ListFilter{Status: &status, Deleted: &deleted})
}

func (s *LifecycleService) list(ctx context.Context, filter repository.ListFilter) ([]domain.User, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

func (s *LifecycleService) getTarget(ctx context.Context, targetID string) (*domain.User, error) {
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": targetID})
		}
		return nil, apperrors.MapError(err)
	}
	return target, nil
}

func (s *LifecycleService) mapUpdateErr(err error) error {
	// Target raced away between the read and the write.
	if err == pgx.ErrNoRows {
		return apperrors.NewNotFound("user", nil)
	}
	return apperrors.MapError(err)
}

func (s *LifecycleService) publish(ctx context.Context, eventType events.EventType, user *domain.User, actorID string) {
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
