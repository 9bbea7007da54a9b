package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/agent-portal/internal/config"
	"github.com/spec-kit/agent-portal/internal/domain"
	"github.com/spec-kit/agent-portal/internal/notification"
	"github.com/spec-kit/agent-portal/internal/repository"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
			CookieName:            "portal_session",
		},
	}
}

// memoryUserRepo is an in-memory repository.UserRepository used across
// the service tests.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memoryUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *memoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memoryUserRepo) UpdateStatus(_ context.Context, id string, status domain.UserStatus, approvedBy, blockedBy *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Status = status
	if approvedBy != nil {
		user.ApprovedBy = approvedBy
	}
	if blockedBy != nil {
		user.BlockedBy = blockedBy
	}
	user.UpdatedAt = time.Now()
	return nil
}

func (r *memoryUserRepo) SetDeleted(_ context.Context, id string, deletedBy *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.IsDeleted = true
	if deletedBy != nil {
		user.DeletedBy = deletedBy
	}
	user.UpdatedAt = time.Now()
	return nil
}

func (r *memoryUserRepo) List(_ context.Context, filter repository.ListFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0)
	for _, user := range r.users {
		if filter.Status != nil && user.Status != *filter.Status {
			continue
		}
		if filter.Deleted != nil && user.IsDeleted != *filter.Deleted {
			continue
		}
		out = append(out, *user)
	}
	return out, nil
}

func (r *memoryUserRepo) seed(user *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	clone := *user
	r.users[user.ID] = &clone
	return user
}

// recordingSender captures sent notifications for assertions.
type recordingSender struct {
	mu   sync.Mutex
	sent []sentNotification
	fail bool
}

type sentNotification struct {
	Kind      notification.Kind
	Recipient string
}

func (s *recordingSender) Send(kind notification.Kind, recipient string, _ notification.TemplateData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentNotification{Kind: kind, Recipient: recipient})
	if s.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (s *recordingSender) all() []sentNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentNotification{}, s.sent...)
}

// denyLimiter rejects every attempt.
type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string, string) (bool, error) {
	return false, nil
}
