package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/agent-portal/internal/auth"
	"github.com/spec-kit/agent-portal/internal/domain"
	"github.com/spec-kit/agent-portal/internal/events"
	"github.com/spec-kit/agent-portal/internal/observability"
	"github.com/spec-kit/agent-portal/internal/service"
	apperrors "github.com/spec-kit/agent-portal/pkg/util"
)

func newAuthService(repo *memoryUserRepo, dispatcher events.Dispatcher, limiter auth.AttemptLimiter) *service.AuthService {
	return service.NewAuthService(testConfig(), service.AuthDependencies{
		UserRepo:   repo,
		Dispatcher: dispatcher,
		Limiter:    limiter,
	})
}

func registerInput(email string) service.RegisterInput {
	return service.RegisterInput{
		Name:         "Test Agent",
		Email:        email,
		Password:     "s3cret-pass",
		Organization: "EduBroker Ltd",
		Phone:        "+61 400 000 000",
		State:        "VIC",
		City:         "Melbourne",
	}
}

func TestRegisterStartsPending(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newAuthService(repo, nil, nil)

	user, err := svc.Register(context.Background(), registerInput("a@x.com"))
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusPending, user.Status)
	require.False(t, user.IsDeleted)
	require.Equal(t, domain.UserRoleAgent, user.Role)
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NotEmpty(t, user.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newAuthService(repo, nil, nil)
	ctx := context.Background()

	first, err := svc.Register(ctx, registerInput("a@x.com"))
	require.NoError(t, err)

	second := registerInput("a@x.com")
	second.Name = "Impostor"
	_, err = svc.Register(ctx, second)
	require.Error(t, err)
	require.Equal(t, "DUPLICATE_EMAIL", apperrors.ToDomainError(err).Code)

	// The original record is untouched.
	stored, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "Test Agent", stored.Name)
	require.Equal(t, domain.UserStatusPending, stored.Status)
}

func TestRegisterPublishesPendingNotification(t *testing.T) {
	repo := newMemoryUserRepo()
	dispatcher := events.NewInMemoryDispatcher()
	sender := &recordingSender{}
	service.NewNotificationService(dispatcher, sender, zap.NewNop(), observability.NewMetrics()).RegisterHandlers()

	svc := newAuthService(repo, dispatcher, nil)
	_, err := svc.Register(context.Background(), registerInput("a@x.com"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		sent := sender.all()
		return len(sent) == 1 && sent[0].Kind == "registrationPending" && sent[0].Recipient == "a@x.com"
	}, time.Second, 10*time.Millisecond)
}

func TestLoginGates(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newAuthService(repo, nil, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerInput("a@x.com"))
	require.NoError(t, err)

	// Pending accounts cannot log in, even with correct credentials.
	_, _, _, err = svc.Login(ctx, "a@x.com", "s3cret-pass", "127.0.0.1")
	require.Error(t, err)
	require.Equal(t, "ACCOUNT_PENDING", apperrors.ToDomainError(err).Code)

	require.NoError(t, repo.UpdateStatus(ctx, user.ID, domain.UserStatusBlocked, nil, nil))
	_, _, _, err = svc.Login(ctx, "a@x.com", "s3cret-pass", "127.0.0.1")
	require.Error(t, err)
	require.Equal(t, "ACCOUNT_BLOCKED", apperrors.ToDomainError(err).Code)

	require.NoError(t, repo.UpdateStatus(ctx, user.ID, domain.UserStatusActive, nil, nil))
	_, _, _, err = svc.Login(ctx, "a@x.com", "wrong-pass", "127.0.0.1")
	require.Error(t, err)
	require.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	_, _, _, err = svc.Login(ctx, "nobody@x.com", "s3cret-pass", "127.0.0.1")
	require.Error(t, err)
	require.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestApproveThenLoginSucceeds(t *testing.T) {
	repo := newMemoryUserRepo()
	authSvc := newAuthService(repo, nil, nil)
	lifecycleSvc := service.NewLifecycleService(testConfig(), service.LifecycleDependencies{UserRepo: repo})
	ctx := context.Background()

	user, err := authSvc.Register(ctx, registerInput("a@x.com"))
	require.NoError(t, err)

	_, err = lifecycleSvc.Approve(ctx, user.ID, "admin-1")
	require.NoError(t, err)

	logged, token, exp, err := authSvc.Login(ctx, "a@x.com", "s3cret-pass", "127.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, exp.After(time.Now()))
	require.Equal(t, user.ID, logged.ID)

	claims, err := authSvc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, domain.UserRoleAgent, claims.Role)
}

func TestLoginDeletedAccountRejected(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newAuthService(repo, nil, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, registerInput("a@x.com"))
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(ctx, user.ID, domain.UserStatusActive, nil, nil))
	require.NoError(t, repo.SetDeleted(ctx, user.ID, nil))

	_, _, _, err = svc.Login(ctx, "a@x.com", "s3cret-pass", "127.0.0.1")
	require.Error(t, err)
	require.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestLoginRateLimited(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newAuthService(repo, nil, denyLimiter{})

	_, _, _, err := svc.Login(context.Background(), "a@x.com", "s3cret-pass", "127.0.0.1")
	require.Error(t, err)
	require.Equal(t, "TOO_MANY_ATTEMPTS", apperrors.ToDomainError(err).Code)
}
