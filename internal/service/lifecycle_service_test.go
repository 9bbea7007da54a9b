package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/agent-portal/internal/domain"
	"github.com/spec-kit/agent-portal/internal/events"
	"github.com/spec-kit/agent-portal/internal/notification"
	"github.com/spec-kit/agent-portal/internal/observability"
	"github.com/spec-kit/agent-portal/internal/service"
	apperrors "github.com/spec-kit/agent-portal/pkg/util"
)

func newLifecycleService(repo *memoryUserRepo, dispatcher events.Dispatcher) *service.LifecycleService {
	return service.NewLifecycleService(testConfig(), service.LifecycleDependencies{
		UserRepo:   repo,
		Dispatcher: dispatcher,
	})
}

func seedAgent(repo *memoryUserRepo, email string, status domain.UserStatus) *domain.User {
	return repo.seed(&domain.User{
		Name:   "Agent " + email,
		Email:  email,
		Role:   domain.UserRoleAgent,
		Status: status,
	})
}

func seedAdmin(repo *memoryUserRepo, email string) *domain.User {
	return repo.seed(&domain.User{
		Name:   "Admin",
		Email:  email,
		Role:   domain.UserRoleAdmin,
		Status: domain.UserStatusActive,
	})
}

func TestApproveSetsActiveAndAudit(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newLifecycleService(repo, nil)
	agent := seedAgent(repo, "a@x.com", domain.UserStatusPending)

	updated, err := svc.Approve(context.Background(), agent.ID, "admin-1")
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusActive, updated.Status)
	require.NotNil(t, updated.ApprovedBy)
	require.Equal(t, "admin-1", *updated.ApprovedBy)

	stored, err := repo.GetByID(context.Background(), agent.ID)
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusActive, stored.Status)
}

func TestRejectSetsBlocked(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newLifecycleService(repo, nil)
	agent := seedAgent(repo, "a@x.com", domain.UserStatusPending)

	updated, err := svc.Reject(context.Background(), agent.ID, "admin-1")
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusBlocked, updated.Status)
}

func TestBlockAdminForbidden(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newLifecycleService(repo, nil)
	admin := seedAdmin(repo, "root@x.com")

	_, err := svc.Block(context.Background(), admin.ID, "admin-1")
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	// Status untouched by the rejected transition.
	stored, err := repo.GetByID(context.Background(), admin.ID)
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusActive, stored.Status)
}

func TestBlockSendsNotification(t *testing.T) {
	repo := newMemoryUserRepo()
	dispatcher := events.NewInMemoryDispatcher()
	sender := &recordingSender{}
	service.NewNotificationService(dispatcher, sender, zap.NewNop(), observability.NewMetrics()).RegisterHandlers()

	svc := newLifecycleService(repo, dispatcher)
	agent := seedAgent(repo, "a@x.com", domain.UserStatusActive)

	updated, err := svc.Block(context.Background(), agent.ID, "admin-1")
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusBlocked, updated.Status)
	require.NotNil(t, updated.BlockedBy)

	require.Eventually(t, func() bool {
		sent := sender.all()
		return len(sent) == 1 &&
			sent[0].Kind == notification.KindBlocked &&
			sent[0].Recipient == "a@x.com"
	}, time.Second, 10*time.Millisecond)
}

func TestUnblockSetsActive(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newLifecycleService(repo, nil)
	agent := seedAgent(repo, "a@x.com", domain.UserStatusBlocked)

	updated, err := svc.Unblock(context.Background(), agent.ID, "admin-1")
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusActive, updated.Status)
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newLifecycleService(repo, nil)
	agent := seedAgent(repo, "a@x.com", domain.UserStatusActive)
	ctx := context.Background()

	first, err := svc.SoftDelete(ctx, agent.ID, "admin-1")
	require.NoError(t, err)
	require.True(t, first.IsDeleted)
	// Deletion does not disturb lifecycle status.
	require.Equal(t, domain.UserStatusActive, first.Status)

	second, err := svc.SoftDelete(ctx, agent.ID, "admin-2")
	require.NoError(t, err)
	require.True(t, second.IsDeleted)
}

func TestSoftDeleteAdminForbidden(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newLifecycleService(repo, nil)
	admin := seedAdmin(repo, "root@x.com")

	_, err := svc.SoftDelete(context.Background(), admin.ID, "admin-1")
	require.Error(t, err)
	require.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	stored, err := repo.GetByID(context.Background(), admin.ID)
	require.NoError(t, err)
	require.False(t, stored.IsDeleted)
}

func TestTransitionsOnMissingTarget(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newLifecycleService(repo, nil)
	ctx := context.Background()

	for name, op := range map[string]func() error{
		"approve":   func() error { _, err := svc.Approve(ctx, "missing", "admin-1"); return err },
		"reject":    func() error { _, err := svc.Reject(ctx, "missing", "admin-1"); return err },
		"block":     func() error { _, err := svc.Block(ctx, "missing", "admin-1"); return err },
		"unblock":   func() error { _, err := svc.Unblock(ctx, "missing", "admin-1"); return err },
		"softdelete": func() error { _, err := svc.SoftDelete(ctx, "missing", "admin-1"); return err },
	} {
		err := op()
		require.Error(t, err, name)
		require.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code, name)
	}
}

func TestAddUserIsActiveImmediately(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newLifecycleService(repo, nil)
	ctx := context.Background()

	user, err := svc.AddUser(ctx, service.RegisterInput{
		Name:     "Direct Agent",
		Email:    "direct@x.com",
		Password: "s3cret-pass",
	}, "admin-1")
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusActive, user.Status)
	require.NotNil(t, user.ApprovedBy)
	require.Equal(t, "admin-1", *user.ApprovedBy)

	_, err = svc.AddUser(ctx, service.RegisterInput{
		Name:     "Duplicate",
		Email:    "direct@x.com",
		Password: "other-pass",
	}, "admin-1")
	require.Error(t, err)
	require.Equal(t, "DUPLICATE_EMAIL", apperrors.ToDomainError(err).Code)
}

func TestListProjections(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := newLifecycleService(repo, nil)
	ctx := context.Background()

	seedAgent(repo, "pending@x.com", domain.UserStatusPending)
	seedAgent(repo, "active@x.com", domain.UserStatusActive)
	blocked := seedAgent(repo, "blocked@x.com", domain.UserStatusBlocked)
	deleted := seedAgent(repo, "gone@x.com", domain.UserStatusActive)
	require.NoError(t, repo.SetDeleted(ctx, deleted.ID, nil))

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "pending@x.com", pending[0].Email)

	blockedList, err := svc.ListBlocked(ctx)
	require.NoError(t, err)
	require.Len(t, blockedList, 1)
	require.Equal(t, blocked.Email, blockedList[0].Email)

	deletedList, err := svc.ListDeleted(ctx)
	require.NoError(t, err)
	require.Len(t, deletedList, 1)
	require.Equal(t, "gone@x.com", deletedList[0].Email)
}

func TestNotificationFailureIsSwallowed(t *testing.T) {
	repo := newMemoryUserRepo()
	dispatcher := events.NewInMemoryDispatcher()
	sender := &recordingSender{fail: true}
	metrics := observability.NewMetrics()
	service.NewNotificationService(dispatcher, sender, zap.NewNop(), metrics).RegisterHandlers()

	svc := newLifecycleService(repo, dispatcher)
	agent := seedAgent(repo, "a@x.com", domain.UserStatusPending)

	// The transition succeeds even though delivery fails.
	updated, err := svc.Approve(context.Background(), agent.ID, "admin-1")
	require.NoError(t, err)
	require.Equal(t, domain.UserStatusActive, updated.Status)

	require.Eventually(t, func() bool {
		return metrics.NotificationFailures(string(notification.KindApproved)) == 1
	}, time.Second, 10*time.Millisecond)
}
