package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/authz"
	"github.com/noah-isme/egov-portal-api/internal/models"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
)

type stubNotificationRepo struct {
	findByID    func(ctx context.Context, id string) (*models.Notification, error)
	list        func(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	countUnread func(ctx context.Context, userID string) (int, error)
	markRead    func(ctx context.Context, id string) error
	markAllRead func(ctx context.Context, userID string) (int64, error)
	delete      func(ctx context.Context, id string) error
	purgeRead   func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (s *stubNotificationRepo) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	return s.findByID(ctx, id)
}

func (s *stubNotificationRepo) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	return s.list(ctx, filter)
}

func (s *stubNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	return s.countUnread(ctx, userID)
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, id string) error {
	return s.markRead(ctx, id)
}

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.markAllRead(ctx, userID)
}

func (s *stubNotificationRepo) Delete(ctx context.Context, id string) error {
	return s.delete(ctx, id)
}

func (s *stubNotificationRepo) PurgeRead(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.purgeRead(ctx, cutoff)
}

func TestNotificationServiceListScopesToCaller(t *testing.T) {
	var gotFilter models.NotificationFilter
	repo := &stubNotificationRepo{
		list: func(_ context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
			gotFilter = filter
			return []models.Notification{{ID: "n-1", UserID: "cit-1"}}, 1, nil
		},
	}
	svc := NewNotificationService(repo, 720*time.Hour, zap.NewNop())

	// a caller-supplied user filter is overridden with the caller's own ID
	citizen := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	notifications, total, err := svc.List(context.Background(), citizen, models.NotificationFilter{UserID: "cit-9"})
	require.NoError(t, err)
	assert.Equal(t, "cit-1", gotFilter.UserID)
	assert.Len(t, notifications, 1)
	assert.Equal(t, 1, total)
}

func TestNotificationServiceMarkRead(t *testing.T) {
	marked := false
	repo := &stubNotificationRepo{
		findByID: func(context.Context, string) (*models.Notification, error) {
			return &models.Notification{ID: "n-1", UserID: "cit-1"}, nil
		},
		markRead: func(context.Context, string) error {
			marked = true
			return nil
		},
	}
	svc := NewNotificationService(repo, 720*time.Hour, zap.NewNop())

	owner := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	notification, err := svc.MarkRead(context.Background(), owner, "n-1")
	require.NoError(t, err)
	assert.True(t, marked)
	assert.True(t, notification.IsRead)
}

func TestNotificationServiceMarkReadAlreadyReadIsIdempotent(t *testing.T) {
	repo := &stubNotificationRepo{
		findByID: func(context.Context, string) (*models.Notification, error) {
			return &models.Notification{ID: "n-1", UserID: "cit-1", IsRead: true}, nil
		},
		markRead: func(context.Context, string) error {
			t.Fatal("should not update an already-read notification")
			return nil
		},
	}
	svc := NewNotificationService(repo, 720*time.Hour, zap.NewNop())

	owner := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	notification, err := svc.MarkRead(context.Background(), owner, "n-1")
	require.NoError(t, err)
	assert.True(t, notification.IsRead)
}

func TestNotificationServiceOwnerOnlyEvenForAdmin(t *testing.T) {
	repo := &stubNotificationRepo{
		findByID: func(context.Context, string) (*models.Notification, error) {
			return &models.Notification{ID: "n-1", UserID: "cit-1"}, nil
		},
	}
	svc := NewNotificationService(repo, 720*time.Hour, zap.NewNop())

	admin := authz.Subject{ID: "adm-1", Role: models.RoleAdmin}
	_, err := svc.MarkRead(context.Background(), admin, "n-1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	err = svc.Delete(context.Background(), admin, "n-1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestNotificationServiceMarkAllRead(t *testing.T) {
	repo := &stubNotificationRepo{
		markAllRead: func(_ context.Context, userID string) (int64, error) {
			assert.Equal(t, "cit-1", userID)
			return 3, nil
		},
	}
	svc := NewNotificationService(repo, 720*time.Hour, zap.NewNop())

	owner := authz.Subject{ID: "cit-1", Role: models.RoleCitizen}
	n, err := svc.MarkAllRead(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestNotificationServicePurgeReadUsesRetention(t *testing.T) {
	var gotCutoff time.Time
	repo := &stubNotificationRepo{
		purgeRead: func(_ context.Context, cutoff time.Time) (int64, error) {
			gotCutoff = cutoff
			return 2, nil
		},
	}
	svc := NewNotificationService(repo, 24*time.Hour, zap.NewNop())

	svc.PurgeRead(context.Background())
	expected := time.Now().UTC().Add(-24 * time.Hour)
	assert.WithinDuration(t, expected, gotCutoff, 5*time.Second)
}
