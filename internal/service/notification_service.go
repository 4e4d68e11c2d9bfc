package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/egov-portal-api/internal/authz"
	"github.com/noah-isme/egov-portal-api/internal/models"
	appErrors "github.com/noah-isme/egov-portal-api/pkg/errors"
)

// notificationRepository is the slice of the notification repository the
// inbox service uses.
type notificationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	PurgeRead(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationService serves the per-user notification inbox. Notifications
// are strictly owner-scoped for every role, admins included.
type NotificationService struct {
	notifications notificationRepository
	retention     time.Duration
	logger        *zap.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(notifications notificationRepository, retention time.Duration, logger *zap.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, retention: retention, logger: logger}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, sub authz.Subject, filter models.NotificationFilter) ([]models.Notification, int, error) {
	filter.UserID = sub.ID
	notifications, total, err := s.notifications.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.FromError(err)
	}
	return notifications, total, nil
}

// UnreadCount returns how many unread notifications the caller has.
func (s *NotificationService) UnreadCount(ctx context.Context, sub authz.Subject) (int, error) {
	count, err := s.notifications.CountUnread(ctx, sub.ID)
	if err != nil {
		return 0, appErrors.FromError(err)
	}
	return count, nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, sub authz.Subject, id string) (*models.Notification, error) {
	notification, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "notification not found")
	}
	if !authz.Can(sub, authz.OpNotificationAccess, authz.Scope{OwnerID: notification.UserID}) {
		return nil, appErrors.ErrForbidden
	}

	if !notification.IsRead {
		if err := s.notifications.MarkRead(ctx, id); err != nil {
			return nil, appErrors.FromError(err)
		}
		notification.IsRead = true
	}
	return notification, nil
}

// MarkAllRead flags every unread notification of the caller as read and
// returns the number updated.
func (s *NotificationService) MarkAllRead(ctx context.Context, sub authz.Subject) (int64, error) {
	n, err := s.notifications.MarkAllRead(ctx, sub.ID)
	if err != nil {
		return 0, appErrors.FromError(err)
	}
	return n, nil
}

// Delete removes one of the caller's notifications.
func (s *NotificationService) Delete(ctx context.Context, sub authz.Subject, id string) error {
	notification, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "notification not found")
	}
	if !authz.Can(sub, authz.OpNotificationAccess, authz.Scope{OwnerID: notification.UserID}) {
		return appErrors.ErrForbidden
	}

	if err := s.notifications.Delete(ctx, id); err != nil {
		return appErrors.FromError(err)
	}
	return nil
}

// PurgeRead removes read notifications past the retention window. Invoked
// by the scheduled cleanup job.
func (s *NotificationService) PurgeRead(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)
	n, err := s.notifications.PurgeRead(ctx, cutoff)
	if err != nil {
		s.logger.Sugar().Errorw("notification purge failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Sugar().Infow("purged read notifications", "count", n, "cutoff", cutoff)
	}
}
