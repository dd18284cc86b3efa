package services

import (
	"context"

	"go.uber.org/zap"

	"noticeboard/internal/apperr"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

func NewNotificationService(repos *repository.Repositories, logger *zap.Logger) *NotificationService {
	return &NotificationService{repos: repos, logger: logger}
}

// Notify sends one notification to userID. actorID may be nil for system
// messages.
func (s *NotificationService) Notify(ctx context.Context, userID uint, actorID *uint, notificationType models.NotificationType, message string) error {
	notification := &models.Notification{
		UserID:  userID,
		ActorID: actorID,
		Type:    notificationType,
		Message: message,
	}
	if err := s.repos.Notifications.Create(ctx, notification); err != nil {
		return apperr.Internal("failed to create notification", err)
	}
	return nil
}

// NotifyAdmins sends the same notification to every administrator.
func (s *NotificationService) NotifyAdmins(ctx context.Context, actorID *uint, notificationType models.NotificationType, message string) error {
	admins, err := s.repos.Users.FindAdmins(ctx)
	if err != nil {
		return apperr.Internal("failed to load administrators", err)
	}

	notifications := make([]*models.Notification, 0, len(admins))
	for _, admin := range admins {
		if actorID != nil && admin.ID == *actorID {
			continue
		}
		notifications = append(notifications, &models.Notification{
			UserID:  admin.ID,
			ActorID: actorID,
			Type:    notificationType,
			Message: message,
		})
	}
	if len(notifications) == 0 {
		return nil
	}

	if err := s.repos.Notifications.CreateBatch(ctx, notifications); err != nil {
		return apperr.Internal("failed to notify administrators", err)
	}
	s.logger.Debug("Administrators notified",
		zap.Int("recipients", len(notifications)),
		zap.String("type", string(notificationType)),
	)
	return nil
}

// List returns the newest notifications of userID.
func (s *NotificationService) List(ctx context.Context, userID uint, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	notifications, err := s.repos.Notifications.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal("failed to load notifications", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	if _, err := s.repos.Notifications.FindForUser(ctx, id, userID); err != nil {
		return lookupErr(err, "notification")
	}
	if err := s.repos.Notifications.MarkRead(ctx, id); err != nil {
		return apperr.Internal("failed to mark notification read", err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	if err := s.repos.Notifications.MarkAllRead(ctx, userID); err != nil {
		return apperr.Internal("failed to mark notifications read", err)
	}
	return nil
}

// Delete removes a notification owned by userID.
func (s *NotificationService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.repos.Notifications.FindForUser(ctx, id, userID); err != nil {
		return lookupErr(err, "notification")
	}
	if err := s.repos.Notifications.Delete(ctx, id); err != nil {
		return apperr.Internal("failed to delete notification", err)
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	count, err := s.repos.Notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("failed to count notifications", err)
	}
	return count, nil
}
