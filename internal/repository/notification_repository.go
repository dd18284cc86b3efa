package repository

import (
	"context"

	"gorm.io/gorm"

	"noticeboard/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	FindByUser(ctx context.Context, userID uint, limit int) ([]*models.Notification, error)
	FindForUser(ctx context.Context, id, userID uint) (*models.Notification, error)
	MarkRead(ctx context.Context, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error
	Delete(ctx context.Context, id uint) error
	DeleteByUser(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return conn(ctx, r.db).Create(notification).Error
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return conn(ctx, r.db).Create(&notifications).Error
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID uint, limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// FindForUser returns the notification only if it belongs to userID.
func (r *notificationRepository) FindForUser(ctx context.Context, id, userID uint) (*models.Notification, error) {
	var notification models.Notification
	err := conn(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) error {
	return conn(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Delete(&models.Notification{}, id).Error
}

func (r *notificationRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return conn(ctx, r.db).Where("user_id = ?", userID).Delete(&models.Notification{}).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
