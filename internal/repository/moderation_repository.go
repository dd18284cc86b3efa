package repository

import (
	"context"

	"gorm.io/gorm"

	"noticeboard/internal/models"
)

// ModerationRepository is append-only: audit rows are never updated or deleted.
type ModerationRepository interface {
	Create(ctx context.Context, action *models.ModerationAction) error
	FindRecent(ctx context.Context, limit int) ([]*models.ModerationAction, error)
	FindByTarget(ctx context.Context, target models.Target) ([]*models.ModerationAction, error)
}

type moderationRepository struct {
	db *gorm.DB
}

func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

func (r *moderationRepository) Create(ctx context.Context, action *models.ModerationAction) error {
	return conn(ctx, r.db).Create(action).Error
}

func (r *moderationRepository) FindRecent(ctx context.Context, limit int) ([]*models.ModerationAction, error) {
	var actions []*models.ModerationAction
	err := conn(ctx, r.db).Order("created_at DESC, id DESC").Limit(limit).Find(&actions).Error
	return actions, err
}

func (r *moderationRepository) FindByTarget(ctx context.Context, target models.Target) ([]*models.ModerationAction, error) {
	var actions []*models.ModerationAction
	err := conn(ctx, r.db).
		Where("target_type = ? AND target_id = ?", target.Kind, target.ID).
		Order("id ASC").
		Find(&actions).Error
	return actions, err
}
