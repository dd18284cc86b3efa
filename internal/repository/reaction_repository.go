package repository

import (
	"context"

	"gorm.io/gorm"

	"noticeboard/internal/models"
)

type ReactionRepository interface {
	Find(ctx context.Context, announcementID, userID uint) (*models.Reaction, error)
	Create(ctx context.Context, reaction *models.Reaction) error
	UpdateType(ctx context.Context, id uint, reactionType models.ReactionType) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context, announcementID uint, reactionType models.ReactionType) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) error
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// Find returns the user's reaction on the announcement, or ErrNotFound.
func (r *reactionRepository) Find(ctx context.Context, announcementID, userID uint) (*models.Reaction, error) {
	var reaction models.Reaction
	err := conn(ctx, r.db).
		Where("announcement_id = ? AND user_id = ?", announcementID, userID).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *reactionRepository) Create(ctx context.Context, reaction *models.Reaction) error {
	return conn(ctx, r.db).Create(reaction).Error
}

func (r *reactionRepository) UpdateType(ctx context.Context, id uint, reactionType models.ReactionType) error {
	return conn(ctx, r.db).Model(&models.Reaction{}).Where("id = ?", id).Update("type", reactionType).Error
}

func (r *reactionRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Delete(&models.Reaction{}, id).Error
}

func (r *reactionRepository) Count(ctx context.Context, announcementID uint, reactionType models.ReactionType) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Reaction{}).
		Where("announcement_id = ? AND type = ?", announcementID, reactionType).
		Count(&count).Error
	return count, err
}

func (r *reactionRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return conn(ctx, r.db).Where("user_id = ?", userID).Delete(&models.Reaction{}).Error
}
