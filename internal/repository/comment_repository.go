package repository

import (
	"context"

	"gorm.io/gorm"

	"noticeboard/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id uint) (*models.Comment, error)
	FindTopLevel(ctx context.Context, announcementID uint) ([]*models.Comment, error)
	FindReplies(ctx context.Context, parentID uint) ([]*models.Comment, error)
	FindReplyIDs(ctx context.Context, parentIDs []uint) ([]uint, error)
	FindIDsByAnnouncements(ctx context.Context, announcementIDs []uint) ([]uint, error)
	FindIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	CountByAnnouncement(ctx context.Context, announcementID uint) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	DeleteByIDs(ctx context.Context, ids []uint) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return conn(ctx, r.db).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := conn(ctx, r.db).Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindTopLevel returns comments without a parent, oldest first, with reply counts.
func (r *commentRepository) FindTopLevel(ctx context.Context, announcementID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := conn(ctx, r.db).
		Preload("User").
		Where("announcement_id = ? AND parent_id IS NULL", announcementID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil || len(comments) == 0 {
		return comments, err
	}

	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	var counts []struct {
		ParentID uint
		Count    int64
	}
	err = conn(ctx, r.db).Model(&models.Comment{}).
		Select("parent_id, COUNT(*) AS count").
		Where("parent_id IN ?", ids).
		Group("parent_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	byParent := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byParent[c.ParentID] = c.Count
	}
	for _, c := range comments {
		c.ReplyCount = byParent[c.ID]
	}
	return comments, nil
}

func (r *commentRepository) FindReplies(ctx context.Context, parentID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := conn(ctx, r.db).
		Preload("User").
		Where("parent_id = ?", parentID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) FindReplyIDs(ctx context.Context, parentIDs []uint) ([]uint, error) {
	var ids []uint
	if len(parentIDs) == 0 {
		return ids, nil
	}
	err := conn(ctx, r.db).Model(&models.Comment{}).Where("parent_id IN ?", parentIDs).Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) FindIDsByAnnouncements(ctx context.Context, announcementIDs []uint) ([]uint, error) {
	var ids []uint
	if len(announcementIDs) == 0 {
		return ids, nil
	}
	err := conn(ctx, r.db).Model(&models.Comment{}).Where("announcement_id IN ?", announcementIDs).Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) FindIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Model(&models.Comment{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

func (r *commentRepository) CountByAnnouncement(ctx context.Context, announcementID uint) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Comment{}).Where("announcement_id = ?", announcementID).Count(&count).Error
	return count, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return conn(ctx, r.db).Model(comment).Select("content", "updated_at").Updates(comment).Error
}

func (r *commentRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(ctx, r.db).Where("id IN ?", ids).Delete(&models.Comment{}).Error
}
