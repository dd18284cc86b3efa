package repository

import (
	"context"

	"gorm.io/gorm"

	"noticeboard/internal/models"
)

// AnnouncementFilter narrows List. Zero values are ignored.
type AnnouncementFilter struct {
	Location   string
	CategoryID uint
	UserID     uint
	Status     models.AnnouncementStatus
	Page       int
	PageSize   int
}

type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	FindByID(ctx context.Context, id uint) (*models.Announcement, error)
	FindIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	List(ctx context.Context, filter AnnouncementFilter) ([]*models.Announcement, int64, error)
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id uint) error
	DeleteByIDs(ctx context.Context, ids []uint) error
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	return conn(ctx, r.db).Create(announcement).Error
}

func (r *announcementRepository) FindByID(ctx context.Context, id uint) (*models.Announcement, error) {
	var announcement models.Announcement
	err := conn(ctx, r.db).
		Preload("User").
		Preload("Category").
		First(&announcement, id).Error
	if err != nil {
		return nil, err
	}
	return &announcement, nil
}

func (r *announcementRepository) FindIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := conn(ctx, r.db).Model(&models.Announcement{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	return ids, err
}

// List returns one page of announcements, newest first, and the total match count.
func (r *announcementRepository) List(ctx context.Context, filter AnnouncementFilter) ([]*models.Announcement, int64, error) {
	query := conn(ctx, r.db).Model(&models.Announcement{})
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	var announcements []*models.Announcement
	err := query.
		Preload("User").
		Preload("Category").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&announcements).Error
	if err != nil {
		return nil, 0, err
	}
	return announcements, total, nil
}

func (r *announcementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	return conn(ctx, r.db).
		Model(announcement).
		Select("category_id", "location", "title", "content", "status", "image_url", "updated_at").
		Updates(announcement).Error
}

// Delete removes the announcement with its reactions and comments.
// Reports are not touched; callers sweep them in the same transaction.
func (r *announcementRepository) Delete(ctx context.Context, id uint) error {
	return r.DeleteByIDs(ctx, []uint{id})
}

func (r *announcementRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	tx := conn(ctx, r.db)
	if err := tx.Where("announcement_id IN ?", ids).Delete(&models.Reaction{}).Error; err != nil {
		return err
	}
	if err := tx.Where("announcement_id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Announcement{}).Error
}
