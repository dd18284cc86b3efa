package repository

import (
	"context"

	"gorm.io/gorm"

	"noticeboard/internal/models"
)

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]*models.Category, error)
	FindByID(ctx context.Context, id uint) (*models.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	err := conn(ctx, r.db).Order("id ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) FindByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := conn(ctx, r.db).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}
