package repository

import (
	"context"

	"gorm.io/gorm"

	"noticeboard/internal/models"
)

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, id uint) (*models.Report, error)
	Exists(ctx context.Context, reporterID uint, target models.Target) (bool, error)
	FindByStatus(ctx context.Context, status models.ReportStatus) ([]*models.Report, error)
	FindByReporter(ctx context.Context, reporterID uint) ([]*models.Report, error)
	FindByTarget(ctx context.Context, target models.Target) ([]*models.Report, error)
	FindDangling(ctx context.Context) ([]*models.Report, error)
	UpdateStatus(ctx context.Context, id uint, status models.ReportStatus) error
	Delete(ctx context.Context, id uint) error
	DeleteByIDs(ctx context.Context, ids []uint) error
	DeleteByTargets(ctx context.Context, kind models.TargetType, targetIDs []uint) (int64, error)
	DeleteByReporter(ctx context.Context, reporterID uint) error
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return conn(ctx, r.db).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := conn(ctx, r.db).First(&report, id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// Exists reports whether reporterID already filed a report against target.
func (r *reportRepository) Exists(ctx context.Context, reporterID uint, target models.Target) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Report{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ?", reporterID, target.Kind, target.ID).
		Count(&count).Error
	return count > 0, err
}

func (r *reportRepository) FindByStatus(ctx context.Context, status models.ReportStatus) ([]*models.Report, error) {
	var reports []*models.Report
	err := conn(ctx, r.db).
		Preload("Reporter").
		Where("status = ?", status).
		Order("created_at DESC, id DESC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepository) FindByReporter(ctx context.Context, reporterID uint) ([]*models.Report, error) {
	var reports []*models.Report
	err := conn(ctx, r.db).
		Where("reporter_id = ?", reporterID).
		Order("created_at DESC, id DESC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepository) FindByTarget(ctx context.Context, target models.Target) ([]*models.Report, error) {
	var reports []*models.Report
	err := conn(ctx, r.db).
		Where("target_type = ? AND target_id = ?", target.Kind, target.ID).
		Order("id ASC").
		Find(&reports).Error
	return reports, err
}

// FindDangling returns reports whose target row no longer exists.
func (r *reportRepository) FindDangling(ctx context.Context) ([]*models.Report, error) {
	var reports []*models.Report
	err := conn(ctx, r.db).
		Where("target_type = ? AND NOT EXISTS (SELECT 1 FROM comments WHERE comments.id = reports.target_id)", models.TargetComment).
		Or("target_type = ? AND NOT EXISTS (SELECT 1 FROM announcements WHERE announcements.id = reports.target_id)", models.TargetAnnouncement).
		Or("target_type = ? AND NOT EXISTS (SELECT 1 FROM users WHERE users.id = reports.target_id)", models.TargetUser).
		Order("id ASC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uint, status models.ReportStatus) error {
	return conn(ctx, r.db).Model(&models.Report{}).Where("id = ?", id).Update("status", status).Error
}

func (r *reportRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Delete(&models.Report{}, id).Error
}

func (r *reportRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(ctx, r.db).Where("id IN ?", ids).Delete(&models.Report{}).Error
}

// DeleteByTargets removes every report, in any status, against the given targets.
func (r *reportRepository) DeleteByTargets(ctx context.Context, kind models.TargetType, targetIDs []uint) (int64, error) {
	if len(targetIDs) == 0 {
		return 0, nil
	}
	result := conn(ctx, r.db).
		Where("target_type = ? AND target_id IN ?", kind, targetIDs).
		Delete(&models.Report{})
	return result.RowsAffected, result.Error
}

func (r *reportRepository) DeleteByReporter(ctx context.Context, reporterID uint) error {
	return conn(ctx, r.db).Where("reporter_id = ?", reporterID).Delete(&models.Report{}).Error
}
