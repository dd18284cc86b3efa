// Package testutil holds helpers shared by store-backed tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"noticeboard/internal/db"
	"noticeboard/internal/models"
	"noticeboard/internal/utils"
)

// NewDB opens a private in-memory SQLite database with the schema migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(conn))

	t.Cleanup(func() {
		_ = db.Close(conn)
	})
	return conn
}

// NewObservedLogger returns a logger whose entries can be asserted on.
func NewObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

// CreateUser inserts an active user with the given role.
func CreateUser(t *testing.T, conn *gorm.DB, name string, role models.Role) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(name + "-password")
	require.NoError(t, err)

	user := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: hash,
		Role:     role,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

// CreateCategory inserts a category.
func CreateCategory(t *testing.T, conn *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name}
	require.NoError(t, conn.Create(category).Error)
	return category
}

// CreateAnnouncement inserts a published announcement owned by owner.
func CreateAnnouncement(t *testing.T, conn *gorm.DB, owner *models.User, category *models.Category, title string) *models.Announcement {
	t.Helper()

	announcement := &models.Announcement{
		UserID:     owner.ID,
		CategoryID: category.ID,
		Location:   "Riverside",
		Title:      title,
		Content:    "Body of " + title,
		Status:     models.AnnouncementPublished,
	}
	require.NoError(t, conn.Create(announcement).Error)
	return announcement
}

// CreateComment inserts a comment; parent may be nil.
func CreateComment(t *testing.T, conn *gorm.DB, owner *models.User, announcement *models.Announcement, parent *models.Comment, body string) *models.Comment {
	t.Helper()

	comment := &models.Comment{
		AnnouncementID: announcement.ID,
		UserID:         owner.ID,
		Content:        body,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	require.NoError(t, conn.Create(comment).Error)
	return comment
}

// CreateReport inserts a report directly, bypassing service checks.
func CreateReport(t *testing.T, conn *gorm.DB, reporter *models.User, target models.Target, status models.ReportStatus) *models.Report {
	t.Helper()

	report := &models.Report{
		ReporterID: reporter.ID,
		TargetType: target.Kind,
		TargetID:   target.ID,
		Reason:     "seeded",
		Status:     status,
	}
	require.NoError(t, conn.Create(report).Error)
	return report
}
