package services

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"noticeboard/internal/metrics"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
	"noticeboard/internal/testutil"
	"noticeboard/internal/utils"
)

type fixture struct {
	db      *gorm.DB
	repos   *repository.Repositories
	logs    *observer.ObservedLogs
	metrics *metrics.Metrics

	notifications *NotificationService
	reports       *ReportService
	reactions     *ReactionService
	auth          *AuthService
	announcements *AnnouncementService
	comments      *CommentService
	moderation    *ModerationService

	category *models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := testutil.NewDB(t)
	logger, logs := testutil.NewObservedLogger()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), logger)
	repos := repository.New(conn)
	cache, err := utils.NewCache(100, time.Minute)
	require.NoError(t, err)

	notifications := NewNotificationService(repos, logger)
	reports := NewReportService(repos, notifications, logger, m)

	return &fixture{
		db:            conn,
		repos:         repos,
		logs:          logs,
		metrics:       m,
		notifications: notifications,
		reports:       reports,
		reactions:     NewReactionService(repos, logger, m),
		auth:          NewAuthService(repos, logger),
		announcements: NewAnnouncementService(repos, cache, logger),
		comments:      NewCommentService(repos, logger),
		moderation:    NewModerationService(repos, reports, notifications, logger, m),
		category:      testutil.CreateCategory(t, conn, "General"),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	return testutil.CreateUser(t, f.db, name, models.RoleUser)
}

func (f *fixture) admin(t *testing.T, name string) *models.User {
	return testutil.CreateUser(t, f.db, name, models.RoleAdmin)
}

func (f *fixture) announcement(t *testing.T, owner *models.User, title string) *models.Announcement {
	return testutil.CreateAnnouncement(t, f.db, owner, f.category, title)
}

func (f *fixture) comment(t *testing.T, owner *models.User, a *models.Announcement, parent *models.Comment, body string) *models.Comment {
	return testutil.CreateComment(t, f.db, owner, a, parent, body)
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
