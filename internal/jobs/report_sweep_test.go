package jobs

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeboard/internal/metrics"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
	"noticeboard/internal/testutil"
)

func TestReportSweep_RemovesOnlyDangling(t *testing.T) {
	conn := testutil.NewDB(t)
	logger, logs := testutil.NewObservedLogger()
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), logger)
	repos := repository.New(conn)

	owner := testutil.CreateUser(t, conn, "owner", models.RoleUser)
	reporter := testutil.CreateUser(t, conn, "reporter", models.RoleUser)
	category := testutil.CreateCategory(t, conn, "General")
	announcement := testutil.CreateAnnouncement(t, conn, owner, category, "Garage sale")
	comment := testutil.CreateComment(t, conn, owner, announcement, nil, "come by")

	live := testutil.CreateReport(t, conn, reporter, models.CommentTarget(comment.ID), models.ReportOpen)
	gone := testutil.CreateReport(t, conn, reporter, models.CommentTarget(comment.ID+100), models.ReportReviewed)
	goneAnnouncement := testutil.CreateReport(t, conn, reporter, models.AnnouncementTarget(announcement.ID+100), models.ReportOpen)

	sweep := NewReportSweep(repos.Reports, logger, m)

	removed, err := sweep.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	var remaining []models.Report
	require.NoError(t, conn.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, live.ID, remaining[0].ID)
	assert.NotEqual(t, gone.ID, remaining[0].ID)
	assert.NotEqual(t, goneAnnouncement.ID, remaining[0].ID)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.DanglingReportsSwept))
	assert.Equal(t, 1, logs.FilterMessage("Removed dangling reports").Len())

	// A second pass has nothing left to do.
	removed, err = sweep.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestSchedule_RejectsBadExpression(t *testing.T) {
	logger, _ := testutil.NewObservedLogger()
	sweep := NewReportSweep(nil, logger, nil)

	_, err := Schedule("not a schedule", sweep)
	assert.Error(t, err)

	c, err := Schedule("@every 10m", sweep)
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
}
