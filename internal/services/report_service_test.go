package services

import (
	"context"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeboard/internal/apperr"
	"noticeboard/internal/models"
	"noticeboard/internal/repository"
	"noticeboard/internal/testutil"
)

// hookedTransactor runs before once, ahead of the first transaction.
type hookedTransactor struct {
	repository.Transactor
	before func()
}

func (h *hookedTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if h.before != nil {
		before := h.before
		h.before = nil
		before()
	}
	return h.Transactor.WithinTransaction(ctx, fn)
}

func TestReportTarget_CreatesOpenReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	reporter := f.user(t, "alice")
	admin := f.admin(t, "mod")
	a := f.announcement(t, owner, "Bike for sale")
	c := f.comment(t, owner, a, nil, "buy it")

	report, err := f.reports.ReportTarget(ctx, reporter.ID, models.CommentTarget(c.ID), "  spam  ")
	require.NoError(t, err)

	assert.Equal(t, models.ReportOpen, report.Status)
	assert.Equal(t, "spam", report.Reason)
	assert.Equal(t, models.TargetComment, report.TargetType)
	assert.Equal(t, c.ID, report.TargetID)
	assert.Equal(t, "UTC", report.CreatedAt.Location().String())

	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ReportsCreatedTotal.WithLabelValues("comment")))
	assert.EqualValues(t, 1, f.count(t, &models.Notification{}, "user_id = ? AND type = ?", admin.ID, models.NotificationTypeReport))
}

func TestReportTarget_DuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	reporter := f.user(t, "alice")
	a := f.announcement(t, owner, "Bike for sale")

	_, err := f.reports.ReportTarget(ctx, reporter.ID, models.AnnouncementTarget(a.ID), "spam")
	require.NoError(t, err)

	_, err = f.reports.ReportTarget(ctx, reporter.ID, models.AnnouncementTarget(a.ID), "still spam")
	assert.ErrorIs(t, err, ErrAlreadyReported)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.EqualValues(t, 1, f.count(t, &models.Report{}, ""))
}

func TestReportTarget_SelfReportConflictsRegardlessOfReason(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	a := f.announcement(t, owner, "Bike for sale")
	c := f.comment(t, owner, a, nil, "mine")

	targets := []models.Target{
		models.CommentTarget(c.ID),
		models.AnnouncementTarget(a.ID),
		models.UserTarget(owner.ID),
	}
	for _, target := range targets {
		for _, reason := range []string{"spam", "", strings.Repeat("x", 600)} {
			_, err := f.reports.ReportTarget(ctx, owner.ID, target, reason)
			assert.ErrorIs(t, err, ErrSelfReport, "%s with reason len %d", target, len(reason))
			assert.Contains(t, err.Error(), "cannot report your own content")
		}
	}
	assert.Zero(t, f.count(t, &models.Report{}, ""))
}

func TestReportTarget_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	reporter := f.user(t, "alice")
	a := f.announcement(t, owner, "Bike for sale")

	tests := []struct {
		name   string
		target models.Target
		reason string
		kind   apperr.Kind
	}{
		{"missing comment", models.CommentTarget(999), "spam", apperr.KindNotFound},
		{"missing announcement", models.AnnouncementTarget(999), "spam", apperr.KindNotFound},
		{"missing user", models.UserTarget(999), "spam", apperr.KindNotFound},
		{"blank reason", models.AnnouncementTarget(a.ID), "   ", apperr.KindValidation},
		{"reason too long", models.AnnouncementTarget(a.ID), strings.Repeat("x", MaxReportReasonLength+1), apperr.KindValidation},
		{"unknown kind", models.Target{Kind: "post", ID: a.ID}, "spam", apperr.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reports.ReportTarget(ctx, reporter.ID, tt.target, tt.reason)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.KindOf(err))
		})
	}

	report, err := f.reports.ReportTarget(ctx, reporter.ID, models.AnnouncementTarget(a.ID), strings.Repeat("y", MaxReportReasonLength))
	require.NoError(t, err)
	assert.Len(t, report.Reason, MaxReportReasonLength)
}

func TestDeleteCommentByReport_RemovesTargetAndEveryReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	reporter := f.user(t, "alice")
	other := f.user(t, "carol")
	third := f.user(t, "dave")
	a := f.announcement(t, owner, "Bike for sale")
	c := f.comment(t, owner, a, nil, "offensive")
	reply := f.comment(t, other, a, c, "reply")
	sibling := f.comment(t, other, a, nil, "unrelated")

	trigger := testutil.CreateReport(t, f.db, reporter, models.CommentTarget(c.ID), models.ReportOpen)
	testutil.CreateReport(t, f.db, other, models.CommentTarget(c.ID), models.ReportReviewed)
	testutil.CreateReport(t, f.db, third, models.CommentTarget(c.ID), models.ReportClosed)
	testutil.CreateReport(t, f.db, reporter, models.CommentTarget(reply.ID), models.ReportOpen)
	kept := testutil.CreateReport(t, f.db, reporter, models.CommentTarget(sibling.ID), models.ReportOpen)

	ok, err := f.reports.DeleteCommentByReport(ctx, trigger.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Zero(t, f.count(t, &models.Report{}, "target_type = ? AND target_id IN ?", models.TargetComment, []uint{c.ID, reply.ID}))
	assert.Zero(t, f.count(t, &models.Comment{}, "id IN ?", []uint{c.ID, reply.ID}))
	assert.EqualValues(t, 1, f.count(t, &models.Comment{}, "id = ?", sibling.ID))
	assert.EqualValues(t, 1, f.count(t, &models.Report{}, "id = ?", kept.ID))

	entries := f.logs.FilterMessage("Deleted reported target and all its reports").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, c.ID, fields["target_id"])
	assert.EqualValues(t, trigger.ID, fields["report_id"])
	assert.EqualValues(t, 4, fields["reports_removed"])
}

func TestDeleteAnnouncementByReport_RemovesCommentsAndTheirReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	reporter := f.user(t, "alice")
	a := f.announcement(t, owner, "Scam")
	c := f.comment(t, reporter, a, nil, "this is a scam")
	require.NoError(t, f.db.Create(&models.Reaction{AnnouncementID: a.ID, UserID: reporter.ID, Type: models.ReactionDislike}).Error)

	trigger := testutil.CreateReport(t, f.db, reporter, models.AnnouncementTarget(a.ID), models.ReportOpen)
	testutil.CreateReport(t, f.db, owner, models.CommentTarget(c.ID), models.ReportOpen)

	ok, err := f.reports.DeleteAnnouncementByReport(ctx, trigger.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Zero(t, f.count(t, &models.Announcement{}, ""))
	assert.Zero(t, f.count(t, &models.Comment{}, ""))
	assert.Zero(t, f.count(t, &models.Reaction{}, ""))
	assert.Zero(t, f.count(t, &models.Report{}, ""))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.TargetsRemovedTotal.WithLabelValues("announcement")))
}

func TestDeleteByReport_TargetAlreadyGone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	reporter := f.user(t, "alice")
	other := f.user(t, "carol")
	a := f.announcement(t, owner, "Bike for sale")
	c := f.comment(t, owner, a, nil, "gone soon")

	trigger := testutil.CreateReport(t, f.db, reporter, models.CommentTarget(c.ID), models.ReportOpen)
	sibling := testutil.CreateReport(t, f.db, other, models.CommentTarget(c.ID), models.ReportOpen)
	require.NoError(t, f.db.Delete(&models.Comment{}, c.ID).Error)

	ok, err := f.reports.DeleteCommentByReport(ctx, trigger.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Zero(t, f.count(t, &models.Report{}, "id = ?", trigger.ID))
	assert.EqualValues(t, 1, f.count(t, &models.Report{}, "id = ?", sibling.ID))
	assert.Equal(t, 1, f.logs.FilterMessage("Reported target no longer exists, removing dangling report").Len())
}

func TestDeleteByReport_KindMismatchDoesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	reporter := f.user(t, "alice")
	a := f.announcement(t, owner, "Bike for sale")
	c := f.comment(t, owner, a, nil, "hello")

	announcementReport := testutil.CreateReport(t, f.db, reporter, models.AnnouncementTarget(a.ID), models.ReportOpen)
	commentReport := testutil.CreateReport(t, f.db, reporter, models.CommentTarget(c.ID), models.ReportOpen)

	ok, err := f.reports.DeleteCommentByReport(ctx, announcementReport.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.reports.DeleteAnnouncementByReport(ctx, commentReport.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.EqualValues(t, 2, f.count(t, &models.Report{}, ""))
	assert.EqualValues(t, 1, f.count(t, &models.Announcement{}, ""))
	assert.EqualValues(t, 1, f.count(t, &models.Comment{}, ""))
	assert.Equal(t, 2, f.logs.FilterMessage("Report target type mismatch").Len())
}

func TestDeleteByReport_MissingReport(t *testing.T) {
	f := newFixture(t)

	ok, err := f.reports.DeleteAnnouncementByReport(context.Background(), 4242)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, f.logs.FilterMessage("Report not found for deletion").Len())
}

func TestReportWorkflow_TwoReportersOneComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.user(t, "a")
	b := f.user(t, "b")
	d := f.user(t, "d")
	post := f.announcement(t, b, "Neighbourhood watch")
	comment := f.comment(t, b, post, nil, "buy cheap pills")

	reportA, err := f.reports.ReportTarget(ctx, a.ID, models.CommentTarget(comment.ID), "spam")
	require.NoError(t, err)
	reportD, err := f.reports.ReportTarget(ctx, d.ID, models.CommentTarget(comment.ID), "also spam")
	require.NoError(t, err)

	ok, err := f.reports.DeleteCommentByReport(ctx, reportA.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.reports.Get(ctx, reportA.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = f.reports.Get(ctx, reportD.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Zero(t, f.count(t, &models.Comment{}, "id = ?", comment.ID))
}

func TestDeleteByReport_TargetGoneBeforeTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	reporter := f.user(t, "alice")
	a := f.announcement(t, owner, "Bike for sale")
	c := f.comment(t, owner, a, nil, "spam")
	report := testutil.CreateReport(t, f.db, reporter, models.CommentTarget(c.ID), models.ReportOpen)

	// Another moderator removes the comment after the report was loaded.
	f.repos.Tx = &hookedTransactor{
		Transactor: f.repos.Tx,
		before: func() {
			require.NoError(t, f.db.Delete(&models.Comment{}, c.ID).Error)
		},
	}

	ok, err := f.reports.DeleteCommentByReport(ctx, report.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Zero(t, f.count(t, &models.Report{}, "id = ?", report.ID))
	assert.Equal(t, 0, f.logs.FilterMessage("Deleted reported target and all its reports").Len())
	assert.Equal(t, 1, f.logs.FilterMessage("Reported target no longer exists, removing dangling report").Len())
	assert.Zero(t, promtest.ToFloat64(f.metrics.TargetsRemovedTotal.WithLabelValues("comment")))
}

func TestSetStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	reporter := f.user(t, "alice")
	a := f.announcement(t, owner, "Bike for sale")
	report := testutil.CreateReport(t, f.db, reporter, models.AnnouncementTarget(a.ID), models.ReportOpen)

	ok, err := f.reports.SetStatus(ctx, 999, models.ReportClosed)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.reports.SetStatus(ctx, report.ID, "archived")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	ok, err = f.reports.SetStatus(ctx, report.ID, models.ReportReviewed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.reports.SetStatus(ctx, report.ID, models.ReportReviewed)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.reports.SetStatus(ctx, report.ID, models.ReportClosed)
	require.NoError(t, err)
	assert.True(t, ok)

	// Closed reports can be reopened or sent back to review.
	ok, err = f.reports.SetStatus(ctx, report.ID, models.ReportOpen)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err := f.reports.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportOpen, got.Status)

	_, err = f.reports.SetStatus(ctx, report.ID, models.ReportClosed)
	require.NoError(t, err)
	ok, err = f.reports.SetStatus(ctx, report.ID, models.ReportReviewed)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = f.reports.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportReviewed, got.Status)
}

func TestReportListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	reporter := f.user(t, "alice")
	a := f.announcement(t, owner, "Bike for sale")
	c := f.comment(t, owner, a, nil, "hi")

	testutil.CreateReport(t, f.db, reporter, models.AnnouncementTarget(a.ID), models.ReportOpen)
	testutil.CreateReport(t, f.db, reporter, models.CommentTarget(c.ID), models.ReportClosed)

	open, err := f.reports.ListByStatus(ctx, models.ReportOpen)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	mine, err := f.reports.ListByReporter(ctx, reporter.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	forComment, err := f.reports.ListForTarget(ctx, models.CommentTarget(c.ID))
	require.NoError(t, err)
	require.Len(t, forComment, 1)
	assert.Equal(t, models.ReportClosed, forComment[0].Status)

	_, err = f.reports.ListByStatus(ctx, "bogus")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
