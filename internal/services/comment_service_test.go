package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeboard/internal/apperr"
	"noticeboard/internal/models"
	"noticeboard/internal/testutil"
)

func TestCommentCreate_Threading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	neighbour := f.user(t, "alice")
	actor := models.ActorFor(neighbour)
	a := f.announcement(t, owner, "Book swap")
	b := f.announcement(t, owner, "Yoga")

	top, err := f.comments.Create(ctx, actor, a.ID, nil, "  count me in  ")
	require.NoError(t, err)
	assert.Equal(t, "count me in", top.Content)
	assert.True(t, top.IsTopLevel())

	reply, err := f.comments.Create(ctx, models.ActorFor(owner), a.ID, &top.ID, "great")
	require.NoError(t, err)
	assert.Equal(t, top.ID, *reply.ParentID)

	_, err = f.comments.Create(ctx, actor, a.ID, &reply.ID, "nested")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.comments.Create(ctx, actor, b.ID, &top.ID, "wrong announcement")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	missing := uint(999)
	_, err = f.comments.Create(ctx, actor, a.ID, &missing, "orphan")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.comments.Create(ctx, actor, 999, nil, "nowhere")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.comments.Create(ctx, actor, a.ID, nil, "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	topLevel, err := f.comments.ListTopLevel(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, topLevel, 1)
	assert.EqualValues(t, 1, topLevel[0].ReplyCount)

	replies, err := f.comments.ListReplies(ctx, top.ID)
	require.NoError(t, err)
	require.Len(t, replies, 1)
	assert.Equal(t, reply.ID, replies[0].ID)
}

func TestCommentCreate_BlockedUser(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "bob")
	blocked := f.user(t, "mallory")
	require.NoError(t, f.db.Model(blocked).Update("status", models.UserStatusBlocked).Error)
	a := f.announcement(t, owner, "Book swap")

	_, err := f.comments.Create(context.Background(), models.ActorFor(blocked), a.ID, nil, "hi")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestCommentUpdateAndDelete_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	author := f.user(t, "alice")
	reporter := f.user(t, "carol")
	a := f.announcement(t, owner, "Book swap")
	c := f.comment(t, author, a, nil, "first")
	reply := f.comment(t, owner, a, c, "reply")
	testutil.CreateReport(t, f.db, reporter, models.CommentTarget(c.ID), models.ReportOpen)
	testutil.CreateReport(t, f.db, reporter, models.CommentTarget(reply.ID), models.ReportReviewed)

	_, err := f.comments.Update(ctx, models.ActorFor(owner), c.ID, "hijack")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	updated, err := f.comments.Update(ctx, models.ActorFor(author), c.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	err = f.comments.Delete(ctx, models.ActorFor(owner), c.ID)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, f.comments.Delete(ctx, models.ActorFor(author), c.ID))
	assert.Zero(t, f.count(t, &models.Comment{}, ""))
	assert.Zero(t, f.count(t, &models.Report{}, ""))
}
