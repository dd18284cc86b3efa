package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeboard/internal/apperr"
	"noticeboard/internal/models"
)

func TestNotifyAdmins_SkipsActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.admin(t, "mod1")
	second := f.admin(t, "mod2")
	f.user(t, "plain")

	require.NoError(t, f.notifications.NotifyAdmins(ctx, &first.ID, models.NotificationTypeSystem, "heads up"))

	assert.Zero(t, f.count(t, &models.Notification{}, "user_id = ?", first.ID))
	assert.EqualValues(t, 1, f.count(t, &models.Notification{}, "user_id = ?", second.ID))
	assert.EqualValues(t, 1, f.count(t, &models.Notification{}, ""))
}

func TestNotificationLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.user(t, "bob")
	stranger := f.user(t, "eve")

	require.NoError(t, f.notifications.Notify(ctx, user.ID, nil, models.NotificationTypeSystem, "one"))
	require.NoError(t, f.notifications.Notify(ctx, user.ID, nil, models.NotificationTypeSystem, "two"))

	unread, err := f.notifications.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	list, err := f.notifications.List(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "two", list[0].Message)

	err = f.notifications.MarkRead(ctx, stranger.ID, list[0].ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, f.notifications.MarkRead(ctx, user.ID, list[0].ID))
	unread, err = f.notifications.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	require.NoError(t, f.notifications.MarkAllRead(ctx, user.ID))
	unread, err = f.notifications.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	err = f.notifications.Delete(ctx, stranger.ID, list[1].ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	require.NoError(t, f.notifications.Delete(ctx, user.ID, list[1].ID))

	list, err = f.notifications.List(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
