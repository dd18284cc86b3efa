package services

import (
	"context"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticeboard/internal/apperr"
)

func TestToggleLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	fan := f.user(t, "alice")
	a := f.announcement(t, owner, "Street party")

	liked, err := f.reactions.ToggleLike(ctx, a.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	counts, err := f.reactions.Counts(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, ReactionCounts{Likes: 1}, counts)

	liked, err = f.reactions.ToggleLike(ctx, a.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	counts, err = f.reactions.Counts(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, ReactionCounts{}, counts)

	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ReactionsToggledTotal.WithLabelValues("like", "added")))
	assert.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ReactionsToggledTotal.WithLabelValues("like", "removed")))
}

func TestToggleDislike_SwitchesExistingLike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "bob")
	critic := f.user(t, "carol")
	a := f.announcement(t, owner, "Street party")

	_, err := f.reactions.ToggleLike(ctx, a.ID, critic.ID)
	require.NoError(t, err)

	disliked, err := f.reactions.ToggleDislike(ctx, a.ID, critic.ID)
	require.NoError(t, err)
	assert.True(t, disliked)

	counts, err := f.reactions.Counts(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, ReactionCounts{Dislikes: 1}, counts)
}

func TestToggleLike_MissingAnnouncement(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "alice")

	_, err := f.reactions.ToggleLike(context.Background(), 404, user.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
