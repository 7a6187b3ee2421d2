package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/bongo-stats-service/internal/repository"
	"github.com/maxviazov/bongo-stats-service/internal/service"
)

func TestMVPService_SnapshotsMatchAndRating(t *testing.T) {
	e := loaded(t)
	ctx := context.Background()
	m, p := e.tracking(t)
	other := e.roster(t)[1]

	r, err := e.MVPs.SelectMVP(ctx, m.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Rating, "unrated players snapshot 0")
	assert.Equal(t, "Rivals FC", r.Opponent)
	assert.Equal(t, m.ScheduledAt, r.Date)

	_, err = e.Ratings.UpsertRating(ctx, m.ID, other.ID, service.RatingInput{Rating: 88})
	require.NoError(t, err)
	r, err = e.MVPs.SelectMVP(ctx, m.ID, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 88, r.Rating)

	list, err := e.MVPs.ListMVPs(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1, "a new pick replaces the earlier one")
	assert.Equal(t, other.ID, list[0].PlayerID)

	sum, err := e.Matches.MatchSummary(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, sum.MVP)
	assert.Equal(t, other.ID, sum.MVP.PlayerID)

	require.NoError(t, e.MVPs.ClearMVP(ctx, m.ID))
	assert.ErrorIs(t, e.MVPs.ClearMVP(ctx, m.ID), repository.ErrNotFound)
}

func TestMVPService_FailedRemoveShowsBanner(t *testing.T) {
	e := loaded(t)
	ctx := context.Background()
	m, p := e.tracking(t)
	_, err := e.MVPs.SelectMVP(ctx, m.ID, p.ID)
	require.NoError(t, err)

	e.mvps.fail = errBoom
	require.ErrorIs(t, e.MVPs.ClearMVP(ctx, m.ID), errBoom)
	require.NotNil(t, e.state.Banner())
	assert.Equal(t, "Failed to remove MVP. Please try again.", e.state.Banner().Message)
	assert.Contains(t, e.metrics.mutations, "mvp.delete.error")
}
