package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/service"
)

func TestLoader_SeedsDefaultRosterOnce(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.loader.Load(ctx))
	require.NoError(t, e.loader.Load(ctx))

	assert.Equal(t, 5, e.players.creates)
	ps := e.roster(t)
	require.Len(t, ps, 5)
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
		assert.Equal(t, model.FootRight, p.PreferredFoot)
		assert.Equal(t, 0, p.Bongs)
		assert.Equal(t, model.DefaultFIFAStats(), p.FIFA)
	}
	assert.Equal(t, []string{"Tonga", "Bul", "Pinky", "Was", "Wai"}, names)
}

func TestLoader_FailureRaisesPersistentBanner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.ratings.fail = errBoom

	err := e.loader.Load(ctx)
	require.ErrorIs(t, err, errBoom)

	assert.False(t, e.state.Loaded())
	b := e.state.Banner()
	require.NotNil(t, b)
	assert.True(t, b.Persistent)
	assert.Equal(t, service.LoadFailedMessage, b.Message)

	_, err = e.Players.ListPlayers(ctx)
	assert.ErrorIs(t, err, service.ErrNotLoaded)
	_, err = e.Session.RecordStat(ctx, model.StatGoals)
	assert.ErrorIs(t, err, service.ErrNotLoaded)

	// persistent banners survive dismissal and later failures
	assert.False(t, e.state.DismissBanner())
	e.state.ReportFailure("other")
	assert.Equal(t, service.LoadFailedMessage, e.state.Banner().Message)

	e.ratings.fail = nil
	view, err := e.Session.Reload(ctx)
	require.NoError(t, err)
	assert.True(t, view.Loaded)
	assert.Nil(t, view.Banner)
}

func TestLoader_BackfillsLinesForNewRosterPlayers(t *testing.T) {
	e := loaded(t)
	ctx := context.Background()
	m, _ := e.tracking(t)

	p, err := e.Players.CreatePlayer(ctx, service.PlayerInput{Name: "Newbie"})
	require.NoError(t, err)

	got, err := e.Matches.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	ps, ok := got.StatsFor(p.ID)
	require.True(t, ok)
	assert.Equal(t, model.PlayerStats{}, ps.Stats)

	// a reload aligns stored snapshots to the grown roster too
	_, err = e.Session.Reload(ctx)
	require.NoError(t, err)
	got, err = e.Matches.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, got.PlayerStats, 6)
}

func TestLoader_FailedFlushKeepsLocalState(t *testing.T) {
	e := loaded(t)
	ctx := context.Background()
	m, p := e.tracking(t)
	_, err := e.Session.RecordStat(ctx, model.StatSaves)
	require.NoError(t, err)

	e.pusher.flushErr = context.DeadlineExceeded
	_, err = e.Session.Reload(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, e.pusher.flushes)
	assert.True(t, e.state.Loaded())
	assert.Nil(t, e.state.Banner())

	got, err := e.Matches.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	line, _ := got.StatsFor(p.ID)
	assert.Equal(t, 1, line.Stats.Saves)
}
