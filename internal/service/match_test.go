package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/maxviazov/bongo-stats-service/internal/export"
	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
	"github.com/maxviazov/bongo-stats-service/internal/service"
	"github.com/maxviazov/bongo-stats-service/internal/stats"
)

func TestMatchService_CreateBecomesCurrent(t *testing.T) {
	e := loaded(t)
	ctx := context.Background()
	p := e.roster(t)[2]
	_, err := e.Session.SelectPlayer(ctx, &p.ID)
	require.NoError(t, err)

	m, err := e.Matches.CreateMatch(ctx, service.MatchInput{Opponent: "  Lions  ", Date: "2026-03-14"})
	require.NoError(t, err)

	assert.Equal(t, "Lions", m.Opponent)
	assert.Equal(t, kickoff, m.ScheduledAt, "bare date gets the default kickoff")
	assert.Empty(t, m.Events)
	assert.Nil(t, m.CurrentGoalkeeperID)
	require.Len(t, m.PlayerStats, 5)
	for _, ps := range m.PlayerStats {
		assert.Equal(t, model.PlayerStats{}, ps.Stats)
	}

	view, err := e.Session.Session(ctx)
	require.NoError(t, err)
	require.NotNil(t, view.CurrentMatch)
	assert.Equal(t, m.ID, view.CurrentMatch.ID)
	assert.Nil(t, view.SelectedPlayerID)
	assert.Contains(t, e.matches.matches, m.ID)
}

func TestMatchService_CreateValidation(t *testing.T) {
	e := loaded(t)
	bad := "data:text/plain;base64,aGVsbG8="
	cases := []struct {
		name  string
		in    service.MatchInput
		field string
	}{
		{"missing opponent", service.MatchInput{Date: "2026-03-14"}, "opponent"},
		{"missing date", service.MatchInput{Opponent: "X"}, "date"},
		{"bad date", service.MatchInput{Opponent: "X", Date: "14/03/2026"}, "date"},
		{"bad time", service.MatchInput{Opponent: "X", Date: "2026-03-14", Time: "6pm"}, "time"},
		{"negative score", service.MatchInput{Opponent: "X", Date: "2026-03-14", OpponentScore: intPtr(-1)}, "opponent_score"},
		{"bad image", service.MatchInput{Opponent: "X", Date: "2026-03-14", FieldImage: &bad}, "field_image"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Matches.CreateMatch(context.Background(), tc.in)
			require.ErrorIs(t, err, service.ErrInvalidInput)
			fields := make([]string, 0)
			for _, fe := range service.FieldErrors(err) {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tc.field)
		})
	}
	assert.Nil(t, e.state.Banner(), "validation never raises a banner")
}

func TestMatchService_UpdateWritesImmediately(t *testing.T) {
	e := loaded(t)
	ctx := context.Background()
	m, _ := e.tracking(t)
	_, err := e.Session.RecordStat(ctx, model.StatGoals)
	require.NoError(t, err)

	at := kickoff.Add(-48 * time.Hour)
	got, err := e.Matches.UpdateMatch(ctx, m.ID, service.MatchInput{
		Opponent: "Lions", ScheduledAt: &at, FieldName: "North Park", OpponentScore: intPtr(2), NetMatchTime: intPtr(50),
	})
	require.NoError(t, err)
	assert.Equal(t, "North Park", got.FieldName)
	assert.Len(t, got.Events, 1, "ledger state rides along with the details")

	assert.Contains(t, e.pusher.discards, m.ID)
	require.Len(t, e.matches.updates, 1)
	assert.Equal(t, 2, *e.matches.updates[0].OpponentScore)

	sum, err := e.Matches.MatchSummary(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, stats.ResultLoss, sum.Score.Result)
	assert.Equal(t, 1, sum.Score.Ours)
	assert.False(t, sum.Upcoming)
}

func TestMatchService_DeleteClearsCurrent(t *testing.T) {
	e := loaded(t)
	ctx := context.Background()
	m, p := e.tracking(t)
	_, err := e.Ratings.UpsertRating(ctx, m.ID, p.ID, service.RatingInput{Rating: 80})
	require.NoError(t, err)

	require.NoError(t, e.Matches.DeleteMatch(ctx, m.ID))

	view, err := e.Session.Session(ctx)
	require.NoError(t, err)
	assert.Nil(t, view.CurrentMatch)
	assert.Contains(t, e.pusher.discards, m.ID)
	rs, err := e.Ratings.ListRatings(ctx)
	require.NoError(t, err)
	assert.Empty(t, rs)

	_, err = e.Matches.GetMatch(ctx, m.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, e.Matches.DeleteMatch(ctx, m.ID), repository.ErrNotFound)
}

func TestMatchService_ListOrdersUpcomingFirst(t *testing.T) {
	e := loaded(t)
	ctx := context.Background()
	now := e.clock.Now()
	for _, d := range []time.Duration{-72 * time.Hour, 48 * time.Hour, -24 * time.Hour, 24 * time.Hour} {
		at := now.Add(d)
		_, err := e.Matches.CreateMatch(ctx, service.MatchInput{Opponent: d.String(), ScheduledAt: &at})
		require.NoError(t, err)
	}

	items, err := e.Matches.ListMatches(ctx)
	require.NoError(t, err)
	require.Len(t, items, 4)
	got := make([]string, 0, len(items))
	for _, it := range items {
		got = append(got, it.Opponent)
	}
	assert.Equal(t, []string{"48h0m0s", "24h0m0s", "-24h0m0s", "-72h0m0s"}, got)
	assert.True(t, items[0].Upcoming)
	assert.False(t, items[3].Upcoming)
	assert.Equal(t, stats.ResultPending, items[3].Score.Result)
}

func TestMatchService_FailedWriteKeepsLocalStateAndShowsBanner(t *testing.T) {
	e := loaded(t)
	ctx := context.Background()
	e.matches.fail = errBoom

	at := kickoff
	_, err := e.Matches.CreateMatch(ctx, service.MatchInput{Opponent: "X", ScheduledAt: &at})
	require.ErrorIs(t, err, errBoom)

	items, err := e.Matches.ListMatches(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1, "optimistic state is not rolled back")

	b := e.state.Banner()
	require.NotNil(t, b)
	assert.False(t, b.Persistent)
	assert.Equal(t, "Failed to create match. Please try again.", b.Message)
	assert.Contains(t, e.metrics.mutations, "match.create.error")

	view := e.Session.DismissBanner(ctx)
	assert.Nil(t, view.Banner)
}

func TestMatchService_Export(t *testing.T) {
	e := loaded(t)
	ctx := context.Background()
	m, _ := e.tracking(t)
	_, err := e.Session.RecordStat(ctx, model.StatGoals)
	require.NoError(t, err)

	data, name, err := e.Matches.ExportMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "bongo-vs-rivals-fc-2026-03-14.xlsx", name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.EventsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func intPtr(v int) *int { return &v }
