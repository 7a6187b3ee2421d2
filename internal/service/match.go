package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/bongo-stats-service/internal/export"
	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
	"github.com/maxviazov/bongo-stats-service/internal/stats"
)

const (
	msgCreateMatchFailed = "Failed to create match. Please try again."
	msgUpdateMatchFailed = "Failed to update match. Please try again."
	msgDeleteMatchFailed = "Failed to delete match. Please try again."
)

// MatchOptions carries the tracker settings the match use cases need.
type MatchOptions struct {
	// DefaultKickoff is the HH:MM used when only a date is given.
	DefaultKickoff string
	// Location interprets Date and Time; nil means time.Local.
	Location *time.Location
}

type matchService struct {
	state   *State
	matches repository.MatchRepository
	pusher  SnapshotPusher
	metrics Metrics
	opts    MatchOptions
	log     zerolog.Logger
}

func NewMatchService(state *State, matches repository.MatchRepository, pusher SnapshotPusher, metrics Metrics, opts MatchOptions, logger zerolog.Logger) MatchService {
	l := logger.With().Str("module", "service").Str("component", "match").Logger()
	if opts.DefaultKickoff == "" {
		opts.DefaultKickoff = "18:00"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &matchService{state: state, matches: matches, pusher: pusher, metrics: metricsOrNop(metrics), opts: opts, log: l}
}

func (s *matchService) ListMatches(_ context.Context) ([]MatchListItem, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return nil, ErrNotLoaded
	}
	now := s.state.clock.Now()
	all := s.state.matchesLocked()
	stats.SortForListing(all, now)
	out := make([]MatchListItem, 0, len(all))
	for _, m := range all {
		out = append(out, MatchListItem{Match: m, Upcoming: stats.IsUpcoming(m, now), Score: stats.MatchScore(m)})
	}
	return out, nil
}

func (s *matchService) GetMatch(_ context.Context, id uuid.UUID) (model.Match, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return model.Match{}, ErrNotLoaded
	}
	m, ok := s.state.matches[id]
	if !ok {
		return model.Match{}, repository.ErrNotFound
	}
	return m.Clone(), nil
}

func (s *matchService) MatchSummary(_ context.Context, id uuid.UUID) (MatchSummary, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return MatchSummary{}, ErrNotLoaded
	}
	m, ok := s.state.matches[id]
	if !ok {
		return MatchSummary{}, repository.ErrNotFound
	}
	return s.state.summaryLocked(m), nil
}

func (s *matchService) CreateMatch(ctx context.Context, in MatchInput) (model.Match, error) {
	start := time.Now()
	m, err := s.detailsFromInput(in)
	if err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("match validation failed")
		return model.Match{}, err
	}

	s.state.mu.Lock()
	if !s.state.loaded {
		s.state.mu.Unlock()
		return model.Match{}, ErrNotLoaded
	}
	m.ID = uuid.New()
	m.Events = []model.MatchEvent{}
	m.PlayerStats = model.NewPlayerStatsLines(s.state.rosterLocked())
	now := s.state.clock.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	local := m.Clone()
	s.state.matches[m.ID] = &local
	id := m.ID
	s.state.currentMatchID = &id
	s.state.selectedPlayerID = nil
	s.state.mu.Unlock()

	out, err := s.matches.Create(ctx, m)
	s.metrics.Mutation("match", "create", err)
	if err != nil {
		s.log.Error().Err(err).Str("match_id", m.ID.String()).Str("opponent", m.Opponent).Msg("create match failed")
		s.state.ReportFailure(msgCreateMatchFailed)
		return model.Match{}, err
	}
	s.log.Info().Dur("took", time.Since(start)).Str("match_id", out.ID.String()).Msg("match created")
	return m, nil
}

// UpdateMatch replaces the editable details and writes the whole snapshot at
// once, superseding any debounced write of the same match.
func (s *matchService) UpdateMatch(ctx context.Context, id uuid.UUID, in MatchInput) (model.Match, error) {
	d, err := s.detailsFromInput(in)
	if err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Str("match_id", id.String()).Msg("match validation failed")
		return model.Match{}, err
	}

	s.state.mu.Lock()
	if !s.state.loaded {
		s.state.mu.Unlock()
		return model.Match{}, ErrNotLoaded
	}
	m, ok := s.state.matches[id]
	if !ok {
		s.state.mu.Unlock()
		return model.Match{}, repository.ErrNotFound
	}
	m.Opponent = d.Opponent
	m.ScheduledAt = d.ScheduledAt
	m.FieldName = d.FieldName
	m.FieldImage = d.FieldImage
	m.OpponentScore = d.OpponentScore
	m.NetMatchTime = d.NetMatchTime
	m.UpdatedAt = s.state.clock.Now().UTC()
	snap := m.Clone()
	if s.pusher != nil {
		s.pusher.Discard(id)
	}
	s.state.mu.Unlock()

	_, err = s.matches.UpdateMatch(ctx, snap)
	s.metrics.Mutation("match", "update", err)
	if err != nil {
		s.log.Error().Err(err).Str("match_id", id.String()).Msg("update match failed")
		s.state.ReportFailure(msgUpdateMatchFailed)
		return model.Match{}, err
	}
	return snap, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, id uuid.UUID) error {
	s.state.mu.Lock()
	if !s.state.loaded {
		s.state.mu.Unlock()
		return ErrNotLoaded
	}
	if _, ok := s.state.matches[id]; !ok {
		s.state.mu.Unlock()
		return repository.ErrNotFound
	}
	if s.pusher != nil {
		s.pusher.Discard(id)
	}
	delete(s.state.matches, id)
	delete(s.state.mvps, id)
	for k := range s.state.ratings {
		if k.MatchID == id {
			delete(s.state.ratings, k)
		}
	}
	if s.state.currentMatchID != nil && *s.state.currentMatchID == id {
		s.state.currentMatchID = nil
	}
	s.state.mu.Unlock()

	err := s.matches.Delete(ctx, id)
	s.metrics.Mutation("match", "delete", err)
	if err != nil {
		s.log.Error().Err(err).Str("match_id", id.String()).Msg("delete match failed")
		s.state.ReportFailure(msgDeleteMatchFailed)
		return err
	}
	s.log.Info().Str("match_id", id.String()).Msg("match deleted")
	return nil
}

// ExportMatch renders the match workbook and a download file name.
func (s *matchService) ExportMatch(_ context.Context, id uuid.UUID) ([]byte, string, error) {
	s.state.mu.Lock()
	if !s.state.loaded {
		s.state.mu.Unlock()
		return nil, "", ErrNotLoaded
	}
	m, ok := s.state.matches[id]
	if !ok {
		s.state.mu.Unlock()
		return nil, "", repository.ErrNotFound
	}
	snap := m.Clone()
	names := make(map[uuid.UUID]string, len(s.state.players))
	for _, p := range s.state.players {
		names[p.ID] = p.Name
	}
	s.state.mu.Unlock()

	data, err := export.MatchWorkbook(snap, names)
	if err != nil {
		s.log.Error().Err(err).Str("match_id", id.String()).Msg("export match failed")
		return nil, "", err
	}
	return data, exportFileName(snap), nil
}

var unsafeName = regexp.MustCompile(`[^a-z0-9]+`)

func exportFileName(m model.Match) string {
	opp := strings.Trim(unsafeName.ReplaceAllString(strings.ToLower(m.Opponent), "-"), "-")
	if opp == "" {
		opp = "match"
	}
	return fmt.Sprintf("bongo-vs-%s-%s.xlsx", opp, m.ScheduledAt.Format("2006-01-02"))
}

// detailsFromInput validates in and returns a match carrying only its details.
func (s *matchService) detailsFromInput(in MatchInput) (model.Match, error) {
	in.Opponent = strings.TrimSpace(in.Opponent)
	in.FieldName = strings.TrimSpace(in.FieldName)
	ferrs := fieldErrorsOf(in, matchFields)
	ferrs = append(ferrs, imageError("field_image", in.FieldImage)...)
	var at time.Time
	if len(ferrs) == 0 {
		var serrs []FieldError
		at, serrs = scheduleOf(in, s.opts.DefaultKickoff, s.opts.Location)
		ferrs = append(ferrs, serrs...)
	}
	if err := NewInvalidInputError(ferrs...); err != nil {
		return model.Match{}, err
	}
	return model.Match{
		Opponent:      in.Opponent,
		ScheduledAt:   at,
		FieldName:     in.FieldName,
		FieldImage:    emptyToNil(in.FieldImage),
		OpponentScore: copyInt(in.OpponentScore),
		NetMatchTime:  copyInt(in.NetMatchTime),
	}, nil
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// summaryLocked aggregates m for display.
func (s *State) summaryLocked(m *model.Match) MatchSummary {
	totals := stats.TeamTotals(*m)
	sum := MatchSummary{
		MatchID:     m.ID,
		Opponent:    m.Opponent,
		ScheduledAt: m.ScheduledAt,
		Upcoming:    stats.IsUpcoming(*m, s.clock.Now()),
		Score:       stats.MatchScore(*m),
		Totals:      totals,
		Events:      len(m.Events),
	}
	if v, ok := stats.PassAccuracy(totals); ok {
		sum.PassAccuracy = &v
	}
	if v, ok := stats.ShotAccuracy(totals); ok {
		sum.ShotAccuracy = &v
	}
	if r, ok := s.mvps[m.ID]; ok {
		sum.MVP = &r
	}
	return sum
}
