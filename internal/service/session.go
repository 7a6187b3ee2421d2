package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/bongo-stats-service/internal/ledger"
	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
)

// Ledger actions reported in LedgerResult.Action.
const (
	ActionRecord     = "record"
	ActionUndo       = "undo"
	ActionGoalkeeper = "goalkeeper"
)

type sessionService struct {
	state   *State
	loader  *Loader
	pusher  SnapshotPusher
	metrics Metrics
	log     zerolog.Logger
}

func NewSessionService(state *State, loader *Loader, pusher SnapshotPusher, metrics Metrics, logger zerolog.Logger) SessionService {
	l := logger.With().Str("module", "service").Str("component", "session").Logger()
	return &sessionService{state: state, loader: loader, pusher: pusher, metrics: metricsOrNop(metrics), log: l}
}

// Session never fails: an unloaded state is reported through Loaded and the
// persistent banner.
func (s *sessionService) Session(_ context.Context) (SessionView, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.state.viewLocked(), nil
}

func (s *sessionService) SelectMatch(_ context.Context, id *uuid.UUID) (SessionView, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return SessionView{}, ErrNotLoaded
	}
	if id == nil {
		s.state.currentMatchID = nil
		return s.state.viewLocked(), nil
	}
	if _, ok := s.state.matches[*id]; !ok {
		return SessionView{}, repository.ErrNotFound
	}
	v := *id
	s.state.currentMatchID = &v
	return s.state.viewLocked(), nil
}

func (s *sessionService) SelectPlayer(_ context.Context, id *uuid.UUID) (SessionView, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return SessionView{}, ErrNotLoaded
	}
	if id == nil {
		s.state.selectedPlayerID = nil
		return s.state.viewLocked(), nil
	}
	if s.state.playerIndexLocked(*id) < 0 {
		return SessionView{}, repository.ErrNotFound
	}
	v := *id
	s.state.selectedPlayerID = &v
	return s.state.viewLocked(), nil
}

// RecordStat adds +1 of stat for the selected player in the current match.
// Without a match or a selection it does nothing.
func (s *sessionService) RecordStat(_ context.Context, stat model.StatKey) (LedgerResult, error) {
	if !stat.Valid() {
		return LedgerResult{}, NewInvalidInputError(FieldError{Field: "stat", Message: fmt.Sprintf("unknown stat %q", stat)})
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return LedgerResult{}, ErrNotLoaded
	}
	return s.recordLocked(stat)
}

func (s *sessionService) recordLocked(stat model.StatKey) (LedgerResult, error) {
	m := s.state.currentMatchLocked()
	if m == nil || s.state.selectedPlayerID == nil {
		return s.noopLocked(), nil
	}
	playerID := *s.state.selectedPlayerID
	ev, err := ledger.New(m, s.state.clock).Record(playerID, stat)
	if err != nil {
		return LedgerResult{}, err
	}
	s.state.setNoticeLocked(fmt.Sprintf("%s: +1 %s", s.state.playerNameLocked(playerID), stat))
	s.pushLocked(m)
	s.metrics.StatRecorded(stat)
	s.log.Debug().Str("match_id", m.ID.String()).Str("player_id", playerID.String()).Str("stat", string(stat)).Msg("stat recorded")
	return LedgerResult{Applied: true, Action: ActionRecord, Event: &ev, Session: s.state.viewLocked()}, nil
}

// Undo removes the last event of the current match, whoever it belongs to.
func (s *sessionService) Undo(_ context.Context) (LedgerResult, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return LedgerResult{}, ErrNotLoaded
	}
	return s.undoLocked(), nil
}

func (s *sessionService) undoLocked() LedgerResult {
	m := s.state.currentMatchLocked()
	if m == nil {
		return s.noopLocked()
	}
	ev, ok := ledger.New(m, s.state.clock).Undo()
	if !ok {
		return s.noopLocked()
	}
	s.state.setNoticeLocked(fmt.Sprintf("UNDO: %s -1 %s", s.state.playerNameLocked(ev.PlayerID), ev.Stat))
	s.pushLocked(m)
	s.metrics.Undone()
	s.log.Debug().Str("match_id", m.ID.String()).Str("event_id", ev.ID.String()).Msg("event undone")
	return LedgerResult{Applied: true, Action: ActionUndo, Event: &ev, Session: s.state.viewLocked()}
}

// ToggleGoalkeeper flips the goalkeeper designation of playerID, or of the
// selected player when playerID is nil.
func (s *sessionService) ToggleGoalkeeper(_ context.Context, playerID *uuid.UUID) (LedgerResult, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return LedgerResult{}, ErrNotLoaded
	}
	target := playerID
	if target == nil {
		target = s.state.selectedPlayerID
	}
	if target != nil && s.state.playerIndexLocked(*target) < 0 {
		return LedgerResult{}, repository.ErrNotFound
	}
	return s.toggleLocked(target)
}

func (s *sessionService) toggleLocked(target *uuid.UUID) (LedgerResult, error) {
	m := s.state.currentMatchLocked()
	if m == nil || target == nil {
		return s.noopLocked(), nil
	}
	isKeeper, err := ledger.New(m, s.state.clock).ToggleGoalkeeper(*target)
	if err != nil {
		return LedgerResult{}, err
	}
	s.pushLocked(m)
	s.log.Debug().Str("match_id", m.ID.String()).Str("player_id", target.String()).Bool("goalkeeper", isKeeper).Msg("goalkeeper toggled")
	return LedgerResult{Applied: true, Action: ActionGoalkeeper, Goalkeeper: &isKeeper, Session: s.state.viewLocked()}, nil
}

// HandleKey maps a tracking-screen key press to a ledger intent. Keys are
// ignored unless a match is current and a player is selected.
func (s *sessionService) HandleKey(_ context.Context, key string, ctrl bool) (LedgerResult, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return LedgerResult{}, ErrNotLoaded
	}
	if s.state.currentMatchLocked() == nil || s.state.selectedPlayerID == nil {
		return s.noopLocked(), nil
	}
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case ctrl && k == "z":
		return s.undoLocked(), nil
	case k == "k":
		return s.toggleLocked(s.state.selectedPlayerID)
	}
	if stat, ok := model.StatForShortcut(k); ok {
		return s.recordLocked(stat)
	}
	return s.noopLocked(), nil
}

func (s *sessionService) DismissBanner(_ context.Context) SessionView {
	s.state.DismissBanner()
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.state.viewLocked()
}

// Reload refetches everything. On failure the state drops to the loading
// screen with a persistent banner.
func (s *sessionService) Reload(ctx context.Context) (SessionView, error) {
	err := s.loader.Load(ctx)
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.state.viewLocked(), err
}

func (s *sessionService) pushLocked(m *model.Match) {
	m.UpdatedAt = s.state.clock.Now().UTC()
	if s.pusher != nil {
		s.pusher.Push(m.Clone())
	}
}

func (s *sessionService) noopLocked() LedgerResult {
	return LedgerResult{Applied: false, Session: s.state.viewLocked()}
}

// viewLocked renders the tracking screen.
func (s *State) viewLocked() SessionView {
	v := SessionView{
		Loaded:  s.loaded,
		Notice:  s.noticeLocked(),
		Banner:  s.bannerLocked(),
		Catalog: model.StatCatalog(),
	}
	if m := s.currentMatchLocked(); m != nil {
		c := m.Clone()
		sum := s.summaryLocked(m)
		v.CurrentMatch = &c
		v.Summary = &sum
	}
	if s.selectedPlayerID != nil {
		id := *s.selectedPlayerID
		v.SelectedPlayerID = &id
	}
	return v
}
