// Package ledger maintains a match's append-ordered event log together with the
// per-player counters derived from it. Undo truncates the log; it never appends
// an inverse event.
package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/maxviazov/bongo-stats-service/internal/model"
)

var (
	ErrUnknownStat = errors.New("unknown stat")
	ErrNoPlayer    = errors.New("player id is required")
)

// Ledger mutates one match in place. It is not safe for concurrent use; the
// caller serializes access.
type Ledger struct {
	match *model.Match
	clock clockwork.Clock
}

// New wraps m. A nil clock falls back to the real clock.
func New(m *model.Match, clock clockwork.Clock) *Ledger {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Ledger{match: m, clock: clock}
}

// Match exposes the wrapped match.
func (l *Ledger) Match() *model.Match { return l.match }

// Record appends a +1 event for (playerID, stat) and bumps the matching counter.
func (l *Ledger) Record(playerID uuid.UUID, stat model.StatKey) (model.MatchEvent, error) {
	if playerID == uuid.Nil {
		return model.MatchEvent{}, ErrNoPlayer
	}
	if !stat.Valid() {
		return model.MatchEvent{}, fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}
	ev := model.MatchEvent{
		ID:        uuid.New(),
		Timestamp: l.clock.Now().UTC(),
		PlayerID:  playerID,
		Stat:      stat,
		Value:     1,
	}
	l.match.Events = append(l.match.Events, ev)
	l.line(playerID).Stats.Add(stat, 1)
	return ev, nil
}

// Undo removes the last event of the log, whoever it belongs to, and
// decrements its counter (floored at zero). ok is false on an empty log. An
// event whose player no longer has a stats line is dropped without adding one.
func (l *Ledger) Undo() (ev model.MatchEvent, ok bool) {
	n := len(l.match.Events)
	if n == 0 {
		return model.MatchEvent{}, false
	}
	ev = l.match.Events[n-1]
	l.match.Events = l.match.Events[:n-1]
	if ps := l.find(ev.PlayerID); ps != nil {
		ps.Stats.Add(ev.Stat, -1)
	}
	return ev, true
}

// ToggleGoalkeeper clears the designation when playerID already holds it,
// otherwise makes playerID the only goalkeeper. It reports whether playerID is
// goalkeeper afterwards.
func (l *Ledger) ToggleGoalkeeper(playerID uuid.UUID) (bool, error) {
	if playerID == uuid.Nil {
		return false, ErrNoPlayer
	}
	l.line(playerID)
	wasKeeper := l.match.CurrentGoalkeeperID != nil && *l.match.CurrentGoalkeeperID == playerID
	for i := range l.match.PlayerStats {
		ps := &l.match.PlayerStats[i]
		ps.IsGoalkeeper = ps.PlayerID == playerID && !wasKeeper
	}
	if wasKeeper {
		l.match.CurrentGoalkeeperID = nil
		return false, nil
	}
	id := playerID
	l.match.CurrentGoalkeeperID = &id
	return true, nil
}

func (l *Ledger) find(playerID uuid.UUID) *model.PlayerMatchStats {
	for i := range l.match.PlayerStats {
		if l.match.PlayerStats[i].PlayerID == playerID {
			return &l.match.PlayerStats[i]
		}
	}
	return nil
}

// line returns the stats line of playerID, adding a zeroed one for a player
// that joined the roster after the match was created.
func (l *Ledger) line(playerID uuid.UUID) *model.PlayerMatchStats {
	if ps := l.find(playerID); ps != nil {
		return ps
	}
	l.match.PlayerStats = append(l.match.PlayerStats, model.PlayerMatchStats{PlayerID: playerID})
	return &l.match.PlayerStats[len(l.match.PlayerStats)-1]
}

// Fold replays events over zeroed lines for roster, honouring each event's
// signed value and clamping at zero after every step. Players that only appear
// in the events get a line appended after the roster.
func Fold(events []model.MatchEvent, roster []uuid.UUID, goalkeeper *uuid.UUID) []model.PlayerMatchStats {
	m := model.Match{PlayerStats: model.NewPlayerStatsLines(roster)}
	l := New(&m, nil)
	for _, ev := range events {
		l.line(ev.PlayerID).Stats.Add(ev.Stat, ev.Value)
	}
	for i := range m.PlayerStats {
		m.PlayerStats[i].IsGoalkeeper = goalkeeper != nil && *goalkeeper == m.PlayerStats[i].PlayerID
	}
	return m.PlayerStats
}

// Consistent reports whether m's counters equal the fold of its events.
func Consistent(m model.Match) bool {
	roster := make([]uuid.UUID, 0, len(m.PlayerStats))
	for _, ps := range m.PlayerStats {
		roster = append(roster, ps.PlayerID)
	}
	folded := Fold(m.Events, roster, m.CurrentGoalkeeperID)
	if len(folded) != len(m.PlayerStats) {
		return false
	}
	for i := range folded {
		if folded[i].Stats != m.PlayerStats[i].Stats {
			return false
		}
	}
	return true
}
