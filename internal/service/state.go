package service

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/maxviazov/bongo-stats-service/internal/model"
)

// DefaultNoticeTTL is how long a ledger confirmation stays visible.
const DefaultNoticeTTL = 1500 * time.Millisecond

// Banner is an error message shown above the tracking screen. Persistent
// banners come from load failures and cannot be dismissed.
type Banner struct {
	Message    string `json:"message"`
	Persistent bool   `json:"persistent"`
}

type notice struct {
	text      string
	expiresAt time.Time
}

// State is the single in-memory copy of roster, matches, ratings and MVP
// records, plus the session selection. Every service shares one State and
// serializes on its mutex.
type State struct {
	mu        sync.Mutex
	clock     clockwork.Clock
	noticeTTL time.Duration

	loaded  bool
	players []model.Player
	matches map[uuid.UUID]*model.Match
	ratings map[model.RatingKey]model.MatchRating
	mvps    map[uuid.UUID]model.MVPRecord

	currentMatchID   *uuid.UUID
	selectedPlayerID *uuid.UUID
	notice           *notice
	banner           *Banner
}

// NewState returns an empty, not yet loaded state. A nil clock uses the real one.
func NewState(clock clockwork.Clock, noticeTTL time.Duration) *State {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if noticeTTL <= 0 {
		noticeTTL = DefaultNoticeTTL
	}
	return &State{
		clock:     clock,
		noticeTTL: noticeTTL,
		matches:   map[uuid.UUID]*model.Match{},
		ratings:   map[model.RatingKey]model.MatchRating{},
		mvps:      map[uuid.UUID]model.MVPRecord{},
	}
}

// Loaded reports whether the last load succeeded.
func (s *State) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Banner returns the banner currently shown, if any.
func (s *State) Banner() *Banner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bannerLocked()
}

// ReportFailure shows a transient banner unless a persistent one is already up.
func (s *State) ReportFailure(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transientLocked(message)
}

// DismissBanner clears a transient banner. Persistent banners stay.
func (s *State) DismissBanner() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.banner == nil || s.banner.Persistent {
		return false
	}
	s.banner = nil
	return true
}

func (s *State) bannerLocked() *Banner {
	if s.banner == nil {
		return nil
	}
	b := *s.banner
	return &b
}

func (s *State) transientLocked(message string) {
	if s.banner != nil && s.banner.Persistent {
		return
	}
	s.banner = &Banner{Message: message}
}

// failLoad drops everything and raises the persistent banner.
func (s *State) failLoad(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.players = nil
	s.matches = map[uuid.UUID]*model.Match{}
	s.ratings = map[model.RatingKey]model.MatchRating{}
	s.mvps = map[uuid.UUID]model.MVPRecord{}
	s.currentMatchID = nil
	s.selectedPlayerID = nil
	s.notice = nil
	s.banner = &Banner{Message: message, Persistent: true}
}

// replace installs a freshly loaded snapshot. The selection survives when the
// selected match and player still exist.
func (s *State) replace(players []model.Player, matches []model.Match, ratings []model.MatchRating, mvps []model.MVPRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.players = append([]model.Player(nil), players...)
	s.matches = make(map[uuid.UUID]*model.Match, len(matches))
	for i := range matches {
		m := matches[i].Clone()
		s.matches[m.ID] = &m
	}
	s.ratings = make(map[model.RatingKey]model.MatchRating, len(ratings))
	for _, r := range ratings {
		s.ratings[r.Key()] = r
	}
	s.mvps = make(map[uuid.UUID]model.MVPRecord, len(mvps))
	for _, r := range mvps {
		s.mvps[r.MatchID] = r
	}
	if s.currentMatchID != nil && s.matches[*s.currentMatchID] == nil {
		s.currentMatchID = nil
	}
	if s.selectedPlayerID != nil && s.playerIndexLocked(*s.selectedPlayerID) < 0 {
		s.selectedPlayerID = nil
	}
	s.loaded = true
	s.banner = nil
}

func (s *State) playerIndexLocked(id uuid.UUID) int {
	for i := range s.players {
		if s.players[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) playerNameLocked(id uuid.UUID) string {
	if i := s.playerIndexLocked(id); i >= 0 {
		return s.players[i].Name
	}
	return "Unknown"
}

func (s *State) rosterLocked() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.players))
	for _, p := range s.players {
		ids = append(ids, p.ID)
	}
	return ids
}

func (s *State) currentMatchLocked() *model.Match {
	if s.currentMatchID == nil {
		return nil
	}
	return s.matches[*s.currentMatchID]
}

// matchesLocked returns detached copies of every match, newest first.
func (s *State) matchesLocked() []model.Match {
	out := make([]model.Match, 0, len(s.matches))
	for _, m := range s.matches {
		out = append(out, m.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return out
}

func (s *State) ratingsLocked() []model.MatchRating {
	out := make([]model.MatchRating, 0, len(s.ratings))
	for _, r := range s.ratings {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchID != out[j].MatchID {
			return out[i].MatchID.String() < out[j].MatchID.String()
		}
		return out[i].PlayerID.String() < out[j].PlayerID.String()
	})
	return out
}

func (s *State) mvpsLocked() []model.MVPRecord {
	out := make([]model.MVPRecord, 0, len(s.mvps))
	for _, r := range s.mvps {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (s *State) setNoticeLocked(text string) {
	s.notice = &notice{text: text, expiresAt: s.clock.Now().Add(s.noticeTTL)}
}

// noticeLocked returns the live notice text, clearing it once expired.
func (s *State) noticeLocked() string {
	if s.notice == nil {
		return ""
	}
	if !s.clock.Now().Before(s.notice.expiresAt) {
		s.notice = nil
		return ""
	}
	return s.notice.text
}
