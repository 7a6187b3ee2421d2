// Package model contains domain entities shared across layers.
// I keep it focused on data shapes; the only behavior here is copying and
// normalizing those shapes.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Foot is a player's preferred foot.
type Foot string

const (
	FootLeft  Foot = "left"
	FootRight Foot = "right"
	FootBoth  Foot = "both"
)

// Valid reports whether f is one of left, right or both.
func (f Foot) Valid() bool {
	switch f {
	case FootLeft, FootRight, FootBoth:
		return true
	default:
		return false
	}
}

// FIFAStats is the six-attribute card profile, each value in 0..100.
type FIFAStats struct {
	Pace      int `json:"pace" validate:"min=0,max=100"`
	Shooting  int `json:"shooting" validate:"min=0,max=100"`
	Dribbling int `json:"dribbling" validate:"min=0,max=100"`
	Physical  int `json:"physical" validate:"min=0,max=100"`
	Defense   int `json:"defense" validate:"min=0,max=100"`
	Passing   int `json:"passing" validate:"min=0,max=100"`
}

// DefaultFIFAStats is the neutral card given to seeded players.
func DefaultFIFAStats() FIFAStats {
	return FIFAStats{Pace: 50, Shooting: 50, Dribbling: 50, Physical: 50, Defense: 50, Passing: 50}
}

// Player is a roster member.
type Player struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Birthday      *time.Time `json:"birthday"`
	Bongs         int        `json:"bongs"`
	PreferredFoot Foot       `json:"preferred_foot"`
	FIFA          FIFAStats  `json:"fifa_stats"`
	ProfileImage  *string    `json:"profile_image"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// MatchEvent is one immutable stat change in a match's event log.
type MatchEvent struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	PlayerID  uuid.UUID `json:"playerId"`
	Stat      StatKey   `json:"stat"`
	Value     int       `json:"value"`
}

// PlayerMatchStats is one player's line within a match.
type PlayerMatchStats struct {
	PlayerID     uuid.UUID   `json:"playerId"`
	Stats        PlayerStats `json:"stats"`
	IsGoalkeeper bool        `json:"isGoalkeeper"`
}

// Match is the aggregate root of the ledger: its PlayerStats are always the
// fold of Events.
type Match struct {
	ID                  uuid.UUID          `json:"id"`
	Opponent            string             `json:"opponent"`
	ScheduledAt         time.Time          `json:"scheduled_at"`
	FieldName           string             `json:"field_name"`
	FieldImage          *string            `json:"field_image"`
	OpponentScore       *int               `json:"opponent_score"`
	NetMatchTime        *int               `json:"net_match_time"`
	Events              []MatchEvent       `json:"events"`
	PlayerStats         []PlayerMatchStats `json:"player_stats"`
	CurrentGoalkeeperID *uuid.UUID         `json:"current_goalkeeper_id"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// Clone returns a deep copy, safe to hand to another goroutine.
func (m Match) Clone() Match {
	out := m
	out.Events = append([]MatchEvent(nil), m.Events...)
	out.PlayerStats = append([]PlayerMatchStats(nil), m.PlayerStats...)
	if m.FieldImage != nil {
		v := *m.FieldImage
		out.FieldImage = &v
	}
	if m.OpponentScore != nil {
		v := *m.OpponentScore
		out.OpponentScore = &v
	}
	if m.NetMatchTime != nil {
		v := *m.NetMatchTime
		out.NetMatchTime = &v
	}
	if m.CurrentGoalkeeperID != nil {
		v := *m.CurrentGoalkeeperID
		out.CurrentGoalkeeperID = &v
	}
	return out
}

// StatsFor returns the line of playerID, if the match has one.
func (m Match) StatsFor(playerID uuid.UUID) (PlayerMatchStats, bool) {
	for _, ps := range m.PlayerStats {
		if ps.PlayerID == playerID {
			return ps, true
		}
	}
	return PlayerMatchStats{}, false
}

// MatchRating is a coach rating (0..100) of one player in one match.
type MatchRating struct {
	MatchID  uuid.UUID `json:"match_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Rating   int       `json:"rating" validate:"min=0,max=100"`
	Notes    string    `json:"notes,omitempty" validate:"max=2000"`
}

// RatingKey is the composite identity of a MatchRating.
type RatingKey struct {
	MatchID  uuid.UUID
	PlayerID uuid.UUID
}

// Key returns the composite identity of r.
func (r MatchRating) Key() RatingKey { return RatingKey{MatchID: r.MatchID, PlayerID: r.PlayerID} }

// MVPRecord designates the most valuable player of a match. Date, Opponent and
// Rating are copied from the match and rating at selection time.
type MVPRecord struct {
	MatchID  uuid.UUID `json:"match_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Date     time.Time `json:"date"`
	Opponent string    `json:"opponent"`
	Rating   int       `json:"rating"`
}
