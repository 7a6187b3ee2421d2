// Package stats derives read-only aggregates from matches, ratings and MVP
// records. Nothing here mutates its inputs.
package stats

import (
	"math"

	"github.com/google/uuid"

	"github.com/maxviazov/bongo-stats-service/internal/model"
)

// TeamTotals sums every player's counters in m, per StatKey.
func TeamTotals(m model.Match) model.PlayerStats {
	var total model.PlayerStats
	for _, ps := range m.PlayerStats {
		total = total.Plus(ps.Stats)
	}
	return total
}

// Percentage returns round(100*made/(made+missed)). ok is false when nothing
// was attempted, in which case the value must not be shown.
func Percentage(made, missed int) (pct int, ok bool) {
	attempted := made + missed
	if attempted <= 0 {
		return 0, false
	}
	return roundHalfUp(100 * float64(made) / float64(attempted)), true
}

// PassAccuracy is the completed share of all passes.
func PassAccuracy(s model.PlayerStats) (int, bool) {
	return Percentage(s.PassesCompleted, s.PassesMissed)
}

// ShotAccuracy is the on-target share of all shots.
func ShotAccuracy(s model.PlayerStats) (int, bool) {
	return Percentage(s.ShotsOnTarget, s.ShotsOffTarget)
}

// CareerTotals sums playerID's counters over every match that has a line for them.
func CareerTotals(playerID uuid.UUID, matches []model.Match) model.PlayerStats {
	var total model.PlayerStats
	for _, m := range matches {
		if ps, ok := m.StatsFor(playerID); ok {
			total = total.Plus(ps.Stats)
		}
	}
	return total
}

// MatchesPlayed counts matches that have a line for playerID.
func MatchesPlayed(playerID uuid.UUID, matches []model.Match) int {
	n := 0
	for _, m := range matches {
		if _, ok := m.StatsFor(playerID); ok {
			n++
		}
	}
	return n
}

// OverallRating is the unweighted, rounded mean of the six card attributes.
func OverallRating(f model.FIFAStats) int {
	sum := f.Pace + f.Shooting + f.Dribbling + f.Physical + f.Defense + f.Passing
	return roundHalfUp(float64(sum) / 6)
}

// AverageRating is the rounded mean of playerID's match ratings, 0 when unrated.
func AverageRating(playerID uuid.UUID, ratings []model.MatchRating) int {
	sum, n := 0, 0
	for _, r := range ratings {
		if r.PlayerID == playerID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return roundHalfUp(float64(sum) / float64(n))
}

// Result is the outcome of a match from our side.
type Result string

const (
	ResultPending Result = "pending"
	ResultWin     Result = "win"
	ResultLoss    Result = "loss"
	ResultDraw    Result = "draw"
)

// Score is our goal count against the recorded opponent score, if any.
type Score struct {
	Ours     int    `json:"ours"`
	Opponent *int   `json:"opponent"`
	Result   Result `json:"result"`
}

// MatchScore derives the score line of m; our goals are the team's goal total.
func MatchScore(m model.Match) Score {
	s := Score{Ours: TeamTotals(m).Goals, Result: ResultPending}
	if m.OpponentScore == nil {
		return s
	}
	opp := *m.OpponentScore
	s.Opponent = &opp
	switch {
	case s.Ours > opp:
		s.Result = ResultWin
	case s.Ours < opp:
		s.Result = ResultLoss
	default:
		s.Result = ResultDraw
	}
	return s
}

// roundHalfUp matches the rounding used on the display side (x.5 goes up).
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
