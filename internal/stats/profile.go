package stats

import (
	"sort"

	"github.com/google/uuid"

	"github.com/maxviazov/bongo-stats-service/internal/model"
)

// DefaultRecentLimit caps RecentMatches when the caller passes a non-positive limit.
const DefaultRecentLimit = 10

// MVPMatches returns playerID's MVP awards, newest match first.
func MVPMatches(playerID uuid.UUID, records []model.MVPRecord) []model.MVPRecord {
	out := make([]model.MVPRecord, 0)
	for _, r := range records {
		if r.PlayerID == playerID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// RecentMatches returns up to limit matches with a line for playerID, newest first.
func RecentMatches(playerID uuid.UUID, matches []model.Match, limit int) []model.Match {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := make([]model.Match, 0, limit)
	for _, m := range matches {
		if _, ok := m.StatsFor(playerID); ok {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RatingFor finds the rating of playerID in matchID.
func RatingFor(playerID, matchID uuid.UUID, ratings []model.MatchRating) (model.MatchRating, bool) {
	for _, r := range ratings {
		if r.PlayerID == playerID && r.MatchID == matchID {
			return r, true
		}
	}
	return model.MatchRating{}, false
}

// RecentMatch is one row of a player's recent form.
type RecentMatch struct {
	MatchID  uuid.UUID         `json:"match_id"`
	Opponent string            `json:"opponent"`
	Date     string            `json:"date"`
	Stats    model.PlayerStats `json:"stats"`
	Rating   *int              `json:"rating"`
	MVP      bool              `json:"mvp"`
}

// Profile is the full analytics card of one player.
type Profile struct {
	Player        model.Player      `json:"player"`
	Overall       int               `json:"overall"`
	CareerTotals  model.PlayerStats `json:"career_totals"`
	MatchesPlayed int               `json:"matches_played"`
	AverageRating int               `json:"average_rating"`
	PassAccuracy  *int              `json:"pass_accuracy"`
	ShotAccuracy  *int              `json:"shot_accuracy"`
	MVPs          []model.MVPRecord `json:"mvps"`
	Recent        []RecentMatch     `json:"recent"`
}

// BuildProfile folds every match, rating and MVP record into p's profile.
func BuildProfile(p model.Player, matches []model.Match, ratings []model.MatchRating, mvps []model.MVPRecord, recentLimit int) Profile {
	totals := CareerTotals(p.ID, matches)
	prof := Profile{
		Player:        p,
		Overall:       OverallRating(p.FIFA),
		CareerTotals:  totals,
		MatchesPlayed: MatchesPlayed(p.ID, matches),
		AverageRating: AverageRating(p.ID, ratings),
		MVPs:          MVPMatches(p.ID, mvps),
	}
	if v, ok := PassAccuracy(totals); ok {
		prof.PassAccuracy = &v
	}
	if v, ok := ShotAccuracy(totals); ok {
		prof.ShotAccuracy = &v
	}

	mvpByMatch := make(map[uuid.UUID]bool, len(prof.MVPs))
	for _, r := range prof.MVPs {
		mvpByMatch[r.MatchID] = true
	}
	recent := RecentMatches(p.ID, matches, recentLimit)
	prof.Recent = make([]RecentMatch, 0, len(recent))
	for _, m := range recent {
		ps, _ := m.StatsFor(p.ID)
		row := RecentMatch{
			MatchID:  m.ID,
			Opponent: m.Opponent,
			Date:     m.ScheduledAt.Format("2006-01-02"),
			Stats:    ps.Stats,
			MVP:      mvpByMatch[m.ID],
		}
		if r, ok := RatingFor(p.ID, m.ID, ratings); ok {
			v := r.Rating
			row.Rating = &v
		}
		prof.Recent = append(prof.Recent, row)
	}
	return prof
}
