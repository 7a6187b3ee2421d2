package model

import "github.com/google/uuid"

// NewPlayerStatsLines builds one zeroed line per roster player.
func NewPlayerStatsLines(roster []uuid.UUID) []PlayerMatchStats {
	out := make([]PlayerMatchStats, 0, len(roster))
	for _, id := range roster {
		out = append(out, PlayerMatchStats{PlayerID: id})
	}
	return out
}

// AlignToRoster returns exactly one line per roster player, in roster order.
// Stored lines are reused as-is; players missing from the stored snapshot get a
// zeroed line flagged as goalkeeper only when they are the current goalkeeper.
func AlignToRoster(stored []PlayerMatchStats, roster []uuid.UUID, goalkeeper *uuid.UUID) []PlayerMatchStats {
	byID := make(map[uuid.UUID]PlayerMatchStats, len(stored))
	for _, ps := range stored {
		byID[ps.PlayerID] = ps
	}
	out := make([]PlayerMatchStats, 0, len(roster))
	for _, id := range roster {
		if ps, ok := byID[id]; ok {
			out = append(out, ps)
			continue
		}
		out = append(out, PlayerMatchStats{
			PlayerID:     id,
			IsGoalkeeper: goalkeeper != nil && *goalkeeper == id,
		})
	}
	return out
}
