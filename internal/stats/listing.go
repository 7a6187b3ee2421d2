package stats

import (
	"sort"
	"time"

	"github.com/maxviazov/bongo-stats-service/internal/model"
)

// IsUpcoming reports whether m is scheduled strictly after now and has no
// opponent score recorded yet.
func IsUpcoming(m model.Match, now time.Time) bool {
	return m.ScheduledAt.After(now) && m.OpponentScore == nil
}

// SortForListing orders matches in place: every future-dated match before
// every past one, each group newest first.
func SortForListing(matches []model.Match, now time.Time) {
	sort.SliceStable(matches, func(i, j int) bool {
		fi, fj := matches[i].ScheduledAt.After(now), matches[j].ScheduledAt.After(now)
		if fi != fj {
			return fi
		}
		return matches[i].ScheduledAt.After(matches[j].ScheduledAt)
	})
}
