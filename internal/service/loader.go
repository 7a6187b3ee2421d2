package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/bongo-stats-service/internal/model"
)

// LoadFailedMessage is the persistent banner raised when the initial fetch fails.
const LoadFailedMessage = "Failed to load data. Please check your connection and refresh."

// Loader fills State from the repositories.
type Loader struct {
	state   *State
	repos   Repos
	roster  []string
	flusher Flusher
	log     zerolog.Logger
}

// NewLoader wires a loader. defaultRoster seeds an empty players table.
// flusher, when not nil, is drained before every load so a reload never reads
// a match older than the local copy.
func NewLoader(state *State, repos Repos, defaultRoster []string, flusher Flusher, logger zerolog.Logger) *Loader {
	l := logger.With().Str("module", "service").Str("component", "loader").Logger()
	return &Loader{state: state, repos: repos, roster: defaultRoster, flusher: flusher, log: l}
}

// EnsureDefaultRoster seeds the default roster when no player exists yet and
// returns the roster. Safe to call repeatedly.
func (l *Loader) EnsureDefaultRoster(ctx context.Context) ([]model.Player, error) {
	seed := func(ctx context.Context) error {
		n, err := l.repos.Players.Count(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		for _, name := range l.roster {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, err := l.repos.Players.Create(ctx, model.Player{
				ID:            uuid.New(),
				Name:          name,
				PreferredFoot: model.FootRight,
				FIFA:          model.DefaultFIFAStats(),
			}); err != nil {
				return fmt.Errorf("seed player %q: %w", name, err)
			}
		}
		l.log.Info().Int("players", len(l.roster)).Msg("default roster seeded")
		return nil
	}

	var err error
	if l.repos.Tx != nil {
		err = l.repos.Tx.WithinTx(ctx, seed)
	} else {
		err = seed(ctx)
	}
	if err != nil {
		return nil, err
	}
	return l.repos.Players.List(ctx)
}

// Load replaces State with the stored data. Matches, ratings and MVP records
// are fetched in parallel once the roster is known. Any fetch failure leaves
// State unloaded behind a persistent banner. A failed flush keeps the local
// State untouched.
func (l *Loader) Load(ctx context.Context) error {
	start := time.Now()
	if l.flusher != nil {
		if err := l.flusher.Flush(ctx); err != nil {
			l.log.Warn().Err(err).Msg("pending snapshot not flushed, keeping local state")
			return fmt.Errorf("flush pending snapshot: %w", err)
		}
	}
	players, err := l.EnsureDefaultRoster(ctx)
	if err != nil {
		l.fail(err, "players")
		return err
	}
	roster := make([]uuid.UUID, 0, len(players))
	for _, p := range players {
		roster = append(roster, p.ID)
	}

	var (
		matches []model.Match
		ratings []model.MatchRating
		mvps    []model.MVPRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if matches, err = l.repos.Matches.List(gctx, roster); err != nil {
			return fmt.Errorf("matches: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if ratings, err = l.repos.Ratings.List(gctx); err != nil {
			return fmt.Errorf("ratings: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if mvps, err = l.repos.MVPs.List(gctx); err != nil {
			return fmt.Errorf("mvps: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		l.fail(err, "fetch")
		return err
	}

	l.state.replace(players, matches, ratings, mvps)
	l.log.Info().
		Int("players", len(players)).
		Int("matches", len(matches)).
		Int("ratings", len(ratings)).
		Int("mvps", len(mvps)).
		Dur("took", time.Since(start)).
		Msg("state loaded")
	return nil
}

func (l *Loader) fail(err error, stage string) {
	l.log.Error().Err(err).Str("stage", stage).Msg("state load failed")
	l.state.failLoad(LoadFailedMessage)
}
