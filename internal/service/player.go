package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
	"github.com/maxviazov/bongo-stats-service/internal/stats"
)

const (
	msgCreatePlayerFailed = "Failed to create player. Please try again."
	msgUpdatePlayerFailed = "Failed to update player. Please try again."
	msgDeletePlayerFailed = "Failed to delete player. Please try again."
)

type playerService struct {
	state   *State
	players repository.PlayerRepository
	metrics Metrics
	log     zerolog.Logger
}

func NewPlayerService(state *State, players repository.PlayerRepository, metrics Metrics, logger zerolog.Logger) PlayerService {
	l := logger.With().Str("module", "service").Str("component", "player").Logger()
	return &playerService{state: state, players: players, metrics: metricsOrNop(metrics), log: l}
}

func (s *playerService) ListPlayers(_ context.Context) ([]model.Player, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return nil, ErrNotLoaded
	}
	return append([]model.Player(nil), s.state.players...), nil
}

func (s *playerService) CreatePlayer(ctx context.Context, in PlayerInput) (model.Player, error) {
	start := time.Now()
	p, err := playerFromInput(in)
	if err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("player validation failed")
		return model.Player{}, err
	}
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	s.state.mu.Lock()
	if !s.state.loaded {
		s.state.mu.Unlock()
		return model.Player{}, ErrNotLoaded
	}
	s.state.players = append(s.state.players, p)
	// every existing match gets a zero line for the newcomer
	for _, m := range s.state.matches {
		if _, ok := m.StatsFor(p.ID); !ok {
			m.PlayerStats = append(m.PlayerStats, model.PlayerMatchStats{PlayerID: p.ID})
		}
	}
	s.state.mu.Unlock()

	out, err := s.players.Create(ctx, p)
	s.metrics.Mutation("player", "create", err)
	if err != nil {
		s.log.Error().Err(err).Str("player_id", p.ID.String()).Str("name", p.Name).Msg("create player failed")
		s.state.ReportFailure(msgCreatePlayerFailed)
		return model.Player{}, err
	}
	s.replaceLocal(out)
	s.log.Info().Dur("took", time.Since(start)).Str("player_id", out.ID.String()).Msg("player created")
	return out, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, id uuid.UUID, in PlayerInput) (model.Player, error) {
	p, err := playerFromInput(in)
	if err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Str("player_id", id.String()).Msg("player validation failed")
		return model.Player{}, err
	}

	s.state.mu.Lock()
	if !s.state.loaded {
		s.state.mu.Unlock()
		return model.Player{}, ErrNotLoaded
	}
	i := s.state.playerIndexLocked(id)
	if i < 0 {
		s.state.mu.Unlock()
		return model.Player{}, repository.ErrNotFound
	}
	p.ID = id
	p.CreatedAt = s.state.players[i].CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.state.players[i] = p
	s.state.mu.Unlock()

	out, err := s.players.Update(ctx, p)
	s.metrics.Mutation("player", "update", err)
	if err != nil {
		s.log.Error().Err(err).Str("player_id", id.String()).Msg("update player failed")
		s.state.ReportFailure(msgUpdatePlayerFailed)
		return model.Player{}, err
	}
	s.replaceLocal(out)
	return out, nil
}

// DeletePlayer drops the player from the roster. Match lines and events that
// mention the player stay; the repository cascades ratings and MVP records.
func (s *playerService) DeletePlayer(ctx context.Context, id uuid.UUID) error {
	s.state.mu.Lock()
	if !s.state.loaded {
		s.state.mu.Unlock()
		return ErrNotLoaded
	}
	i := s.state.playerIndexLocked(id)
	if i < 0 {
		s.state.mu.Unlock()
		return repository.ErrNotFound
	}
	s.state.players = append(s.state.players[:i], s.state.players[i+1:]...)
	for k := range s.state.ratings {
		if k.PlayerID == id {
			delete(s.state.ratings, k)
		}
	}
	for k, r := range s.state.mvps {
		if r.PlayerID == id {
			delete(s.state.mvps, k)
		}
	}
	if s.state.selectedPlayerID != nil && *s.state.selectedPlayerID == id {
		s.state.selectedPlayerID = nil
	}
	s.state.mu.Unlock()

	err := s.players.Delete(ctx, id)
	s.metrics.Mutation("player", "delete", err)
	if err != nil {
		s.log.Error().Err(err).Str("player_id", id.String()).Msg("delete player failed")
		s.state.ReportFailure(msgDeletePlayerFailed)
		return err
	}
	s.log.Info().Str("player_id", id.String()).Msg("player deleted")
	return nil
}

func (s *playerService) PlayerProfile(_ context.Context, id uuid.UUID) (stats.Profile, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return stats.Profile{}, ErrNotLoaded
	}
	i := s.state.playerIndexLocked(id)
	if i < 0 {
		return stats.Profile{}, repository.ErrNotFound
	}
	return stats.BuildProfile(
		s.state.players[i],
		s.state.matchesLocked(),
		s.state.ratingsLocked(),
		s.state.mvpsLocked(),
		stats.DefaultRecentLimit,
	), nil
}

// replaceLocal swaps in the stored copy, which carries database timestamps.
func (s *playerService) replaceLocal(p model.Player) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if i := s.state.playerIndexLocked(p.ID); i >= 0 {
		s.state.players[i] = p
	}
}
