package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
)

const (
	msgSaveMVPFailed   = "Failed to save MVP. Please try again."
	msgRemoveMVPFailed = "Failed to remove MVP. Please try again."
)

type mvpService struct {
	state   *State
	mvps    repository.MVPRepository
	metrics Metrics
	log     zerolog.Logger
}

func NewMVPService(state *State, mvps repository.MVPRepository, metrics Metrics, logger zerolog.Logger) MVPService {
	l := logger.With().Str("module", "service").Str("component", "mvp").Logger()
	return &mvpService{state: state, mvps: mvps, metrics: metricsOrNop(metrics), log: l}
}

func (s *mvpService) ListMVPs(_ context.Context) ([]model.MVPRecord, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return nil, ErrNotLoaded
	}
	return s.state.mvpsLocked(), nil
}

// SelectMVP names playerID MVP of matchID, replacing any earlier pick. The
// record copies the match opponent and date and the player's rating (0 when
// unrated) as they are now.
func (s *mvpService) SelectMVP(ctx context.Context, matchID, playerID uuid.UUID) (model.MVPRecord, error) {
	s.state.mu.Lock()
	if err := s.state.checkPairLocked(matchID, playerID); err != nil {
		s.state.mu.Unlock()
		return model.MVPRecord{}, err
	}
	m := s.state.matches[matchID]
	r := model.MVPRecord{
		MatchID:  matchID,
		PlayerID: playerID,
		Date:     m.ScheduledAt,
		Opponent: m.Opponent,
	}
	if rating, ok := s.state.ratings[model.RatingKey{MatchID: matchID, PlayerID: playerID}]; ok {
		r.Rating = rating.Rating
	}
	s.state.mvps[matchID] = r
	s.state.mu.Unlock()

	out, err := s.mvps.Upsert(ctx, r)
	s.metrics.Mutation("mvp", "upsert", err)
	if err != nil {
		s.log.Error().Err(err).Str("match_id", matchID.String()).Str("player_id", playerID.String()).Msg("save mvp failed")
		s.state.ReportFailure(msgSaveMVPFailed)
		return model.MVPRecord{}, err
	}
	s.log.Info().Str("match_id", matchID.String()).Str("player_id", playerID.String()).Msg("mvp selected")
	return out, nil
}

func (s *mvpService) ClearMVP(ctx context.Context, matchID uuid.UUID) error {
	s.state.mu.Lock()
	if !s.state.loaded {
		s.state.mu.Unlock()
		return ErrNotLoaded
	}
	if _, ok := s.state.mvps[matchID]; !ok {
		s.state.mu.Unlock()
		return repository.ErrNotFound
	}
	delete(s.state.mvps, matchID)
	s.state.mu.Unlock()

	err := s.mvps.Delete(ctx, matchID)
	s.metrics.Mutation("mvp", "delete", err)
	if err != nil {
		s.log.Error().Err(err).Str("match_id", matchID.String()).Msg("remove mvp failed")
		s.state.ReportFailure(msgRemoveMVPFailed)
		return err
	}
	return nil
}
