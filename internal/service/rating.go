package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
)

const (
	msgSaveRatingFailed   = "Failed to save rating. Please try again."
	msgDeleteRatingFailed = "Failed to delete rating. Please try again."
)

type ratingService struct {
	state   *State
	ratings repository.RatingRepository
	metrics Metrics
	log     zerolog.Logger
}

func NewRatingService(state *State, ratings repository.RatingRepository, metrics Metrics, logger zerolog.Logger) RatingService {
	l := logger.With().Str("module", "service").Str("component", "rating").Logger()
	return &ratingService{state: state, ratings: ratings, metrics: metricsOrNop(metrics), log: l}
}

func (s *ratingService) ListRatings(_ context.Context) ([]model.MatchRating, error) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if !s.state.loaded {
		return nil, ErrNotLoaded
	}
	return s.state.ratingsLocked(), nil
}

func (s *ratingService) UpsertRating(ctx context.Context, matchID, playerID uuid.UUID, in RatingInput) (model.MatchRating, error) {
	in.Notes = strings.TrimSpace(in.Notes)
	if err := NewInvalidInputError(fieldErrorsOf(in, map[string]string{"Rating": "rating", "Notes": "notes"})...); err != nil {
		return model.MatchRating{}, err
	}

	s.state.mu.Lock()
	if err := s.state.checkPairLocked(matchID, playerID); err != nil {
		s.state.mu.Unlock()
		return model.MatchRating{}, err
	}
	r := model.MatchRating{MatchID: matchID, PlayerID: playerID, Rating: in.Rating, Notes: in.Notes}
	s.state.ratings[r.Key()] = r
	s.state.mu.Unlock()

	out, err := s.ratings.Upsert(ctx, r)
	s.metrics.Mutation("rating", "upsert", err)
	if err != nil {
		s.log.Error().Err(err).Str("match_id", matchID.String()).Str("player_id", playerID.String()).Msg("save rating failed")
		s.state.ReportFailure(msgSaveRatingFailed)
		return model.MatchRating{}, err
	}
	return out, nil
}

func (s *ratingService) DeleteRating(ctx context.Context, matchID, playerID uuid.UUID) error {
	key := model.RatingKey{MatchID: matchID, PlayerID: playerID}

	s.state.mu.Lock()
	if !s.state.loaded {
		s.state.mu.Unlock()
		return ErrNotLoaded
	}
	if _, ok := s.state.ratings[key]; !ok {
		s.state.mu.Unlock()
		return repository.ErrNotFound
	}
	delete(s.state.ratings, key)
	s.state.mu.Unlock()

	err := s.ratings.Delete(ctx, key)
	s.metrics.Mutation("rating", "delete", err)
	if err != nil {
		s.log.Error().Err(err).Str("match_id", matchID.String()).Str("player_id", playerID.String()).Msg("delete rating failed")
		s.state.ReportFailure(msgDeleteRatingFailed)
		return err
	}
	return nil
}

// checkPairLocked verifies the state is loaded and both ids exist.
func (s *State) checkPairLocked(matchID, playerID uuid.UUID) error {
	if !s.loaded {
		return ErrNotLoaded
	}
	if _, ok := s.matches[matchID]; !ok {
		return repository.ErrNotFound
	}
	if s.playerIndexLocked(playerID) < 0 {
		return repository.ErrNotFound
	}
	return nil
}
