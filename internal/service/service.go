// Package service holds the application state and the use cases that mutate
// it: roster, matches, the live stat-tracking session, ratings and MVPs.
// Handlers talk to the interfaces declared here; repositories stay behind them.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
	"github.com/maxviazov/bongo-stats-service/internal/stats"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrNotLoaded is returned by every state operation until a load succeeds.
var ErrNotLoaded = errors.New("application state is not loaded")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// NewInvalidInputError builds an aggregated validation error, or nil when fe is empty.
func NewInvalidInputError(fe ...FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	var v *invalidInputError
	if errors.As(err, &v) {
		return v.Fields()
	}
	return nil
}

// Repos bundles the persistence gateway.
type Repos struct {
	Players repository.PlayerRepository
	Matches repository.MatchRepository
	Ratings repository.RatingRepository
	MVPs    repository.MVPRepository
	Tx      repository.TxManager
}

// SnapshotPusher schedules background writes of whole match snapshots.
type SnapshotPusher interface {
	Push(m model.Match)
	Discard(matchID uuid.UUID)
}

// Flusher writes out any snapshot still waiting in the debounce window.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Metrics is the subset of the metrics recorder the services report to.
type Metrics interface {
	StatRecorded(stat model.StatKey)
	Undone()
	Mutation(entity, op string, err error)
}

// PlayerInput is the full editable shape of a player; updates replace every field.
type PlayerInput struct {
	Name          string           `json:"name" validate:"required,max=60"`
	Birthday      *string          `json:"birthday" validate:"omitempty,datetime=2006-01-02"`
	Bongs         int              `json:"bongs" validate:"min=0"`
	PreferredFoot string           `json:"preferred_foot" validate:"omitempty,oneof=left right both"`
	FIFA          *model.FIFAStats `json:"fifa_stats"`
	ProfileImage  *string          `json:"profile_image"`
}

// MatchInput carries editable match details. Either ScheduledAt or Date must
// be set; Time defaults to the configured kickoff.
type MatchInput struct {
	Opponent      string     `json:"opponent" validate:"required,max=100"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	Date          string     `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time          string     `json:"time" validate:"omitempty,datetime=15:04"`
	FieldName     string     `json:"field_name" validate:"max=100"`
	FieldImage    *string    `json:"field_image"`
	OpponentScore *int       `json:"opponent_score" validate:"omitempty,min=0"`
	NetMatchTime  *int       `json:"net_match_time" validate:"omitempty,min=0"`
}

// RatingInput is the body of a rating upsert.
type RatingInput struct {
	Rating int    `json:"rating" validate:"min=0,max=100"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// MatchListItem is a match plus its derived classification and score line.
type MatchListItem struct {
	model.Match
	Upcoming bool        `json:"upcoming"`
	Score    stats.Score `json:"score"`
}

// MatchSummary is the aggregate view of one match.
type MatchSummary struct {
	MatchID      uuid.UUID         `json:"match_id"`
	Opponent     string            `json:"opponent"`
	ScheduledAt  time.Time         `json:"scheduled_at"`
	Upcoming     bool              `json:"upcoming"`
	Score        stats.Score       `json:"score"`
	Totals       model.PlayerStats `json:"totals"`
	PassAccuracy *int              `json:"pass_accuracy"`
	ShotAccuracy *int              `json:"shot_accuracy"`
	Events       int               `json:"events"`
	MVP          *model.MVPRecord  `json:"mvp"`
}

// SessionView is the live tracking screen: current match, selection and the
// transient notice and banner.
type SessionView struct {
	Loaded           bool             `json:"loaded"`
	CurrentMatch     *model.Match     `json:"current_match"`
	Summary          *MatchSummary    `json:"summary"`
	SelectedPlayerID *uuid.UUID       `json:"selected_player_id"`
	Notice           string           `json:"notice,omitempty"`
	Banner           *Banner          `json:"banner"`
	Catalog          []model.StatInfo `json:"catalog"`
}

// LedgerResult reports what a session intent did. Applied is false for no-ops.
type LedgerResult struct {
	Applied    bool              `json:"applied"`
	Action     string            `json:"action,omitempty"`
	Event      *model.MatchEvent `json:"event,omitempty"`
	Goalkeeper *bool             `json:"goalkeeper,omitempty"`
	Session    SessionView       `json:"session"`
}

// PlayerService defines roster use cases.
type PlayerService interface {
	ListPlayers(ctx context.Context) ([]model.Player, error)
	CreatePlayer(ctx context.Context, in PlayerInput) (model.Player, error)
	UpdatePlayer(ctx context.Context, id uuid.UUID, in PlayerInput) (model.Player, error)
	DeletePlayer(ctx context.Context, id uuid.UUID) error
	PlayerProfile(ctx context.Context, id uuid.UUID) (stats.Profile, error)
}

// MatchService defines match use cases outside the live ledger.
type MatchService interface {
	ListMatches(ctx context.Context) ([]MatchListItem, error)
	GetMatch(ctx context.Context, id uuid.UUID) (model.Match, error)
	MatchSummary(ctx context.Context, id uuid.UUID) (MatchSummary, error)
	CreateMatch(ctx context.Context, in MatchInput) (model.Match, error)
	UpdateMatch(ctx context.Context, id uuid.UUID, in MatchInput) (model.Match, error)
	DeleteMatch(ctx context.Context, id uuid.UUID) error
	ExportMatch(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

// SessionService forwards tracking-screen intents to the match ledger.
type SessionService interface {
	Session(ctx context.Context) (SessionView, error)
	SelectMatch(ctx context.Context, id *uuid.UUID) (SessionView, error)
	SelectPlayer(ctx context.Context, id *uuid.UUID) (SessionView, error)
	RecordStat(ctx context.Context, stat model.StatKey) (LedgerResult, error)
	Undo(ctx context.Context) (LedgerResult, error)
	ToggleGoalkeeper(ctx context.Context, playerID *uuid.UUID) (LedgerResult, error)
	HandleKey(ctx context.Context, key string, ctrl bool) (LedgerResult, error)
	DismissBanner(ctx context.Context) SessionView
	Reload(ctx context.Context) (SessionView, error)
}

// RatingService defines per-(match, player) rating use cases.
type RatingService interface {
	ListRatings(ctx context.Context) ([]model.MatchRating, error)
	UpsertRating(ctx context.Context, matchID, playerID uuid.UUID, in RatingInput) (model.MatchRating, error)
	DeleteRating(ctx context.Context, matchID, playerID uuid.UUID) error
}

// MVPService defines MVP selection use cases.
type MVPService interface {
	ListMVPs(ctx context.Context) ([]model.MVPRecord, error)
	SelectMVP(ctx context.Context, matchID, playerID uuid.UUID) (model.MVPRecord, error)
	ClearMVP(ctx context.Context, matchID uuid.UUID) error
}

type nopMetrics struct{}

func (nopMetrics) StatRecorded(model.StatKey) {}
func (nopMetrics) Undone() {}
func (nopMetrics) Mutation(string, string, error) {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
