package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/maxviazov/bongo-stats-service/internal/model"
)

// Pinger represents a minimal readiness probe capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// PlayerRepository persists the roster. Create keeps a caller-supplied id
// and generates one only when it is uuid.Nil.
type PlayerRepository interface {
	List(ctx context.Context) ([]model.Player, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, p model.Player) (model.Player, error)
	Update(ctx context.Context, p model.Player) (model.Player, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MatchRepository persists whole match snapshots: details, event log and the
// per-player lines are written together.
type MatchRepository interface {
	// List returns every match with its lines aligned to roster.
	List(ctx context.Context, roster []uuid.UUID) ([]model.Match, error)
	Create(ctx context.Context, m model.Match) (model.Match, error)
	// UpdateMatch overwrites the stored snapshot with m.
	UpdateMatch(ctx context.Context, m model.Match) (model.Match, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RatingRepository persists at most one rating per (match, player).
type RatingRepository interface {
	List(ctx context.Context) ([]model.MatchRating, error)
	Upsert(ctx context.Context, r model.MatchRating) (model.MatchRating, error)
	Delete(ctx context.Context, key model.RatingKey) error
}

// MVPRepository persists at most one MVP record per match.
type MVPRepository interface {
	List(ctx context.Context) ([]model.MVPRecord, error)
	Upsert(ctx context.Context, r model.MVPRecord) (model.MVPRecord, error)
	Delete(ctx context.Context, matchID uuid.UUID) error
}
