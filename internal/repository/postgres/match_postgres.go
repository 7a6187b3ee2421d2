package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
)

type matchRepository struct{ pool *pgxpool.Pool }

func NewMatchRepository(pool *pgxpool.Pool) repository.MatchRepository {
	return &matchRepository{pool: pool}
}

const matchColumns = `id, opponent, scheduled_at, field_name, field_image,
	opponent_score, net_match_time, stats, events, current_goalkeeper_id,
	created_at, updated_at`

// matchRow is the storage shape: lines live in a JSONB object keyed by player
// id and the event log in a JSONB array.
type matchRow struct {
	model.Match
	stats  []byte
	events []byte
}

func encodeMatch(m model.Match) (stats, events []byte, err error) {
	byPlayer := make(map[string]model.PlayerMatchStats, len(m.PlayerStats))
	for _, ps := range m.PlayerStats {
		byPlayer[ps.PlayerID.String()] = ps
	}
	if stats, err = json.Marshal(byPlayer); err != nil {
		return nil, nil, fmt.Errorf("encode stats: %w", err)
	}
	evs := m.Events
	if evs == nil {
		evs = []model.MatchEvent{}
	}
	if events, err = json.Marshal(evs); err != nil {
		return nil, nil, fmt.Errorf("encode events: %w", err)
	}
	return stats, events, nil
}

// decode fills Events and PlayerStats. A nil roster keeps every stored line,
// ordered by player id; otherwise lines are aligned to the roster.
func (r *matchRow) decode(roster []uuid.UUID) (model.Match, error) {
	m := r.Match
	var byPlayer map[string]model.PlayerMatchStats
	if len(r.stats) > 0 {
		if err := json.Unmarshal(r.stats, &byPlayer); err != nil {
			return model.Match{}, fmt.Errorf("decode stats of match %s: %w", m.ID, err)
		}
	}
	m.Events = []model.MatchEvent{}
	if len(r.events) > 0 {
		if err := json.Unmarshal(r.events, &m.Events); err != nil {
			return model.Match{}, fmt.Errorf("decode events of match %s: %w", m.ID, err)
		}
	}

	stored := make([]model.PlayerMatchStats, 0, len(byPlayer))
	for key, ps := range byPlayer {
		if ps.PlayerID == uuid.Nil {
			id, err := uuid.Parse(key)
			if err != nil {
				continue
			}
			ps.PlayerID = id
		}
		stored = append(stored, ps)
	}
	if roster == nil {
		sort.Slice(stored, func(i, j int) bool { return stored[i].PlayerID.String() < stored[j].PlayerID.String() })
		m.PlayerStats = stored
		return m, nil
	}
	m.PlayerStats = model.AlignToRoster(stored, roster, m.CurrentGoalkeeperID)
	return m, nil
}

func scanMatch(row pgx.Row) (*matchRow, error) {
	var r matchRow
	err := row.Scan(&r.ID, &r.Opponent, &r.ScheduledAt, &r.FieldName, &r.FieldImage,
		&r.OpponentScore, &r.NetMatchTime, &r.stats, &r.events, &r.CurrentGoalkeeperID,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns every match, newest first.
func (r *matchRepository) List(ctx context.Context, roster []uuid.UUID) ([]model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+matchColumns+` FROM matches ORDER BY scheduled_at DESC, id`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := make([]model.Match, 0)
	for rows.Next() {
		raw, err := scanMatch(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		m, err := raw.decode(roster)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, repository.MapPgError(rows.Err())
}

func (r *matchRepository) Create(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	stats, events, err := encodeMatch(m)
	if err != nil {
		return model.Match{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO matches (id, opponent, scheduled_at, field_name, field_image,
			opponent_score, net_match_time, stats, events, current_goalkeeper_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+matchColumns,
		m.ID, m.Opponent, m.ScheduledAt, m.FieldName, m.FieldImage,
		m.OpponentScore, m.NetMatchTime, stats, events, m.CurrentGoalkeeperID,
	)
	raw, err := scanMatch(row)
	if err != nil {
		return model.Match{}, repository.MapPgError(err)
	}
	return raw.decode(lineOrder(m))
}

// UpdateMatch overwrites the whole snapshot, event log included.
func (r *matchRepository) UpdateMatch(ctx context.Context, m model.Match) (model.Match, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Match{}, err
	}
	stats, events, err := encodeMatch(m)
	if err != nil {
		return model.Match{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`UPDATE matches SET opponent = $2, scheduled_at = $3, field_name = $4, field_image = $5,
			opponent_score = $6, net_match_time = $7, stats = $8, events = $9,
			current_goalkeeper_id = $10, updated_at = now()
		 WHERE id = $1
		 RETURNING `+matchColumns,
		m.ID, m.Opponent, m.ScheduledAt, m.FieldName, m.FieldImage,
		m.OpponentScore, m.NetMatchTime, stats, events, m.CurrentGoalkeeperID,
	)
	raw, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Match{}, repository.ErrNotFound
		}
		return model.Match{}, repository.MapPgError(err)
	}
	return raw.decode(lineOrder(m))
}

func (r *matchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	return affectedOrNotFound(getQ(ctx, r.pool).Exec(ctx, `DELETE FROM matches WHERE id = $1`, id))
}

// lineOrder keeps the caller's line order on the returned snapshot.
func lineOrder(m model.Match) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m.PlayerStats))
	for _, ps := range m.PlayerStats {
		ids = append(ids, ps.PlayerID)
	}
	return ids
}

var _ repository.MatchRepository = (*matchRepository)(nil)
