package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
)

type mvpRepository struct{ pool *pgxpool.Pool }

func NewMVPRepository(pool *pgxpool.Pool) repository.MVPRepository {
	return &mvpRepository{pool: pool}
}

func (r *mvpRepository) List(ctx context.Context) ([]model.MVPRecord, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT match_id, player_id, match_date, opponent, rating
		 FROM mvp_records ORDER BY match_date DESC`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := make([]model.MVPRecord, 0)
	for rows.Next() {
		var it model.MVPRecord
		if err := rows.Scan(&it.MatchID, &it.PlayerID, &it.Date, &it.Opponent, &it.Rating); err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, it)
	}
	return out, repository.MapPgError(rows.Err())
}

// Upsert replaces any earlier MVP of the same match.
func (r *mvpRepository) Upsert(ctx context.Context, in model.MVPRecord) (model.MVPRecord, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.MVPRecord{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO mvp_records (match_id, player_id, match_date, opponent, rating)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (match_id)
		 DO UPDATE SET player_id = EXCLUDED.player_id, match_date = EXCLUDED.match_date,
			opponent = EXCLUDED.opponent, rating = EXCLUDED.rating
		 RETURNING match_id, player_id, match_date, opponent, rating`,
		in.MatchID, in.PlayerID, in.Date, in.Opponent, in.Rating,
	)
	var out model.MVPRecord
	if err := row.Scan(&out.MatchID, &out.PlayerID, &out.Date, &out.Opponent, &out.Rating); err != nil {
		return model.MVPRecord{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *mvpRepository) Delete(ctx context.Context, matchID uuid.UUID) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	return affectedOrNotFound(getQ(ctx, r.pool).Exec(ctx, `DELETE FROM mvp_records WHERE match_id = $1`, matchID))
}

var _ repository.MVPRepository = (*mvpRepository)(nil)
