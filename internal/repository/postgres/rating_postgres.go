package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
)

type ratingRepository struct{ pool *pgxpool.Pool }

func NewRatingRepository(pool *pgxpool.Pool) repository.RatingRepository {
	return &ratingRepository{pool: pool}
}

func (r *ratingRepository) List(ctx context.Context) ([]model.MatchRating, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT match_id, player_id, rating, notes FROM match_ratings ORDER BY id`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := make([]model.MatchRating, 0)
	for rows.Next() {
		var it model.MatchRating
		if err := rows.Scan(&it.MatchID, &it.PlayerID, &it.Rating, &it.Notes); err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, it)
	}
	return out, repository.MapPgError(rows.Err())
}

// Upsert inserts or replaces the rating of (match, player).
func (r *ratingRepository) Upsert(ctx context.Context, in model.MatchRating) (model.MatchRating, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.MatchRating{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO match_ratings (match_id, player_id, rating, notes)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (match_id, player_id)
		 DO UPDATE SET rating = EXCLUDED.rating, notes = EXCLUDED.notes, updated_at = now()
		 RETURNING match_id, player_id, rating, notes`,
		in.MatchID, in.PlayerID, in.Rating, in.Notes,
	)
	var out model.MatchRating
	if err := row.Scan(&out.MatchID, &out.PlayerID, &out.Rating, &out.Notes); err != nil {
		return model.MatchRating{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *ratingRepository) Delete(ctx context.Context, key model.RatingKey) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	return affectedOrNotFound(getQ(ctx, r.pool).Exec(ctx,
		`DELETE FROM match_ratings WHERE match_id = $1 AND player_id = $2`, key.MatchID, key.PlayerID))
}

var _ repository.RatingRepository = (*ratingRepository)(nil)
