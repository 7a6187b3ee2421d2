package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
)

type playerRepository struct{ pool *pgxpool.Pool }

func NewPlayerRepository(pool *pgxpool.Pool) repository.PlayerRepository {
	return &playerRepository{pool: pool}
}

const playerColumns = `id, name, birthday, bongs, preferred_foot,
	pace, shooting, dribbling, physical, defense, passing,
	profile_image, created_at, updated_at`

func scanPlayer(row pgx.Row) (model.Player, error) {
	var p model.Player
	err := row.Scan(&p.ID, &p.Name, &p.Birthday, &p.Bongs, &p.PreferredFoot,
		&p.FIFA.Pace, &p.FIFA.Shooting, &p.FIFA.Dribbling, &p.FIFA.Physical, &p.FIFA.Defense, &p.FIFA.Passing,
		&p.ProfileImage, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns the roster in creation order.
func (r *playerRepository) List(ctx context.Context) ([]model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	rows, err := getQ(ctx, r.pool).Query(ctx,
		`SELECT `+playerColumns+` FROM players ORDER BY created_at, name`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	out := make([]model.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		out = append(out, p)
	}
	return out, repository.MapPgError(rows.Err())
}

func (r *playerRepository) Count(ctx context.Context) (int, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	var n int
	if err := getQ(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, repository.MapPgError(err)
	}
	return n, nil
}

func (r *playerRepository) Create(ctx context.Context, p model.Player) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO players (id, name, birthday, bongs, preferred_foot,
			pace, shooting, dribbling, physical, defense, passing, profile_image)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+playerColumns,
		p.ID, p.Name, p.Birthday, p.Bongs, p.PreferredFoot,
		p.FIFA.Pace, p.FIFA.Shooting, p.FIFA.Dribbling, p.FIFA.Physical, p.FIFA.Defense, p.FIFA.Passing,
		p.ProfileImage,
	)
	out, err := scanPlayer(row)
	if err != nil {
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *playerRepository) Update(ctx context.Context, p model.Player) (model.Player, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.Player{}, err
	}
	row := getQ(ctx, r.pool).QueryRow(ctx,
		`UPDATE players SET name = $2, birthday = $3, bongs = $4, preferred_foot = $5,
			pace = $6, shooting = $7, dribbling = $8, physical = $9, defense = $10, passing = $11,
			profile_image = $12, updated_at = now()
		 WHERE id = $1
		 RETURNING `+playerColumns,
		p.ID, p.Name, p.Birthday, p.Bongs, p.PreferredFoot,
		p.FIFA.Pace, p.FIFA.Shooting, p.FIFA.Dribbling, p.FIFA.Physical, p.FIFA.Defense, p.FIFA.Passing,
		p.ProfileImage,
	)
	out, err := scanPlayer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Player{}, repository.ErrNotFound
		}
		return model.Player{}, repository.MapPgError(err)
	}
	return out, nil
}

func (r *playerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ensurePool(r.pool); err != nil {
		return err
	}
	return affectedOrNotFound(getQ(ctx, r.pool).Exec(ctx, `DELETE FROM players WHERE id = $1`, id))
}

var _ repository.PlayerRepository = (*playerRepository)(nil)
