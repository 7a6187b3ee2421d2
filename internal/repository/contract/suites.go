// Package contract holds storage-agnostic test suites every repository
// implementation must pass.
package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
)

type PlayerFactory func(t *testing.T) (repository.PlayerRepository, func())

type MatchFactory func(t *testing.T) (repo repository.MatchRepository, mkPlayer func(ctx context.Context, name string) (uuid.UUID, error), cleanup func())

// Fixtures hands the rating and MVP suites a match and a player to reference.
type Fixtures func(ctx context.Context) (matchID, playerID uuid.UUID, err error)

type RatingFactory func(t *testing.T) (repository.RatingRepository, Fixtures, func())

type MVPFactory func(t *testing.T) (repository.MVPRepository, Fixtures, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, players repository.PlayerRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

func newPlayer(name string) model.Player {
	return model.Player{Name: name, PreferredFoot: model.FootRight, FIFA: model.DefaultFIFAStats()}
}

func findPlayer(list []model.Player, id uuid.UUID) (model.Player, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return model.Player{}, false
}

func RunPlayerRepositoryContract(t *testing.T, makeRepo PlayerFactory) {
	t.Helper()

	t.Run("create_keeps_id_and_lists", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		in := newPlayer("Tonga")
		in.ID = uuid.New()
		img := "data:image/png;base64,AAAA"
		in.ProfileImage = &img
		bday := time.Date(1995, 7, 14, 0, 0, 0, 0, time.UTC)
		in.Birthday = &bday

		created, err := repo.Create(ctx, in)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if created.ID != in.ID {
			t.Fatalf("id not kept: %s vs %s", created.ID, in.ID)
		}
		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		got, ok := findPlayer(list, in.ID)
		if !ok {
			t.Fatalf("created player missing from list")
		}
		if got.Name != "Tonga" || got.FIFA != model.DefaultFIFAStats() || got.PreferredFoot != model.FootRight {
			t.Fatalf("mismatch: %+v", got)
		}
		if got.ProfileImage == nil || *got.ProfileImage != img {
			t.Fatalf("profile image not round-tripped: %v", got.ProfileImage)
		}
		if got.Birthday == nil || !got.Birthday.Equal(bday) {
			t.Fatalf("birthday not round-tripped: %v", got.Birthday)
		}
	})

	t.Run("create_generates_missing_id", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		created, err := repo.Create(context.Background(), newPlayer("Bul"))
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if created.ID == uuid.Nil {
			t.Fatalf("expected generated id")
		}
	})

	t.Run("count", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		n, err := repo.Count(ctx)
		if err != nil || n != 0 {
			t.Fatalf("expected empty roster, got n=%d err=%v", n, err)
		}
		for _, name := range []string{"Pinky", "Was", "Wai"} {
			if _, err := repo.Create(ctx, newPlayer(name)); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		if n, err = repo.Count(ctx); err != nil || n != 3 {
			t.Fatalf("expected 3, got n=%d err=%v", n, err)
		}
	})

	t.Run("update_and_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		created, err := repo.Create(ctx, newPlayer("Was"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		created.Bongs = 7
		created.FIFA.Pace = 91
		updated, err := repo.Update(ctx, created)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Bongs != 7 || updated.FIFA.Pace != 91 {
			t.Fatalf("update not applied: %+v", updated)
		}
		ghost := newPlayer("Ghost")
		ghost.ID = uuid.New()
		if _, err := repo.Update(ctx, ghost); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate_id_already_exists", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		p := newPlayer("Dup")
		p.ID = uuid.New()
		if _, err := repo.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := repo.Create(ctx, p); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		p, err := repo.Create(ctx, newPlayer("Wai"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := repo.Delete(ctx, p.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := repo.Delete(ctx, p.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func RunMatchRepositoryContract(t *testing.T, makeRepo MatchFactory) {
	t.Helper()

	t.Run("create_update_roundtrip", func(t *testing.T) {
		repo, mkPlayer, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		p1, err := mkPlayer(ctx, "Tonga")
		if err != nil {
			t.Fatalf("mkPlayer: %v", err)
		}
		p2, err := mkPlayer(ctx, "Bul")
		if err != nil {
			t.Fatalf("mkPlayer: %v", err)
		}
		roster := []uuid.UUID{p1, p2}

		m := model.Match{
			ID:          uuid.New(),
			Opponent:    "Rivals",
			ScheduledAt: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
			FieldName:   "North",
			PlayerStats: model.NewPlayerStatsLines(roster),
		}
		created, err := repo.Create(ctx, m)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.ID != m.ID || len(created.PlayerStats) != 2 || len(created.Events) != 0 {
			t.Fatalf("unexpected created match: %+v", created)
		}

		gk := p2
		score := 3
		created.OpponentScore = &score
		created.CurrentGoalkeeperID = &gk
		created.PlayerStats[1].IsGoalkeeper = true
		created.PlayerStats[0].Stats.Goals = 1
		created.Events = []model.MatchEvent{{
			ID: uuid.New(), PlayerID: p1, Stat: model.StatGoals, Value: 1,
			Timestamp: time.Date(2026, 5, 1, 18, 10, 0, 0, time.UTC),
		}}
		if _, err := repo.UpdateMatch(ctx, created); err != nil {
			t.Fatalf("update: %v", err)
		}

		list, err := repo.List(ctx, roster)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 match, got %d", len(list))
		}
		got := list[0]
		if got.OpponentScore == nil || *got.OpponentScore != 3 {
			t.Fatalf("score not stored: %v", got.OpponentScore)
		}
		if got.CurrentGoalkeeperID == nil || *got.CurrentGoalkeeperID != p2 {
			t.Fatalf("goalkeeper not stored")
		}
		if len(got.Events) != 1 || got.Events[0].Stat != model.StatGoals {
			t.Fatalf("events not stored: %+v", got.Events)
		}
		if got.PlayerStats[0].PlayerID != p1 || got.PlayerStats[0].Stats.Goals != 1 || !got.PlayerStats[1].IsGoalkeeper {
			t.Fatalf("lines not stored: %+v", got.PlayerStats)
		}
	})

	t.Run("list_aligns_to_roster", func(t *testing.T) {
		repo, mkPlayer, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		p1, _ := mkPlayer(ctx, "Tonga")
		late, _ := mkPlayer(ctx, "Late")
		m := model.Match{ID: uuid.New(), Opponent: "X", ScheduledAt: time.Now().UTC(), PlayerStats: model.NewPlayerStatsLines([]uuid.UUID{p1})}
		if _, err := repo.Create(ctx, m); err != nil {
			t.Fatalf("create: %v", err)
		}
		list, err := repo.List(ctx, []uuid.UUID{late, p1})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		lines := list[0].PlayerStats
		if len(lines) != 2 || lines[0].PlayerID != late || lines[1].PlayerID != p1 {
			t.Fatalf("lines not aligned to roster: %+v", lines)
		}
	})

	t.Run("list_newest_first", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			m := model.Match{ID: uuid.New(), Opponent: "T", ScheduledAt: base.AddDate(0, 0, i*7)}
			if _, err := repo.Create(ctx, m); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		list, err := repo.List(ctx, nil)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 3 || !list[0].ScheduledAt.After(list[1].ScheduledAt) || !list[1].ScheduledAt.After(list[2].ScheduledAt) {
			t.Fatalf("unexpected order")
		}
	})

	t.Run("update_delete_not_found", func(t *testing.T) {
		repo, _, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		ghost := model.Match{ID: uuid.New(), Opponent: "Nobody", ScheduledAt: time.Now().UTC()}
		if _, err := repo.UpdateMatch(ctx, ghost); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on update, got %v", err)
		}
		if err := repo.Delete(ctx, ghost.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on delete, got %v", err)
		}
	})
}

func RunRatingRepositoryContract(t *testing.T, makeRepo RatingFactory) {
	t.Helper()

	t.Run("upsert_replaces", func(t *testing.T) {
		repo, fixtures, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mid, pid, err := fixtures(ctx)
		if err != nil {
			t.Fatalf("fixtures: %v", err)
		}
		if _, err := repo.Upsert(ctx, model.MatchRating{MatchID: mid, PlayerID: pid, Rating: 60, Notes: "ok"}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		out, err := repo.Upsert(ctx, model.MatchRating{MatchID: mid, PlayerID: pid, Rating: 85})
		if err != nil {
			t.Fatalf("upsert 2: %v", err)
		}
		if out.Rating != 85 || out.Notes != "" {
			t.Fatalf("upsert didn't replace: %+v", out)
		}
		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 rating, got %d", len(list))
		}
	})

	t.Run("unknown_match_conflicts", func(t *testing.T) {
		repo, fixtures, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		_, pid, err := fixtures(ctx)
		if err != nil {
			t.Fatalf("fixtures: %v", err)
		}
		_, err = repo.Upsert(ctx, model.MatchRating{MatchID: uuid.New(), PlayerID: pid, Rating: 50})
		if !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, fixtures, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mid, pid, err := fixtures(ctx)
		if err != nil {
			t.Fatalf("fixtures: %v", err)
		}
		key := model.RatingKey{MatchID: mid, PlayerID: pid}
		if _, err := repo.Upsert(ctx, model.MatchRating{MatchID: mid, PlayerID: pid, Rating: 40}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if err := repo.Delete(ctx, key); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := repo.Delete(ctx, key); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func RunMVPRepositoryContract(t *testing.T, makeRepo MVPFactory) {
	t.Helper()

	t.Run("one_per_match", func(t *testing.T) {
		repo, fixtures, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mid, pid, err := fixtures(ctx)
		if err != nil {
			t.Fatalf("fixtures: %v", err)
		}
		_, pid2, err := fixtures(ctx)
		if err != nil {
			t.Fatalf("fixtures 2: %v", err)
		}
		date := time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)
		if _, err := repo.Upsert(ctx, model.MVPRecord{MatchID: mid, PlayerID: pid, Date: date, Opponent: "A"}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		out, err := repo.Upsert(ctx, model.MVPRecord{MatchID: mid, PlayerID: pid2, Date: date, Opponent: "A", Rating: 77})
		if err != nil {
			t.Fatalf("upsert 2: %v", err)
		}
		if out.PlayerID != pid2 || out.Rating != 77 {
			t.Fatalf("upsert didn't replace: %+v", out)
		}
		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 || list[0].PlayerID != pid2 {
			t.Fatalf("expected single replaced record, got %+v", list)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo, fixtures, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mid, pid, err := fixtures(ctx)
		if err != nil {
			t.Fatalf("fixtures: %v", err)
		}
		if _, err := repo.Upsert(ctx, model.MVPRecord{MatchID: mid, PlayerID: pid, Date: time.Now().UTC(), Opponent: "B"}); err != nil {
			t.Fatalf("upsert: %v", err)
		}
		if err := repo.Delete(ctx, mid); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := repo.Delete(ctx, mid); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, players, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			_, err := players.Create(ctx, newPlayer("TxCommit"))
			return err
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if n, err := players.Count(ctx); err != nil || n != 1 {
			t.Fatalf("expected committed row visible, got n=%d err=%v", n, err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, players, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := players.Create(ctx, newPlayer("TxRollback")); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if n, err := players.Count(ctx); err != nil || n != 0 {
			t.Fatalf("expected rollback, got n=%d err=%v", n, err)
		}
	})

	t.Run("nested_joins_outer", func(t *testing.T) {
		tx, players, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		errMarker := errors.New("outer fails")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := tx.WithinTx(ctx, func(ctx context.Context) error {
				_, err := players.Create(ctx, newPlayer("Inner"))
				return err
			}); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if n, _ := players.Count(ctx); n != 0 {
			t.Fatalf("inner write survived outer rollback")
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
