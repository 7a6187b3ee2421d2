package service_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
	"github.com/maxviazov/bongo-stats-service/internal/service"
)

var errBoom = errors.New("boom")

type fakePlayerRepo struct {
	mu      sync.Mutex
	players []model.Player
	fail    error
	creates int
}

func (f *fakePlayerRepo) List(context.Context) ([]model.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	return append([]model.Player(nil), f.players...), nil
}

func (f *fakePlayerRepo) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	return len(f.players), nil
}

func (f *fakePlayerRepo) Create(_ context.Context, p model.Player) (model.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return model.Player{}, f.fail
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.creates++
	f.players = append(f.players, p)
	return p, nil
}

func (f *fakePlayerRepo) Update(_ context.Context, p model.Player) (model.Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return model.Player{}, f.fail
	}
	for i := range f.players {
		if f.players[i].ID == p.ID {
			f.players[i] = p
			return p, nil
		}
	}
	return model.Player{}, repository.ErrNotFound
}

func (f *fakePlayerRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	for i := range f.players {
		if f.players[i].ID == id {
			f.players = append(f.players[:i], f.players[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[uuid.UUID]model.Match
	fail    error
	updates []model.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[uuid.UUID]model.Match{}}
}

func (f *fakeMatchRepo) List(_ context.Context, roster []uuid.UUID) ([]model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]model.Match, 0, len(f.matches))
	for _, m := range f.matches {
		c := m.Clone()
		c.PlayerStats = model.AlignToRoster(c.PlayerStats, roster, c.CurrentGoalkeeperID)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return out, nil
}

func (f *fakeMatchRepo) Create(_ context.Context, m model.Match) (model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return model.Match{}, f.fail
	}
	f.matches[m.ID] = m.Clone()
	return m, nil
}

func (f *fakeMatchRepo) UpdateMatch(_ context.Context, m model.Match) (model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return model.Match{}, f.fail
	}
	if _, ok := f.matches[m.ID]; !ok {
		return model.Match{}, repository.ErrNotFound
	}
	f.matches[m.ID] = m.Clone()
	f.updates = append(f.updates, m.Clone())
	return m, nil
}

func (f *fakeMatchRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	if _, ok := f.matches[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.matches, id)
	return nil
}

type fakeRatingRepo struct {
	mu      sync.Mutex
	ratings map[model.RatingKey]model.MatchRating
	fail    error
}

func (f *fakeRatingRepo) List(context.Context) ([]model.MatchRating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]model.MatchRating, 0, len(f.ratings))
	for _, r := range f.ratings {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRatingRepo) Upsert(_ context.Context, r model.MatchRating) (model.MatchRating, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return model.MatchRating{}, f.fail
	}
	f.ratings[r.Key()] = r
	return r, nil
}

func (f *fakeRatingRepo) Delete(_ context.Context, key model.RatingKey) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	delete(f.ratings, key)
	return nil
}

type fakeMVPRepo struct {
	mu   sync.Mutex
	mvps map[uuid.UUID]model.MVPRecord
	fail error
}

func (f *fakeMVPRepo) List(context.Context) ([]model.MVPRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([]model.MVPRecord, 0, len(f.mvps))
	for _, r := range f.mvps {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeMVPRepo) Upsert(_ context.Context, r model.MVPRecord) (model.MVPRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return model.MVPRecord{}, f.fail
	}
	f.mvps[r.MatchID] = r
	return r, nil
}

func (f *fakeMVPRepo) Delete(_ context.Context, matchID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	delete(f.mvps, matchID)
	return nil
}

var (
	_ repository.PlayerRepository = (*fakePlayerRepo)(nil)
	_ repository.MatchRepository  = (*fakeMatchRepo)(nil)
	_ repository.RatingRepository = (*fakeRatingRepo)(nil)
	_ repository.MVPRepository    = (*fakeMVPRepo)(nil)
)

type fakePusher struct {
	mu       sync.Mutex
	pushed   []model.Match
	discards []uuid.UUID
	flushes  int
	flushErr error
}

func (p *fakePusher) Push(m model.Match) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, m.Clone())
}

func (p *fakePusher) Discard(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.discards = append(p.discards, id)
}

func (p *fakePusher) Flush(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.flushes++
	return p.flushErr
}

func (p *fakePusher) last() (model.Match, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pushed) == 0 {
		return model.Match{}, false
	}
	return p.pushed[len(p.pushed)-1], true
}

type fakeMetrics struct {
	recorded  map[model.StatKey]int
	undos     int
	mutations []string
}

func (m *fakeMetrics) StatRecorded(k model.StatKey) {
	if m.recorded == nil {
		m.recorded = map[model.StatKey]int{}
	}
	m.recorded[k]++
}

func (m *fakeMetrics) Undone() { m.undos++ }

func (m *fakeMetrics) Mutation(entity, op string, err error) {
	res := "ok"
	if err != nil {
		res = "error"
	}
	m.mutations = append(m.mutations, entity+"."+op+"."+res)
}

var kickoff = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

// env is a fully wired service layer over in-memory repositories.
type env struct {
	clock   *clockwork.FakeClock
	state   *service.State
	players *fakePlayerRepo
	matches *fakeMatchRepo
	ratings *fakeRatingRepo
	mvps    *fakeMVPRepo
	pusher  *fakePusher
	metrics *fakeMetrics
	loader  *service.Loader

	Players service.PlayerService
	Matches service.MatchService
	Session service.SessionService
	Ratings service.RatingService
	MVPs    service.MVPService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zerolog.New(io.Discard)
	e := &env{
		clock:   clockwork.NewFakeClockAt(kickoff.Add(-24 * time.Hour)),
		players: &fakePlayerRepo{},
		matches: newFakeMatchRepo(),
		ratings: &fakeRatingRepo{ratings: map[model.RatingKey]model.MatchRating{}},
		mvps:    &fakeMVPRepo{mvps: map[uuid.UUID]model.MVPRecord{}},
		pusher:  &fakePusher{},
		metrics: &fakeMetrics{},
	}
	e.state = service.NewState(e.clock, service.DefaultNoticeTTL)
	repos := service.Repos{Players: e.players, Matches: e.matches, Ratings: e.ratings, MVPs: e.mvps}
	e.loader = service.NewLoader(e.state, repos, []string{"Tonga", "Bul", "Pinky", "Was", "Wai"}, e.pusher, log)
	e.Players = service.NewPlayerService(e.state, e.players, e.metrics, log)
	e.Matches = service.NewMatchService(e.state, e.matches, e.pusher, e.metrics, service.MatchOptions{DefaultKickoff: "18:00", Location: time.UTC}, log)
	e.Session = service.NewSessionService(e.state, e.loader, e.pusher, e.metrics, log)
	e.Ratings = service.NewRatingService(e.state, e.ratings, e.metrics, log)
	e.MVPs = service.NewMVPService(e.state, e.mvps, e.metrics, log)
	return e
}

// loaded returns an env whose state has been loaded with the default roster.
func loaded(t *testing.T) *env {
	t.Helper()
	e := newEnv(t)
	require.NoError(t, e.loader.Load(context.Background()))
	return e
}

func (e *env) roster(t *testing.T) []model.Player {
	t.Helper()
	ps, err := e.Players.ListPlayers(context.Background())
	require.NoError(t, err)
	return ps
}

// tracking creates a match, makes it current and selects the first player.
func (e *env) tracking(t *testing.T) (model.Match, model.Player) {
	t.Helper()
	ctx := context.Background()
	at := kickoff
	m, err := e.Matches.CreateMatch(ctx, service.MatchInput{Opponent: "Rivals FC", ScheduledAt: &at})
	require.NoError(t, err)
	p := e.roster(t)[0]
	_, err = e.Session.SelectPlayer(ctx, &p.ID)
	require.NoError(t, err)
	return m, p
}
