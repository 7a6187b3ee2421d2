package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/bongo-stats-service/internal/handler"
	"github.com/maxviazov/bongo-stats-service/internal/model"
	"github.com/maxviazov/bongo-stats-service/internal/repository"
	"github.com/maxviazov/bongo-stats-service/internal/service"
	"github.com/maxviazov/bongo-stats-service/internal/stats"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type stubState bool

func (s stubState) Loaded() bool { return bool(s) }

// stubSession implements only what a test calls; the rest panics.
type stubSession struct {
	service.SessionService
	lastStat model.StatKey
	lastKey  string
	lastCtrl bool
	err      error
}

func (s *stubSession) Session(context.Context) (service.SessionView, error) {
	return service.SessionView{Loaded: true}, nil
}

func (s *stubSession) RecordStat(_ context.Context, k model.StatKey) (service.LedgerResult, error) {
	s.lastStat = k
	if s.err != nil {
		return service.LedgerResult{}, s.err
	}
	return service.LedgerResult{Applied: true, Action: service.ActionRecord}, nil
}

func (s *stubSession) Undo(context.Context) (service.LedgerResult, error) {
	return service.LedgerResult{Applied: false}, nil
}

func (s *stubSession) HandleKey(_ context.Context, key string, ctrl bool) (service.LedgerResult, error) {
	s.lastKey, s.lastCtrl = key, ctrl
	return service.LedgerResult{Applied: true, Action: service.ActionUndo}, nil
}

func (s *stubSession) ToggleGoalkeeper(_ context.Context, id *uuid.UUID) (service.LedgerResult, error) {
	gk := id != nil
	return service.LedgerResult{Applied: true, Action: service.ActionGoalkeeper, Goalkeeper: &gk}, nil
}

func (s *stubSession) Reload(context.Context) (service.SessionView, error) {
	return service.SessionView{Banner: &service.Banner{Message: service.LoadFailedMessage, Persistent: true}}, s.err
}

type stubMatches struct {
	service.MatchService
	created service.MatchInput
	err     error
}

func (s *stubMatches) ListMatches(context.Context) ([]service.MatchListItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []service.MatchListItem{{Match: model.Match{Opponent: "Lions"}, Upcoming: true, Score: stats.Score{Result: stats.ResultPending}}}, nil
}

func (s *stubMatches) CreateMatch(_ context.Context, in service.MatchInput) (model.Match, error) {
	s.created = in
	if in.Opponent == "" {
		return model.Match{}, service.NewInvalidInputError(service.FieldError{Field: "opponent", Message: "must not be empty"})
	}
	return model.Match{ID: uuid.New(), Opponent: in.Opponent}, nil
}

func (s *stubMatches) GetMatch(context.Context, uuid.UUID) (model.Match, error) {
	return model.Match{}, repository.ErrNotFound
}

func (s *stubMatches) ExportMatch(context.Context, uuid.UUID) ([]byte, string, error) {
	return []byte("xlsx"), "bongo-vs-lions-2026-03-14.xlsx", nil
}

type stubMVPs struct {
	service.MVPService
	picked uuid.UUID
}

func (s *stubMVPs) SelectMVP(_ context.Context, matchID, playerID uuid.UUID) (model.MVPRecord, error) {
	s.picked = playerID
	return model.MVPRecord{MatchID: matchID, PlayerID: playerID}, nil
}

func newEngine(d handler.Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler.Register(r, d)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body == "" {
		rd = bytes.NewReader(nil)
	} else {
		rd = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name   string
		pinger handler.Pinger
		path   string
		want   int
	}{
		{"live root", stubPinger{}, "/live", http.StatusOK},
		{"ready root", stubPinger{}, "/ready", http.StatusOK},
		{"ready api", stubPinger{}, "/api/v1/health/ready", http.StatusOK},
		{"live api with db down", stubPinger{err: errors.New("db down")}, "/api/v1/health/live", http.StatusOK},
		{"ready with db down", stubPinger{err: errors.New("db down")}, "/ready", http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(newEngine(handler.Deps{Pinger: tc.pinger, State: stubState(false)}), http.MethodGet, tc.path, "")
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestReadiness_ReportsLoadState(t *testing.T) {
	w := do(newEngine(handler.Deps{Pinger: stubPinger{}, State: stubState(false)}), http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["loaded"])
}

func TestCatalog(t *testing.T) {
	w := do(newEngine(handler.Deps{}), http.MethodGet, "/api/v1/stats/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got []model.StatInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 12)
	assert.Equal(t, "G", got[0].Shortcut)
}

func TestSession_RecordStat(t *testing.T) {
	s := &stubSession{}
	r := newEngine(handler.Deps{Session: s})

	w := do(r, http.MethodPost, "/api/v1/session/stats", `{"stat":"goals"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.StatGoals, s.lastStat)
	assert.Contains(t, w.Body.String(), `"applied":true`)

	w = do(r, http.MethodPost, "/api/v1/session/stats", `{"stat":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.err = service.ErrNotLoaded
	w = do(r, http.MethodPost, "/api/v1/session/stats", `{"stat":"goals"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSession_NoopIsNotAnError(t *testing.T) {
	w := do(newEngine(handler.Deps{Session: &stubSession{}}), http.MethodPost, "/api/v1/session/undo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"applied":false`)
}

func TestSession_KeysAndGoalkeeper(t *testing.T) {
	s := &stubSession{}
	r := newEngine(handler.Deps{Session: s})

	w := do(r, http.MethodPost, "/api/v1/session/keys", `{"key":"z","ctrl":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "z", s.lastKey)
	assert.True(t, s.lastCtrl)

	w = do(r, http.MethodPost, "/api/v1/session/goalkeeper", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"goalkeeper":false`)

	w = do(r, http.MethodPost, "/api/v1/session/goalkeeper", `{"player_id":"`+uuid.NewString()+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"goalkeeper":true`)
}

func TestSession_ReloadFailureCarriesBanner(t *testing.T) {
	s := &stubSession{err: errors.New("db down")}
	w := do(newEngine(handler.Deps{Session: s}), http.MethodPost, "/api/v1/session/reload", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), service.LoadFailedMessage)
	assert.Contains(t, w.Body.String(), `"persistent":true`)
}

func TestMatches(t *testing.T) {
	m := &stubMatches{}
	mvps := &stubMVPs{}
	r := newEngine(handler.Deps{Matches: m, MVPs: mvps})

	w := do(r, http.MethodGet, "/api/v1/matches", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"upcoming":true`)

	w = do(r, http.MethodPost, "/api/v1/matches", `{"opponent":"Lions","date":"2026-03-14"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "2026-03-14", m.created.Date)

	w = do(r, http.MethodPost, "/api/v1/matches", `{"date":"2026-03-14"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"opponent"`)

	w = do(r, http.MethodGet, "/api/v1/matches/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/matches/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/matches/"+uuid.NewString()+"/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/vnd.openxmlformats"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bongo-vs-lions-2026-03-14.xlsx")

	pid := uuid.New()
	w = do(r, http.MethodPut, "/api/v1/matches/"+uuid.NewString()+"/mvp", `{"player_id":"`+pid.String()+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pid, mvps.picked)

	w = do(r, http.MethodPut, "/api/v1/matches/"+uuid.NewString()+"/mvp", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// ratings routes stay unmounted without a rating service
	w = do(r, http.MethodGet, "/api/v1/ratings", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsRoute(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("bongo_undos_total 0\n")) })
	w := do(newEngine(handler.Deps{Metrics: h}), http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bongo_undos_total")
}

func TestCORS_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handler.CORS([]string{"http://localhost:5173"}))
	handler.Register(r, handler.Deps{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/stats/catalog", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
