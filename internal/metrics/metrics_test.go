package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/bongo-stats-service/internal/metrics"
	"github.com/maxviazov/bongo-stats-service/internal/model"
)

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := metrics.New(reg)
	require.NoError(t, err)

	r.StatRecorded(model.StatGoals)
	r.StatRecorded(model.StatGoals)
	r.Undone()
	r.PushDone(nil, 10*time.Millisecond)
	r.PushDone(errors.New("boom"), time.Millisecond)
	r.Mutation("player", "create", nil)

	expected := `
# HELP bongo_match_pushes_total Debounced match snapshot writes, by result.
# TYPE bongo_match_pushes_total counter
bongo_match_pushes_total{result="error"} 1
bongo_match_pushes_total{result="ok"} 1
# HELP bongo_stat_events_total Stat events recorded, by stat key.
# TYPE bongo_stat_events_total counter
bongo_stat_events_total{stat="goals"} 2
# HELP bongo_undos_total Events removed by undo.
# TYPE bongo_undos_total counter
bongo_undos_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"bongo_match_pushes_total", "bongo_stat_events_total", "bongo_undos_total"))
}

func TestRecorder_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)
	_, err = metrics.New(reg)
	assert.Error(t, err)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *metrics.Recorder
	assert.NotPanics(t, func() {
		r.StatRecorded(model.StatFouls)
		r.Undone()
		r.PushDone(nil, 0)
		r.Mutation("match", "delete", nil)
	})
}

func TestNewWithRegistry_ServesMetrics(t *testing.T) {
	r, h, err := metrics.NewWithRegistry()
	require.NoError(t, err)
	r.Undone()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "bongo_undos_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
