// Package metrics exposes Prometheus counters for ledger and persistence
// activity. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maxviazov/bongo-stats-service/internal/model"
)

const namespace = "bongo"

// Recorder owns the collectors registered for this process.
type Recorder struct {
	statEvents   *prometheus.CounterVec
	undos        prometheus.Counter
	pushes       *prometheus.CounterVec
	pushDuration prometheus.Histogram
	mutations    *prometheus.CounterVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		statEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stat_events_total",
			Help:      "Stat events recorded, by stat key.",
		}, []string{"stat"}),
		undos: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "undos_total",
			Help:      "Events removed by undo.",
		}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_pushes_total",
			Help:      "Debounced match snapshot writes, by result.",
		}, []string{"result"}),
		pushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_push_duration_seconds",
			Help:      "Latency of debounced match snapshot writes.",
			Buckets:   prometheus.DefBuckets,
		}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Entity mutations, by entity, operation and result.",
		}, []string{"entity", "op", "result"}),
	}
	for _, c := range []prometheus.Collector{r.statEvents, r.undos, r.pushes, r.pushDuration, r.mutations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewWithRegistry builds a private registry carrying the Go and process
// collectors plus this package's counters, and the handler that serves it.
func NewWithRegistry() (*Recorder, http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	r, err := New(reg)
	if err != nil {
		return nil, nil, err
	}
	return r, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func (r *Recorder) StatRecorded(stat model.StatKey) {
	if r == nil {
		return
	}
	r.statEvents.WithLabelValues(string(stat)).Inc()
}

func (r *Recorder) Undone() {
	if r == nil {
		return
	}
	r.undos.Inc()
}

// PushDone satisfies debounce.Recorder.
func (r *Recorder) PushDone(err error, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.pushes.WithLabelValues(result(err)).Inc()
	r.pushDuration.Observe(elapsed.Seconds())
}

// Mutation counts a create/update/delete against entity.
func (r *Recorder) Mutation(entity, op string, err error) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(entity, op, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
