// Package debounce coalesces rapid snapshots of a match into a single
// background write. Only the newest snapshot per window is sent; older ones
// are dropped, never queued.
package debounce

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/maxviazov/bongo-stats-service/internal/model"
)

const (
	DefaultWindow      = 500 * time.Millisecond
	DefaultPushTimeout = 5 * time.Second
)

// MatchWriter persists a full match snapshot.
type MatchWriter interface {
	UpdateMatch(ctx context.Context, m model.Match) (model.Match, error)
}

// Recorder observes push outcomes. Implementations must tolerate concurrent calls.
type Recorder interface {
	PushDone(err error, elapsed time.Duration)
}

// Options tunes a Debouncer. Zero values fall back to defaults.
type Options struct {
	Window      time.Duration
	PushTimeout time.Duration
	Clock       clockwork.Clock
	// OnError is called from the sending goroutine when a write fails.
	OnError  func(matchID uuid.UUID, err error)
	Recorder Recorder
}

// Debouncer is a single-slot mailbox: Push replaces the pending snapshot and
// re-arms the timer.
type Debouncer struct {
	w      MatchWriter
	log    zerolog.Logger
	opts   Options
	wg     sync.WaitGroup
	mu     sync.Mutex
	slot   *model.Match
	timer  clockwork.Timer
	gen    uint64
	closed bool
}

func New(w MatchWriter, log zerolog.Logger, opts Options) *Debouncer {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.PushTimeout <= 0 {
		opts.PushTimeout = DefaultPushTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Debouncer{
		w:    w,
		log:  log.With().Str("component", "debounce").Logger(),
		opts: opts,
	}
}

// Push schedules m to be written once no further Push arrives within the
// window. A pending snapshot of a different match is sent right away so
// switching matches never loses edits.
func (d *Debouncer) Push(m model.Match) {
	snap := m.Clone()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if d.slot != nil && d.slot.ID != snap.ID {
		prev := *d.slot
		d.spawn(prev)
	}
	d.slot = &snap
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.opts.Clock.AfterFunc(d.opts.Window, func() { d.fire(gen) })
}

// Pending reports whether a snapshot is waiting for its window to elapse.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.slot != nil
}

// Discard drops a pending snapshot of matchID, used when the match is deleted.
func (d *Debouncer) Discard(matchID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.slot == nil || d.slot.ID != matchID {
		return
	}
	d.slot = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush sends the pending snapshot immediately and waits for every in-flight
// write to finish or ctx to expire.
func (d *Debouncer) Flush(ctx context.Context) error {
	d.mu.Lock()
	if d.slot != nil {
		snap := *d.slot
		d.slot = nil
		d.gen++
		if d.timer != nil {
			d.timer.Stop()
			d.timer = nil
		}
		d.spawn(snap)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes and rejects further pushes.
func (d *Debouncer) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return d.Flush(ctx)
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.slot == nil {
		d.mu.Unlock()
		return
	}
	snap := *d.slot
	d.slot = nil
	d.timer = nil
	d.wg.Add(1)
	d.mu.Unlock()

	defer d.wg.Done()
	d.send(snap)
}

// spawn must be called with mu held.
func (d *Debouncer) spawn(m model.Match) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.send(m)
	}()
}

func (d *Debouncer) send(m model.Match) {
	ctx, cancel := context.WithTimeout(context.Background(), d.opts.PushTimeout)
	defer cancel()

	start := d.opts.Clock.Now()
	_, err := d.w.UpdateMatch(ctx, m)
	elapsed := d.opts.Clock.Since(start)
	if d.opts.Recorder != nil {
		d.opts.Recorder.PushDone(err, elapsed)
	}
	if err != nil {
		d.log.Error().Err(err).
			Str("match_id", m.ID.String()).
			Int("events", len(m.Events)).
			Msg("failed to push match snapshot")
		if d.opts.OnError != nil {
			d.opts.OnError(m.ID, err)
		}
		return
	}
	d.log.Debug().
		Str("match_id", m.ID.String()).
		Int("events", len(m.Events)).
		Dur("elapsed", elapsed).
		Msg("match snapshot pushed")
}
