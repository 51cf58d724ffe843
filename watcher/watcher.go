package watcher

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jaipkapoor99/GamingLog/collector"
	"github.com/jaipkapoor99/GamingLog/models"
	"github.com/jaipkapoor99/GamingLog/session"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Sink persists finalized session records. A failed append is logged and
// the record dropped; delivery is at-most-once.
type Sink interface {
	Append(ctx context.Context, rec models.SessionRecord) error
}

// Options configures a Watcher. Clock, Snapshot and Alive default to the
// real implementations; tests inject fakes.
type Options struct {
	Classifier collector.Classifier
	Sink       Sink
	Clock      clockwork.Clock
	Snapshot   func() []models.ProcessSnapshot
	Alive      func(int32) bool
	Interval   time.Duration
}

// Watcher drives the poll loop: one snapshot -> classify -> diff ->
// append pass per interval, strictly serialized on a single goroutine.
type Watcher struct {
	classifier collector.Classifier
	sink       Sink
	clock      clockwork.Clock
	snapshot   func() []models.ProcessSnapshot
	alive      func(int32) bool
	tracker    *session.Tracker
	interval   time.Duration
}

// New builds a Watcher from options.
func New(opts Options) *Watcher {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Snapshot == nil {
		opts.Snapshot = collector.Snapshot
	}
	if opts.Alive == nil {
		opts.Alive = collector.PidAlive
	}
	return &Watcher{
		classifier: opts.Classifier,
		sink:       opts.Sink,
		clock:      opts.Clock,
		snapshot:   opts.Snapshot,
		alive:      opts.Alive,
		tracker:    session.NewTracker(opts.Clock),
		interval:   opts.Interval,
	}
}

// SelectClassifier picks the detection strategy once at startup:
// path-based when any Steam library root was resolved, otherwise the
// configured allowlist. With neither there is nothing to detect.
func SelectClassifier(roots []string, games string) (collector.Classifier, error) {
	if len(roots) > 0 {
		log.Info().Strs("roots", roots).Msg("auto-detecting games from Steam libraries")
		return collector.NewPathClassifier(roots), nil
	}

	ac := collector.NewAllowlistClassifier(games)
	if ac.Empty() {
		return nil, errors.New("no Steam libraries found and no games configured")
	}
	names := ac.Names()
	sort.Strings(names)
	log.Info().Strs("games", names).Msg("watching configured games")
	return ac, nil
}

// Run executes ticks until the context is cancelled. The first tick runs
// immediately; cancellation is observed between ticks and active sessions
// are not flushed.
func (w *Watcher) Run(ctx context.Context) {
	ticker := w.clock.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("active", w.tracker.Active()).Msg("watcher stopped")
			return
		case <-ticker.Chan():
			w.tick(ctx)
		}
	}
}

// tick runs one full pass. A panic anywhere inside is contained here so a
// single bad tick cannot take down the loop; the next tick proceeds after
// the normal interval.
func (w *Watcher) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("unexpected error in tick")
		}
	}()

	matches := make(map[int32]models.GameIdentity)
	for _, snap := range w.snapshot() {
		if id, ok := w.classifier.Classify(snap); ok {
			matches[snap.PID] = id
		}
	}

	started, records := w.tracker.Observe(matches, w.alive)
	for _, s := range started {
		log.Info().Str("game", s.DisplayName).Int32("pid", s.PID).Msg("session started")
	}
	for _, rec := range records {
		if err := w.sink.Append(ctx, rec); err != nil {
			log.Error().Err(err).Str("game", rec.Game).Msg("failed to append session record, dropping")
			continue
		}
		log.Info().
			Str("game", rec.Game).
			Str("start", rec.StartISO).
			Str("end", rec.EndISO).
			Float64("minutes", rec.DurationMinutes).
			Msg("session logged")
	}
}
