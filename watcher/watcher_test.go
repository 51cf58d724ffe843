package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jaipkapoor99/GamingLog/collector"
	"github.com/jaipkapoor99/GamingLog/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	err     error
	records []models.SessionRecord
	calls   int
}

func (f *fakeSink) Append(_ context.Context, rec models.SessionRecord) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

// fakeProcs serves a mutable process table to the watcher under test.
type fakeProcs struct {
	snaps []models.ProcessSnapshot
}

func (f *fakeProcs) snapshot() []models.ProcessSnapshot {
	return f.snaps
}

func (f *fakeProcs) alive(pid int32) bool {
	for _, s := range f.snaps {
		if s.PID == pid {
			return true
		}
	}
	return false
}

func testRoot() string {
	return filepath.Join(string(filepath.Separator), "steamlib", "steamapps", "common")
}

func gameSnap(pid int32) models.ProcessSnapshot {
	return models.ProcessSnapshot{
		PID:           pid,
		Name:          "hl2.exe",
		ExePath:       filepath.Join(testRoot(), "Half-Life 2", "hl2.exe"),
		ResidentBytes: uint64(3) << 30,
	}
}

func newTestWatcher(clock clockwork.Clock, procs *fakeProcs, sink Sink) *Watcher {
	return New(Options{
		Interval:   5 * time.Second,
		Classifier: collector.NewPathClassifier([]string{testRoot()}),
		Sink:       sink,
		Clock:      clock,
		Snapshot:   procs.snapshot,
		Alive:      procs.alive,
	})
}

func TestWatcherEndToEnd(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	procs := &fakeProcs{snaps: []models.ProcessSnapshot{gameSnap(1234)}}
	sink := &fakeSink{}
	w := newTestWatcher(clock, procs, sink)
	ctx := context.Background()

	// Game appears at tick 0 and runs through tick 4.
	w.tick(ctx)
	for i := 0; i < 4; i++ {
		clock.Advance(5 * time.Second)
		w.tick(ctx)
	}
	assert.Empty(t, sink.records)
	assert.Equal(t, 1, w.tracker.Active())

	// Gone at tick 5: exactly one record, 25 seconds of play.
	clock.Advance(5 * time.Second)
	procs.snaps = nil
	w.tick(ctx)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, "Half Life 2", rec.Game)
	assert.Equal(t, "hl2.exe", rec.Exe)
	assert.InDelta(t, 0.42, rec.DurationMinutes, 0.0001)
	assert.Equal(t, 0, w.tracker.Active())

	// Nothing more is emitted once the session is gone.
	clock.Advance(5 * time.Second)
	w.tick(ctx)
	assert.Len(t, sink.records, 1)
}

func TestWatcherSinkFailureDropsRecord(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	procs := &fakeProcs{snaps: []models.ProcessSnapshot{gameSnap(1234)}}
	sink := &fakeSink{err: errors.New("spreadsheet unreachable")}
	w := newTestWatcher(clock, procs, sink)
	ctx := context.Background()

	w.tick(ctx)
	clock.Advance(5 * time.Second)
	procs.snaps = nil
	w.tick(ctx)

	// The record is dropped and the session is not restored.
	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, 0, w.tracker.Active())

	// No retry on later ticks.
	clock.Advance(5 * time.Second)
	w.tick(ctx)
	assert.Equal(t, 1, sink.calls)
}

func TestWatcherHelpersBelowMemoryFloorAreIgnored(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	launcher := gameSnap(99)
	launcher.ResidentBytes = 512 << 20
	procs := &fakeProcs{snaps: []models.ProcessSnapshot{launcher}}
	sink := &fakeSink{}
	w := newTestWatcher(clock, procs, sink)

	w.tick(context.Background())

	assert.Equal(t, 0, w.tracker.Active())
}

type panickyClassifier struct{}

func (panickyClassifier) Classify(models.ProcessSnapshot) (models.GameIdentity, bool) {
	panic("classifier blew up")
}

func TestWatcherTickContainsPanics(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	procs := &fakeProcs{snaps: []models.ProcessSnapshot{gameSnap(1)}}
	w := New(Options{
		Interval:   5 * time.Second,
		Classifier: panickyClassifier{},
		Sink:       &fakeSink{},
		Clock:      clock,
		Snapshot:   procs.snapshot,
		Alive:      procs.alive,
	})

	assert.NotPanics(t, func() { w.tick(context.Background()) })
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	procs := &fakeProcs{}
	sink := &fakeSink{}
	w := newTestWatcher(clock, procs, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// Wait for the loop to reach its ticker, then interrupt.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

func TestSelectClassifier(t *testing.T) {
	t.Parallel()

	t.Run("roots_select_path_detection", func(t *testing.T) {
		t.Parallel()
		c, err := SelectClassifier([]string{testRoot()}, "apex.exe=Apex Legends")

		require.NoError(t, err)
		assert.IsType(t, &collector.PathClassifier{}, c)
	})

	t.Run("no_roots_selects_allowlist", func(t *testing.T) {
		t.Parallel()
		c, err := SelectClassifier(nil, "apex.exe=Apex Legends")

		require.NoError(t, err)
		assert.IsType(t, &collector.AllowlistClassifier{}, c)
	})

	t.Run("no_roots_and_no_games_text_still_has_built_in_defaults", func(t *testing.T) {
		t.Parallel()
		c, err := SelectClassifier(nil, "")

		require.NoError(t, err)
		assert.IsType(t, &collector.AllowlistClassifier{}, c)
	})
}
