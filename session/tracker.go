package session

import (
	"sort"

	"github.com/jaipkapoor99/GamingLog/models"
	"github.com/jonboulle/clockwork"
)

// Tracker is the session state machine. It owns the pid -> Session map
// exclusively; the single poll loop is the only caller, so no locking is
// needed.
type Tracker struct {
	clock  clockwork.Clock
	active map[int32]*models.Session
}

// NewTracker creates an empty tracker. A nil clock means wall time.
func NewTracker(clock clockwork.Clock) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{
		clock:  clock,
		active: make(map[int32]*models.Session),
	}
}

// Observe feeds one tick's classification result into the state machine.
// A pid that matches and has no session starts one, timestamped now. A
// tracked pid that no longer matches, or that the OS no longer knows via
// alive, is finalized into a record and dropped. Stored identity never
// changes between those two points.
func (t *Tracker) Observe(
	matches map[int32]models.GameIdentity, alive func(int32) bool,
) (started []*models.Session, records []models.SessionRecord) {
	now := t.clock.Now()

	for pid, id := range matches {
		if _, ok := t.active[pid]; ok {
			continue
		}
		s := &models.Session{
			PID:         pid,
			ExeName:     id.Key,
			DisplayName: id.DisplayName,
			StartTime:   now,
		}
		t.active[pid] = s
		started = append(started, s)
	}

	var ended []int32
	for pid := range t.active {
		if _, ok := matches[pid]; !ok || (alive != nil && !alive(pid)) {
			ended = append(ended, pid)
		}
	}
	sort.Slice(ended, func(i, j int) bool { return ended[i] < ended[j] })

	for _, pid := range ended {
		s := t.active[pid]
		delete(t.active, pid)
		records = append(records, s.Finalize(now))
	}
	return started, records
}

// Active returns the number of live sessions.
func (t *Tracker) Active() int {
	return len(t.active)
}
