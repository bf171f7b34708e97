// internal/status/tracker.go
package status

import (
	"sync"

	"github.com/tamzrod/register-poller/internal/poller"
)

// Tracker owns the device status snapshot.
// Observe is called once per poll result, Tick once per second.
// Safe for concurrent readers.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker starts in HealthUnknown with no error recorded.
func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Observe folds one cycle outcome into the snapshot.
// Returns true when a delivered field changed.
func (t *Tracker) Observe(res poller.PollResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &t.snap
	before := *s
	s.Cycles++

	if res.Err == nil {
		// Recovery / OK
		s.Health = HealthOK
		s.LastErrorCode = CodeNone
		s.LastError = ""
		s.SecondsInError = 0
		at := res.At
		s.LastSuccess = &at
	} else {
		s.Failures++
		s.Health = HealthError
		s.LastErrorCode = Code(res.Err)
		s.LastError = res.Err.Error()
		// seconds_in_error increments on Tick only
	}

	return before.Health != s.Health ||
		before.LastErrorCode != s.LastErrorCode ||
		before.SecondsInError != s.SecondsInError
}

// Tick advances SecondsInError while not OK. Saturates, never wraps.
// Returns true when the counter moved.
func (t *Tracker) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.snap.Health == HealthOK || t.snap.SecondsInError >= SecondsInErrorMax {
		return false
	}
	t.snap.SecondsInError++
	return true
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}
