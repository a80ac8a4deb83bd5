package limits

import (
	"fmt"
	"sync"
	"time"
)

// Tracker remembers which notifications have already fired so repeated
// evaluations of the same block stay quiet. Safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	fired map[string]struct{}
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{fired: make(map[string]struct{})}
}

// Fire records a (block, threshold) pair and reports whether this is its
// first occurrence.
func (t *Tracker) Fire(blockStart time.Time, threshold float64) bool {
	return t.fire(fmt.Sprintf("%d/th/%.0f", blockStart.UnixNano(), threshold))
}

// FireKind records a (block, kind) pair and reports whether this is its
// first occurrence.
func (t *Tracker) FireKind(blockStart time.Time, kind NotificationKind) bool {
	return t.fire(fmt.Sprintf("%d/%s", blockStart.UnixNano(), kind))
}

func (t *Tracker) fire(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, seen := t.fired[key]; seen {
		return false
	}
	t.fired[key] = struct{}{}
	return true
}

// Reset forgets all fired notifications.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fired = make(map[string]struct{})
}
