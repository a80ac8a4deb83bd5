// Package monitor runs the background refresh loop that turns on-disk
// usage logs into published snapshots.
//
// Each cycle discovers log files, reads the lines appended since the
// last cycle, rebuilds session blocks, evaluates plan limits and
// aggregates calendar summaries. The finished snapshot is delivered on
// a latest-value channel: consumers always receive the freshest state
// and slow consumers never block the loop.
package monitor

import (
	"context"
	"time"

	"github.com/efuller/claude-watch/pkg/aggregator"
	"github.com/efuller/claude-watch/pkg/blocks"
	"github.com/efuller/claude-watch/pkg/discovery"
	"github.com/efuller/claude-watch/pkg/limits"
	"github.com/efuller/claude-watch/pkg/reader"
	"github.com/efuller/claude-watch/pkg/watcher"
)

// State is the observable lifecycle state of the refresh loop.
type State int32

// Refresh loop states.
const (
	StateIdle State = iota
	StateRefreshing
	StatePublished
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	case StatePublished:
		return "published"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Diagnostics tallies the health of one refresh cycle.
type Diagnostics struct {
	// FilesScanned is the number of log files discovered.
	FilesScanned int

	// FilesFailed is the number of files that could not be read.
	FilesFailed int

	// MalformedLines counts lines skipped as unparseable, cumulative
	// over the cached history.
	MalformedLines int
}

// Snapshot is one immutable view of usage state. Fields are never
// mutated after publication.
type Snapshot struct {
	// ProducedAt is when the cycle producing this snapshot ran.
	ProducedAt time.Time

	// Blocks holds the full session block history, oldest first.
	Blocks []blocks.SessionBlock

	// ActiveBlock points into Blocks at the currently open window, or
	// nil when usage is idle.
	ActiveBlock *blocks.SessionBlock

	// Assessment is the limit evaluation of the active block.
	Assessment limits.Assessment

	// Daily and Monthly are the calendar rollups.
	Daily   aggregator.Report
	Monthly aggregator.Report

	// Diagnostics describes the cycle that produced the snapshot.
	Diagnostics Diagnostics

	// Stale marks a republished snapshot whose refresh cycle failed.
	Stale bool

	// Err carries the failure description when Stale is set.
	Err string
}

// Monitor is the background refresh orchestrator.
type Monitor interface {
	// Start launches the refresh loop and runs an immediate first
	// cycle. It returns once the loop is running; the loop stops when
	// ctx is cancelled.
	Start(ctx context.Context) error

	// Snapshots returns the latest-value delivery channel. A receive
	// always yields the most recent snapshot; intermediate ones may be
	// dropped.
	Snapshots() <-chan *Snapshot

	// State reports the current lifecycle state.
	State() State

	// Close releases resources. The monitor cannot be restarted.
	Close() error
}

// Config wires the orchestrator's collaborators.
type Config struct {
	// Discoverer finds usage log files.
	Discoverer discovery.Discoverer

	// Reader performs incremental reads with position tracking.
	Reader reader.Reader

	// Watcher triggers early refreshes on file changes. Optional.
	Watcher watcher.Watcher

	// WatchPaths are the directories handed to Watcher on Start.
	WatchPaths []string

	// Builder assembles session blocks.
	Builder *blocks.Builder

	// Evaluator assesses usage against plan limits.
	Evaluator *limits.Evaluator

	// Location defines calendar period boundaries.
	Location *time.Location

	// Interval is the time between refresh cycles. Default: 3s.
	Interval time.Duration

	// Now supplies the clock; defaults to time.Now. Pinned in tests.
	Now func() time.Time
}
