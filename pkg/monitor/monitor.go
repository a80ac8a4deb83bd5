package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/efuller/claude-watch/pkg/aggregator"
	"github.com/efuller/claude-watch/pkg/blocks"
	"github.com/efuller/claude-watch/pkg/parser"
	"github.com/efuller/claude-watch/pkg/watcher"
)

// Logger defines the logging interface used by the monitor package.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// monitor implements the Monitor interface.
type monitor struct {
	config Config
	logger Logger

	state     atomic.Int32
	snapshots chan *Snapshot

	// trigger carries refresh requests from the scheduler to the
	// worker. Capacity 1: a request queued while a cycle runs merges
	// with it, extra ones are skipped.
	trigger chan struct{}

	mu       sync.Mutex
	running  bool
	closed   bool
	lastGood *Snapshot

	// cache holds every record parsed so far, per log file, so each
	// cycle only pays for appended lines.
	cache     map[string][]parser.UsageRecord
	malformed map[string]int
}

// New creates a refresh orchestrator.
//
// Parameters:
//   - cfg: Collaborators and timing
//   - log: Logger instance
//
// Returns:
//   - Configured Monitor
//   - ErrMissingDependency if a required collaborator is nil
func New(cfg Config, log Logger) (Monitor, error) {
	if cfg.Discoverer == nil || cfg.Reader == nil || cfg.Builder == nil || cfg.Evaluator == nil {
		return nil, ErrMissingDependency
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &monitor{
		config:    cfg,
		logger:    log,
		snapshots: make(chan *Snapshot, 1),
		trigger:   make(chan struct{}, 1),
		cache:     make(map[string][]parser.UsageRecord),
		malformed: make(map[string]int),
	}, nil
}

// Start implements Monitor.Start.
func (m *monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrMonitorClosed
	}
	if m.running {
		m.mu.Unlock()
		return ErrMonitorRunning
	}
	m.running = true
	m.mu.Unlock()

	if m.config.Watcher != nil {
		if err := m.config.Watcher.Start(ctx, m.config.WatchPaths); err != nil {
			m.logger.Warn("file watcher unavailable, relying on timer only", "error", err)
		}
	}

	go m.worker(ctx)
	go m.scheduler(ctx)

	// First cycle fires immediately so consumers are not left waiting a
	// full interval for initial data.
	m.requestRefresh()

	m.logger.Info("monitor started", "interval", m.config.Interval)
	return nil
}

// Snapshots implements Monitor.Snapshots.
func (m *monitor) Snapshots() <-chan *Snapshot {
	return m.snapshots
}

// State implements Monitor.State.
func (m *monitor) State() State {
	return State(m.state.Load())
}

// Close implements Monitor.Close.
func (m *monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true

	if m.config.Watcher != nil {
		if err := m.config.Watcher.Close(); err != nil {
			m.logger.Warn("failed to close watcher", "error", err)
		}
	}
	return nil
}

// scheduler owns the timer and the watcher events. It never runs a
// cycle itself; it only requests one from the worker.
func (m *monitor) scheduler(ctx context.Context) {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	var events <-chan watcher.Event
	var werrs <-chan error
	if m.config.Watcher != nil {
		events = m.config.Watcher.Events()
		werrs = m.config.Watcher.Errors()
	}

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("scheduler stopped", "reason", "context cancelled")
			return

		case <-ticker.C:
			m.requestRefresh()

		case _, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			m.logger.Debug("file change triggered refresh")
			m.requestRefresh()

		case err, ok := <-werrs:
			if !ok {
				werrs = nil
				continue
			}
			m.logger.Warn("watcher error", "error", err)
		}
	}
}

// requestRefresh queues a cycle unless one is already pending. A tick
// arriving mid-cycle leaves at most one follow-up queued.
func (m *monitor) requestRefresh() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

// worker runs cycles one at a time.
func (m *monitor) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.state.Store(int32(StateIdle))
			return
		case <-m.trigger:
			m.cycle(ctx)
		}
	}
}

// cycle performs one full refresh and publishes the result.
func (m *monitor) cycle(ctx context.Context) {
	m.state.Store(int32(StateRefreshing))

	snap, err := m.collect(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// Shutdown is not a failure; publish nothing.
			m.state.Store(int32(StateIdle))
			return
		}
		m.fail(err)
		return
	}

	if ctx.Err() != nil {
		m.state.Store(int32(StateIdle))
		return
	}

	m.mu.Lock()
	m.lastGood = snap
	m.mu.Unlock()

	m.publish(snap)
	m.state.Store(int32(StatePublished))
}

// collect assembles a fresh snapshot from disk state.
func (m *monitor) collect(ctx context.Context) (*Snapshot, error) {
	now := m.config.Now()

	files, err := m.config.Discoverer.Discover()
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	diag := Diagnostics{FilesScanned: len(files)}
	present := make(map[string]bool, len(files))

	for _, f := range files {
		present[f.Path] = true

		res, readErr := m.config.Reader.Read(ctx, f.Path)
		if readErr != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Keep the cached records; one unreadable file must not
			// erase its history from the totals.
			diag.FilesFailed++
			m.logger.Warn("failed to read log file", "path", f.Path, "error", readErr)
			continue
		}

		if res.Reset {
			m.cache[f.Path] = nil
			m.malformed[f.Path] = 0
		}
		m.cache[f.Path] = append(m.cache[f.Path], res.Records...)
		m.malformed[f.Path] += res.Malformed
	}

	if len(files) > 0 && diag.FilesFailed == len(files) {
		return nil, fmt.Errorf("all %d log files unreadable", len(files))
	}

	// Drop state for files that disappeared.
	for path := range m.cache {
		if !present[path] {
			delete(m.cache, path)
			delete(m.malformed, path)
			if err := m.config.Reader.Forget(path); err != nil {
				m.logger.Debug("failed to forget removed file", "path", path, "error", err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []parser.UsageRecord
	for _, recs := range m.cache {
		all = append(all, recs...)
	}
	for _, n := range m.malformed {
		diag.MalformedLines += n
	}

	sorted := parser.Normalize(all)
	history := m.config.Builder.Build(sorted, now)
	active := blocks.ActiveBlock(history)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ProducedAt:  now,
		Blocks:      history,
		ActiveBlock: active,
		Assessment:  m.config.Evaluator.Evaluate(active, now),
		Daily:       aggregator.Summarize(history, m.config.Location, aggregator.PeriodDaily),
		Monthly:     aggregator.Summarize(history, m.config.Location, aggregator.PeriodMonthly),
		Diagnostics: diag,
	}
	return snap, nil
}

// fail republishes the last good snapshot, marked stale, so consumers
// keep data on screen through transient failures.
func (m *monitor) fail(err error) {
	m.logger.Error("refresh cycle failed", "error", err)
	m.state.Store(int32(StateFailed))

	m.mu.Lock()
	last := m.lastGood
	m.mu.Unlock()

	if last != nil {
		stale := *last
		stale.Stale = true
		stale.Err = err.Error()
		m.publish(&stale)
	} else {
		m.publish(&Snapshot{
			ProducedAt: m.config.Now(),
			Stale:      true,
			Err:        err.Error(),
		})
	}
}

// publish delivers a snapshot on the latest-value channel, displacing
// any unconsumed predecessor.
func (m *monitor) publish(snap *Snapshot) {
	select {
	case <-m.snapshots:
	default:
	}
	select {
	case m.snapshots <- snap:
	default:
	}
}
