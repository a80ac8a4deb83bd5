// Package watcher provides real-time monitoring of usage log
// directories.
//
// It wraps fsnotify with recursive directory registration and per-path
// debouncing, so a burst of appends to one log surfaces as a single
// event. Consumers treat events purely as refresh triggers.
//
// Example usage:
//
//	w, err := watcher.New(watcher.Config{}, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	if err := w.Start(ctx, []string{"~/.claude/projects"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	for event := range w.Events() {
//	    fmt.Printf("changed: %s\n", event.Path)
//	}
package watcher

import (
	"context"
	"time"
)

// Event signals that a usage log changed on disk.
type Event struct {
	// Path is the file that triggered the event.
	Path string

	// Timestamp is when the debounced event was emitted.
	Timestamp time.Time
}

// Watcher monitors log directories for changes.
type Watcher interface {
	// Start begins watching the given directories and their subtrees.
	// Directories that do not exist are skipped with a warning; Start
	// fails only when none of them exist.
	Start(ctx context.Context, paths []string) error

	// Events returns the debounced event channel. It is closed when the
	// watcher is closed.
	Events() <-chan Event

	// Errors returns the channel of non-fatal watch errors. It is
	// closed when the watcher is closed.
	Errors() <-chan error

	// Close stops watching and releases resources.
	Close() error
}

// Config contains watcher configuration.
type Config struct {
	// DebounceInterval coalesces repeated events on the same path.
	// Default: 100ms.
	DebounceInterval time.Duration
}
