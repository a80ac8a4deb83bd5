package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/efuller/claude-watch/pkg/discovery"
)

// Logger defines the logging interface used by the watcher package.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// watcher implements the Watcher interface on fsnotify.
type watcher struct {
	fsw    *fsnotify.Watcher
	logger Logger
	config Config

	events chan Event
	errors chan error

	mu      sync.Mutex
	started bool
	closed  bool

	debounceMu sync.Mutex
	debounce   map[string]*time.Timer
}

// New creates a new log directory watcher.
//
// Parameters:
//   - cfg: Watcher configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Watcher
//   - Error if the underlying fsnotify watcher cannot be created
func New(cfg Config, log Logger) (Watcher, error) {
	if cfg.DebounceInterval == 0 {
		cfg.DebounceInterval = 100 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &watcher{
		fsw:      fsw,
		logger:   log,
		config:   cfg,
		events:   make(chan Event, 16),
		errors:   make(chan error, 4),
		debounce: make(map[string]*time.Timer),
	}, nil
}

// Start implements Watcher.Start.
func (w *watcher) Start(ctx context.Context, paths []string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	if w.started {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.started = true
	w.mu.Unlock()

	added := 0
	for _, path := range paths {
		expanded := discovery.ExpandHome(path)
		if _, err := os.Stat(expanded); err != nil {
			w.logger.Warn("watch path does not exist, skipping", "path", expanded)
			continue
		}
		if err := w.addTree(expanded); err != nil {
			return err
		}
		added++
	}
	if added == 0 {
		return ErrNoWatchablePaths
	}

	w.logger.Info("watcher started", "paths", added)
	go w.loop(ctx)
	return nil
}

// Events implements Watcher.Events.
func (w *watcher) Events() <-chan Event {
	return w.events
}

// Errors implements Watcher.Errors.
func (w *watcher) Errors() <-chan error {
	return w.errors
}

// Close implements Watcher.Close.
func (w *watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.debounceMu.Lock()
	for _, timer := range w.debounce {
		timer.Stop()
	}
	w.debounce = nil
	w.debounceMu.Unlock()

	err := w.fsw.Close()
	close(w.events)
	close(w.errors)
	return err
}

// loop forwards fsnotify activity until the context ends or the watcher
// is closed.
func (w *watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watch loop stopped", "reason", "context cancelled")
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("fsnotify error", "error", err)
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// handleEvent filters raw fsnotify events, registers newly created
// directories and debounces log writes.
func (w *watcher) handleEvent(event fsnotify.Event) {
	// New project directories appear after startup; watch them too.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory",
					"path", event.Name,
					"error", err)
			}
			return
		}
	}

	if !strings.HasSuffix(event.Name, ".jsonl") {
		return
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	w.emitDebounced(event.Name)
}

// emitDebounced schedules an event for path, resetting any pending one.
func (w *watcher) emitDebounced(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounce == nil {
		return
	}
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}

	w.debounce[path] = time.AfterFunc(w.config.DebounceInterval, func() {
		w.debounceMu.Lock()
		if w.debounce != nil {
			delete(w.debounce, path)
		}
		w.debounceMu.Unlock()

		w.mu.Lock()
		closed := w.closed
		w.mu.Unlock()
		if closed {
			return
		}

		select {
		case w.events <- Event{Path: path, Timestamp: time.Now()}:
		default:
			// A pending event already forces a refresh.
		}
	})
}

// addTree registers a directory and all its subdirectories.
func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("error walking watch path", "path", path, "error", err)
			if path == root {
				return err
			}
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if addErr := w.fsw.Add(path); addErr != nil {
			w.logger.Warn("failed to add watch", "path", path, "error", addErr)
		} else {
			w.logger.Debug("watching directory", "path", path)
		}
		return nil
	})
}
