package reader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/efuller/claude-watch/pkg/parser"
)

// Logger defines the logging interface used by the reader package.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// reader implements the Reader interface.
type reader struct {
	store  PositionStore
	parser parser.Parser
	logger Logger
	config Config

	mu     sync.RWMutex
	closed bool
}

// New creates a new incremental log reader.
//
// Parameters:
//   - cfg: Reader configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Reader
//   - Error if configuration is invalid
func New(cfg Config, log Logger) (Reader, error) {
	if cfg.PositionStore == nil {
		return nil, fmt.Errorf("position store is required")
	}
	if cfg.Parser == nil {
		return nil, fmt.Errorf("parser is required")
	}

	// Set defaults.
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 100 * time.Millisecond
	}

	return &reader{
		store:  cfg.PositionStore,
		parser: cfg.Parser,
		logger: log,
		config: cfg,
	}, nil
}

// Read implements Reader.Read.
func (r *reader) Read(ctx context.Context, path string) (*Result, error) {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return nil, ErrReaderClosed
	}
	r.mu.RUnlock()

	offset, err := r.store.GetPosition(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get position: %w", err)
	}

	res, newOffset, err := r.readWithRetry(ctx, path, offset)
	if err != nil {
		return nil, err
	}

	if err := r.store.SetPosition(path, newOffset); err != nil {
		// The read itself succeeded; a stale offset only costs a reparse.
		r.logger.Error("failed to update position",
			"path", path,
			"offset", newOffset,
			"error", err)
	}

	r.logger.Debug("read complete",
		"path", path,
		"records", len(res.Records),
		"new_offset", newOffset,
		"reset", res.Reset)

	return res, nil
}

// Forget implements Reader.Forget.
func (r *reader) Forget(path string) error {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return ErrReaderClosed
	}
	r.mu.RUnlock()

	if err := r.store.SetPosition(path, 0); err != nil {
		return fmt.Errorf("failed to reset position: %w", err)
	}
	return nil
}

// Close implements Reader.Close.
func (r *reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// readWithRetry reads a file with exponential backoff on transient
// failures.
func (r *reader) readWithRetry(ctx context.Context, path string, offset int64) (*Result, int64, error) {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.config.RetryDelay * time.Duration(1<<(attempt-1))
			r.logger.Debug("retrying read",
				"path", path,
				"attempt", attempt,
				"delay", delay)

			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(delay):
			}
		}

		res, newOffset, err := r.readFile(ctx, path, offset)
		if err == nil {
			return res, newOffset, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, 0, err
		}

		r.logger.Warn("read attempt failed",
			"path", path,
			"attempt", attempt,
			"error", err)
	}

	return nil, 0, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// readFile performs one incremental read from the stored offset,
// restarting from zero when the file shrank underneath it.
func (r *reader) readFile(ctx context.Context, path string, offset int64) (*Result, int64, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, 0, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, 0, fmt.Errorf("failed to stat file: %w", err)
	}

	reset := false
	if info.Size() < offset {
		r.logger.Info("file truncated, rereading from start",
			"path", path,
			"size", info.Size(),
			"stored_offset", offset)
		offset = 0
		reset = true
	}

	fr, err := r.parser.ParseFile(path, offset)
	if err != nil {
		return nil, 0, err
	}

	return &Result{
		Records:   fr.Records,
		Malformed: fr.Malformed,
		Reset:     reset,
	}, fr.NewOffset, nil
}

// isRetryable reports whether a read failure is worth another attempt.
// Missing files and permission errors will not fix themselves within a
// retry window.
func isRetryable(err error) bool {
	switch {
	case os.IsNotExist(err), os.IsPermission(err):
		return false
	}
	for _, sentinel := range []error{ErrFileNotFound, ErrPermissionDenied, parser.ErrFileTooLarge, context.Canceled, context.DeadlineExceeded} {
		if errors.Is(err, sentinel) {
			return false
		}
	}
	return true
}
