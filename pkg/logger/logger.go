// Package logger provides structured logging for claude-watch.
//
// It wraps log/slog behind a small interface so that packages can accept a
// logger without depending on a concrete handler. Output format (text, JSON),
// level, and destination are configurable.
//
// Example usage:
//
//	log := logger.New(logger.Config{Level: "debug", Output: "stderr"})
//	log.Info("scan complete", "files", 12, "records", 3400)
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger provides leveled, structured logging with key-value fields.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an informational message with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs a warning message with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})

	// With returns a new logger that includes the given fields on every record.
	With(keysAndValues ...interface{}) Logger
}

// Config contains logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error). Default: info.
	Level string

	// Output is the destination (stdout, stderr, or a file path). Default: stderr.
	Output string

	// Format is the output format (text, json). Default: text.
	Format string
}

// slogLogger implements Logger on top of log/slog.
type slogLogger struct {
	sl *slog.Logger
}

// New creates a logger from cfg. Invalid settings fall back to the defaults
// (info level, stderr, text format) rather than failing; logging must never
// prevent the process from starting.
func New(cfg Config) Logger {
	w, err := openOutput(cfg.Output)
	if err != nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return &slogLogger{sl: slog.New(handler)}
}

// Default returns a logger with the default configuration
// (info level, stderr, text format).
func Default() Logger {
	return New(Config{})
}

// Noop returns a logger that discards everything. Useful in tests.
func Noop() Logger {
	return &slogLogger{sl: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *slogLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.sl.Debug(msg, keysAndValues...)
}

func (l *slogLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sl.Info(msg, keysAndValues...)
}

func (l *slogLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.sl.Warn(msg, keysAndValues...)
}

func (l *slogLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sl.Error(msg, keysAndValues...)
}

func (l *slogLogger) With(keysAndValues ...interface{}) Logger {
	return &slogLogger{sl: l.sl.With(keysAndValues...)}
}

// parseLevel converts a string level to a slog.Level, defaulting to info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openOutput resolves an output destination to a writer. Anything that is not
// "stdout" or "stderr" is treated as a file path and opened for appending.
func openOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout, nil
	case "", "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
		}
		return f, nil
	}
}
