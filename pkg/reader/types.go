// Package reader provides incremental log reading with position
// tracking.
//
// It reads each file from its last known offset and persists the new
// offset, so a refresh cycle parses only the lines appended since the
// previous one. Truncated or rewritten files are detected and reread
// from the start.
//
// Example usage:
//
//	r, err := reader.New(reader.Config{
//	    PositionStore: reader.NewMemoryPositionStore(),
//	    Parser:        parser.New(log),
//	}, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	res, err := r.Read(ctx, "/path/to/usage.jsonl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if res.Reset {
//	    // Drop anything cached for this path; the file was rewritten.
//	}
package reader

import (
	"context"
	"time"

	"github.com/efuller/claude-watch/pkg/parser"
)

// PositionStore provides persistence for file read positions.
type PositionStore interface {
	// GetPosition retrieves the last read position for a file.
	//
	// Returns 0 if no position is stored (start from beginning).
	GetPosition(path string) (int64, error)

	// SetPosition stores the read position for a file.
	SetPosition(path string, offset int64) error
}

// Result is the outcome of one incremental read.
type Result struct {
	// Records holds the usage records parsed since the last read.
	Records []parser.UsageRecord

	// Malformed counts lines skipped as unparseable.
	Malformed int

	// Reset is true when the file shrank below the stored offset and
	// was reread from the start. Callers must discard any records they
	// cached for this path.
	Reset bool
}

// Reader provides incremental log reading.
type Reader interface {
	// Read parses new records from a file since the last read position.
	//
	// Parameters:
	//   - ctx: Context for cancellation
	//   - path: Absolute path to the JSONL file
	//
	// Returns:
	//   - Result with new records and the truncation flag
	//   - Error if reading fails after retries
	//
	// Updates the stored position after a successful read.
	Read(ctx context.Context, path string) (*Result, error)

	// Forget drops the stored position for a file, so the next Read
	// starts from the beginning.
	Forget(path string) error

	// Close releases the reader. Subsequent reads fail with
	// ErrReaderClosed.
	Close() error
}

// Config contains reader configuration.
type Config struct {
	// PositionStore persists file read positions.
	PositionStore PositionStore

	// Parser parses JSONL lines into usage records.
	Parser parser.Parser

	// MaxRetries is the maximum number of retry attempts for transient
	// errors. Default: 3.
	MaxRetries int

	// RetryDelay is the base delay between retry attempts.
	// Uses exponential backoff: delay * 2^attempt.
	// Default: 100ms.
	RetryDelay time.Duration
}

// ctxErr surfaces early cancellation without opening the file.
func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
