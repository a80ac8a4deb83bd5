// Package display renders usage reports and live snapshots for the
// terminal.
//
// It supports table and JSON output. Table rendering adapts to the
// terminal width and drops colors when stdout is not a TTY.
package display

import (
	"io"

	"github.com/efuller/claude-watch/pkg/aggregator"
	"github.com/efuller/claude-watch/pkg/blocks"
	"github.com/efuller/claude-watch/pkg/monitor"
)

// Format represents an output format.
type Format string

const (
	// FormatTable renders aligned text tables.
	FormatTable Format = "table"

	// FormatJSON renders machine-readable JSON.
	FormatJSON Format = "json"
)

// Formatter renders usage data.
type Formatter interface {
	// FormatReport renders a calendar-period report with one row per
	// period plus a grand-total row.
	FormatReport(w io.Writer, rep aggregator.Report) error

	// FormatBlocks renders the session block history.
	FormatBlocks(w io.Writer, all []blocks.SessionBlock) error

	// FormatSnapshot renders a live view of one snapshot: active block,
	// burn rate, projections and any staleness warning.
	FormatSnapshot(w io.Writer, snap *monitor.Snapshot) error
}

// Config contains formatter configuration.
type Config struct {
	// Format specifies the output format. Default: FormatTable.
	Format Format

	// ColorEnabled enables ANSI colors. Forced off when the writer is
	// not a terminal.
	ColorEnabled bool

	// Width is the render width in columns. 0 means autodetect from
	// the terminal, falling back to 80.
	Width int
}
