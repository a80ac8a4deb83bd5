package display

import (
	"encoding/json"
	"io"

	"github.com/efuller/claude-watch/pkg/aggregator"
	"github.com/efuller/claude-watch/pkg/blocks"
	"github.com/efuller/claude-watch/pkg/monitor"
)

// jsonFormatter renders machine-readable JSON.
type jsonFormatter struct {
	config Config
}

// FormatReport implements Formatter.FormatReport.
func (f *jsonFormatter) FormatReport(w io.Writer, rep aggregator.Report) error {
	return f.encode(w, rep)
}

// FormatBlocks implements Formatter.FormatBlocks.
func (f *jsonFormatter) FormatBlocks(w io.Writer, all []blocks.SessionBlock) error {
	return f.encode(w, all)
}

// FormatSnapshot implements Formatter.FormatSnapshot.
func (f *jsonFormatter) FormatSnapshot(w io.Writer, snap *monitor.Snapshot) error {
	return f.encode(w, snap)
}

func (f *jsonFormatter) encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
