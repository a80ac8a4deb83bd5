package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/efuller/claude-watch/pkg/aggregator"
	"github.com/efuller/claude-watch/pkg/blocks"
	"github.com/efuller/claude-watch/pkg/monitor"
)

// ANSI sequences used when colors are enabled.
const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
)

// tableFormatter renders aligned text tables.
type tableFormatter struct {
	config Config
}

// FormatReport implements Formatter.FormatReport.
func (f *tableFormatter) FormatReport(w io.Writer, rep aggregator.Report) error {
	header := []string{"Period", "Input", "Output", "Cache Create", "Cache Read", "Total", "Cost"}

	rows := make([][]string, 0, len(rep.Periods)+1)
	for _, p := range rep.Periods {
		rows = append(rows, f.summaryRow(p.Key, p))
	}
	if len(rep.Periods) > 0 {
		rows = append(rows, f.summaryRow("TOTAL", rep.Total))
	}

	return f.writeTable(w, header, rows)
}

// FormatBlocks implements Formatter.FormatBlocks.
func (f *tableFormatter) FormatBlocks(w io.Writer, all []blocks.SessionBlock) error {
	header := []string{"Start", "End", "Messages", "Tokens", "Cost", "Status"}

	rows := make([][]string, 0, len(all))
	for i := range all {
		b := &all[i]
		status := "closed"
		if b.Active {
			status = "ACTIVE"
		}
		rows = append(rows, []string{
			b.StartTime.Format("2006-01-02 15:04"),
			b.EndTime.Format("15:04"),
			formatCount(int64(b.MessageCount)),
			formatCount(b.Tokens.Total()),
			formatCost(b.Cost),
			status,
		})
	}

	return f.writeTable(w, header, rows)
}

// FormatSnapshot implements Formatter.FormatSnapshot.
func (f *tableFormatter) FormatSnapshot(w io.Writer, snap *monitor.Snapshot) error {
	if snap.Stale {
		warn := fmt.Sprintf("stale data: %s", snap.Err)
		if f.config.ColorEnabled {
			warn = ansiRed + warn + ansiReset
		}
		if _, err := fmt.Fprintln(w, warn); err != nil {
			return err
		}
	}

	if snap.ActiveBlock == nil {
		_, err := fmt.Fprintln(w, "No active session")
		return err
	}

	b := snap.ActiveBlock
	a := snap.Assessment

	title := fmt.Sprintf("Session %s - %s",
		b.StartTime.Format("15:04"),
		b.EndTime.Format("15:04"))
	if f.config.ColorEnabled {
		title = ansiBold + title + ansiReset
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}

	barWidth := f.config.Width / 2
	if barWidth > 40 {
		barWidth = 40
	}

	lines := []string{
		fmt.Sprintf("Tokens   %s %5.1f%%  (%s)",
			progressBar(a.TokenPercent, barWidth), a.TokenPercent, formatCount(b.Tokens.Total())),
		fmt.Sprintf("Cost     %s %5.1f%%  (%s)",
			progressBar(a.CostPercent, barWidth), a.CostPercent, formatCost(b.Cost)),
		fmt.Sprintf("Messages %s %5.1f%%  (%s)",
			progressBar(a.MessagePercent, barWidth), a.MessagePercent, formatCount(int64(b.MessageCount))),
		fmt.Sprintf("Burn rate: %.0f tok/min, %s/h",
			a.BurnRate.TokensPerMinute, "$"+a.BurnRate.CostPerHour.StringFixed(2)),
	}
	if a.Projection != nil && a.Projection.DepletesEarly {
		depleted := fmt.Sprintf("Projected to run out at %s", a.Projection.ExhaustedAt.Format("15:04"))
		if f.config.ColorEnabled {
			depleted = ansiYellow + depleted + ansiReset
		}
		lines = append(lines, depleted)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	for _, n := range a.Notifications {
		if _, err := fmt.Fprintf(w, "! %s\n", n.Message); err != nil {
			return err
		}
	}

	if snap.Diagnostics.FilesFailed > 0 || snap.Diagnostics.MalformedLines > 0 {
		_, err := fmt.Fprintf(w, "(%d files failed, %d malformed lines)\n",
			snap.Diagnostics.FilesFailed, snap.Diagnostics.MalformedLines)
		return err
	}
	return nil
}

// summaryRow builds one table row from a period summary.
func (f *tableFormatter) summaryRow(label string, p aggregator.PeriodSummary) []string {
	return []string{
		label,
		formatCount(p.Tokens.Input),
		formatCount(p.Tokens.Output),
		formatCount(p.Tokens.CacheCreation),
		formatCount(p.Tokens.CacheRead),
		formatCount(p.Tokens.Total()),
		formatCost(p.Cost),
	}
}

// writeTable writes an aligned table with a separator under the header.
func (f *tableFormatter) writeTable(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No data")
		return err
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	if err := f.writeRow(w, header, widths); err != nil {
		return err
	}

	separator := make([]string, len(header))
	for i, width := range widths {
		separator[i] = strings.Repeat("-", width)
	}
	if err := f.writeRow(w, separator, widths); err != nil {
		return err
	}

	for _, row := range rows {
		if err := f.writeRow(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

// writeRow writes one row with two-space column gaps.
func (f *tableFormatter) writeRow(w io.Writer, cells []string, widths []int) error {
	for i, cell := range cells {
		if i > 0 {
			if _, err := fmt.Fprint(w, "  "); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, fmt.Sprintf("%%-%ds", widths[i]), cell); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
