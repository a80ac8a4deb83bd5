package aggregator

import (
	"github.com/efuller/claude-watch/pkg/parser"
	"github.com/efuller/claude-watch/pkg/pricing"
)

// Period selects the calendar granularity of a summary.
type Period string

// Supported periods.
const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
)

// layout returns the time format that keys the period.
func (p Period) layout() string {
	if p == PeriodMonthly {
		return "2006-01"
	}
	return "2006-01-02"
}

// PeriodSummary is the usage total for one calendar period.
type PeriodSummary struct {
	// Key is the period identifier, "2006-01-02" for daily summaries
	// and "2006-01" for monthly ones. Empty on the grand-total row.
	Key string

	// Tokens is the summed token counts of all blocks in the period.
	Tokens parser.TokenCounts

	// Cost is the summed cost of all blocks in the period.
	Cost pricing.Cost

	// Blocks is the number of session blocks attributed to the period.
	Blocks int

	// Entries is the number of usage records across those blocks.
	Entries int
}

// Report is the result of a summarization pass.
type Report struct {
	// Periods holds one summary per non-empty period, sorted by key.
	Periods []PeriodSummary

	// Total sums every period into a single grand-total row.
	Total PeriodSummary
}
