package blocks

import (
	"time"

	"github.com/efuller/claude-watch/pkg/parser"
	"github.com/efuller/claude-watch/pkg/pricing"
)

// Duration is the fixed length of a billing session window.
const Duration = 5 * time.Hour

// ModelStat accumulates usage for a single model inside a block.
type ModelStat struct {
	// Entries is the number of records attributed to the model.
	Entries int

	// Tokens is the summed token counts for the model.
	Tokens parser.TokenCounts

	// Cost is the summed cost for the model.
	Cost pricing.Cost
}

// SessionBlock is a five-hour billing window of usage records.
//
// The window is anchored to the exact timestamp of its first record and
// covers [StartTime, EndTime). Totals are computed once at build time.
type SessionBlock struct {
	// StartTime is the timestamp of the block's first record.
	StartTime time.Time

	// EndTime is StartTime plus the window duration, exclusive.
	EndTime time.Time

	// ActualEndTime is the timestamp of the block's last record.
	ActualEndTime time.Time

	// Entries holds the records belonging to the block, in order.
	Entries []parser.UsageRecord

	// Tokens is the summed token counts across all entries.
	Tokens parser.TokenCounts

	// Cost is the summed cost across all entries. Its Estimated flag is
	// set when any entry was priced at fallback rates.
	Cost pricing.Cost

	// MessageCount is the number of entries (one per logged exchange).
	MessageCount int

	// PerModel breaks the totals down by model name.
	PerModel map[string]ModelStat

	// Active reports whether the reference time fell inside the window
	// when the block was built.
	Active bool
}

// Remaining returns how much of the window is left at now. It is zero
// for closed blocks and never negative.
func (b *SessionBlock) Remaining(now time.Time) time.Duration {
	if !b.Active || !now.Before(b.EndTime) {
		return 0
	}
	return b.EndTime.Sub(now)
}

// Elapsed returns the time between the block start and now, capped at
// the window duration.
func (b *SessionBlock) Elapsed(now time.Time) time.Duration {
	e := now.Sub(b.StartTime)
	if e < 0 {
		return 0
	}
	if e > Duration {
		return Duration
	}
	return e
}
