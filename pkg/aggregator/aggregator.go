// Package aggregator rolls session blocks up into calendar-period
// summaries.
//
// A block belongs wholly to the day or month containing its start
// instant in the configured timezone, even when its five-hour window
// crosses midnight. Summarization is a pure function of its inputs, so
// repeated runs over the same blocks produce identical reports.
package aggregator

import (
	"sort"
	"time"

	"github.com/efuller/claude-watch/pkg/blocks"
)

// Summarize rolls blocks up into one summary per calendar period.
//
// Parameters:
//   - all: Session blocks in any order
//   - loc: Timezone that defines period boundaries
//   - period: Daily or monthly granularity
//
// Returns a Report with per-period rows sorted by key plus a grand
// total. Empty input yields an empty Report.
func Summarize(all []blocks.SessionBlock, loc *time.Location, period Period) Report {
	if loc == nil {
		loc = time.UTC
	}

	byKey := make(map[string]*PeriodSummary)
	var rep Report

	for i := range all {
		b := &all[i]
		key := b.StartTime.In(loc).Format(period.layout())

		s, ok := byKey[key]
		if !ok {
			s = &PeriodSummary{Key: key}
			byKey[key] = s
		}
		fold(s, b)
		fold(&rep.Total, b)
	}

	rep.Periods = make([]PeriodSummary, 0, len(byKey))
	for _, s := range byKey {
		rep.Periods = append(rep.Periods, *s)
	}
	sort.Slice(rep.Periods, func(i, j int) bool { return rep.Periods[i].Key < rep.Periods[j].Key })

	return rep
}

// fold adds one block's totals into a summary row.
func fold(s *PeriodSummary, b *blocks.SessionBlock) {
	s.Tokens = s.Tokens.Add(b.Tokens)
	s.Cost = s.Cost.Add(b.Cost)
	s.Blocks++
	s.Entries += len(b.Entries)
}
