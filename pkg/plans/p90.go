package plans

import (
	"sort"

	"github.com/efuller/claude-watch/pkg/blocks"
)

// limitHitThreshold is the fraction of a common limit a block must reach
// to count as having run into that limit.
const limitHitThreshold = 0.95

// EstimateP90Limit derives a per-block token limit from usage history.
//
// It takes the 90th percentile of completed blocks' token totals,
// preferring blocks that appear to have hit one of the common plan
// limits since those reveal the true ceiling. The result is never below
// DefaultTokenLimit.
func EstimateP90Limit(history []blocks.SessionBlock) int64 {
	var capped, all []int64

	for i := range history {
		if history[i].Active {
			continue
		}
		total := history[i].Tokens.Total()
		if total <= 0 {
			continue
		}
		all = append(all, total)
		if hitsCommonLimit(total) {
			capped = append(capped, total)
		}
	}

	sample := capped
	if len(sample) == 0 {
		sample = all
	}
	if len(sample) == 0 {
		return DefaultTokenLimit
	}

	p90 := percentile(sample, 0.90)
	if p90 < DefaultTokenLimit {
		return DefaultTokenLimit
	}
	return p90
}

// hitsCommonLimit reports whether total is within the hit threshold of
// any known plan limit.
func hitsCommonLimit(total int64) bool {
	for _, limit := range CommonTokenLimits {
		if float64(total) >= float64(limit)*limitHitThreshold {
			return true
		}
	}
	return false
}

// percentile computes the p-th percentile of values using linear
// interpolation between closest ranks.
func percentile(values []int64, p float64) int64 {
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p * float64(len(sorted)-1)
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + int64(frac*float64(sorted[lo+1]-sorted[lo]))
}
