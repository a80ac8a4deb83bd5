package parser

import "sort"

// Normalize prepares the merged output of multiple files for blocking: a
// stable sort by timestamp ascending followed by duplicate suppression on
// record identity (see UsageRecord.DedupKey). The first occurrence of a
// duplicate wins.
//
// Downstream stages rely on the result being strictly in timestamp order;
// file and line order carry no meaning. The input slice is not modified.
func Normalize(records []UsageRecord) []UsageRecord {
	sorted := make([]UsageRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	seen := make(map[string]struct{}, len(sorted))
	out := sorted[:0]

	for _, rec := range sorted {
		key := rec.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}

	return out
}
