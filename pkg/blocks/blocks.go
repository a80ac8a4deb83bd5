// Package blocks groups usage records into five-hour billing windows.
//
// A window opens at the exact timestamp of its first record and closes
// five hours later. A record at or past the close instant starts a new
// window at that record's own timestamp, so idle gaps produce no empty
// windows.
package blocks

import (
	"time"

	"github.com/efuller/claude-watch/pkg/parser"
	"github.com/efuller/claude-watch/pkg/pricing"
)

// Builder assembles session blocks from sorted usage records.
type Builder struct {
	pricing *pricing.Engine
}

// NewBuilder creates a Builder that prices entries with the given engine.
func NewBuilder(eng *pricing.Engine) *Builder {
	return &Builder{pricing: eng}
}

// Build partitions records into session blocks.
//
// Parameters:
//   - sorted: Records in ascending timestamp order (see parser.Normalize)
//   - now: Reference time used to mark the final block active or closed
//
// Returns the blocks in chronological order. Every record lands in
// exactly one block. An empty input yields no blocks.
func (bd *Builder) Build(sorted []parser.UsageRecord, now time.Time) []SessionBlock {
	if len(sorted) == 0 {
		return nil
	}

	var out []SessionBlock
	cur := bd.open(sorted[0])

	for _, rec := range sorted[1:] {
		if !rec.Timestamp.Before(cur.EndTime) {
			out = append(out, *cur)
			cur = bd.open(rec)
			continue
		}
		bd.add(cur, rec)
	}
	out = append(out, *cur)

	last := &out[len(out)-1]
	last.Active = !now.Before(last.StartTime) && now.Before(last.EndTime)

	return out
}

// ActiveBlock returns the block whose window contains now, or nil.
func ActiveBlock(all []SessionBlock) *SessionBlock {
	for i := range all {
		if all[i].Active {
			return &all[i]
		}
	}
	return nil
}

// open starts a new block anchored to rec's timestamp.
func (bd *Builder) open(rec parser.UsageRecord) *SessionBlock {
	b := &SessionBlock{
		StartTime: rec.Timestamp,
		EndTime:   rec.Timestamp.Add(Duration),
		PerModel:  make(map[string]ModelStat),
	}
	bd.add(b, rec)
	return b
}

// add folds one record into the block's totals.
func (bd *Builder) add(b *SessionBlock, rec parser.UsageRecord) {
	cost := bd.pricing.RecordCost(rec)

	b.Entries = append(b.Entries, rec)
	b.ActualEndTime = rec.Timestamp
	b.Tokens = b.Tokens.Add(rec.Tokens)
	b.Cost = b.Cost.Add(cost)
	b.MessageCount++

	stat := b.PerModel[rec.Model]
	stat.Entries++
	stat.Tokens = stat.Tokens.Add(rec.Tokens)
	stat.Cost = stat.Cost.Add(cost)
	b.PerModel[rec.Model] = stat
}
