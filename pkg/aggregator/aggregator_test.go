package aggregator

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efuller/claude-watch/pkg/blocks"
	"github.com/efuller/claude-watch/pkg/parser"
	"github.com/efuller/claude-watch/pkg/pricing"
)

func block(start time.Time, tokens int64, cost string, entries int) blocks.SessionBlock {
	b := blocks.SessionBlock{
		StartTime: start,
		EndTime:   start.Add(blocks.Duration),
		Tokens:    parser.TokenCounts{Input: tokens},
		Cost:      pricing.Cost{Amount: decimal.RequireFromString(cost)},
	}
	for i := 0; i < entries; i++ {
		b.Entries = append(b.Entries, parser.UsageRecord{Timestamp: start})
	}
	return b
}

func TestSummarizeDaily(t *testing.T) {
	d1 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)

	rep := Summarize([]blocks.SessionBlock{
		block(d1, 100, "1", 2),
		block(d1.Add(6*time.Hour), 200, "2", 3),
		block(d2, 400, "4", 1),
	}, time.UTC, PeriodDaily)

	if len(rep.Periods) != 2 {
		t.Fatalf("got %d periods, want 2", len(rep.Periods))
	}

	first := rep.Periods[0]
	if first.Key != "2024-03-01" {
		t.Errorf("first key = %s, want 2024-03-01", first.Key)
	}
	if first.Tokens.Input != 300 || first.Blocks != 2 || first.Entries != 5 {
		t.Errorf("first = %d tokens, %d blocks, %d entries; want 300, 2, 5",
			first.Tokens.Input, first.Blocks, first.Entries)
	}
	if !first.Cost.Amount.Equal(decimal.RequireFromString("3")) {
		t.Errorf("first cost = %s, want 3", first.Cost.Amount)
	}

	if rep.Periods[1].Key != "2024-03-02" {
		t.Errorf("second key = %s, want 2024-03-02", rep.Periods[1].Key)
	}

	if rep.Total.Tokens.Input != 700 || rep.Total.Blocks != 3 {
		t.Errorf("total = %d tokens, %d blocks; want 700, 3", rep.Total.Tokens.Input, rep.Total.Blocks)
	}
	if !rep.Total.Cost.Amount.Equal(decimal.RequireFromString("7")) {
		t.Errorf("total cost = %s, want 7", rep.Total.Cost.Amount)
	}
}

func TestSummarizeMonthly(t *testing.T) {
	rep := Summarize([]blocks.SessionBlock{
		block(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), 100, "1", 1),
		block(time.Date(2024, 3, 28, 8, 0, 0, 0, time.UTC), 200, "2", 1),
		block(time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC), 400, "4", 1),
	}, time.UTC, PeriodMonthly)

	if len(rep.Periods) != 2 {
		t.Fatalf("got %d periods, want 2", len(rep.Periods))
	}
	if rep.Periods[0].Key != "2024-03" || rep.Periods[1].Key != "2024-04" {
		t.Errorf("keys = %s, %s; want 2024-03, 2024-04", rep.Periods[0].Key, rep.Periods[1].Key)
	}
	if rep.Periods[0].Tokens.Input != 300 {
		t.Errorf("march tokens = %d, want 300", rep.Periods[0].Tokens.Input)
	}
}

func TestSummarizeBlockBelongsToStartDay(t *testing.T) {
	// A block opening at 23:00 runs past midnight but counts entirely
	// toward its start day.
	rep := Summarize([]blocks.SessionBlock{
		block(time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC), 500, "5", 1),
	}, time.UTC, PeriodDaily)

	if len(rep.Periods) != 1 {
		t.Fatalf("got %d periods, want 1", len(rep.Periods))
	}
	if rep.Periods[0].Key != "2024-03-01" {
		t.Errorf("key = %s, want 2024-03-01", rep.Periods[0].Key)
	}
}

func TestSummarizeTimezoneShiftsPeriod(t *testing.T) {
	// 2024-03-01 23:30 UTC is already 2024-03-02 in UTC+5.
	east := time.FixedZone("UTC+5", 5*3600)
	start := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)

	rep := Summarize([]blocks.SessionBlock{block(start, 100, "1", 1)}, east, PeriodDaily)

	if rep.Periods[0].Key != "2024-03-02" {
		t.Errorf("key = %s, want 2024-03-02 in UTC+5", rep.Periods[0].Key)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	var all []blocks.SessionBlock
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		all = append(all, block(base.Add(time.Duration(i)*7*time.Hour), int64(i*100), "0.5", 1))
	}

	want := Summarize(all, time.UTC, PeriodDaily)

	shuffled := make([]blocks.SessionBlock, len(all))
	copy(shuffled, all)
	rand.New(rand.NewSource(1)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	got := Summarize(shuffled, time.UTC, PeriodDaily)

	if !reflect.DeepEqual(want.Periods, got.Periods) {
		t.Error("Summarize() depends on input order")
	}
	if !want.Total.Cost.Amount.Equal(got.Total.Cost.Amount) || want.Total.Tokens != got.Total.Tokens {
		t.Error("grand total depends on input order")
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	all := []blocks.SessionBlock{
		block(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), 100, "1", 1),
	}

	first := Summarize(all, time.UTC, PeriodDaily)
	second := Summarize(all, time.UTC, PeriodDaily)

	if !reflect.DeepEqual(first.Periods, second.Periods) {
		t.Error("repeated Summarize() over identical input differs")
	}
}

func TestSummarizeEmpty(t *testing.T) {
	rep := Summarize(nil, time.UTC, PeriodDaily)

	if len(rep.Periods) != 0 {
		t.Errorf("got %d periods, want 0", len(rep.Periods))
	}
	if rep.Total.Blocks != 0 {
		t.Errorf("total blocks = %d, want 0", rep.Total.Blocks)
	}
}
