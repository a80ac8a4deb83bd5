package display

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efuller/claude-watch/pkg/aggregator"
	"github.com/efuller/claude-watch/pkg/blocks"
	"github.com/efuller/claude-watch/pkg/limits"
	"github.com/efuller/claude-watch/pkg/monitor"
	"github.com/efuller/claude-watch/pkg/parser"
	"github.com/efuller/claude-watch/pkg/pricing"
)

func sampleReport() aggregator.Report {
	return aggregator.Report{
		Periods: []aggregator.PeriodSummary{
			{
				Key:    "2024-03-01",
				Tokens: parser.TokenCounts{Input: 12000, Output: 3400, CacheCreation: 500, CacheRead: 100},
				Cost:   pricing.Cost{Amount: decimal.RequireFromString("1.25")},
				Blocks: 2,
			},
			{
				Key:    "2024-03-02",
				Tokens: parser.TokenCounts{Input: 1000},
				Cost:   pricing.Cost{Amount: decimal.RequireFromString("0.10"), Estimated: true},
				Blocks: 1,
			},
		},
		Total: aggregator.PeriodSummary{
			Tokens: parser.TokenCounts{Input: 13000, Output: 3400, CacheCreation: 500, CacheRead: 100},
			Cost:   pricing.Cost{Amount: decimal.RequireFromString("1.35"), Estimated: true},
			Blocks: 3,
		},
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-50, "-50"},
	}
	for _, tt := range tests {
		if got := formatCount(tt.in); got != tt.want {
			t.Errorf("formatCount(%d) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestFormatCost(t *testing.T) {
	exact := pricing.Cost{Amount: decimal.RequireFromString("1.5")}
	if got := formatCost(exact); got != "$1.50" {
		t.Errorf("formatCost(exact) = %s, want $1.50", got)
	}

	est := pricing.Cost{Amount: decimal.RequireFromString("0.003"), Estimated: true}
	if got := formatCost(est); got != "~$0.00" {
		t.Errorf("formatCost(estimated) = %s, want ~$0.00", got)
	}
}

func TestProgressBar(t *testing.T) {
	if got := progressBar(50, 12); got != "[#####-----]" {
		t.Errorf("progressBar(50, 12) = %q", got)
	}
	if got := progressBar(0, 12); got != "[----------]" {
		t.Errorf("progressBar(0, 12) = %q", got)
	}
	if got := progressBar(150, 12); got != "[##########]" {
		t.Errorf("progressBar(150, 12) = %q, clamp at 100", got)
	}
}

func TestFormatReportTable(t *testing.T) {
	var buf bytes.Buffer
	f := New(Config{Format: FormatTable, Width: 100})

	if err := f.FormatReport(&buf, sampleReport()); err != nil {
		t.Fatalf("FormatReport() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Period", "2024-03-01", "2024-03-02", "TOTAL", "12,000", "3,400", "$1.25", "~$0.10", "17,000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// Header, separator, two periods, grand total.
	if len(lines) != 5 {
		t.Errorf("got %d lines, want 5:\n%s", len(lines), out)
	}
}

func TestFormatReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	f := New(Config{Format: FormatTable, Width: 100})

	if err := f.FormatReport(&buf, aggregator.Report{}); err != nil {
		t.Fatalf("FormatReport() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No data") {
		t.Errorf("empty report output = %q, want No data", buf.String())
	}
}

func TestFormatBlocksTable(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	all := []blocks.SessionBlock{
		{
			StartTime:    start,
			EndTime:      start.Add(blocks.Duration),
			Tokens:       parser.TokenCounts{Input: 5000},
			Cost:         pricing.Cost{Amount: decimal.RequireFromString("2")},
			MessageCount: 12,
			Active:       true,
		},
	}

	var buf bytes.Buffer
	f := New(Config{Format: FormatTable, Width: 100})

	if err := f.FormatBlocks(&buf, all); err != nil {
		t.Fatalf("FormatBlocks() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"2024-03-01 09:00", "14:00", "5,000", "$2.00", "ACTIVE"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatSnapshot(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	b := blocks.SessionBlock{
		StartTime:    start,
		EndTime:      start.Add(blocks.Duration),
		Tokens:       parser.TokenCounts{Input: 9500},
		Cost:         pricing.Cost{Amount: decimal.RequireFromString("9")},
		MessageCount: 10,
		Active:       true,
	}
	snap := &monitor.Snapshot{
		ProducedAt:  start.Add(time.Hour),
		ActiveBlock: &b,
		Assessment: limits.Assessment{
			TokenPercent:   50,
			CostPercent:    50,
			MessagePercent: 4,
			BurnRate: limits.BurnRate{
				TokensPerMinute: 158.3,
				CostPerHour:     decimal.RequireFromString("9"),
			},
		},
	}

	var buf bytes.Buffer
	f := New(Config{Format: FormatTable, Width: 80})

	if err := f.FormatSnapshot(&buf, snap); err != nil {
		t.Fatalf("FormatSnapshot() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"09:00 - 14:00", "50.0%", "9,500", "$9.00", "158 tok/min"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatSnapshotStale(t *testing.T) {
	snap := &monitor.Snapshot{Stale: true, Err: "disk on fire"}

	var buf bytes.Buffer
	f := New(Config{Format: FormatTable, Width: 80})

	if err := f.FormatSnapshot(&buf, snap); err != nil {
		t.Fatalf("FormatSnapshot() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "stale data: disk on fire") {
		t.Errorf("output missing stale warning:\n%s", out)
	}
	if !strings.Contains(out, "No active session") {
		t.Errorf("output missing idle notice:\n%s", out)
	}
}

func TestFormatReportJSON(t *testing.T) {
	var buf bytes.Buffer
	f := New(Config{Format: FormatJSON})

	if err := f.FormatReport(&buf, sampleReport()); err != nil {
		t.Fatalf("FormatReport() error = %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := decoded["Periods"]; !ok {
		t.Error("JSON output missing Periods field")
	}
}
