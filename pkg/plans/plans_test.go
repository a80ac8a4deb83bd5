package plans

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/efuller/claude-watch/pkg/blocks"
	"github.com/efuller/claude-watch/pkg/parser"
)

func TestParsePlanType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PlanType
		wantErr bool
	}{
		{"pro", "pro", PlanPro, false},
		{"max5", "max5", PlanMax5, false},
		{"max20", "max20", PlanMax20, false},
		{"custom", "custom", PlanCustom, false},
		{"uppercase", "PRO", PlanPro, false},
		{"surrounding spaces", "  max5 ", PlanMax5, false},
		{"unknown", "enterprise", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePlanType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPlan) {
					t.Errorf("ParsePlanType(%q) error = %v, want ErrInvalidPlan", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlanType(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePlanType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLimitsFor(t *testing.T) {
	tests := []struct {
		name       string
		plan       PlanType
		custom     int64
		wantTokens int64
		wantCost   string
		wantMsgs   int
	}{
		{"pro", PlanPro, 0, 19_000, "18", 250},
		{"max5", PlanMax5, 0, 88_000, "35", 1000},
		{"max20", PlanMax20, 0, 220_000, "140", 2000},
		{"custom default", PlanCustom, 0, 44_000, "50", 250},
		{"custom override", PlanCustom, 123_456, 123_456, "50", 250},
		{"override ignored for fixed plan", PlanPro, 123_456, 19_000, "18", 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LimitsFor(tt.plan, tt.custom)
			if err != nil {
				t.Fatalf("LimitsFor(%v) error = %v", tt.plan, err)
			}
			if got.TokenLimit != tt.wantTokens {
				t.Errorf("TokenLimit = %d, want %d", got.TokenLimit, tt.wantTokens)
			}
			if !got.CostLimit.Equal(decimal.RequireFromString(tt.wantCost)) {
				t.Errorf("CostLimit = %s, want %s", got.CostLimit, tt.wantCost)
			}
			if got.MessageLimit != tt.wantMsgs {
				t.Errorf("MessageLimit = %d, want %d", got.MessageLimit, tt.wantMsgs)
			}
		})
	}

	if _, err := LimitsFor(PlanType("bogus"), 0); !errors.Is(err, ErrInvalidPlan) {
		t.Errorf("LimitsFor(bogus) error = %v, want ErrInvalidPlan", err)
	}
}

func block(total int64, active bool) blocks.SessionBlock {
	return blocks.SessionBlock{
		Tokens: parser.TokenCounts{Input: total},
		Active: active,
	}
}

func TestEstimateP90Limit(t *testing.T) {
	tests := []struct {
		name    string
		history []blocks.SessionBlock
		want    int64
	}{
		{
			name:    "no history falls back to default",
			history: nil,
			want:    DefaultTokenLimit,
		},
		{
			name:    "only active blocks fall back to default",
			history: []blocks.SessionBlock{block(50_000, true)},
			want:    DefaultTokenLimit,
		},
		{
			name:    "small usage floored at default",
			history: []blocks.SessionBlock{block(100, false), block(200, false)},
			want:    DefaultTokenLimit,
		},
		{
			name: "capped blocks dominate the estimate",
			history: []blocks.SessionBlock{
				block(500, false),
				block(1_000, false),
				block(87_000, false), // within 95% of the 88k limit
				block(88_000, false),
			},
			want: 87_900, // p90 of {87000, 88000}
		},
		{
			name: "percentile interpolates between ranks",
			history: []blocks.SessionBlock{
				block(20_000, false),
				block(30_000, false),
				block(40_000, false),
				block(50_000, false),
				block(60_000, false),
			},
			// rank 0.9*(5-1) = 3.6 between 50k and 60k.
			want: 56_000,
		},
		{
			name:    "single block returns its total",
			history: []blocks.SessionBlock{block(25_000, false)},
			want:    25_000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EstimateP90Limit(tt.history); got != tt.want {
				t.Errorf("EstimateP90Limit() = %d, want %d", got, tt.want)
			}
		})
	}
}
