// Package plans defines subscription plan limits and the heuristics used
// to estimate a limit from usage history when none is configured.
package plans

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidPlan is returned when a plan name is not recognized.
var ErrInvalidPlan = errors.New("invalid plan type")

// PlanType identifies a subscription plan.
type PlanType string

// Known plan types.
const (
	PlanPro    PlanType = "pro"
	PlanMax5   PlanType = "max5"
	PlanMax20  PlanType = "max20"
	PlanCustom PlanType = "custom"
)

// DefaultTokenLimit is the fallback per-block token limit when nothing
// better is known.
const DefaultTokenLimit int64 = 19_000

// CommonTokenLimits are the per-block token limits observed across the
// standard plans, used by P90 estimation to recognize capped blocks.
var CommonTokenLimits = []int64{19_000, 88_000, 220_000, 880_000}

// Limits holds the per-block ceilings for a plan.
type Limits struct {
	// TokenLimit is the maximum tokens per five-hour block.
	TokenLimit int64

	// CostLimit is the maximum spend per block in USD.
	CostLimit decimal.Decimal

	// MessageLimit is the maximum logged exchanges per block.
	MessageLimit int
}

var planLimits = map[PlanType]Limits{
	PlanPro:    {TokenLimit: 19_000, CostLimit: decimal.RequireFromString("18"), MessageLimit: 250},
	PlanMax5:   {TokenLimit: 88_000, CostLimit: decimal.RequireFromString("35"), MessageLimit: 1000},
	PlanMax20:  {TokenLimit: 220_000, CostLimit: decimal.RequireFromString("140"), MessageLimit: 2000},
	PlanCustom: {TokenLimit: 44_000, CostLimit: decimal.RequireFromString("50"), MessageLimit: 250},
}

// ParsePlanType parses a plan name, case-insensitively.
func ParsePlanType(s string) (PlanType, error) {
	switch PlanType(strings.ToLower(strings.TrimSpace(s))) {
	case PlanPro:
		return PlanPro, nil
	case PlanMax5:
		return PlanMax5, nil
	case PlanMax20:
		return PlanMax20, nil
	case PlanCustom:
		return PlanCustom, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPlan, s)
	}
}

// LimitsFor returns the limits for a plan.
//
// Parameters:
//   - plan: One of the known plan types
//   - customTokens: Token limit override, honored only for PlanCustom;
//     zero means keep the plan's built-in value
func LimitsFor(plan PlanType, customTokens int64) (Limits, error) {
	l, ok := planLimits[plan]
	if !ok {
		return Limits{}, fmt.Errorf("%w: %q", ErrInvalidPlan, plan)
	}
	if plan == PlanCustom && customTokens > 0 {
		l.TokenLimit = customTokens
	}
	return l, nil
}
