// Package pricing computes usage costs from token counts.
//
// Rates are exact decimals (USD per million tokens) so that cumulative sums
// across thousands of records never accumulate floating-point drift. The
// pricing table is immutable configuration, assembled once at construction.
//
// Example usage:
//
//	engine := pricing.NewEngine(nil, logger.Default())
//	cost := engine.Cost("claude-3-5-sonnet", counts)
//	if cost.Estimated {
//	    // model was unknown, default rates were used
//	}
package pricing

import (
	"github.com/shopspring/decimal"
)

// Rates holds the per-token-class prices for one model, in US dollars per
// million tokens.
type Rates struct {
	// Input is the price per million input (prompt) tokens.
	Input decimal.Decimal

	// Output is the price per million output (completion) tokens.
	Output decimal.Decimal

	// CacheCreation is the price per million cache-creation tokens.
	CacheCreation decimal.Decimal

	// CacheRead is the price per million cache-read tokens.
	CacheRead decimal.Decimal
}

// Cost is the result of pricing a set of token counts.
type Cost struct {
	// Amount is the exact cost in US dollars.
	Amount decimal.Decimal

	// Estimated is true when the model was not found in the pricing table and
	// default rates were applied. Surfaced to callers, never hidden.
	Estimated bool
}

// Add combines two costs. The result is estimated if either input is.
func (c Cost) Add(other Cost) Cost {
	return Cost{
		Amount:    c.Amount.Add(other.Amount),
		Estimated: c.Estimated || other.Estimated,
	}
}

// rates constructs a Rates value from strings; used only for the built-in
// table, where every literal is known to parse.
func rates(input, output, cacheCreation, cacheRead string) Rates {
	return Rates{
		Input:         decimal.RequireFromString(input),
		Output:        decimal.RequireFromString(output),
		CacheCreation: decimal.RequireFromString(cacheCreation),
		CacheRead:     decimal.RequireFromString(cacheRead),
	}
}
