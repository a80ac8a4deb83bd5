package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/efuller/claude-watch/pkg/parser"
)

// Family rate sets shared by several model generations.
var (
	opusRates   = rates("15", "75", "18.75", "1.50")
	sonnetRates = rates("3", "15", "3.75", "0.30")
	haikuRates  = rates("0.25", "1.25", "0.30", "0.03")
)

// defaultTable maps canonical model identifiers to their rates.
func defaultTable() map[string]Rates {
	return map[string]Rates{
		"claude-3-opus":            opusRates,
		"claude-3-sonnet":          sonnetRates,
		"claude-3-haiku":           haikuRates,
		"claude-3-5-sonnet":        sonnetRates,
		"claude-3-5-haiku":         haikuRates,
		"claude-sonnet-4-20250514": sonnetRates,
		"claude-opus-4-20250514":   opusRates,
	}
}

// Logger defines the logging interface used by the pricing package.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Engine resolves per-model rates and computes costs.
//
// The table is fixed at construction; Engine is safe for concurrent use.
type Engine struct {
	table  map[string]Rates
	logger Logger
}

// NewEngine creates a pricing engine. Entries in overrides replace or extend
// the built-in table; pass nil to use the defaults unchanged.
func NewEngine(overrides map[string]Rates, log Logger) *Engine {
	table := defaultTable()
	for model, r := range overrides {
		table[model] = r
	}

	return &Engine{
		table:  table,
		logger: log,
	}
}

// Lookup resolves the rates for a model identifier.
//
// Resolution order:
//  1. Exact table key.
//  2. Family keyword: a model name containing "opus", "haiku" or "sonnet"
//     uses that family's rates.
//  3. Default rates (sonnet), with found=false.
func (e *Engine) Lookup(model string) (r Rates, found bool) {
	if r, ok := e.table[model]; ok {
		return r, true
	}

	lower := strings.ToLower(model)
	switch {
	case strings.Contains(lower, "opus"):
		return opusRates, true
	case strings.Contains(lower, "haiku"):
		return haikuRates, true
	case strings.Contains(lower, "sonnet"):
		return sonnetRates, true
	}

	return sonnetRates, false
}

// Cost prices a set of token counts for the given model.
//
// Unknown models are not an error: the default rates are applied and the
// result is flagged Estimated. The computation is exact decimal arithmetic:
// each token class is multiplied by its per-million rate and the sum is
// scaled by 10^-6.
func (e *Engine) Cost(model string, tokens parser.TokenCounts) Cost {
	r, found := e.Lookup(model)
	if !found && e.logger != nil {
		e.logger.Debug("unknown model, using default rates", "model", model)
	}

	amount := r.Input.Mul(decimal.NewFromInt(tokens.Input)).
		Add(r.Output.Mul(decimal.NewFromInt(tokens.Output))).
		Add(r.CacheCreation.Mul(decimal.NewFromInt(tokens.CacheCreation))).
		Add(r.CacheRead.Mul(decimal.NewFromInt(tokens.CacheRead))).
		Shift(-6)

	return Cost{
		Amount:    amount,
		Estimated: !found,
	}
}

// RecordCost prices a single usage record. A pre-computed cost on the record
// takes precedence over recalculation; it is trusted as exact.
func (e *Engine) RecordCost(rec parser.UsageRecord) Cost {
	if rec.CostUSD != nil {
		return Cost{Amount: *rec.CostUSD}
	}
	return e.Cost(rec.Model, rec.Tokens)
}
