// Package limits evaluates usage against plan limits, computing burn
// rates, exhaustion projections and one-shot threshold notifications.
package limits

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efuller/claude-watch/pkg/blocks"
	"github.com/efuller/claude-watch/pkg/plans"
)

// Logger defines the logging interface used by the limits package.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Evaluator assesses active blocks against a plan's limits.
type Evaluator struct {
	limits  plans.Limits
	tracker *Tracker
	logger  Logger
}

// NewEvaluator creates an Evaluator for the given limits.
func NewEvaluator(l plans.Limits, log Logger) *Evaluator {
	return &Evaluator{
		limits:  l,
		tracker: NewTracker(),
		logger:  log,
	}
}

// Evaluate assesses the active block at now.
//
// Parameters:
//   - active: The currently active session block, or nil when idle
//   - now: Evaluation instant, also the burn-rate reference point
//
// Returns a zero-percentage Assessment when active is nil. Threshold
// notifications fire at most once per (block, threshold) pair across
// repeated calls.
func (e *Evaluator) Evaluate(active *blocks.SessionBlock, now time.Time) Assessment {
	if active == nil {
		return Assessment{}
	}

	used := active.Tokens.Total()
	a := Assessment{
		TokenPercent:   percent(float64(used), float64(e.limits.TokenLimit)),
		CostPercent:    percentDecimal(active.Cost.Amount, e.limits.CostLimit),
		MessagePercent: percent(float64(active.MessageCount), float64(e.limits.MessageLimit)),
	}

	// Burn rate over elapsed minutes, floored at one so fresh blocks do
	// not report absurd velocities.
	elapsedMin := active.Elapsed(now).Minutes()
	if elapsedMin < 1 {
		elapsedMin = 1
	}
	a.BurnRate = BurnRate{
		TokensPerMinute: float64(used) / elapsedMin,
		CostPerHour: active.Cost.Amount.
			Div(decimal.NewFromFloat(elapsedMin)).
			Mul(decimal.NewFromInt(60)),
	}

	a.Projection = e.project(active, a.BurnRate, used, now)
	a.Notifications = e.notify(active, a)

	if e.logger != nil {
		e.logger.Debug("limits evaluated",
			"token_pct", a.TokenPercent,
			"tokens_per_min", a.BurnRate.TokensPerMinute,
			"notifications", len(a.Notifications))
	}
	return a
}

// project extrapolates the burn rate to the block window's close.
func (e *Evaluator) project(b *blocks.SessionBlock, rate BurnRate, used int64, now time.Time) *Projection {
	remainingMin := b.Remaining(now).Minutes()

	p := &Projection{
		Tokens: used + int64(rate.TokensPerMinute*remainingMin),
		Cost: b.Cost.Amount.Add(rate.CostPerHour.
			Mul(decimal.NewFromFloat(remainingMin / 60))),
	}

	if rate.TokensPerMinute > 0 && used < e.limits.TokenLimit {
		minutesLeft := float64(e.limits.TokenLimit-used) / rate.TokensPerMinute
		p.ExhaustedAt = now.Add(time.Duration(minutesLeft * float64(time.Minute)))
		p.DepletesEarly = p.ExhaustedAt.Before(b.EndTime)
	} else if used >= e.limits.TokenLimit {
		p.ExhaustedAt = now
		p.DepletesEarly = now.Before(b.EndTime)
	}

	return p
}

// notify raises the one-shot alerts warranted by the assessment.
func (e *Evaluator) notify(b *blocks.SessionBlock, a Assessment) []Notification {
	var out []Notification

	for _, th := range Thresholds {
		if a.TokenPercent < th {
			break
		}
		if !e.tracker.Fire(b.StartTime, th) {
			continue
		}
		out = append(out, Notification{
			Kind:       KindThreshold,
			Threshold:  th,
			BlockStart: b.StartTime,
			Message:    fmt.Sprintf("token usage reached %.0f%% of the %d limit", th, e.limits.TokenLimit),
		})
	}

	if a.CostPercent >= 100 && e.tracker.FireKind(b.StartTime, KindCostLimit) {
		out = append(out, Notification{
			Kind:       KindCostLimit,
			BlockStart: b.StartTime,
			Message:    fmt.Sprintf("cost reached the $%s block limit", e.limits.CostLimit),
		})
	}

	if a.Projection != nil && a.Projection.DepletesEarly && e.tracker.FireKind(b.StartTime, KindExhaustion) {
		out = append(out, Notification{
			Kind:       KindExhaustion,
			BlockStart: b.StartTime,
			Message: fmt.Sprintf("tokens projected to run out at %s, before the window resets; consider a higher plan",
				a.Projection.ExhaustedAt.Format("15:04")),
		})
	}

	return out
}

func percent(used, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return used / limit * 100
}

func percentDecimal(used, limit decimal.Decimal) float64 {
	if limit.IsZero() || limit.IsNegative() {
		return 0
	}
	f, _ := used.Div(limit).Mul(decimal.NewFromInt(100)).Float64()
	return f
}
