package limits

import (
	"time"

	"github.com/shopspring/decimal"
)

// Thresholds are the usage percentages that trigger a notification.
var Thresholds = []float64{50, 75, 90, 100}

// NotificationKind classifies a notification.
type NotificationKind string

// Notification kinds.
const (
	// KindThreshold fires when token usage crosses one of Thresholds.
	KindThreshold NotificationKind = "threshold"

	// KindCostLimit fires when block cost reaches the plan's cost limit.
	KindCostLimit NotificationKind = "cost_limit"

	// KindExhaustion fires when tokens are projected to run out before
	// the block window closes.
	KindExhaustion NotificationKind = "exhaustion"
)

// Notification is a single user-facing alert produced by evaluation.
type Notification struct {
	// Kind classifies the alert.
	Kind NotificationKind

	// Threshold is the crossed percentage, set for KindThreshold only.
	Threshold float64

	// BlockStart anchors the alert to a session window.
	BlockStart time.Time

	// Message is a ready-to-display description.
	Message string
}

// BurnRate is the consumption velocity of the active block.
type BurnRate struct {
	// TokensPerMinute is tokens consumed per elapsed minute.
	TokensPerMinute float64

	// CostPerHour is spend per hour in USD.
	CostPerHour decimal.Decimal
}

// Projection extrapolates the active block's burn rate forward.
type Projection struct {
	// Tokens is the projected total at the block window's close.
	Tokens int64

	// Cost is the projected spend at the block window's close.
	Cost decimal.Decimal

	// ExhaustedAt is the instant the token limit would be reached at the
	// current rate. Zero when the rate is zero.
	ExhaustedAt time.Time

	// DepletesEarly is true when ExhaustedAt precedes the window close.
	DepletesEarly bool
}

// Assessment is the full evaluation of usage against plan limits.
type Assessment struct {
	// TokenPercent is token usage as a percentage of the limit. Zero
	// when there is no active block.
	TokenPercent float64

	// CostPercent is spend as a percentage of the cost limit.
	CostPercent float64

	// MessagePercent is exchange count as a percentage of the limit.
	MessagePercent float64

	// BurnRate is the current consumption velocity.
	BurnRate BurnRate

	// Projection extrapolates the burn rate. Nil without an active block.
	Projection *Projection

	// Notifications holds alerts newly raised by this evaluation.
	Notifications []Notification
}
