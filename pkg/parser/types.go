// Package parser decodes newline-delimited JSON usage logs into validated
// usage records.
//
// Each log line is one usage event. Malformed lines are skipped and tallied,
// never fatal; a trailing line without a newline is assumed to be a write in
// progress by another process and is left unconsumed. The package also owns
// the cross-file normalization stage: a global timestamp sort followed by
// deduplication on record identity.
//
// Example usage:
//
//	p := parser.New(logger.Default())
//	res, err := p.ParseFile("/logs/session.jsonl", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	records := parser.Normalize(res.Records)
package parser

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TokenCounts holds the four billable token classes of one or more usage
// events. All counts are non-negative. Addition is component-wise, which
// makes rollups associative and commutative.
type TokenCounts struct {
	Input         int64
	Output        int64
	CacheCreation int64
	CacheRead     int64
}

// Add returns the component-wise sum of two token counts.
func (t TokenCounts) Add(other TokenCounts) TokenCounts {
	return TokenCounts{
		Input:         t.Input + other.Input,
		Output:        t.Output + other.Output,
		CacheCreation: t.CacheCreation + other.CacheCreation,
		CacheRead:     t.CacheRead + other.CacheRead,
	}
}

// Total returns the sum of all four token classes.
func (t TokenCounts) Total() int64 {
	return t.Input + t.Output + t.CacheCreation + t.CacheRead
}

// IsZero reports whether every component is zero.
func (t TokenCounts) IsZero() bool {
	return t == TokenCounts{}
}

// Validate checks that all counts are non-negative.
func (t TokenCounts) Validate() error {
	if t.Input < 0 || t.Output < 0 || t.CacheCreation < 0 || t.CacheRead < 0 {
		return ErrNegativeTokenCount
	}
	return nil
}

// UsageRecord is a single validated usage event. Records are immutable
// values: they are created only by the parser and never mutated afterward.
//
// Invariant: Timestamp is a non-zero UTC instant.
// Invariant: Model is non-empty.
// Invariant: all token counts are non-negative.
type UsageRecord struct {
	// Timestamp is the UTC instant of the API call.
	Timestamp time.Time

	// Model is the raw model identifier from the event.
	Model string

	// Tokens holds the event's token counts. Fields absent from the JSON
	// default to zero; that is not an error.
	Tokens TokenCounts

	// CostUSD is the pre-computed cost carried by the event, if any.
	CostUSD *decimal.Decimal

	// MessageID and RequestID identify the originating API exchange when the
	// log carries them. Used to strengthen deduplication.
	MessageID string
	RequestID string
}

// Validate checks the record invariants.
func (r *UsageRecord) Validate() error {
	if r.Timestamp.IsZero() {
		return ErrInvalidTimestamp
	}
	if r.Model == "" {
		return ErrMissingModel
	}
	return r.Tokens.Validate()
}

// DedupKey returns the identity key used for duplicate suppression.
//
// When both MessageID and RequestID are present the pair identifies the
// exchange exactly. Otherwise identity falls back to the full value tuple:
// timestamp, model, and all four token counts.
func (r *UsageRecord) DedupKey() string {
	if r.MessageID != "" && r.RequestID != "" {
		return r.MessageID + ":" + r.RequestID
	}
	return fmt.Sprintf("%d|%s|%d|%d|%d|%d",
		r.Timestamp.UnixNano(), r.Model,
		r.Tokens.Input, r.Tokens.Output, r.Tokens.CacheCreation, r.Tokens.CacheRead)
}

// FileResult is the outcome of parsing one file (or one region of a file).
type FileResult struct {
	// Records are the successfully parsed records, in file order.
	Records []UsageRecord

	// NewOffset is the byte offset just past the last complete line consumed.
	// It never points into a partial trailing line.
	NewOffset int64

	// Malformed counts the lines skipped because they failed to parse or
	// validate. A trailing incomplete line is not counted.
	Malformed int
}
