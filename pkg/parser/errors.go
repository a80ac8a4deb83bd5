package parser

import "errors"

// Common errors returned by the parser package.
var (
	// ErrMalformedJSON is returned when a line is not valid JSON.
	ErrMalformedJSON = errors.New("malformed JSON line")

	// ErrInvalidTimestamp is returned when an event's timestamp is missing.
	ErrInvalidTimestamp = errors.New("missing or invalid timestamp")

	// ErrMissingModel is returned when an event has no model identifier.
	ErrMissingModel = errors.New("missing model identifier")

	// ErrNegativeTokenCount is returned when any token count is negative.
	ErrNegativeTokenCount = errors.New("negative token count")

	// ErrFileTooLarge is returned when a log file exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("log file exceeds maximum size")
)
