package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrNoLogDirs is returned when no usage log directories are specified.
	ErrNoLogDirs = errors.New("no usage log directories specified")

	// ErrInvalidInterval is returned when the refresh interval is outside 1-60s.
	ErrInvalidInterval = errors.New("invalid refresh interval: must be between 1s and 60s")

	// ErrInvalidTimezone is returned when the timezone is not a valid IANA name.
	ErrInvalidTimezone = errors.New("invalid timezone")

	// ErrInvalidFixedNow is returned when the pinned clock is not RFC3339.
	ErrInvalidFixedNow = errors.New("invalid fixed_now: must be RFC3339")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when the config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when the config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
