package discovery

import "errors"

// Common errors returned by the discovery package.
var (
	// ErrRootNotFound is returned when none of the configured log roots exist.
	ErrRootNotFound = errors.New("log root directory not found")

	// ErrPermissionDenied is returned when a log root exists but cannot be read.
	ErrPermissionDenied = errors.New("log root directory not readable")
)
