package reader

import "errors"

// Common errors returned by the reader.
var (
	// ErrFileNotFound is returned when a file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied is returned when file access is denied.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrReaderClosed is returned when using a closed reader.
	ErrReaderClosed = errors.New("reader is closed")
)
