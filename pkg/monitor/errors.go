package monitor

import "errors"

// Common errors returned by the monitor.
var (
	// ErrMonitorClosed is returned when using a closed monitor.
	ErrMonitorClosed = errors.New("monitor is closed")

	// ErrMonitorRunning is returned when Start is called twice.
	ErrMonitorRunning = errors.New("monitor is already running")

	// ErrMissingDependency is returned when required collaborators are absent.
	ErrMissingDependency = errors.New("missing monitor dependency")
)
