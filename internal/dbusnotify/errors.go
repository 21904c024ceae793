package dbusnotify

import "fmt"

// StartupErrorKind discriminates the cause of a StartupError. There is
// currently only one kind — a bus-level failure — matching the Rust
// reference's single-variant StartupError::Dbus.
type StartupErrorKind int

const (
	// StartupErrorBus covers every failure surfaced while connecting to
	// the bus, exporting the service object, or acquiring the bus name.
	StartupErrorBus StartupErrorKind = iota
)

// StartupError wraps a failure that occurred while starting the D-Bus
// notification service.
type StartupError struct {
	Kind StartupErrorKind
	Err  error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("dbusnotify: startup failed: %s", e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

func newStartupError(err error) *StartupError {
	return &StartupError{Kind: StartupErrorBus, Err: err}
}
