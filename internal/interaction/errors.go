package interaction

import (
	"fmt"
	"time"
)

// TimeoutError reports a readiness condition that did not hold within the
// bound. It is a test failure, not an infrastructure fault.
type TimeoutError struct {
	// Locator is empty for page-level conditions.
	Locator   string
	Condition string
	Timeout   time.Duration
	Elapsed   time.Duration
	// Last describes the final observation, e.g. the last URL seen.
	Last string
	Err  error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s", e.Elapsed.Round(time.Millisecond), e.Condition)
	if e.Last != "" {
		msg += fmt.Sprintf(" (last observed: %s)", e.Last)
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// DriverError wraps a fault raised by the browser driver. Polling stops at
// the first one.
type DriverError struct {
	Op      string
	Locator string
	Err     error
}

func (e *DriverError) Error() string {
	if e.Locator == "" {
		return fmt.Sprintf("driver %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("driver %s on %s failed: %v", e.Op, e.Locator, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }
