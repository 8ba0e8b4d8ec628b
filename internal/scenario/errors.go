package scenario

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
	"github.com/xkilldash9x/hrmcheck/internal/interaction"
)

// AssertionError reports an observed value that differs from the expected
// one. Scenarios return it for terminal checks.
type AssertionError struct {
	// Condition names what was checked, e.g. "banner contains".
	Condition string
	Expected  string
	Actual    string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: expected %q, got %q", e.Condition, e.Expected, e.Actual)
}

// Assertf builds an AssertionError.
func Assertf(condition, expected, actual string) error {
	return &AssertionError{Condition: condition, Expected: expected, Actual: actual}
}

// PanicError carries a recovered panic from a scenario body.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("scenario panicked: %v", e.Value)
}

// SessionError reports a failure to acquire a browser session.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string { return fmt.Sprintf("could not acquire browser session: %v", e.Err) }
func (e *SessionError) Unwrap() error { return e.Err }

// Classify maps a scenario's returned error to a status and the condition
// that produced it. Assertion mismatches and readiness timeouts fail; every
// other error, including driver faults, is an error.
func Classify(err error) (schemas.Status, string) {
	if err == nil {
		return schemas.StatusPass, ""
	}

	var aerr *AssertionError
	if errors.As(err, &aerr) {
		return schemas.StatusFail, aerr.Condition
	}
	var terr *interaction.TimeoutError
	if errors.As(err, &terr) {
		return schemas.StatusFail, terr.Condition
	}
	var derr *interaction.DriverError
	if errors.As(err, &derr) {
		if derr.Locator != "" {
			return schemas.StatusError, fmt.Sprintf("%s(%s)", derr.Op, derr.Locator)
		}
		return schemas.StatusError, derr.Op
	}
	var serr *SessionError
	if errors.As(err, &serr) {
		return schemas.StatusError, "session"
	}
	var perr *PanicError
	if errors.As(err, &perr) {
		return schemas.StatusError, "panic"
	}
	return schemas.StatusError, ""
}
