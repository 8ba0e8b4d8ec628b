// Package interaction performs DOM interactions only after a bounded poll has
// confirmed the target element is ready for them.
package interaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/xkilldash9x/hrmcheck/internal/browser"
	"github.com/xkilldash9x/hrmcheck/internal/observability"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultPollInterval = 250 * time.Millisecond
)

// Options bounds every wait performed by an Interactor.
type Options struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.PollInterval > o.Timeout {
		o.PollInterval = o.Timeout
	}
	return o
}

// Interactor wraps a Driver with wait-then-act semantics. It is used by a
// single scenario at a time.
type Interactor struct {
	driver browser.Driver
	opts   Options
	logger *zap.Logger
}

// New creates an Interactor over d. Zero option fields take the defaults.
func New(d browser.Driver, opts Options, logger *zap.Logger) *Interactor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Interactor{driver: d, opts: opts.withDefaults(), logger: logger.Named("interaction")}
}

// Options returns the effective bounds.
func (i *Interactor) Options() Options { return i.opts }

// WaitFor polls loc until cond holds and returns the snapshot that satisfied it.
func (i *Interactor) WaitFor(ctx context.Context, loc browser.Locator, cond Condition) (browser.ElementState, error) {
	var last browser.ElementState
	err := i.poll(ctx, loc.String(), cond.Describe(loc), func(ctx context.Context) (bool, error) {
		st, err := i.driver.Probe(ctx, loc)
		if err != nil {
			return false, &DriverError{Op: "probe", Locator: loc.String(), Err: err}
		}
		last = st
		return cond.Met(st), nil
	}, func() string { return describeState(last) })
	return last, err
}

// WaitAbsent polls until no element matches loc.
func (i *Interactor) WaitAbsent(ctx context.Context, loc browser.Locator) error {
	_, err := i.WaitFor(ctx, loc, Absent)
	return err
}

// WaitHidden polls until loc is absent or no longer rendered.
func (i *Interactor) WaitHidden(ctx context.Context, loc browser.Locator) error {
	_, err := i.WaitFor(ctx, loc, Hidden)
	return err
}

// WaitURLContains polls the page location until it contains fragment and
// returns the matching URL.
func (i *Interactor) WaitURLContains(ctx context.Context, fragment string) (string, error) {
	var last string
	err := i.poll(ctx, "", fmt.Sprintf("url contains %q", fragment), func(ctx context.Context) (bool, error) {
		u, err := i.driver.CurrentURL(ctx)
		if err != nil {
			return false, &DriverError{Op: "current url", Err: err}
		}
		last = u
		return strings.Contains(u, fragment), nil
	}, func() string { return last })
	return last, err
}

// Fill waits for loc to be visible and types text into it.
func (i *Interactor) Fill(ctx context.Context, loc browser.Locator, text string) error {
	if _, err := i.WaitFor(ctx, loc, Visible); err != nil {
		return err
	}
	if err := i.driver.SendKeys(ctx, loc, text); err != nil {
		return &DriverError{Op: "send keys", Locator: loc.String(), Err: err}
	}
	return nil
}

// Replace waits for loc to be visible, clears it and types text.
func (i *Interactor) Replace(ctx context.Context, loc browser.Locator, text string) error {
	if _, err := i.WaitFor(ctx, loc, Visible); err != nil {
		return err
	}
	if err := i.driver.Clear(ctx, loc); err != nil {
		return &DriverError{Op: "clear", Locator: loc.String(), Err: err}
	}
	if err := i.driver.SendKeys(ctx, loc, text); err != nil {
		return &DriverError{Op: "send keys", Locator: loc.String(), Err: err}
	}
	return nil
}

// Click waits for loc to be clickable and clicks it.
func (i *Interactor) Click(ctx context.Context, loc browser.Locator) error {
	if _, err := i.WaitFor(ctx, loc, Clickable); err != nil {
		return err
	}
	if err := i.driver.Click(ctx, loc); err != nil {
		return &DriverError{Op: "click", Locator: loc.String(), Err: err}
	}
	return nil
}

// ReadText waits for cond on loc and returns the element's text.
func (i *Interactor) ReadText(ctx context.Context, loc browser.Locator, cond Condition) (string, error) {
	if _, err := i.WaitFor(ctx, loc, cond); err != nil {
		return "", err
	}
	text, err := i.driver.Text(ctx, loc)
	if err != nil {
		return "", &DriverError{Op: "read text", Locator: loc.String(), Err: err}
	}
	return text, nil
}

// poll runs check every PollInterval until it reports true, returns an error,
// or Timeout elapses. The first check happens immediately.
func (i *Interactor) poll(ctx context.Context, locator, condition string, check wait.ConditionWithContextFunc, last func() string) error {
	log := i.logger.With(zap.String(observability.KeyCondition, condition))
	start := time.Now()

	err := wait.PollUntilContextTimeout(ctx, i.opts.PollInterval, i.opts.Timeout, true, func(pctx context.Context) (bool, error) {
		ok, err := check(pctx)
		if err != nil && pctx.Err() != nil {
			// The probe was cut off by the deadline itself; let the poll
			// report a timeout rather than a driver fault.
			return false, nil
		}
		return ok, err
	})
	elapsed := time.Since(start)

	switch {
	case err == nil:
		log.Debug("Condition met.", zap.Duration("elapsed", elapsed))
		return nil
	case ctx.Err() != nil:
		// The caller gave up; that is neither a timeout nor a driver fault.
		return fmt.Errorf("waiting for %s: %w", condition, ctx.Err())
	case wait.Interrupted(err):
		log.Debug("Condition timed out.", zap.Duration("elapsed", elapsed))
		return &TimeoutError{
			Locator:   locator,
			Condition: condition,
			Timeout:   i.opts.Timeout,
			Elapsed:   elapsed,
			Last:      last(),
			Err:       err,
		}
	}

	var derr *DriverError
	if errors.As(err, &derr) {
		log.Warn("Driver fault while waiting.", zap.Error(err))
		return err
	}
	return &DriverError{Op: "wait", Locator: locator, Err: err}
}

func describeState(st browser.ElementState) string {
	switch {
	case !st.Present:
		return "not present"
	case !st.Visible:
		return "present, not visible"
	case !st.Enabled:
		return "visible, disabled"
	}
	return "visible, enabled"
}
