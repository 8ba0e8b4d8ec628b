package scenario

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
	"github.com/xkilldash9x/hrmcheck/internal/browser"
	"github.com/xkilldash9x/hrmcheck/internal/interaction"
	"github.com/xkilldash9x/hrmcheck/internal/observability"
)

const defaultCleanupTimeout = 15 * time.Second

// Options configures a Runner.
type Options struct {
	TargetURL string
	Wait      interaction.Options
	// Screenshots captures the page of every scenario that does not pass.
	Screenshots bool
	// CleanupTimeout bounds screenshot capture and session release, which run
	// even after the run context is canceled.
	CleanupTimeout time.Duration
}

// Runner executes scenarios sequentially. Each scenario gets its own session
// from the factory, so no state carries over between them.
type Runner struct {
	factory browser.SessionFactory
	opts    Options
	logger  *zap.Logger

	now   func() time.Time
	newID func() string
}

func NewRunner(factory browser.SessionFactory, opts Options, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CleanupTimeout <= 0 {
		opts.CleanupTimeout = defaultCleanupTimeout
	}
	return &Runner{
		factory: factory,
		opts:    opts,
		logger:  logger.Named("runner"),
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Run executes scenarios in order and returns the completed run. It never
// aborts early on failures; a canceled context marks the remaining scenarios
// as errors without starting them.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) *schemas.Run {
	run := &schemas.Run{
		ID:        r.newID(),
		Target:    r.opts.TargetURL,
		StartedAt: r.now(),
		Outcomes:  make([]schemas.Outcome, 0, len(scenarios)),
	}
	log := r.logger.With(zap.String(observability.KeyRunID, run.ID))
	log.Info("Starting run.", zap.Int("scenarios", len(scenarios)), zap.String("target", run.Target))

	for _, sc := range scenarios {
		var out schemas.Outcome
		if err := ctx.Err(); err != nil {
			out = schemas.Outcome{
				Scenario:    sc.Name,
				Description: sc.Description,
				Status:      schemas.StatusError,
				Message:     fmt.Sprintf("not started: %v", err),
				StartedAt:   r.now(),
			}
		} else {
			out = r.runOne(ctx, log.With(zap.String(observability.KeyScenario, sc.Name)), sc)
		}
		run.Outcomes = append(run.Outcomes, out)
	}

	run.FinishedAt = r.now()
	log.Info("Run finished.", zap.Stringer("summary", run.Summary()), zap.Duration("duration", run.Duration()))
	return run
}

func (r *Runner) runOne(ctx context.Context, log *zap.Logger, sc Scenario) schemas.Outcome {
	start := r.now()
	out := schemas.Outcome{Scenario: sc.Name, Description: sc.Description, StartedAt: start}

	var err error
	out.Screenshot, err = r.session(ctx, log, sc)

	out.Status, out.Condition = Classify(err)
	if err != nil {
		out.Message = err.Error()
	}
	out.Duration = r.now().Sub(start)

	fields := []zap.Field{zap.String("status", string(out.Status)), zap.Duration("duration", out.Duration)}
	switch out.Status {
	case schemas.StatusPass:
		log.Info("Scenario passed.", fields...)
	case schemas.StatusFail:
		log.Warn("Scenario failed.", append(fields, zap.String(observability.KeyCondition, out.Condition), zap.Error(err))...)
	default:
		log.Error("Scenario errored.", append(fields, zap.Error(err))...)
	}
	return out
}

// session runs sc in a fresh session and returns the failure screenshot, if
// any. The session is released on every path out.
func (r *Runner) session(ctx context.Context, log *zap.Logger, sc Scenario) ([]byte, error) {
	driver, err := r.factory.NewSession(ctx)
	if err != nil {
		return nil, &SessionError{Err: err}
	}
	defer r.release(ctx, log, driver)

	err = r.execute(ctx, log, sc, driver)
	if err != nil && r.opts.Screenshots {
		return r.capture(ctx, log, driver), err
	}
	return nil, err
}

// execute navigates to the target and runs the scenario body, turning a
// panic into a PanicError.
func (r *Runner) execute(ctx context.Context, log *zap.Logger, sc Scenario, driver browser.Driver) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &PanicError{Value: p, Stack: debug.Stack()}
		}
	}()

	if sc.Run == nil {
		return errors.New("scenario has no body")
	}
	if r.opts.TargetURL != "" {
		if err := driver.Navigate(ctx, r.opts.TargetURL); err != nil {
			return &interaction.DriverError{Op: "navigate", Err: err}
		}
	}
	env := &Env{
		Driver:     driver,
		Interactor: interaction.New(driver, r.opts.Wait, log),
		Logger:     log,
		TargetURL:  r.opts.TargetURL,
	}
	return sc.Run(ctx, env)
}

// capture takes a best-effort screenshot. A panicking driver yields no image.
func (r *Runner) capture(ctx context.Context, log *zap.Logger, driver browser.Driver) (png []byte) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("Panic while capturing screenshot.", zap.Any("panic", p))
			png = nil
		}
	}()
	cctx, cancel := context.WithTimeout(browser.Detach(ctx), r.opts.CleanupTimeout)
	defer cancel()
	png, err := driver.Screenshot(cctx)
	if err != nil {
		log.Debug("Could not capture failure screenshot.", zap.Error(err))
		return nil
	}
	return png
}

// release closes the session on a detached context so cleanup still happens
// when the run was canceled mid-scenario.
func (r *Runner) release(ctx context.Context, log *zap.Logger, driver browser.Driver) {
	defer func() {
		if p := recover(); p != nil {
			log.Error("Panic while releasing session.", zap.Any("panic", p))
		}
	}()
	cctx, cancel := context.WithTimeout(browser.Detach(ctx), r.opts.CleanupTimeout)
	defer cancel()
	if err := driver.Close(cctx); err != nil {
		log.Warn("Failed to release browser session.", zap.Error(err))
	}
}
