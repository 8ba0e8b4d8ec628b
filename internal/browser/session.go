// internal/browser/session.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/hrmcheck/internal/config"
)

const (
	defaultActionTimeout     = 10 * time.Second
	defaultNavigationTimeout = 60 * time.Second
	sessionCloseTimeout      = 10 * time.Second
)

// Session is one browser tab in its own browser context, so cookies and
// storage never leak between scenarios. It implements Driver.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    config.BrowserConfig

	onClose func()

	mu       sync.Mutex
	isClosed bool
}

var _ Driver = (*Session)(nil)

func newSession(ctx context.Context, cancel context.CancelFunc, cfg config.BrowserConfig, logger *zap.Logger, onClose func()) *Session {
	id := uuid.New().String()
	return &Session{
		id:      id,
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.With(zap.String("session_id", id)),
		cfg:     cfg,
		onClose: onClose,
	}
}

// initialize attaches the tab and applies per-session settings. The first
// chromedp.Run on a tab context binds the target to that context, so it runs
// on s.ctx directly.
func (s *Session) initialize() error {
	if err := chromedp.Run(s.ctx); err != nil {
		return fmt.Errorf("failed to create browser tab: %w", err)
	}
	if len(s.cfg.Headers) == 0 {
		return nil
	}
	headers := make(network.Headers, len(s.cfg.Headers))
	for k, v := range s.cfg.Headers {
		headers[k] = v
	}
	if err := chromedp.Run(s.ctx, network.SetExtraHTTPHeaders(headers)); err != nil {
		return fmt.Errorf("failed to set extra HTTP headers: %w", err)
	}
	return nil
}

// ID returns the unique identifier for the session.
func (s *Session) ID() string {
	return s.id
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))
	timeout := s.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = defaultNavigationTimeout
	}
	if err := s.runActions(ctx, timeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// CurrentURL returns the location of the top-level document.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var location string
	if err := s.runActions(ctx, s.actionTimeout(), chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("could not read current URL: %w", err)
	}
	return location, nil
}

// Probe reports whether loc is present, visible and enabled, using one
// script evaluation with no side effects.
func (s *Session) Probe(ctx context.Context, loc Locator) (ElementState, error) {
	if err := loc.Validate(); err != nil {
		return ElementState{}, err
	}
	expr, err := probeExpression(loc)
	if err != nil {
		return ElementState{}, fmt.Errorf("could not build probe for %s: %w", loc, err)
	}
	var res probeResult
	if err := s.runActions(ctx, s.actionTimeout(), chromedp.Evaluate(expr, &res)); err != nil {
		return ElementState{}, fmt.Errorf("probe of %s failed: %w", loc, err)
	}
	if res.Error != "" {
		return ElementState{}, fmt.Errorf("invalid locator %s: %s", loc, res.Error)
	}
	return res.state(), nil
}

// Click clicks the element matching loc.
func (s *Session) Click(ctx context.Context, loc Locator) error {
	sel, by := loc.selector()
	if err := s.runActions(ctx, s.actionTimeout(), chromedp.Click(sel, by, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click on %s failed: %w", loc, err)
	}
	return nil
}

// SendKeys types text into the element matching loc.
func (s *Session) SendKeys(ctx context.Context, loc Locator, text string) error {
	sel, by := loc.selector()
	if err := s.runActions(ctx, s.actionTimeout(), chromedp.SendKeys(sel, text, by, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("typing into %s failed: %w", loc, err)
	}
	return nil
}

// Clear empties the value of the input matching loc.
func (s *Session) Clear(ctx context.Context, loc Locator) error {
	sel, by := loc.selector()
	if err := s.runActions(ctx, s.actionTimeout(), chromedp.Clear(sel, by)); err != nil {
		return fmt.Errorf("clearing %s failed: %w", loc, err)
	}
	return nil
}

// Text returns the trimmed rendered text of the element matching loc.
func (s *Session) Text(ctx context.Context, loc Locator) (string, error) {
	state, err := s.Probe(ctx, loc)
	if err != nil {
		return "", err
	}
	if !state.Present {
		return "", fmt.Errorf("no element matches %s", loc)
	}
	return state.Text, nil
}

// Screenshot captures the current viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.runActions(ctx, s.actionTimeout(), chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

// Close closes the tab and disposes of its browser context. It is safe to
// call more than once.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.isClosed {
		s.mu.Unlock()
		return nil
	}
	s.isClosed = true
	s.mu.Unlock()

	s.logger.Debug("Closing browser session.")
	defer func() {
		if s.onClose != nil {
			s.onClose()
		}
	}()

	// chromedp.Cancel blocks until the target is gone.
	done := make(chan error, 1)
	go func() { done <- chromedp.Cancel(s.ctx) }()

	closeCtx, cancel := context.WithTimeout(ctx, sessionCloseTimeout)
	defer cancel()
	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("closing session %s: %w", s.id, err)
		}
		return nil
	case <-closeCtx.Done():
		s.cancel()
		return fmt.Errorf("closing session %s: %w", s.id, closeCtx.Err())
	}
}

func (s *Session) closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isClosed
}

func (s *Session) actionTimeout() time.Duration {
	if s.cfg.ActionTimeout > 0 {
		return s.cfg.ActionTimeout
	}
	return defaultActionTimeout
}

// runActions executes actions on the tab, bounded by the session lifetime,
// the caller's context and timeout.
func (s *Session) runActions(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if s.closed() {
		return ErrSessionClosed
	}
	runCtx, cancel := CombineContext(s.ctx, ctx)
	defer cancel()
	runCtx, cancelTimeout := context.WithTimeout(runCtx, timeout)
	defer cancelTimeout()

	return chromedp.Run(runCtx, actions...)
}
