// internal/browser/manager.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/hrmcheck/internal/config"
)

const shutdownGracePeriod = 15 * time.Second

// ErrManagerClosed is returned by NewSession after Shutdown.
var ErrManagerClosed = errors.New("browser manager is shut down")

// Manager owns the Chromium process. The browser is launched lazily on the
// first NewSession and every session gets its own browser context.
type Manager struct {
	cfg    config.BrowserConfig
	logger *zap.Logger

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	initOnce sync.Once
	initErr  error

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
	closed   bool
}

var _ SessionFactory = (*Manager)(nil)

// NewManager prepares an exec allocator from cfg. extra options are appended
// after the configured ones (tests use this for a private user data dir).
func NewManager(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger, extra ...chromedp.ExecAllocatorOption) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("browser_manager")

	opts := append(DefaultAllocatorOptions(cfg), extra...)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(log.Sugar().Debugf),
		chromedp.WithErrorf(log.Sugar().Debugf),
	)

	m := &Manager{
		cfg:           cfg,
		logger:        log,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		sessions:      make(map[string]*Session),
	}
	m.logger.Debug("Browser manager created (launch deferred).", zap.Bool("headless", cfg.Headless))
	return m, nil
}

// start launches Chromium on the browser context. The first Run binds the
// browser process to browserCtx, so no operational deadline is applied here.
func (m *Manager) start() error {
	m.initOnce.Do(func() {
		m.logger.Info("Launching browser.")
		if err := chromedp.Run(m.browserCtx); err != nil {
			m.initErr = fmt.Errorf("failed to launch browser: %w", err)
		}
	})
	return m.initErr
}

// NewSession opens a fresh tab in a new browser context.
func (m *Manager) NewSession(ctx context.Context) (Driver, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	m.wg.Add(1)
	m.mu.Unlock()

	s, err := m.newSession(ctx)
	if err != nil {
		m.wg.Done()
		return nil, err
	}
	return s, nil
}

func (m *Manager) newSession(ctx context.Context) (*Session, error) {
	if err := m.awaitStart(ctx); err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(m.browserCtx, chromedp.WithNewBrowserContext())

	var s *Session
	s = newSession(tabCtx, tabCancel, m.cfg, m.logger, func() {
		m.mu.Lock()
		delete(m.sessions, s.ID())
		m.mu.Unlock()
		m.wg.Done()
	})

	initErr := make(chan error, 1)
	go func() { initErr <- s.initialize() }()
	select {
	case err := <-initErr:
		if err != nil {
			tabCancel()
			return nil, err
		}
	case <-ctx.Done():
		tabCancel()
		<-initErr
		return nil, fmt.Errorf("session creation canceled: %w", ctx.Err())
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	m.logger.Debug("New session created.", zap.String("session_id", s.ID()))
	return s, nil
}

func (m *Manager) awaitStart(ctx context.Context) error {
	done := make(chan error, 1)
	go func() { done <- m.start() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("browser launch canceled: %w", ctx.Err())
	}
}

// Shutdown closes every open session and then the browser process.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()

	m.logger.Debug("Shutting down browser manager.", zap.Int("open_sessions", len(open)))
	for _, s := range open {
		if err := s.Close(ctx); err != nil {
			m.logger.Warn("Error closing session during shutdown.", zap.String("session_id", s.ID()), zap.Error(err))
		}
	}

	waitDone := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(waitDone)
	}()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGracePeriod)
	defer cancel()
	select {
	case <-waitDone:
	case <-shutdownCtx.Done():
		m.logger.Warn("Timed out waiting for sessions to close.")
	}

	var err error
	browserDone := make(chan error, 1)
	go func() { browserDone <- chromedp.Cancel(m.browserCtx) }()
	select {
	case cerr := <-browserDone:
		// Cancel on a browser that never launched reports an invalid context.
		if cerr != nil && !errors.Is(cerr, context.Canceled) && !errors.Is(cerr, chromedp.ErrInvalidContext) {
			err = fmt.Errorf("browser shutdown: %w", cerr)
		}
	case <-shutdownCtx.Done():
		err = fmt.Errorf("browser shutdown timed out: %w", shutdownCtx.Err())
	}
	m.browserCancel()
	m.allocCancel()
	m.logger.Info("Browser manager shut down.")
	return err
}
