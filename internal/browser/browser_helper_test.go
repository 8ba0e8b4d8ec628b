// internal/browser/browser_helper_test.go
package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/hrmcheck/internal/config"
)

const (
	defaultBrowserTestTimeout = 90 * time.Second
	testCleanupGracePeriod    = 2 * time.Second
	shutdownTimeout           = 15 * time.Second
)

// chromeCandidates mirrors the names chromedp searches on PATH.
var chromeCandidates = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"chrome",
}

// findChrome returns a usable browser binary or "" when none is installed.
func findChrome() string {
	if p := os.Getenv("HRMCHECK_BROWSER_EXEC_PATH"); p != "" {
		return p
	}
	for _, name := range chromeCandidates {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}

// testFixture is a per-test browser with its own profile directory.
type testFixture struct {
	Config  config.BrowserConfig
	Manager *Manager
	Logger  *zap.Logger
	RootCtx context.Context
}

// newTestFixture skips the test under -short or without a browser binary.
func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in -short mode")
	}
	execPath := findChrome()
	if execPath == "" {
		t.Skip("no Chromium/Chrome binary found")
	}

	logger := zaptest.NewLogger(t).With(zap.String("test", t.Name()))

	deadline, ok := t.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultBrowserTestTimeout)
	}
	rootCtx, rootCancel := context.WithDeadline(context.Background(), deadline.Add(-testCleanupGracePeriod))
	t.Cleanup(rootCancel)

	cfg := config.BrowserConfig{
		Headless:          true,
		DisableCache:      true,
		IgnoreTLSErrors:   true,
		ExecPath:          execPath,
		ActionTimeout:     5 * time.Second,
		NavigationTimeout: 30 * time.Second,
		Headers:           map[string]string{"X-Hrmcheck-Test": t.Name()},
	}

	manager, err := NewManager(rootCtx, cfg, logger, chromedp.UserDataDir(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := manager.Shutdown(ctx); err != nil {
			t.Logf("Warning: error during browser manager shutdown: %v", err)
		}
	})

	return &testFixture{Config: cfg, Manager: manager, Logger: logger, RootCtx: rootCtx}
}

// newSession opens a session on the fixture and closes it at cleanup.
func (f *testFixture) newSession(t *testing.T) *Session {
	t.Helper()
	d, err := f.Manager.NewSession(f.RootCtx)
	require.NoError(t, err)
	s, ok := d.(*Session)
	require.True(t, ok)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

// createTestServer returns a server using the provided handler.
func createTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// createStaticTestServer returns a server that serves the given HTML content.
func createStaticTestServer(t *testing.T, htmlContent string) *httptest.Server {
	t.Helper()
	return createTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintln(w, htmlContent)
	}))
}
