// File: cmd/helpers_test.go
package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/xkilldash9x/hrmcheck/internal/browser"
	"github.com/xkilldash9x/hrmcheck/internal/config"
	"github.com/xkilldash9x/hrmcheck/internal/observability"
)

// mockBrowserProvider mocks browserProvider.
type mockBrowserProvider struct {
	mock.Mock
}

func (m *mockBrowserProvider) Create(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.SessionFactory, func(context.Context) error, error) {
	args := m.Called(ctx, cfg, logger)
	var f browser.SessionFactory
	if v := args.Get(0); v != nil {
		f = v.(browser.SessionFactory)
	}
	var shutdown func(context.Context) error
	if v := args.Get(1); v != nil {
		shutdown = v.(func(context.Context) error)
	}
	return f, shutdown, args.Error(2)
}

// mockStoreProvider mocks storeProvider.
type mockStoreProvider struct {
	mock.Mock
}

func (m *mockStoreProvider) Create(ctx context.Context, cfg *config.Config) (runStore, func(), error) {
	args := m.Called(ctx, cfg)
	var s runStore
	if v := args.Get(0); v != nil {
		s = v.(runStore)
	}
	var cleanup func()
	if v := args.Get(1); v != nil {
		cleanup = v.(func())
	}
	return s, cleanup, args.Error(2)
}

// resetForTest silences the global logger so command tests don't write to
// stdout.
func resetForTest(t *testing.T) {
	t.Helper()
	observability.ResetForTest()
	observability.InitializeLogger(config.LoggerConfig{Level: "fatal", Format: "console", ServiceName: "test"})
	t.Cleanup(observability.ResetForTest)
}

// newTestConfig returns the default configuration writing a JSON report to
// output.
func newTestConfig(output string) *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Report.Format = "json"
	cfg.Report.Output = output
	cfg.Report.Screenshots = false
	return cfg
}
