// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/hrmcheck/internal/config"
	"github.com/xkilldash9x/hrmcheck/internal/mocks"
	"github.com/xkilldash9x/hrmcheck/internal/suite"
)

func executeRoot(t *testing.T, d deps, args ...string) (string, error) {
	t.Helper()
	resetForTest(t)
	root := newRootCmd(d)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := executeRoot(t, deps{}, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "hrmcheck version "+Version)
}

func TestRootCmd_List(t *testing.T) {
	out, err := executeRoot(t, deps{}, "list")
	require.NoError(t, err)
	for _, name := range []string{suite.ValidLogin, suite.InvalidLogin, suite.AddEmployee, suite.EditEmployee, suite.DeleteEmployee} {
		assert.Contains(t, out, name)
	}
}

func TestRootCmd_MissingExplicitConfig(t *testing.T) {
	_, err := executeRoot(t, deps{}, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize configuration")
}

func TestRootCmd_ConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "hrmcheck.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
target:
  url: https://hrm.internal/web/index.php/auth/login
report:
  format: junit
  screenshots: false
`), 0o600))
	out := filepath.Join(dir, "results.json")

	var seen config.BrowserConfig
	var shutdowns int
	factory := new(mocks.MockSessionFactory)
	factory.On("NewSession", mock.Anything).Return(nil, errors.New("no session"))
	browsers := new(mockBrowserProvider)
	browsers.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { seen = args.Get(1).(config.BrowserConfig) }).
		Return(factory, func(context.Context) error { shutdowns++; return nil }, nil)

	// --format overrides the file, --headless=false overrides the default.
	stdout, err := executeRoot(t, deps{browsers: browsers, stores: new(mockStoreProvider)},
		"--config", cfgPath, "run", "--format", "json", "-o", out, "--headless=false", "--timeout", "2s", suite.ValidLogin)

	require.ErrorIs(t, err, ErrScenariosFailed)
	assert.False(t, seen.Headless)
	assert.Equal(t, 1, shutdowns)
	assert.Contains(t, stdout, "valid_login")

	rep := readJSONReport(t, out)
	require.Len(t, rep.Runs, 1)
	assert.Len(t, rep.Runs[0].Outcomes, 1)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	t.Setenv("HRMCHECK_WAIT_POLL_INTERVAL", "1m")
	_, err := executeRoot(t, deps{}, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll_interval")
}

func TestRootCmd_ReportRequiresRunID(t *testing.T) {
	_, err := executeRoot(t, deps{stores: new(mockStoreProvider)}, "report")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-id")
}
