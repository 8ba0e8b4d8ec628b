// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
	"github.com/xkilldash9x/hrmcheck/internal/browser"
)

// -- Driver Mock --

// MockDriver mocks browser.Driver.
type MockDriver struct {
	mock.Mock
}

var _ browser.Driver = (*MockDriver)(nil)

func (m *MockDriver) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockDriver) CurrentURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockDriver) Probe(ctx context.Context, loc browser.Locator) (browser.ElementState, error) {
	args := m.Called(ctx, loc)
	return args.Get(0).(browser.ElementState), args.Error(1)
}

func (m *MockDriver) Click(ctx context.Context, loc browser.Locator) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *MockDriver) SendKeys(ctx context.Context, loc browser.Locator, text string) error {
	args := m.Called(ctx, loc, text)
	return args.Error(0)
}

func (m *MockDriver) Clear(ctx context.Context, loc browser.Locator) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *MockDriver) Text(ctx context.Context, loc browser.Locator) (string, error) {
	args := m.Called(ctx, loc)
	return args.String(0), args.Error(1)
}

func (m *MockDriver) Screenshot(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	var png []byte
	if v := args.Get(0); v != nil {
		png = v.([]byte)
	}
	return png, args.Error(1)
}

func (m *MockDriver) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// -- Session Factory Mock --

// MockSessionFactory mocks browser.SessionFactory.
type MockSessionFactory struct {
	mock.Mock
}

var _ browser.SessionFactory = (*MockSessionFactory)(nil)

func (m *MockSessionFactory) NewSession(ctx context.Context) (browser.Driver, error) {
	args := m.Called(ctx)
	var d browser.Driver
	if v := args.Get(0); v != nil {
		d = v.(browser.Driver)
	}
	return d, args.Error(1)
}

// -- Reporter Mock --

// MockReporter mocks reporting.Reporter.
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Write(run *schemas.Run) error {
	args := m.Called(run)
	return args.Error(0)
}

func (m *MockReporter) Close() error {
	args := m.Called()
	return args.Error(0)
}

// -- Store Mock --

// MockStore mocks the run history store used by the CLI.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveRun(ctx context.Context, run *schemas.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockStore) GetRun(ctx context.Context, runID string) (*schemas.Run, error) {
	args := m.Called(ctx, runID)
	var run *schemas.Run
	if v := args.Get(0); v != nil {
		run = v.(*schemas.Run)
	}
	return run, args.Error(1)
}

func (m *MockStore) ListRuns(ctx context.Context, limit int) ([]schemas.RunSummary, error) {
	args := m.Called(ctx, limit)
	var runs []schemas.RunSummary
	if v := args.Get(0); v != nil {
		runs = v.([]schemas.RunSummary)
	}
	return runs, args.Error(1)
}
