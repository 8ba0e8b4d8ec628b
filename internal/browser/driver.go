// internal/browser/driver.go
package browser

import (
	"context"
	"errors"
)

// ErrSessionClosed is returned by every Driver method once Close has run.
var ErrSessionClosed = errors.New("browser session is closed")

// ElementState is a snapshot of one element taken by a single query.
type ElementState struct {
	Present bool   `json:"present"`
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
	Text    string `json:"text"`
}

// Driver is the set of page capabilities the interaction layer relies on.
// Probe and CurrentURL must not change page state; readiness polling calls
// them repeatedly.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	Probe(ctx context.Context, loc Locator) (ElementState, error)
	Click(ctx context.Context, loc Locator) error
	SendKeys(ctx context.Context, loc Locator, text string) error
	Clear(ctx context.Context, loc Locator) error
	Text(ctx context.Context, loc Locator) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Close(ctx context.Context) error
}

// SessionFactory hands out one fresh, isolated page session per call.
type SessionFactory interface {
	NewSession(ctx context.Context) (Driver, error)
}
