// internal/browser/context_utils.go
package browser

import (
	"context"
	"time"
)

// CombineContext returns a context that carries the values of ctx1 (the
// chromedp tab context) and is canceled when either ctx1 or ctx2 is done.
// chromedp resolves its target from context values, so the operational
// deadline has to be grafted onto the tab context rather than the reverse.
func CombineContext(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(ctx1)
	if ctx2 == nil {
		return combined, cancel
	}
	stop := context.AfterFunc(ctx2, cancel)
	return combined, func() {
		stop()
		cancel()
	}
}

type valueOnlyContext struct{ context.Context }

func (valueOnlyContext) Deadline() (time.Time, bool) { return time.Time{}, false }
func (valueOnlyContext) Done() <-chan struct{}       { return nil }
func (valueOnlyContext) Err() error                  { return nil }

// Detach returns a context with ctx's values but none of its cancellation.
// Cleanup that must run after a scenario's context expired uses it.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
