// Package scenario runs named UI scenarios one at a time, each in a fresh
// browser session, and records one outcome per scenario.
package scenario

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/hrmcheck/internal/browser"
	"github.com/xkilldash9x/hrmcheck/internal/interaction"
)

// Env is what a scenario body gets to work with. It is only valid for the
// duration of one Run call.
type Env struct {
	Driver     browser.Driver
	Interactor *interaction.Interactor
	Logger     *zap.Logger
	// TargetURL is the page the session was opened on.
	TargetURL string
}

// Scenario is one independent end-to-end check.
type Scenario struct {
	Name        string
	Description string
	Run         func(ctx context.Context, env *Env) error
}

// Names returns the scenario names in order.
func Names(all []Scenario) []string {
	names := make([]string, len(all))
	for i, sc := range all {
		names[i] = sc.Name
	}
	return names
}

// Select returns the scenarios whose names are listed, in their registration
// order. An empty names list selects everything. Unknown names are an error.
func Select(all []Scenario, names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return all, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var picked []Scenario
	for _, sc := range all {
		if want[sc.Name] {
			picked = append(picked, sc)
			delete(want, sc.Name)
		}
	}
	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for _, n := range names {
			if want[n] {
				unknown = append(unknown, n)
				delete(want, n)
			}
		}
		return nil, fmt.Errorf("unknown scenario(s): %s (available: %s)",
			strings.Join(unknown, ", "), strings.Join(Names(all), ", "))
	}
	return picked, nil
}
