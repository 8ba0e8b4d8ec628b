package schemas

import (
	"fmt"
	"time"
)

// -- Outcome Schemas --

// Status classifies how a single scenario ended.
type Status string

const (
	// StatusPass means every step ran and the terminal condition held.
	StatusPass Status = "pass"
	// StatusFail means an expected condition was not observed: an assertion
	// mismatch or a readiness condition that never became true in time.
	StatusFail Status = "fail"
	// StatusError means the scenario could not be evaluated: a driver or
	// session fault, a panic, or any unclassified error.
	StatusError Status = "error"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPass, StatusFail, StatusError:
		return true
	}
	return false
}

// Outcome is the recorded result of one scenario. It is produced exactly once
// per scenario and consumed by the reporters and the store.
type Outcome struct {
	Scenario    string        `json:"scenario"`
	Description string        `json:"description,omitempty"`
	Status      Status        `json:"status"`
	// Message carries the failure text. Empty for passing scenarios.
	Message string `json:"message,omitempty"`
	// Condition names the readiness condition or assertion that failed, e.g.
	// "visible(name=username)" or "url contains dashboard".
	Condition  string        `json:"condition,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	Screenshot []byte        `json:"screenshot,omitempty"`
}

// Passed is shorthand for o.Status == StatusPass.
func (o Outcome) Passed() bool { return o.Status == StatusPass }

// Run groups the outcomes of one invocation of the suite, in execution order.
type Run struct {
	ID         string    `json:"id"`
	Target     string    `json:"target"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Summary holds per-status counts for a run.
type Summary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
	Errors int `json:"errors"`
}

func (s Summary) String() string {
	return fmt.Sprintf("%d total, %d passed, %d failed, %d errors", s.Total, s.Passed, s.Failed, s.Errors)
}

// Summary counts the outcomes of the run by status.
func (r *Run) Summary() Summary {
	var s Summary
	if r == nil {
		return s
	}
	for _, o := range r.Outcomes {
		s.Total++
		switch o.Status {
		case StatusPass:
			s.Passed++
		case StatusFail:
			s.Failed++
		default:
			s.Errors++
		}
	}
	return s
}

// Passed reports whether every outcome passed. An empty run does not pass.
func (r *Run) Passed() bool {
	s := r.Summary()
	return s.Total > 0 && s.Passed == s.Total
}

// Duration is the wall-clock time between the start and end of the run.
func (r *Run) Duration() time.Duration {
	if r == nil || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunSummary is a stored run without its outcomes, as listed by run history.
type RunSummary struct {
	ID         string    `json:"id"`
	Target     string    `json:"target"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Summary
}
