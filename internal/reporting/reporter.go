// -- internal/reporting/reporter.go --
package reporting

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
	"github.com/xkilldash9x/hrmcheck/internal/observability"
)

// ToolName identifies the generator in every report format.
const ToolName = "hrmcheck"

// Default markers written to the result column of spreadsheet reports.
const (
	DefaultPassMarker = "TEST PASS"
	DefaultFailMarker = "TEST FAILED"
)

// Reporter defines the interface for writing run results to an output.
type Reporter interface {
	// Write buffers a completed run.
	Write(run *schemas.Run) error
	// Close renders the report and closes any underlying resources (e.g., file handles).
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// meta is the report-level information shared by all formats.
type meta struct {
	Title      string
	Version    string
	PassMarker string
	FailMarker string
	now        func() time.Time
}

// Option customizes a reporter.
type Option func(*meta)

// WithTitle sets the heading of the HTML report and the suite name elsewhere.
func WithTitle(title string) Option {
	return func(m *meta) {
		if title != "" {
			m.Title = title
		}
	}
}

// WithMarkers sets the pass and fail markers used by the spreadsheet report.
func WithMarkers(pass, fail string) Option {
	return func(m *meta) {
		if pass != "" {
			m.PassMarker = pass
		}
		if fail != "" {
			m.FailMarker = fail
		}
	}
}

// renderer writes every buffered run to w in one go.
type renderer interface {
	render(w io.Writer, runs []*schemas.Run, m meta) error
}

// bufferedReporter collects runs and renders them on Close. It is safe for
// concurrent use.
type bufferedReporter struct {
	format   string
	writer   io.WriteCloser
	renderer renderer
	meta     meta
	logger   *zap.Logger

	mu     sync.Mutex
	runs   []*schemas.Run
	closed bool
}

func (r *bufferedReporter) Write(run *schemas.Run) error {
	if run == nil {
		return fmt.Errorf("cannot report a nil run")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("%s reporter is closed", r.format)
	}
	r.runs = append(r.runs, run)
	r.logger.Debug("Buffered run for report.", zap.String(observability.KeyRunID, run.ID), zap.Int("outcomes", len(run.Outcomes)))
	return nil
}

func (r *bufferedReporter) Close() error {
	startTime := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	renderErr := r.renderer.render(r.writer, r.runs, r.meta)
	// Always attempt to close the writer, regardless of rendering success.
	closeErr := r.writer.Close()

	if renderErr != nil {
		r.logger.Error("Failed to render report", zap.Error(renderErr))
		return fmt.Errorf("failed to render %s report: %w", r.format, renderErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer", zap.Error(closeErr))
		return fmt.Errorf("failed to close output writer: %w", closeErr)
	}

	r.logger.Info("Wrote report.",
		zap.Int("runs", len(r.runs)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return nil
}

// ToStdout reports whether outputPath selects standard output.
func ToStdout(outputPath string) bool {
	return outputPath == "" || outputPath == "stdout"
}

// New creates a new reporter based on the specified format and output path.
// An empty path or "stdout" writes to standard output.
func New(format, outputPath, version string, opts ...Option) (Reporter, error) {
	if ToStdout(outputPath) {
		return NewWriter(format, os.Stdout, version, opts...)
	}
	rend, m, err := setup(format, version, opts)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
	}
	return newBufferedReporter(format, f, rend, m), nil
}

// NewWriter creates a reporter that renders to w. Closing the reporter does
// not close w.
func NewWriter(format string, w io.Writer, version string, opts ...Option) (Reporter, error) {
	rend, m, err := setup(format, version, opts)
	if err != nil {
		return nil, err
	}
	return newBufferedReporter(format, &nopWriteCloser{w}, rend, m), nil
}

func setup(format, version string, opts []Option) (renderer, meta, error) {
	m := meta{
		Title:      "hrmcheck report",
		Version:    version,
		PassMarker: DefaultPassMarker,
		FailMarker: DefaultFailMarker,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}

	switch strings.ToLower(format) {
	case "html", "":
		return htmlRenderer{}, m, nil
	case "json":
		return jsonRenderer{}, m, nil
	case "junit":
		return junitRenderer{}, m, nil
	case "xlsx":
		return xlsxRenderer{}, m, nil
	}
	return nil, m, fmt.Errorf("unsupported output format: %s", format)
}

func newBufferedReporter(format string, w io.WriteCloser, rend renderer, m meta) *bufferedReporter {
	if format == "" {
		format = "html"
	}
	return &bufferedReporter{
		format:   strings.ToLower(format),
		writer:   w,
		renderer: rend,
		meta:     m,
		logger:   observability.GetLogger().Named("reporter").With(zap.String("format", format)),
	}
}

// resultMarker picks the spreadsheet marker for an outcome.
func (m meta) resultMarker(o schemas.Outcome) string {
	if o.Passed() {
		return m.PassMarker
	}
	return m.FailMarker
}
