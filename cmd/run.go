// File: cmd/run.go
package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
	"github.com/xkilldash9x/hrmcheck/internal/browser"
	"github.com/xkilldash9x/hrmcheck/internal/config"
	"github.com/xkilldash9x/hrmcheck/internal/dataset"
	"github.com/xkilldash9x/hrmcheck/internal/interaction"
	"github.com/xkilldash9x/hrmcheck/internal/observability"
	"github.com/xkilldash9x/hrmcheck/internal/reporting"
	"github.com/xkilldash9x/hrmcheck/internal/scenario"
	"github.com/xkilldash9x/hrmcheck/internal/suite"
)

const defaultReportOutput = "report.html"

// historyTimeout bounds connecting to and writing the run history database.
var historyTimeout = 30 * time.Second

// browserProvider starts the browser used by a run. The returned shutdown
// function releases it.
type browserProvider interface {
	Create(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.SessionFactory, func(context.Context) error, error)
}

type defaultBrowserProvider struct{}

// NewBrowserProvider returns the provider that launches a local Chromium.
func NewBrowserProvider() browserProvider {
	return &defaultBrowserProvider{}
}

func (p *defaultBrowserProvider) Create(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (browser.SessionFactory, func(context.Context) error, error) {
	mgr, err := browser.NewManager(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return mgr, mgr.Shutdown, nil
}

// newRunCmd creates and configures the `run` command. Its flags are bound to
// v so they override the config file and environment.
func newRunCmd(v *viper.Viper, d deps) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run all or the named scenarios and write a report",
		Long: `Runs the regression scenarios in order, each in a fresh browser session,
and writes a report of every outcome. The exit status is non-zero unless every
scenario passed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("output") {
				cfg.Report.Output = defaultOutputFor(cfg.Report.Format, cfg.Report.Output)
			}
			return runSuite(ctx, observability.GetLogger(), cfg, args, cmd.OutOrStdout(), cmd.ErrOrStderr(), d)
		},
	}

	flags := runCmd.Flags()
	flags.StringP("output", "o", "", "Report output path, or 'stdout'")
	flags.StringP("format", "f", "", "Report format: html, json, junit or xlsx")
	flags.Bool("headless", true, "Run the browser without a window")
	flags.Duration("timeout", 0, "Readiness timeout for every interaction (e.g. 10s)")
	flags.Duration("poll-interval", 0, "Interval between readiness checks (e.g. 250ms)")
	flags.String("target", "", "Login URL of the OrangeHRM instance under test")

	for key, flag := range map[string]string{
		"report.output":      "output",
		"report.format":      "format",
		"browser.headless":   "headless",
		"wait.timeout":       "timeout",
		"wait.poll_interval": "poll-interval",
		"target.url":         "target",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	return runCmd
}

// defaultOutputFor swaps the extension of the default report path to match
// a non-HTML format.
func defaultOutputFor(format, output string) string {
	if output != defaultReportOutput {
		return output
	}
	switch strings.ToLower(format) {
	case "json":
		return "report.json"
	case "junit":
		return "report.xml"
	case "xlsx":
		return "report.xlsx"
	}
	return output
}

// runSuite contains the core, testable logic of the run command. The summary
// goes to stdout unless the report itself is written there, in which case it
// goes to stderr.
func runSuite(ctx context.Context, logger *zap.Logger, cfg *config.Config, names []string, stdout, stderr io.Writer, d deps) error {
	if _, err := dataset.LoadInto(cfg); err != nil {
		return fmt.Errorf("failed to load test data: %w", err)
	}
	data, err := suite.DataFromConfig(cfg)
	if err != nil {
		return err
	}
	selected, err := scenario.Select(suite.Scenarios(data), names)
	if err != nil {
		return err
	}

	// Open the report before the run so a bad output path fails fast.
	summaryOut := stdout
	reportOpts := []reporting.Option{
		reporting.WithTitle(cfg.Report.Title),
		reporting.WithMarkers(cfg.TestData.PassMarker, cfg.TestData.FailMarker),
	}
	var reporter reporting.Reporter
	if reporting.ToStdout(cfg.Report.Output) {
		summaryOut = stderr
		reporter, err = reporting.NewWriter(cfg.Report.Format, stdout, Version, reportOpts...)
	} else {
		reporter, err = reporting.New(cfg.Report.Format, cfg.Report.Output, Version, reportOpts...)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize reporter: %w", err)
	}
	reporterClosed := false
	defer func() {
		if !reporterClosed {
			_ = reporter.Close()
		}
	}()

	factory, shutdown, err := d.browsers.Create(ctx, cfg.Browser, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(browser.Detach(ctx), 20*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("Browser shutdown was not clean.", zap.Error(err))
		}
	}()

	runner := scenario.NewRunner(factory, scenario.Options{
		TargetURL:   cfg.Target.URL,
		Wait:        interaction.Options{Timeout: cfg.Wait.Timeout, PollInterval: cfg.Wait.PollInterval},
		Screenshots: cfg.Report.Screenshots,
	}, logger)
	run := runner.Run(ctx, selected)

	if err := reporter.Write(run); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	reporterClosed = true
	if err := reporter.Close(); err != nil {
		return err
	}

	if cfg.Database.URL != "" {
		saveHistory(ctx, logger, cfg, run, d.stores)
	}

	printSummary(summaryOut, run, cfg.Report.Output)
	if !run.Passed() {
		return ErrScenariosFailed
	}
	return nil
}

// saveHistory records the run. History is best effort: a database problem is
// logged and never changes the outcome of the run.
func saveHistory(ctx context.Context, logger *zap.Logger, cfg *config.Config, run *schemas.Run, p storeProvider) {
	sctx, cancel := context.WithTimeout(browser.Detach(ctx), historyTimeout)
	defer cancel()
	st, cleanup, err := p.Create(sctx, cfg)
	if err != nil {
		logger.Warn("Run history unavailable.", zap.Error(err))
		return
	}
	if cleanup != nil {
		defer cleanup()
	}
	if err := st.SaveRun(sctx, run); err != nil {
		logger.Warn("Failed to save run history.", zap.String(observability.KeyRunID, run.ID), zap.Error(err))
	}
}

func printSummary(out io.Writer, run *schemas.Run, reportPath string) {
	for _, o := range run.Outcomes {
		line := fmt.Sprintf("%-6s %-16s %6.1fs", strings.ToUpper(string(o.Status)), o.Scenario, o.Duration.Seconds())
		if o.Condition != "" {
			line += "  " + o.Condition
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "\nRun %s: %s\n", run.ID, run.Summary())
	if !reporting.ToStdout(reportPath) {
		fmt.Fprintf(out, "Report written to %s\n", reportPath)
	}
}
