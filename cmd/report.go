// File: cmd/report.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
	"github.com/xkilldash9x/hrmcheck/internal/config"
	"github.com/xkilldash9x/hrmcheck/internal/observability"
	"github.com/xkilldash9x/hrmcheck/internal/reporting"
	"github.com/xkilldash9x/hrmcheck/internal/store"
)

// runStore is the slice of the run history store the commands use.
type runStore interface {
	SaveRun(ctx context.Context, run *schemas.Run) error
	GetRun(ctx context.Context, runID string) (*schemas.Run, error)
	ListRuns(ctx context.Context, limit int) ([]schemas.RunSummary, error)
}

// storeProvider defines an interface for components that can create a run
// store. Tests inject a mock store instead of a live database connection.
type storeProvider interface {
	// Create returns the store, a cleanup function to release resources, and
	// an error if the creation fails.
	Create(ctx context.Context, cfg *config.Config) (runStore, func(), error)
}

// defaultStoreProvider connects to PostgreSQL.
type defaultStoreProvider struct{}

// NewStoreProvider creates the production store provider.
func NewStoreProvider() storeProvider {
	return &defaultStoreProvider{}
}

// Create connects to the database, applies the schema and returns the store
// along with a cleanup function that closes the pool.
func (p *defaultStoreProvider) Create(ctx context.Context, cfg *config.Config) (runStore, func(), error) {
	s, cleanup, err := store.Connect(ctx, cfg.Database.URL, observability.GetLogger())
	if err != nil {
		return nil, nil, err
	}
	return s, cleanup, nil
}

// newReportCmd creates and configures the `report` command.
func newReportCmd(provider storeProvider) *cobra.Command {
	var runID string
	var outputPath string
	var format string

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Regenerate the report of a stored run",
		Long: `Loads a run from the history database by ID and renders it again in any
report format. Requires database.url (or HRMCHECK_DATABASE_URL).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runReport(ctx, logger, cfg, runID, outputPath, format, provider)
		},
	}

	reportCmd.Flags().StringVar(&runID, "run-id", "", "The ID of the run to report on (required)")
	_ = reportCmd.MarkFlagRequired("run-id")
	reportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path. If unset, the report is printed to stdout.")
	reportCmd.Flags().StringVarP(&format, "format", "f", "json", "Format for the output report: html, json, junit or xlsx")

	return reportCmd
}

// runReport contains the core, testable logic for regenerating a report.
func runReport(
	ctx context.Context,
	logger *zap.Logger,
	cfg *config.Config,
	runID, outputPath, format string,
	provider storeProvider,
) error {
	logger.Info("Starting report generation", zap.String(observability.KeyRunID, runID))

	st, cleanup, err := provider.Create(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	// Mocks may not provide a cleanup.
	if cleanup != nil {
		defer cleanup()
	}

	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	reporter, err := reporting.New(format, outputPath, Version,
		reporting.WithTitle(cfg.Report.Title),
		reporting.WithMarkers(cfg.TestData.PassMarker, cfg.TestData.FailMarker))
	if err != nil {
		return fmt.Errorf("failed to initialize reporter: %w", err)
	}
	if err := reporter.Write(run); err != nil {
		_ = reporter.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	// Rendering happens on Close.
	if err := reporter.Close(); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if !reporting.ToStdout(outputPath) {
		logger.Info("Report successfully written to file", zap.String("path", outputPath))
	}
	return nil
}
