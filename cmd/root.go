// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/hrmcheck/internal/config"
	"github.com/xkilldash9x/hrmcheck/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// ErrScenariosFailed is returned by the run command when at least one
// scenario did not pass. The outcomes are already reported, so callers only
// need to set the exit status.
var ErrScenariosFailed = errors.New("not all scenarios passed")

// deps are the external services the commands need. Tests replace them.
type deps struct {
	browsers browserProvider
	stores   storeProvider
}

func defaultDeps() deps {
	return deps{browsers: NewBrowserProvider(), stores: NewStoreProvider()}
}

// NewRootCommand builds a fresh command tree with the production services.
func NewRootCommand() *cobra.Command {
	return newRootCmd(defaultDeps())
}

func newRootCmd(d deps) *cobra.Command {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "hrmcheck",
		Short:         "hrmcheck runs browser regression scenarios against OrangeHRM.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.SetDefaults(v)

			// 1. Initialize configuration loading
			if err := initializeConfig(v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			// 2. Create the configuration object from viper.
			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "hrmcheck"})
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			// 3. Initialize the logger with the loaded config.
			observability.InitializeLogger(cfg.Logger)
			observability.GetLogger().Debug("Starting hrmcheck", zap.String("version", Version))

			// 4. Store the validated config in the command's context for subcommands.
			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	cmd.SetVersionTemplate(`{{.Name}} version {{.Version}}` + "\n")

	cmd.AddCommand(newRunCmd(v, d))
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newReportCmd(d.stores))
	cmd.AddCommand(newHistoryCmd(d.stores))
	return cmd
}

// Execute runs the command tree with ctx and logs a failure once.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	if err == nil || errors.Is(err, ErrScenariosFailed) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		observability.GetLogger().Warn("Interrupted.")
		return err
	}
	if logger := observability.GetLogger(); logger != nil {
		logger.Error("Command execution failed", zap.Error(err))
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	return err
}

// initializeConfig reads in the config file and ENV variables if set.
func initializeConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(config.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; proceed with defaults/env vars
	}
	return nil
}

func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}
