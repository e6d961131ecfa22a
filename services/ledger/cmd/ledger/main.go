package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"dimledger/internal/util"
	"dimledger/services/ledger/internal/app"
	"dimledger/services/ledger/internal/config"
)

const programName = "ledger"

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

// loadConfig reads the config and installs a logger writing to logOut, which
// must not be the stream carrying reports and metrics.
func loadConfig(logOut io.Writer) (config.FileConfig, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if globalFlags.debug {
		cfg.LogLevel = "debug"
	}
	logger := util.InitLogger(logOut, cfg.LogLevel).With("program", programName)
	return cfg, logger, nil
}

func runCommand() *cobra.Command {
	var metrics bool
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run registry scenarios and report each case",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			appCore := app.New(app.Config{
				StatusAuthority: cfg.StatusAuthority,
				InitialStatus:   cfg.InitialStatus,
				Logger:          logger,
				PromRegistry:    reg,
			})
			ctx := util.ContextWithLogger(cmd.Context(), logger)

			failed := false
			for _, path := range args {
				sc, err := app.LoadScenario(path)
				if err != nil {
					return err
				}
				report, err := appCore.Run(ctx, sc)
				if err != nil {
					return fmt.Errorf("run %s: %w", path, err)
				}
				if err := app.WriteReport(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				if !report.Passed() {
					failed = true
				}
			}
			if metrics || cfg.Metrics {
				if err := app.WriteMetrics(cmd.OutOrStdout(), reg); err != nil {
					return err
				}
			}
			if failed {
				return fmt.Errorf("one or more scenario cases failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print registry metrics after the run")
	return cmd
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Dimensional construct and theory registries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file (default "+config.ConfigPath+" if present)")

	rootCmd.AddCommand(runCommand())

	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error(), "program", programName)
		os.Exit(1)
	}
}
