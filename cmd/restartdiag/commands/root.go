// Package commands defines the CLI surface. Configuration comes from the
// environment first; flags override per invocation.
package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsrange/restartdiag/internal/app"
	"github.com/opsrange/restartdiag/internal/config"
	"github.com/opsrange/restartdiag/internal/infra/logging"
)

var rootCmd = &cobra.Command{
	Use:   "restartdiag",
	Short: "Cluster restart diagnostics for the ML platform",
	Long: `restartdiag captures cluster state around a planned full restart and
correlates the observations into a root-cause report.

Workflow:
  restartdiag pre-restart    before the restart: capture the baseline
  restartdiag post-restart   after the restart: monitor recovery
  restartdiag report         correlate both phases into a report`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("dir", "", "diagnostics root directory")
	pf.StringP("namespace", "n", "", "platform namespace to diagnose")
	pf.String("checks-file", "", "YAML file declaring the component checks")
	pf.String("kubeconfig", "", "path to the kubeconfig file")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (json, text)")

	rootCmd.AddCommand(preRestartCmd)
	rootCmd.AddCommand(postRestartCmd)
	rootCmd.AddCommand(reportCmd)
}

// setup loads env configuration, applies flag overrides and wires the app.
func setup(cmd *cobra.Command) (*slog.Logger, *app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, nil, err
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel)

	application, err := app.New(logger, cfg)
	if err != nil {
		return nil, nil, err
	}

	return logger, application, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	strings := []struct {
		name string
		dst  *string
	}{
		{"dir", &cfg.Dir},
		{"namespace", &cfg.Namespace},
		{"checks-file", &cfg.ChecksFile},
		{"kubeconfig", &cfg.KubeConfig},
		{"log-level", &cfg.LogLevel},
		{"log-format", &cfg.LogFormat},
	}

	for _, f := range strings {
		if cmd.Flags().Changed(f.name) {
			v, err := cmd.Flags().GetString(f.name)
			if err != nil {
				return fmt.Errorf("read flag %s: %w", f.name, err)
			}

			*f.dst = v
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"monitor-duration", &cfg.MonitorDuration},
		{"poll-interval", &cfg.PollInterval},
		{"snapshot-interval", &cfg.SnapshotInterval},
	}

	for _, f := range durations {
		if cmd.Flags().Lookup(f.name) == nil || !cmd.Flags().Changed(f.name) {
			continue
		}

		v, err := cmd.Flags().GetDuration(f.name)
		if err != nil {
			return fmt.Errorf("read flag %s: %w", f.name, err)
		}

		*f.dst = v
	}

	if cfg.SnapshotInterval < cfg.PollInterval {
		return fmt.Errorf(
			"%w: snapshot interval %s is finer than poll interval %s",
			config.ErrInvalidConfig, cfg.SnapshotInterval, cfg.PollInterval,
		)
	}

	return nil
}
