package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opsrange/restartdiag/internal/infra/shutdown"
)

var preRestartCmd = &cobra.Command{
	Use:   "pre-restart",
	Short: "Capture the pre-restart baseline snapshot",
	Long: `Captures a best-effort snapshot of the platform namespace before the
restart: nodes, workloads, storage, events, health probes and log excerpts
from unhealthy pods. Partial captures are recorded with failure markers,
never aborted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		signals := shutdown.Notify()

		logger, application, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		go shutdown.HandleSignals(ctx, logger, signals, cancel)

		sess, err := application.RunPreRestart(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Baseline captured: %s\n", sess.Dir)

		return nil
	},
}
