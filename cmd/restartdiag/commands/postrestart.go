package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsrange/restartdiag/internal/infra/shutdown"
)

var postRestartCmd = &cobra.Command{
	Use:   "post-restart",
	Short: "Monitor component recovery after the restart",
	Long: `Polls every declared component check on a fixed cadence for the
monitoring window, recording an append-only status timeline. Deep diagnostic
captures of unhealthy workloads run on a coarser cadence, and a final
comprehensive snapshot closes the phase. Interrupting the window keeps
everything collected so far.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		signals := shutdown.Notify()

		logger, application, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		go shutdown.HandleSignals(ctx, logger, signals, cancel)

		sess, err := application.RunPostRestart(ctx)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Monitoring complete: %s\n", sess.Dir)

		return nil
	},
}

func init() {
	f := postRestartCmd.Flags()
	f.DurationP("monitor-duration", "d", 10*time.Minute, "length of the monitoring window")
	f.Duration("poll-interval", 10*time.Second, "cadence of component status sampling")
	f.Duration("snapshot-interval", 60*time.Second, "cadence of deep diagnostic captures")
}
