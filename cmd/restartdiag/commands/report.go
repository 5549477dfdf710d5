package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Correlate both phases into a root-cause report",
	Long: `Loads the most recent pre-restart and post-restart artifacts, runs the
correlation rules over the recovery timeline and the final snapshot, and
renders a Markdown report. Fails without writing anything when either phase
is missing; run it again after re-running the missing phase.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, application, err := setup(cmd)
		if err != nil {
			return err
		}

		rendered, path, err := application.RunReport(cmd.Context())
		if err != nil {
			return err
		}

		if _, err := cmd.OutOrStdout().Write(rendered); err != nil {
			return fmt.Errorf("write report to stdout: %w", err)
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "\nReport written: %s\n", path)

		return nil
	},
}
