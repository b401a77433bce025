package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/courseload/core"
	"github.com/huangsam/courseload/internal/contract"
)

// metricsCmd displays the formal definitions of the scoring model.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the burnout, utility and recommendation formulas",
	Long: `Show the formulas, factor weights and thresholds used to score subjects, with the
values from the config file applied.

No catalog or profile is read - this is purely informational.

Examples:
  # Show the default model
  courseload metrics

  # View with custom weights from config file
  courseload metrics --config .courseload.yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMetrics(cfg); err != nil {
			contract.LogFatal("Cannot display metrics", err)
		}
	},
}
