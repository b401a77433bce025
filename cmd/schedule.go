package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/courseload/core"
	"github.com/huangsam/courseload/internal/contract"
)

// scheduleCmd prints the final schedule.
var scheduleCmd = &cobra.Command{
	Use:   "schedule <nuid> [subject-code...]",
	Short: "Build the final schedule from subject codes or the last session.",
	Long: `Build the final "Subject N" schedule with each subject's utility.

Codes are deduplicated in selection order and the schedule holds at most five subjects.
Without codes, the history saved by the student's last session is used.

Examples:
  # Explicit selection
  courseload schedule 001 CS5200 CS6140

  # Reuse the last session
  courseload schedule 001`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteSchedule(rootCtx, cfg, storeManager, studentArg(args), args[1:]); err != nil {
			contract.LogFatal("Cannot build schedule", err)
		}
	},
}
