package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/courseload/core"
	"github.com/huangsam/courseload/internal/contract"
)

// sessionCmd runs several recommendation rounds and ends with a schedule.
var sessionCmd = &cobra.Command{
	Use:   "session <nuid>",
	Short: "Run multi-round recommendations and print the resulting schedule.",
	Long: `Run recommendation rounds the way an advising session does. Each round shows the top
five subjects of both lists that were not shown before. Every later round adds the next
--more interests on top of the earlier ones. The session stops early once no new subjects
come up, then prints the schedule built from everything shown.

The shown subjects are saved, so "courseload schedule <nuid>" can rebuild the schedule.

Examples:
  # Two rounds, the second adding more interests
  courseload session 001 --interests data --more "machine learning"

  # Fixed number of rounds with the profile's interests only
  courseload session 001 --rounds 3`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteSession(rootCtx, cfg, storeManager, studentArg(args)); err != nil {
			contract.LogFatal("Cannot run session", err)
		}
	},
}
