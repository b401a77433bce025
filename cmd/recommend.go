package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/courseload/core"
	"github.com/huangsam/courseload/internal/contract"
)

// recommendCmd ranks subjects for a student.
var recommendCmd = &cobra.Command{
	Use:   "recommend <nuid>",
	Short: "Recommend subjects, split into likely and highly competitive courses.",
	Long: `Rank the subjects a student has not completed by how well they match the student's
desired outcomes and interests, adjusted by prerequisites, burnout utility and core status.

Subjects whose enrollment likelihood falls below the competitive threshold are listed
separately as highly competitive. Likelihood grows with the semester, so first-semester
students see more competitive courses.

Examples:
  # Use the semester recorded in the profile
  courseload recommend 001

  # Override the semester and add interests
  courseload recommend 001 --semester 3 --interests "ai, security"

  # JSON output for other tools
  courseload recommend 001 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteRecommend(rootCtx, cfg, storeManager, studentArg(args)); err != nil {
			contract.LogFatal("Cannot generate recommendations", err)
		}
	},
}
