package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/courseload/core"
	"github.com/huangsam/courseload/internal/contract"
)

// scoresCmd computes the burnout table of one student, or of every student with --all.
var scoresCmd = &cobra.Command{
	Use:   "scores [nuid]",
	Short: "Compute burnout probabilities for every subject a student has not completed.",
	Long: `Compute the burnout probability and utility of each subject the student has not
completed yet, lowest risk first. The table is saved to the score table store so later
recommend and schedule runs can reuse it.

Burnout combines three normalized factors:
- Workload: weekly hours, assignments, projects and exams
- Mismatch: how far the student's skills fall short of the subject's requirements
- Stress: expected grade shortfall weighted by assignment, project and exam weight

Examples:
  # Score one student
  courseload scores 001

  # Include the factor breakdown
  courseload scores 001 --detail

  # Score every profile and print a summary
  courseload scores --all --workers 8

  # Export to CSV
  courseload scores 001 --output csv --output-file burnout_scores_001.csv`,
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, args []string) {
		if all, _ := cmd.Flags().GetBool("all"); all {
			if err := core.ExecuteBatchScores(rootCtx, cfg, storeManager); err != nil {
				contract.LogFatal("Cannot score profiles", err)
			}
			return
		}
		if err := core.ExecuteScores(rootCtx, cfg, storeManager, studentArg(args)); err != nil {
			contract.LogFatal("Cannot compute burnout scores", err)
		}
	},
}
