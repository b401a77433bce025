package cmd

import (
	"github.com/spf13/cobra"

	"github.com/huangsam/courseload/core"
	"github.com/huangsam/courseload/internal/contract"
)

// checkCmd focused on catalog integrity and burnout gating.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the catalog and gate on student burnout (fails on violations)",
	Long: `Validate the subject catalog and exit non-zero when it is broken.

Errors:
- Duplicate or blank subject codes
- Prerequisites or corequisites that are not in the catalog, or that point at the subject itself
- Negative seats or enrollments
- Assignment, project or exam weights outside [0,1]

Warnings cover requirements on unknown subjects and skills outside the known vocabulary.

With --student, every candidate subject of that student must also stay at or below
--max-burnout (default from thresholds.max_burnout).

Examples:
  # Validate the catalog in CI
  courseload check --catalog data

  # Also gate a student's burnout
  courseload check --student 001 --max-burnout 0.7`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Check failed", err)
		}
	},
}
