package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/internal/parquet"
)

// ExportRuns writes the run store contents to three Parquet files prefixed by outputFile.
func ExportRuns(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run store status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}
	scores, err := store.GetAllSubjectScores()
	if err != nil {
		return fmt.Errorf("failed to retrieve subject scores: %w", err)
	}
	recs, err := store.GetAllRecommendations()
	if err != nil {
		return fmt.Errorf("failed to retrieve recommendations: %w", err)
	}

	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteFile(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(runs), runsFile)

	scoresFile := outputFile + ".subject_scores.parquet"
	if err := parquet.WriteFile(parquet.ConvertSubjectScoreRecords(scores), scoresFile); err != nil {
		return fmt.Errorf("failed to write subject scores: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d subject scores to: %s\n", len(scores), scoresFile)

	recsFile := outputFile + ".recommendations.parquet"
	if err := parquet.WriteFile(parquet.ConvertRecommendationRecords(recs), recsFile); err != nil {
		return fmt.Errorf("failed to write recommendations: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d recommendations to: %s\n", len(recs), recsFile)
	return nil
}
