// Package parquet exports run history and score tables to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/huangsam/courseload/schema"
)

// Run represents a single tracked run. It maps to the courseload_runs table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Kind names the operation that was run (scores, recommend, session, schedule)
	Kind string `parquet:"kind,snappy,dict"`

	// StudentID is the NUID the run was computed for
	StudentID string `parquet:"student_id,snappy,dict"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalSubjects is the number of subjects scored or ranked
	TotalSubjects int32 `parquet:"total_subjects,snappy"`

	// ConfigParams contains the JSON-encoded engine parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// SubjectScore is one scored subject of a run. It maps to the courseload_subject_scores table.
type SubjectScore struct {
	RunID        int64     `parquet:"run_id,snappy"`
	StudentID    string    `parquet:"student_id,snappy,dict"`
	SubjectCode  string    `parquet:"subject_code,snappy,dict"`
	RecordedAt   time.Time `parquet:"recorded_at,snappy"`
	Workload     float64   `parquet:"workload,snappy"`
	Mismatch     float64   `parquet:"mismatch,snappy"`
	Stress       float64   `parquet:"stress,snappy"`
	BurnoutScore float64   `parquet:"burnout_score,snappy"`
	Alignment    float64   `parquet:"alignment,snappy"`
	Penalty      float64   `parquet:"penalty,snappy"`
	Utility      float64   `parquet:"utility,snappy"`
}

// Recommendation is one ranked subject of a run. It maps to the courseload_recommendations table.
type Recommendation struct {
	RunID       int64   `parquet:"run_id,snappy"`
	SubjectCode string  `parquet:"subject_code,snappy,dict"`
	Rank        int32   `parquet:"rank,snappy"`
	Partition   string  `parquet:"list_name,snappy,dict"`
	MatchScore  float64 `parquet:"match_score,snappy"`
	Likelihood  float64 `parquet:"likelihood,snappy"`
	IsCore      bool    `parquet:"is_core,snappy"`
}

// BurnoutRow is one row of a burnout table written as command output.
type BurnoutRow struct {
	Rank                   int32   `parquet:"rank,snappy"`
	SubjectCode            string  `parquet:"subject_code,snappy"`
	SubjectName            string  `parquet:"subject_name,snappy"`
	BurnoutScore           float64 `parquet:"burnout_score,snappy"`
	Label                  string  `parquet:"label,snappy,dict"`
	Utility                float64 `parquet:"utility,snappy"`
	PrerequisitesSatisfied bool    `parquet:"prerequisites_satisfied,snappy"`
	Prerequisites          string  `parquet:"prerequisites,snappy"`
}

// CandidateRow is one recommendation written as command output.
type CandidateRow struct {
	Partition    string   `parquet:"list_name,snappy,dict"`
	Rank         int32    `parquet:"rank,snappy"`
	SubjectCode  string   `parquet:"subject_code,snappy"`
	Name         string   `parquet:"name,snappy"`
	MatchScore   float64  `parquet:"match_score,snappy"`
	Likelihood   float64  `parquet:"likelihood,snappy"`
	BurnoutScore *float64 `parquet:"burnout_score,optional,snappy"`
	UtilityScore *float64 `parquet:"utility_score,optional,snappy"`
	IsCore       bool     `parquet:"is_core,snappy"`
	Reasons      string   `parquet:"reasons,snappy"`
}

// Write encodes rows to w. The schema is derived from the struct tags of T.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return Write(file, rows)
}

// ConvertRunRecords converts stored runs for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			Kind:          record.Kind,
			StudentID:     record.StudentID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalSubjects: record.TotalSubjects,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertSubjectScoreRecords converts stored subject scores for Parquet export.
func ConvertSubjectScoreRecords(records []schema.SubjectScoreRecord) []SubjectScore {
	result := make([]SubjectScore, len(records))
	for i, r := range records {
		result[i] = SubjectScore(r)
	}
	return result
}

// ConvertRecommendationRecords converts stored recommendations for Parquet export.
func ConvertRecommendationRecords(records []schema.RecommendationRecord) []Recommendation {
	result := make([]Recommendation, len(records))
	for i, r := range records {
		result[i] = Recommendation(r)
	}
	return result
}
