package schema

import "time"

// TableStoreStatus represents the status of the score table store.
type TableStoreStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStoreStatus represents the status of the run store.
type RunStoreStatus struct {
	Backend             string           `json:"backend"`
	Connected           bool             `json:"connected"`
	TotalRuns           int              `json:"total_runs"`
	LastRunID           int64            `json:"last_run_id"`
	LastRunTime         time.Time        `json:"last_run_time"`
	OldestRunTime       time.Time        `json:"oldest_run_time"`
	TotalSubjectsScored int              `json:"total_subjects_scored"`
	TableSizes          map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the courseload_runs table.
type RunRecord struct {
	RunID         int64
	Kind          string
	StudentID     string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalSubjects int32
	ConfigParams  *string
}

// SubjectScoreRecord represents a row from the courseload_subject_scores table.
type SubjectScoreRecord struct {
	RunID        int64
	StudentID    string
	SubjectCode  string
	RecordedAt   time.Time
	Workload     float64
	Mismatch     float64
	Stress       float64
	BurnoutScore float64
	Alignment    float64
	Penalty      float64
	Utility      float64
}

// RecommendationRecord represents a row from the courseload_recommendations table.
type RecommendationRecord struct {
	RunID       int64
	SubjectCode string
	Rank        int32
	Partition   string
	MatchScore  float64
	Likelihood  float64
	IsCore      bool
}

// SubjectScoreDetail carries the per-subject values a run records.
type SubjectScoreDetail struct {
	Breakdown BurnoutBreakdown
	Alignment float64
	Penalty   float64
	Utility   float64
}
