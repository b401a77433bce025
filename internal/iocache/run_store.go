package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// Table names for run tracking.
const (
	runsTable            = "courseload_runs"
	subjectScoresTable   = "courseload_subject_scores"
	recommendationsTable = "courseload_recommendations"
)

// runTables lists every run store table in creation order.
var runTables = []string{runsTable, subjectScoresTable, recommendationsTable}

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend and migrates it to the latest schema.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}
	return &RunStoreImpl{db: db, backend: backend}, nil
}

// disabled reports whether the store is a no-op.
func (rs *RunStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(kind schema.RunKind, studentID string, startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(runsTable, rs.backend)
	args := []any{string(kind), studentID, formatTime(startTime, rs.backend), string(configJSON)}

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (kind, student_id, start_time, config_params) VALUES (%s) RETURNING run_id`,
			quoted, placeholders(rs.backend, 4))
		err = rs.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (kind, student_id, start_time, config_params) VALUES (%s)`,
			quoted, placeholders(rs.backend, 4))
		var result sql.Result
		result, err = rs.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalSubjects int) error {
	if rs.disabled() {
		return nil
	}

	quoted := quoteTableName(runsTable, rs.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, placeholders(rs.backend, 1))
	start := timeScanner{backend: rs.backend}
	if err := rs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	var update string
	if rs.backend == schema.PostgreSQLBackend {
		update = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_subjects = $3 WHERE run_id = $4`, quoted)
	} else {
		update = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_subjects = ? WHERE run_id = ?`, quoted)
	}
	if _, err := rs.db.Exec(update, formatTime(endTime, rs.backend), durationMs, totalSubjects, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordSubjectScores stores the per-subject scores of a run in one transaction.
func (rs *RunStoreImpl) RecordSubjectScores(runID int64, records []schema.SubjectScoreRecord) error {
	if rs.disabled() || len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, student_id, subject_code, recorded_at, workload, mismatch,
		stress, burnout_score, alignment, penalty, utility) VALUES (%s)`,
		quoteTableName(subjectScoresTable, rs.backend), placeholders(rs.backend, 11))

	return rs.inTx(query, len(records), func(i int) []any {
		r := records[i]
		return []any{
			runID, r.StudentID, r.SubjectCode, formatTime(r.RecordedAt, rs.backend), r.Workload, r.Mismatch,
			r.Stress, r.BurnoutScore, r.Alignment, r.Penalty, r.Utility,
		}
	})
}

// RecordRecommendations stores the ranked output of a run in one transaction.
func (rs *RunStoreImpl) RecordRecommendations(runID int64, records []schema.RecommendationRecord) error {
	if rs.disabled() || len(records) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (run_id, subject_code, rank_pos, list_name, match_score, likelihood, is_core)
		VALUES (%s)`, quoteTableName(recommendationsTable, rs.backend), placeholders(rs.backend, 7))

	return rs.inTx(query, len(records), func(i int) []any {
		r := records[i]
		return []any{runID, r.SubjectCode, r.Rank, r.Partition, r.MatchScore, r.Likelihood, r.IsCore}
	})
}

// inTx executes a prepared statement n times inside a single transaction.
func (rs *RunStoreImpl) inTx(query string, n int, args func(i int) []any) error {
	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range n {
		if _, err := stmt.Exec(args(i)...); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStoreStatus, error) {
	status := schema.RunStoreStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.disabled() {
		return status, nil
	}

	quoted := quoteTableName(runsTable, rs.backend)
	if err := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: rs.backend}
		row := rs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", quoted))
		if err := row.Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := timeScanner{backend: rs.backend}
		row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quoted))
		if err := row.Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}

		row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(total_subjects), 0) FROM %s", quoted))
		if err := row.Scan(&status.TotalSubjectsScored); err != nil {
			return status, fmt.Errorf("failed to get total subjects scored: %w", err)
		}
	}

	for _, table := range runTables {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns retrieves all runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, kind, student_id, start_time, end_time, run_duration_ms, total_subjects, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		start := timeScanner{backend: rs.backend}
		end := timeScanner{backend: rs.backend}
		if err := rows.Scan(&record.RunID, &record.Kind, &record.StudentID, start.dest(), end.dest(),
			&record.RunDurationMs, &record.TotalSubjects, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllSubjectScores retrieves all subject scores from the store.
func (rs *RunStoreImpl) GetAllSubjectScores() ([]schema.SubjectScoreRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, student_id, subject_code, recorded_at, workload, mismatch, stress,
		burnout_score, alignment, penalty, utility FROM %s ORDER BY run_id, subject_code`,
		quoteTableName(subjectScoresTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query subject scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SubjectScoreRecord
	for rows.Next() {
		var r schema.SubjectScoreRecord
		recorded := timeScanner{backend: rs.backend}
		if err := rows.Scan(&r.RunID, &r.StudentID, &r.SubjectCode, recorded.dest(), &r.Workload, &r.Mismatch,
			&r.Stress, &r.BurnoutScore, &r.Alignment, &r.Penalty, &r.Utility); err != nil {
			return nil, fmt.Errorf("failed to scan subject score: %w", err)
		}
		t, err := recorded.value()
		if err != nil {
			return nil, err
		}
		if t != nil {
			r.RecordedAt = *t
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subject scores: %w", err)
	}
	return results, nil
}

// GetAllRecommendations retrieves all recommendation rows from the store.
func (rs *RunStoreImpl) GetAllRecommendations() ([]schema.RecommendationRecord, error) {
	if rs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, subject_code, rank_pos, list_name, match_score, likelihood, is_core
		FROM %s ORDER BY run_id, list_name DESC, rank_pos`, quoteTableName(recommendationsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RecommendationRecord
	for rows.Next() {
		var r schema.RecommendationRecord
		if err := rows.Scan(&r.RunID, &r.SubjectCode, &r.Rank, &r.Partition, &r.MatchScore, &r.Likelihood, &r.IsCore); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recommendations: %w", err)
	}
	return results, nil
}
