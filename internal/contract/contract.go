// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/courseload/schema"
)

// ProfileSource loads raw student profiles.
// This allows the scoring logic to be tested without profile files on disk.
type ProfileSource interface {
	// LoadProfile returns the raw profile for a student id. A missing profile
	// returns an error wrapping fs.ErrNotExist.
	LoadProfile(ctx context.Context, id string) (schema.RawProfile, error)

	// ListProfiles returns the ids of every available profile.
	ListProfiles(ctx context.Context) ([]string, error)
}

// StoreManager defines the interface for managing the persistent stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetTableStore() ScoreTableStore
	GetRunStore() RunStore
}

// ScoreTableStore defines the interface for score table storage.
// Values are opaque blobs stamped with a format version and a unix timestamp.
type ScoreTableStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Delete(key string) error
	GetStatus() (schema.TableStoreStatus, error)
	Close() error
}

// RunStore defines the interface for tracking runs and the scores they produced.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(kind schema.RunKind, studentID string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data
	EndRun(runID int64, endTime time.Time, totalSubjects int) error

	// RecordSubjectScores stores the per-subject scores of a run
	RecordSubjectScores(runID int64, records []schema.SubjectScoreRecord) error

	// RecordRecommendations stores the ranked output of a run
	RecordRecommendations(runID int64, records []schema.RecommendationRecord) error

	// GetAllRuns returns every recorded run ordered by ID
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllSubjectScores returns every recorded subject score ordered by run and code
	GetAllSubjectScores() ([]schema.SubjectScoreRecord, error)

	// GetAllRecommendations returns every recorded recommendation ordered by run and rank
	GetAllRecommendations() ([]schema.RecommendationRecord, error)

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStoreStatus, error)

	// Close closes the underlying connection
	Close() error
}
