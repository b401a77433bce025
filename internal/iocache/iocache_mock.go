package iocache

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetTableStore implements the StoreManager interface.
func (m *MockStoreManager) GetTableStore() contract.ScoreTableStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ScoreTableStore)
	return store
}

// GetRunStore implements the StoreManager interface.
func (m *MockStoreManager) GetRunStore() contract.RunStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.RunStore)
	return store
}

// MockScoreTableStore is a mock implementation of ScoreTableStore for testing.
type MockScoreTableStore struct {
	mock.Mock
}

var _ contract.ScoreTableStore = &MockScoreTableStore{} // Compile-time check

// Get implements the ScoreTableStore interface.
func (m *MockScoreTableStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the ScoreTableStore interface.
func (m *MockScoreTableStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Delete implements the ScoreTableStore interface.
func (m *MockScoreTableStore) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// GetStatus implements the ScoreTableStore interface.
func (m *MockScoreTableStore) GetStatus() (schema.TableStoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.TableStoreStatus), args.Error(1)
}

// Close implements the ScoreTableStore interface.
func (m *MockScoreTableStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockRunStore is a mock implementation of RunStore for testing.
type MockRunStore struct {
	mock.Mock
}

var _ contract.RunStore = &MockRunStore{} // Compile-time check

// BeginRun implements the RunStore interface.
func (m *MockRunStore) BeginRun(kind schema.RunKind, studentID string, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(kind, studentID, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the RunStore interface.
func (m *MockRunStore) EndRun(runID int64, endTime time.Time, totalSubjects int) error {
	args := m.Called(runID, endTime, totalSubjects)
	return args.Error(0)
}

// RecordSubjectScores implements the RunStore interface.
func (m *MockRunStore) RecordSubjectScores(runID int64, records []schema.SubjectScoreRecord) error {
	args := m.Called(runID, records)
	return args.Error(0)
}

// RecordRecommendations implements the RunStore interface.
func (m *MockRunStore) RecordRecommendations(runID int64, records []schema.RecommendationRecord) error {
	args := m.Called(runID, records)
	return args.Error(0)
}

// GetAllRuns implements the RunStore interface.
func (m *MockRunStore) GetAllRuns() ([]schema.RunRecord, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]schema.RunRecord)
	return rows, args.Error(1)
}

// GetAllSubjectScores implements the RunStore interface.
func (m *MockRunStore) GetAllSubjectScores() ([]schema.SubjectScoreRecord, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]schema.SubjectScoreRecord)
	return rows, args.Error(1)
}

// GetAllRecommendations implements the RunStore interface.
func (m *MockRunStore) GetAllRecommendations() ([]schema.RecommendationRecord, error) {
	args := m.Called()
	rows, _ := args.Get(0).([]schema.RecommendationRecord)
	return rows, args.Error(1)
}

// GetStatus implements the RunStore interface.
func (m *MockRunStore) GetStatus() (schema.RunStoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.RunStoreStatus), args.Error(1)
}

// Close implements the RunStore interface.
func (m *MockRunStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
