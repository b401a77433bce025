package core

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/internal/iocache"
	"github.com/huangsam/courseload/schema"
)

// newTestStores opens in-memory SQLite table and run stores.
func newTestStores(t *testing.T) (contract.ScoreTableStore, contract.RunStore) {
	t.Helper()
	tables, err := iocache.NewScoreTableStore("courseload_score_tables", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	runs, err := iocache.NewRunStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = tables.Close()
		_ = runs.Close()
	})
	return tables, runs
}

func newTestService(t *testing.T, profiles memProfiles, persist bool) *Service {
	t.Helper()
	var mgr contract.StoreManager
	if persist {
		mgr = iocache.NewStoreManager(newTestStores(t))
	}
	return NewService(testEngine(t), profiles, mgr)
}

func TestServiceProfile(t *testing.T) {
	raw := testRawProfile()
	raw.ID = ""
	svc := newTestService(t, memProfiles{"001": raw}, false)
	ctx := context.Background()

	p, err := svc.Profile(ctx, " 001 ")
	require.NoError(t, err)
	assert.Equal(t, "001", p.ID, "a blank profile id falls back to the requested one")

	_, err = svc.Profile(ctx, "404")
	assert.ErrorIs(t, err, ErrStudentNotFound)

	_, err = svc.Profile(ctx, "  ")
	assert.ErrorIs(t, err, ErrStudentNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Profile(cancelled, "001")
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrStudentNotFound)
}

func TestServiceBurnoutScores(t *testing.T) {
	svc := newTestService(t, memProfiles{"001": testRawProfile()}, true)

	table, err := svc.BurnoutScores(context.Background(), "001")
	require.NoError(t, err)
	assert.Equal(t, "001", table.StudentID)
	require.Len(t, table.Rows, 3)

	stored := checkTableHit(svc.Tables, "001", 0)
	require.NotNil(t, stored)
	assert.Equal(t, table.Rows, stored.Rows)

	runs, err := svc.Runs.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, string(schema.ScoresRun), runs[0].Kind)
	assert.Equal(t, "001", runs[0].StudentID)
	assert.Equal(t, int32(3), runs[0].TotalSubjects)
	require.NotNil(t, runs[0].EndTime)

	scores, err := svc.Runs.GetAllSubjectScores()
	require.NoError(t, err)
	assert.Len(t, scores, 3)
}

func TestServiceBurnoutScoresWithoutStores(t *testing.T) {
	svc := newTestService(t, memProfiles{"001": testRawProfile()}, false)
	table, err := svc.BurnoutScores(context.Background(), "001")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 3)

	_, err = svc.BurnoutScores(context.Background(), "002")
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestServiceStoredTable(t *testing.T) {
	svc := newTestService(t, memProfiles{"001": testRawProfile()}, true)
	p, err := svc.Profile(context.Background(), "001")
	require.NoError(t, err)
	assert.Nil(t, svc.StoredTable(p), "nothing is computed on a miss")

	planted := &schema.ScoreTable{
		StudentID:   "001",
		GeneratedAt: time.Now().UTC(),
		Rows:        []schema.BurnoutScore{{SubjectCode: "CS5200", BurnoutScore: 0.123, Utility: 0.9}},
	}
	require.NoError(t, saveTable(svc.Tables, planted))
	got := svc.StoredTable(p)
	require.NotNil(t, got)
	assert.Equal(t, planted.Rows, got.Rows)

	// an expired entry counts as a miss and is left alone
	planted.GeneratedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, saveTable(svc.Tables, planted))
	svc.TableTTL = time.Hour
	assert.Nil(t, svc.StoredTable(p))
	assert.Len(t, checkTableHit(svc.Tables, "001", 0).Rows, 1)
}

func TestServiceRecommendationsUtilityNeedsStoredTable(t *testing.T) {
	svc := newTestService(t, memProfiles{"001": testRawProfile()}, true)
	ctx := context.Background()

	result, err := svc.Recommendations(ctx, "001", 4, nil)
	require.NoError(t, err)
	require.NotZero(t, result.Len())
	for _, list := range [][]schema.ScoredSubject{result.Recommended, result.Competitive} {
		for _, subj := range list {
			assert.Nil(t, subj.UtilityScore, subj.SubjectCode)
			assert.Nil(t, subj.BurnoutScore, subj.SubjectCode)
		}
	}
	assert.Nil(t, checkTableHit(svc.Tables, "001", 0), "recommending does not write a table")

	_, err = svc.BurnoutScores(ctx, "001")
	require.NoError(t, err)
	result, err = svc.Recommendations(ctx, "001", 4, nil)
	require.NoError(t, err)
	require.NotZero(t, result.Len())
	for _, list := range [][]schema.ScoredSubject{result.Recommended, result.Competitive} {
		for _, subj := range list {
			assert.NotNil(t, subj.UtilityScore, subj.SubjectCode)
		}
	}
}

func TestServiceRecommendations(t *testing.T) {
	svc := newTestService(t, memProfiles{"001": testRawProfile()}, true)

	result, err := svc.Recommendations(context.Background(), "001", 4, nil)
	require.NoError(t, err)
	assert.Contains(t, codesOf(result.Recommended), "CS5200")
	assert.Equal(t, []string{"CS5800"}, codesOf(result.Competitive))

	records, err := svc.Runs.GetAllRecommendations()
	require.NoError(t, err)
	require.Len(t, records, result.Len())
	ranks := map[string]int32{}
	for _, r := range records {
		ranks[r.Partition]++
		assert.Equal(t, ranks[r.Partition], r.Rank)
	}
	assert.Equal(t, int32(1), ranks[string(schema.CompetitivePartition)])

	_, err = svc.Recommendations(context.Background(), "404", 4, nil)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestServiceRunSessionAndSchedule(t *testing.T) {
	svc := newTestService(t, memProfiles{"001": testRawProfile()}, true)
	ctx := context.Background()

	sess, err := svc.RunSession(ctx, "001", 4, 2, [][]string{nil, {"machine learning"}})
	require.NoError(t, err)
	require.Len(t, sess.Rounds(), 2)
	assert.Equal(t, []string{"data", "machine learning"}, sess.Rounds()[1].Interests)
	assert.ElementsMatch(t, []string{"CS5200", "CS5800", "CS6140"}, sess.History())

	assert.Equal(t, sess.History(), loadHistory(svc.Tables, "001"))

	// empty codes fall back to the stored session history
	sched, err := svc.Schedule(ctx, "001", nil)
	require.NoError(t, err)
	assert.Equal(t, sess.Schedule(), sched)

	sched, err = svc.Schedule(ctx, "001", []string{"cs5800"})
	require.NoError(t, err)
	require.Len(t, sched.Entries, 1)
	assert.Equal(t, "Algorithms", sched.Entries[0].Name)

	runs, err := svc.Runs.GetAllRuns()
	require.NoError(t, err)
	var kinds []string
	for _, r := range runs {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []string{string(schema.SessionRun), string(schema.ScheduleRun), string(schema.ScheduleRun)}, kinds)
}

func TestServiceRunSessionCancelled(t *testing.T) {
	svc := newTestService(t, memProfiles{"001": testRawProfile()}, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.RunSession(ctx, "001", 4, 3, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

// cancelAfterCtx reports cancellation once Err has been called n times.
type cancelAfterCtx struct {
	context.Context
	n int
}

func (c *cancelAfterCtx) Err() error {
	if c.n <= 0 {
		return context.Canceled
	}
	c.n--
	return nil
}

func TestServiceRunSessionFailureClosesRun(t *testing.T) {
	svc := newTestService(t, memProfiles{"001": testRawProfile()}, true)

	// one check for the profile load, one for the first round
	ctx := &cancelAfterCtx{Context: context.Background(), n: 2}
	_, err := svc.RunSession(ctx, "001", 4, 3, nil)
	require.ErrorIs(t, err, context.Canceled)

	runs, err := svc.Runs.GetAllRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, string(schema.SessionRun), runs[0].Kind)
	assert.NotNil(t, runs[0].EndTime, "a failed session still ends its run")
	assert.Equal(t, int32(0), runs[0].TotalSubjects)
	assert.Nil(t, loadHistory(svc.Tables, "001"))
}

func TestServiceUtility(t *testing.T) {
	svc := newTestService(t, memProfiles{"001": testRawProfile()}, false)

	detail, err := svc.Utility(context.Background(), "001", "CS6140")
	require.NoError(t, err)
	assert.Equal(t, 1.0, detail.Penalty)

	_, err = svc.Utility(context.Background(), "001", "CS0000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceScoreAll(t *testing.T) {
	broken := testRawProfile()
	broken.ID = "002"
	broken.Completed = 42
	other := testRawProfile()
	other.ID = "003"
	other.Completed = nil
	other.CompletedDetails = nil

	svc := newTestService(t, memProfiles{"001": testRawProfile(), "002": broken, "003": other}, true)
	svc.Strict = true

	results, err := svc.ScoreAll(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "001", results[0].StudentID)
	assert.NoError(t, results[0].Err)
	assert.Len(t, results[0].Rows, 3)

	assert.Equal(t, "002", results[1].StudentID)
	assert.ErrorIs(t, results[1].Err, ErrMalformedInput)

	assert.Equal(t, "003", results[2].StudentID)
	assert.Len(t, results[2].Rows, 4)

	assert.NotNil(t, checkTableHit(svc.Tables, "001", 0))
	assert.Nil(t, checkTableHit(svc.Tables, "002", 0))
	assert.NotNil(t, checkTableHit(svc.Tables, "003", 0))
}

func TestServiceStoreFailuresOnlyWarn(t *testing.T) {
	tables := &iocache.MockScoreTableStore{}
	tables.On("Get", mock.Anything).Return(nil, 0, int64(0), errors.New("unavailable"))
	tables.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	runs := &iocache.MockRunStore{}
	runs.On("BeginRun", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(int64(0), errors.New("no db"))

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetTableStore").Return(tables)
	mgr.On("GetRunStore").Return(runs)

	svc := NewService(testEngine(t), memProfiles{"001": testRawProfile()}, mgr)
	table, err := svc.BurnoutScores(context.Background(), "001")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 3)

	_, err = svc.Recommendations(context.Background(), "001", 2, nil)
	require.NoError(t, err)

	tables.AssertCalled(t, "Set", "scores:001", mock.Anything, currentTableVersion, mock.Anything)
	runs.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
	mgr.AssertExpectations(t)
}

func TestCheckTableHitMisses(t *testing.T) {
	tables, _ := newTestStores(t)
	assert.Nil(t, checkTableHit(nil, "001", 0))
	assert.Nil(t, checkTableHit(tables, "001", 0))

	require.NoError(t, tables.Set(tableKey("001"), []byte(`{"nuid":"001"}`), currentTableVersion+1, time.Now().Unix()))
	assert.Nil(t, checkTableHit(tables, "001", 0), "version mismatch")

	require.NoError(t, tables.Set(tableKey("001"), []byte(`not json`), currentTableVersion, time.Now().Unix()))
	assert.Nil(t, checkTableHit(tables, "001", 0))

	assert.Nil(t, loadHistory(tables, "001"))
	require.NoError(t, saveHistory(tables, "001", []string{"CS5200", "CS5800"}))
	assert.Equal(t, []string{"CS5200", "CS5800"}, loadHistory(tables, "001"))
	assert.NoError(t, saveHistory(nil, "001", nil))
	assert.NoError(t, saveTable(nil, &schema.ScoreTable{}))
}

func TestExecuteScoresWritesJSON(t *testing.T) {
	cfg := writeTestData(t, testCatalogYAML)
	require.NoError(t, ExecuteScores(context.Background(), cfg, nil, "001"))

	var out struct {
		StudentID string                `json:"nuid"`
		Scores    []schema.BurnoutScore `json:"scores"`
	}
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "001", out.StudentID)
	assert.Len(t, out.Scores, 2)

	assert.ErrorIs(t, ExecuteScores(context.Background(), cfg, nil, "404"), ErrStudentNotFound)
}

func TestExecuteRecommendUsesProfileSemester(t *testing.T) {
	cfg := writeTestData(t, testCatalogYAML)
	require.NoError(t, ExecuteRecommend(context.Background(), cfg, nil, "001"))

	var out schema.RecommendationResult
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out))

	// semester 2 halves the likelihood: CS5200 keeps 0.25, under the competitive threshold
	assert.Empty(t, out.Recommended)
	assert.Equal(t, []string{"CS5800", "CS5200"}, codesOf(out.Competitive))

	cfg.Semester = 4
	require.NoError(t, ExecuteRecommend(context.Background(), cfg, nil, "001"))
	data, err = os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	out = schema.RecommendationResult{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, []string{"CS5200"}, codesOf(out.Recommended))
}

func TestExecuteSessionScheduleAndMetrics(t *testing.T) {
	ctx := context.Background()
	cfg := writeTestData(t, testCatalogYAML)
	cfg.Interests = []string{"algorithms"}
	cfg.RoundExtras = [][]string{{"sql"}}

	require.NoError(t, ExecuteSession(ctx, cfg, nil, "001"))
	assert.FileExists(t, cfg.OutputFile)

	require.NoError(t, ExecuteSchedule(ctx, cfg, nil, "001", []string{"CS5200"}))
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "CS5200: Database Management Systems (Utility: ")

	require.NoError(t, ExecuteMetrics(cfg))
	data, err = os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "workload")
}

func TestExecuteBatchScores(t *testing.T) {
	cfg := writeTestData(t, testCatalogYAML)
	require.NoError(t, ExecuteBatchScores(context.Background(), cfg, nil))

	var rows []map[string]any
	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "001", rows[0]["nuid"])
}

func TestExecuteMissingCatalog(t *testing.T) {
	cfg := writeTestData(t, testCatalogYAML)
	cfg.CatalogPath = cfg.CatalogPath + "/missing"
	assert.Error(t, ExecuteScores(context.Background(), cfg, nil, "001"))
}
