package core

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/courseload/schema"
)

func TestNewEngineDefaults(t *testing.T) {
	catalog, err := NewCatalog(testCatalogData())
	require.NoError(t, err)

	e := NewEngine(catalog, schema.EngineParams{})
	assert.Equal(t, schema.GetDefaultWeights(), e.Params().Burnout.Weights)
	assert.Equal(t, schema.DefaultProficiencyScale, e.Params().Burnout.ProficiencyScale)

	// the engine owns its weights
	params := schema.GetDefaultEngineParams()
	e = NewEngine(catalog, params)
	params.Burnout.Weights[schema.BreakdownWorkload] = 0.9
	assert.Equal(t, 0.4, e.Params().Burnout.Weights[schema.BreakdownWorkload])
}

func TestEngineBurnout(t *testing.T) {
	e := testEngine(t)
	p := testProfile()

	bd, err := e.Burnout(p, "CS5010")
	require.NoError(t, err)
	// recorded grades 88/79 override the averages; the project keeps its 90 average
	assert.InDelta(t, 0.5*0.0144+0.3*0.0441+0.2*0.01, bd.Stress, 1e-9)
	assert.InDelta(t, 1.0/3, bd.Mismatch, 1e-9)
	assert.GreaterOrEqual(t, bd.Probability, 0.0)
	assert.LessOrEqual(t, bd.Probability, 1.0)

	_, err = e.Burnout(p, "CS0000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngineComputeUtility(t *testing.T) {
	e := testEngine(t)
	p := testProfile()

	detail, err := e.ScoreSubject(p, "CS6140")
	require.NoError(t, err)
	assert.InDelta(t, 1.0/3, detail.Alignment, 1e-9)
	assert.Equal(t, 1.0, detail.Penalty)
	assert.InDelta(t, 0.5/3+0.5*(1-detail.Breakdown.Probability)-0.5, detail.Utility, 1e-9)
	assert.InDelta(t, 1.0/6, detail.Breakdown.Mismatch, 1e-9)

	u, err := e.ComputeUtility(p, "cs6140")
	require.NoError(t, err)
	assert.Equal(t, detail.Utility, u)

	_, err = e.ComputeUtility(p, "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEngineComputeBurnoutScores(t *testing.T) {
	e := testEngine(t)
	p := testProfile()

	rows, err := e.ComputeBurnoutScores(p)
	require.NoError(t, err)
	require.Len(t, rows, 3, "completed subjects are excluded")

	byCode := map[string]schema.BurnoutScore{}
	for i, r := range rows {
		byCode[r.SubjectCode] = r
		assert.GreaterOrEqual(t, r.BurnoutScore, 0.0)
		assert.LessOrEqual(t, r.BurnoutScore, 1.0)
		assert.Equal(t, schema.RoundTo(r.BurnoutScore, 3), r.BurnoutScore)
		require.NotNil(t, r.Factors)
		if i > 0 {
			prev := rows[i-1]
			assert.True(t, prev.BurnoutScore < r.BurnoutScore ||
				(prev.BurnoutScore == r.BurnoutScore && prev.SubjectCode < r.SubjectCode))
		}
	}
	assert.NotContains(t, byCode, "CS5010")

	ml := byCode["CS6140"]
	assert.False(t, ml.PrerequisitesSatisfied)
	assert.Equal(t, []string{"CS5800"}, ml.Prerequisites)
	assert.Equal(t, []string{"CS5010"}, byCode["CS5200"].Corequisites)

	detail, err := e.ScoreSubject(p, "CS6140")
	require.NoError(t, err)
	assert.Equal(t, schema.RoundTo(detail.Utility, 3), ml.Utility)

	_, err = e.ComputeBurnoutScores(nil)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestEngineGenerateRecommendations(t *testing.T) {
	e := testEngine(t)
	p := testProfile()

	table, err := e.ScoreTable(p)
	require.NoError(t, err)
	assert.Equal(t, "001", table.StudentID)

	result, err := e.GenerateRecommendations(p, 4, nil, table)
	require.NoError(t, err)

	assert.Contains(t, codesOf(result.Recommended), "CS5200")
	require.Equal(t, []string{"CS5800"}, codesOf(result.Competitive))

	core := result.Competitive[0]
	assert.True(t, core.IsCore)
	assert.InDelta(t, 0.15, core.Likelihood, 1e-9)
	assert.Contains(t, core.Reasons, "📚 This is a core subject requirement")
	require.NotNil(t, core.BurnoutScore)
	require.NotNil(t, core.UtilityScore)

	for _, s := range result.Recommended {
		assert.GreaterOrEqual(t, s.Likelihood, e.Params().Thresholds.Competitive, "%s", s.SubjectCode)
	}
	for _, s := range append(result.Recommended, result.Competitive...) {
		assert.NotEqual(t, "CS5010", s.SubjectCode)
		if !s.IsCore {
			assert.Greater(t, s.MatchScore, e.Params().Thresholds.Match)
		}
	}
}

func TestEngineGenerateRecommendationsWithoutTable(t *testing.T) {
	e := testEngine(t)
	p := testProfile()

	result, err := e.GenerateRecommendations(p, 4, []string{"Machine Learning"}, nil)
	require.NoError(t, err)

	var ml *schema.ScoredSubject
	for i := range result.Recommended {
		if result.Recommended[i].SubjectCode == "CS6140" {
			ml = &result.Recommended[i]
		}
	}
	require.NotNil(t, ml, "extra interests pull CS6140 in")
	assert.Nil(t, ml.BurnoutScore)
	assert.Nil(t, ml.UtilityScore)
	assert.InDelta(t, 0.7, ml.MatchScore, 1e-9)
	assert.Contains(t, ml.Reasons, "Course title matches your interest in machine learning")
	assert.Contains(t, ml.Reasons, "⚠️ Prerequisites not completed")
	assert.False(t, ml.PrerequisitesSatisfied)
}

func TestEngineGenerateRecommendationsSemester(t *testing.T) {
	e := testEngine(t)
	p := testProfile()

	for _, semester := range []int{0, -3} {
		result, err := e.GenerateRecommendations(p, semester, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Recommended)
		assert.NotEmpty(t, result.Competitive)
		for _, s := range result.Competitive {
			assert.Zero(t, s.Likelihood)
		}
	}

	_, err := e.GenerateRecommendations(nil, 1, nil, nil)
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestEngineRecommend(t *testing.T) {
	e := testEngine(t)
	p := testProfile()

	direct, err := e.Recommend(p, 4, nil)
	require.NoError(t, err)
	table, err := e.ScoreTable(p)
	require.NoError(t, err)
	viaTable, err := e.GenerateRecommendations(p, 4, nil, table)
	require.NoError(t, err)
	assert.Equal(t, codesOf(viaTable.Recommended), codesOf(direct.Recommended))
	assert.Equal(t, codesOf(viaTable.Competitive), codesOf(direct.Competitive))
}

func TestEngineBuildSchedule(t *testing.T) {
	e := testEngine(t)
	table, err := e.ScoreTable(testProfile())
	require.NoError(t, err)
	util := table.ByCode()["CS5200"].Utility

	sched := e.BuildSchedule([]string{" cs5200", "CS9999", "CS5200"}, table)
	require.Len(t, sched.Entries, 2)
	assert.Equal(t, "Subject 1", sched.Entries[0].Slot)
	assert.Equal(t, "CS5200: Database Management Systems (Utility: "+schema.FormatUtility(util)+")", sched.Entries[0].Descriptor)
	assert.Equal(t, "CS9999: Unknown course (Utility: )", sched.Entries[1].Descriptor)

	long := e.BuildSchedule([]string{"A", "B", "C", "D", "E", "F", "G"}, nil)
	assert.Len(t, long.Entries, schema.ScheduleSize)
}

func TestComputeBurnoutScoresBatch(t *testing.T) {
	e := testEngine(t)
	other := testProfile()
	other.ID = "002"
	other.Completed = nil

	results := e.ComputeBurnoutScoresBatch(context.Background(), []*schema.StudentProfile{testProfile(), nil, other}, 2)
	require.Len(t, results, 3)

	assert.Equal(t, "001", results[0].StudentID)
	require.NoError(t, results[0].Err)
	assert.Len(t, results[0].Rows, 3)

	assert.ErrorIs(t, results[1].Err, ErrStudentNotFound)

	assert.Equal(t, "002", results[2].StudentID)
	require.NoError(t, results[2].Err)
	assert.Len(t, results[2].Rows, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range e.ComputeBurnoutScoresBatch(ctx, []*schema.StudentProfile{testProfile(), other}, 0) {
		assert.True(t, errors.Is(r.Err, context.Canceled))
	}

	assert.Empty(t, e.ComputeBurnoutScoresBatch(context.Background(), nil, 4))
}

func TestBurnoutScoresAreFinite(t *testing.T) {
	data := testCatalogData()
	nan, inf := math.NaN(), math.Inf(1)
	data.Subjects[1].HoursPerWeek = &nan
	data.Subjects[1].ExamWeight = nil
	for i := range data.Subjects {
		if i != 1 {
			data.Subjects[i].HoursPerWeek = &inf
			data.Subjects[i].AvgExamGrade = schema.Float(math.Inf(-1))
		}
	}
	catalog, err := NewCatalog(data)
	require.NoError(t, err)

	table, err := NewEngine(catalog, schema.GetDefaultEngineParams()).ScoreTable(testProfile())
	require.NoError(t, err)
	require.NotEmpty(t, table.Rows)
	for _, r := range table.Rows {
		assert.False(t, math.IsNaN(r.BurnoutScore), r.SubjectCode)
		assert.False(t, math.IsNaN(r.Utility), r.SubjectCode)
		require.NotNil(t, r.Factors)
		for _, v := range []float64{r.Factors.Workload, r.Factors.Mismatch, r.Factors.Stress, r.Factors.Combined, r.Factors.Probability} {
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), r.SubjectCode)
		}
	}
	_, err = json.Marshal(table)
	require.NoError(t, err, "the table stays encodable")
}
