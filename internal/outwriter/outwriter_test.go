package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

func sampleTable() *schema.ScoreTable {
	return &schema.ScoreTable{
		StudentID:   "001",
		GeneratedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Rows: []schema.BurnoutScore{
			{
				SubjectCode:            "CS5200",
				SubjectName:            "Database Management Systems",
				BurnoutScore:           0.35,
				Prerequisites:          []string{},
				PrerequisitesSatisfied: true,
				Corequisites:           []string{"CS5201"},
				Utility:                0.61,
				Factors:                &schema.BurnoutBreakdown{Workload: 1.2, Mismatch: 0.4, Stress: 0.1, Combined: 0.63, Probability: 0.35},
			},
			{
				SubjectCode:            "CS6140",
				SubjectName:            "Machine Learning",
				BurnoutScore:           0.91,
				Prerequisites:          []string{"CS5800", "CS5200"},
				PrerequisitesSatisfied: false,
				Utility:                -0.2,
			},
		},
	}
}

func sampleResult() schema.RecommendationResult {
	return schema.RecommendationResult{
		Recommended: []schema.ScoredSubject{
			{
				SubjectCode:  "CS5200",
				Name:         "Database Management Systems",
				MatchScore:   0.9,
				Likelihood:   0.8,
				Seats:        100,
				Enrollments:  50,
				BurnoutScore: schema.Float(0.35),
				UtilityScore: schema.Float(0.61),
				Reasons:      []string{"Matches your interest in data"},
				IsCore:       true,
			},
		},
		Competitive: []schema.ScoredSubject{
			{
				SubjectCode: "CS6140",
				Name:        "Machine Learning",
				MatchScore:  0.5,
				Likelihood:  0.1,
				Seats:       40,
				Enrollments: 40,
				Reasons:     []string{},
			},
		},
	}
}

func sampleSchedule() schema.Schedule {
	return schema.Schedule{Entries: []schema.ScheduleEntry{
		{Slot: "Subject 1", SubjectCode: "CS5200", Name: "Database Management Systems", Utility: "0.61", Descriptor: "CS5200: Database Management Systems (Utility: 0.61)"},
		{Slot: "Subject 2", SubjectCode: "CS6140", Name: "Machine Learning", Utility: "-0.2", Descriptor: "CS6140: Machine Learning (Utility: -0.2)"},
	}}
}

func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{
		Output:       output,
		Precision:    2,
		ResultLimit:  10,
		Width:        120,
		TableBackend: schema.SQLiteBackend,
	}
}

func TestWriteBurnoutJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBurnoutJSON(&buf, sampleTable()))

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "001", result["nuid"])
	scores := result["scores"].([]any)
	require.Len(t, scores, 2)
	first := scores[0].(map[string]any)
	assert.Equal(t, float64(1), first["rank"])
	assert.Equal(t, "Low", first["label"])
	assert.Equal(t, "CS5200", first["subject_code"])
	second := scores[1].(map[string]any)
	assert.Equal(t, "High", second["label"])
}

func TestWriteBurnoutCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(2)

	t.Run("basic", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeBurnoutCSV(&buf, sampleTable().Rows, false, fmtFloat))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "subject_code", records[0][1])
		assert.Equal(t, []string{"2", "CS6140", "Machine Learning", "0.91", "High", "-0.20", "false", "CS5800|CS5200"}, records[2])
	})

	t.Run("detail adds factors", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeBurnoutCSV(&buf, sampleTable().Rows, true, fmtFloat))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records[0], 13)
		assert.Equal(t, "1.20", records[1][8])
		assert.Equal(t, "", records[2][8])
		assert.Equal(t, "CS5201", records[1][12])
	})
}

func TestWriteBurnoutTable(t *testing.T) {
	fmtFloat, _ := createFormatters(3)
	cfg := testConfig(schema.TextOut)
	cfg.Detail = true

	var buf bytes.Buffer
	require.NoError(t, writeBurnoutTable(&buf, sampleTable(), cfg, fmtFloat, time.Second))

	out := buf.String()
	assert.Contains(t, out, "CS5200")
	assert.Contains(t, out, "0.350")
	assert.Contains(t, out, "missing")
	assert.Contains(t, out, "Showing 2 of 2 subjects for student 001")
	assert.Contains(t, out, "Table backend: sqlite")
}

func TestWriteBurnoutTableRespectsLimit(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	cfg := testConfig(schema.TextOut)
	cfg.ResultLimit = 1

	var buf bytes.Buffer
	require.NoError(t, writeBurnoutTable(&buf, sampleTable(), cfg, fmtFloat, time.Second))
	assert.Contains(t, buf.String(), "Showing 1 of 2 subjects")
	assert.NotContains(t, buf.String(), "CS6140")
}

func TestConvertBurnoutScores(t *testing.T) {
	rows := ConvertBurnoutScores(sampleTable().Rows)
	require.Len(t, rows, 2)
	assert.Equal(t, int32(1), rows[0].Rank)
	assert.Equal(t, "Low", rows[0].Label)
	assert.Equal(t, "CS5800|CS5200", rows[1].Prerequisites)
}

func TestWriteRecommendationsJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRecommendationsJSON(&buf, "001", sampleResult()))

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "001", result["nuid"])

	rec := result["recommended_courses"].([]any)
	require.Len(t, rec, 1)
	first := rec[0].(map[string]any)
	assert.Equal(t, "Low", first["burnout_label"])
	assert.Equal(t, "Good", first["enrollment_label"])
	assert.Equal(t, true, first["is_core"])

	comp := result["highly_competitive_courses"].([]any)
	require.Len(t, comp, 1)
	second := comp[0].(map[string]any)
	assert.Nil(t, second["burnout_score"])
	assert.Equal(t, "N/A", second["burnout_label"])
	assert.Equal(t, "Full", second["enrollment_label"])
}

func TestWriteRecommendationsCSV(t *testing.T) {
	fmtFloat, fmtOptional := createFormatters(2)
	var buf bytes.Buffer
	require.NoError(t, writeRecommendationsCSV(&buf, sampleResult(), fmtFloat, fmtOptional))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "recommended", records[1][0])
	assert.Equal(t, "competitive", records[2][0])
	assert.Equal(t, "-", records[2][6])
	assert.Equal(t, "Matches your interest in data", records[1][11])
}

func TestWriteRecommendationsText(t *testing.T) {
	fmtFloat, fmtOptional := createFormatters(2)
	cfg := testConfig(schema.TextOut)
	cfg.Detail = true

	var buf bytes.Buffer
	err := writeRecommendationsText(&buf, "001", sampleResult(), cfg, fmtFloat, fmtOptional, time.Second)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Recommendations for student 001")
	assert.Contains(t, out, "Recommended Courses")
	assert.Contains(t, out, "Highly Competitive Courses")
	assert.Contains(t, out, "CS6140")
	assert.Contains(t, out, "Ranked 2 subjects")
}

func TestWriteCandidateTableEmpty(t *testing.T) {
	fmtFloat, fmtOptional := createFormatters(2)
	var buf bytes.Buffer
	list := recommendationList{partition: schema.CompetitivePartition, title: "Competitive"}
	require.NoError(t, writeCandidateTable(&buf, list, testConfig(schema.TextOut), fmtFloat, fmtOptional))
	assert.Equal(t, "Competitive\n  (none)\n\n", buf.String())
}

func TestConvertRecommendations(t *testing.T) {
	rows := ConvertRecommendations(sampleResult())
	require.Len(t, rows, 2)
	assert.Equal(t, "recommended", rows[0].Partition)
	assert.Equal(t, "competitive", rows[1].Partition)
	assert.Equal(t, int32(1), rows[1].Rank)
	assert.Nil(t, rows[1].BurnoutScore)
}

func TestWriteScheduleText(t *testing.T) {
	t.Run("entries", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeScheduleText(&buf, "001", sampleSchedule()))
		assert.Contains(t, buf.String(), "Subject 1: CS5200: Database Management Systems (Utility: 0.61)")
		assert.Contains(t, buf.String(), "Subject 2: CS6140: Machine Learning (Utility: -0.2)")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeScheduleText(&buf, "001", schema.Schedule{}))
		assert.Contains(t, buf.String(), "No subjects selected yet")
	})
}

func TestWriteScheduleCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeScheduleCSV(&buf, sampleSchedule()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Subject 1", "CS5200", "Database Management Systems", "0.61", "CS5200: Database Management Systems (Utility: 0.61)"}, records[1])
}

func TestPrintScheduleJSONToFile(t *testing.T) {
	cfg := testConfig(schema.JSONOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "schedule.json")

	require.NoError(t, PrintSchedule("001", sampleSchedule(), cfg))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"schedule": {`)
	assert.Less(t, strings.Index(string(data), "Subject 1"), strings.Index(string(data), "Subject 2"))
}

func TestPrintSessionFormats(t *testing.T) {
	rounds := []schema.RoundResult{
		{Round: 1, Interests: []string{"data"}, Recommended: sampleResult().Recommended, Competitive: sampleResult().Competitive},
		{Round: 2, Interests: []string{"data", "web"}},
	}

	t.Run("text", func(t *testing.T) {
		cfg := testConfig(schema.TextOut)
		cfg.OutputFile = filepath.Join(t.TempDir(), "session.txt")
		require.NoError(t, PrintSession("001", rounds, sampleSchedule(), cfg, time.Second))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		out := string(data)
		assert.Contains(t, out, "Round 1 (interests: data)")
		assert.Contains(t, out, "No new subjects this round")
		assert.Contains(t, out, "Final Schedule")
		assert.Contains(t, out, "Session of 2 rounds")
	})

	t.Run("csv", func(t *testing.T) {
		fmtFloat, _ := createFormatters(2)
		var buf bytes.Buffer
		require.NoError(t, writeSessionCSV(&buf, rounds, fmtFloat))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "1", records[1][0])
		assert.Equal(t, "competitive", records[2][1])
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := testConfig(schema.ParquetOut)
		cfg.OutputFile = filepath.Join(t.TempDir(), "session.parquet")
		require.NoError(t, PrintSession("001", rounds, sampleSchedule(), cfg, time.Second))

		info, err := os.Stat(cfg.OutputFile)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})
}

func TestPrintBurnoutScoresParquet(t *testing.T) {
	cfg := testConfig(schema.ParquetOut)
	cfg.OutputFile = filepath.Join(t.TempDir(), "scores.parquet")
	require.NoError(t, PrintBurnoutScores(sampleTable(), cfg, time.Second))

	info, err := os.Stat(cfg.OutputFile)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteParquetRequiresFile(t *testing.T) {
	err := writeParquet(ConvertRecommendations(sampleResult()), "")
	assert.Error(t, err)
}

func TestMetricsRenderModel(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		m := buildMetricsRenderModel(schema.GetDefaultEngineParams())
		require.Len(t, m.Formulas, 6)
		assert.Equal(t, 0.4, m.Parameters["w1"])
		assert.Equal(t, schema.DefaultProficiencyScale, m.Parameters["proficiency_scale"])
		assert.Contains(t, m.Formulas[3].Formula, "Z = 0.40*W' + 0.30*M' + 0.30*S'")
		assert.Len(t, m.Notes, 3, "default scale is below the intake maximum")
	})

	t.Run("custom params", func(t *testing.T) {
		params := schema.GetDefaultEngineParams()
		params.Burnout.ProficiencyScale = 5
		params.Utility.Alpha = 0.7
		m := buildMetricsRenderModel(params)
		assert.Contains(t, m.Formulas[4].Formula, "U = 0.70*OAS")
		assert.Len(t, m.Notes, 2)
	})
}

func TestPrintMetricsDefinitions(t *testing.T) {
	params := schema.GetDefaultEngineParams()

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeMetricsText(&buf, buildMetricsRenderModel(params)))
		assert.Contains(t, buf.String(), "Courseload Scoring Model")
		assert.Contains(t, buf.String(), "proficiency_scale")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeMetricsCSV(&buf, buildMetricsRenderModel(params)))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, 7)
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		cfg := testConfig(schema.ParquetOut)
		cfg.OutputFile = filepath.Join(t.TempDir(), "metrics.parquet")
		assert.Error(t, PrintMetricsDefinitions(params, cfg))
	})
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		fixed    int
		expected int
	}{
		{"narrow terminal", 80, 60, 15},
		{"medium terminal", 120, 60, 40},
		{"wide terminal", 300, 60, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.expected, getMaxTableNameWidth(cfg, tt.fixed))
		})
	}
}

func TestCreateFormatters(t *testing.T) {
	fmtFloat, fmtOptional := createFormatters(3)
	assert.Equal(t, "0.123", fmtFloat(0.12345))
	assert.Equal(t, "-", fmtOptional(nil))
	assert.Equal(t, "1.500", fmtOptional(schema.Float(1.5)))
}

func TestSummarizeBatch(t *testing.T) {
	results := []BatchSummary{
		{StudentID: "001", Rows: sampleTable().Rows},
		{StudentID: "002", Err: assert.AnError},
	}
	rows := summarizeBatch(results)
	require.Len(t, rows, 2)

	assert.Equal(t, int32(2), rows[0].Subjects)
	assert.Equal(t, "CS5200", rows[0].LowestCode)
	assert.Equal(t, "CS6140", rows[0].HighestCode)
	assert.Equal(t, int32(1), rows[0].HighRisk)
	assert.Empty(t, rows[0].Error)

	assert.Equal(t, int32(0), rows[1].Subjects)
	assert.Equal(t, assert.AnError.Error(), rows[1].Error)
}

func TestWriteBatchOutputs(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	rows := summarizeBatch([]BatchSummary{
		{StudentID: "001", Rows: sampleTable().Rows},
		{StudentID: "002", Err: assert.AnError},
	})

	t.Run("table", func(t *testing.T) {
		cfg := testConfig(schema.TextOut)
		cfg.Workers = 4
		var buf bytes.Buffer
		require.NoError(t, writeBatchTable(&buf, rows, cfg, fmtFloat, time.Second))
		assert.Contains(t, buf.String(), "Scored 1 students (1 failed)")
		assert.Contains(t, buf.String(), "0.91 CS6140")
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeBatchCSV(&buf, rows, fmtFloat))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"001", "2", "CS5200", "0.35", "CS6140", "0.91", "1", ""}, records[1])
	})
}
