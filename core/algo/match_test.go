package algo

import (
	"testing"

	"github.com/huangsam/courseload/schema"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeInterests(t *testing.T) {
	tests := []struct {
		name     string
		base     []string
		extra    []string
		expected []string
	}{
		{"defaults when empty", nil, nil, schema.DefaultInterests},
		{"defaults when blank", []string{" ", ""}, []string{""}, schema.DefaultInterests},
		{"lowercase trim dedupe", []string{" AI ", "Web", "ai", ""}, []string{"Data"}, []string{"ai", "web", "data"}},
		{"extra only", nil, []string{"Security"}, []string{"security"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeInterests(tt.base, tt.extra))
		})
	}
}

func TestNormalizeInterestsDoesNotAliasDefaults(t *testing.T) {
	got := NormalizeInterests(nil, nil)
	got[0] = "changed"
	assert.Equal(t, "computer science", schema.DefaultInterests[0])
}

func TestMatchInterests(t *testing.T) {
	t.Run("name and keyword hits", func(t *testing.T) {
		score, reasons := MatchInterests(
			"Machine Learning",
			[]string{"Neural networks", "Deep Learning", "Python"},
			[]string{"machine learning", "ai"},
		)
		assert.InDelta(t, 0.8, score, 1e-9)
		assert.Equal(t, []string{
			"Course title matches your interest in machine learning",
			"Course includes deep learning technologies",
			"Course includes neural technologies",
		}, reasons)
	})

	t.Run("name and outcome hits for the same interest", func(t *testing.T) {
		score, reasons := MatchInterests("Data Science Foundations", []string{"Data wrangling"}, []string{"data"})
		// name +0.4, outcomes +0.3, keyword "data" +0.2
		assert.InDelta(t, 0.9, score, 1e-9)
		assert.Equal(t, []string{
			"Course title matches your interest in data",
			"Course covers topics in data",
			"Course includes data technologies",
		}, reasons)
	})

	t.Run("keywords only search outcomes", func(t *testing.T) {
		score, reasons := MatchInterests("Web Development", nil, []string{"mobile"})
		assert.Equal(t, 0.0, score)
		assert.Empty(t, reasons)
	})

	t.Run("unknown interest has no keyword pass", func(t *testing.T) {
		score, _ := MatchInterests("Robotics", []string{"robot kinematics"}, []string{"robot"})
		assert.InDelta(t, 0.7, score, 1e-9)
	})
}

func TestEnrollmentLikelihood(t *testing.T) {
	tests := []struct {
		name        string
		semester    int
		isCore      bool
		seats       float64
		enrollments float64
		expected    float64
	}{
		{"nearly full senior", 4, false, 100, 95, 0.05},
		{"junior core", 2, true, 100, 50, 0.375},
		{"no seat data", 8, false, 0, 0, 0.1},
		{"over enrolled", 4, false, 50, 60, 0.1},
		{"core capped", 4, true, 100, 0, 1.0},
		{"first semester", 1, false, 100, 0, 0.25},
		{"non-positive semester", 0, true, 100, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EnrollmentLikelihood(tt.semester, tt.isCore, tt.seats, tt.enrollments), 1e-9)
		})
	}
}

func TestApplyPrereqPenalty(t *testing.T) {
	score, reasons := ApplyPrereqPenalty(0.8, false, []string{"r"})
	assert.InDelta(t, 0.4, score, 1e-12)
	assert.Equal(t, []string{"r", "⚠️ Prerequisites not completed"}, reasons)

	score, reasons = ApplyPrereqPenalty(0, false, nil)
	assert.Equal(t, 0.0, score)
	assert.Len(t, reasons, 1)

	score, reasons = ApplyPrereqPenalty(0.8, true, nil)
	assert.Equal(t, 0.8, score)
	assert.Empty(t, reasons)
}

func TestApplyUtility(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		utility  float64
		expected float64
		reasons  []string
	}{
		{"confident boost", 0.4, 0.2, 0.5, []string{"✅ Low burnout risk (utility: 0.20)"}},
		{"weak boost", 0.4, 0.1, 0.45, []string{"Low-moderate burnout risk (utility: 0.10)"}},
		{"boundary is weak", 0, 0.15, 0.075, []string{"Low-moderate burnout risk (utility: 0.15)"}},
		{"negative shrinks", 0.8, -0.5, 0.4, []string{"⚠️ High burnout risk (utility: -0.50)"}},
		{"negative on zero stays zero", 0, -0.3, 0, []string{"⚠️ High burnout risk (utility: -0.30)"}},
		{"zero is neutral", 0.6, 0, 0.6, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reasons := ApplyUtility(tt.score, tt.utility, nil)
			assert.InDelta(t, tt.expected, score, 1e-9)
			assert.Equal(t, tt.reasons, reasons)
		})
	}
}

func TestApplyCoreBoost(t *testing.T) {
	score, reasons := ApplyCoreBoost(0, nil)
	assert.Equal(t, 0.5, score)
	assert.Equal(t, []string{"📚 This is a core subject requirement"}, reasons)
}
