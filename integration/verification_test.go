//go:build integration

// Package integration contains integration tests for courseload.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
// Or use: make test-integration
package integration

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/courseload/core"
	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// noStores keeps verification runs away from the user's SQLite files.
var noStores = []string{
	"COURSELOAD_STORE_BACKEND=none",
	"COURSELOAD_TABLE_BACKEND=none",
}

func sampleService(t *testing.T) *core.Service {
	t.Helper()
	params := schema.GetDefaultEngineParams()
	cfg := &contract.Config{
		CatalogPath: "../data",
		ProfilesDir: "../data/students",
		Burnout:     params.Burnout,
		Utility:     params.Utility,
		Thresholds:  params.Thresholds,
	}
	svc, err := core.NewServiceFromConfig(cfg, nil)
	require.NoError(t, err)
	return svc
}

// TestScoresVerification checks the CLI's JSON burnout table against the engine run in-process.
func TestScoresVerification(t *testing.T) {
	out, err := runCourseload(t, noStores, "scores", "001", "--output", "json", "--precision", "4")
	require.NoError(t, err)

	var cli struct {
		Scores []schema.EnrichedBurnoutScore `json:"scores"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cli))

	want, err := sampleService(t).BurnoutScores(context.Background(), "001")
	require.NoError(t, err)
	require.Len(t, cli.Scores, len(want.Rows))

	for i, row := range want.Rows {
		t.Run(row.SubjectCode, func(t *testing.T) {
			got := cli.Scores[i]
			assert.Equal(t, i+1, got.Rank)
			assert.Equal(t, row.SubjectCode, got.SubjectCode)
			assert.InDelta(t, row.BurnoutScore, got.BurnoutScore.BurnoutScore, 1e-9)
			assert.InDelta(t, row.Utility, got.Utility, 1e-9)
			assert.GreaterOrEqual(t, got.BurnoutScore.BurnoutScore, 0.0)
			assert.LessOrEqual(t, got.BurnoutScore.BurnoutScore, 1.0)
		})
	}
}

// TestRecommendVerification checks the CLI's partitions against the engine run in-process.
func TestRecommendVerification(t *testing.T) {
	out, err := runCourseload(t, noStores, "recommend", "001", "--semester", "3", "--output", "json")
	require.NoError(t, err)

	var cli struct {
		Recommended []schema.EnrichedScoredSubject `json:"recommended_courses"`
		Competitive []schema.EnrichedScoredSubject `json:"highly_competitive_courses"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cli))

	want, err := sampleService(t).Recommendations(context.Background(), "001", 3, nil)
	require.NoError(t, err)

	codes := func(subjects []schema.EnrichedScoredSubject) []string {
		var out []string
		for _, s := range subjects {
			out = append(out, s.SubjectCode)
		}
		return out
	}
	wantCodes := func(subjects []schema.ScoredSubject) []string {
		var out []string
		for _, s := range subjects {
			out = append(out, s.SubjectCode)
		}
		return out
	}
	assert.Equal(t, wantCodes(want.Recommended), codes(cli.Recommended))
	assert.Equal(t, wantCodes(want.Competitive), codes(cli.Competitive))

	// The completed course never comes back
	assert.NotContains(t, codes(cli.Recommended), "CS5010")
	assert.NotContains(t, codes(cli.Competitive), "CS5010")
}
