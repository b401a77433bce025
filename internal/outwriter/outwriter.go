// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"golang.org/x/term"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteBurnoutScores prints a student's burnout table using the configured output format.
func (ow *OutWriter) WriteBurnoutScores(table *schema.ScoreTable, cfg *contract.Config, duration time.Duration) error {
	return PrintBurnoutScores(table, cfg, duration)
}

// WriteRecommendations prints both recommendation lists using the configured output format.
func (ow *OutWriter) WriteRecommendations(studentID string, result schema.RecommendationResult, cfg *contract.Config, duration time.Duration) error {
	return PrintRecommendations(studentID, result, cfg, duration)
}

// WriteSchedule prints a final schedule using the configured output format.
func (ow *OutWriter) WriteSchedule(studentID string, schedule schema.Schedule, cfg *contract.Config) error {
	return PrintSchedule(studentID, schedule, cfg)
}

// WriteSession prints every round of a recommendation session followed by its schedule.
func (ow *OutWriter) WriteSession(studentID string, rounds []schema.RoundResult, schedule schema.Schedule, cfg *contract.Config, duration time.Duration) error {
	return PrintSession(studentID, rounds, schedule, cfg, duration)
}

// WriteMetrics prints the scoring model definitions using the configured output format.
func (ow *OutWriter) WriteMetrics(params schema.EngineParams, cfg *contract.Config) error {
	return PrintMetricsDefinitions(params, cfg)
}

// getMaxTableNameWidth calculates the maximum width for subject names in table output
// based on terminal width and table configuration.
func getMaxTableNameWidth(cfg *contract.Config, fixedWidth int) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // conservative default for CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for borders, separators and padding
	available := termWidth - fixedWidth - 20
	if available < 15 {
		return 15
	}
	if available > 60 {
		return 60
	}
	return available
}
