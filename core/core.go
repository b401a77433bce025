// Package core has core logic for burnout scoring, recommendation and scheduling.
package core

import (
	"context"
	"time"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/internal/outwriter"
)

// writer renders every command's results using the configured output format.
var writer = outwriter.NewOutWriter()

// ExecuteScores computes a student's burnout table, saves it and prints it.
// It serves as the main entry point for the 'scores' command.
func ExecuteScores(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, studentID string) error {
	start := time.Now()
	svc, err := NewServiceFromConfig(cfg, mgr)
	if err != nil {
		return err
	}
	table, err := svc.BurnoutScores(ctx, studentID)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return writer.WriteBurnoutScores(table, cfg, duration)
}

// ExecuteBatchScores scores every profile in the profile directory and prints a summary.
// It serves as the main entry point for 'scores --all'.
func ExecuteBatchScores(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	svc, err := NewServiceFromConfig(cfg, mgr)
	if err != nil {
		return err
	}
	results, err := svc.ScoreAll(ctx, cfg.Workers)
	if err != nil {
		return err
	}
	summaries := make([]outwriter.BatchSummary, len(results))
	for i, r := range results {
		summaries[i] = outwriter.BatchSummary{StudentID: r.StudentID, Rows: r.Rows, Err: r.Err}
	}
	duration := time.Since(start)
	return writer.WriteBatchSummary(summaries, cfg, duration)
}

// ExecuteRecommend prints both recommendation lists for a student.
// A zero --semester falls back to the semester recorded in the profile.
func ExecuteRecommend(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, studentID string) error {
	start := time.Now()
	svc, err := NewServiceFromConfig(cfg, mgr)
	if err != nil {
		return err
	}
	semester, err := resolveSemester(ctx, svc, cfg, studentID)
	if err != nil {
		return err
	}
	result, err := svc.Recommendations(ctx, studentID, semester, cfg.Interests)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return writer.WriteRecommendations(studentID, result, cfg, duration)
}

// ExecuteSchedule prints the schedule for the given codes, or for the stored session history.
func ExecuteSchedule(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, studentID string, codes []string) error {
	svc, err := NewServiceFromConfig(cfg, mgr)
	if err != nil {
		return err
	}
	schedule, err := svc.Schedule(ctx, studentID, codes)
	if err != nil {
		return err
	}
	return writer.WriteSchedule(studentID, schedule, cfg)
}

// ExecuteSession runs a multi-round recommendation session and prints every round
// followed by the final schedule. Round one adds --interests; each later round adds
// the next --more entry on top of everything before it.
func ExecuteSession(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, studentID string) error {
	start := time.Now()
	svc, err := NewServiceFromConfig(cfg, mgr)
	if err != nil {
		return err
	}
	semester, err := resolveSemester(ctx, svc, cfg, studentID)
	if err != nil {
		return err
	}
	extras := append([][]string{cfg.Interests}, cfg.RoundExtras...)
	sess, err := svc.RunSession(ctx, studentID, semester, cfg.Rounds, extras)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return writer.WriteSession(studentID, sess.Rounds(), sess.Schedule(), cfg, duration)
}

// ExecuteMetrics prints the scoring model with the active parameters.
func ExecuteMetrics(cfg *contract.Config) error {
	return writer.WriteMetrics(cfg.EngineParams(), cfg)
}

// resolveSemester returns the configured semester, or the profile's when none is configured.
func resolveSemester(ctx context.Context, svc *Service, cfg *contract.Config, studentID string) (int, error) {
	if cfg.Semester > 0 {
		return cfg.Semester, nil
	}
	p, err := svc.Profile(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return p.Semester, nil
}
