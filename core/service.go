package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/internal/dataio"
	"github.com/huangsam/courseload/schema"
)

// Service ties the engine to its profile source and stores. It backs the CLI, the HTTP API
// and the MCP server. Tables and Runs may be nil, which disables persistence and run tracking.
type Service struct {
	Engine   *Engine
	Profiles contract.ProfileSource
	Tables   contract.ScoreTableStore
	Runs     contract.RunStore
	Strict   bool
	TableTTL time.Duration
}

// NewService creates a service. A nil manager disables both stores.
func NewService(engine *Engine, profiles contract.ProfileSource, mgr contract.StoreManager) *Service {
	svc := &Service{Engine: engine, Profiles: profiles}
	if mgr != nil {
		svc.Tables = mgr.GetTableStore()
		svc.Runs = mgr.GetRunStore()
	}
	return svc
}

// NewServiceFromConfig loads the configured catalog and builds a service over the profile directory.
func NewServiceFromConfig(cfg *contract.Config, mgr contract.StoreManager) (*Service, error) {
	data, err := dataio.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	return NewServiceFromCatalog(data, cfg, mgr)
}

// NewServiceFromCatalog is NewServiceFromConfig for catalog data that is already loaded.
func NewServiceFromCatalog(data schema.CatalogData, cfg *contract.Config, mgr contract.StoreManager) (*Service, error) {
	catalog, err := NewCatalog(data)
	if err != nil {
		return nil, err
	}
	svc := NewService(NewEngine(catalog, cfg.EngineParams()), dataio.NewProfileDir(cfg.ProfilesDir), mgr)
	svc.Strict = cfg.StrictProfiles
	svc.TableTTL = cfg.TableTTL
	return svc, nil
}

// Profile loads and normalizes one student profile.
func (s *Service) Profile(ctx context.Context, studentID string) (*schema.StudentProfile, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, fmt.Errorf("empty student id: %w", ErrStudentNotFound)
	}
	raw, err := s.Profiles.LoadProfile(ctx, studentID)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", studentID, err)
	}
	if strings.TrimSpace(raw.ID) == "" {
		raw.ID = studentID
	}
	return NormalizeProfile(raw, s.Strict)
}

// BurnoutScores computes a fresh burnout table for the student, records the run and
// saves the table for later recommendation requests.
func (s *Service) BurnoutScores(ctx context.Context, studentID string) (*schema.ScoreTable, error) {
	p, err := s.Profile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, details, err := s.Engine.ComputeBurnoutDetails(p)
	if err != nil {
		return nil, err
	}
	table := &schema.ScoreTable{StudentID: p.ID, GeneratedAt: start.UTC(), Rows: rows}

	runID := s.beginRun(schema.ScoresRun, p.ID, start)
	if runID > 0 {
		if err := s.Runs.RecordSubjectScores(runID, subjectScoreRecords(runID, p.ID, start, rows, details)); err != nil {
			contract.LogWarn("Failed to record subject scores", err)
		}
	}
	s.endRun(runID, len(rows))

	if err := saveTable(s.Tables, table); err != nil {
		contract.LogWarn("Failed to save score table", err)
	}
	return table, nil
}

// StoredTable returns the student's stored table when it is fresh, or nil. Only
// BurnoutScores writes tables, so a student never scored has no utility signal.
func (s *Service) StoredTable(p *schema.StudentProfile) *schema.ScoreTable {
	return checkTableHit(s.Tables, p.ID, s.TableTTL)
}

// Recommendations generates both recommendation lists for the student. A negative
// semester counts as the first. Burnout and utility come from the stored table, if any.
func (s *Service) Recommendations(ctx context.Context, studentID string, semester int, extra []string) (schema.RecommendationResult, error) {
	p, err := s.Profile(ctx, studentID)
	if err != nil {
		return schema.RecommendationResult{}, err
	}

	start := time.Now()
	result, err := s.Engine.GenerateRecommendations(p, semester, extra, s.StoredTable(p))
	if err != nil {
		return schema.RecommendationResult{}, err
	}
	runID := s.beginRun(schema.RecommendRun, p.ID, start)
	s.recordRecommendations(runID, [][]schema.ScoredSubject{result.Recommended}, [][]schema.ScoredSubject{result.Competitive})
	s.endRun(runID, result.Len())
	return result, nil
}

// Schedule builds the final schedule from codes, or from the stored session history
// when codes is empty.
func (s *Service) Schedule(ctx context.Context, studentID string, codes []string) (schema.Schedule, error) {
	p, err := s.Profile(ctx, studentID)
	if err != nil {
		return schema.Schedule{}, err
	}
	if len(codes) == 0 {
		codes = loadHistory(s.Tables, p.ID)
	}

	runID := s.beginRun(schema.ScheduleRun, p.ID, time.Now())
	schedule := s.Engine.BuildSchedule(codes, s.StoredTable(p))
	s.endRun(runID, len(schedule.Entries))
	return schedule, nil
}

// Utility computes the full scoring detail of one subject for the student.
func (s *Service) Utility(ctx context.Context, studentID, code string) (schema.SubjectScoreDetail, error) {
	p, err := s.Profile(ctx, studentID)
	if err != nil {
		return schema.SubjectScoreDetail{}, err
	}
	return s.Engine.ScoreSubject(p, code)
}

// RunSession runs rounds recommendation rounds. Interests accumulate: round i uses every
// entry of extras up to and including extras[i]. The session history is saved afterwards.
// A run that fails part way is closed with zero subjects.
func (s *Service) RunSession(ctx context.Context, studentID string, semester, rounds int, extras [][]string) (*Session, error) {
	p, err := s.Profile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	sess, err := NewSession(s.Engine, p, semester, s.StoredTable(p))
	if err != nil {
		return nil, err
	}

	runID := s.beginRun(schema.SessionRun, p.ID, time.Now())
	var acc []string
	for i := range rounds {
		if err := ctx.Err(); err != nil {
			s.endRun(runID, 0)
			return nil, err
		}
		if i < len(extras) {
			acc = append(acc, extras[i]...)
		}
		if _, err := sess.NextRound(acc); err != nil {
			s.endRun(runID, 0)
			return nil, err
		}
	}

	var recommended, competitive [][]schema.ScoredSubject
	for _, r := range sess.Rounds() {
		recommended = append(recommended, r.Recommended)
		competitive = append(competitive, r.Competitive)
	}
	s.recordRecommendations(runID, recommended, competitive)
	s.endRun(runID, len(sess.History()))

	if err := saveHistory(s.Tables, p.ID, sess.History()); err != nil {
		contract.LogWarn("Failed to save session history", err)
	}
	return sess, nil
}

// ScoreAll scores every available profile with a worker pool and saves each table.
// Profiles that fail to load are reported in their result.
func (s *Service) ScoreAll(ctx context.Context, workers int) ([]BatchResult, error) {
	ids, err := s.Profiles.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]BatchResult, len(ids))
	var profiles []*schema.StudentProfile
	var slots []int
	for i, id := range ids {
		p, err := s.Profile(ctx, id)
		if err != nil {
			results[i] = BatchResult{StudentID: id, Err: err}
			continue
		}
		profiles = append(profiles, p)
		slots = append(slots, i)
	}

	now := time.Now().UTC()
	for j, r := range s.Engine.ComputeBurnoutScoresBatch(ctx, profiles, workers) {
		results[slots[j]] = r
		if r.Err != nil {
			continue
		}
		if err := saveTable(s.Tables, &schema.ScoreTable{StudentID: r.StudentID, GeneratedAt: now, Rows: r.Rows}); err != nil {
			contract.LogWarn("Failed to save score table", err)
		}
	}
	return results, nil
}

// beginRun starts run tracking, returning 0 when tracking is off or fails.
func (s *Service) beginRun(kind schema.RunKind, studentID string, start time.Time) int64 {
	if s.Runs == nil {
		return 0
	}
	runID, err := s.Runs.BeginRun(kind, studentID, start, s.configParams())
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return 0
	}
	return runID
}

func (s *Service) endRun(runID int64, total int) {
	if runID <= 0 {
		return
	}
	if err := s.Runs.EndRun(runID, time.Now(), total); err != nil {
		contract.LogWarn("Failed to finalize run tracking", err)
	}
}

// recordRecommendations stores each partition's subjects with ranks running across rounds.
func (s *Service) recordRecommendations(runID int64, recommended, competitive [][]schema.ScoredSubject) {
	if runID <= 0 {
		return
	}
	var records []schema.RecommendationRecord
	for _, part := range []struct {
		name   schema.Partition
		rounds [][]schema.ScoredSubject
	}{{schema.RecommendedPartition, recommended}, {schema.CompetitivePartition, competitive}} {
		rank := int32(0)
		for _, subjects := range part.rounds {
			for _, subj := range subjects {
				rank++
				records = append(records, schema.RecommendationRecord{
					RunID:       runID,
					SubjectCode: subj.SubjectCode,
					Rank:        rank,
					Partition:   string(part.name),
					MatchScore:  subj.MatchScore,
					Likelihood:  subj.Likelihood,
					IsCore:      subj.IsCore,
				})
			}
		}
	}
	if err := s.Runs.RecordRecommendations(runID, records); err != nil {
		contract.LogWarn("Failed to record recommendations", err)
	}
}

// configParams snapshots the engine parameters for run tracking.
func (s *Service) configParams() map[string]any {
	p := s.Engine.Params()
	return map[string]any{
		"w1":                p.Burnout.Weights[schema.BreakdownWorkload],
		"w2":                p.Burnout.Weights[schema.BreakdownMismatch],
		"w3":                p.Burnout.Weights[schema.BreakdownStress],
		"k":                 p.Burnout.K,
		"p0":                p.Burnout.P0,
		"proficiency_scale": p.Burnout.ProficiencyScale,
		"alpha":             p.Utility.Alpha,
		"beta":              p.Utility.Beta,
		"delta":             p.Utility.Delta,
		"match":             p.Thresholds.Match,
		"competitive":       p.Thresholds.Competitive,
	}
}

// subjectScoreRecords converts the unrounded details of a table into run records.
func subjectScoreRecords(runID int64, studentID string, at time.Time, rows []schema.BurnoutScore, details map[string]schema.SubjectScoreDetail) []schema.SubjectScoreRecord {
	records := make([]schema.SubjectScoreRecord, 0, len(rows))
	for _, r := range rows {
		d := details[r.SubjectCode]
		records = append(records, schema.SubjectScoreRecord{
			RunID:        runID,
			StudentID:    studentID,
			SubjectCode:  r.SubjectCode,
			RecordedAt:   at,
			Workload:     d.Breakdown.Workload,
			Mismatch:     d.Breakdown.Mismatch,
			Stress:       d.Breakdown.Stress,
			BurnoutScore: d.Breakdown.Probability,
			Alignment:    d.Alignment,
			Penalty:      d.Penalty,
			Utility:      d.Utility,
		})
	}
	return records
}
