package core

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/huangsam/courseload/core/algo"
	"github.com/huangsam/courseload/schema"
)

// scorePrecision is the number of decimals kept in persisted burnout tables.
const scorePrecision = 3

// Engine scores subjects for students against one catalog.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	catalog *Catalog
	params  schema.EngineParams
}

// NewEngine creates an engine over the catalog. A nil weights map falls back to the defaults.
func NewEngine(catalog *Catalog, params schema.EngineParams) *Engine {
	if params.Burnout.Weights == nil {
		params.Burnout.Weights = schema.GetDefaultWeights()
	} else {
		params.Burnout.Weights = maps.Clone(params.Burnout.Weights)
	}
	if params.Burnout.ProficiencyScale <= 0 {
		params.Burnout.ProficiencyScale = schema.DefaultProficiencyScale
	}
	return &Engine{catalog: catalog, params: params}
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

// Params returns the engine's parameters.
func (e *Engine) Params() schema.EngineParams { return e.params }

// Burnout computes the burnout breakdown of one subject for a student.
func (e *Engine) Burnout(p *schema.StudentProfile, code string) (schema.BurnoutBreakdown, error) {
	s, err := e.catalog.Subject(code)
	if err != nil {
		return schema.BurnoutBreakdown{}, err
	}
	return algo.ComputeBurnout(p, s, e.catalog.Requirements(s.Code), e.catalog.Norm(), e.params.Burnout), nil
}

// ComputeUtility computes U = alpha*OAS + beta*(1-burnout) - delta*penalty for one subject.
func (e *Engine) ComputeUtility(p *schema.StudentProfile, code string) (float64, error) {
	detail, err := e.detail(p, code)
	if err != nil {
		return 0, err
	}
	return detail.Utility, nil
}

// ScoreSubject computes the full scoring detail of one subject for a student.
func (e *Engine) ScoreSubject(p *schema.StudentProfile, code string) (schema.SubjectScoreDetail, error) {
	return e.detail(p, code)
}

func (e *Engine) detail(p *schema.StudentProfile, code string) (schema.SubjectScoreDetail, error) {
	s, err := e.catalog.Subject(code)
	if err != nil {
		return schema.SubjectScoreDetail{}, err
	}
	bd := algo.ComputeBurnout(p, s, e.catalog.Requirements(s.Code), e.catalog.Norm(), e.params.Burnout)
	oas := algo.OutcomeAlignment(p.DesiredOutcomes, s.Outcomes)
	pen := algo.PrereqPenalty(e.catalog.Prerequisites(s.Code), p)
	return schema.SubjectScoreDetail{
		Breakdown: bd,
		Alignment: oas,
		Penalty:   pen,
		Utility:   algo.Utility(oas, bd.Probability, pen, e.params.Utility),
	}, nil
}

// ComputeBurnoutScores builds the burnout table for every subject the student has not completed.
// Rows are sorted by burnout ascending, ties by subject code.
func (e *Engine) ComputeBurnoutScores(p *schema.StudentProfile) ([]schema.BurnoutScore, error) {
	rows, _, err := e.ComputeBurnoutDetails(p)
	return rows, err
}

// ComputeBurnoutDetails is ComputeBurnoutScores plus the unrounded detail of each row, keyed by code.
func (e *Engine) ComputeBurnoutDetails(p *schema.StudentProfile) ([]schema.BurnoutScore, map[string]schema.SubjectScoreDetail, error) {
	if p == nil {
		return nil, nil, fmt.Errorf("nil profile: %w", ErrStudentNotFound)
	}
	rows := make([]schema.BurnoutScore, 0, e.catalog.Len())
	details := make(map[string]schema.SubjectScoreDetail, e.catalog.Len())
	for _, s := range e.catalog.Subjects() {
		if p.HasCompleted(s.Code) {
			continue
		}
		d, err := e.detail(p, s.Code)
		if err != nil {
			return nil, nil, fmt.Errorf("scoring %s: %w", s.Code, err)
		}
		prereqs := e.catalog.Prerequisites(s.Code)
		factors := d.Breakdown
		rows = append(rows, schema.BurnoutScore{
			SubjectCode:            s.Code,
			SubjectName:            s.Name,
			BurnoutScore:           schema.RoundTo(d.Breakdown.Probability, scorePrecision),
			Prerequisites:          append([]string{}, prereqs...),
			PrerequisitesSatisfied: algo.PrerequisitesSatisfied(prereqs, p),
			Corequisites:           e.catalog.Corequisites(s.Code),
			Utility:                schema.RoundTo(d.Utility, scorePrecision),
			Factors:                &factors,
		})
		details[s.Code] = d
	}
	return algo.RankBurnoutScores(rows), details, nil
}

// ScoreTable computes a fresh, timestamped burnout table for the student.
func (e *Engine) ScoreTable(p *schema.StudentProfile) (*schema.ScoreTable, error) {
	rows, err := e.ComputeBurnoutScores(p)
	if err != nil {
		return nil, err
	}
	return &schema.ScoreTable{StudentID: p.ID, GeneratedAt: time.Now().UTC(), Rows: rows}, nil
}

// GenerateRecommendations ranks the subjects the student has not completed against their
// interests. The table, when non-nil, supplies burnout and utility per subject.
func (e *Engine) GenerateRecommendations(p *schema.StudentProfile, semester int, extra []string, table *schema.ScoreTable) (schema.RecommendationResult, error) {
	if p == nil {
		return schema.RecommendationResult{}, fmt.Errorf("nil profile: %w", ErrStudentNotFound)
	}
	base := p.Interests
	if len(base) == 0 {
		base = p.DesiredOutcomes
	}
	interests := algo.NormalizeInterests(base, extra)
	byCode := table.ByCode()
	semester = max(semester, 0)

	var candidates []schema.ScoredSubject
	for _, s := range e.catalog.Subjects() {
		if p.HasCompleted(s.Code) {
			continue
		}
		cand := e.scoreCandidate(p, &s, semester, interests, byCode)
		if cand.IsCore || cand.MatchScore > e.params.Thresholds.Match {
			candidates = append(candidates, cand)
		}
	}
	ranked := algo.RankRecommendations(candidates)
	return algo.PartitionByLikelihood(ranked, e.params.Thresholds.Competitive), nil
}

func (e *Engine) scoreCandidate(p *schema.StudentProfile, s *schema.Subject, semester int, interests []string, byCode map[string]schema.BurnoutScore) schema.ScoredSubject {
	score, reasons := algo.MatchInterests(s.Name, s.Outcomes, interests)
	if reasons == nil {
		reasons = []string{}
	}

	seats := schema.ValueOr(s.Seats, 0)
	enrollments := schema.ValueOr(s.Enrollments, 0)
	isCore := p.IsCore(s.Code)
	satisfied := algo.PrerequisitesSatisfied(e.catalog.Prerequisites(s.Code), p)

	score, reasons = algo.ApplyPrereqPenalty(score, satisfied, reasons)

	var burnout, utility *float64
	if row, ok := byCode[s.Code]; ok {
		burnout = schema.Float(row.BurnoutScore)
		utility = schema.Float(row.Utility)
		score, reasons = algo.ApplyUtility(score, row.Utility, reasons)
	}
	if isCore {
		score, reasons = algo.ApplyCoreBoost(score, reasons)
	}

	return schema.ScoredSubject{
		SubjectCode:            s.Code,
		Name:                   s.Name,
		MatchScore:             score,
		Likelihood:             algo.EnrollmentLikelihood(semester, isCore, seats, enrollments),
		Seats:                  seats,
		Enrollments:            enrollments,
		BurnoutScore:           burnout,
		UtilityScore:           utility,
		Reasons:                reasons,
		IsCore:                 isCore,
		PrerequisitesSatisfied: satisfied,
	}
}

// Recommend computes a fresh burnout table and generates recommendations from it.
func (e *Engine) Recommend(p *schema.StudentProfile, semester int, extra []string) (schema.RecommendationResult, error) {
	table, err := e.ScoreTable(p)
	if err != nil {
		return schema.RecommendationResult{}, err
	}
	return e.GenerateRecommendations(p, semester, extra, table)
}

// BuildSchedule renders the first slots of a selection history.
// Utilities come from the table when one is given.
func (e *Engine) BuildSchedule(history []string, table *schema.ScoreTable) schema.Schedule {
	utilities := make(map[string]float64)
	for code, row := range table.ByCode() {
		utilities[code] = row.Utility
	}
	return algo.BuildSchedule(schema.NormalizeCodes(history), e.catalog.Names(), utilities)
}

// BatchResult is the outcome of scoring one profile in a batch.
type BatchResult struct {
	StudentID string
	Rows      []schema.BurnoutScore
	Err       error
}

// ComputeBurnoutScoresBatch scores many profiles concurrently with a fixed worker pool.
// Results keep the input order. Profiles not yet started when ctx is done report ctx.Err().
func (e *Engine) ComputeBurnoutScoresBatch(ctx context.Context, profiles []*schema.StudentProfile, workers int) []BatchResult {
	results := make([]BatchResult, len(profiles))
	if workers <= 0 {
		workers = 1
	}
	jobs := make(chan int, len(profiles))
	var wg sync.WaitGroup

	for range min(workers, max(len(profiles), 1)) {
		wg.Go(func() {
			for i := range jobs {
				p := profiles[i]
				if p != nil {
					results[i].StudentID = p.ID
				}
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}
				results[i].Rows, results[i].Err = e.ComputeBurnoutScores(p)
			}
		})
	}

	for i := range profiles {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
