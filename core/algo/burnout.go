package algo

import (
	"math"

	"github.com/huangsam/courseload/schema"
)

// Workload computes W' = ln(1 + H/Hmax) + A/Amax + P/Pmax + E/Emax.
func Workload(s *schema.Subject, norm schema.NormContext) float64 {
	h := schema.ValueOr(s.HoursPerWeek, 0)
	return math.Log1p(h/norm.Hmax) +
		assignmentLoad(s)/norm.Amax +
		projectPenalty(s)/norm.Pmax +
		examPenalty(s)/norm.Emax
}

// Mismatch computes M', the mean skill shortfall over a subject's requirements.
// A subject without requirements has no mismatch.
func Mismatch(p *schema.StudentProfile, reqs []schema.Requirement, scale float64) float64 {
	if len(reqs) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range reqs {
		level, ok := p.Experience(r.Type)[r.Skill]
		if !ok {
			total += 1
			continue
		}
		total += 1 - clamp01(level/scale)
	}
	return total / float64(len(reqs))
}

// gradesFor resolves the assignment, exam and project grades used for stress.
// Subject averages are the defaults; a recorded grade for this exact subject wins per field.
func gradesFor(p *schema.StudentProfile, s *schema.Subject) (ga, ge, gp float64) {
	ga = schema.ValueOr(s.AvgAssignmentGrade, schema.DefaultGrade)
	ge = schema.ValueOr(s.AvgExamGrade, schema.DefaultGrade)
	gp = schema.ValueOr(s.AvgProjectGrade, schema.DefaultGrade)
	if rec := p.Completed[s.Code]; rec != nil {
		ga = schema.ValueOr(rec.AssignmentGrade, ga)
		ge = schema.ValueOr(rec.ExamGrade, ge)
		gp = schema.ValueOr(rec.ProjectGrade, gp)
	}
	return ga, ge, gp
}

// Stress computes S', the weighted squared grade shortfall.
func Stress(p *schema.StudentProfile, s *schema.Subject) float64 {
	aw := schema.ValueOr(s.AssignmentWeight, 0)
	ew := schema.ValueOr(s.ExamWeight, 0)
	pw := schema.ValueOr(s.ProjectWeight, 0)
	total := aw + ew + pw
	if total == 0 {
		return 0
	}

	ga, ge, gp := gradesFor(p, s)
	shortfall := func(g float64) float64 {
		g = math.Max(0, math.Min(100, g))
		d := (100 - g) / 100
		return d * d
	}
	return (shortfall(ga)*aw + shortfall(ge)*ew + shortfall(gp)*pw) / total
}

// Sigmoid squashes x with steepness k around midpoint p0, clamped to [0,1].
func Sigmoid(x, k, p0 float64) float64 {
	return clamp01(1 / (1 + math.Exp(-k*(x-p0))))
}

// ComputeBurnout combines the three factors into a burnout probability.
func ComputeBurnout(p *schema.StudentProfile, s *schema.Subject, reqs []schema.Requirement, norm schema.NormContext, params schema.BurnoutParams) schema.BurnoutBreakdown {
	b := schema.BurnoutBreakdown{
		Workload: Workload(s, norm),
		Mismatch: Mismatch(p, reqs, params.ProficiencyScale),
		Stress:   Stress(p, s),
	}
	b.Combined = params.Weights[schema.BreakdownWorkload]*b.Workload +
		params.Weights[schema.BreakdownMismatch]*b.Mismatch +
		params.Weights[schema.BreakdownStress]*b.Stress
	b.Probability = Sigmoid(b.Combined, params.K, params.P0)
	return b
}
