// Package algo has the pure formulas behind burnout, utility and recommendation scoring.
package algo

import (
	"math"

	"github.com/huangsam/courseload/schema"
)

// assignmentLoad is A = num_assignments * hours_per_assignment * assignment_weight.
func assignmentLoad(s *schema.Subject) float64 {
	return schema.ValueOr(s.NumAssignments, 0) *
		schema.ValueOr(s.HoursPerAssignment, 0) *
		schema.ValueOr(s.AssignmentWeight, 0)
}

// projectPenalty is P = (100 - avg_project_grade) * project_weight.
// A missing project grade counts as 0, so an ungraded project weighs fully.
func projectPenalty(s *schema.Subject) float64 {
	return (100 - schema.ValueOr(s.AvgProjectGrade, 0)) * schema.ValueOr(s.ProjectWeight, 0)
}

// examPenalty is E = exam_count * (100 - avg_exam_grade) * exam_weight.
func examPenalty(s *schema.Subject) float64 {
	return schema.ValueOr(s.ExamCount, 0) *
		(100 - schema.ValueOr(s.AvgExamGrade, 0)) *
		schema.ValueOr(s.ExamWeight, 0)
}

// ComputeNormContext derives the catalog-wide maxima. Each maximum is floored at 1.
func ComputeNormContext(subjects []schema.Subject) schema.NormContext {
	norm := schema.NormContext{Hmax: 1, Amax: 1, Pmax: 1, Emax: 1}
	for i := range subjects {
		s := &subjects[i]
		norm.Hmax = maxFinite(norm.Hmax, schema.ValueOr(s.HoursPerWeek, 0))
		norm.Amax = maxFinite(norm.Amax, assignmentLoad(s))
		norm.Pmax = maxFinite(norm.Pmax, projectPenalty(s))
		norm.Emax = maxFinite(norm.Emax, examPenalty(s))
	}
	return norm
}

// maxFinite ignores NaN and infinite candidates so one bad row cannot poison the context.
func maxFinite(cur, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return cur
	}
	return math.Max(cur, v)
}

// clamp01 bounds v to [0,1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
