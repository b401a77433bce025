package algo

import (
	"strings"

	"github.com/huangsam/courseload/schema"
)

// toSet builds a set of trimmed, non-empty strings.
func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			set[it] = struct{}{}
		}
	}
	return set
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when either set is empty.
func Jaccard(a, b []string) float64 {
	sa, sb := toSet(a), toSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for k := range sa {
		if _, ok := sb[k]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	return float64(inter) / float64(union)
}

// OutcomeAlignment is the Jaccard similarity of desired and offered outcomes.
func OutcomeAlignment(desired, outcomes []string) float64 {
	return Jaccard(desired, outcomes)
}

// PrerequisitesSatisfied reports whether every prerequisite is in the completed set.
func PrerequisitesSatisfied(prereqs []string, p *schema.StudentProfile) bool {
	for _, code := range prereqs {
		if !p.HasCompleted(code) {
			return false
		}
	}
	return true
}

// PrereqPenalty is 1 when any prerequisite is missing and 0 otherwise. It is never partial.
func PrereqPenalty(prereqs []string, p *schema.StudentProfile) float64 {
	if len(prereqs) == 0 || PrerequisitesSatisfied(prereqs, p) {
		return 0
	}
	return 1
}

// Utility computes U = alpha*OAS + beta*(1-burnout) - delta*penalty.
func Utility(oas, burnout, penalty float64, params schema.UtilityParams) float64 {
	return params.Alpha*oas + params.Beta*(1-burnout) - params.Delta*penalty
}
