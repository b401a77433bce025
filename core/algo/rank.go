package algo

import (
	"sort"

	"github.com/huangsam/courseload/schema"
)

// Composite sort weights.
const (
	rankMatchWeight      = 0.5
	rankUtilityWeight    = 0.3
	rankLikelihoodWeight = 0.2
)

// CompositeScore is the secondary ranking key: 0.5*match + 0.3*utility + 0.2*likelihood.
// A missing utility counts as 0.
func CompositeScore(s *schema.ScoredSubject) float64 {
	return rankMatchWeight*s.MatchScore +
		rankUtilityWeight*schema.ValueOr(s.UtilityScore, 0) +
		rankLikelihoodWeight*s.Likelihood
}

// RankRecommendations sorts subjects with core subjects first, then by composite score
// in descending order, then by subject code ascending.
func RankRecommendations(subjects []schema.ScoredSubject) []schema.ScoredSubject {
	sort.SliceStable(subjects, func(i, j int) bool {
		a, b := &subjects[i], &subjects[j]
		if a.IsCore != b.IsCore {
			return a.IsCore
		}
		ca, cb := CompositeScore(a), CompositeScore(b)
		if ca != cb {
			return ca > cb
		}
		return a.SubjectCode < b.SubjectCode
	})
	return subjects
}

// PartitionByLikelihood splits ranked subjects into recommended and competitive lists,
// preserving relative order. Subjects below the threshold are competitive.
func PartitionByLikelihood(ranked []schema.ScoredSubject, threshold float64) schema.RecommendationResult {
	result := schema.RecommendationResult{
		Recommended: []schema.ScoredSubject{},
		Competitive: []schema.ScoredSubject{},
	}
	for _, s := range ranked {
		if s.Likelihood < threshold {
			result.Competitive = append(result.Competitive, s)
		} else {
			result.Recommended = append(result.Recommended, s)
		}
	}
	return result
}

// RankBurnoutScores sorts rows by burnout ascending, then by subject code.
func RankBurnoutScores(rows []schema.BurnoutScore) []schema.BurnoutScore {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].BurnoutScore != rows[j].BurnoutScore {
			return rows[i].BurnoutScore < rows[j].BurnoutScore
		}
		return rows[i].SubjectCode < rows[j].SubjectCode
	})
	return rows
}

// TakeUnseen returns up to limit subjects whose codes are not in seen, keeping order.
func TakeUnseen(subjects []schema.ScoredSubject, seen map[string]struct{}, limit int) []schema.ScoredSubject {
	out := []schema.ScoredSubject{}
	for _, s := range subjects {
		if len(out) >= limit {
			break
		}
		if _, ok := seen[s.SubjectCode]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}
