package algo

import (
	"fmt"
	"math"
	"strings"

	"github.com/huangsam/courseload/schema"
)

// Match score increments.
const (
	nameMatchBoost    = 0.4
	outcomeMatchBoost = 0.3
	keywordMatchBoost = 0.2
	utilityBoostScale = 0.5
	coreBoost         = 0.5
	prereqPenalty     = 0.5
	coreLikelihood    = 1.5
	seniorSemester    = 4.0
	floorLikelihood   = 0.1
	confidentUtility  = 0.15
)

// Reason strings shown next to each recommendation.
const (
	reasonPrereqs = "⚠️ Prerequisites not completed"
	reasonCore    = "📚 This is a core subject requirement"
)

// NormalizeInterests lowercases, trims and dedupes interests in order,
// falling back to the default interests when nothing usable remains.
func NormalizeInterests(base []string, extra []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range [][]string{base, extra} {
		for _, it := range list {
			it = strings.ToLower(strings.TrimSpace(it))
			if it == "" {
				continue
			}
			if _, ok := seen[it]; ok {
				continue
			}
			seen[it] = struct{}{}
			out = append(out, it)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), schema.DefaultInterests...)
	}
	return out
}

// OutcomesText joins outcomes into the lowercased text searched by interest matching.
func OutcomesText(outcomes []string) string {
	return strings.ToLower(strings.Join(outcomes, ", "))
}

// MatchInterests scores a subject's name and outcomes against the interests.
// Reasons are returned in the order the matches were found.
func MatchInterests(name string, outcomes []string, interests []string) (float64, []string) {
	lowerName := strings.ToLower(name)
	text := OutcomesText(outcomes)

	score := 0.0
	var reasons []string
	for _, in := range interests {
		if strings.Contains(lowerName, in) {
			score += nameMatchBoost
			reasons = append(reasons, fmt.Sprintf("Course title matches your interest in %s", in))
		}
		if strings.Contains(text, in) {
			score += outcomeMatchBoost
			reasons = append(reasons, fmt.Sprintf("Course covers topics in %s", in))
		}
	}
	for _, in := range interests {
		for _, kw := range schema.InterestKeywords[in] {
			if strings.Contains(text, kw) {
				score += keywordMatchBoost
				reasons = append(reasons, fmt.Sprintf("Course includes %s technologies", kw))
			}
		}
	}
	return score, reasons
}

// EnrollmentLikelihood estimates the chance of getting a seat.
// Full classes keep a floor of 0.1 since drops still happen.
func EnrollmentLikelihood(semester int, isCore bool, seats, enrollments float64) float64 {
	base := 0.0
	if seats > 0 {
		base = (seats - enrollments) / seats
	}
	if base <= 0 {
		base = floorLikelihood
	}
	mult := math.Min(float64(semester)/seniorSemester, 1)
	if isCore {
		mult *= coreLikelihood
	}
	return clamp01(base * mult)
}

// ApplyPrereqPenalty halves the score when prerequisites are missing.
func ApplyPrereqPenalty(score float64, satisfied bool, reasons []string) (float64, []string) {
	if satisfied {
		return score, reasons
	}
	return score * prereqPenalty, append(reasons, reasonPrereqs)
}

// ApplyUtility folds a precomputed utility into the match score.
// Positive utility adds, negative utility shrinks multiplicatively, zero does nothing.
func ApplyUtility(score, utility float64, reasons []string) (float64, []string) {
	switch {
	case utility > 0:
		score += utility * utilityBoostScale
		if utility > confidentUtility {
			reasons = append(reasons, fmt.Sprintf("✅ Low burnout risk (utility: %.2f)", utility))
		} else {
			reasons = append(reasons, fmt.Sprintf("Low-moderate burnout risk (utility: %.2f)", utility))
		}
	case utility < 0:
		score *= 1 + utility
		reasons = append(reasons, fmt.Sprintf("⚠️ High burnout risk (utility: %.2f)", utility))
	}
	return score, reasons
}

// ApplyCoreBoost boosts a core subject's score.
func ApplyCoreBoost(score float64, reasons []string) (float64, []string) {
	return score + coreBoost, append(reasons, reasonCore)
}
