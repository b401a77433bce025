package schema

import (
	"math"
	"strconv"
	"strings"
)

// NoneValue marks an empty list cell in catalog files.
const NoneValue = "None"

// ValueOr dereferences an optional number, falling back to def when it is missing,
// NaN or infinite.
func ValueOr(v *float64, def float64) float64 {
	if !IsFinite(v) {
		return def
	}
	return *v
}

// IsFinite reports whether v is present and neither NaN nor infinite.
func IsFinite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// SplitList splits a delimited cell, trimming parts and dropping empties and "None".
func SplitList(s, sep string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == NoneValue {
		return nil
	}
	var out []string
	for part := range strings.SplitSeq(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" && part != NoneValue {
			out = append(out, part)
		}
	}
	return out
}

// NormalizeCode canonicalizes a subject code for lookups.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeCodes applies NormalizeCode to every entry, dropping empties and duplicates.
func NormalizeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	var out []string
	for _, c := range codes {
		c = NormalizeCode(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FormatUtility renders a utility value the way schedules display it.
func FormatUtility(u float64) string {
	return strconv.FormatFloat(u, 'f', -1, 64)
}

// IsKnownSkill reports whether a skill belongs to the vocabulary of its requirement type.
func IsKnownSkill(t RequirementType, skill string) bool {
	var vocab []string
	switch t {
	case ProgrammingRequirement:
		vocab = ProgrammingLanguages
	case MathRequirement:
		vocab = MathAreas
	}
	for _, v := range vocab {
		if v == skill {
			return true
		}
	}
	return false
}
