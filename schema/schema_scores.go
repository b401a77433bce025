package schema

import (
	"bytes"
	"encoding/json"
	"time"
)

// NormContext holds the catalog-wide maxima used to scale workload terms.
// Every field is at least 1.
type NormContext struct {
	Hmax float64 `json:"h_max"`
	Amax float64 `json:"a_max"`
	Pmax float64 `json:"p_max"`
	Emax float64 `json:"e_max"`
}

// BurnoutParams configures the burnout combination and sigmoid.
type BurnoutParams struct {
	Weights          map[BreakdownKey]float64 // w1, w2, w3
	K                float64                  // sigmoid steepness
	P0               float64                  // sigmoid midpoint
	ProficiencyScale float64                  // divisor applied to skill levels
}

// UtilityParams configures U = alpha*OAS + beta*(1-burnout) - delta*penalty.
type UtilityParams struct {
	Alpha float64
	Beta  float64
	Delta float64
}

// Thresholds holds the independent ranking cutoffs.
type Thresholds struct {
	Match       float64 // non-core subjects need a match score above this
	Competitive float64 // likelihood below this lands in the competitive list
	MaxBurnout  float64 // check gate
}

// BurnoutBreakdown is the full derivation of one burnout probability.
type BurnoutBreakdown struct {
	Workload    float64 `json:"workload"`
	Mismatch    float64 `json:"mismatch"`
	Stress      float64 `json:"stress"`
	Combined    float64 `json:"combined"`
	Probability float64 `json:"probability"`
}

// BurnoutScore is one row of a student's burnout table.
type BurnoutScore struct {
	SubjectCode            string            `json:"subject_code"`
	SubjectName            string            `json:"subject_name"`
	BurnoutScore           float64           `json:"burnout_score"`
	Prerequisites          []string          `json:"prerequisites"`
	PrerequisitesSatisfied bool              `json:"prerequisites_satisfied"`
	Corequisites           []string          `json:"corequisites,omitempty"`
	Utility                float64           `json:"utility"`
	Factors                *BurnoutBreakdown `json:"factors,omitempty"`
}

// ScoreTable is a persisted burnout table for one student.
type ScoreTable struct {
	StudentID   string         `json:"nuid"`
	GeneratedAt time.Time      `json:"generated_at"`
	Rows        []BurnoutScore `json:"scores"`
}

// ByCode indexes the table rows by subject code. The first row for a code wins.
func (t *ScoreTable) ByCode() map[string]BurnoutScore {
	if t == nil {
		return nil
	}
	out := make(map[string]BurnoutScore, len(t.Rows))
	for _, r := range t.Rows {
		if _, ok := out[r.SubjectCode]; !ok {
			out[r.SubjectCode] = r
		}
	}
	return out
}

// ScoredSubject is one recommendation candidate.
type ScoredSubject struct {
	SubjectCode            string   `json:"subject_code"`
	Name                   string   `json:"name"`
	MatchScore             float64  `json:"match_score"`
	Likelihood             float64  `json:"likelihood"`
	Seats                  float64  `json:"seats"`
	Enrollments            float64  `json:"enrollments"`
	BurnoutScore           *float64 `json:"burnout_score"`
	UtilityScore           *float64 `json:"utility_score"`
	Reasons                []string `json:"reasons"`
	IsCore                 bool     `json:"is_core"`
	PrerequisitesSatisfied bool     `json:"prerequisites_satisfied"`
}

// RecommendationResult is the partitioned output of the recommendation engine.
type RecommendationResult struct {
	Recommended []ScoredSubject `json:"recommended_courses"`
	Competitive []ScoredSubject `json:"highly_competitive_courses"`
}

// Len returns the number of subjects across both lists.
func (r RecommendationResult) Len() int {
	return len(r.Recommended) + len(r.Competitive)
}

// ScheduleEntry is one slot of a final schedule.
type ScheduleEntry struct {
	Slot        string `json:"slot"`
	SubjectCode string `json:"subject_code"`
	Name        string `json:"name"`
	Utility     string `json:"utility"`
	Descriptor  string `json:"descriptor"`
}

// Schedule is an ordered "Subject N" -> descriptor mapping.
type Schedule struct {
	Entries []ScheduleEntry
}

// Map returns the schedule as a plain map.
func (s Schedule) Map() map[string]string {
	out := make(map[string]string, len(s.Entries))
	for _, e := range s.Entries {
		out[e.Slot] = e.Descriptor
	}
	return out
}

// MarshalJSON encodes the schedule as a JSON object with keys in slot order.
func (s Schedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Slot)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Descriptor)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RoundResult is the output of a single recommendation round in a session.
type RoundResult struct {
	Round       int             `json:"round"`
	Interests   []string        `json:"interests"`
	Recommended []ScoredSubject `json:"recommended_courses"`
	Competitive []ScoredSubject `json:"highly_competitive_courses"`
}

// HasResults reports whether the round produced anything new.
func (r RoundResult) HasResults() bool {
	return len(r.Recommended)+len(r.Competitive) > 0
}

// EngineParams bundles every tunable the scoring engine reads.
type EngineParams struct {
	Burnout    BurnoutParams
	Utility    UtilityParams
	Thresholds Thresholds
}
