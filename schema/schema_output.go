package schema

// EnrichedBurnoutScore adds presentation data to a BurnoutScore.
type EnrichedBurnoutScore struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	BurnoutScore
}

// EnrichedScoredSubject adds presentation data to a ScoredSubject.
type EnrichedScoredSubject struct {
	Rank            int    `json:"rank"`
	BurnoutLabel    string `json:"burnout_label"`
	EnrollmentLabel string `json:"enrollment_label"`
	ScoredSubject
}

// Burnout labels.
const (
	BurnoutHigh         = "High"
	BurnoutModerateHigh = "Moderate-High"
	BurnoutModerate     = "Moderate"
	BurnoutLow          = "Low"
	LabelUnavailable    = "N/A"
)

// Enrollment labels.
const (
	EnrollmentFull    = "Full"
	EnrollmentLimited = "Limited"
	EnrollmentFilling = "Filling"
	EnrollmentGood    = "Good"
)

// GetBurnoutLabel returns a plain text label for a burnout probability.
func GetBurnoutLabel(score float64) string {
	switch {
	case score > 0.8:
		return BurnoutHigh
	case score > 0.6:
		return BurnoutModerateHigh
	case score > 0.4:
		return BurnoutModerate
	default:
		return BurnoutLow
	}
}

// GetOptionalBurnoutLabel is GetBurnoutLabel for scores that may be missing.
func GetOptionalBurnoutLabel(score *float64) string {
	if score == nil {
		return LabelUnavailable
	}
	return GetBurnoutLabel(*score)
}

// GetEnrollmentLabel returns a plain text label for seat availability.
func GetEnrollmentLabel(seats, enrollments float64) string {
	if seats <= 0 || enrollments <= 0 {
		return LabelUnavailable
	}
	ratio := enrollments / seats
	switch {
	case ratio >= 1:
		return EnrollmentFull
	case ratio >= 0.9:
		return EnrollmentLimited
	case ratio >= 0.75:
		return EnrollmentFilling
	default:
		return EnrollmentGood
	}
}

// BurnoutAdvice returns the long-form guidance for a burnout label.
func BurnoutAdvice(label string) string {
	switch label {
	case BurnoutHigh:
		return "High burnout risk. Consider careful time management if taking this course"
	case BurnoutModerateHigh:
		return "Moderate-high burnout risk. May require significant time commitment"
	case BurnoutModerate:
		return "Moderate burnout risk. Typical workload for your program"
	case BurnoutLow:
		return "Low burnout risk. Should be manageable with your current skills"
	default:
		return "Burnout data not available"
	}
}

// EnrollmentAdvice returns the long-form guidance for an enrollment label.
func EnrollmentAdvice(label string) string {
	switch label {
	case EnrollmentFull:
		return "This class is currently full. Very difficult to enroll - consider for future semesters"
	case EnrollmentLimited:
		return "Limited seats available (>90% full). Enroll immediately if interested"
	case EnrollmentFilling:
		return "Class is filling up quickly (>75% full). Enroll soon to secure your spot"
	case EnrollmentGood:
		return "Good availability. Enroll at your convenience but don't wait too long"
	default:
		return "Enrollment data not available"
	}
}

// EnrichBurnoutScores adds rank and label to a burnout table.
func EnrichBurnoutScores(rows []BurnoutScore) []EnrichedBurnoutScore {
	output := make([]EnrichedBurnoutScore, len(rows))
	for i, r := range rows {
		output[i] = EnrichedBurnoutScore{
			Rank:         i + 1,
			Label:        GetBurnoutLabel(r.BurnoutScore),
			BurnoutScore: r,
		}
	}
	return output
}

// EnrichScoredSubjects adds rank and labels to a recommendation list.
func EnrichScoredSubjects(subjects []ScoredSubject) []EnrichedScoredSubject {
	output := make([]EnrichedScoredSubject, len(subjects))
	for i, s := range subjects {
		output[i] = EnrichedScoredSubject{
			Rank:            i + 1,
			BurnoutLabel:    GetOptionalBurnoutLabel(s.BurnoutScore),
			EnrollmentLabel: GetEnrollmentLabel(s.Seats, s.Enrollments),
			ScoredSubject:   s,
		}
	}
	return output
}

// MetricsRenderModel is the presentation model for the metrics command.
type MetricsRenderModel struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Formulas    []MetricsFormula   `json:"formulas"`
	Parameters  map[string]float64 `json:"parameters"`
	Notes       []string           `json:"notes"`
}

// MetricsFormula describes one term of the scoring model.
type MetricsFormula struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
	Formula string `json:"formula"`
}
