package schema

// Check issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// CheckResult holds the results of a catalog check.
type CheckResult struct {
	Passed        bool
	TotalSubjects int
	Issues        []CheckIssue
	StudentID     string  // set when the burnout gate ran
	MaxBurnout    float64 // gate threshold
	WorstSubject  string
	WorstBurnout  float64
	FailedScores  []BurnoutScore // rows above the gate threshold
}

// CheckIssue is one finding of a catalog check.
type CheckIssue struct {
	SubjectCode string
	Severity    string
	Message     string
}

// Errors returns the number of error-level issues.
func (r CheckResult) Errors() int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			n++
		}
	}
	return n
}
