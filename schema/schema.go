// Package schema has models, constants and presentation helpers for all parts of courseload.
package schema

// Subject is one row of the subject catalog.
// Every numeric field is optional; nil means the source left it blank.
type Subject struct {
	Code               string   `json:"subject_code" yaml:"code"`
	Name               string   `json:"name" yaml:"name"`
	HoursPerWeek       *float64 `json:"hours_per_week,omitempty" yaml:"hours_per_week"`
	NumAssignments     *float64 `json:"num_assignments,omitempty" yaml:"num_assignments"`
	HoursPerAssignment *float64 `json:"hours_per_assignment,omitempty" yaml:"hours_per_assignment"`
	AssignmentWeight   *float64 `json:"assignment_weight,omitempty" yaml:"assignment_weight"`
	AvgAssignmentGrade *float64 `json:"avg_assignment_grade,omitempty" yaml:"avg_assignment_grade"`
	ProjectWeight      *float64 `json:"project_weight,omitempty" yaml:"project_weight"`
	AvgProjectGrade    *float64 `json:"avg_project_grade,omitempty" yaml:"avg_project_grade"`
	ExamCount          *float64 `json:"exam_count,omitempty" yaml:"exam_count"`
	AvgExamGrade       *float64 `json:"avg_exam_grade,omitempty" yaml:"avg_exam_grade"`
	ExamWeight         *float64 `json:"exam_weight,omitempty" yaml:"exam_weight"`
	AvgFinalGrade      *float64 `json:"avg_final_grade,omitempty" yaml:"avg_final_grade"`
	Seats              *float64 `json:"seats,omitempty" yaml:"seats"`
	Enrollments        *float64 `json:"enrollments,omitempty" yaml:"enrollments"`
	Outcomes           []string `json:"course_outcomes" yaml:"outcomes"`
}

// DropNonFinite clears every numeric field holding NaN or an infinity, so it reads as missing.
func (s *Subject) DropNonFinite() {
	for _, f := range []**float64{
		&s.HoursPerWeek, &s.NumAssignments, &s.HoursPerAssignment, &s.AssignmentWeight,
		&s.AvgAssignmentGrade, &s.ProjectWeight, &s.AvgProjectGrade, &s.ExamCount,
		&s.AvgExamGrade, &s.ExamWeight, &s.AvgFinalGrade, &s.Seats, &s.Enrollments,
	} {
		if *f != nil && !IsFinite(*f) {
			*f = nil
		}
	}
}

// Requirement is a skill a subject expects the student to already have.
type Requirement struct {
	SubjectCode string          `json:"subject_code" yaml:"subject_code"`
	Type        RequirementType `json:"type" yaml:"type"`
	Skill       string          `json:"requirement" yaml:"requirement"`
}

// Edge is a directed subject -> related subject link (prerequisite or corequisite).
type Edge struct {
	SubjectCode string `json:"subject_code"`
	RelatedCode string `json:"related_subject_code"`
}

// CatalogData is the raw, unindexed output of a catalog loader.
type CatalogData struct {
	Subjects      []Subject
	Requirements  []Requirement
	Prerequisites []Edge
	Corequisites  []Edge
}

// GradeRecord is a student's recorded grade breakdown for a completed subject.
// The JSON names match the completed_courses_details column of profile files.
type GradeRecord struct {
	AssignmentGrade *float64 `json:"Avg Assignment Grade,omitempty" yaml:"assignment_grade"`
	ExamGrade       *float64 `json:"Avg Exam Grade,omitempty" yaml:"exam_grade"`
	ProjectGrade    *float64 `json:"Avg Project Grade,omitempty" yaml:"project_grade"`
}

// StudentProfile is the canonical, read-only view of a student used by the engine.
// Completed maps a subject code to its grade record, which may be nil.
type StudentProfile struct {
	ID                    string                  `json:"nuid"`
	ProgrammingExperience map[string]float64      `json:"programming_experience"`
	MathExperience        map[string]float64      `json:"math_experience"`
	Completed             map[string]*GradeRecord `json:"completed_courses"`
	CoreSubjects          []string                `json:"core_subjects"`
	DesiredOutcomes       []string                `json:"desired_outcomes"`
	Interests             []string                `json:"interests"`
	Semester              int                     `json:"semester"`
}

// HasCompleted reports whether the student completed the given subject.
func (p *StudentProfile) HasCompleted(code string) bool {
	_, ok := p.Completed[code]
	return ok
}

// IsCore reports whether the subject is required by the student's program.
func (p *StudentProfile) IsCore(code string) bool {
	for _, c := range p.CoreSubjects {
		if c == code {
			return true
		}
	}
	return false
}

// Experience returns the skill map matching a requirement type.
func (p *StudentProfile) Experience(t RequirementType) map[string]float64 {
	switch t {
	case ProgrammingRequirement:
		return p.ProgrammingExperience
	case MathRequirement:
		return p.MathExperience
	default:
		return nil
	}
}

// RawProfile is a student profile as decoded from a file, before canonicalization.
// Completed and CompletedDetails hold whatever shape the source used:
// a JSON object or array, a comma separated string, a list, or nil.
type RawProfile struct {
	ID                    string             `yaml:"nuid"`
	ProgrammingExperience map[string]float64 `yaml:"programming_experience"`
	MathExperience        map[string]float64 `yaml:"math_experience"`
	Completed             any                `yaml:"completed_courses"`
	CompletedDetails      any                `yaml:"completed_courses_details"`
	CoreSubjects          []string           `yaml:"core_subjects"`
	DesiredOutcomes       []string           `yaml:"desired_outcomes"`
	Interests             []string           `yaml:"interests"`
	Semester              int                `yaml:"semester"`
}
