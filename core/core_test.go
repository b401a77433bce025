package core

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// testCatalogData is a four-subject catalog. CS6140 requires CS5800; CS5200 has a corequisite.
func testCatalogData() schema.CatalogData {
	f := schema.Float
	return schema.CatalogData{
		Subjects: []schema.Subject{
			{
				Code: "CS5010", Name: "Programming Design Paradigm",
				HoursPerWeek: f(10), NumAssignments: f(5), HoursPerAssignment: f(4),
				AssignmentWeight: f(0.5), AvgAssignmentGrade: f(85),
				ProjectWeight: f(0.2), AvgProjectGrade: f(90),
				ExamCount: f(2), AvgExamGrade: f(80), ExamWeight: f(0.3),
				Seats: f(100), Enrollments: f(50),
				Outcomes: []string{"software design", "java programming"},
			},
			{
				Code: "CS5800", Name: "Algorithms",
				HoursPerWeek: f(12), NumAssignments: f(8), HoursPerAssignment: f(5),
				AssignmentWeight: f(0.4), AvgAssignmentGrade: f(80),
				ExamCount: f(2), AvgExamGrade: f(70), ExamWeight: f(0.6),
				Seats: f(50), Enrollments: f(50),
				Outcomes: []string{"algorithms", "data structures"},
			},
			{
				Code: "CS6140", Name: "Machine Learning",
				HoursPerWeek: f(15), NumAssignments: f(6), HoursPerAssignment: f(8),
				AssignmentWeight: f(0.5), AvgAssignmentGrade: f(82),
				ProjectWeight: f(0.3), AvgProjectGrade: f(88),
				ExamCount: f(1), AvgExamGrade: f(75), ExamWeight: f(0.2),
				Seats: f(40), Enrollments: f(10),
				Outcomes: []string{"machine learning", "data analytics"},
			},
			{
				Code: "CS5200", Name: "Database Management Systems",
				HoursPerWeek: f(8), NumAssignments: f(4), HoursPerAssignment: f(3),
				AssignmentWeight: f(0.6), AvgAssignmentGrade: f(90),
				ExamCount: f(1), AvgExamGrade: f(85), ExamWeight: f(0.4),
				Seats: f(60), Enrollments: f(30),
				Outcomes: []string{"database design", "sql"},
			},
		},
		Requirements: []schema.Requirement{
			{SubjectCode: "CS5010", Type: schema.ProgrammingRequirement, Skill: "Java"},
			{SubjectCode: "CS5800", Type: schema.MathRequirement, Skill: "Discrete Mathematics"},
			{SubjectCode: "CS6140", Type: schema.ProgrammingRequirement, Skill: "Python"},
			{SubjectCode: "CS6140", Type: schema.MathRequirement, Skill: "Statistics"},
			{SubjectCode: "CS5200", Type: schema.ProgrammingRequirement, Skill: "SQL"},
		},
		Prerequisites: []schema.Edge{{SubjectCode: "CS6140", RelatedCode: "CS5800"}},
		Corequisites:  []schema.Edge{{SubjectCode: "CS5200", RelatedCode: "CS5010"}},
	}
}

func testProfile() *schema.StudentProfile {
	return &schema.StudentProfile{
		ID:                    "001",
		ProgrammingExperience: map[string]float64{"Python": 3, "Java": 2},
		MathExperience:        map[string]float64{"Statistics": 2},
		Completed: map[string]*schema.GradeRecord{
			"CS5010": {AssignmentGrade: schema.Float(88), ExamGrade: schema.Float(79)},
		},
		CoreSubjects:    []string{"CS5800"},
		DesiredOutcomes: []string{"algorithms", "machine learning"},
		Interests:       []string{"data"},
		Semester:        4,
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	catalog, err := NewCatalog(testCatalogData())
	require.NoError(t, err)
	return NewEngine(catalog, schema.GetDefaultEngineParams())
}

func codesOf(subjects []schema.ScoredSubject) []string {
	out := make([]string, len(subjects))
	for i, s := range subjects {
		out[i] = s.SubjectCode
	}
	return out
}

// memProfiles is an in-memory profile source.
type memProfiles map[string]schema.RawProfile

func (m memProfiles) LoadProfile(ctx context.Context, id string) (schema.RawProfile, error) {
	if err := ctx.Err(); err != nil {
		return schema.RawProfile{}, err
	}
	p, ok := m[id]
	if !ok {
		return schema.RawProfile{}, fmt.Errorf("profile %s: %w", id, fs.ErrNotExist)
	}
	return p, nil
}

func (m memProfiles) ListProfiles(context.Context) ([]string, error) {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

var _ contract.ProfileSource = memProfiles{} // Compile-time check

func testRawProfile() schema.RawProfile {
	return schema.RawProfile{
		ID:                    "001",
		ProgrammingExperience: map[string]float64{"Python": 3, "Java": 2},
		MathExperience:        map[string]float64{"Statistics": 2},
		Completed:             "CS5010",
		CompletedDetails:      `{"CS5010": {"Avg Assignment Grade": 88, "Avg Exam Grade": 79}}`,
		CoreSubjects:          []string{"CS5800"},
		DesiredOutcomes:       []string{"algorithms", "machine learning"},
		Interests:             []string{"data"},
		Semester:              4,
	}
}

const testCatalogYAML = `subjects:
  - code: CS5800
    name: Algorithms
    hours_per_week: 12
    num_assignments: 8
    hours_per_assignment: 5
    assignment_weight: 0.4
    exam_count: 2
    avg_exam_grade: 70
    exam_weight: 0.6
    seats: 50
    enrollments: 50
    outcomes: [algorithms, data structures]
    math: [Discrete Mathematics]
  - code: CS5200
    name: Database Management Systems
    hours_per_week: 8
    assignment_weight: 0.6
    avg_assignment_grade: 90
    seats: 60
    enrollments: 30
    outcomes: [database design, sql]
    programming: [SQL]
`

const testProfileYAML = `nuid: "001"
programming_experience:
  Python: 3
  SQL: 1
math_experience:
  Discrete Mathematics: 2
completed_courses: []
core_subjects: [CS5800]
desired_outcomes: [algorithms]
interests: [data]
semester: 2
`

// writeTestData lays out a catalog file and one profile, returning a config pointing at them.
func writeTestData(t *testing.T, catalogYAML string) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	students := filepath.Join(dir, "students")
	require.NoError(t, os.MkdirAll(students, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "subjects.yaml"), []byte(catalogYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(students, "student_001.yaml"), []byte(testProfileYAML), 0o644))

	params := schema.GetDefaultEngineParams()
	return &contract.Config{
		CatalogPath: dir,
		ProfilesDir: students,
		Output:      schema.JSONOut,
		OutputFile:  filepath.Join(dir, "out.json"),
		Precision:   3,
		ResultLimit: 10,
		Workers:     2,
		Rounds:      2,
		Burnout:     params.Burnout,
		Utility:     params.Utility,
		Thresholds:  params.Thresholds,
	}
}
