// Package dataio loads subject catalogs and student profiles from CSV and YAML files.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// Catalog CSV headers.
const (
	colSubject       = "Subject"
	colName          = "Subject Names"
	colOutcomes      = "Course Outcomes"
	colProgramming   = "Programming Knowledge Needed"
	colMath          = "Math Requirements"
	colPrerequisite  = "Prerequisite"
	colCorequisite   = "Corequisite"
	colHours         = "Weekly Workload (hours)"
	colAssignments   = "Assignments #"
	colHoursPerAssgn = "Hours per Assignment"
	colAssgnWeight   = "Assignment Weight"
	colAssgnGrade    = "Avg Assignment Grade"
	colProjWeight    = "Project Weight"
	colProjGrade     = "Avg Project Grade"
	colExams         = "Exam #"
	colExamGrade     = "Avg Exam Grade"
	colExamWeight    = "Exam Weight"
	colFinalGrade    = "Avg Final Grade"
	colSeats         = "Seats"
	colEnrollments   = "Enrollments"
)

// listSep separates items inside a catalog list cell.
const listSep = ", "

// catalogFileNames are tried in order when the catalog path is a directory.
var catalogFileNames = []string{"subjects.yaml", "subjects.yml", "subjects.csv", "subjects_df.csv"}

// LoadCatalog reads a catalog file, or the first known catalog file inside a directory.
func LoadCatalog(path string) (schema.CatalogData, error) {
	info, err := os.Stat(path)
	if err != nil {
		return schema.CatalogData{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	if info.IsDir() {
		found := ""
		for _, name := range catalogFileNames {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				found = candidate
				break
			}
		}
		if found == "" {
			return schema.CatalogData{}, fmt.Errorf("no catalog file (%s) in %s: %w",
				strings.Join(catalogFileNames, ", "), path, fs.ErrNotExist)
		}
		path = found
	}

	f, err := os.Open(path)
	if err != nil {
		return schema.CatalogData{}, err
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadCatalogYAML(f)
	case ".csv":
		return ReadCatalogCSV(f)
	default:
		return schema.CatalogData{}, fmt.Errorf("unsupported catalog format: %s", path)
	}
}

// ReadCatalogCSV parses the wide catalog CSV with one subject per row.
// Rows without a subject code are skipped with a warning. Unparsable numbers are treated as blank.
func ReadCatalogCSV(r io.Reader) (schema.CatalogData, error) {
	var data schema.CatalogData

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return data, errors.New("catalog CSV is empty")
		}
		return data, fmt.Errorf("failed to read catalog header: %w", err)
	}
	idx := headerIndex(header)
	if _, ok := idx[colSubject]; !ok {
		return data, fmt.Errorf("catalog CSV is missing the %q column", colSubject)
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return data, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}
		row := csvRow{idx: idx, record: record}

		code := schema.NormalizeCode(row.get(colSubject))
		if code == "" {
			contract.LogWarn(fmt.Sprintf("Skipping catalog line %d", line), errors.New("missing subject code"))
			continue
		}
		data.Subjects = append(data.Subjects, schema.Subject{
			Code:               code,
			Name:               row.get(colName),
			HoursPerWeek:       row.number(colHours),
			NumAssignments:     row.number(colAssignments),
			HoursPerAssignment: row.number(colHoursPerAssgn),
			AssignmentWeight:   row.number(colAssgnWeight),
			AvgAssignmentGrade: row.number(colAssgnGrade),
			ProjectWeight:      row.number(colProjWeight),
			AvgProjectGrade:    row.number(colProjGrade),
			ExamCount:          row.number(colExams),
			AvgExamGrade:       row.number(colExamGrade),
			ExamWeight:         row.number(colExamWeight),
			AvgFinalGrade:      row.number(colFinalGrade),
			Seats:              row.number(colSeats),
			Enrollments:        row.number(colEnrollments),
			Outcomes:           schema.SplitList(row.get(colOutcomes), listSep),
		})
		data.Requirements = appendRequirements(data.Requirements, code, schema.ProgrammingRequirement, schema.SplitList(row.get(colProgramming), listSep))
		data.Requirements = appendRequirements(data.Requirements, code, schema.MathRequirement, schema.SplitList(row.get(colMath), listSep))
		data.Prerequisites = appendEdges(data.Prerequisites, code, schema.SplitList(row.get(colPrerequisite), listSep))
		data.Corequisites = appendEdges(data.Corequisites, code, schema.SplitList(row.get(colCorequisite), listSep))
	}
	return data, nil
}

// catalogDoc is the YAML catalog layout.
type catalogDoc struct {
	Subjects []subjectDoc `yaml:"subjects"`
}

type subjectDoc struct {
	schema.Subject `yaml:",inline"`
	Prerequisites  []string `yaml:"prerequisites"`
	Corequisites   []string `yaml:"corequisites"`
	Programming    []string `yaml:"programming"`
	Math           []string `yaml:"math"`
}

// ReadCatalogYAML parses a catalog document with a top-level subjects list.
func ReadCatalogYAML(r io.Reader) (schema.CatalogData, error) {
	var data schema.CatalogData
	var doc catalogDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return data, errors.New("catalog YAML is empty")
		}
		return data, fmt.Errorf("failed to decode catalog YAML: %w", err)
	}

	for i, s := range doc.Subjects {
		code := schema.NormalizeCode(s.Code)
		if code == "" {
			contract.LogWarn(fmt.Sprintf("Skipping catalog entry %d", i+1), errors.New("missing subject code"))
			continue
		}
		subject := s.Subject
		subject.Code = code
		subject.DropNonFinite()
		data.Subjects = append(data.Subjects, subject)
		data.Requirements = appendRequirements(data.Requirements, code, schema.ProgrammingRequirement, s.Programming)
		data.Requirements = appendRequirements(data.Requirements, code, schema.MathRequirement, s.Math)
		data.Prerequisites = appendEdges(data.Prerequisites, code, s.Prerequisites)
		data.Corequisites = appendEdges(data.Corequisites, code, s.Corequisites)
	}
	return data, nil
}

func appendRequirements(dst []schema.Requirement, code string, t schema.RequirementType, skills []string) []schema.Requirement {
	for _, skill := range skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			dst = append(dst, schema.Requirement{SubjectCode: code, Type: t, Skill: skill})
		}
	}
	return dst
}

func appendEdges(dst []schema.Edge, code string, related []string) []schema.Edge {
	for _, r := range related {
		if r = schema.NormalizeCode(r); r != "" && r != strings.ToUpper(schema.NoneValue) {
			dst = append(dst, schema.Edge{SubjectCode: code, RelatedCode: r})
		}
	}
	return dst
}

// headerIndex maps trimmed header names to column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}
	return idx
}

// csvRow reads cells by header name.
type csvRow struct {
	idx    map[string]int
	record []string
}

func (r csvRow) get(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// number parses a numeric cell. Blank, "None", NaN, infinities and garbage all read as missing.
func (r csvRow) number(col string) *float64 {
	s := r.get(col)
	if s == "" || s == schema.NoneValue {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !schema.IsFinite(&v) {
		return nil
	}
	return &v
}
