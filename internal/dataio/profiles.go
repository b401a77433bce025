package dataio

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// Profile CSV headers.
const (
	colNUID             = "NUid"
	colProgrammingExp   = "programming_experience"
	colMathExp          = "math_experience"
	colCompleted        = "completed_courses"
	colCore             = "core_subjects"
	colDesired          = "desired_outcomes"
	colCompletedDetails = "completed_courses_details"
	colInterests        = "interests"
	colSemester         = "semester"
)

const profilePrefix = "student_"

// profileExts are tried in order for each student id.
var profileExts = []string{".yaml", ".yml", ".csv"}

var studentIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ProfileDir loads student_<id> profiles from a directory.
type ProfileDir struct {
	Dir string
}

var _ contract.ProfileSource = &ProfileDir{} // Compile-time check

// NewProfileDir returns a profile source rooted at dir.
func NewProfileDir(dir string) *ProfileDir {
	return &ProfileDir{Dir: dir}
}

// LoadProfile reads the profile of one student. A missing profile wraps fs.ErrNotExist.
func (d *ProfileDir) LoadProfile(ctx context.Context, id string) (schema.RawProfile, error) {
	if err := ctx.Err(); err != nil {
		return schema.RawProfile{}, err
	}
	id = strings.TrimSpace(id)
	if !studentIDPattern.MatchString(id) {
		return schema.RawProfile{}, fmt.Errorf("invalid student id %q: %w", id, fs.ErrNotExist)
	}
	for _, ext := range profileExts {
		path := filepath.Join(d.Dir, profilePrefix+id+ext)
		raw, err := LoadProfileFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return schema.RawProfile{}, err
		}
		if raw.ID == "" {
			raw.ID = id
		}
		return raw, nil
	}
	return schema.RawProfile{}, fmt.Errorf("no profile for student %s in %s: %w", id, d.Dir, fs.ErrNotExist)
}

// ListProfiles returns every student id with a profile file, sorted.
func (d *ProfileDir) ListProfiles(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles in %s: %w", d.Dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if !slices.Contains(profileExts, strings.ToLower(ext)) || !strings.HasPrefix(name, profilePrefix) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, profilePrefix), ext)
		if studentIDPattern.MatchString(id) && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// LoadProfileFile reads one profile file, choosing the decoder by extension.
func LoadProfileFile(path string) (schema.RawProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return schema.RawProfile{}, err
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadProfileYAML(f)
	case ".csv":
		return ReadProfileCSV(f)
	default:
		return schema.RawProfile{}, fmt.Errorf("unsupported profile format: %s", path)
	}
}

// ReadProfileYAML decodes a YAML profile. completed_courses may be a list or a mapping of
// codes to grade records.
func ReadProfileYAML(r io.Reader) (schema.RawProfile, error) {
	var raw schema.RawProfile
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return raw, errors.New("profile YAML is empty")
		}
		return raw, fmt.Errorf("failed to decode profile YAML: %w", err)
	}
	return raw, nil
}

// ReadProfileCSV reads a single-row profile CSV. Experience columns and
// completed_courses_details hold JSON objects; list columns are comma separated.
func ReadProfileCSV(r io.Reader) (schema.RawProfile, error) {
	var raw schema.RawProfile

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return raw, errors.New("profile CSV is empty")
		}
		return raw, fmt.Errorf("failed to read profile header: %w", err)
	}
	record, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return raw, errors.New("profile CSV has no data row")
		}
		return raw, fmt.Errorf("failed to read profile row: %w", err)
	}
	row := csvRow{idx: headerIndex(header), record: record}

	raw.ID = row.get(colNUID)
	if raw.ProgrammingExperience, err = decodeSkills(row.get(colProgrammingExp)); err != nil {
		return raw, fmt.Errorf("%s: %w", colProgrammingExp, err)
	}
	if raw.MathExperience, err = decodeSkills(row.get(colMathExp)); err != nil {
		return raw, fmt.Errorf("%s: %w", colMathExp, err)
	}
	if s := row.get(colCompleted); s != "" {
		raw.Completed = s
	}
	if s := row.get(colCompletedDetails); s != "" {
		raw.CompletedDetails = s
	}
	raw.CoreSubjects = schema.SplitList(row.get(colCore), ",")
	raw.DesiredOutcomes = schema.SplitList(row.get(colDesired), ",")
	raw.Interests = schema.SplitList(row.get(colInterests), ",")
	if s := row.get(colSemester); s != "" {
		if raw.Semester, err = strconv.Atoi(s); err != nil {
			return raw, fmt.Errorf("%s: %w", colSemester, err)
		}
	}
	return raw, nil
}

// decodeSkills parses a JSON skill -> level object. Blank means no skills.
func decodeSkills(s string) (map[string]float64, error) {
	if s == "" || s == schema.NoneValue {
		return nil, nil
	}
	var out map[string]float64
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("invalid skill levels: %w", err)
	}
	return out, nil
}
