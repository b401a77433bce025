package core

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// NormalizeProfile canonicalizes a raw profile. Codes from Completed and CompletedDetails are
// merged; grade records come from whichever side has them, with CompletedDetails winning.
// In strict mode a malformed completed entry is an error, otherwise it is logged and kept
// without a grade record.
func NormalizeProfile(raw schema.RawProfile, strict bool) (*schema.StudentProfile, error) {
	id := strings.TrimSpace(raw.ID)
	if id == "" {
		return nil, fmt.Errorf("profile has no id: %w", ErrMalformedInput)
	}
	completed, err := NormalizeCompleted(raw.Completed, strict)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", id, err)
	}
	details, err := NormalizeCompleted(raw.CompletedDetails, strict)
	if err != nil {
		return nil, fmt.Errorf("profile %s details: %w", id, err)
	}
	for code, rec := range details {
		if rec != nil || completed[code] == nil {
			completed[code] = rec
		}
	}
	return &schema.StudentProfile{
		ID:                    id,
		ProgrammingExperience: copySkills(raw.ProgrammingExperience),
		MathExperience:        copySkills(raw.MathExperience),
		Completed:             completed,
		CoreSubjects:          schema.NormalizeCodes(raw.CoreSubjects),
		DesiredOutcomes:       trimAll(raw.DesiredOutcomes),
		Interests:             trimAll(raw.Interests),
		Semester:              max(raw.Semester, 0),
	}, nil
}

// NormalizeCompleted converts any supported completed-courses shape into the canonical map.
// Codes are uppercased and trimmed. A nil record means no grade breakdown.
func NormalizeCompleted(v any, strict bool) (map[string]*schema.GradeRecord, error) {
	out := make(map[string]*schema.GradeRecord)
	switch t := v.(type) {
	case nil:
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
			var decoded any
			if err := json.Unmarshal([]byte(s), &decoded); err != nil {
				if strict {
					return nil, fmt.Errorf("completed courses: %v: %w", err, ErrMalformedInput)
				}
				contract.LogWarn("Ignoring unparsable completed courses", err)
				return out, nil
			}
			return NormalizeCompleted(decoded, strict)
		}
		for _, code := range schema.SplitList(s, ",") {
			out[schema.NormalizeCode(code)] = nil
		}
	case []string:
		for _, code := range schema.NormalizeCodes(t) {
			out[code] = nil
		}
	case []any:
		for _, item := range t {
			if err := addCompletedItem(out, item, strict); err != nil {
				return nil, err
			}
		}
	case map[string]*schema.GradeRecord:
		for code, rec := range t {
			if code = schema.NormalizeCode(code); code != "" {
				out[code] = rec
			}
		}
	case map[string]any:
		for code, raw := range t {
			code = schema.NormalizeCode(code)
			if code == "" {
				continue
			}
			rec, err := toGradeRecord(raw, strict)
			if err != nil {
				return nil, fmt.Errorf("completed course %s: %w", code, err)
			}
			out[code] = rec
		}
	default:
		err := fmt.Errorf("unsupported completed courses type %T: %w", v, ErrMalformedInput)
		if strict {
			return nil, err
		}
		contract.LogWarn("Ignoring completed courses", err)
	}
	return out, nil
}

// addCompletedItem handles one array element: a code string, or an object with a code
// and optional grade fields.
func addCompletedItem(out map[string]*schema.GradeRecord, item any, strict bool) error {
	switch t := item.(type) {
	case string:
		if code := schema.NormalizeCode(t); code != "" {
			out[code] = nil
		}
		return nil
	case map[string]any:
		var code string
		for _, key := range []string{"code", "subject_code"} {
			if s, ok := t[key].(string); ok {
				code = schema.NormalizeCode(s)
				break
			}
		}
		if code != "" {
			rec, err := toGradeRecord(t, strict)
			if err != nil {
				return fmt.Errorf("completed course %s: %w", code, err)
			}
			out[code] = rec
			return nil
		}
	}
	err := fmt.Errorf("completed course entry %v: %w", item, ErrMalformedInput)
	if strict {
		return err
	}
	contract.LogWarn("Skipping completed course entry", err)
	return nil
}

// toGradeRecord reads grade fields from an object. Keys are matched loosely so that
// "Avg Assignment Grade", "assignment_grade" and "assignment" all work.
func toGradeRecord(v any, strict bool) (*schema.GradeRecord, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		err := fmt.Errorf("grade record is %T, want an object: %w", v, ErrMalformedInput)
		if strict {
			return nil, err
		}
		contract.LogWarn("Dropping grade record", err)
		return nil, nil
	}
	rec := &schema.GradeRecord{}
	found := false
	for key, raw := range m {
		var dst **float64
		switch gradeKey(key) {
		case "assignment":
			dst = &rec.AssignmentGrade
		case "exam":
			dst = &rec.ExamGrade
		case "project":
			dst = &rec.ProjectGrade
		default:
			continue
		}
		f, ok := toFloat(raw)
		if !ok {
			err := fmt.Errorf("grade %q is not a number: %w", key, ErrMalformedInput)
			if strict {
				return nil, err
			}
			contract.LogWarn("Ignoring grade", err)
			continue
		}
		*dst = schema.Float(f)
		found = true
	}
	if !found {
		return nil, nil
	}
	return rec, nil
}

func gradeKey(key string) string {
	k := strings.ToLower(key)
	k = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(k)
	k = strings.TrimPrefix(k, "avg")
	return strings.TrimSuffix(k, "grade")
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func copySkills(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	maps.Copy(out, m)
	return out
}

func trimAll(items []string) []string {
	var out []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
