package core

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/internal/dataio"
	"github.com/huangsam/courseload/schema"
)

// maxIssuesShown caps how many issues of one severity are printed.
const maxIssuesShown = 10

// CheckCatalog validates raw catalog data. It reports duplicate or empty codes, dangling
// prerequisite and corequisite references, negative seat counts and weights outside [0,1]
// as errors. Unknown skills and requirements on missing subjects are warnings.
func CheckCatalog(data schema.CatalogData) schema.CheckResult {
	result := schema.CheckResult{TotalSubjects: len(data.Subjects)}
	add := func(code, severity, format string, args ...any) {
		result.Issues = append(result.Issues, schema.CheckIssue{
			SubjectCode: code,
			Severity:    severity,
			Message:     fmt.Sprintf(format, args...),
		})
	}

	known := make(map[string]struct{}, len(data.Subjects))
	for _, s := range data.Subjects {
		code := schema.NormalizeCode(s.Code)
		if code == "" {
			add("", schema.SeverityError, "subject %q has an empty code", s.Name)
			continue
		}
		if _, dup := known[code]; dup {
			add(code, schema.SeverityError, "duplicate subject code")
			continue
		}
		known[code] = struct{}{}

		for _, f := range []struct {
			name string
			v    *float64
		}{{"seats", s.Seats}, {"enrollments", s.Enrollments}} {
			if f.v != nil && *f.v < 0 {
				add(code, schema.SeverityError, "%s is negative (%g)", f.name, *f.v)
			}
		}
		for _, f := range []struct {
			name string
			v    *float64
		}{{"assignment_weight", s.AssignmentWeight}, {"project_weight", s.ProjectWeight}, {"exam_weight", s.ExamWeight}} {
			if f.v != nil && (math.IsNaN(*f.v) || *f.v < 0 || *f.v > 1) {
				add(code, schema.SeverityError, "%s must be within [0,1] (%g)", f.name, *f.v)
			}
		}
	}

	checkEdges := func(edges []schema.Edge, kind string) {
		for _, e := range edges {
			from, to := schema.NormalizeCode(e.SubjectCode), schema.NormalizeCode(e.RelatedCode)
			if _, ok := known[from]; !ok {
				add(from, schema.SeverityError, "%s edge from unknown subject", kind)
				continue
			}
			if _, ok := known[to]; !ok {
				add(from, schema.SeverityError, "%s %s is not in the catalog", kind, to)
			}
			if from == to {
				add(from, schema.SeverityError, "subject lists itself as a %s", kind)
			}
		}
	}
	checkEdges(data.Prerequisites, "prerequisite")
	checkEdges(data.Corequisites, "corequisite")

	for _, r := range data.Requirements {
		code := schema.NormalizeCode(r.SubjectCode)
		if _, ok := known[code]; !ok {
			add(code, schema.SeverityWarning, "requirement %q for unknown subject", r.Skill)
			continue
		}
		if _, ok := schema.ValidRequirementTypes[r.Type]; !ok {
			add(code, schema.SeverityWarning, "requirement type %q is not recognized", r.Type)
			continue
		}
		if !schema.IsKnownSkill(r.Type, r.Skill) {
			add(code, schema.SeverityWarning, "%s skill %q is outside the known vocabulary", r.Type, r.Skill)
		}
	}

	result.Passed = result.Errors() == 0
	return result
}

// CheckBurnoutGate fails the result when any of the student's burnout scores exceeds maxBurnout.
func CheckBurnoutGate(result *schema.CheckResult, e *Engine, p *schema.StudentProfile, maxBurnout float64) error {
	rows, err := e.ComputeBurnoutScores(p)
	if err != nil {
		return err
	}
	result.StudentID = p.ID
	result.MaxBurnout = maxBurnout
	for _, r := range rows {
		if r.BurnoutScore > result.WorstBurnout || result.WorstSubject == "" {
			result.WorstSubject = r.SubjectCode
			result.WorstBurnout = r.BurnoutScore
		}
		if r.BurnoutScore > maxBurnout {
			result.FailedScores = append(result.FailedScores, r)
		}
	}
	sort.SliceStable(result.FailedScores, func(i, j int) bool {
		return result.FailedScores[i].BurnoutScore > result.FailedScores[j].BurnoutScore
	})
	if len(result.FailedScores) > 0 {
		result.Passed = false
	}
	return nil
}

// ExecuteCheck runs the check command for CI gating. It validates the catalog and, when a
// student is configured, gates on that student's burnout scores. The gate is skipped when the
// catalog itself has errors.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	data, err := dataio.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	result := CheckCatalog(data)
	if cfg.CheckStudent != "" && result.Errors() == 0 {
		svc, err := NewServiceFromCatalog(data, cfg, mgr)
		if err != nil {
			return err
		}
		p, err := svc.Profile(ctx, cfg.CheckStudent)
		if err != nil {
			return err
		}
		if err := CheckBurnoutGate(&result, svc.Engine, p, cfg.Thresholds.MaxBurnout); err != nil {
			return err
		}
	}

	printCheckResult(&result, time.Since(start))
	if !result.Passed {
		return fmt.Errorf("check failed: %d error(s), %d score(s) above %.2f",
			result.Errors(), len(result.FailedScores), result.MaxBurnout)
	}
	return nil
}

// printCheckResult prints the check result in a concise format suitable for CI.
func printCheckResult(result *schema.CheckResult, duration time.Duration) {
	fmt.Println("Catalog Check Results:")
	fmt.Printf("  %-10s %d\n", "Subjects:", result.TotalSubjects)
	fmt.Printf("  %-10s %d error(s), %d warning(s)\n", "Issues:", result.Errors(), len(result.Issues)-result.Errors())
	if result.StudentID != "" {
		fmt.Printf("  %-10s %s (max burnout %.2f)\n", "Student:", result.StudentID, result.MaxBurnout)
	}
	fmt.Printf("Checked in %v\n\n", duration)

	printIssues(result.Issues, schema.SeverityError)
	printIssues(result.Issues, schema.SeverityWarning)

	if len(result.FailedScores) > 0 {
		fmt.Printf("❌ %d subject(s) exceed burnout %.2f\n", len(result.FailedScores), result.MaxBurnout)
		for i, r := range result.FailedScores {
			if i >= maxIssuesShown {
				fmt.Printf("  ... and %d more\n", len(result.FailedScores)-i)
				break
			}
			fmt.Printf("  - %s %s (burnout: %.3f)\n", r.SubjectCode, r.SubjectName, r.BurnoutScore)
		}
		fmt.Println()
	}

	if result.Passed {
		fmt.Println("✅ All checks passed")
		if result.StudentID != "" && result.WorstSubject != "" {
			fmt.Printf("  highest burnout: %.3f (%s)\n", result.WorstBurnout, result.WorstSubject)
		}
	}
}

func printIssues(issues []schema.CheckIssue, severity string) {
	shown := 0
	for _, i := range issues {
		if i.Severity != severity {
			continue
		}
		if shown == 0 {
			fmt.Printf("%s:\n", severity)
		}
		if shown >= maxIssuesShown {
			fmt.Println("  ... more omitted")
			break
		}
		fmt.Printf("  - %s: %s\n", displayCode(i.SubjectCode), i.Message)
		shown++
	}
	if shown > 0 {
		fmt.Println()
	}
}

func displayCode(code string) string {
	if code == "" {
		return "(none)"
	}
	return code
}
