package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/internal/parquet"
	"github.com/huangsam/courseload/schema"
)

// recommendationList pairs a partition with its ranked subjects.
type recommendationList struct {
	partition schema.Partition
	title     string
	subjects  []schema.ScoredSubject
}

func recommendationLists(result schema.RecommendationResult) []recommendationList {
	return []recommendationList{
		{schema.RecommendedPartition, "🎯 Recommended Courses", result.Recommended},
		{schema.CompetitivePartition, "⚔️  Highly Competitive Courses", result.Competitive},
	}
}

// PrintRecommendations outputs both recommendation lists, dispatching based on the output format configured.
func PrintRecommendations(studentID string, result schema.RecommendationResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtOptional := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecommendationsJSON(w, studentID, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecommendationsCSV(w, result, fmtFloat, fmtOptional)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(ConvertRecommendations(result), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecommendationsText(w, studentID, result, cfg, fmtFloat, fmtOptional, duration)
		}, "Wrote table")
	}
}

// ConvertRecommendations flattens both lists into Parquet rows.
func ConvertRecommendations(result schema.RecommendationResult) []parquet.CandidateRow {
	out := make([]parquet.CandidateRow, 0, result.Len())
	for _, list := range recommendationLists(result) {
		for i, s := range list.subjects {
			out = append(out, parquet.CandidateRow{
				Partition:    string(list.partition),
				Rank:         int32(i + 1),
				SubjectCode:  s.SubjectCode,
				Name:         s.Name,
				MatchScore:   s.MatchScore,
				Likelihood:   s.Likelihood,
				BurnoutScore: s.BurnoutScore,
				UtilityScore: s.UtilityScore,
				IsCore:       s.IsCore,
				Reasons:      strings.Join(s.Reasons, "|"),
			})
		}
	}
	return out
}

func writeRecommendationsJSON(w io.Writer, studentID string, result schema.RecommendationResult) error {
	type jsonResult struct {
		StudentID   string                         `json:"nuid"`
		Recommended []schema.EnrichedScoredSubject `json:"recommended_courses"`
		Competitive []schema.EnrichedScoredSubject `json:"highly_competitive_courses"`
	}
	return writeJSON(w, jsonResult{
		StudentID:   studentID,
		Recommended: schema.EnrichScoredSubjects(result.Recommended),
		Competitive: schema.EnrichScoredSubjects(result.Competitive),
	})
}

func writeRecommendationsCSV(w io.Writer, result schema.RecommendationResult, fmtFloat func(float64) string, fmtOptional func(*float64) string) error {
	header := []string{
		"list_name", "rank", "subject_code", "name", "match_score", "likelihood",
		"burnout_score", "burnout_label", "utility_score", "enrollment_label", "is_core", "reasons",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, list := range recommendationLists(result) {
			for i, s := range list.subjects {
				rec := []string{
					string(list.partition),
					strconv.Itoa(i + 1),
					s.SubjectCode,
					s.Name,
					fmtFloat(s.MatchScore),
					fmtFloat(s.Likelihood),
					fmtOptional(s.BurnoutScore),
					schema.GetOptionalBurnoutLabel(s.BurnoutScore),
					fmtOptional(s.UtilityScore),
					schema.GetEnrollmentLabel(s.Seats, s.Enrollments),
					strconv.FormatBool(s.IsCore),
					strings.Join(s.Reasons, "|"),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func writeRecommendationsText(w io.Writer, studentID string, result schema.RecommendationResult, cfg *contract.Config, fmtFloat func(float64) string, fmtOptional func(*float64) string, duration time.Duration) error {
	if _, err := fmt.Fprintf(w, "Recommendations for student %s\n\n", studentID); err != nil {
		return err
	}
	for _, list := range recommendationLists(result) {
		if err := writeCandidateTable(w, list, cfg, fmtFloat, fmtOptional); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Ranked %d subjects in %v\n", result.Len(), duration); err != nil {
		return err
	}
	return nil
}

// writeCandidateTable renders one list under its title, or a placeholder line when it is empty.
func writeCandidateTable(w io.Writer, list recommendationList, cfg *contract.Config, fmtFloat func(float64) string, fmtOptional func(*float64) string) error {
	if _, err := fmt.Fprintf(w, "%s\n", list.title); err != nil {
		return err
	}
	if len(list.subjects) == 0 {
		_, err := fmt.Fprintf(w, "  (none)\n\n")
		return err
	}

	table := tablewriter.NewWriter(w)
	headers := []string{"Rank", "Code", "Subject", "Match", "Likelihood", "Burnout", "Label", "Seats", "Core"}
	fixed := 85
	if cfg.Detail {
		headers = append(headers, "Utility", "Reasons")
		fixed += 50
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg, fixed)
	shown := list.subjects
	if cfg.ResultLimit > 0 && len(shown) > cfg.ResultLimit {
		shown = shown[:cfg.ResultLimit]
	}

	var data [][]string
	for i, s := range shown {
		label := schema.GetOptionalBurnoutLabel(s.BurnoutScore)
		if s.BurnoutScore != nil {
			label = contract.GetColorLabel(*s.BurnoutScore)
		}
		core := ""
		if s.IsCore {
			core = "yes"
		}
		row := []string{
			strconv.Itoa(i + 1),
			s.SubjectCode,
			contract.TruncateText(s.Name, nameWidth),
			fmtFloat(s.MatchScore),
			fmtFloat(s.Likelihood),
			fmtOptional(s.BurnoutScore),
			label,
			contract.GetColorEnrollmentLabel(s.Seats, s.Enrollments),
			core,
		}
		if cfg.Detail {
			row = append(row, fmtOptional(s.UtilityScore), contract.TruncateText(strings.Join(s.Reasons, "; "), 50))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}
