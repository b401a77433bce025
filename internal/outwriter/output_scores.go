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

// PrintBurnoutScores outputs a burnout table, dispatching based on the output format configured.
func PrintBurnoutScores(table *schema.ScoreTable, cfg *contract.Config, duration time.Duration) error {
	if table == nil {
		table = &schema.ScoreTable{}
	}
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBurnoutJSON(w, table)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBurnoutCSV(w, table.Rows, cfg.Detail, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(ConvertBurnoutScores(table.Rows), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBurnoutTable(w, table, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// ConvertBurnoutScores converts burnout rows to their Parquet form.
func ConvertBurnoutScores(rows []schema.BurnoutScore) []parquet.BurnoutRow {
	out := make([]parquet.BurnoutRow, len(rows))
	for i, r := range rows {
		out[i] = parquet.BurnoutRow{
			Rank:                   int32(i + 1),
			SubjectCode:            r.SubjectCode,
			SubjectName:            r.SubjectName,
			BurnoutScore:           r.BurnoutScore,
			Label:                  schema.GetBurnoutLabel(r.BurnoutScore),
			Utility:                r.Utility,
			PrerequisitesSatisfied: r.PrerequisitesSatisfied,
			Prerequisites:          strings.Join(r.Prerequisites, "|"),
		}
	}
	return out
}

// writeBurnoutJSON writes the table with rank and label added to each row.
func writeBurnoutJSON(w io.Writer, table *schema.ScoreTable) error {
	type jsonTable struct {
		StudentID   string                        `json:"nuid"`
		GeneratedAt time.Time                     `json:"generated_at"`
		Scores      []schema.EnrichedBurnoutScore `json:"scores"`
	}
	return writeJSON(w, jsonTable{
		StudentID:   table.StudentID,
		GeneratedAt: table.GeneratedAt,
		Scores:      schema.EnrichBurnoutScores(table.Rows),
	})
}

// writeBurnoutCSV writes one record per burnout row.
func writeBurnoutCSV(w io.Writer, rows []schema.BurnoutScore, detail bool, fmtFloat func(float64) string) error {
	header := []string{"rank", "subject_code", "subject_name", "burnout_score", "label", "utility", "prerequisites_satisfied", "prerequisites"}
	if detail {
		header = append(header, "workload", "mismatch", "stress", "combined", "corequisites")
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range rows {
			rec := []string{
				strconv.Itoa(i + 1),
				r.SubjectCode,
				r.SubjectName,
				fmtFloat(r.BurnoutScore),
				schema.GetBurnoutLabel(r.BurnoutScore),
				fmtFloat(r.Utility),
				strconv.FormatBool(r.PrerequisitesSatisfied),
				strings.Join(r.Prerequisites, "|"),
			}
			if detail {
				rec = append(rec, breakdownCells(r.Factors, fmtFloat)...)
				rec = append(rec, strings.Join(r.Corequisites, "|"))
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeBurnoutTable generates and writes the human-readable table.
func writeBurnoutTable(w io.Writer, st *schema.ScoreTable, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	headers := []string{"Rank", "Code", "Subject", "Burnout", "Label", "Utility", "Prereqs"}
	fixed := 60
	if cfg.Detail {
		headers = append(headers, "W'", "M'", "S'", "Z", "Coreqs")
		fixed += 55
	}
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg, fixed)
	shown := st.Rows
	if cfg.ResultLimit > 0 && len(shown) > cfg.ResultLimit {
		shown = shown[:cfg.ResultLimit]
	}

	var data [][]string
	for i, r := range shown {
		row := []string{
			strconv.Itoa(i + 1),
			r.SubjectCode,
			contract.TruncateText(r.SubjectName, nameWidth),
			fmtFloat(r.BurnoutScore),
			contract.GetColorLabel(r.BurnoutScore),
			fmtFloat(r.Utility),
			prereqCell(r),
		}
		if cfg.Detail {
			row = append(row, breakdownCells(r.Factors, fmtFloat)...)
			row = append(row, strings.Join(r.Corequisites, ", "))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing %d of %d subjects for student %s\n", len(shown), len(st.Rows), st.StudentID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Scored in %v. Table backend: %s\n", duration, cfg.TableBackend); err != nil {
		return err
	}
	return nil
}

// prereqCell summarizes the prerequisite state of a row.
func prereqCell(r schema.BurnoutScore) string {
	if len(r.Prerequisites) == 0 {
		return "-"
	}
	if r.PrerequisitesSatisfied {
		return "met"
	}
	return "missing"
}

// breakdownCells renders W', M', S' and Z, or blanks when the row carries no factors.
func breakdownCells(f *schema.BurnoutBreakdown, fmtFloat func(float64) string) []string {
	if f == nil {
		return []string{"", "", "", ""}
	}
	return []string{fmtFloat(f.Workload), fmtFloat(f.Mismatch), fmtFloat(f.Stress), fmtFloat(f.Combined)}
}
