package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// BatchSummary is the outcome of scoring one student in a batch.
type BatchSummary struct {
	StudentID string
	Rows      []schema.BurnoutScore
	Err       error
}

// batchSummaryRow is the flattened, serializable form of a BatchSummary.
type batchSummaryRow struct {
	StudentID   string  `json:"nuid" parquet:"nuid,snappy"`
	Subjects    int32   `json:"subjects" parquet:"subjects,snappy"`
	LowestCode  string  `json:"lowest_code" parquet:"lowest_code,snappy"`
	Lowest      float64 `json:"lowest_burnout" parquet:"lowest_burnout,snappy"`
	HighestCode string  `json:"highest_code" parquet:"highest_code,snappy"`
	Highest     float64 `json:"highest_burnout" parquet:"highest_burnout,snappy"`
	HighRisk    int32   `json:"high_risk" parquet:"high_risk,snappy"`
	Error       string  `json:"error,omitempty" parquet:"error,snappy"`
}

// WriteBatchSummary prints one line per student of a batch scoring run.
func (ow *OutWriter) WriteBatchSummary(results []BatchSummary, cfg *contract.Config, duration time.Duration) error {
	return PrintBatchSummary(results, cfg, duration)
}

// PrintBatchSummary outputs a batch summary, dispatching based on the output format configured.
func PrintBatchSummary(results []BatchSummary, cfg *contract.Config, duration time.Duration) error {
	rows := summarizeBatch(results)
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchCSV(w, rows, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(rows, cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTable(w, rows, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// summarizeBatch reduces each student's rows to their extremes.
// Rows are sorted by burnout ascending, so the extremes are the ends.
func summarizeBatch(results []BatchSummary) []batchSummaryRow {
	out := make([]batchSummaryRow, len(results))
	for i, r := range results {
		row := batchSummaryRow{StudentID: r.StudentID, Subjects: int32(len(r.Rows))}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		if n := len(r.Rows); n > 0 {
			row.LowestCode, row.Lowest = r.Rows[0].SubjectCode, r.Rows[0].BurnoutScore
			row.HighestCode, row.Highest = r.Rows[n-1].SubjectCode, r.Rows[n-1].BurnoutScore
		}
		for _, s := range r.Rows {
			if schema.GetBurnoutLabel(s.BurnoutScore) == schema.BurnoutHigh {
				row.HighRisk++
			}
		}
		out[i] = row
	}
	return out
}

func writeBatchCSV(w io.Writer, rows []batchSummaryRow, fmtFloat func(float64) string) error {
	header := []string{"nuid", "subjects", "lowest_code", "lowest_burnout", "highest_code", "highest_burnout", "high_risk", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range rows {
			rec := []string{
				r.StudentID,
				strconv.Itoa(int(r.Subjects)),
				r.LowestCode,
				fmtFloat(r.Lowest),
				r.HighestCode,
				fmtFloat(r.Highest),
				strconv.Itoa(int(r.HighRisk)),
				r.Error,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeBatchTable(w io.Writer, rows []batchSummaryRow, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Student", "Subjects", "Lowest", "Highest", "High Risk", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	failed := 0
	var data [][]string
	for _, r := range rows {
		status := "ok"
		if r.Error != "" {
			failed++
			status = contract.TruncateText(r.Error, 40)
		}
		data = append(data, []string{
			r.StudentID,
			strconv.Itoa(int(r.Subjects)),
			fmt.Sprintf("%s %s", fmtFloat(r.Lowest), r.LowestCode),
			fmt.Sprintf("%s %s", fmtFloat(r.Highest), r.HighestCode),
			strconv.Itoa(int(r.HighRisk)),
			status,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Scored %d students (%d failed) in %v with %d workers\n", len(rows)-failed, failed, duration, cfg.Workers)
	return err
}
