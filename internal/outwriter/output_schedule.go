package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// scheduleRow is the Parquet form of one schedule slot.
type scheduleRow struct {
	Slot        string `parquet:"slot,snappy"`
	SubjectCode string `parquet:"subject_code,snappy"`
	Name        string `parquet:"name,snappy"`
	Utility     string `parquet:"utility,snappy"`
}

// sessionRow is the Parquet form of one subject offered during a session.
type sessionRow struct {
	Round       int32   `parquet:"round,snappy"`
	Partition   string  `parquet:"list_name,snappy,dict"`
	Rank        int32   `parquet:"rank,snappy"`
	SubjectCode string  `parquet:"subject_code,snappy"`
	Name        string  `parquet:"name,snappy"`
	MatchScore  float64 `parquet:"match_score,snappy"`
	Likelihood  float64 `parquet:"likelihood,snappy"`
	IsCore      bool    `parquet:"is_core,snappy"`
}

// PrintSchedule outputs a final schedule, dispatching based on the output format configured.
func PrintSchedule(studentID string, schedule schema.Schedule, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				StudentID string          `json:"nuid"`
				Schedule  schema.Schedule `json:"schedule"`
			}{studentID, schedule})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScheduleCSV(w, schedule)
		}, "Wrote CSV")
	case schema.ParquetOut:
		rows := make([]scheduleRow, len(schedule.Entries))
		for i, e := range schedule.Entries {
			rows[i] = scheduleRow{Slot: e.Slot, SubjectCode: e.SubjectCode, Name: e.Name, Utility: e.Utility}
		}
		return writeParquet(rows, cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScheduleText(w, studentID, schedule)
		}, "Wrote text")
	}
}

func writeScheduleCSV(w io.Writer, schedule schema.Schedule) error {
	header := []string{"slot", "subject_code", "name", "utility", "descriptor"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, e := range schedule.Entries {
			if err := cw.Write([]string{e.Slot, e.SubjectCode, e.Name, e.Utility, e.Descriptor}); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeScheduleText(w io.Writer, studentID string, schedule schema.Schedule) error {
	if _, err := fmt.Fprintf(w, "📅 Final Schedule for student %s\n", studentID); err != nil {
		return err
	}
	if len(schedule.Entries) == 0 {
		_, err := fmt.Fprintf(w, "  No subjects selected yet\n")
		return err
	}
	for _, e := range schedule.Entries {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", e.Slot, e.Descriptor); err != nil {
			return err
		}
	}
	return nil
}

// PrintSession outputs every round of a session followed by the schedule it produced.
func PrintSession(studentID string, rounds []schema.RoundResult, schedule schema.Schedule, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtOptional := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, struct {
				StudentID string               `json:"nuid"`
				Rounds    []schema.RoundResult `json:"rounds"`
				Schedule  schema.Schedule      `json:"schedule"`
			}{studentID, rounds, schedule})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSessionCSV(w, rounds, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeParquet(convertSessionRounds(rounds), cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			for _, r := range rounds {
				if _, err := fmt.Fprintf(w, "🔁 Round %d (interests: %s)\n\n", r.Round, strings.Join(r.Interests, ", ")); err != nil {
					return err
				}
				if !r.HasResults() {
					if _, err := fmt.Fprintf(w, "  No new subjects this round\n\n"); err != nil {
						return err
					}
					continue
				}
				res := schema.RecommendationResult{Recommended: r.Recommended, Competitive: r.Competitive}
				for _, list := range recommendationLists(res) {
					if err := writeCandidateTable(w, list, cfg, fmtFloat, fmtOptional); err != nil {
						return err
					}
				}
			}
			if err := writeScheduleText(w, studentID, schedule); err != nil {
				return err
			}
			_, err := fmt.Fprintf(w, "Session of %d rounds completed in %v\n", len(rounds), duration)
			return err
		}, "Wrote text")
	}
}

func convertSessionRounds(rounds []schema.RoundResult) []sessionRow {
	var out []sessionRow
	for _, r := range rounds {
		res := schema.RecommendationResult{Recommended: r.Recommended, Competitive: r.Competitive}
		for _, list := range recommendationLists(res) {
			for i, s := range list.subjects {
				out = append(out, sessionRow{
					Round:       int32(r.Round),
					Partition:   string(list.partition),
					Rank:        int32(i + 1),
					SubjectCode: s.SubjectCode,
					Name:        s.Name,
					MatchScore:  s.MatchScore,
					Likelihood:  s.Likelihood,
					IsCore:      s.IsCore,
				})
			}
		}
	}
	return out
}

func writeSessionCSV(w io.Writer, rounds []schema.RoundResult, fmtFloat func(float64) string) error {
	header := []string{"round", "list_name", "rank", "subject_code", "name", "match_score", "likelihood", "is_core"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range convertSessionRounds(rounds) {
			rec := []string{
				strconv.Itoa(int(row.Round)),
				row.Partition,
				strconv.Itoa(int(row.Rank)),
				row.SubjectCode,
				row.Name,
				fmtFloat(row.MatchScore),
				fmtFloat(row.Likelihood),
				strconv.FormatBool(row.IsCore),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
