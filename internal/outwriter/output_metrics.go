package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// PrintMetricsDefinitions displays the formal definitions of the scoring model.
// This is a static display that does not load any catalog.
func PrintMetricsDefinitions(params schema.EngineParams, cfg *contract.Config) error {
	renderModel := buildMetricsRenderModel(params)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, renderModel)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsCSV(w, renderModel)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for metric definitions")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsText(w, renderModel)
		}, "Wrote text")
	}
}

// buildMetricsRenderModel constructs the render model with the active parameters substituted in.
func buildMetricsRenderModel(params schema.EngineParams) *schema.MetricsRenderModel {
	b, u := params.Burnout, params.Utility
	weights := b.Weights
	if weights == nil {
		weights = schema.GetDefaultWeights()
	}
	scale := b.ProficiencyScale
	if scale <= 0 {
		scale = schema.DefaultProficiencyScale
	}
	w1, w2, w3 := weights[schema.BreakdownWorkload], weights[schema.BreakdownMismatch], weights[schema.BreakdownStress]

	formulas := []schema.MetricsFormula{
		{
			Name:    "workload",
			Purpose: "Time and assessment load relative to the heaviest catalog subject",
			Formula: "W' = log(1 + H/Hmax) + A/Amax + P/Pmax + E/Emax",
		},
		{
			Name:    "mismatch",
			Purpose: "Gap between required skills and the student's proficiency",
			Formula: fmt.Sprintf("M' = mean(1 - clamp(level/%.1f, 0, 1)) over requirements", scale),
		},
		{
			Name:    "stress",
			Purpose: "Weighted squared shortfall of past assignment, exam and project grades",
			Formula: fmt.Sprintf("S' = sum(w_c * ((100 - g_c)/100)^2) / sum(w_c), missing grade = %.0f", schema.DefaultGrade),
		},
		{
			Name:    "burnout",
			Purpose: "Probability of burnout from the combined factors",
			Formula: fmt.Sprintf("Z = %.2f*W' + %.2f*M' + %.2f*S'; P = 1 / (1 + exp(-%.2f*(Z - %.2f)))", w1, w2, w3, b.K, b.P0),
		},
		{
			Name:    "utility",
			Purpose: "Overall value of taking a subject",
			Formula: fmt.Sprintf("U = %.2f*OAS + %.2f*(1 - P) - %.2f*penalty", u.Alpha, u.Beta, u.Delta),
		},
		{
			Name:    "match",
			Purpose: "Interest match used to rank recommendations",
			Formula: "title +0.4, outcomes +0.3, keyword +0.2; unmet prereqs x0.5; core +0.5",
		},
	}

	notes := []string{
		fmt.Sprintf("Subjects need a match score above %.2f unless they are core", params.Thresholds.Match),
		fmt.Sprintf("Likelihood below %.2f lands in the highly competitive list", params.Thresholds.Competitive),
	}
	if scale < schema.IntakeProficiencyMax {
		notes = append(notes, fmt.Sprintf("Proficiency scale %.1f is below the intake maximum %.0f; higher levels saturate", scale, schema.IntakeProficiencyMax))
	}

	return &schema.MetricsRenderModel{
		Title:       "Courseload Scoring Model",
		Description: "Burnout is a sigmoid over weighted, normalized workload, mismatch and stress",
		Formulas:    formulas,
		Parameters: map[string]float64{
			"w1":                w1,
			"w2":                w2,
			"w3":                w3,
			"k":                 b.K,
			"p0":                b.P0,
			"proficiency_scale": scale,
			"alpha":             u.Alpha,
			"beta":              u.Beta,
			"delta":             u.Delta,
			"match":             params.Thresholds.Match,
			"competitive":       params.Thresholds.Competitive,
			"max_burnout":       params.Thresholds.MaxBurnout,
		},
		Notes: notes,
	}
}

func writeMetricsText(w io.Writer, m *schema.MetricsRenderModel) error {
	if _, err := fmt.Fprintf(w, "📐 %s\n==========================\n\n%s\n\n", m.Title, m.Description); err != nil {
		return err
	}
	for _, f := range m.Formulas {
		if _, err := fmt.Fprintf(w, "%s: %s\n   %s\n\n", f.Name, f.Purpose, f.Formula); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "⚙️  Parameters\n"); err != nil {
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(m.Parameters)) {
		if _, err := fmt.Fprintf(w, "   %-18s %.3f\n", k, m.Parameters[k]); err != nil {
			return err
		}
	}
	for _, n := range m.Notes {
		if _, err := fmt.Fprintf(w, "\n%s", n); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeMetricsCSV(w io.Writer, m *schema.MetricsRenderModel) error {
	return writeCSVWithHeader(w, []string{"name", "purpose", "formula"}, func(cw *csv.Writer) error {
		for _, f := range m.Formulas {
			if err := cw.Write([]string{f.Name, f.Purpose, f.Formula}); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
