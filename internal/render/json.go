package render

import (
	"encoding/json"
	"io"

	"github.com/ingo/debtmap-go/pkg/model"
)

// Report is the top-level JSON output structure (§6), adapted from the
// teacher's output.JSONReport shape (version, ranked items) generalized
// from ARS's category/recommendation pair to debtmap's flat ranked
// DebtItem list plus aggregate totals.
type Report struct {
	Version              string          `json:"version"`
	HasCoverageData      bool            `json:"has_coverage_data"`
	OverallCoverageRatio float64         `json:"overall_coverage_ratio"`
	Items                []model.DebtItem `json:"items"`
	FileItems            []model.DebtItem `json:"file_items"`
	TotalComplexityReduction float64     `json:"total_complexity_reduction"`
	TotalCoverageGain        float64     `json:"total_coverage_gain"`
	TotalRiskReduction       float64     `json:"total_risk_reduction"`
}

// BuildReport converts a UnifiedAnalysis into the JSON-serializable Report.
func BuildReport(a *model.UnifiedAnalysis) *Report {
	return &Report{
		Version:                  "1",
		HasCoverageData:          a.HasCoverageData,
		OverallCoverageRatio:     a.OverallCoverageRatio,
		Items:                    a.Items,
		FileItems:                a.FileItems,
		TotalComplexityReduction: a.TotalComplexityReduction,
		TotalCoverageGain:        a.TotalCoverageGain,
		TotalRiskReduction:       a.TotalRiskReduction,
	}
}

// JSON writes the report to w with pretty-printed indentation, matching
// the teacher's output.RenderJSON encoding style.
func JSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
