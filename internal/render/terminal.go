// Package render renders a model.UnifiedAnalysis to terminal and JSON
// output (§6's Result schema). The terminal renderer keeps the teacher's
// hierarchical, threshold-colored style (internal/output/terminal.go:
// fatih/color, green/yellow/red bands, NO_COLOR respected by the color
// package itself) generalized from ARS's 0-10 category scores to
// debtmap's 0-100 unified debt score per item.
package render

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/ingo/debtmap-go/pkg/model"
)

// Score bands for terminal coloring of a DebtItem.UnifiedScore (0-100
// scale, matching the scale of C10's file-debt-item score>50.0 gate).
const (
	scoreRedMin    = 75.0
	scoreYellowMin = 50.0
)

func scoreColor(score float64) *color.Color {
	switch {
	case score >= scoreRedMin:
		return color.New(color.FgRed, color.Bold)
	case score >= scoreYellowMin:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

// Terminal writes a human-oriented summary of a UnifiedAnalysis: overall
// coverage, then every item of a.Items in the order given (SortItems
// ranks them by UnifiedScore, highest first), with any item that has
// IsFileLevel set labelled as a file. a.FileItems is not printed.
func Terminal(w io.Writer, a *model.UnifiedAnalysis, verbose bool) {
	if a.HasCoverageData {
		fmt.Fprintf(w, "Coverage ratio: %.1f%%\n", a.OverallCoverageRatio*100)
	} else {
		fmt.Fprintln(w, "Coverage: not configured")
	}
	fmt.Fprintf(w, "Debt items: %s\n\n", humanize.Comma(int64(len(a.Items))))

	for i, item := range a.Items {
		c := scoreColor(item.UnifiedScore)
		label := item.Location.Name
		if item.IsFileLevel {
			label = fmt.Sprintf("%s (file)", item.Location.FilePath)
		} else {
			label = fmt.Sprintf("%s:%d %s", item.Location.FilePath, item.Location.Line, label)
		}
		c.Fprintf(w, "%2d. [%5.1f] %s\n", i+1, item.UnifiedScore, label)
		fmt.Fprintf(w, "    %s — %s\n", item.DebtType, item.Recommendation.PrimaryAction)
		if item.GodObjectIndicator != nil {
			fmt.Fprintf(w, "    god object: %d functions, %d lines\n",
				item.GodObjectIndicator.FunctionCount, item.GodObjectIndicator.TotalLines)
		}
		if verbose {
			fmt.Fprintf(w, "    why: %s\n", item.Recommendation.Why)
			fmt.Fprintf(w, "    tests recommended: %d, effort: %.1fh\n",
				item.TestsRecommended, item.Recommendation.EffortHours)
		}
	}

	fmt.Fprintf(w, "\nTotals: complexity reduction %.1f, coverage gain %.1f, risk reduction %.1f\n",
		a.TotalComplexityReduction, a.TotalCoverageGain, a.TotalRiskReduction)
}
