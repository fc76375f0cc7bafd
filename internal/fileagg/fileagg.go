// Package fileagg implements C10, the file aggregator: it rolls
// function-level metrics up into file-level aggregates, detects god
// objects via a size gate and an optional cohesion gate, and emits
// file-level debt items cross-linked into their god-object functions
// (spec.md §4.9).
//
// Grounded on the teacher's internal/analyzer/c3_architecture, which
// already merges per-target metrics into a file/module-level view
// (mergeTargetMetrics, mergeFanoutMetrics) using the same
// group-then-reduce shape used here.
package fileagg

import (
	"sort"

	"github.com/ingo/debtmap-go/pkg/model"
)

// godObjectFunctionCountGate and godObjectLineCountGate are the size
// gate's two thresholds (§4.9): function_count > 50 OR total_lines > 2000.
const (
	godObjectFunctionCountGate = 50
	godObjectLineCountGate     = 2000

	// fileDebtItemScoreGate is the score above which a file becomes a
	// file-level DebtItem even without tripping the god-object gates.
	fileDebtItemScoreGate = 50.0
)

// FunctionInput is the per-function data the aggregator folds into a
// file's metrics; it mirrors the subset of FunctionMetrics and DebtItem
// that a file roll-up needs, so callers don't have to reconstruct a full
// FunctionMetrics just to aggregate.
type FunctionInput struct {
	ID              model.FunctionId
	Cyclomatic      int
	Length          int
	CoveragePct     float64
	CoverageKnown   bool
	UncoveredLines  int
	UnifiedScore    float64
	IsClassMethod   bool // heuristic signal for class counting
	ClassName       string
}

// CohesionProvider is the optional content gate (§4.9: "a cohesion
// analysis (optional) that can filter out files that merely contain many
// small cohesive functions"). A nil provider means the gate is not
// configured and only the size gate decides god-object status.
type CohesionProvider interface {
	// IsCohesive reports whether the functions in a file form a single
	// cohesive unit despite its size (e.g. a generated parser table).
	IsCohesive(filePath string, fns []FunctionInput) bool
}

// Aggregate computes one file's FileDebtMetrics from its functions
// (§4.9): mean/max/total complexity, total length, length-weighted
// coverage percentage, total uncovered lines, and a heuristic class
// count.
func Aggregate(filePath string, fns []FunctionInput, cohesion CohesionProvider) model.FileDebtMetrics {
	m := model.FileDebtMetrics{FilePath: filePath, FunctionCount: len(fns)}
	if len(fns) == 0 {
		return m
	}

	var totalComplexity, maxComplexity, totalLines, totalUncovered int
	var weightedCoverageSum, coverageWeightTotal float64
	classes := map[string]bool{}

	for _, f := range fns {
		totalComplexity += f.Cyclomatic
		if f.Cyclomatic > maxComplexity {
			maxComplexity = f.Cyclomatic
		}
		totalLines += f.Length
		totalUncovered += f.UncoveredLines

		if f.CoverageKnown {
			weightedCoverageSum += f.CoveragePct * float64(f.Length)
			coverageWeightTotal += float64(f.Length)
		}
		if f.IsClassMethod && f.ClassName != "" {
			classes[f.ClassName] = true
		}
	}

	m.TotalComplexity = totalComplexity
	m.MaxComplexity = maxComplexity
	m.MeanComplexity = float64(totalComplexity) / float64(len(fns))
	m.TotalLines = totalLines
	m.UncoveredLines = totalUncovered
	m.ClassCount = len(classes)
	if coverageWeightTotal > 0 {
		m.CoveragePct = weightedCoverageSum / coverageWeightTotal
	}

	m.IsGodObject = isGodObject(m, fns, cohesion)
	m.Score = fileScore(m)

	return m
}

// isGodObject implements §4.9's two gates: the size gate trips on either
// function count or total lines; the optional cohesion gate can then
// veto a size-gate trip for files that are large but cohesive.
func isGodObject(m model.FileDebtMetrics, fns []FunctionInput, cohesion CohesionProvider) bool {
	sizeGateTripped := m.FunctionCount > godObjectFunctionCountGate || m.TotalLines > godObjectLineCountGate
	if !sizeGateTripped {
		return false
	}
	if cohesion != nil && cohesion.IsCohesive(m.FilePath, fns) {
		return false
	}
	return true
}

// fileScore combines the file's aggregate complexity, coverage gap, and
// uncovered-line volume into a single 0-100 score on the same scale C9
// uses for function-level unified scores, so the file-debt-item gate
// (score > 50.0) is directly comparable.
func fileScore(m model.FileDebtMetrics) float64 {
	complexityComponent := pieceLinearFileComplexity(m.MeanComplexity)
	coverageComponent := (100 - m.CoveragePct) / 10
	if coverageComponent > 10 {
		coverageComponent = 10
	}
	sizeComponent := float64(m.FunctionCount) / float64(godObjectFunctionCountGate) * 10
	if sizeComponent > 10 {
		sizeComponent = 10
	}

	score := 0.45*complexityComponent + 0.35*coverageComponent + 0.20*sizeComponent
	return score * 10
}

// pieceLinearFileComplexity bands mean cyclomatic complexity across a
// file the same way the function-level complexity analyzer bands a
// single function (internal/risk/thresholds.go's pieceLinear), reusing
// the {5,10,20,40} default baseline anchors.
func pieceLinearFileComplexity(mean float64) float64 {
	anchors := []struct {
		x, y float64
	}{
		{0, 0}, {5, 2.5}, {10, 5}, {20, 7.5}, {40, 10},
	}
	if mean <= anchors[0].x {
		return anchors[0].y
	}
	for i := 1; i < len(anchors); i++ {
		if mean <= anchors[i].x {
			lo, hi := anchors[i-1], anchors[i]
			frac := (mean - lo.x) / (hi.x - lo.x)
			return lo.y + frac*(hi.y-lo.y)
		}
	}
	return anchors[len(anchors)-1].y
}

// ShouldEmitFileDebtItem reports whether a file's aggregate metrics earn
// it a file-level DebtItem (§4.9): score above the gate, or any
// god-object flag.
func ShouldEmitFileDebtItem(m model.FileDebtMetrics) bool {
	return m.Score > fileDebtItemScoreGate || m.IsGodObject
}

// BuildFileDebtItem constructs the file-level DebtItem for a file that
// passed ShouldEmitFileDebtItem.
func BuildFileDebtItem(m model.FileDebtMetrics) model.DebtItem {
	item := model.DebtItem{
		Location:     model.FunctionId{FilePath: m.FilePath, Name: "<file>", Line: 0},
		UnifiedScore: m.Score,
		DebtType:     model.DebtComplexityHotspot,
		IsFileLevel:  true,
	}
	if m.IsGodObject {
		item.GodObjectIndicator = &model.GodObjectIndicator{
			FilePath:      m.FilePath,
			FunctionCount: m.FunctionCount,
			TotalLines:    m.TotalLines,
		}
		item.Recommendation = model.Recommendation{
			PrimaryAction: "Split this file into smaller, single-responsibility modules",
			Why:           "This file exceeds the god-object size gate (function count or total lines).",
			Steps: []string{
				"Group functions by the class or concern they serve",
				"Extract each cohesive group into its own file",
			},
			EffortHours: 8,
		}
	}
	return item
}

// CrossLinkGodObject stamps a god-object indicator onto every
// function-level DebtItem that belongs to a god-object file (§4.9: "For
// god objects, function-level debt items in that file are cross-linked
// with the god-object indicator."), returning a new slice.
func CrossLinkGodObject(items []model.DebtItem, m model.FileDebtMetrics) []model.DebtItem {
	if !m.IsGodObject {
		return items
	}
	out := make([]model.DebtItem, len(items))
	indicator := &model.GodObjectIndicator{
		FilePath:      m.FilePath,
		FunctionCount: m.FunctionCount,
		TotalLines:    m.TotalLines,
	}
	for i, it := range items {
		out[i] = it
		if it.Location.FilePath == m.FilePath && !it.IsFileLevel {
			out[i].GodObjectIndicator = indicator
		}
	}
	return out
}

// GroupByFile buckets functions by FilePath and returns the file paths
// in sorted order for deterministic downstream iteration.
func GroupByFile(fns []FunctionInput) ([]string, map[string][]FunctionInput) {
	grouped := map[string][]FunctionInput{}
	var order []string
	for _, f := range fns {
		if _, seen := grouped[f.ID.FilePath]; !seen {
			order = append(order, f.ID.FilePath)
		}
		grouped[f.ID.FilePath] = append(grouped[f.ID.FilePath], f)
	}
	sort.Strings(order)
	return order, grouped
}
