// Package debt implements C9, the scoring and debt engine: an inclusion
// filter, a weighted unified score, debt-type classification, test-count
// estimation, and templated recommendations (spec.md §4.8).
//
// Grounded on the teacher's multi-component weighted scoring in
// internal/scoring (breakpoint interpolation combined across independent
// sub-scores) and on the closure-name marker and phase-based scoring
// shape of _examples/original_source/src/builders/unified_analysis_phases.
package debt

import (
	"strings"

	"github.com/ingo/debtmap-go/pkg/model"
)

// closureNameMarker is how the original Rust implementation tags
// compiler-synthesized closures in a function name (§4.8 inclusion
// filter "reject closures by name marker").
const closureNameMarker = "<closure@"

// ShouldInclude implements §4.8's inclusion filter, a short-circuiting
// chain of rejections evaluated in the order the spec lists them.
func ShouldInclude(m *model.FunctionMetrics, inTestOnlySet bool) bool {
	if m.IsTestMarker || m.InTestModule {
		return false
	}
	if strings.Contains(m.ID.Name, closureNameMarker) {
		return false
	}
	if inTestOnlySet {
		return false
	}
	if m.IsTrivial() {
		return false
	}
	return true
}

// ScoreWeights are the per-component weights of the unified score
// (§4.8: "weighted sum with per-component weights configurable").
type ScoreWeights struct {
	Complexity float64
	Coverage   float64
	Dependency float64
	Role       float64
	Risk       float64
}

// DefaultScoreWeights sums to 1.0, biased toward complexity and coverage
// as the two most direct debt signals.
var DefaultScoreWeights = ScoreWeights{
	Complexity: 0.35,
	Coverage:   0.30,
	Dependency: 0.15,
	Role:       0.10,
	Risk:       0.10,
}

// roleScoreAdjustment turns a role into a 0-10 contribution to the
// unified score, reusing the aggregator's role-multiplier intuition:
// roles the aggregator treats as inherently riskier contribute more.
func roleScoreAdjustment(role model.Role) float64 {
	switch role {
	case model.RolePureLogic:
		return 8
	case model.RoleEntryPoint:
		return 7
	case model.RoleOrchestrator:
		return 5
	case model.RoleIOWrapper:
		return 3
	case model.RolePatternMatch:
		return 2
	case model.RoleDebug:
		return 1
	default:
		return 5
	}
}

// ScoreInputs bundles the already-computed evidence a scoring pass needs;
// each field is a 0-10 sub-score produced upstream by C7's calculators.
type ScoreInputs struct {
	ComplexityScore float64
	CoverageScore   float64
	DependencyScore float64
	RiskScore       float64 // 0 when no history provider is configured
	Role            model.Role
}

// UnifiedScore computes the 0-100 unified score (§4.8): a weighted
// average of 0-10 sub-scores, scaled by 10 to match the file-aggregator's
// file-debt-item score gate of 50.0 (§4.9) operating on the same scale.
func UnifiedScore(in ScoreInputs, w ScoreWeights) float64 {
	weighted := w.Complexity*in.ComplexityScore +
		w.Coverage*in.CoverageScore +
		w.Dependency*in.DependencyScore +
		w.Role*roleScoreAdjustment(in.Role) +
		w.Risk*in.RiskScore

	total := w.Complexity + w.Coverage + w.Dependency + w.Role + w.Risk
	if total <= 0 {
		return 0
	}
	return (weighted / total) * 10
}

// testCountStaircase maps (cyclomatic, coverage%) to a recommended test
// count via a staircase function (§4.8: "high complexity + low coverage
// yields more tests"). Base of 1, plus one step per complexity/coverage
// threshold crossed, capped at 8.
func testCountStaircase(cyclomatic int, coveragePct float64) int {
	n := 1
	if cyclomatic > 10 {
		n++
	}
	if cyclomatic > 20 {
		n++
	}
	if cyclomatic > 30 {
		n++
	}
	if coveragePct < 50 {
		n++
	}
	if coveragePct < 20 {
		n++
	}
	if coveragePct <= 0 {
		n++
	}
	if n > 8 {
		n = 8
	}
	return n
}

// ClassifyDebtType chooses a DebtType from the risk taxonomy (§4.8).
// isDead comes from the call graph's potentially-dead set with a
// confidence above the caller's chosen cutoff; errorSwallowCount from
// the function's ErrorSwallowCount.
func ClassifyDebtType(in ScoreInputs, isDead bool, errorSwallowCount int, isResourceHeavy bool) model.DebtType {
	switch {
	case isDead:
		return model.DebtDeadCode
	case errorSwallowCount > 0:
		return model.DebtErrorSwallowing
	case isResourceHeavy:
		return model.DebtResourceManagement
	case in.CoverageScore >= in.ComplexityScore && in.CoverageScore > 0:
		return model.DebtTestingGap
	case in.ComplexityScore > 0:
		return model.DebtComplexityHotspot
	default:
		return model.DebtOther
	}
}

// BuildDebtItem assembles the final DebtItem for one function (§4.8).
func BuildDebtItem(fn model.FunctionId, score float64, debtType model.DebtType, in ScoreInputs, cyclomatic int, coveragePct float64, lang model.Language, nestingDepth int) model.DebtItem {
	testsRecommended := testCountStaircase(cyclomatic, coveragePct)
	rec := RecommendFor(lang, debtType, cyclomatic, nestingDepth, coveragePct)

	return model.DebtItem{
		Location:     fn,
		UnifiedScore: score,
		DebtType:     debtType,
		ExpectedImpact: model.ExpectedImpact{
			ComplexityReduction: in.ComplexityScore,
			CoverageGain:        in.CoverageScore,
			RiskReduction:       in.RiskScore,
		},
		Recommendation:   rec,
		TestsRecommended: testsRecommended,
	}
}
