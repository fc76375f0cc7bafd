package debt

import (
	"testing"

	"github.com/ingo/debtmap-go/pkg/model"
)

func TestShouldInclude_RejectsTestMarkerFunctions(t *testing.T) {
	m := &model.FunctionMetrics{ID: model.FunctionId{Name: "test_foo"}, IsTestMarker: true}
	if ShouldInclude(m, false) {
		t.Error("test-marked function should be excluded")
	}
}

func TestShouldInclude_RejectsClosuresByNameMarker(t *testing.T) {
	m := &model.FunctionMetrics{ID: model.FunctionId{Name: "foo::{{closure}}::<closure@src/lib.rs:10:5>"}}
	if ShouldInclude(m, false) {
		t.Error("closure-marked function should be excluded")
	}
}

func TestShouldInclude_RejectsTestOnlyReachable(t *testing.T) {
	m := &model.FunctionMetrics{ID: model.FunctionId{Name: "helper"}, Cyclomatic: 5}
	if ShouldInclude(m, true) {
		t.Error("test-only-reachable function should be excluded")
	}
}

func TestShouldInclude_RejectsTrivialFunctions(t *testing.T) {
	m := &model.FunctionMetrics{
		ID:         model.FunctionId{Name: "getter"},
		Cyclomatic: 1,
		Cognitive:  0,
		Length:     2,
		Callees:    []model.FunctionId{{Name: "x"}},
	}
	if ShouldInclude(m, false) {
		t.Error("trivial function should be excluded")
	}
}

func TestShouldInclude_AcceptsOrdinaryFunction(t *testing.T) {
	m := &model.FunctionMetrics{
		ID:         model.FunctionId{Name: "process"},
		Cyclomatic: 6,
		Cognitive:  4,
		Length:     40,
	}
	if !ShouldInclude(m, false) {
		t.Error("ordinary function should be included")
	}
}

func TestShouldInclude_ShortCircuitOrder(t *testing.T) {
	// A function that is both test-marked AND a closure should still be
	// rejected at the first check without panicking on later ones.
	m := &model.FunctionMetrics{ID: model.FunctionId{Name: "<closure@x>"}, IsTestMarker: true}
	if ShouldInclude(m, false) {
		t.Error("expected rejection")
	}
}

func TestUnifiedScore_HigherComponentsYieldHigherScore(t *testing.T) {
	low := UnifiedScore(ScoreInputs{ComplexityScore: 1, CoverageScore: 1, DependencyScore: 1, Role: model.RoleUnknown}, DefaultScoreWeights)
	high := UnifiedScore(ScoreInputs{ComplexityScore: 9, CoverageScore: 9, DependencyScore: 9, Role: model.RolePureLogic}, DefaultScoreWeights)
	if !(high > low) {
		t.Errorf("expected high score %v > low score %v", high, low)
	}
	if high > 100 || low < 0 {
		t.Errorf("score out of [0,100] range: low=%v high=%v", low, high)
	}
}

func TestUnifiedScore_ZeroWeightsYieldZero(t *testing.T) {
	got := UnifiedScore(ScoreInputs{ComplexityScore: 10, CoverageScore: 10}, ScoreWeights{})
	if got != 0 {
		t.Errorf("all-zero weights should yield 0, got %v", got)
	}
}

func TestTestCountStaircase_MonotonicWithComplexityAndInverseCoverage(t *testing.T) {
	low := testCountStaircase(2, 95)
	mid := testCountStaircase(15, 60)
	high := testCountStaircase(35, 5)
	if !(low < mid && mid < high) {
		t.Errorf("expected monotonic staircase, got low=%d mid=%d high=%d", low, mid, high)
	}
	if high > 8 {
		t.Errorf("staircase should cap at 8, got %d", high)
	}
}

func TestTestCountStaircase_NeverBelowOne(t *testing.T) {
	got := testCountStaircase(1, 100)
	if got < 1 {
		t.Errorf("staircase floor should be 1, got %d", got)
	}
}

func TestClassifyDebtType_DeadCodeTakesPrecedence(t *testing.T) {
	in := ScoreInputs{ComplexityScore: 9, CoverageScore: 9}
	got := ClassifyDebtType(in, true, 3, true)
	if got != model.DebtDeadCode {
		t.Errorf("dead code should take precedence over all else, got %v", got)
	}
}

func TestClassifyDebtType_ErrorSwallowingBeforeResourceAndCoverage(t *testing.T) {
	in := ScoreInputs{ComplexityScore: 9, CoverageScore: 9}
	got := ClassifyDebtType(in, false, 2, true)
	if got != model.DebtErrorSwallowing {
		t.Errorf("expected ErrorSwallowing, got %v", got)
	}
}

func TestClassifyDebtType_TestingGapWhenCoverageDominates(t *testing.T) {
	in := ScoreInputs{ComplexityScore: 3, CoverageScore: 8}
	got := ClassifyDebtType(in, false, 0, false)
	if got != model.DebtTestingGap {
		t.Errorf("expected TestingGap, got %v", got)
	}
}

func TestClassifyDebtType_ComplexityHotspotWhenComplexityDominates(t *testing.T) {
	in := ScoreInputs{ComplexityScore: 8, CoverageScore: 0}
	got := ClassifyDebtType(in, false, 0, false)
	if got != model.DebtComplexityHotspot {
		t.Errorf("expected ComplexityHotspot, got %v", got)
	}
}

func TestClassifyDebtType_OtherWhenNoSignal(t *testing.T) {
	got := ClassifyDebtType(ScoreInputs{}, false, 0, false)
	if got != model.DebtOther {
		t.Errorf("expected Other, got %v", got)
	}
}

func TestBuildDebtItem_PopulatesRecommendationAndTestCount(t *testing.T) {
	fn := model.FunctionId{FilePath: "src/lib.rs", Name: "process", Line: 10}
	in := ScoreInputs{ComplexityScore: 7, CoverageScore: 2, Role: model.RolePureLogic}
	item := BuildDebtItem(fn, 62.5, model.DebtComplexityHotspot, in, 12, 85, model.LangRust, 2)

	if item.Location != fn {
		t.Errorf("Location = %v, want %v", item.Location, fn)
	}
	if item.UnifiedScore != 62.5 {
		t.Errorf("UnifiedScore = %v, want 62.5", item.UnifiedScore)
	}
	if item.Recommendation.PrimaryAction == "" {
		t.Error("expected a non-empty primary action")
	}
	if item.TestsRecommended < 1 {
		t.Error("expected at least one recommended test")
	}
}
