package fileagg

import (
	"testing"

	"github.com/ingo/debtmap-go/pkg/model"
)

func TestAggregate_MeanMaxTotalComplexity(t *testing.T) {
	fns := []FunctionInput{
		{ID: model.FunctionId{Name: "a"}, Cyclomatic: 2, Length: 10},
		{ID: model.FunctionId{Name: "b"}, Cyclomatic: 6, Length: 20},
	}
	m := Aggregate("f.rs", fns, nil)
	if m.TotalComplexity != 8 {
		t.Errorf("TotalComplexity = %d, want 8", m.TotalComplexity)
	}
	if m.MaxComplexity != 6 {
		t.Errorf("MaxComplexity = %d, want 6", m.MaxComplexity)
	}
	if m.MeanComplexity != 4 {
		t.Errorf("MeanComplexity = %v, want 4", m.MeanComplexity)
	}
	if m.TotalLines != 30 {
		t.Errorf("TotalLines = %d, want 30", m.TotalLines)
	}
}

func TestAggregate_CoverageWeightedByLength(t *testing.T) {
	fns := []FunctionInput{
		{ID: model.FunctionId{Name: "a"}, Length: 10, CoveragePct: 100, CoverageKnown: true},
		{ID: model.FunctionId{Name: "b"}, Length: 90, CoveragePct: 0, CoverageKnown: true},
	}
	m := Aggregate("f.rs", fns, nil)
	// (10*100 + 90*0) / 100 = 10
	if m.CoveragePct != 10 {
		t.Errorf("CoveragePct = %v, want 10", m.CoveragePct)
	}
}

func TestAggregate_UnknownCoverageExcludedFromWeighting(t *testing.T) {
	fns := []FunctionInput{
		{ID: model.FunctionId{Name: "a"}, Length: 10, CoveragePct: 50, CoverageKnown: true},
		{ID: model.FunctionId{Name: "b"}, Length: 1000, CoverageKnown: false},
	}
	m := Aggregate("f.rs", fns, nil)
	if m.CoveragePct != 50 {
		t.Errorf("CoveragePct = %v, want 50 (unknown-coverage function excluded)", m.CoveragePct)
	}
}

func TestIsGodObject_FunctionCountGate(t *testing.T) {
	fns := make([]FunctionInput, 51)
	for i := range fns {
		fns[i] = FunctionInput{ID: model.FunctionId{Name: "f"}, Length: 1}
	}
	m := Aggregate("big.rs", fns, nil)
	if !m.IsGodObject {
		t.Error("expected god object when function count > 50")
	}
}

func TestIsGodObject_TotalLinesGate(t *testing.T) {
	fns := []FunctionInput{{ID: model.FunctionId{Name: "f"}, Length: 2001}}
	m := Aggregate("big.rs", fns, nil)
	if !m.IsGodObject {
		t.Error("expected god object when total lines > 2000")
	}
}

func TestIsGodObject_NotTrippedBelowGates(t *testing.T) {
	fns := []FunctionInput{{ID: model.FunctionId{Name: "f"}, Length: 100}}
	m := Aggregate("small.rs", fns, nil)
	if m.IsGodObject {
		t.Error("small file should not be a god object")
	}
}

type fakeCohesion struct{ cohesive bool }

func (f fakeCohesion) IsCohesive(string, []FunctionInput) bool { return f.cohesive }

func TestIsGodObject_CohesionGateVetoesSizeGate(t *testing.T) {
	fns := make([]FunctionInput, 60)
	for i := range fns {
		fns[i] = FunctionInput{ID: model.FunctionId{Name: "f"}, Length: 1}
	}
	m := Aggregate("big.rs", fns, fakeCohesion{cohesive: true})
	if m.IsGodObject {
		t.Error("cohesion gate should veto the size-gate trip")
	}
}

func TestShouldEmitFileDebtItem_ScoreGate(t *testing.T) {
	m := model.FileDebtMetrics{Score: 51}
	if !ShouldEmitFileDebtItem(m) {
		t.Error("score above 50 should emit a file debt item")
	}
	m2 := model.FileDebtMetrics{Score: 10, IsGodObject: true}
	if !ShouldEmitFileDebtItem(m2) {
		t.Error("god-object flag alone should emit a file debt item")
	}
	m3 := model.FileDebtMetrics{Score: 10}
	if ShouldEmitFileDebtItem(m3) {
		t.Error("low score and no god-object flag should not emit")
	}
}

func TestCrossLinkGodObject_StampsMatchingFileOnly(t *testing.T) {
	items := []model.DebtItem{
		{Location: model.FunctionId{FilePath: "a.rs", Name: "f1"}},
		{Location: model.FunctionId{FilePath: "b.rs", Name: "f2"}},
	}
	m := model.FileDebtMetrics{FilePath: "a.rs", IsGodObject: true, FunctionCount: 60}
	out := CrossLinkGodObject(items, m)
	if out[0].GodObjectIndicator == nil {
		t.Error("a.rs item should be cross-linked")
	}
	if out[1].GodObjectIndicator != nil {
		t.Error("b.rs item should not be cross-linked")
	}
}

func TestGroupByFile_DeterministicOrder(t *testing.T) {
	fns := []FunctionInput{
		{ID: model.FunctionId{FilePath: "z.rs", Name: "a"}},
		{ID: model.FunctionId{FilePath: "a.rs", Name: "b"}},
		{ID: model.FunctionId{FilePath: "a.rs", Name: "c"}},
	}
	order, grouped := GroupByFile(fns)
	if len(order) != 2 || order[0] != "a.rs" || order[1] != "z.rs" {
		t.Errorf("order = %v, want [a.rs z.rs]", order)
	}
	if len(grouped["a.rs"]) != 2 {
		t.Errorf("grouped[a.rs] len = %d, want 2", len(grouped["a.rs"]))
	}
}
