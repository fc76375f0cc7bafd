package coverage

import (
	"reflect"
	"testing"

	"github.com/ingo/debtmap-go/pkg/model"
)

// TestLookup_MonomorphizedGenericsAggregate reproduces spec scenario S2:
// two monomorphizations of one source function, ingested as distinct
// records because Normalize preserves trailing generics, must be merged
// at query time via the base_function_index intersection strategy into a
// single 75% result with uncovered lines [20].
func TestLookup_MonomorphizedGenericsAggregate(t *testing.T) {
	const file = "src/exec.rs"

	worker := model.FunctionCoverage{
		Name:           "exec::<Worker>",
		StartLine:      5,
		CoveredPct:     70,
		UncoveredLines: []int{10, 20, 30},
		NormalizedName: model.NormalizedFunctionName{FullPath: "exec::<Worker>", MethodName: "exec"},
	}
	mock := model.FunctionCoverage{
		Name:           "exec::<Mock>",
		StartLine:      40,
		CoveredPct:     80,
		UncoveredLines: []int{20, 40},
		NormalizedName: model.NormalizedFunctionName{FullPath: "exec::<Mock>", MethodName: "exec"},
	}

	idx := BuildIndex(&IngestResult{ByFile: map[string][]model.FunctionCoverage{
		file: {worker, mock},
	}})

	got := idx.GetFunctionCoverage(file, "exec")
	if !got.Known {
		t.Fatalf("expected known result, got %+v", got)
	}
	if got.Fraction != 0.75 {
		t.Errorf("fraction = %v, want 0.75", got.Fraction)
	}
	if got.Strategy != "base-aggregate" {
		t.Errorf("strategy = %q, want base-aggregate", got.Strategy)
	}

	uncovered, ok := idx.GetFunctionUncoveredLines(file, "exec", 5)
	if !ok {
		t.Fatal("expected coverage data configured")
	}
	if !reflect.DeepEqual(uncovered, []int{20}) {
		t.Errorf("uncovered = %v, want [20]", uncovered)
	}
}

// TestLookup_TraitMethodViaMethodNameIndex reproduces spec scenario S3:
// a function recorded under its impl-qualified name ("<MyStruct as
// MyTrait>::run", normalized to "MyStruct::run") must still resolve when
// queried by a differently-qualified trait-method spelling, via the
// method_name_index fallback (step 4).
func TestLookup_TraitMethodViaMethodNameIndex(t *testing.T) {
	const file = "src/worker.rs"

	run := model.FunctionCoverage{
		Name:           "MyStruct::run",
		StartLine:      12,
		CoveredPct:     100,
		NormalizedName: model.NormalizedFunctionName{FullPath: "MyStruct::run", MethodName: "run"},
	}

	idx := BuildIndex(&IngestResult{ByFile: map[string][]model.FunctionCoverage{
		file: {run},
	}})

	got := idx.GetFunctionCoverage(file, "MyTrait::run")
	if !got.Known {
		t.Fatalf("expected known result, got %+v", got)
	}
	if got.Fraction != 1.0 {
		t.Errorf("fraction = %v, want 1.0", got.Fraction)
	}
	if got.Strategy != "method-name" {
		t.Errorf("strategy = %q, want method-name", got.Strategy)
	}
}

func TestLookup_ExactHit(t *testing.T) {
	const file = "src/lib.rs"
	fc := model.FunctionCoverage{
		Name:           "lib::helper",
		StartLine:      1,
		CoveredPct:     42,
		NormalizedName: model.NormalizedFunctionName{FullPath: "lib::helper", MethodName: "helper"},
	}
	idx := BuildIndex(&IngestResult{ByFile: map[string][]model.FunctionCoverage{file: {fc}}})

	got := idx.GetFunctionCoverage(file, "lib::helper")
	if !got.Known || got.Strategy != "exact" {
		t.Fatalf("got %+v, want exact hit", got)
	}
}

func TestLookup_MissCoercesToZeroNotUnknown(t *testing.T) {
	const file = "src/lib.rs"
	fc := model.FunctionCoverage{
		Name:           "lib::helper",
		StartLine:      1,
		CoveredPct:     42,
		NormalizedName: model.NormalizedFunctionName{FullPath: "lib::helper", MethodName: "helper"},
	}
	idx := BuildIndex(&IngestResult{ByFile: map[string][]model.FunctionCoverage{file: {fc}}})

	got := idx.GetFunctionCoverage(file, "does::not::exist")
	if !got.Known {
		t.Fatalf("miss against present coverage data must be Known=true (0%%), got %+v", got)
	}
	if got.Fraction != 0 {
		t.Errorf("fraction = %v, want 0", got.Fraction)
	}
}

func TestLookup_NilIndexReturnsUnknown(t *testing.T) {
	var idx *Index
	got := idx.GetFunctionCoverage("any.rs", "any::fn")
	if got.Known {
		t.Errorf("nil index (no coverage configured) must return Unknown, got %+v", got)
	}
	if got != model.UnknownResult {
		t.Errorf("got %+v, want UnknownResult", got)
	}
}

func TestLookup_LineFallback(t *testing.T) {
	const file = "src/lib.rs"
	fc := model.FunctionCoverage{
		Name:           "lib::orphan",
		StartLine:      100,
		CoveredPct:     55,
		NormalizedName: model.NormalizedFunctionName{FullPath: "lib::orphan", MethodName: "orphan"},
	}
	idx := BuildIndex(&IngestResult{ByFile: map[string][]model.FunctionCoverage{file: {fc}}})

	// exactly 2 away matches
	if got := idx.GetFunctionCoverageWithLine(file, "renamed::fn", 102); !got.Known || got.Strategy != "line-fallback" {
		t.Errorf("line+2 should hit line fallback, got %+v", got)
	}
	// 3 away does not match via line fallback, misses entirely -> zero
	if got := idx.GetFunctionCoverageWithLine(file, "renamed::fn", 103); got.Strategy == "line-fallback" {
		t.Errorf("line+3 must not match via line fallback, got %+v", got)
	}
}

func TestLookup_PathStrategySuffixMatch(t *testing.T) {
	const indexed = "src/lib.rs"
	fc := model.FunctionCoverage{
		Name:           "lib::helper",
		StartLine:      1,
		CoveredPct:     42,
		NormalizedName: model.NormalizedFunctionName{FullPath: "lib::helper", MethodName: "helper"},
	}
	idx := BuildIndex(&IngestResult{ByFile: map[string][]model.FunctionCoverage{indexed: {fc}}})

	// queried under an absolute path whose trailing components match the
	// indexed relative path
	got := idx.GetFunctionCoverage("/home/build/project/src/lib.rs", "lib::helper")
	if !got.Known || got.Strategy != "path-strategy" {
		t.Fatalf("expected path-strategy hit, got %+v", got)
	}
}

func TestMergeIntersection_SingleRecordPassesThrough(t *testing.T) {
	idx := BuildIndex(&IngestResult{ByFile: map[string][]model.FunctionCoverage{
		"f.rs": {{
			Name:           "only",
			CoveredPct:     33,
			UncoveredLines: []int{1, 2},
			NormalizedName: model.NormalizedFunctionName{FullPath: "only", MethodName: "only"},
		}},
	}})
	fc, ok := idx.lookupBaseAggregate("f.rs", "only")
	if !ok {
		t.Fatal("expected hit")
	}
	if fc.CoveredPct != 33 || !reflect.DeepEqual(fc.UncoveredLines, []int{1, 2}) {
		t.Errorf("single-record aggregate should pass through unchanged, got %+v", fc)
	}
}
