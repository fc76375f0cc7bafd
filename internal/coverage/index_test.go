package coverage

import (
	"strings"
	"testing"

	"github.com/ingo/debtmap-go/pkg/model"
)

func TestDebugSummary_TalliesAttemptsHitsAndZeroHits(t *testing.T) {
	const file = "src/lib.rs"
	covered := model.FunctionCoverage{
		Name: "run", StartLine: 5, CoveredPct: 80,
		NormalizedName: model.NormalizedFunctionName{FullPath: "run", MethodName: "run"},
	}
	idx := BuildIndex(&IngestResult{ByFile: map[string][]model.FunctionCoverage{file: {covered}}})
	idx.SetDebug(true)

	idx.GetFunctionCoverage(file, "run")
	idx.GetFunctionCoverage(file, "missing")

	summary := DebugSummary(idx)
	if !strings.Contains(summary, "attempted") {
		t.Errorf("summary missing attempts count: %q", summary)
	}
	stats := idx.DebugStats()
	if stats.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", stats.Attempts)
	}
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.ZeroHits != 1 {
		t.Errorf("ZeroHits = %d, want 1", stats.ZeroHits)
	}
}
