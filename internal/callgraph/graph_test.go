package callgraph

import (
	"testing"

	"github.com/ingo/debtmap-go/pkg/model"
)

func fid(name string) model.FunctionId {
	return model.FunctionId{FilePath: "src/lib.rs", Name: name, Line: 1}
}

func TestAddEdge_DedupBy_CallerCalleeType(t *testing.T) {
	g := NewGraph()
	a, b := fid("a"), fid("b")

	g.AddEdge(a, b, model.EdgeDirect)
	g.AddEdge(a, b, model.EdgeDirect)
	g.AddEdge(a, b, model.EdgeDelegate)

	if got := len(g.Callees(a)); got != 2 {
		t.Fatalf("Callees(a) = %d edges, want 2 (one Direct, one Delegate)", got)
	}
}

func TestReachability_LiveSetFollowsForwardEdges(t *testing.T) {
	g := NewGraph()
	entry, mid, leaf, orphan := fid("entry"), fid("mid"), fid("leaf"), fid("orphan")

	g.MarkEntryPoint(entry)
	g.AddEdge(entry, mid, model.EdgeDirect)
	g.AddEdge(mid, leaf, model.EdgeDirect)
	g.AddNode(orphan)

	live := g.LiveSet()
	for _, want := range []model.FunctionId{entry, mid, leaf} {
		if !live[want] {
			t.Errorf("%v should be live", want)
		}
	}
	if live[orphan] {
		t.Errorf("orphan should not be live")
	}

	dead := g.PotentiallyDead()
	if len(dead) != 1 || dead[0] != orphan {
		t.Errorf("PotentiallyDead() = %v, want [orphan]", dead)
	}
}

// TestDeadCodeConfidence_S4 reproduces spec scenario S4 exactly.
func TestDeadCodeConfidence_S4(t *testing.T) {
	id := fid("widget")
	got := ComputeDeadCodeConfidence(id, DeadCodeInputs{
		HasCallers:         false,
		IsEntryPoint:       false,
		IsTest:             false,
		IsFrameworkManaged: true,
		IsPublicAPI:        true,
		HasTraitImpls:      true,
	})

	wantReasons := []string{"no callers", "not entry point", "not test"}
	wantRisks := []string{"framework-managed", "public API", "has trait impls"}

	if !equalStrings(got.Reasons, wantReasons) {
		t.Errorf("Reasons = %v, want %v", got.Reasons, wantReasons)
	}
	if !equalStrings(got.FalsePositiveRisks, wantRisks) {
		t.Errorf("FalsePositiveRisks = %v, want %v", got.FalsePositiveRisks, wantRisks)
	}

	const want = 1.0 * 0.3 * 0.2 * 0.4
	if diff := got.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("Confidence = %v, want %v", got.Confidence, want)
	}
}

func TestDeadCodeConfidence_BoundedToUnitInterval(t *testing.T) {
	got := ComputeDeadCodeConfidence(fid("x"), DeadCodeInputs{})
	if got.Confidence != 1.0 {
		t.Errorf("no dampeners applied should leave confidence at 1.0, got %v", got.Confidence)
	}
}

func TestTraitResolver_DelegateEdgesAndDispatchMark(t *testing.T) {
	g := NewGraph()
	caller := fid("caller")
	implA := model.FunctionId{FilePath: "src/a.rs", Name: "run", Line: 10}
	implB := model.FunctionId{FilePath: "src/b.rs", Name: "run", Line: 20}

	r := NewTraitResolver()
	r.RecordImpl(TraitImpl{Trait: "Runnable", Method: "run", Target: implA})
	r.RecordImpl(TraitImpl{Trait: "Runnable", Method: "run", Target: implB})
	r.RecordCallSite(TraitCallSite{Caller: caller, Trait: "Runnable", Method: "run"})

	r.Resolve(g)

	edges := g.Callees(caller)
	if len(edges) != 2 {
		t.Fatalf("expected 2 delegate edges, got %d", len(edges))
	}
	for _, e := range edges {
		if e.Type != model.EdgeDelegate {
			t.Errorf("edge type = %v, want Delegate", e.Type)
		}
	}
	if !g.Flags(implA).IsTraitDispatchTarget || g.Flags(implA).TraitImplCount != 1 {
		t.Errorf("implA should be marked as a trait-dispatch target with count 1")
	}
}

func TestPointerResolver_CallbackEdge(t *testing.T) {
	g := NewGraph()
	caller := fid("caller")
	target := fid("target")

	r := NewPointerResolver()
	r.RecordValue(FunctionPointerValue{Binding: "cb", Function: target})
	r.RecordCallSite(FunctionPointerCallSite{Caller: caller, Binding: "cb"})
	r.Resolve(g)

	edges := g.Callees(caller)
	if len(edges) != 1 || edges[0].Type != model.EdgeCallback || edges[0].Callee != target {
		t.Fatalf("expected one Callback edge to target, got %+v", edges)
	}
	if !g.Flags(target).ReachableViaFunctionPointer {
		t.Error("target should be marked reachable via function pointer")
	}
}

func TestFrameworkResolver_MatchesVisitorAndWebHandler(t *testing.T) {
	visitor := FrameworkCandidate{ID: fid("visit_expr")}
	if got := MatchFrameworkPattern(visitor); got != PatternVisitor {
		t.Errorf("visit_expr pattern = %q, want visitor", got)
	}

	handler := FrameworkCandidate{ID: fid("index"), Attributes: []string{"get(\"/\")"}}
	if got := MatchFrameworkPattern(handler); got != PatternWebHandler {
		t.Errorf("handler pattern = %q, want web-handler", got)
	}
}

func TestCrossModuleResolver_AddsEdgeForMatchingPublicDecl(t *testing.T) {
	g := NewGraph()
	caller := fid("caller")
	target := model.FunctionId{FilePath: "other.rs", Name: "helper", Line: 3}

	r := NewCrossModuleResolver()
	r.RecordPublicDecl(PublicDecl{ID: target})
	r.RecordReference(ExternalReference{Caller: caller, TargetName: "helper", TargetFile: "other.rs"})
	r.Resolve(g)

	if !g.IsPublicAPI(target) {
		t.Error("target should be recorded as public API")
	}
	edges := g.Callees(caller)
	if len(edges) != 1 || edges[0].Type != model.EdgeCrossModule {
		t.Fatalf("expected one CrossModule edge, got %+v", edges)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
