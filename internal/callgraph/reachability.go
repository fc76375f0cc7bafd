package callgraph

import "github.com/ingo/debtmap-go/pkg/model"

// Roots returns the union of entry points, test functions, and public-API
// functions — the root set for the reachability worklist (§4.4
// "Reachability and liveness"). Framework-managed functions are already
// entry points by construction (MarkFrameworkManaged), so they need no
// separate inclusion here.
func (g *Graph) Roots() []model.FunctionId {
	var roots []model.FunctionId
	for _, id := range g.order {
		flags := g.nodes[id]
		if flags.IsEntryPoint || flags.IsTest || g.publicAPI[id] {
			roots = append(roots, id)
		}
	}
	return roots
}

// LiveSet performs a worklist forward traversal from Roots() through all
// edge types, returning the set of reached functions (§4.4).
func (g *Graph) LiveSet() map[model.FunctionId]bool {
	live := make(map[model.FunctionId]bool)
	var worklist []model.FunctionId

	for _, root := range g.Roots() {
		if !live[root] {
			live[root] = true
			worklist = append(worklist, root)
		}
	}

	for len(worklist) > 0 {
		cur := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, e := range g.forward[cur] {
			if !live[e.Callee] {
				live[e.Callee] = true
				worklist = append(worklist, e.Callee)
			}
		}
	}

	return live
}

// PotentiallyDead returns every node not in the live set, in graph
// insertion order (§4.4 "Potential dead code is the complement").
func (g *Graph) PotentiallyDead() []model.FunctionId {
	live := g.LiveSet()
	var dead []model.FunctionId
	for _, id := range g.order {
		if !live[id] {
			dead = append(dead, id)
		}
	}
	return dead
}

// DeadCodeInputs is the flag set the dead-code confidence calculator
// consumes. It is a plain struct — not tied to Graph — so the calculator
// can be exercised in isolation with hand-built inputs (§9 "deterministic
// testing of every calculator in isolation").
type DeadCodeInputs struct {
	HasCallers                  bool
	IsEntryPoint                bool
	IsTest                      bool
	IsFrameworkManaged          bool
	IsPublicAPI                 bool
	HasTraitImpls               bool
	IsVisitorMethod             bool
	ReachableViaFunctionPointer bool
}

// ComputeDeadCodeConfidence implements §4.4's dead-code confidence
// dampening: start at 1.0 and multiply by each applicable dampener,
// independent of the others, bounded to [0, 1]. Reasons enumerate passing
// liveness checks; FalsePositiveRisks enumerate the dampeners applied.
func ComputeDeadCodeConfidence(id model.FunctionId, in DeadCodeInputs) model.DeadCodeConfidence {
	var reasons, risks []string
	confidence := 1.0

	if !in.HasCallers {
		reasons = append(reasons, "no callers")
	}
	if !in.IsEntryPoint {
		reasons = append(reasons, "not entry point")
	}
	if !in.IsTest {
		reasons = append(reasons, "not test")
	}

	if in.IsFrameworkManaged {
		confidence *= 0.3
		risks = append(risks, "framework-managed")
	}
	if in.IsPublicAPI {
		confidence *= 0.2
		risks = append(risks, "public API")
	}
	if in.HasTraitImpls {
		confidence *= 0.4
		risks = append(risks, "has trait impls")
	}
	if in.IsVisitorMethod {
		confidence *= 0.1
		risks = append(risks, "visitor pattern")
	}
	if in.ReachableViaFunctionPointer {
		confidence *= 0.5
		risks = append(risks, "reachable via function pointer")
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return model.DeadCodeConfidence{
		Function:           id,
		Confidence:         confidence,
		Reasons:            reasons,
		FalsePositiveRisks: risks,
	}
}

// DeadCodeConfidenceFor computes confidence for a node already present in
// the graph, deriving DeadCodeInputs from its recorded flags and edges.
func (g *Graph) DeadCodeConfidenceFor(id model.FunctionId) model.DeadCodeConfidence {
	flags := g.nodes[id]
	if flags == nil {
		flags = &NodeFlags{}
	}
	return ComputeDeadCodeConfidence(id, DeadCodeInputs{
		HasCallers:                  len(g.reverse[id]) > 0,
		IsEntryPoint:                flags.IsEntryPoint,
		IsTest:                      flags.IsTest,
		IsFrameworkManaged:          flags.IsFrameworkManaged,
		IsPublicAPI:                 g.publicAPI[id],
		HasTraitImpls:               flags.TraitImplCount > 0,
		IsVisitorMethod:             flags.IsVisitorMethod,
		ReachableViaFunctionPointer: flags.ReachableViaFunctionPointer,
	})
}
