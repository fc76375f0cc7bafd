// Package callgraph implements C4 (call graph construction) and C5
// (phased trait/pointer/framework/cross-module enrichment) of the
// analysis pipeline (spec.md §4.4).
//
// Grounded on the teacher's c3_architecture import-graph construction
// (internal/analyzer/shared.ImportGraph, internal/analyzer/c3_architecture
// detectCircularDeps) for the "arena of nodes, adjacency in side maps"
// shape (§9 design notes), generalized from package-level import edges to
// function-level typed call edges.
package callgraph

import (
	"github.com/ingo/debtmap-go/pkg/model"
)

// Graph is the arena-style call graph of §9: nodes are keyed by
// FunctionId, edges are stored in forward/reverse adjacency side maps.
// Edge multiplicity by (Caller, Callee, Type) is one (invariant I2);
// AddEdge is idempotent.
type Graph struct {
	nodes map[model.FunctionId]*NodeFlags

	// order preserves node insertion for deterministic iteration.
	order []model.FunctionId

	forward map[model.FunctionId][]model.Edge // caller -> outgoing edges
	reverse map[model.FunctionId][]model.Edge // callee -> incoming edges

	edgeSeen map[edgeKey]bool

	publicAPI map[model.FunctionId]bool
	testFns   map[model.FunctionId]bool
}

// NodeFlags tracks the orthogonal boolean markers enrichment phases set
// on a node, plus identifying data useful to dead-code dampening.
type NodeFlags struct {
	model.NodeFlags
	TraitImplCount int
	IsVisitorMethod bool
	ReachableViaFunctionPointer bool
}

type edgeKey struct {
	caller model.FunctionId
	callee model.FunctionId
	typ    model.EdgeType
}

// NewGraph creates an empty call graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:     make(map[model.FunctionId]*NodeFlags),
		forward:   make(map[model.FunctionId][]model.Edge),
		reverse:   make(map[model.FunctionId][]model.Edge),
		edgeSeen:  make(map[edgeKey]bool),
		publicAPI: make(map[model.FunctionId]bool),
		testFns:   make(map[model.FunctionId]bool),
	}
}

// AddNode registers a function identity, creating its flags record on
// first insertion. Calling it again for an existing node is a no-op that
// returns the existing flags.
func (g *Graph) AddNode(id model.FunctionId) *NodeFlags {
	if flags, ok := g.nodes[id]; ok {
		return flags
	}
	flags := &NodeFlags{}
	g.nodes[id] = flags
	g.order = append(g.order, id)
	return flags
}

// Flags returns a node's flags, or nil if the node was never added.
func (g *Graph) Flags(id model.FunctionId) *NodeFlags {
	return g.nodes[id]
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []model.FunctionId {
	return g.order
}

// AddEdge adds a typed edge, registering both endpoints as nodes if
// needed. Re-adding the same (Caller, Callee, Type) triple is a no-op
// (invariant I2).
func (g *Graph) AddEdge(caller, callee model.FunctionId, typ model.EdgeType) {
	g.AddNode(caller)
	g.AddNode(callee)

	k := edgeKey{caller: caller, callee: callee, typ: typ}
	if g.edgeSeen[k] {
		return
	}
	g.edgeSeen[k] = true

	e := model.Edge{Caller: caller, Callee: callee, Type: typ}
	g.forward[caller] = append(g.forward[caller], e)
	g.reverse[callee] = append(g.reverse[callee], e)
}

// Callees returns every outgoing edge from id.
func (g *Graph) Callees(id model.FunctionId) []model.Edge {
	return g.forward[id]
}

// Callers returns every incoming edge to id.
func (g *Graph) Callers(id model.FunctionId) []model.Edge {
	return g.reverse[id]
}

// MarkEntryPoint flags id as an entry point, creating the node if absent.
func (g *Graph) MarkEntryPoint(id model.FunctionId) {
	g.AddNode(id).IsEntryPoint = true
}

// MarkTest flags id as a test function and records it in the test set
// used by reachability's root selection.
func (g *Graph) MarkTest(id model.FunctionId) {
	flags := g.AddNode(id)
	flags.IsTest = true
	g.testFns[id] = true
}

// MarkTraitDispatchTarget flags id as a resolved trait-impl target and
// bumps its trait-implementation count (used by dead-code dampening).
func (g *Graph) MarkTraitDispatchTarget(id model.FunctionId) {
	flags := g.AddNode(id)
	flags.IsTraitDispatchTarget = true
	flags.TraitImplCount++
}

// MarkFrameworkManaged flags id as framework-managed; per §4.4 phase 4,
// framework-managed functions become entry points.
func (g *Graph) MarkFrameworkManaged(id model.FunctionId) {
	flags := g.AddNode(id)
	flags.IsFrameworkManaged = true
	flags.IsEntryPoint = true
}

// MarkVisitorMethod flags id as matching the visitor-pattern `visit_*`
// naming convention (§4.4 phase 4, dead-code dampener).
func (g *Graph) MarkVisitorMethod(id model.FunctionId) {
	g.AddNode(id).IsVisitorMethod = true
}

// MarkReachableViaFunctionPointer records that id was reached only
// through a resolved Callback edge (§4.4 phase 3 dead-code dampener).
func (g *Graph) MarkReachableViaFunctionPointer(id model.FunctionId) {
	g.AddNode(id).ReachableViaFunctionPointer = true
}

// MarkPublicAPI records id in the public-API set collected during phase 5
// (§4.4).
func (g *Graph) MarkPublicAPI(id model.FunctionId) {
	g.AddNode(id)
	g.publicAPI[id] = true
}

// IsPublicAPI reports whether id was collected as a public-API
// declaration.
func (g *Graph) IsPublicAPI(id model.FunctionId) bool {
	return g.publicAPI[id]
}
