package callgraph

import "github.com/ingo/debtmap-go/pkg/model"

// FunctionPointerValue records a function passed as a first-class value
// (taken as a pointer/closure) at some binding site (§4.4 phase 3).
type FunctionPointerValue struct {
	Binding  string // the variable/field/parameter name the function value flows through
	Function model.FunctionId
}

// FunctionPointerCallSite records a call site that invokes a value
// reached through a binding rather than a direct name (§4.4 phase 3).
type FunctionPointerCallSite struct {
	Caller  model.FunctionId
	Binding string
}

// PointerResolver accumulates phase-3 facts: which functions are passed as
// values under which bindings, and which call sites invoke a binding
// rather than a named function.
type PointerResolver struct {
	values    []FunctionPointerValue
	callSites []FunctionPointerCallSite
}

// NewPointerResolver creates an empty pointer/closure resolver.
func NewPointerResolver() *PointerResolver {
	return &PointerResolver{}
}

// RecordValue registers a function passed as a value under a binding
// name.
func (r *PointerResolver) RecordValue(v FunctionPointerValue) {
	r.values = append(r.values, v)
}

// RecordCallSite registers a call site that invokes a binding.
func (r *PointerResolver) RecordCallSite(site FunctionPointerCallSite) {
	r.callSites = append(r.callSites, site)
}

// Resolve adds a Callback edge from each call site to every function
// value that may flow through its invoked binding (§4.4 phase 3:
// "resolve by data flow to all values the pointer may hold") and marks
// each resolved target as reachable through a function pointer, for the
// dead-code dampener.
func (r *PointerResolver) Resolve(g *Graph) {
	byBinding := make(map[string][]model.FunctionId)
	for _, v := range r.values {
		byBinding[v.Binding] = append(byBinding[v.Binding], v.Function)
	}

	for _, site := range r.callSites {
		for _, target := range byBinding[site.Binding] {
			g.AddEdge(site.Caller, target, model.EdgeCallback)
			g.MarkReachableViaFunctionPointer(target)
		}
	}
}
