package callgraph

import "github.com/ingo/debtmap-go/pkg/model"

// TraitImpl records one `impl Trait for Type` block discovered during
// source scanning: the concrete method it contributes for a given trait
// method signature (§4.4 phase 2).
type TraitImpl struct {
	Trait      string
	Method     string // the trait method name, e.g. "run"
	Target     model.FunctionId
}

// TraitCallSite records a `Trait::method(...)` call site whose receiver
// type is not known at the call site (§4.4 phase 2): resolution happens
// at finalize, once every impl is known.
type TraitCallSite struct {
	Caller model.FunctionId
	Trait  string
	Method string
}

// TraitResolver accumulates phase-2 facts across files and resolves them
// once, at finalization, into Delegate edges (§4.4): "on finalize, for
// each call site, add Delegate edges to all implementations whose method
// signature matches; mark implementations as trait-dispatch targets."
type TraitResolver struct {
	impls     []TraitImpl
	callSites []TraitCallSite
}

// NewTraitResolver creates an empty trait resolver.
func NewTraitResolver() *TraitResolver {
	return &TraitResolver{}
}

// RecordImpl registers one impl-block method as implementing a trait
// method (§4.4 phase 2, first half).
func (r *TraitResolver) RecordImpl(impl TraitImpl) {
	r.impls = append(r.impls, impl)
}

// RecordCallSite registers a `Trait::method` call site (§4.4 phase 2,
// second half).
func (r *TraitResolver) RecordCallSite(site TraitCallSite) {
	r.callSites = append(r.callSites, site)
}

// Resolve adds Delegate edges from every recorded call site to every
// matching implementation (by trait + method name) and marks those
// implementations as trait-dispatch targets. Safe to call more than once
// — re-running at finalization to catch impls discovered after the first
// pass is an explicit requirement (§4.4 "Finalization... re-run
// trait-call resolution").
func (r *TraitResolver) Resolve(g *Graph) {
	byTraitMethod := make(map[string][]model.FunctionId)
	for _, impl := range r.impls {
		key := impl.Trait + "::" + impl.Method
		byTraitMethod[key] = append(byTraitMethod[key], impl.Target)
	}

	for _, site := range r.callSites {
		key := site.Trait + "::" + site.Method
		for _, target := range byTraitMethod[key] {
			g.AddEdge(site.Caller, target, model.EdgeDelegate)
			g.MarkTraitDispatchTarget(target)
		}
	}
}

// commonTraitMethods are the conventionally-generated trait methods whose
// implementations are marked as entry points during finalization (§4.4
// "Finalization... detect common-trait patterns").
var commonTraitMethods = map[string]bool{
	"Default::default": true,
	"Clone::clone":      true,
	"From::from":        true,
	"Into::into":        true,
}

// isConventionalConstructorName matches conventional constructor method
// names independent of any trait (§4.4 finalization: "conventional
// constructors new/with_*/build").
func isConventionalConstructorName(name string) bool {
	if name == "new" || name == "build" {
		return true
	}
	return len(name) > len("with_") && name[:len("with_")] == "with_"
}

// MarkCommonTraitEntryPoints applies the finalization rule: implementations
// of Default/Clone/From/Into, and functions with conventional constructor
// names, become entry points (§4.4).
func (r *TraitResolver) MarkCommonTraitEntryPoints(g *Graph) {
	for _, impl := range r.impls {
		key := impl.Trait + "::" + impl.Method
		if commonTraitMethods[key] {
			g.MarkEntryPoint(impl.Target)
		}
	}
	for _, id := range g.order {
		if isConventionalConstructorName(id.Name) {
			g.MarkEntryPoint(id)
		}
	}
}
