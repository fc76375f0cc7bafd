// Package model holds the data types shared across the debt analysis
// pipeline: function identity, call-graph nodes and edges, coverage
// records, risk factors, and the final ranked debt items. Types here are
// value-typed and immutable once their producing phase completes, per the
// pure-core/effectful-shell design of the workflow package.
package model

import "fmt"

// Language identifies the source language a file was written in.
type Language string

const (
	LangGo         Language = "go"
	LangRust       Language = "rust"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangUnknown    Language = "unknown"
)

// Visibility is a function's access level.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityCrate
	VisibilityPublic
)

// FunctionId is the value-typed identity of a function: file path, name,
// and declaration line. Two FunctionIds are equal iff all three fields
// match; it is safe to use as a map key.
type FunctionId struct {
	FilePath string
	Name     string
	Line     int
}

// String renders a FunctionId for diagnostics and tie-break ordering.
func (id FunctionId) String() string {
	return fmt.Sprintf("%s:%d:%s", id.FilePath, id.Line, id.Name)
}

// Less orders FunctionIds by (file, line) lexicographically, the
// deterministic tie-break used when two debt items have equal scores.
func (id FunctionId) Less(other FunctionId) bool {
	if id.FilePath != other.FilePath {
		return id.FilePath < other.FilePath
	}
	if id.Line != other.Line {
		return id.Line < other.Line
	}
	return id.Name < other.Name
}

// Role is the semantic category the classifier (C6) assigns to a function.
type Role int

const (
	RoleUnknown Role = iota
	RolePureLogic
	RoleOrchestrator
	RoleIOWrapper
	RoleEntryPoint
	RolePatternMatch
	RoleDebug
)

func (r Role) String() string {
	switch r {
	case RolePureLogic:
		return "pure logic"
	case RoleOrchestrator:
		return "orchestrator"
	case RoleIOWrapper:
		return "I/O wrapper"
	case RoleEntryPoint:
		return "entry point"
	case RolePatternMatch:
		return "pattern match"
	case RoleDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// PurityVerdict is the outcome of purity inference for a function.
type PurityVerdict int

const (
	PurityUnknown PurityVerdict = iota
	PurityPure
	PurityImpure
)

// FunctionMetrics carries the raw and enriched per-function data that
// flows through the pipeline. Enrichment slots (Callers, Callees, Purity,
// PurityConfidence, Role, Patterns, ErrorSwallowCount, IsResourceHeavy)
// start empty and are filled by exactly one phase each; no later phase
// overwrites an earlier phase's output (§3 invariant).
type FunctionMetrics struct {
	ID FunctionId

	Cyclomatic    int
	Cognitive     int
	NestingDepth  int
	Length        int
	IsTestMarker  bool
	InTestModule  bool
	Visibility    Visibility
	IsTraitMethod bool

	// Enrichment slots. PurityConfidence is a pointer so "not yet computed"
	// (nil) is distinguishable from "computed as zero confidence" (ptr to 0).
	Callers           []FunctionId
	Callees           []FunctionId
	Purity            PurityVerdict
	PurityConfidence  *float64
	Role              Role
	Patterns          []string
	ErrorSwallowCount int
	IsResourceHeavy   bool
}

// IsTrivial reports whether a function is trivial enough to be excluded
// from scoring consideration (§4.8, §8): cyclomatic == 1, cognitive == 0,
// length <= 3, and exactly one callee.
func (fm *FunctionMetrics) IsTrivial() bool {
	return fm.Cyclomatic == 1 && fm.Cognitive == 0 && fm.Length <= 3 && len(fm.Callees) == 1
}
