// Package classify implements C6, the semantic classifier that assigns a
// Role to each function from call-graph and metrics signals (spec.md
// §4.5). Grounded on the precedence-table style of the teacher's
// threshold-band lookups (internal/scoring) generalized from numeric
// bands to a signal-precedence chain, and on the role vocabulary and role
// multipliers of _examples/original_source/src/risk/evidence_calculator.rs.
package classify

import (
	"regexp"
	"strings"

	"github.com/ingo/debtmap-go/pkg/model"
)

// Signals is the full input the classifier reads to assign a Role
// (§4.5): call-graph degree and flags, a name, and body-shape metrics.
type Signals struct {
	Name string

	InDegree  int
	OutDegree int

	IsTraitMethod      bool
	IsFrameworkManaged bool
	IsTest             bool
	IsEntryPoint       bool

	Cyclomatic int
	Cognitive  int
	Length     int
}

var (
	handlePrefix = regexp.MustCompile(`^(handle_|on_)`)
	visitPrefix  = regexp.MustCompile(`^visit_`)
	debugName    = regexp.MustCompile(`(?i)(^dbg_|^debug_|_debug$|^print_)`)
)

// bodyShapeIOThreshold is the cyclomatic ceiling under which a short,
// high-fanout function is classified as an I/O wrapper rather than
// business logic (§4.5 "body-shape heuristics... short + pure I/O
// wrapper vs. high-cyclomatic business logic").
const bodyShapeIOThreshold = 3

// bodyShapeIOMaxLength bounds "short" for the I/O-wrapper body shape.
const bodyShapeIOMaxLength = 10

// Classify assigns exactly one Role from the signal precedence defined
// below (§9 Open Question: spec.md lists the signal set but not a
// precedence order between them; this module fixes one, deterministic
// chain so "same inputs ⇒ same role" holds trivially).
//
// Precedence, highest first:
//  1. Entry points and test functions are both externally-invoked roots
//     of the call graph (§4.4 reachability groups them identically) —
//     both classify as EntryPoint.
//  2. A framework-managed function whose name matches a debug/print
//     convention is Debug; any other framework-managed function is
//     already covered by rule 1 (MarkFrameworkManaged always sets
//     IsEntryPoint in the call graph).
//  3. A trait method named visit_* is PatternMatch (visitor pattern).
//  4. Orchestrator name heuristics (handle_*, on_*, main, poll).
//  5. Body-shape: short + low-complexity + calls-more-than-it-does-itself
//     is IOWrapper; high cyclomatic/cognitive is PureLogic.
//  6. Otherwise Unknown.
func Classify(s Signals) model.Role {
	if s.IsEntryPoint || s.IsTest {
		return model.RoleEntryPoint
	}

	if s.IsFrameworkManaged && debugName.MatchString(s.Name) {
		return model.RoleDebug
	}

	if s.IsTraitMethod && visitPrefix.MatchString(s.Name) {
		return model.RolePatternMatch
	}

	if isOrchestratorName(s.Name) {
		return model.RoleOrchestrator
	}

	if isIOWrapperShape(s) {
		return model.RoleIOWrapper
	}
	if isPureLogicShape(s) {
		return model.RolePureLogic
	}

	return model.RoleUnknown
}

func isOrchestratorName(name string) bool {
	if handlePrefix.MatchString(name) {
		return true
	}
	return name == "main" || name == "poll"
}

func isIOWrapperShape(s Signals) bool {
	return s.Length <= bodyShapeIOMaxLength &&
		s.Cyclomatic <= bodyShapeIOThreshold &&
		s.OutDegree > s.InDegree
}

func isPureLogicShape(s Signals) bool {
	return s.Cyclomatic > bodyShapeIOThreshold || s.Cognitive > bodyShapeIOThreshold
}

// FromMetrics adapts a model.FunctionMetrics + call-graph flags into
// Signals, the convenience entry point the workflow runner uses.
func FromMetrics(m *model.FunctionMetrics, inDegree, outDegree int, isFrameworkManaged, isEntryPoint bool) Signals {
	return Signals{
		Name:               nameOnly(m.ID.Name),
		InDegree:           inDegree,
		OutDegree:          outDegree,
		IsTraitMethod:      m.IsTraitMethod,
		IsFrameworkManaged: isFrameworkManaged,
		IsTest:             m.IsTestMarker,
		IsEntryPoint:       isEntryPoint,
		Cyclomatic:         m.Cyclomatic,
		Cognitive:          m.Cognitive,
		Length:             m.Length,
	}
}

// nameOnly strips any "::"-qualification so name heuristics match the
// bare function/method name regardless of trait or module qualification.
func nameOnly(full string) string {
	if idx := strings.LastIndex(full, "::"); idx >= 0 {
		return full[idx+2:]
	}
	return full
}
