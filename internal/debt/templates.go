package debt

import (
	"fmt"

	"github.com/ingo/debtmap-go/pkg/model"
)

// patternFamily is the recommendation-template family named by §4.8:
// a coarse shape for how the primary action is phrased, independent of
// debt type.
type patternFamily int

const (
	familySimpleExtraction patternFamily = iota
	familyFunctionalDecomposition
	familyParser
	familyBuilder
	familyAsync
)

// classifyPatternFamily picks a template family from cheap structural
// signals (nesting depth as a proxy for parser/state-machine shape,
// cyclomatic count as a proxy for decomposability). Languages with
// native async syntax get the async family when nesting is shallow but
// cyclomatic is high, matching the "awaited branches fan out" shape.
func classifyPatternFamily(lang model.Language, cyclomatic, nestingDepth int) patternFamily {
	switch {
	case nestingDepth >= 4:
		return familyParser
	case cyclomatic >= 15 && nestingDepth <= 2:
		if lang == model.LangJavaScript || lang == model.LangTypeScript || lang == model.LangRust {
			return familyAsync
		}
		return familyBuilder
	case cyclomatic >= 8:
		return familyFunctionalDecomposition
	default:
		return familySimpleExtraction
	}
}

// RecommendFor builds the templated recommendation (§4.8): a primary
// action, a why phrased in terms of the observed metrics, and concrete
// steps, selected by debt type first and then refined by pattern family.
func RecommendFor(lang model.Language, debtType model.DebtType, cyclomatic, nestingDepth int, coveragePct float64) model.Recommendation {
	family := classifyPatternFamily(lang, cyclomatic, nestingDepth)

	switch debtType {
	case model.DebtDeadCode:
		return model.Recommendation{
			PrimaryAction: "Confirm and remove dead code",
			Why:           "No live caller reaches this function through the call graph.",
			Steps: []string{
				"Verify no dynamic dispatch or reflection-based call reaches this function",
				"Remove the function and its now-unused imports",
				"Re-run the call graph to confirm no new callers appear",
			},
			EffortHours: 1,
		}
	case model.DebtErrorSwallowing:
		return model.Recommendation{
			PrimaryAction: "Propagate or log swallowed errors",
			Why:           "This function discards error values instead of propagating or recording them.",
			Steps: []string{
				"Replace ignored error returns with explicit propagation",
				"Add a log line or metric for errors that are intentionally non-fatal",
			},
			EffortHours: 1.5,
		}
	case model.DebtResourceManagement:
		return model.Recommendation{
			PrimaryAction: "Tie resource lifetime to a deterministic scope",
			Why:           "This function acquires a resource without a guaranteed release path on every branch.",
			Steps: []string{
				"Wrap acquisition and release in a defer or RAII-equivalent guard",
				"Audit early-return branches for missed cleanup",
			},
			EffortHours: 2,
		}
	case model.DebtTestingGap:
		return testingGapRecommendation(family, cyclomatic, coveragePct)
	default:
		return complexityRecommendation(family, cyclomatic, nestingDepth)
	}
}

func testingGapRecommendation(family patternFamily, cyclomatic int, coveragePct float64) model.Recommendation {
	why := fmt.Sprintf("Coverage is %.0f%% against %d branches, leaving most paths unverified.", coveragePct, cyclomatic)
	switch family {
	case familyParser:
		return model.Recommendation{
			PrimaryAction: "Add grammar-shaped test cases",
			Why:           why,
			Steps: []string{
				"Enumerate one test per grammar production or parse state",
				"Add malformed-input cases for every early-return error path",
			},
			EffortHours: 3,
		}
	case familyAsync:
		return model.Recommendation{
			PrimaryAction: "Cover each awaited branch independently",
			Why:           why,
			Steps: []string{
				"Test the success path and each distinct failure/timeout branch",
				"Add a cancellation/context-deadline test if applicable",
			},
			EffortHours: 2.5,
		}
	default:
		return model.Recommendation{
			PrimaryAction: "Add unit tests for uncovered branches",
			Why:           why,
			Steps: []string{
				"Write one test per uncovered branch reported by the coverage gap",
				"Add an edge-case test for boundary inputs",
			},
			EffortHours: 2,
		}
	}
}

func complexityRecommendation(family patternFamily, cyclomatic, nestingDepth int) model.Recommendation {
	why := fmt.Sprintf("Cyclomatic complexity %d and nesting depth %d make this function hard to follow and change safely.", cyclomatic, nestingDepth)
	switch family {
	case familyParser:
		return model.Recommendation{
			PrimaryAction: "Split into per-state parse functions",
			Why:           why,
			Steps: []string{
				"Extract one function per parser state or grammar rule",
				"Replace deep nesting with early returns on invalid input",
			},
			EffortHours: 4,
		}
	case familyBuilder:
		return model.Recommendation{
			PrimaryAction: "Extract a builder for the constructed value",
			Why:           why,
			Steps: []string{
				"Introduce a builder type with one method per configuration step",
				"Move validation into the builder's finalize step",
			},
			EffortHours: 3,
		}
	case familyAsync:
		return model.Recommendation{
			PrimaryAction: "Decompose into named async steps",
			Why:           why,
			Steps: []string{
				"Extract each awaited branch into its own named function",
				"Centralize error handling at the orchestration boundary",
			},
			EffortHours: 3,
		}
	case familyFunctionalDecomposition:
		return model.Recommendation{
			PrimaryAction: "Decompose into smaller pure functions",
			Why:           why,
			Steps: []string{
				"Identify independent computations within the function body",
				"Extract each into a named, independently-testable function",
			},
			EffortHours: 2.5,
		}
	default:
		return model.Recommendation{
			PrimaryAction: "Extract a helper for the most complex branch",
			Why:           why,
			Steps: []string{
				"Identify the single most deeply-nested branch",
				"Extract it into a named helper function",
			},
			EffortHours: model.DefaultExtractLogicEffortHours,
		}
	}
}
