package risk

import (
	"math"

	"github.com/ingo/debtmap-go/pkg/model"
)

// ComplexityInput is what the complexity analyzer needs from a function
// (§4.6.1).
type ComplexityInput struct {
	ID         model.FunctionId
	Cyclomatic int
	Cognitive  int
	Length     int
	Role       model.Role
}

// complexityWeight implements §4.6.1's weight-by-role table. PatternMatch
// and Debug are not named in the spec table; they fall back to the
// Unknown weight (§9 Open Question resolution — the unnamed roles are
// the ones the classifier itself treats as low-signal catch-alls).
func complexityWeight(role model.Role) float64 {
	switch role {
	case model.RolePureLogic:
		return 1.0
	case model.RoleEntryPoint:
		return 0.8
	case model.RoleOrchestrator:
		return 0.7
	case model.RoleIOWrapper:
		return 0.5
	default:
		return 0.9
	}
}

// complexityConfidence implements §4.6.1's confidence-by-total-points
// table.
func complexityConfidence(totalPoints int) float64 {
	switch {
	case totalPoints < 5:
		return 0.6
	case totalPoints < 15:
		return 0.8
	case totalPoints < 30:
		return 0.9
	default:
		return 0.95
	}
}

// AnalyzeComplexity implements the complexity evidence calculator
// (§4.6.1): role-adjusted thresholds, a weighted piecewise-linear
// composite score, severity-scaled remediation, and a confidence that
// rises with total complexity points.
func AnalyzeComplexity(in ComplexityInput, baseline ComplexityBaseline) model.RiskFactor {
	mult := complexityRoleMultiplier(in.Role)
	cycloBands := baseline.Cyclomatic.adjust(mult)
	cogBands := baseline.Cognitive.adjust(mult)
	lineBands := baseline.Lines.adjust(mult)

	cycloScore := pieceLinear(float64(in.Cyclomatic), cycloBands)
	cogScore := pieceLinear(float64(in.Cognitive), cogBands)
	lineScore := pieceLinear(float64(in.Length), lineBands)

	score := 0.40*cycloScore + 0.45*cogScore + 0.15*lineScore
	severity := severityFor(float64(in.Cyclomatic), cycloBands)
	if cogSeverity := severityFor(float64(in.Cognitive), cogBands); cogSeverity > severity {
		severity = cogSeverity
	}

	actions := complexityRemediation(severity, in)
	confidence := complexityConfidence(in.Cyclomatic + in.Cognitive)

	return model.RiskFactor{
		Type:     model.RiskComplexity,
		Score:    score,
		Severity: severity,
		Evidence: model.RiskEvidence{Complexity: &model.ComplexityEvidence{
			Cyclomatic:           in.Cyclomatic,
			Cognitive:            in.Cognitive,
			Lines:                in.Length,
			RoleAdjustedLow:      cycloBands.Low,
			RoleAdjustedModerate: cycloBands.Moderate,
			RoleAdjustedHigh:     cycloBands.High,
			RoleAdjustedCritical: cycloBands.Critical,
			ExtractionCandidates: extractionCandidates(in, severity),
		}},
		RemediationActions: actions,
		Weight:             complexityWeight(in.Role),
		Confidence:         confidence,
	}
}

func complexityRemediation(sev model.Severity, in ComplexityInput) []model.RemediationAction {
	var actions []model.RemediationAction
	switch sev {
	case model.SeverityModerate:
		actions = append(actions,
			model.RemediationAction{Kind: "ExtractMethod", Description: "Extract a cohesive sub-block into its own method."},
			model.RemediationAction{Kind: "ReduceNesting", Description: "Flatten nested conditionals."},
		)
	case model.SeverityHigh:
		actions = append(actions,
			model.RemediationAction{Kind: "ExtractMethod", Description: "Extract a cohesive sub-block into its own method."},
			model.RemediationAction{Kind: "ReduceNesting", Description: "Flatten nested conditionals."},
			model.RemediationAction{Kind: "EliminateElseAfterReturn", Description: "Drop else branches that follow an early return."},
			model.RemediationAction{Kind: "ReplaceConditionalWithPolymorphism", Description: "Replace a type-switch with dispatch."},
		)
	case model.SeverityCritical:
		actions = append(actions,
			model.RemediationAction{Kind: "ExtractMethod", Description: "Extract a cohesive sub-block into its own method."},
			model.RemediationAction{Kind: "ReduceNesting", Description: "Flatten nested conditionals."},
			model.RemediationAction{Kind: "EliminateElseAfterReturn", Description: "Drop else branches that follow an early return."},
			model.RemediationAction{Kind: "ReplaceConditionalWithPolymorphism", Description: "Replace a type-switch with dispatch."},
			model.RemediationAction{Kind: "ExtractClass", Description: "Split responsibilities into a new type."},
			model.RemediationAction{Kind: "IntroduceParameterObject", Description: "Group related parameters into a struct."},
		)
	}
	return actions
}

// extractionCandidates synthesizes line-range suggestions for Critical
// complexity (§4.6.1: "estimated as (cyclo+cog)/10, capped at 5").
func extractionCandidates(in ComplexityInput, sev model.Severity) []model.LineRange {
	if sev != model.SeverityCritical {
		return nil
	}
	n := int(math.Round(float64(in.Cyclomatic+in.Cognitive) / 10.0))
	if n > 5 {
		n = 5
	}
	if n <= 0 {
		return nil
	}
	span := in.Length / (n + 1)
	if span < 1 {
		span = 1
	}
	candidates := make([]model.LineRange, 0, n)
	start := in.ID.Line
	for i := 0; i < n; i++ {
		s := start + i*span
		candidates = append(candidates, model.LineRange{Start: s, End: s + span})
	}
	return candidates
}
