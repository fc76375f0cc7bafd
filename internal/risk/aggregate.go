package risk

import (
	"sort"
	"strconv"

	"github.com/ingo/debtmap-go/pkg/model"
)

// roleMultiplier implements §4.7 step 2's role multiplier applied to the
// aggregated mean score.
func roleMultiplier(role model.Role) float64 {
	switch role {
	case model.RolePureLogic:
		return 1.2
	case model.RoleEntryPoint:
		return 1.1
	case model.RoleOrchestrator:
		return 0.9
	case model.RoleIOWrapper:
		return 0.7
	case model.RolePatternMatch:
		return 0.5
	case model.RoleDebug:
		return 0.4
	default:
		return 1.0
	}
}

// roleLeniency implements §4.7 step 3's classification leniency,
// subtracted from the score before banding.
func roleLeniency(role model.Role) float64 {
	switch role {
	case model.RoleIOWrapper:
		return 1.0
	case model.RoleOrchestrator:
		return 0.5
	case model.RolePatternMatch:
		return 1.5
	case model.RoleDebug:
		return 2.0
	default:
		return 0
	}
}

// Classify implements §4.7 step 3 in isolation (exercised directly by
// §8 scenario S5): subtract the role leniency, floor at 0, then band.
func Classify(score float64, role model.Role) model.RiskClassification {
	adjusted := score - roleLeniency(role)
	if adjusted < 0 {
		adjusted = 0
	}
	switch {
	case adjusted <= 2.0:
		return model.ClassWellDesigned
	case adjusted <= 4.0:
		return model.ClassAcceptable
	case adjusted <= 7.0:
		return model.ClassNeedsImprovement
	case adjusted <= 9.0:
		return model.ClassRisky
	default:
		return model.ClassCritical
	}
}

var rolePhrase = map[model.Role]string{
	model.RolePureLogic:     "pure logic",
	model.RoleOrchestrator:  "orchestrator",
	model.RoleIOWrapper:     "I/O wrapper",
	model.RoleEntryPoint:    "entry point",
	model.RolePatternMatch:  "pattern match",
	model.RoleDebug:         "debug",
	model.RoleUnknown:       "unknown",
}

var severityPhrase = map[model.Severity]string{
	model.SeverityLow:      "low severity",
	model.SeverityModerate: "moderate severity",
	model.SeverityHigh:     "high severity",
	model.SeverityCritical: "critical severity",
	model.SeverityNone:     "no measurable severity",
}

// Aggregate implements the full C8 pipeline (§4.7): weighted mean, role
// multiplier, leniency-adjusted classification, confidence aggregation,
// top-3 recommendations by ascending effort, and a templated explanation.
func Aggregate(fn model.FunctionId, role model.Role, factors []model.RiskFactor) model.AggregatedRisk {
	var weightedSum, weightSum float64
	var confSum float64
	var primary *model.RiskFactor

	for i := range factors {
		f := &factors[i]
		if f.Weight <= 0 {
			continue
		}
		weightedSum += f.Score * f.Weight
		weightSum += f.Weight
		confSum += f.Confidence * f.Weight

		if primary == nil || f.Score > primary.Score {
			primary = f
		}
	}

	mean := 0.0
	if weightSum > 0 {
		mean = weightedSum / weightSum
	}

	adjusted := mean * roleMultiplier(role)
	if adjusted < 0 {
		adjusted = 0
	}
	if adjusted > 10 {
		adjusted = 10
	}

	classification := Classify(adjusted, role)

	confidence := 0.5
	if weightSum > 0 {
		confidence = confSum / weightSum
	}

	recs := topRecommendations(factors, 3)

	explanation := explain(adjusted, role, primary)

	return model.AggregatedRisk{
		Function:        fn,
		Role:            role,
		Score:           adjusted,
		Classification:  classification,
		Confidence:      confidence,
		Recommendations: recs,
		Explanation:     explanation,
	}
}

// topRecommendations concatenates every factor's remediation actions and
// takes the top 3 by ascending estimated effort (§4.7 step 5). Actions
// with no explicit effort default to DefaultExtractLogicEffortHours.
func topRecommendations(factors []model.RiskFactor, n int) []model.RemediationAction {
	var all []model.RemediationAction
	for _, f := range factors {
		all = append(all, f.RemediationActions...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		ei, ej := all[i].EffortHours, all[j].EffortHours
		if ei == 0 {
			ei = model.DefaultExtractLogicEffortHours
		}
		if ej == 0 {
			ej = model.DefaultExtractLogicEffortHours
		}
		return ei < ej
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// explain implements §4.7 step 6's templated explanation.
func explain(score float64, role model.Role, primary *model.RiskFactor) string {
	roleText := rolePhrase[role]
	if roleText == "" {
		roleText = "unknown"
	}
	if primary == nil {
		return "Risk score " + formatScore(score) + "/10 for " + roleText + " function."
	}
	return "Risk score " + formatScore(score) + "/10 for " + roleText + " function. Primary factor: " +
		primary.Type.String() + " with " + severityPhrase[primary.Severity] + "."
}

// formatScore renders one decimal place, matching §4.7's "X/10" phrasing.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}
