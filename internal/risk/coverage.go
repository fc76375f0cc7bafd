package risk

import (
	"strconv"
	"strings"

	"github.com/ingo/debtmap-go/pkg/model"
)

// CoverageInput is what the coverage analyzer needs (§4.6.2).
type CoverageInput struct {
	ID          model.FunctionId
	Cyclomatic  int
	Role        model.Role
	IsTest      bool
	CoveragePct float64 // 0..100; only meaningful when CoverageKnown
	CoverageKnown bool
}

func coverageWeight(role model.Role) float64 {
	switch role {
	case model.RolePureLogic:
		return 1.0
	case model.RoleEntryPoint:
		return 0.9
	case model.RoleOrchestrator:
		return 0.6
	case model.RoleIOWrapper:
		return 0.4
	default:
		return 0.8
	}
}

func criticalPathRoleMultiplier(role model.Role) float64 {
	switch role {
	case model.RolePureLogic, model.RoleEntryPoint:
		return 2.0
	case model.RoleOrchestrator:
		return 1.0
	case model.RoleIOWrapper:
		return 0.5
	default:
		return 1.0
	}
}

// testQualityBand implements §4.6.2's banding, returning the band name
// and its risk contribution on a 0-10 scale (higher = worse).
func testQualityBand(coveragePct float64, cyclomatic int) (string, float64) {
	switch {
	case coveragePct >= 90 && cyclomatic <= 5:
		return "Excellent", 0
	case coveragePct >= 80:
		return "Good", 2
	case coveragePct >= 60:
		return "Adequate", 4
	case coveragePct > 0:
		return "Poor", 7
	default:
		return "Missing", 10
	}
}

// AnalyzeCoverage implements the coverage evidence calculator (§4.6.2).
// Test functions receive a zero-weight factor by definition.
func AnalyzeCoverage(in CoverageInput) model.RiskFactor {
	if in.IsTest {
		return model.RiskFactor{Type: model.RiskCoverage, Weight: 0}
	}

	coveragePct := in.CoveragePct
	if !in.CoverageKnown {
		coveragePct = 0
	}

	gapScore := (1 - coveragePct/100) * 10

	criticalPaths := float64(in.Cyclomatic) * (1 - coveragePct/100) * criticalPathRoleMultiplier(in.Role)
	criticalScore := criticalPaths
	if criticalScore > 10 {
		criticalScore = 10
	}

	qualityBand, qualityScore := testQualityBand(coveragePct, in.Cyclomatic)

	score := 0.60*gapScore + 0.25*criticalScore + 0.15*qualityScore
	severity := bandBySeverity(score)

	confidence := 0.7
	if coveragePct == 0 {
		confidence = 0.9
	} else if coveragePct >= 100 {
		confidence = 0.95
	}

	return model.RiskFactor{
		Type:     model.RiskCoverage,
		Score:    score,
		Severity: severity,
		Evidence: model.RiskEvidence{Coverage: &model.CoverageEvidence{
			CoveragePct:            coveragePct,
			CriticalPathsUncovered: criticalPaths,
			TestQuality:            qualityBand,
		}},
		RemediationActions: coverageRemediation(severity),
		Weight:             coverageWeight(in.Role),
		Confidence:         confidence,
	}
}

// bandBySeverity applies the generic quartile bucketing used across
// analyzers whose composite score is already on a 0-10 scale.
func bandBySeverity(score float64) model.Severity {
	switch {
	case score <= 2.5:
		return model.SeverityLow
	case score <= 5:
		return model.SeverityModerate
	case score <= 7.5:
		return model.SeverityHigh
	default:
		return model.SeverityCritical
	}
}

func coverageRemediation(sev model.Severity) []model.RemediationAction {
	if sev == model.SeverityLow {
		return nil
	}
	testTypes := []string{"Unit", "EdgeCase"}
	target := 80.0
	switch sev {
	case model.SeverityHigh:
		testTypes = append(testTypes, "Integration")
		target = 90
	case model.SeverityCritical:
		testTypes = append(testTypes, "Integration", "Parameterized", "Property")
		target = 95
	}
	return []model.RemediationAction{{
		Kind:        "AddTestCoverage",
		Description: "Add " + strings.Join(testTypes, ", ") + " tests toward " + strconv.Itoa(int(target)) + "% coverage.",
		EffortHours: model.DefaultExtractLogicEffortHours,
	}}
}
