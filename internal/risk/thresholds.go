// Package risk implements C7 (the four independent evidence calculators)
// and C8 (the risk aggregator) of the analysis pipeline (spec.md
// §4.6-§4.7).
//
// Grounded on the teacher's threshold-band scoring in internal/scoring
// (piecewise breakpoint interpolation over role/severity bands) and on
// the role-multiplier tables of
// _examples/original_source/src/risk/evidence_calculator.rs; the
// statistical-baseline shape follows spec.md §9 "All severity bands
// derive from a baseline distribution ... keyed by function role or
// module type."
package risk

import "github.com/ingo/debtmap-go/pkg/model"

// Bands is a {low, moderate, high, critical} threshold quadruple for one
// metric (§4.6.1).
type Bands struct {
	Low, Moderate, High, Critical float64
}

// ComplexityBaseline is the statistical baseline for the complexity
// analyzer, keyed by metric (§9: "Treat the baseline as a configuration
// surface"). Default values approximate commonly-cited P50/P75/P90/P99
// cyclomatic/cognitive/line-count percentiles and are meant to be
// replaced by a project-computed distribution.
type ComplexityBaseline struct {
	Cyclomatic Bands
	Cognitive  Bands
	Lines      Bands
}

// DefaultComplexityBaseline is the out-of-the-box baseline used absent a
// project-specific distribution.
var DefaultComplexityBaseline = ComplexityBaseline{
	Cyclomatic: Bands{Low: 5, Moderate: 10, High: 20, Critical: 40},
	Cognitive:  Bands{Low: 5, Moderate: 12, High: 25, Critical: 50},
	Lines:      Bands{Low: 20, Moderate: 50, High: 100, Critical: 200},
}

// complexityRoleMultiplier implements §4.6.1's role-adjustment
// multiplier applied to the baseline thresholds before scoring.
func complexityRoleMultiplier(role model.Role) float64 {
	switch role {
	case model.RolePureLogic:
		return 1.0
	case model.RoleOrchestrator:
		return 1.5
	case model.RoleIOWrapper:
		return 2.0
	case model.RoleEntryPoint:
		return 1.2
	default:
		return 1.0
	}
}

// adjust scales a Bands quadruple by a role multiplier.
func (b Bands) adjust(mult float64) Bands {
	return Bands{
		Low:      b.Low * mult,
		Moderate: b.Moderate * mult,
		High:     b.High * mult,
		Critical: b.Critical * mult,
	}
}

// pieceLinear maps a raw value to a 0-10 score via piecewise-linear
// interpolation over the five bands [0, Low, Moderate, High, Critical,
// +inf] anchored at scores [0, 2.5, 5, 7.5, 10, 10] (§4.6.1 "piecewise-
// linear map over five bands anchored at the role-adjusted thresholds").
func pieceLinear(value float64, b Bands) float64 {
	anchors := []struct {
		x, y float64
	}{
		{0, 0},
		{b.Low, 2.5},
		{b.Moderate, 5},
		{b.High, 7.5},
		{b.Critical, 10},
	}

	if value <= anchors[0].x {
		return anchors[0].y
	}
	for i := 1; i < len(anchors); i++ {
		if value <= anchors[i].x {
			prev, cur := anchors[i-1], anchors[i]
			if cur.x == prev.x {
				return cur.y
			}
			frac := (value - prev.x) / (cur.x - prev.x)
			return prev.y + frac*(cur.y-prev.y)
		}
	}
	return 10
}

// severityFor bands a raw value using the same thresholds (§4.6.1
// "Severity bands mirror thresholds").
func severityFor(value float64, b Bands) model.Severity {
	switch {
	case value <= b.Low:
		return model.SeverityLow
	case value <= b.Moderate:
		return model.SeverityModerate
	case value <= b.High:
		return model.SeverityHigh
	default:
		return model.SeverityCritical
	}
}

// ModuleType classifies a file/module for the coupling analyzer's
// baseline lookup (§4.6.3).
type ModuleType int

const (
	ModuleCore ModuleType = iota
	ModuleAPI
	ModuleUtil
	ModuleInfrastructure
	ModuleTest
)

func (m ModuleType) String() string {
	switch m {
	case ModuleAPI:
		return "Api"
	case ModuleUtil:
		return "Util"
	case ModuleInfrastructure:
		return "Infrastructure"
	case ModuleTest:
		return "Test"
	default:
		return "Core"
	}
}

// couplingMultiplier implements the module-type multiplier of §4.6.3.
func couplingMultiplier(mt ModuleType) float64 {
	switch mt {
	case ModuleAPI:
		return 1.5
	case ModuleUtil:
		return 1.0
	case ModuleTest:
		return 3.0
	case ModuleInfrastructure:
		return 1.0
	default:
		return 2.0
	}
}

// CouplingBaseline is the baseline afferent+efferent count threshold
// before module-type multiplication (§4.6.3).
var CouplingBaseline = Bands{Low: 5, Moderate: 10, High: 20, Critical: 40}

// couplingWeight implements §4.7's weight-by-module-type table.
func couplingWeight(mt ModuleType) float64 {
	switch mt {
	case ModuleAPI:
		return 0.9
	case ModuleUtil:
		return 0.8
	case ModuleInfrastructure:
		return 0.7
	case ModuleTest:
		return 0.3
	default:
		return 1.0
	}
}
