package risk

import "github.com/ingo/debtmap-go/pkg/model"

// circularDFSMaxDepth bounds the circular-dependency search (§4.6.3, §9:
// "depth <= 5 is a deliberate precision/cost trade-off").
const circularDFSMaxDepth = 5

// CouplingInput is what the coupling analyzer needs (§4.6.3). Callees is
// the adjacency the bounded DFS walks to look for a path back to ID.
type CouplingInput struct {
	ID         model.FunctionId
	Afferent   int // |callers|
	Efferent   int // |callees|
	ModuleType ModuleType
	Callees    func(model.FunctionId) []model.FunctionId
}

// circularChainLength runs a depth-bounded DFS from each direct callee of
// in.ID searching for a path back to in.ID, and returns the smallest of
// the per-callee chain lengths (0 if none within the depth bound). Each
// callee's search returns the first path it finds, which is not always
// the shortest path through that callee. (§4.6.3, §9 "bounded DFS with
// a visited set").
func circularChainLength(in CouplingInput) int {
	if in.Callees == nil {
		return 0
	}
	best := 0
	for _, callee := range in.Callees(in.ID) {
		if length, found := dfsFindPath(in.Callees, callee, in.ID, 1, circularDFSMaxDepth, map[model.FunctionId]bool{in.ID: true}); found {
			if best == 0 || length < best {
				best = length
			}
		}
	}
	return best
}

func dfsFindPath(callees func(model.FunctionId) []model.FunctionId, cur, target model.FunctionId, depth, maxDepth int, visited map[model.FunctionId]bool) (int, bool) {
	if cur == target {
		return depth, true
	}
	if depth >= maxDepth || visited[cur] {
		return 0, false
	}
	visited[cur] = true
	for _, next := range callees(cur) {
		if length, found := dfsFindPath(callees, next, target, depth+1, maxDepth, visited); found {
			return length, true
		}
	}
	return 0, false
}

// circularScore implements §4.6.3's discrete circular-chain-length score.
func circularScore(chainLen int) float64 {
	switch {
	case chainLen <= 0:
		return 0
	case chainLen == 1:
		return 3
	case chainLen == 2:
		return 6
	case chainLen == 3:
		return 8
	default:
		return 10
	}
}

// AnalyzeCoupling implements the coupling evidence calculator (§4.6.3).
func AnalyzeCoupling(in CouplingInput) model.RiskFactor {
	total := in.Afferent + in.Efferent
	instability := 0.0
	if total > 0 {
		instability = float64(in.Efferent) / float64(total)
	}

	bands := CouplingBaseline.adjust(couplingMultiplier(in.ModuleType))
	couplingScore := pieceLinear(float64(total), bands)

	instabilityScore := absF(instability-0.5) * 20
	if instabilityScore > 10 {
		instabilityScore = 10
	}

	chainLen := circularChainLength(in)
	circScore := circularScore(chainLen)

	score := 0.50*couplingScore + 0.30*instabilityScore + 0.20*circScore
	severity := severityFor(float64(total), bands)

	return model.RiskFactor{
		Type:     model.RiskCoupling,
		Score:    score,
		Severity: severity,
		Evidence: model.RiskEvidence{Coupling: &model.CouplingEvidence{
			Afferent:            in.Afferent,
			Efferent:            in.Efferent,
			Instability:         instability,
			CircularDepChainLen: chainLen,
			ModuleType:          in.ModuleType.String(),
		}},
		RemediationActions: couplingRemediation(severity),
		Weight:             couplingWeight(in.ModuleType),
		Confidence:         0.8,
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// couplingRemediation proposes remediation in increasing severity
// (§4.6.3: "dependency injection, facade, adapter, strategy, observer").
func couplingRemediation(sev model.Severity) []model.RemediationAction {
	all := []model.RemediationAction{
		{Kind: "DependencyInjection", Description: "Inject collaborators instead of constructing them inline."},
		{Kind: "Facade", Description: "Introduce a facade to narrow the dependency surface."},
		{Kind: "Adapter", Description: "Wrap an unstable dependency behind an adapter."},
		{Kind: "Strategy", Description: "Extract varying behavior into a strategy interface."},
		{Kind: "Observer", Description: "Decouple notification via an observer."},
	}
	switch sev {
	case model.SeverityLow:
		return nil
	case model.SeverityModerate:
		return all[:1]
	case model.SeverityHigh:
		return all[:3]
	default:
		return all
	}
}
