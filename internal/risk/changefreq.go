package risk

import "github.com/ingo/debtmap-go/pkg/model"

// HistoryProvider supplies change-frequency statistics for a function's
// file (§4.6.4), typically backed by a git log walk (internal/history).
// A nil HistoryProvider means the analyzer is not configured; its factor
// is then a zero-weight no-op so aggregation ignores it entirely.
type HistoryProvider interface {
	CommitsLastMonth(filePath string) int
	BugFixRatio(filePath string) float64
	HotspotIntensity(filePath string) float64
}

// ChangeFrequencyBaseline bands commit counts relative to a repository
// baseline (§4.6.4 "comparison to a repository baseline").
var ChangeFrequencyBaseline = Bands{Low: 2, Moderate: 5, High: 10, Critical: 20}

// AnalyzeChangeFrequency implements the optional change-frequency
// evidence calculator (§4.6.4). A nil provider yields a zero-weight
// factor so it is excluded from the C8 weighted mean.
func AnalyzeChangeFrequency(provider HistoryProvider, filePath string) model.RiskFactor {
	if provider == nil {
		return model.RiskFactor{Type: model.RiskChangeFrequency, Weight: 0}
	}

	commits := provider.CommitsLastMonth(filePath)
	bugRatio := provider.BugFixRatio(filePath)
	hotspot := provider.HotspotIntensity(filePath)

	commitScore := pieceLinear(float64(commits), ChangeFrequencyBaseline)
	bugScore := bugRatio * 10
	if bugScore > 10 {
		bugScore = 10
	}
	hotspotScore := hotspot * 10
	if hotspotScore > 10 {
		hotspotScore = 10
	}

	score := 0.40*commitScore + 0.35*bugScore + 0.25*hotspotScore
	severity := bandBySeverity(score)

	return model.RiskFactor{
		Type:     model.RiskChangeFrequency,
		Score:    score,
		Severity: severity,
		Evidence: model.RiskEvidence{Change: &model.ChangeEvidence{
			CommitsLastMonth: commits,
			BugFixRatio:      bugRatio,
			HotspotIntensity: hotspot,
		}},
		RemediationActions: changeFrequencyRemediation(severity),
		Weight:             0.6,
		Confidence:         0.7,
	}
}

func changeFrequencyRemediation(sev model.Severity) []model.RemediationAction {
	if sev == model.SeverityLow || sev == model.SeverityModerate {
		return nil
	}
	return []model.RemediationAction{{
		Kind:        "StabilizeHotspot",
		Description: "This file changes often with a high bug-fix ratio; consider isolating it behind a stable interface before further edits.",
		EffortHours: model.DefaultExtractLogicEffortHours,
	}}
}
