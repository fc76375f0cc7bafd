package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/ingo/debtmap-go/pkg/model"
)

func TestBuildReport_CopiesAnalysisFields(t *testing.T) {
	a := sampleAnalysis()
	report := BuildReport(a)

	if report.Version != "1" {
		t.Errorf("Version = %q, want %q", report.Version, "1")
	}
	if report.OverallCoverageRatio != a.OverallCoverageRatio {
		t.Errorf("OverallCoverageRatio = %v, want %v", report.OverallCoverageRatio, a.OverallCoverageRatio)
	}
	if len(report.Items) != len(a.Items) {
		t.Errorf("Items len = %d, want %d", len(report.Items), len(a.Items))
	}
}

func TestJSON_RoundTripsThroughEncoding(t *testing.T) {
	report := BuildReport(sampleAnalysis())

	var buf bytes.Buffer
	if err := JSON(&buf, report); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded.Items) != len(report.Items) {
		t.Errorf("decoded Items len = %d, want %d", len(decoded.Items), len(report.Items))
	}
	if decoded.Items[0].Location.Name != "Bar" {
		t.Errorf("decoded first item name = %q, want Bar", decoded.Items[0].Location.Name)
	}
}

func TestJSON_IsIndented(t *testing.T) {
	report := BuildReport(&model.UnifiedAnalysis{})
	var buf bytes.Buffer
	if err := JSON(&buf, report); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"")) {
		t.Error("expected indented JSON output")
	}
}
