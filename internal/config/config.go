// Package config handles .debtmap.yml project-level configuration:
// complexity/coupling/change-frequency baseline overrides and scoring
// weight overrides, per §9's "treat the baseline as a configuration
// surface" design note.
//
// Adapted from the teacher's internal/config.ProjectConfig (same
// explicit-path-or-discover loading shape, same strict yaml.v3
// decoding and Validate step) generalized from ARS's category-weight
// overrides to debtmap's baseline-band and score-weight overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ingo/debtmap-go/internal/debt"
	"github.com/ingo/debtmap-go/internal/risk"
)

// bandOverride mirrors risk.Bands in yaml-friendly form. An all-zero
// override leaves the built-in band in place; an override with any
// anchor set replaces the whole band, so an anchor left unset is zero.
type bandOverride struct {
	Low      float64 `yaml:"low"`
	Moderate float64 `yaml:"moderate"`
	High     float64 `yaml:"high"`
	Critical float64 `yaml:"critical"`
}

func (b bandOverride) isZero() bool {
	return b.Low == 0 && b.Moderate == 0 && b.High == 0 && b.Critical == 0
}

func (b bandOverride) toBands() risk.Bands {
	return risk.Bands{Low: b.Low, Moderate: b.Moderate, High: b.High, Critical: b.Critical}
}

// baselineOverrides lets a project replace any of the three statistical
// baselines the evidence calculators use (§4.6, §9).
type baselineOverrides struct {
	ComplexityCyclomatic bandOverride `yaml:"complexity_cyclomatic"`
	ComplexityCognitive  bandOverride `yaml:"complexity_cognitive"`
	ComplexityLines      bandOverride `yaml:"complexity_lines"`
	Coupling             bandOverride `yaml:"coupling"`
	ChangeFrequency      bandOverride `yaml:"change_frequency"`
}

// scoreWeightOverrides mirrors debt.ScoreWeights in yaml-friendly form.
type scoreWeightOverrides struct {
	Complexity float64 `yaml:"complexity"`
	Coverage   float64 `yaml:"coverage"`
	Dependency float64 `yaml:"dependency"`
	Role       float64 `yaml:"role"`
	Risk       float64 `yaml:"risk"`
}

func (w scoreWeightOverrides) isZero() bool {
	return w.Complexity == 0 && w.Coverage == 0 && w.Dependency == 0 && w.Role == 0 && w.Risk == 0
}

// ProjectConfig represents the .debtmap.yml configuration file.
type ProjectConfig struct {
	Version int `yaml:"version"`

	Baselines baselineOverrides    `yaml:"baselines"`
	Scoring   scoreWeightOverrides `yaml:"score_weights"`

	MaxDebtDensity float64  `yaml:"max_debt_density"`
	Exclusions     []string `yaml:"exclusions"`
	CoverageFile   string   `yaml:"coverage_file"`
}

// LoadProjectConfig loads configuration from .debtmap.yml or
// .debtmap.yaml. If explicitPath is set (from --config), that file is
// loaded directly. Returns (nil, nil) when no config file is found,
// meaning "use every built-in default."
func LoadProjectConfig(dir string, explicitPath string) (*ProjectConfig, error) {
	var configPath string

	if explicitPath != "" {
		configPath = explicitPath
	} else {
		ymlPath := filepath.Join(dir, ".debtmap.yml")
		yamlPath := filepath.Join(dir, ".debtmap.yaml")
		if _, err := os.Stat(ymlPath); err == nil {
			configPath = ymlPath
		} else if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			return nil, nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read project config %s: %w", configPath, err)
	}

	cfg := &ProjectConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid project config %s: %w", configPath, err)
	}

	return cfg, nil
}

// Validate checks that the ProjectConfig's values are structurally
// sane.
func (c *ProjectConfig) Validate() error {
	if c.Version != 0 && c.Version != 1 {
		return fmt.Errorf("unsupported config version %d (expected 1)", c.Version)
	}
	if c.MaxDebtDensity < 0 {
		return fmt.Errorf("max_debt_density must be >= 0, got %f", c.MaxDebtDensity)
	}
	for name, w := range map[string]float64{
		"complexity": c.Scoring.Complexity,
		"coverage":   c.Scoring.Coverage,
		"dependency": c.Scoring.Dependency,
		"role":       c.Scoring.Role,
		"risk":       c.Scoring.Risk,
	} {
		if w < 0 {
			return fmt.Errorf("score weight %q must be >= 0, got %f", name, w)
		}
	}
	return nil
}

// ComplexityBaseline resolves the project's complexity baseline,
// falling back to risk.DefaultComplexityBaseline for any unset band.
func (c *ProjectConfig) ComplexityBaseline() risk.ComplexityBaseline {
	base := risk.DefaultComplexityBaseline
	if c == nil {
		return base
	}
	if !c.Baselines.ComplexityCyclomatic.isZero() {
		base.Cyclomatic = c.Baselines.ComplexityCyclomatic.toBands()
	}
	if !c.Baselines.ComplexityCognitive.isZero() {
		base.Cognitive = c.Baselines.ComplexityCognitive.toBands()
	}
	if !c.Baselines.ComplexityLines.isZero() {
		base.Lines = c.Baselines.ComplexityLines.toBands()
	}
	return base
}

// CouplingBaseline resolves the project's coupling baseline.
func (c *ProjectConfig) CouplingBaseline() risk.Bands {
	if c == nil || c.Baselines.Coupling.isZero() {
		return risk.CouplingBaseline
	}
	return c.Baselines.Coupling.toBands()
}

// ChangeFrequencyBaseline resolves the project's change-frequency
// baseline.
func (c *ProjectConfig) ChangeFrequencyBaseline() risk.Bands {
	if c == nil || c.Baselines.ChangeFrequency.isZero() {
		return risk.ChangeFrequencyBaseline
	}
	return c.Baselines.ChangeFrequency.toBands()
}

// ScoreWeights resolves the project's C9 unified-score weights.
func (c *ProjectConfig) ScoreWeights() debt.ScoreWeights {
	if c == nil || c.Scoring.isZero() {
		return debt.DefaultScoreWeights
	}
	return debt.ScoreWeights{
		Complexity: c.Scoring.Complexity,
		Coverage:   c.Scoring.Coverage,
		Dependency: c.Scoring.Dependency,
		Role:       c.Scoring.Role,
		Risk:       c.Scoring.Risk,
	}
}
