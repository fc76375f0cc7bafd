// Package workflow implements C11, the guards-first state machine that
// sequences C4 (call graph) → C2/C3 (coverage) → purity → context →
// C9 (scoring) → filter/rank through explicit phase transitions
// (spec.md §4.10).
//
// Grounded on the teacher's cmd/scan.go pipeline orchestration (a fixed
// sequence of named stages each reporting progress) generalized into an
// explicit guard/action state machine, and on the "pure core, effectful
// shell" design note (§9): guards are pure predicates over State, all
// I/O and progress reporting live behind the Environment interface.
package workflow

import (
	"time"

	"github.com/ingo/debtmap-go/pkg/model"
)

// Phase is one node of the workflow's directed acyclic progression
// (§4.10).
type Phase int

const (
	Initialized Phase = iota
	CallGraphBuilding
	CallGraphComplete
	CoverageLoading
	CoverageComplete
	SkipCoverage
	PurityAnalyzing
	PurityComplete
	ContextLoading
	ContextComplete
	SkipContext
	ScoringInProgress
	ScoringComplete
	FilteringInProgress
	Complete
)

func (p Phase) String() string {
	switch p {
	case Initialized:
		return "Initialized"
	case CallGraphBuilding:
		return "CallGraphBuilding"
	case CallGraphComplete:
		return "CallGraphComplete"
	case CoverageLoading:
		return "CoverageLoading"
	case CoverageComplete:
		return "CoverageComplete"
	case SkipCoverage:
		return "SkipCoverage"
	case PurityAnalyzing:
		return "PurityAnalyzing"
	case PurityComplete:
		return "PurityComplete"
	case ContextLoading:
		return "ContextLoading"
	case ContextComplete:
		return "ContextComplete"
	case SkipContext:
		return "SkipContext"
	case ScoringInProgress:
		return "ScoringInProgress"
	case ScoringComplete:
		return "ScoringComplete"
	case FilteringInProgress:
		return "FilteringInProgress"
	default:
		return "Complete"
	}
}

// State is the workflow's mutable pipeline state, owned by the Runner
// and passed mutably into each transition's action (§4.10: "the runner
// owns state; actions receive state mutably").
type State struct {
	Phase Phase

	HasMetrics         bool
	CoverageConfigured bool
	ContextConfigured  bool

	Metrics  []*model.FunctionMetrics
	Analysis *model.UnifiedAnalysis
}

// Environment supplies the I/O, progress reporting, and clock that
// actions need, kept out of the pure guard predicates (§4.10, §9).
type Environment interface {
	BuildCallGraph(*State) error
	LoadCoverage(*State) error
	AnalyzePurity(*State) error
	LoadContext(*State) error
	Score(*State) error
	FilterAndRank(*State) error
	Progress(phase Phase, message string)
	Now() time.Time
}

// transition pairs a pure guard with the action it authorizes. Guards
// are probed in the fixed order transitions appear in the table
// (§4.10: "transitions are chosen by probing guards in a fixed order
// each step").
type transition struct {
	name  string
	guard func(*State) bool
	act   func(*State, Environment) error
}

func table() []transition {
	return []transition{
		{
			name:  "build-call-graph",
			guard: func(s *State) bool { return s.Phase == Initialized && s.HasMetrics },
			act: func(s *State, env Environment) error {
				s.Phase = CallGraphBuilding
				env.Progress(s.Phase, "building call graph")
				if err := env.BuildCallGraph(s); err != nil {
					return err
				}
				s.Phase = CallGraphComplete
				return nil
			},
		},
		{
			name:  "load-coverage",
			guard: func(s *State) bool { return s.Phase == CallGraphComplete && s.CoverageConfigured },
			act: func(s *State, env Environment) error {
				s.Phase = CoverageLoading
				env.Progress(s.Phase, "loading coverage")
				if err := env.LoadCoverage(s); err != nil {
					return err
				}
				s.Phase = CoverageComplete
				return nil
			},
		},
		{
			name:  "skip-coverage",
			guard: func(s *State) bool { return s.Phase == CallGraphComplete && !s.CoverageConfigured },
			act: func(s *State, env Environment) error {
				s.Phase = SkipCoverage
				env.Progress(s.Phase, "no coverage file configured, skipping")
				return nil
			},
		},
		{
			name: "analyze-purity",
			guard: func(s *State) bool {
				return s.Phase == CoverageComplete || s.Phase == SkipCoverage
			},
			act: func(s *State, env Environment) error {
				s.Phase = PurityAnalyzing
				env.Progress(s.Phase, "analyzing purity")
				if err := env.AnalyzePurity(s); err != nil {
					return err
				}
				s.Phase = PurityComplete
				return nil
			},
		},
		{
			name:  "load-context",
			guard: func(s *State) bool { return s.Phase == PurityComplete && s.ContextConfigured },
			act: func(s *State, env Environment) error {
				s.Phase = ContextLoading
				env.Progress(s.Phase, "loading context")
				if err := env.LoadContext(s); err != nil {
					return err
				}
				s.Phase = ContextComplete
				return nil
			},
		},
		{
			name:  "skip-context",
			guard: func(s *State) bool { return s.Phase == PurityComplete && !s.ContextConfigured },
			act: func(s *State, env Environment) error {
				s.Phase = SkipContext
				env.Progress(s.Phase, "no context configured, skipping")
				return nil
			},
		},
		{
			name: "begin-scoring",
			guard: func(s *State) bool {
				return s.Phase == ContextComplete || s.Phase == SkipContext
			},
			act: func(s *State, env Environment) error {
				s.Phase = ScoringInProgress
				env.Progress(s.Phase, "scoring")
				return nil
			},
		},
		{
			name:  "finish-scoring",
			guard: func(s *State) bool { return s.Phase == ScoringInProgress },
			act: func(s *State, env Environment) error {
				if err := env.Score(s); err != nil {
					return err
				}
				s.Phase = ScoringComplete
				return nil
			},
		},
		{
			name:  "filter-and-rank",
			guard: func(s *State) bool { return s.Phase == ScoringComplete },
			act: func(s *State, env Environment) error {
				s.Phase = FilteringInProgress
				env.Progress(s.Phase, "filtering and ranking")
				if err := env.FilterAndRank(s); err != nil {
					return err
				}
				s.Phase = Complete
				return nil
			},
		},
	}
}

// Runner drives a State through the transition table, one action per
// Step call.
type Runner struct {
	state *State
	env   Environment
	steps []transition
}

// NewRunner builds a Runner starting from Initialized.
func NewRunner(env Environment, hasMetrics, coverageConfigured, contextConfigured bool) *Runner {
	return &Runner{
		state: &State{
			Phase:              Initialized,
			HasMetrics:         hasMetrics,
			CoverageConfigured: coverageConfigured,
			ContextConfigured:  contextConfigured,
		},
		env:   env,
		steps: table(),
	}
}

// State exposes the runner's current state for inspection.
func (r *Runner) State() *State { return r.state }

// Step probes guards in fixed order and executes exactly one
// satisfied transition's action (§4.10). It returns progressed=false,
// err=nil when no guard is satisfied ("no progress"), which is not
// itself an error (§8 S6: the first step with no metrics configured
// returns no progress without error).
func (r *Runner) Step() (progressed bool, err error) {
	for _, t := range r.steps {
		if t.guard(r.state) {
			if err := t.act(r.state, r.env); err != nil {
				return true, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Run steps the workflow until it reaches Complete or stalls. A stall
// before Complete surfaces a GuardViolation naming the stuck phase
// (§4.10, §7, §8 S6).
func (r *Runner) Run() error {
	for {
		progressed, err := r.Step()
		if err != nil {
			return err
		}
		if !progressed {
			if r.state.Phase == Complete {
				return nil
			}
			return &model.GuardViolation{Phase: r.state.Phase.String()}
		}
		if r.state.Phase == Complete {
			return nil
		}
	}
}
