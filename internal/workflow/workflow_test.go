package workflow

import (
	"testing"
	"time"

	"github.com/ingo/debtmap-go/pkg/model"
)

type fakeEnv struct {
	progress []string
	fail     string // action name to fail, empty means none fail
}

func (f *fakeEnv) record(name string) error {
	f.progress = append(f.progress, name)
	if f.fail == name {
		return errFake
	}
	return nil
}

var errFake = &model.InputError{Path: "fake", Cause: nil}

func (f *fakeEnv) BuildCallGraph(*State) error  { return f.record("call-graph") }
func (f *fakeEnv) LoadCoverage(*State) error    { return f.record("coverage") }
func (f *fakeEnv) AnalyzePurity(*State) error   { return f.record("purity") }
func (f *fakeEnv) LoadContext(*State) error     { return f.record("context") }
func (f *fakeEnv) Score(*State) error           { return f.record("score") }
func (f *fakeEnv) FilterAndRank(*State) error   { return f.record("filter") }
func (f *fakeEnv) Progress(Phase, string)       {}
func (f *fakeEnv) Now() time.Time               { return time.Unix(0, 0) }

// TestWorkflow_S6_FullProgressionWithCoverage reproduces spec scenario
// S6 exactly: a configured coverage file drives the workflow from
// Initialized through to Complete in seven steps, each landing on the
// phase S6 names.
func TestWorkflow_S6_FullProgressionWithCoverage(t *testing.T) {
	env := &fakeEnv{}
	r := NewRunner(env, true, true, true)

	wantPhases := []Phase{
		CallGraphComplete,
		CoverageComplete,
		PurityComplete,
		ContextComplete,
		ScoringInProgress,
		ScoringComplete,
		Complete,
	}

	for i, want := range wantPhases {
		progressed, err := r.Step()
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i+1, err)
		}
		if !progressed {
			t.Fatalf("step %d: expected progress, got none (phase=%v)", i+1, r.State().Phase)
		}
		if r.State().Phase != want {
			t.Fatalf("step %d: phase = %v, want %v", i+1, r.State().Phase, want)
		}
	}

	progressed, err := r.Step()
	if err != nil || progressed {
		t.Errorf("step after Complete: expected no progress and no error, got progressed=%v err=%v", progressed, err)
	}
}

// TestWorkflow_S6_NoMetricsYieldsGuardViolationOnRun reproduces the
// second half of S6: starting with no metrics, the first step returns
// no progress without error, and Run surfaces GuardViolation.
func TestWorkflow_S6_NoMetricsYieldsGuardViolationOnRun(t *testing.T) {
	env := &fakeEnv{}
	r := NewRunner(env, false, true, true)

	progressed, err := r.Step()
	if err != nil {
		t.Fatalf("expected no error on first step with no metrics, got %v", err)
	}
	if progressed {
		t.Fatal("expected no progress with no metrics")
	}

	err = r.Run()
	var gv *model.GuardViolation
	if err == nil {
		t.Fatal("expected Run to surface an error")
	}
	if !asGuardViolation(err, &gv) {
		t.Fatalf("expected GuardViolation, got %T: %v", err, err)
	}
	if gv.Phase != Initialized.String() {
		t.Errorf("GuardViolation.Phase = %q, want %q", gv.Phase, Initialized.String())
	}
}

func asGuardViolation(err error, out **model.GuardViolation) bool {
	gv, ok := err.(*model.GuardViolation)
	if ok {
		*out = gv
	}
	return ok
}

func TestWorkflow_SkipCoveragePathWhenNotConfigured(t *testing.T) {
	env := &fakeEnv{}
	r := NewRunner(env, true, false, true)

	if err := r.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.State().Phase != Complete {
		t.Errorf("phase = %v, want Complete", r.State().Phase)
	}

	found := false
	for _, p := range env.progress {
		if p == "coverage" {
			found = true
		}
	}
	if found {
		t.Error("coverage loading action should not have run when unconfigured")
	}
}

func TestWorkflow_SkipContextPathWhenNotConfigured(t *testing.T) {
	env := &fakeEnv{}
	r := NewRunner(env, true, true, false)

	if err := r.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.State().Phase != Complete {
		t.Errorf("phase = %v, want Complete", r.State().Phase)
	}
}

func TestWorkflow_ActionErrorPropagatesWithoutAdvancingPastFailure(t *testing.T) {
	env := &fakeEnv{fail: "coverage"}
	r := NewRunner(env, true, true, true)

	// step 1: call graph succeeds.
	if _, err := r.Step(); err != nil {
		t.Fatalf("unexpected error on step 1: %v", err)
	}
	// step 2: coverage load fails.
	_, err := r.Step()
	if err == nil {
		t.Fatal("expected error from failing coverage load")
	}
	if r.State().Phase != CoverageLoading {
		t.Errorf("phase after failed coverage load = %v, want CoverageLoading", r.State().Phase)
	}
}

func TestWorkflow_RunIsIdempotentAfterComplete(t *testing.T) {
	env := &fakeEnv{}
	r := NewRunner(env, true, true, true)
	if err := r.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Run(); err != nil {
		t.Errorf("re-running after Complete should be a no-op, got error: %v", err)
	}
	if r.State().Phase != Complete {
		t.Errorf("phase = %v, want Complete", r.State().Phase)
	}
}
