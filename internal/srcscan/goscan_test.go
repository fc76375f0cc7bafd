package srcscan

import (
	"path/filepath"
	"testing"

	"github.com/ingo/debtmap-go/pkg/model"
)

func writeModule(t *testing.T, dir, module, source string) {
	t.Helper()
	mustWrite(t, filepath.Join(dir, "go.mod"), "module "+module+"\n\ngo 1.25\n")
	mustWrite(t, filepath.Join(dir, "main.go"), source)
}

const goscanFixture = `package main

func Helper(x int) int {
	if x > 0 {
		for i := 0; i < x; i++ {
			if i%2 == 0 {
				Helper(i)
			}
		}
	}
	return x
}

func Caller() int {
	return Helper(3)
}

type widget struct{}

func (w *widget) Method() int {
	return w.helper()
}

func (w *widget) helper() int {
	return 0
}

func main() {
	Caller()
}
`

func TestExtractGoFunctionMetrics_ComputesComplexityAndNesting(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "example.com/goscanfixture", goscanFixture)

	pkgs, err := LoadGoPackages(dir)
	if err != nil {
		t.Fatalf("LoadGoPackages: %v", err)
	}
	metrics := ExtractGoFunctionMetrics(pkgs)

	byName := make(map[string]int)
	for _, m := range metrics {
		byName[m.ID.Name] = m.Cyclomatic
	}

	helper, ok := byName["Helper"]
	if !ok {
		t.Fatal("expected a Helper function in extracted metrics")
	}
	if helper < 3 {
		t.Errorf("Helper cyclomatic = %d, want at least 3 (if + for + if)", helper)
	}

	caller, ok := byName["Caller"]
	if !ok {
		t.Fatal("expected a Caller function in extracted metrics")
	}
	if caller != 1 {
		t.Errorf("Caller cyclomatic = %d, want 1 (no branches)", caller)
	}

	if _, ok := byName["widget.Method"]; !ok {
		t.Error("expected a receiver-qualified widget.Method entry")
	}
}

func TestExtractGoFunctionMetrics_NestingDepth(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "example.com/goscannest", goscanFixture)

	pkgs, err := LoadGoPackages(dir)
	if err != nil {
		t.Fatalf("LoadGoPackages: %v", err)
	}
	metrics := ExtractGoFunctionMetrics(pkgs)

	for _, m := range metrics {
		if m.ID.Name == "Helper" && m.NestingDepth < 2 {
			t.Errorf("Helper nesting depth = %d, want at least 2 (for inside if)", m.NestingDepth)
		}
	}
}

func TestExtractGoCallEdges_FindsDirectAndMethodCalls(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "example.com/goscanedges", goscanFixture)

	pkgs, err := LoadGoPackages(dir)
	if err != nil {
		t.Fatalf("LoadGoPackages: %v", err)
	}
	edges := ExtractGoCallEdges(pkgs)

	seen := make(map[string]bool)
	for _, e := range edges {
		seen[e.Caller.Name+"->"+e.CalleeName] = true
	}

	for _, want := range []string{"Caller->Helper", "main->Caller", "Helper->Helper", "widget.Method->helper"} {
		if !seen[want] {
			t.Errorf("expected call edge %q among extracted edges, got %v", want, edges)
		}
	}
}

func TestExtractGoFunctionMetrics_ComplexityFixture(t *testing.T) {
	pkgs, err := LoadGoPackages("../../testdata/complexity")
	if err != nil {
		t.Fatalf("LoadGoPackages: %v", err)
	}
	metrics := ExtractGoFunctionMetrics(pkgs)

	byName := make(map[string]int)
	for _, m := range metrics {
		byName[m.ID.Name] = m.Cyclomatic
	}

	cases := map[string]int{
		"SimpleFunc":  1,
		"OneBranch":   2,
		"MultiBranch": 6,
	}
	for name, want := range cases {
		got, ok := byName[name]
		if !ok {
			t.Errorf("expected %s in extracted metrics", name)
			continue
		}
		if got != want {
			t.Errorf("%s cyclomatic = %d, want %d", name, got, want)
		}
	}
}

func TestExtractGoFunctionMetrics_DeadCodeFixtureFindsBothFunctions(t *testing.T) {
	pkgs, err := LoadGoPackages("../../testdata/deadcode")
	if err != nil {
		t.Fatalf("LoadGoPackages: %v", err)
	}
	metrics := ExtractGoFunctionMetrics(pkgs)

	var names []string
	for _, m := range metrics {
		names = append(names, m.ID.Name)
	}

	for _, want := range []string{"ExportedUsed", "ExportedUnused"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected %s among extracted functions, got %v", want, names)
		}
	}
}

func TestIsGoTestName(t *testing.T) {
	if !isGoTestName("TestFoo") {
		t.Error("TestFoo should be recognized as a test name")
	}
	if isGoTestName("helper") {
		t.Error("helper should not be recognized as a test name")
	}
}

const errorSwallowFixture = `package main

import (
	"fmt"
	"log"
	"os"
)

func swallows() {
	_, err := os.Open("x")
	if err != nil {
	}
}

func swallowsWithBlankAssign() {
	_, err := os.Open("x")
	if err != nil {
		_ = err
	}
}

func propagates() error {
	_, err := os.Open("x")
	if err != nil {
		return err
	}
	return nil
}

func logs() {
	_, err := os.Open("x")
	if err != nil {
		log.Println(err)
	}
}

func leaksHandle() {
	f, _ := os.Open("x")
	fmt.Println(f.Name())
}

func closesHandle() {
	f, _ := os.Open("x")
	defer f.Close()
	fmt.Println(f.Name())
}
`

func TestExtractGoFunctionMetrics_DetectsSwallowedErrors(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "example.com/errswallow", errorSwallowFixture)

	pkgs, err := LoadGoPackages(dir)
	if err != nil {
		t.Fatalf("LoadGoPackages: %v", err)
	}
	metrics := ExtractGoFunctionMetrics(pkgs)

	byName := make(map[string]int)
	for _, m := range metrics {
		byName[m.ID.Name] = m.ErrorSwallowCount
	}

	cases := map[string]int{
		"swallows":                1,
		"swallowsWithBlankAssign": 1,
		"propagates":              0,
		"logs":                    0,
	}
	for name, want := range cases {
		if got, ok := byName[name]; !ok || got != want {
			t.Errorf("%s ErrorSwallowCount = %d, want %d", name, got, want)
		}
	}
}

func TestExtractGoFunctionMetrics_DetectsResourceHeavyFunctions(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "example.com/reshvy", errorSwallowFixture)

	pkgs, err := LoadGoPackages(dir)
	if err != nil {
		t.Fatalf("LoadGoPackages: %v", err)
	}
	metrics := ExtractGoFunctionMetrics(pkgs)

	byName := make(map[string]bool)
	for _, m := range metrics {
		byName[m.ID.Name] = m.IsResourceHeavy
	}

	if !byName["leaksHandle"] {
		t.Error("leaksHandle should be flagged resource-heavy (no deferred Close)")
	}
	if byName["closesHandle"] {
		t.Error("closesHandle should not be flagged resource-heavy (has a deferred Close)")
	}
}

func TestGoVisibility(t *testing.T) {
	if goVisibility("Exported") != model.VisibilityPublic {
		t.Error("capitalized name should be VisibilityPublic")
	}
	if goVisibility("unexported") != model.VisibilityPrivate {
		t.Error("lowercase name should be VisibilityPrivate")
	}
}
