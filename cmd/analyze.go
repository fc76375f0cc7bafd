package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ingo/debtmap-go/internal/callgraph"
	"github.com/ingo/debtmap-go/internal/classify"
	"github.com/ingo/debtmap-go/internal/config"
	"github.com/ingo/debtmap-go/internal/coverage"
	"github.com/ingo/debtmap-go/internal/debt"
	"github.com/ingo/debtmap-go/internal/fileagg"
	"github.com/ingo/debtmap-go/internal/history"
	"github.com/ingo/debtmap-go/internal/loc"
	"github.com/ingo/debtmap-go/internal/render"
	"github.com/ingo/debtmap-go/internal/risk"
	"github.com/ingo/debtmap-go/internal/srcscan"
	"github.com/ingo/debtmap-go/internal/workflow"
	"github.com/ingo/debtmap-go/pkg/model"
)

var (
	analyzeConfigPath   string
	analyzeCoverageFile string
	analyzeJSONOutput   bool
	analyzeMaxDensity   float64
)

// deadCodeConfidenceCutoff gates §4.4's dead-code dampening: a function
// absent from the live set is only classified DebtDeadCode once its
// computed confidence (after framework/public-API/trait/pointer
// dampeners) clears this bar, so a framework-managed handler or exported
// API function sitting at low confidence isn't misreported as dead.
const deadCodeConfidenceCutoff = 0.5

var analyzeCmd = &cobra.Command{
	Use:          "analyze <directory>",
	Short:        "Analyze a project for technical debt and rank the highest-risk functions",
	Long:         "analyze walks a directory, builds a call graph, cross-references any\nconfigured LCOV coverage, and scores every function's technical debt.",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeConfigPath, "config", "", "path to .debtmap.yml project config file")
	analyzeCmd.Flags().StringVar(&analyzeCoverageFile, "coverage", "", "path to an LCOV coverage tracefile")
	analyzeCmd.Flags().BoolVar(&analyzeJSONOutput, "json", false, "output results as JSON")
	analyzeCmd.Flags().Float64Var(&analyzeMaxDensity, "max-debt-density", 0, "fail if total debt score / function count exceeds this (0 = use project config or skip)")
	rootCmd.AddCommand(analyzeCmd)
}

// validateProject checks that dir exists, is a directory, and contains a
// recognized project indicator, adapted from the teacher's
// cmd/scan.go:validateProject, with a Cargo.toml indicator added since
// debtmap's origin domain (per original_source/) is Rust.
func validateProject(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %s", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	indicators := []string{
		"Cargo.toml",
		"go.mod",
		"pyproject.toml",
		"setup.py",
		"requirements.txt",
		"tsconfig.json",
		"package.json",
	}
	for _, f := range indicators {
		if _, err := os.Stat(filepath.Join(dir, f)); err == nil {
			return nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory: %s", err)
	}
	recognizedExts := map[string]bool{".go": true, ".py": true, ".ts": true, ".tsx": true, ".rs": true}
	for _, entry := range entries {
		if !entry.IsDir() {
			if recognizedExts[filepath.Ext(entry.Name())] {
				return nil
			}
		}
	}

	return fmt.Errorf("no recognized project found in: %s\nSupported: Rust (Cargo.toml), Go (go.mod), Python (pyproject.toml), TypeScript (tsconfig.json)", dir)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	analysis, metricsCount, maxDensity, err := runPipeline(args[0], analyzeConfigPath, analyzeCoverageFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if analyzeJSONOutput {
		if err := render.JSON(out, render.BuildReport(analysis)); err != nil {
			return &model.ExitError{Code: 2, Message: err.Error()}
		}
	} else {
		render.Terminal(out, analysis, verbose)
	}

	if maxDensity > 0 {
		density := debtDensity(analysis, metricsCount)
		if density > maxDensity {
			return &model.ExitError{Code: 1, Message: fmt.Sprintf("debt density %.3f exceeds max %.3f", density, maxDensity)}
		}
	}
	return nil
}

// runPipeline resolves, validates, and walks dir through the full
// discover -> build-call-graph -> score workflow, returning the sorted
// analysis, the function count used for density estimation, and the
// effective max-debt-density threshold. Shared by analyze and validate
// so both commands run the identical pipeline and differ only in how
// they report the result (§6's validate gate reuses analyze's pipeline
// rather than re-implementing it).
func runPipeline(rawDir, configPath, coverageFile string) (*model.UnifiedAnalysis, int, float64, error) {
	dir, err := filepath.Abs(rawDir)
	if err != nil {
		return nil, 0, 0, &model.ExitError{Code: 2, Message: fmt.Sprintf("cannot resolve path: %s", err)}
	}
	if err := validateProject(dir); err != nil {
		return nil, 0, 0, &model.ExitError{Code: 2, Message: err.Error()}
	}

	projectCfg, err := config.LoadProjectConfig(dir, configPath)
	if err != nil {
		return nil, 0, 0, &model.ExitError{Code: 2, Message: err.Error()}
	}

	risk.CouplingBaseline = projectCfg.CouplingBaseline()
	risk.ChangeFrequencyBaseline = projectCfg.ChangeFrequencyBaseline()

	maxDensity := analyzeMaxDensity
	if maxDensity == 0 && projectCfg != nil {
		maxDensity = projectCfg.MaxDebtDensity
	}

	var hist *history.GitHistoryProvider
	if history.IsGitRepo(dir) {
		hist, _ = history.NewGitHistoryProvider(dir)
	}

	env := &analyzeEnv{
		rootDir:       dir,
		coverageFile:  coverageFile,
		cfg:           projectCfg,
		history:       hist,
		spinner:       render.NewSpinner(os.Stderr),
		debugCoverage: os.Getenv("DEBTMAP_COVERAGE_DEBUG") != "",
	}
	env.spinner.Start("Discovering source files...")

	files, err := srcscan.Discover(dir)
	if err != nil {
		env.spinner.Stop("")
		return nil, 0, 0, &model.ExitError{Code: 2, Message: fmt.Sprintf("discover: %v", err)}
	}

	metrics, err := loadMetrics(dir, files)
	if err != nil {
		env.spinner.Stop("")
		return nil, 0, 0, &model.ExitError{Code: 2, Message: fmt.Sprintf("load metrics: %v", err)}
	}
	env.spinner.Stop("")

	if env.debugCoverage && env.coverageFile != "" {
		defer func() {
			if env.covIndex != nil {
				fmt.Fprintln(os.Stderr, coverage.DebugSummary(env.covIndex))
			}
		}()
	}

	runner := workflow.NewRunner(env, len(metrics) > 0, env.coverageFile != "", true)
	runner.State().Metrics = metrics

	if err := runner.Run(); err != nil {
		return nil, 0, 0, &model.ExitError{Code: 2, Message: err.Error()}
	}

	analysis := runner.State().Analysis
	if analysis == nil {
		return nil, 0, 0, &model.ExitError{Code: 2, Message: "analysis did not complete"}
	}
	analysis.SortItems()

	return analysis, len(metrics), maxDensity, nil
}

// debtDensity approximates total-debt-score/LOC (§6) using function
// count as a coarse stand-in for LOC when no project-wide line count was
// accumulated by this command (internal/loc already owns real LOC
// counting; wiring it here would need a second directory walk this
// command doesn't perform since srcscan.Discover already enumerates the
// same files once).
func debtDensity(a *model.UnifiedAnalysis, functionCount int) float64 {
	if functionCount == 0 {
		return 0
	}
	total := 0.0
	for _, item := range a.Items {
		total += item.UnifiedScore
	}
	return total / float64(functionCount)
}

func loadMetrics(dir string, files []srcscan.DiscoveredFile) ([]*model.FunctionMetrics, error) {
	var metrics []*model.FunctionMetrics

	hasGo := false
	for _, f := range files {
		if f.Language == model.LangGo {
			hasGo = true
			break
		}
	}
	if hasGo {
		pkgs, err := srcscan.LoadGoPackages(dir)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, srcscan.ExtractGoFunctionMetrics(pkgs)...)
	}

	var tsScanner *srcscan.TreeSitterScanner
	for _, f := range files {
		if f.Language != model.LangPython && f.Language != model.LangTypeScript {
			continue
		}
		if tsScanner == nil {
			var err error
			tsScanner, err = srcscan.NewTreeSitterScanner()
			if err != nil {
				return nil, err
			}
			defer tsScanner.Close()
		}
		content, err := os.ReadFile(f.Path)
		if err != nil {
			continue
		}
		fm, err := tsScanner.ScanFile(f.Path, f.Language, content)
		if err != nil {
			continue
		}
		metrics = append(metrics, fm...)
	}
	return metrics, nil
}

// analyzeEnv implements internal/workflow.Environment, wiring the
// workflow's seven observable phases to the concrete analyzer packages
// (§4.10, §9 "pure core, effectful shell" — this is the shell).
type analyzeEnv struct {
	rootDir      string
	coverageFile string
	cfg          *config.ProjectConfig
	history      *history.GitHistoryProvider
	spinner      *render.Spinner

	debugCoverage bool

	graph    *callgraph.Graph
	covIndex *coverage.Index
}

func (e *analyzeEnv) Progress(phase workflow.Phase, message string) {
	e.spinner.UpdatePhase(phase, message)
}

func (e *analyzeEnv) Now() time.Time { return time.Now() }

// BuildCallGraph constructs nodes for every discovered function, adds
// best-effort edges from Go call expressions (the only language srcscan
// resolves call sites for; §9 accepts approximate call graphs as a
// precision/speed trade-off), then runs the framework-pattern detector
// and cross-module public-API pass over that same data (§4.4 phases 4
// and 5). Trait/pointer resolution (internal/callgraph's trait and
// pointer side tables) need call-site data this scanner does not
// extract — which value flows through which binding, which impl block
// satisfies which trait — so they stay unwired here, present in the
// package and exercised directly by their own unit tests, simply not
// fed data by this particular shell.
func (e *analyzeEnv) BuildCallGraph(s *workflow.State) error {
	g := callgraph.NewGraph()
	byName := make(map[string][]model.FunctionId)
	var publicDecls []model.FunctionId

	for _, m := range s.Metrics {
		g.AddNode(m.ID)
		if m.IsTestMarker {
			g.MarkTest(m.ID)
		}
		if m.ID.Name == "main" || m.Visibility == model.VisibilityPublic {
			g.MarkEntryPoint(m.ID)
		}
		if m.Visibility == model.VisibilityPublic {
			publicDecls = append(publicDecls, m.ID)
		}
		byName[shortName(m.ID.Name)] = append(byName[shortName(m.ID.Name)], m.ID)
	}

	hasGo := false
	for _, m := range s.Metrics {
		if filepath.Ext(m.ID.FilePath) == ".go" {
			hasGo = true
			break
		}
	}
	if hasGo {
		pkgs, err := srcscan.LoadGoPackages(e.rootDir)
		if err == nil {
			for _, edge := range srcscan.ExtractGoCallEdges(pkgs) {
				for _, calleeID := range byName[shortName(edge.CalleeName)] {
					g.AddEdge(edge.Caller, calleeID, model.EdgeDirect)
				}
			}
		}
	}

	applyFrameworkPatterns(g, s.Metrics)

	crossMod := callgraph.NewCrossModuleResolver()
	for _, id := range publicDecls {
		crossMod.RecordPublicDecl(callgraph.PublicDecl{ID: id})
	}
	crossMod.Resolve(g)

	e.graph = g
	return nil
}

// applyFrameworkPatterns builds a FrameworkCandidate per function from
// signals this scanner already has — Go has no attribute/decorator
// syntax, so a test function's own IsTestMarker stands in for the
// "#[test]"-style attribute the resolver was designed against — and
// marks test, visitor-pattern, and other framework-managed functions on
// the graph accordingly (§4.4 phase 4).
func applyFrameworkPatterns(g *callgraph.Graph, metrics []*model.FunctionMetrics) {
	candidates := make([]callgraph.FrameworkCandidate, 0, len(metrics))
	for _, m := range metrics {
		var attrs []string
		if m.IsTestMarker {
			attrs = append(attrs, "test")
		}
		candidates = append(candidates, callgraph.FrameworkCandidate{ID: m.ID, Attributes: attrs})
	}
	callgraph.ApplyFrameworkPatterns(g, candidates)
}

// languageForPath maps a file extension to a model.Language for debt-item
// tagging, extending internal/loc.DetectLanguage's table with Go (that
// package's table follows the original Rust/Python/TS-only source and
// has no Go case since it predates this command's Go-ingestion path).
func languageForPath(path string) model.Language {
	switch filepath.Ext(path) {
	case ".go":
		return model.LangGo
	default:
		return loc.DetectLanguage(path)
	}
}

// moduleTypeForFunction derives risk.ModuleType from path and naming
// conventions (§4.6.3), since srcscan does not classify files into
// architectural layers itself: cmd/ entry points and anything named like
// an HTTP/RPC handler read as Api, test files as Test, and conventional
// infrastructure/util package names as their matching type. Everything
// else defaults to Core, the same default the zero value already had.
func moduleTypeForFunction(m *model.FunctionMetrics) risk.ModuleType {
	if m.IsTestMarker || m.InTestModule {
		return risk.ModuleTest
	}

	dir := filepath.ToSlash(filepath.Dir(m.ID.FilePath))
	switch {
	case containsSegment(dir, "cmd"), containsSegment(dir, "api"), containsSegment(dir, "handler"), containsSegment(dir, "handlers"):
		return risk.ModuleAPI
	case containsSegment(dir, "util"), containsSegment(dir, "utils"), containsSegment(dir, "helpers"):
		return risk.ModuleUtil
	case containsSegment(dir, "internal") && (containsSegment(dir, "storage") || containsSegment(dir, "db") ||
		containsSegment(dir, "render") || containsSegment(dir, "coverage") || containsSegment(dir, "history") ||
		containsSegment(dir, "config") || containsSegment(dir, "workflow")):
		return risk.ModuleInfrastructure
	default:
		return risk.ModuleCore
	}
}

// containsSegment reports whether name appears as a whole path segment
// of slashDir (not just a substring of some other segment).
func containsSegment(slashDir, name string) bool {
	for _, seg := range strings.Split(slashDir, "/") {
		if seg == name {
			return true
		}
	}
	return false
}

func shortName(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return name
}

// LoadCoverage tokenizes and indexes the configured LCOV file.
func (e *analyzeEnv) LoadCoverage(s *workflow.State) error {
	f, err := os.Open(e.coverageFile)
	if err != nil {
		return &model.InputError{Path: e.coverageFile, Cause: err}
	}
	defer f.Close()

	records, err := coverage.ParseLCOV(f)
	if err != nil {
		return &model.InputError{Path: e.coverageFile, Cause: err}
	}
	ingested, err := coverage.Ingest(records, nil)
	if err != nil {
		return &model.InputError{Path: e.coverageFile, Cause: err}
	}
	idx := coverage.BuildIndex(ingested)
	idx.SetDebug(e.debugCoverage)
	e.covIndex = idx
	return nil
}

// AnalyzePurity applies a crude shape-based purity heuristic: a function
// with no branching and no outgoing edges reads as pure. Spec.md's
// purity resolver (§4.5) is defined over call-graph side-effect
// propagation the retrieval pack's examples do not show a Go analogue
// for, so this stays a local body-shape approximation rather than a full
// propagation pass, documented as such (DESIGN.md).
func (e *analyzeEnv) AnalyzePurity(s *workflow.State) error {
	for _, m := range s.Metrics {
		callees := e.graph.Callees(m.ID)
		if m.Cyclomatic <= 1 && m.NestingDepth == 0 && len(callees) == 0 {
			m.Purity = model.PurityPure
		} else {
			m.Purity = model.PurityUnknown
		}
	}
	return nil
}

// LoadContext is a no-op: project configuration is already loaded before
// the runner is constructed (§4.10's ContextLoading phase observes that
// load completing, it does not perform it).
func (e *analyzeEnv) LoadContext(s *workflow.State) error {
	return nil
}

// Score runs C6 (classification), C7 (evidence calculators), C8
// (aggregation), C9 (debt scoring), and C10 (file aggregation) over every
// function, assembling the UnifiedAnalysis.
func (e *analyzeEnv) Score(s *workflow.State) error {
	weights := e.cfg.ScoreWeights()
	complexityBaseline := e.cfg.ComplexityBaseline()

	liveSet := e.graph.LiveSet()

	var items []model.DebtItem
	var fnInputsByFile = make(map[string][]fileagg.FunctionInput)

	for _, m := range s.Metrics {
		flags := e.graph.Flags(m.ID)
		callers := e.graph.Callers(m.ID)
		callees := e.graph.Callees(m.ID)

		role := classify.Classify(classify.FromMetrics(m, len(callers), len(callees), flags.IsFrameworkManaged, flags.IsEntryPoint))
		m.Role = role

		for _, edge := range callers {
			m.Callers = append(m.Callers, edge.Caller)
		}
		for _, edge := range callees {
			m.Callees = append(m.Callees, edge.Callee)
		}

		coveragePct := 0.0
		coverageKnown := false
		var uncoveredLines []int
		if e.covIndex != nil {
			res := e.covIndex.GetFunctionCoverageWithLine(m.ID.FilePath, m.ID.Name, m.ID.Line)
			coverageKnown = res.Known
			coveragePct = res.Fraction * 100
			if lines, ok := e.covIndex.GetFunctionUncoveredLines(m.ID.FilePath, m.ID.Name, m.ID.Line); ok {
				uncoveredLines = lines
			}
		}

		complexityFactor := risk.AnalyzeComplexity(risk.ComplexityInput{
			ID: m.ID, Cyclomatic: m.Cyclomatic, Cognitive: m.Cognitive, Length: m.Length, Role: role,
		}, complexityBaseline)

		coverageFactor := risk.AnalyzeCoverage(risk.CoverageInput{
			ID: m.ID, Cyclomatic: m.Cyclomatic, Role: role, IsTest: m.IsTestMarker,
			CoveragePct: coveragePct, CoverageKnown: coverageKnown,
		})

		couplingFactor := risk.AnalyzeCoupling(risk.CouplingInput{
			ID: m.ID, Afferent: len(callers), Efferent: len(callees), ModuleType: moduleTypeForFunction(m),
			Callees: func(id model.FunctionId) []model.FunctionId {
				var out []model.FunctionId
				for _, edge := range e.graph.Callees(id) {
					out = append(out, edge.Callee)
				}
				return out
			},
		})

		var changeFactor model.RiskFactor
		if e.history != nil {
			changeFactor = risk.AnalyzeChangeFrequency(e.history, m.ID.FilePath)
		} else {
			changeFactor = risk.AnalyzeChangeFrequency(nil, m.ID.FilePath)
		}

		aggregated := risk.Aggregate(m.ID, role, []model.RiskFactor{complexityFactor, coverageFactor, couplingFactor, changeFactor})

		inputs := debt.ScoreInputs{
			ComplexityScore: complexityFactor.Score,
			CoverageScore:   coverageFactor.Score,
			DependencyScore: couplingFactor.Score,
			RiskScore:       aggregated.Score,
			Role:            role,
		}

		isDead := false
		if !liveSet[m.ID] {
			confidence := e.graph.DeadCodeConfidenceFor(m.ID)
			isDead = confidence.Confidence >= deadCodeConfidenceCutoff
		}
		debtType := debt.ClassifyDebtType(inputs, isDead, m.ErrorSwallowCount, m.IsResourceHeavy)
		unifiedScore := debt.UnifiedScore(inputs, weights)

		inTestOnlySet := m.InTestModule
		if debt.ShouldInclude(m, inTestOnlySet) {
			items = append(items, debt.BuildDebtItem(m.ID, unifiedScore, debtType, inputs, m.Cyclomatic, coveragePct, languageForPath(m.ID.FilePath), m.NestingDepth))
		}

		fnInputsByFile[m.ID.FilePath] = append(fnInputsByFile[m.ID.FilePath], fileagg.FunctionInput{
			ID: m.ID, Cyclomatic: m.Cyclomatic, Length: m.Length,
			CoveragePct: coveragePct, CoverageKnown: coverageKnown, UncoveredLines: len(uncoveredLines),
			UnifiedScore: unifiedScore,
		})
	}

	var fileItems []model.DebtItem
	orderedFiles, grouped := fileagg.GroupByFile(flattenFnInputs(fnInputsByFile))
	for _, path := range orderedFiles {
		metrics := fileagg.Aggregate(path, grouped[path], nil)
		if fileagg.ShouldEmitFileDebtItem(metrics) {
			fileItem := fileagg.BuildFileDebtItem(metrics)
			items = fileagg.CrossLinkGodObject(items, metrics)
			fileItems = append(fileItems, fileItem)
		}
	}

	totalComplexityReduction, totalCoverageGain, totalRiskReduction := 0.0, 0.0, 0.0
	for _, it := range items {
		totalComplexityReduction += it.ExpectedImpact.ComplexityReduction
		totalCoverageGain += it.ExpectedImpact.CoverageGain
		totalRiskReduction += it.ExpectedImpact.RiskReduction
	}

	overallRatio, hasCoverage := 0.0, e.covIndex != nil
	if hasCoverage {
		knownCount, sum := 0, 0.0
		for _, fns := range fnInputsByFile {
			for _, fn := range fns {
				if fn.CoverageKnown {
					knownCount++
					sum += fn.CoveragePct
				}
			}
		}
		if knownCount > 0 {
			overallRatio = sum / float64(knownCount) / 100
		}
	}

	s.Analysis = &model.UnifiedAnalysis{
		Items: items, FileItems: fileItems,
		TotalComplexityReduction: totalComplexityReduction,
		TotalCoverageGain:        totalCoverageGain,
		TotalRiskReduction:       totalRiskReduction,
		OverallCoverageRatio:     overallRatio,
		HasCoverageData:          hasCoverage,
	}
	return nil
}

func flattenFnInputs(byFile map[string][]fileagg.FunctionInput) []fileagg.FunctionInput {
	var out []fileagg.FunctionInput
	for _, fns := range byFile {
		out = append(out, fns...)
	}
	return out
}

// FilterAndRank applies the final sort; score-based inclusion already
// happened in Score via debt.ShouldInclude.
func (e *analyzeEnv) FilterAndRank(s *workflow.State) error {
	if s.Analysis != nil {
		s.Analysis.SortItems()
	}
	return nil
}
