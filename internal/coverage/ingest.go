package coverage

import (
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ingo/debtmap-go/pkg/model"
)

// progressThrottleFiles is how often (in files) ingestion publishes a
// Parsing progress update (§4.2).
const progressThrottleFiles = 10

// fileSection accumulates the records for one SourceFile...EndOfRecord
// span while streaming through Record values.
type fileSection struct {
	path string

	// funcDecls preserves declaration order; funcData/lineCounts are
	// keyed for O(1) consolidation lookups.
	funcDecls []funcDecl
	funcData  map[string]int // raw name -> max execution count seen
	lineCount map[int]int    // line -> execution count
}

type funcDecl struct {
	startLine int
	rawName   string
}

func newFileSection(path string) *fileSection {
	return &fileSection{
		path:      path,
		funcData:  make(map[string]int),
		lineCount: make(map[int]int),
	}
}

// IngestResult is the per-file output of ingestion before indexing: a
// sorted-by-start-line function coverage list per file.
type IngestResult struct {
	ByFile map[string][]model.FunctionCoverage
}

// Ingest parses a stream of Records into per-file, per-function coverage,
// following §4.2: demangle/normalize, consolidate duplicates by
// normalized full path, then compute per-function coverage ranges.
// Record ordering inside a file section is not significant; a missing
// EndOfRecord at EOF is tolerated and the last file is closed implicitly
// (§6).
func Ingest(records []Record, reporter Reporter) (*IngestResult, error) {
	if reporter == nil {
		reporter = NopReporter
	}

	reporter.Report(Progress{Phase: ProgressInitializing})

	sections := collectSections(records)

	total := len(sections)
	reporter.Report(Progress{Phase: ProgressParsing, Current: 0, Total: total})

	result := &IngestResult{ByFile: make(map[string][]model.FunctionCoverage)}
	var mu sync.Mutex

	reporter.Report(Progress{Phase: ProgressComputingStats, Current: 0, Total: total})

	// Per-file function-coverage calculation is parallelized once the
	// per-file boundary/line tables are built (§5); the shared result map
	// is mediated by a mutex held only around each file's final write.
	g := new(errgroup.Group)
	th := newThrottle(progressThrottleFiles)
	var progressMu sync.Mutex
	i := 0
	for _, sec := range sections {
		sec := sec
		g.Go(func() error {
			funcs := computeFileCoverage(sec)

			mu.Lock()
			result.ByFile[sec.path] = funcs
			mu.Unlock()

			progressMu.Lock()
			i++
			idx := i
			progressMu.Unlock()
			if th.shouldReport(idx == total) {
				reporter.Report(Progress{Phase: ProgressParsing, Current: idx, Total: total})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reporter.Report(Progress{Phase: ProgressComplete, Current: total, Total: total})
	return result, nil
}

// collectSections groups a flat Record stream into per-file sections,
// tolerating a missing trailing EndOfRecord.
func collectSections(records []Record) []*fileSection {
	var sections []*fileSection
	var cur *fileSection

	for _, r := range records {
		switch r.Kind {
		case KindSourceFile:
			if cur != nil {
				sections = append(sections, cur)
			}
			cur = newFileSection(r.Path)
		case KindFunctionName:
			if cur != nil {
				cur.funcDecls = append(cur.funcDecls, funcDecl{startLine: r.StartLine, rawName: r.RawName})
			}
		case KindFunctionData:
			if cur != nil {
				if existing, ok := cur.funcData[r.RawName]; !ok || r.ExecutionCount > existing {
					cur.funcData[r.RawName] = r.ExecutionCount
				}
			}
		case KindLineData:
			if cur != nil {
				if existing, ok := cur.lineCount[r.Line]; !ok || r.Count > existing {
					cur.lineCount[r.Line] = r.Count
				}
			}
		case KindLinesFound, KindLinesHit:
			// aggregate counters; not needed for per-function computation
		case KindEndOfRecord:
			if cur != nil {
				sections = append(sections, cur)
				cur = nil
			}
		}
	}
	if cur != nil {
		sections = append(sections, cur)
	}
	return sections
}

// consolidated is one deduplicated, normalized function record within a
// file section, prior to range computation.
type consolidated struct {
	startLine      int
	executionCount int
	normalized     model.NormalizedFunctionName
	hasLineData    bool
}

// computeFileCoverage consolidates duplicate function declarations by
// normalized full path (keeping the max execution count) and computes
// each function's coverage range and percentage (§4.2).
func computeFileCoverage(sec *fileSection) []model.FunctionCoverage {
	byFullPath := make(map[string]*consolidated)
	var order []string

	for _, decl := range sec.funcDecls {
		demangled := Demangle(decl.rawName)
		norm := Normalize(demangled)
		execCount := sec.funcData[decl.rawName]

		if existing, ok := byFullPath[norm.FullPath]; ok {
			if execCount > existing.executionCount {
				existing.executionCount = execCount
			}
			continue
		}
		c := &consolidated{
			startLine:      decl.startLine,
			executionCount: execCount,
			normalized:     norm,
		}
		byFullPath[norm.FullPath] = c
		order = append(order, norm.FullPath)
	}

	sort.Slice(order, func(i, j int) bool {
		return byFullPath[order[i]].startLine < byFullPath[order[j]].startLine
	})

	var sortedLines []int
	for line := range sec.lineCount {
		sortedLines = append(sortedLines, line)
	}
	sort.Ints(sortedLines)

	funcs := make([]model.FunctionCoverage, 0, len(order))
	for i, fullPath := range order {
		c := byFullPath[fullPath]
		rangeEnd := maxLine(sortedLines) + 1
		if i+1 < len(order) {
			rangeEnd = byFullPath[order[i+1]].startLine
		}

		covered, total, uncovered, hasLineData := rangeCoverage(sortedLines, sec.lineCount, c.startLine, rangeEnd)

		pct := 0.0
		switch {
		case hasLineData && total > 0:
			pct = 100.0 * float64(covered) / float64(total)
		case !hasLineData && c.executionCount > 0:
			// "if line data was absent but count > 0, set coverage to 100%" (§4.2)
			pct = 100.0
			uncovered = nil
		}

		funcs = append(funcs, model.FunctionCoverage{
			Name:           c.normalized.FullPath,
			StartLine:      c.startLine,
			ExecutionCount: c.executionCount,
			CoveredPct:     pct,
			UncoveredLines: uncovered,
			NormalizedName: c.normalized,
		})
	}

	return funcs
}

func maxLine(sorted []int) int {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[len(sorted)-1]
}

// rangeCoverage computes covered/total/uncovered over [start, end) using
// the sorted line table. hasLineData is false when no recorded lines fall
// in range at all.
func rangeCoverage(sortedLines []int, lineCount map[int]int, start, end int) (covered, total int, uncovered []int, hasLineData bool) {
	lo := sort.SearchInts(sortedLines, start)
	for i := lo; i < len(sortedLines) && sortedLines[i] < end; i++ {
		line := sortedLines[i]
		hasLineData = true
		total++
		if lineCount[line] > 0 {
			covered++
		} else {
			uncovered = append(uncovered, line)
		}
	}
	return
}
