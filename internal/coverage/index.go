package coverage

import (
	"fmt"
	"sort"

	"github.com/ingo/debtmap-go/pkg/model"
)

// Index is the immutable analytical form of coverage data (§3): once
// built from a set of FunctionCoverage records its coverage maps are
// never mutated. With debug mode off a lookup writes nothing, so the
// index is safe to query concurrently without synchronization; with
// debug mode on, each lookup updates the debugStats tally without
// locking.
type Index struct {
	byFile map[string]map[string]model.FunctionCoverage
	byLine map[string][]lineEntry // sorted by Line, for range/closest queries

	baseFunctionIndex map[fileKey][]string
	methodNameIndex   map[fileKey][]string

	filePaths []string

	debug      bool
	debugStats debugStats
}

type lineEntry struct {
	line int
	fc   model.FunctionCoverage
}

type fileKey struct {
	path string
	name string
}

// BuildIndex constructs the CoverageIndex from an IngestResult (§3, §4.2
// "After all files are processed, build the CoverageIndex"). The index is
// immutable thereafter.
func BuildIndex(ingested *IngestResult) *Index {
	idx := &Index{
		byFile:            make(map[string]map[string]model.FunctionCoverage),
		byLine:            make(map[string][]lineEntry),
		baseFunctionIndex: make(map[fileKey][]string),
		methodNameIndex:   make(map[fileKey][]string),
	}

	for path, funcs := range ingested.ByFile {
		idx.filePaths = append(idx.filePaths, path)

		fileMap := make(map[string]model.FunctionCoverage, len(funcs))
		var lines []lineEntry

		for _, fc := range funcs {
			fileMap[fc.Name] = fc
			lines = append(lines, lineEntry{line: fc.StartLine, fc: fc})

			base := BaseName(fc.NormalizedName.FullPath)
			bk := fileKey{path: path, name: base}
			idx.baseFunctionIndex[bk] = append(idx.baseFunctionIndex[bk], fc.Name)

			mk := fileKey{path: path, name: fc.NormalizedName.MethodName}
			idx.methodNameIndex[mk] = append(idx.methodNameIndex[mk], fc.Name)
		}

		sort.Slice(lines, func(i, j int) bool { return lines[i].line < lines[j].line })

		idx.byFile[path] = fileMap
		idx.byLine[path] = lines
	}

	sort.Strings(idx.filePaths)
	return idx
}

// SetDebug enables per-lookup diagnostic tallying (§4.3, §6
// DEBTMAP_COVERAGE_DEBUG). Debug mode only counts attempts, hits and
// zero-hits; it does not log individual lookups, and it never affects
// the numeric results of a lookup.
func (idx *Index) SetDebug(enabled bool) {
	idx.debug = enabled
}

// DebugStats returns the current attempts/hits/zero-result tally.
func (idx *Index) DebugStats() debugStats {
	return idx.debugStats
}

type debugStats struct {
	Attempts int
	Hits     int
	ZeroHits int
}

// DebugSummary renders a one-line attempts/matched/zero-hit tally for the
// end of a DEBTMAP_COVERAGE_DEBUG run, mirroring the original Rust
// implementation's diagnose_coverage summary line (SPEC_FULL.md
// "Supplemented features" #2): it reports counts only, never per-query
// detail, since per-query tracing already happens inline via the
// Strategy field on each CoverageLookupResult.
func DebugSummary(idx *Index) string {
	stats := idx.DebugStats()
	return fmt.Sprintf("coverage lookups: %d attempted, %d matched, %d zero-hit",
		stats.Attempts, stats.Hits, stats.ZeroHits)
}

// FilePaths returns the cached sequence of all indexed paths, used for
// suffix-matching fallback (§3, §4.3 step 7).
func (idx *Index) FilePaths() []string {
	return idx.filePaths
}
