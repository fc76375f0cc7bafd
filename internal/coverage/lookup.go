package coverage

import (
	"sort"
	"strings"

	"github.com/ingo/debtmap-go/pkg/model"
)

// GetFunctionCoverage looks up coverage for (file, name) with no line
// hint: the cascade of GetFunctionCoverageWithLine without the line-based
// step 6 and without the line retry inside step 7.
// Returns model.UnknownResult only when idx is nil (no coverage data
// configured at all, §6); otherwise a miss coerces to
// model.ZeroCoverageResult, never Unknown (§4.3, §7).
func (idx *Index) GetFunctionCoverage(file, name string) model.CoverageLookupResult {
	return idx.GetFunctionCoverageWithLine(file, name, -1)
}

// GetFunctionCoverageWithLine runs the full seven-step lookup cascade of
// §4.3, stopping at the first hit. A negative line disables the
// line-based fallback (step 6) since no line hint was supplied.
func (idx *Index) GetFunctionCoverageWithLine(file, name string, line int) model.CoverageLookupResult {
	if idx == nil {
		return model.UnknownResult
	}
	if idx.debug {
		idx.debugStats.Attempts++
	}

	if res, ok := idx.lookup(file, name, line); ok {
		if idx.debug {
			idx.debugStats.Hits++
		}
		return res
	}

	if idx.debug {
		idx.debugStats.ZeroHits++
	}
	return model.ZeroCoverageResult("none")
}

// GetFunctionUncoveredLines returns the uncovered-line set for (file,
// name, line) using the same cascade, or (nil, false) if coverage data is
// not configured at all.
func (idx *Index) GetFunctionUncoveredLines(file, name string, line int) ([]int, bool) {
	if idx == nil {
		return nil, false
	}
	if fc, ok := idx.lookupRecord(file, name, line); ok {
		return fc.UncoveredLines, true
	}
	return nil, true // coverage configured, miss coerces to "0% / no known uncovered lines"
}

// lookup runs steps 1-7 and converts the winning FunctionCoverage (or
// merged aggregate) into a CoverageLookupResult.
func (idx *Index) lookup(file, name string, line int) (model.CoverageLookupResult, bool) {
	if fc, ok := idx.lookupRecord(file, name, line); ok {
		return model.CoverageLookupResult{Fraction: fc.CoveredPct / 100.0, Known: true, Strategy: fc.strategy}, true
	}
	return model.CoverageLookupResult{}, false
}

// taggedCoverage carries the strategy name alongside the merged/matched
// record for diagnostics (§9 "Supplemented features" #3).
type taggedCoverage struct {
	model.FunctionCoverage
	strategy string
}

// lookupRecord implements the seven-step cascade.
func (idx *Index) lookupRecord(file, name string, line int) (taggedCoverage, bool) {
	// Step 1: exact map hit.
	if fc, ok := idx.byFile[file][name]; ok {
		return taggedCoverage{fc, "exact"}, true
	}

	// Step 2: exact hit using the normalized form of the queried name.
	normName := Normalize(name).FullPath
	if normName != name {
		if fc, ok := idx.byFile[file][normName]; ok {
			return taggedCoverage{fc, "normalized-exact"}, true
		}
	}

	// Step 3: aggregated generic lookup via base_function_index.
	if fc, ok := idx.lookupBaseAggregate(file, BaseName(normName)); ok {
		return taggedCoverage{fc, "base-aggregate"}, true
	}

	// Step 4: method-name index lookup (same intersection merge).
	methodName := lastSegment(normName)
	if fc, ok := idx.lookupMethodAggregate(file, methodName); ok {
		return taggedCoverage{fc, "method-name"}, true
	}

	// Step 5: name-variant fallback — retry 1-4 against the last
	// "::"-segment of the query.
	if methodName != name && methodName != normName {
		if fc, ok := idx.byFile[file][methodName]; ok {
			return taggedCoverage{fc, "variant-exact"}, true
		}
		if fc, ok := idx.lookupBaseAggregate(file, BaseName(methodName)); ok {
			return taggedCoverage{fc, "variant-base-aggregate"}, true
		}
		if fc, ok := idx.lookupMethodAggregate(file, methodName); ok {
			return taggedCoverage{fc, "variant-method-name"}, true
		}
	}

	// Step 6: line-based fallback.
	if line >= 0 {
		if fc, ok := idx.lookupByLine(file, line); ok {
			return taggedCoverage{fc, "line-fallback"}, true
		}
	}

	// Step 7: path-strategy fallback.
	if fc, ok := idx.lookupByPathStrategy(file, name, normName, methodName, line); ok {
		return fc, true
	}

	return taggedCoverage{}, false
}

func lastSegment(name string) string {
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		return name[idx+2:]
	}
	return name
}

// lookupBaseAggregate merges all monomorphizations of one source function
// sharing a base_function_index entry using the intersection strategy
// (§4.3 step 3, §8 S2): a line is uncovered only if every monomorphization
// leaves it uncovered, and the reported percentage is the arithmetic mean.
func (idx *Index) lookupBaseAggregate(file, baseName string) (model.FunctionCoverage, bool) {
	names := idx.baseFunctionIndex[fileKey{path: file, name: baseName}]
	return idx.mergeIntersection(file, names)
}

// lookupMethodAggregate merges records sharing a method_name_index entry
// using the same intersection strategy (§4.3 step 4).
func (idx *Index) lookupMethodAggregate(file, methodName string) (model.FunctionCoverage, bool) {
	names := idx.methodNameIndex[fileKey{path: file, name: methodName}]
	return idx.mergeIntersection(file, names)
}

// mergeIntersection implements the shared intersection-merge used by
// steps 3 and 4: uncovered lines are the intersection across all merged
// records; the percentage is the arithmetic mean of per-record
// percentages.
func (idx *Index) mergeIntersection(file string, names []string) (model.FunctionCoverage, bool) {
	if len(names) == 0 {
		return model.FunctionCoverage{}, false
	}

	fileMap := idx.byFile[file]
	var records []model.FunctionCoverage
	for _, n := range names {
		if fc, ok := fileMap[n]; ok {
			records = append(records, fc)
		}
	}
	if len(records) == 0 {
		return model.FunctionCoverage{}, false
	}
	if len(records) == 1 {
		return records[0], true
	}

	uncoveredSets := make([]map[int]bool, len(records))
	sumPct := 0.0
	for i, r := range records {
		m := make(map[int]bool, len(r.UncoveredLines))
		for _, l := range r.UncoveredLines {
			m[l] = true
		}
		uncoveredSets[i] = m
		sumPct += r.CoveredPct
	}

	var intersection []int
	for line := range uncoveredSets[0] {
		inAll := true
		for _, set := range uncoveredSets[1:] {
			if !set[line] {
				inAll = false
				break
			}
		}
		if inAll {
			intersection = append(intersection, line)
		}
	}
	sort.Ints(intersection)

	merged := records[0]
	merged.Name = names[0]
	merged.CoveredPct = sumPct / float64(len(records))
	merged.UncoveredLines = intersection
	return merged, true
}

// lineRangeSpan is the +/- window searched in step 6 (§4.3, §8 "a query
// line exactly 2 away from a function start matches; 3 away does not").
const lineRangeSpan = 2

// lookupByLine range-queries by_line[file] for [line-2, line+2] and
// returns the closest start line; ties pick the lower line.
func (idx *Index) lookupByLine(file string, line int) (model.FunctionCoverage, bool) {
	entries := idx.byLine[file]
	if len(entries) == 0 {
		return model.FunctionCoverage{}, false
	}

	lo, hi := line-lineRangeSpan, line+lineRangeSpan
	best := -1
	bestDist := -1
	for _, e := range entries {
		if e.line < lo || e.line > hi {
			continue
		}
		dist := abs(e.line - line)
		if best == -1 || dist < bestDist || (dist == bestDist && e.line < entries[best].line) {
			best = indexOfLine(entries, e.line)
			bestDist = dist
		}
	}
	if best == -1 {
		return model.FunctionCoverage{}, false
	}
	return entries[best].fc, true
}

func indexOfLine(entries []lineEntry, line int) int {
	for i, e := range entries {
		if e.line == line {
			return i
		}
	}
	return -1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// lookupByPathStrategy iterates file_paths trying, in order: (a)
// path-component suffix of query matches file, (b) file is suffix of
// query, (c) full normalized-component equality (§4.3 step 7). For each
// matching file it retries name variants and method-name matching.
func (idx *Index) lookupByPathStrategy(queryFile, name, normName, methodName string, line int) (taggedCoverage, bool) {
	for _, candidate := range idx.filePaths {
		if candidate == queryFile {
			continue // already tried directly
		}
		if !pathMatches(candidate, queryFile) {
			continue
		}
		for _, n := range []string{name, normName, methodName} {
			if fc, ok := idx.byFile[candidate][n]; ok {
				return taggedCoverage{fc, "path-strategy"}, true
			}
		}
		if fc, ok := idx.lookupBaseAggregate(candidate, BaseName(normName)); ok {
			return taggedCoverage{fc, "path-strategy-base"}, true
		}
		if fc, ok := idx.lookupMethodAggregate(candidate, methodName); ok {
			return taggedCoverage{fc, "path-strategy-method"}, true
		}
		if line >= 0 {
			if fc, ok := idx.lookupByLine(candidate, line); ok {
				return taggedCoverage{fc, "path-strategy-line"}, true
			}
		}
	}
	return taggedCoverage{}, false
}

// pathMatches implements the three path-matching strategies of step 7.
func pathMatches(candidate, query string) bool {
	candComps := strings.Split(filepathToSlash(candidate), "/")
	queryComps := strings.Split(filepathToSlash(query), "/")

	if isComponentSuffix(candComps, queryComps) {
		return true
	}
	if strings.HasSuffix(query, candidate) {
		return true
	}
	return normalizedComponentsEqual(candComps, queryComps)
}

// isComponentSuffix reports whether `suffix` is a trailing subsequence of
// `full`, compared component-wise.
func isComponentSuffix(suffix, full []string) bool {
	if len(suffix) == 0 || len(suffix) > len(full) {
		return false
	}
	offset := len(full) - len(suffix)
	for i, c := range suffix {
		if full[offset+i] != c {
			return false
		}
	}
	return true
}

func normalizedComponentsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
