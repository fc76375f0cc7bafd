package model

// NormalizedFunctionName is the tuple produced by normalizing a raw
// coverage-record symbol (§3, §4.2): FullPath is the normalized
// "::"-delimited path with hash brackets, generic parameters, and impl-block wrapping
// stripped; MethodName is the final "::"-delimited segment; Original is
// the untouched raw name, kept for diagnostics.
type NormalizedFunctionName struct {
	FullPath   string
	MethodName string
	Original   string
}

// FunctionCoverage is one function's execution-coverage record after
// ingestion and per-function boundary computation (§3, §4.2).
type FunctionCoverage struct {
	Name            string
	StartLine       int
	ExecutionCount  int
	CoveredPct      float64
	UncoveredLines  []int
	NormalizedName  NormalizedFunctionName
}

// CoverageLookupResult is returned by the index's read interface. A miss
// when coverage data is present must coerce to ZeroCoverageResult (§4.3,
// §7) rather than UnknownResult; UnknownResult is reserved for "no
// coverage data configured at all" (§6).
type CoverageLookupResult struct {
	Fraction float64
	Known    bool
	Strategy string // which of the seven lookup strategies resolved the query, for debug tracing
}

// UnknownResult represents "no coverage data configured" — never returned
// for a miss against present coverage data.
var UnknownResult = CoverageLookupResult{Known: false}

// ZeroCoverageResult represents "coverage data present, but this function
// could not be matched by any lookup strategy" — reported as 0%.
func ZeroCoverageResult(strategy string) CoverageLookupResult {
	return CoverageLookupResult{Fraction: 0, Known: true, Strategy: strategy}
}
