// Package coverage implements C2 (ingest/normalization) and C3 (the
// lookup index) of the analysis pipeline: parsing line-execution records
// into per-file, per-function coverage, and serving O(1)/O(log n) lookups
// against the resulting index with a multi-strategy fallback cascade.
//
// Grounded on the teacher's gocyclo-based C1 metrics extraction for the
// general shape of "walk raw input, build per-function records, expose a
// read-only index"; the demangling/normalization and lookup-cascade
// semantics follow spec.md §4.2-§4.3 and the original Rust implementation
// in _examples/original_source/src/risk/lcov/{coverage,query}.rs.
package coverage

import (
	"strings"

	"github.com/ingo/debtmap-go/pkg/model"
)

// Demangle recognizes the Itanium C++ ("_ZN...") and Rust v0 ("_RNv...")
// mangling schemes well enough to strip their prefix markers; names that
// don't match either pass through unchanged. This is intentionally
// shallow — the pipeline is not a full demangler, only a normalizer for
// matching against AST-derived function names (§4.2).
func Demangle(raw string) string {
	if strings.HasPrefix(raw, "_ZN") {
		return demangleItanium(raw)
	}
	if strings.HasPrefix(raw, "_RNv") {
		return demangleRustV0(raw)
	}
	return raw
}

// demangleItanium strips "_ZN" and trailing length-prefixed segment
// markers, turning "_ZN3foo3barEv" into "foo::bar". It is a best-effort
// approximation, not a full Itanium demangler.
func demangleItanium(raw string) string {
	s := strings.TrimPrefix(raw, "_ZN")
	s = strings.TrimSuffix(s, "Ev")
	s = strings.TrimSuffix(s, "E")

	var segments []string
	i := 0
	for i < len(s) {
		j := i
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i {
			break // no length prefix left; stop
		}
		n := 0
		for k := i; k < j; k++ {
			n = n*10 + int(s[k]-'0')
		}
		start := j
		end := start + n
		if end > len(s) {
			end = len(s)
		}
		segments = append(segments, s[start:end])
		i = end
	}
	if len(segments) == 0 {
		return raw
	}
	return strings.Join(segments, "::")
}

// demangleRustV0 strips the "_RNv" legacy-v0 marker prefix and decodes
// the rest with demangleItanium, approximating Rust's v0 mangling enough
// for name matching. No hash suffix is removed.
func demangleRustV0(raw string) string {
	s := strings.TrimPrefix(raw, "_RNv")
	// v0 encodes length-prefixed segments similarly to Itanium; reuse the
	// same decoder after stripping the distinct prefix marker.
	return demangleItanium("_ZN" + s)
}

// Normalize produces the NormalizedFunctionName for a raw (already
// demangled) symbol, applying the transformations of §4.2:
//   - strip hash bracket "[...]" inside "<crate[hash]::...>" prefixes,
//   - strip the outer "< ... >" around impl blocks, preserving inner path,
//   - MethodName is the last "::"-delimited segment of the fully
//     generic-stripped form,
//   - FullPath is the normalized "::"-delimited path.
//
// FullPath intentionally preserves a trailing "::<Generic,...>" suffix
// rather than stripping it: distinct monomorphizations of one source
// function (e.g. "exec::<Worker>" vs "exec::<Mock>") must remain distinct
// entries so the coverage index can later aggregate across them with the
// intersection strategy (§4.3 step 3, §8 S2). The fully generic-stripped
// form — used as the base_function_index key grouping those
// monomorphizations — is obtained separately via BaseName.
func Normalize(raw string) model.NormalizedFunctionName {
	s := raw

	s = stripHashBrackets(s)
	s = stripOuterImplAngles(s)

	base := stripAllAngleGenerics(stripTrailingGenerics(s))
	method := base
	if idx := strings.LastIndex(base, "::"); idx >= 0 {
		method = base[idx+2:]
	}

	return model.NormalizedFunctionName{
		FullPath:   s,
		MethodName: method,
		Original:   raw,
	}
}

// BaseName returns the fully generic-stripped form of a normalized
// FullPath: trailing "::<Generic,...>" removed and any remaining
// "<...>" groups dropped anywhere in the path. This is the key used by
// the coverage index's base_function_index to group monomorphized
// versions of one source function (§3, §4.3 step 3).
func BaseName(fullPath string) string {
	return stripAllAngleGenerics(stripTrailingGenerics(fullPath))
}

// stripHashBrackets removes a "[hash]" bracket group immediately
// following a crate name inside "<crate[hash]::...>" prefixes.
func stripHashBrackets(s string) string {
	for {
		start := strings.Index(s, "[")
		if start < 0 {
			return s
		}
		end := strings.Index(s[start:], "]")
		if end < 0 {
			return s
		}
		end += start
		s = s[:start] + s[end+1:]
	}
}

// stripOuterImplAngles removes a leading "<" and its matching ">" when
// the string is wrapped as an impl-block path, e.g. "<Foo as Trait>::bar"
// becomes "Foo::bar" (preserving the inner path, dropping " as Trait").
func stripOuterImplAngles(s string) string {
	if !strings.HasPrefix(s, "<") {
		return s
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				inner := s[1:i]
				rest := s[i+1:]
				if asIdx := strings.Index(inner, " as "); asIdx >= 0 {
					inner = inner[:asIdx]
				}
				return inner + rest
			}
		}
	}
	return s
}

// stripTrailingGenerics removes a trailing "::<Generic,...>" suffix via a
// balanced angle-bracket scan from the end of the string.
func stripTrailingGenerics(s string) string {
	if !strings.HasSuffix(s, ">") {
		return s
	}
	depth := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '>':
			depth++
		case '<':
			depth--
			if depth == 0 {
				if i >= 2 && s[i-2:i] == "::" {
					return s[:i-2]
				}
				return s[:i]
			}
		}
	}
	return s
}

// stripAllAngleGenerics removes any remaining "<...>" generic-parameter
// groups found anywhere in the path, handling nested angle brackets.
func stripAllAngleGenerics(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
