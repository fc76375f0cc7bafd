package loc

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"
)

// generatedMarkers are the case-sensitive substrings that mark a file as
// generated when found within the first 100 lines (§4.1).
var generatedMarkers = []string{"@generated", "DO NOT EDIT", "automatically generated"}

const generatedScanLines = 100

// IsTestFile reports whether a path matches the test-file patterns of
// §4.1: path contains "tests/" or basename ends "_test"/"_tests" (before
// any extension).
func IsTestFile(path string) bool {
	normalized := filepath.ToSlash(path)
	if strings.Contains(normalized, "tests/") {
		return true
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(base, "_test") || strings.HasSuffix(base, "_tests")
}

// IsGeneratedByName reports whether a filename carries a generated-file
// marker in its name: ".generated." anywhere, or ".g.<ext>" as the
// penultimate extension.
func IsGeneratedByName(path string) bool {
	base := filepath.Base(path)
	if strings.Contains(base, ".generated.") {
		return true
	}
	ext := filepath.Ext(base)
	withoutExt := strings.TrimSuffix(base, ext)
	return strings.HasSuffix(withoutExt, ".g")
}

// IsGeneratedByContent reports whether content carries a generated-file
// marker comment within its first 100 lines.
func IsGeneratedByContent(content []byte) bool {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNum := 0
	for scanner.Scan() && lineNum < generatedScanLines {
		line := scanner.Text()
		for _, marker := range generatedMarkers {
			if strings.Contains(line, marker) {
				return true
			}
		}
		lineNum++
	}
	return false
}

// MatchesExclusion reports whether path contains any user-configured
// exclusion substring.
func MatchesExclusion(path string, exclusions []string) bool {
	normalized := filepath.ToSlash(path)
	for _, ex := range exclusions {
		if ex != "" && strings.Contains(normalized, ex) {
			return true
		}
	}
	return false
}

// ShouldInclude applies the three inclusion filters of §4.1: test-file
// patterns, generated-file markers (by name, then by content when
// content is non-nil), and user exclusions. A file matching any of them
// is excluded.
func ShouldInclude(path string, content []byte, exclusions []string) bool {
	if IsTestFile(path) {
		return false
	}
	if MatchesExclusion(path, exclusions) {
		return false
	}
	if IsGeneratedByName(path) {
		return false
	}
	if content != nil && IsGeneratedByContent(content) {
		return false
	}
	return true
}

// ProjectCounter aggregates per-file Counts into a project total, counting
// each file at most once via a uniqueness map keyed by path (§4.1).
type ProjectCounter struct {
	seen  map[string]bool
	Total Counts
	Files map[string]Counts
}

// NewProjectCounter creates an empty ProjectCounter.
func NewProjectCounter() *ProjectCounter {
	return &ProjectCounter{
		seen:  make(map[string]bool),
		Files: make(map[string]Counts),
	}
}

// Add records a file's Counts into the project total. Calling Add twice
// with the same path is a no-op on the second call, preserving the
// at-most-once invariant.
func (pc *ProjectCounter) Add(path string, c Counts) {
	if pc.seen[path] {
		return
	}
	pc.seen[path] = true
	pc.Files[path] = c
	pc.Total.Physical += c.Physical
	pc.Total.Code += c.Code
	pc.Total.Comment += c.Comment
	pc.Total.Blank += c.Blank
}
