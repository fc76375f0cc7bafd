package callgraph

import (
	"regexp"
	"strings"

	"github.com/ingo/debtmap-go/pkg/model"
)

// FrameworkPattern names one of the known framework-managed invocation
// shapes a function can match (§4.4 phase 4).
type FrameworkPattern string

const (
	PatternTest          FrameworkPattern = "test"
	PatternWebHandler    FrameworkPattern = "web-handler"
	PatternEventHandler  FrameworkPattern = "event-handler"
	PatternMacroCallback FrameworkPattern = "macro-callback"
	PatternVisitor       FrameworkPattern = "visitor"
)

// FrameworkCandidate is a function considered for framework-pattern
// matching, along with the signals phase 4 inspects: its attached
// attribute/decorator names, given without the surrounding "#[...]" or
// "@" syntax (e.g. "test", "get(\"/\")"), and whether
// it was registered against a known macro-callback table.
type FrameworkCandidate struct {
	ID         model.FunctionId
	Attributes []string
	IsMacroCallback bool
}

var (
	webHandlerAttr   = regexp.MustCompile(`(?i)^(get|post|put|delete|patch|route|handler)\b`)
	eventHandlerAttr = regexp.MustCompile(`(?i)^(on_event|subscribe|listener|event_handler)\b`)
	visitorNameRe    = regexp.MustCompile(`^visit_`)
)

// MatchFrameworkPattern reports which pattern, if any, a candidate matches
// (§4.4 phase 4: "test, web handler, event handler, macro callback,
// visitor-pattern visit_* methods"). The empty string means no match.
func MatchFrameworkPattern(c FrameworkCandidate) FrameworkPattern {
	for _, attr := range c.Attributes {
		lower := strings.ToLower(attr)
		if strings.Contains(lower, "test") {
			return PatternTest
		}
		if webHandlerAttr.MatchString(lower) {
			return PatternWebHandler
		}
		if eventHandlerAttr.MatchString(lower) {
			return PatternEventHandler
		}
	}
	if c.IsMacroCallback {
		return PatternMacroCallback
	}
	if visitorNameRe.MatchString(c.ID.Name) {
		return PatternVisitor
	}
	return ""
}

// ApplyFrameworkPatterns matches every candidate and applies the
// corresponding graph marks (§4.4 phase 4): matched functions are marked
// framework-managed (which makes them entry points), test functions are
// additionally marked as tests, and visitor methods get their dedicated
// dead-code dampener flag.
func ApplyFrameworkPatterns(g *Graph, candidates []FrameworkCandidate) {
	for _, c := range candidates {
		switch MatchFrameworkPattern(c) {
		case PatternTest:
			g.MarkTest(c.ID)
			g.MarkFrameworkManaged(c.ID)
		case PatternVisitor:
			g.MarkVisitorMethod(c.ID)
			g.MarkFrameworkManaged(c.ID)
		case PatternWebHandler, PatternEventHandler, PatternMacroCallback:
			g.MarkFrameworkManaged(c.ID)
		}
	}
}
