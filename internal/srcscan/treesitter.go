package srcscan

import (
	"fmt"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/ingo/debtmap-go/pkg/model"
)

// TreeSitterScanner holds pooled Tree-sitter parsers for Python,
// TypeScript, and TSX (adapted from the teacher's
// internal/parser.TreeSitterParser). Parsers are not thread-safe, so
// parse calls are serialized via a mutex; returned trees are safe to
// read concurrently afterward.
type TreeSitterScanner struct {
	mu           sync.Mutex
	pythonParser *tree_sitter.Parser
	tsParser     *tree_sitter.Parser
	tsxParser    *tree_sitter.Parser
}

// NewTreeSitterScanner initializes all three pooled parsers.
func NewTreeSitterScanner() (*TreeSitterScanner, error) {
	pyParser := tree_sitter.NewParser()
	pyLang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := pyParser.SetLanguage(pyLang); err != nil {
		pyParser.Close()
		return nil, fmt.Errorf("set python language: %w", err)
	}

	tsParser := tree_sitter.NewParser()
	tsLang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	if err := tsParser.SetLanguage(tsLang); err != nil {
		pyParser.Close()
		tsParser.Close()
		return nil, fmt.Errorf("set typescript language: %w", err)
	}

	tsxParser := tree_sitter.NewParser()
	tsxLang := tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	if err := tsxParser.SetLanguage(tsxLang); err != nil {
		pyParser.Close()
		tsParser.Close()
		tsxParser.Close()
		return nil, fmt.Errorf("set tsx language: %w", err)
	}

	return &TreeSitterScanner{pythonParser: pyParser, tsParser: tsParser, tsxParser: tsxParser}, nil
}

// Close releases all parser resources.
func (s *TreeSitterScanner) Close() {
	if s.pythonParser != nil {
		s.pythonParser.Close()
	}
	if s.tsParser != nil {
		s.tsParser.Close()
	}
	if s.tsxParser != nil {
		s.tsxParser.Close()
	}
}

// ScanFile parses one Python/TypeScript file and extracts a coarse
// FunctionMetrics per function/method node, nested ones included. This is
// deliberately best-effort: a parse failure returns (nil, err) and
// callers are expected to fall back to treating the file as
// unenriched rather than aborting the whole run (§7's "parse error in
// one file is recovered locally").
func (s *TreeSitterScanner) ScanFile(path string, lang model.Language, content []byte) ([]*model.FunctionMetrics, error) {
	s.mu.Lock()
	var parser *tree_sitter.Parser
	switch lang {
	case model.LangPython:
		parser = s.pythonParser
	case model.LangTypeScript:
		if strings.HasSuffix(path, ".tsx") {
			parser = s.tsxParser
		} else {
			parser = s.tsParser
		}
	default:
		s.mu.Unlock()
		return nil, fmt.Errorf("unsupported language for tree-sitter scan: %s", lang)
	}
	tree := parser.Parse(content, nil)
	s.mu.Unlock()

	if tree == nil {
		return nil, fmt.Errorf("tree-sitter parse of %s returned nil", path)
	}
	defer tree.Close()

	funcNodeTypes := functionNodeTypes(lang)
	var out []*model.FunctionMetrics
	root := tree.RootNode()
	walkTreeSitter(root, func(n *tree_sitter.Node) {
		if !funcNodeTypes[n.Kind()] {
			return
		}
		startLine := int(n.StartPosition().Row) + 1
		endLine := int(n.EndPosition().Row) + 1
		name := functionNameFromNode(n, content)
		out = append(out, &model.FunctionMetrics{
			ID: model.FunctionId{
				FilePath: path,
				Name:     name,
				Line:     startLine,
			},
			Cyclomatic:   1 + countBranchNodes(n, lang),
			Length:       endLine - startLine + 1,
			NestingDepth: 0,
			IsTestMarker: strings.Contains(strings.ToLower(name), "test"),
		})
	})
	return out, nil
}

func functionNodeTypes(lang model.Language) map[string]bool {
	switch lang {
	case model.LangPython:
		return map[string]bool{"function_definition": true}
	case model.LangTypeScript:
		return map[string]bool{
			"function_declaration": true,
			"method_definition":    true,
			"arrow_function":       true,
		}
	default:
		return map[string]bool{}
	}
}

var branchNodeTypes = map[string]bool{
	"if_statement":        true,
	"elif_clause":         true,
	"for_statement":       true,
	"while_statement":     true,
	"for_in_statement":    true,
	"case_clause":         true,
	"catch_clause":        true,
	"conditional_expression": true,
	"boolean_operator":    true,
}

func countBranchNodes(n *tree_sitter.Node, lang model.Language) int {
	count := 0
	walkTreeSitter(n, func(child *tree_sitter.Node) {
		if child == n {
			return
		}
		if branchNodeTypes[child.Kind()] {
			count++
		}
	})
	return count
}

func functionNameFromNode(n *tree_sitter.Node, content []byte) string {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return "<anonymous>"
	}
	start, end := nameNode.StartByte(), nameNode.EndByte()
	if int(end) > len(content) {
		return "<anonymous>"
	}
	return string(content[start:end])
}

func walkTreeSitter(n *tree_sitter.Node, visit func(*tree_sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		walkTreeSitter(n.Child(i), visit)
	}
}
