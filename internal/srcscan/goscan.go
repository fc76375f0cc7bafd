// Package srcscan is the external AST collaborator the spec's dataflow
// names but does not define (spec.md §2: "source paths → C1 (LOC) and
// AST (external) → C4 build"): it turns source files into the
// FunctionMetrics C4 needs, using real parsers rather than inventing a
// parsing layer of its own.
//
// Go is ingested with go/packages + go/ast + gocyclo, adapted directly
// from the teacher's internal/parser.GoPackagesParser and
// internal/analyzer/c1_codehealth.go's analyzeFunctions. Python and
// TypeScript are a best-effort, nil-safe-fallback Tree-sitter scan
// adapted from the teacher's internal/parser/treesitter.go.
package srcscan

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"log"
	"strings"

	"github.com/fzipp/gocyclo"
	"golang.org/x/tools/go/packages"

	"github.com/ingo/debtmap-go/pkg/model"
)

// GoPackage holds one package's analysis-relevant data loaded via
// go/packages (adapted from parser.ParsedPackage).
type GoPackage struct {
	PkgPath string
	Syntax  []*ast.File
	Fset    *token.FileSet
	Types   *types.Package
	ForTest string
}

// LoadGoPackages loads every package under rootDir, keeping both source
// and test variants so callers can tell InTestModule apart (§3).
func LoadGoPackages(rootDir string) ([]*GoPackage, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedImports |
			packages.NeedDeps |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo |
			packages.NeedForTest,
		Dir:   rootDir,
		Tests: true,
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("packages.Load: %w", err)
	}

	var result []*GoPackage
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			for _, e := range pkg.Errors {
				log.Printf("warning: package %s: %s", pkg.PkgPath, e)
			}
			if pkg.Types == nil || len(pkg.Syntax) == 0 {
				continue
			}
		}
		result = append(result, &GoPackage{
			PkgPath: pkg.PkgPath,
			Syntax:  pkg.Syntax,
			Fset:    pkg.Fset,
			Types:   pkg.Types,
			ForTest: pkg.ForTest,
		})
	}
	return result, nil
}

// goPos is a (file, line) key used to join gocyclo's complexity results
// back onto the ast.FuncDecl they describe, the same join key the
// teacher's analyzeFunctions uses.
type goPos struct {
	file string
	line int
}

// ExtractGoFunctionMetrics walks every package's AST and returns one
// FunctionMetrics per function declaration, with cyclomatic complexity
// from gocyclo and length/nesting computed directly from the AST.
// Nesting depth is approximated by the deepest block-statement nesting
// inside the function body, matching the "maximum nesting depth" field
// FunctionMetrics carries (§3).
func ExtractGoFunctionMetrics(pkgs []*GoPackage) []*model.FunctionMetrics {
	var out []*model.FunctionMetrics

	for _, pkg := range pkgs {
		var stats gocyclo.Stats
		for _, f := range pkg.Syntax {
			stats = gocyclo.AnalyzeASTFile(f, pkg.Fset, stats)
		}
		complexityByPos := make(map[goPos]int, len(stats))
		for _, s := range stats {
			complexityByPos[goPos{s.Pos.Filename, s.Pos.Line}] = s.Complexity
		}

		for _, f := range pkg.Syntax {
			ast.Inspect(f, func(n ast.Node) bool {
				fn, ok := n.(*ast.FuncDecl)
				if !ok || fn.Body == nil {
					return true
				}

				pos := pkg.Fset.Position(fn.Pos())
				end := pkg.Fset.Position(fn.End())
				lineCount := end.Line - pos.Line + 1

				name := fn.Name.Name
				if fn.Recv != nil && len(fn.Recv.List) > 0 {
					name = receiverTypeName(fn.Recv.List[0].Type) + "." + name
				}

				cyclomatic := complexityByPos[goPos{pos.Filename, pos.Line}]
				if cyclomatic == 0 {
					cyclomatic = 1
				}

				m := &model.FunctionMetrics{
					ID: model.FunctionId{
						FilePath: pos.Filename,
						Name:     name,
						Line:     pos.Line,
					},
					Cyclomatic:        cyclomatic,
					Cognitive:         estimateCognitive(fn.Body),
					NestingDepth:      maxNestingDepth(fn.Body),
					Length:            lineCount,
					IsTestMarker:      isGoTestName(name),
					InTestModule:      pkg.ForTest != "",
					Visibility:        goVisibility(fn.Name.Name),
					ErrorSwallowCount: countSwallowedErrors(fn.Body),
					IsResourceHeavy:   isResourceHeavy(fn.Body),
				}
				out = append(out, m)
				return true
			})
		}
	}
	return out
}

// CallEdge is one caller -> callee-name reference found inside a Go
// function body. CalleeName is unresolved (just the call expression's
// trailing identifier, e.g. "Foo" or "r.Foo"'s "Foo") — resolving it to a
// concrete model.FunctionId across packages is the caller's job, since
// that requires the full cross-package function index this package does
// not own.
type CallEdge struct {
	Caller     model.FunctionId
	CalleeName string
}

// ExtractGoCallEdges walks every function body for call expressions,
// grounded the same way ExtractGoFunctionMetrics walks FuncDecls: a plain
// ast.Inspect per file, no type-checking of the callee (§4.4 treats call
// graph construction as approximate, trading precision for speed).
func ExtractGoCallEdges(pkgs []*GoPackage) []CallEdge {
	var edges []CallEdge
	for _, pkg := range pkgs {
		for _, f := range pkg.Syntax {
			ast.Inspect(f, func(n ast.Node) bool {
				fn, ok := n.(*ast.FuncDecl)
				if !ok || fn.Body == nil {
					return true
				}
				pos := pkg.Fset.Position(fn.Pos())
				name := fn.Name.Name
				if fn.Recv != nil && len(fn.Recv.List) > 0 {
					name = receiverTypeName(fn.Recv.List[0].Type) + "." + name
				}
				caller := model.FunctionId{FilePath: pos.Filename, Name: name, Line: pos.Line}

				ast.Inspect(fn.Body, func(inner ast.Node) bool {
					call, ok := inner.(*ast.CallExpr)
					if !ok {
						return true
					}
					if callee := calleeName(call.Fun); callee != "" {
						edges = append(edges, CallEdge{Caller: caller, CalleeName: callee})
					}
					return true
				})
				return true
			})
		}
	}
	return edges
}

func calleeName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return e.Sel.Name
	default:
		return ""
	}
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return "?"
	}
}

func isGoTestName(name string) bool {
	return len(name) > 4 && name[:4] == "Test"
}

func goVisibility(name string) model.Visibility {
	if name == "" {
		return model.VisibilityPrivate
	}
	if name[0] >= 'A' && name[0] <= 'Z' {
		return model.VisibilityPublic
	}
	return model.VisibilityPrivate
}

// maxNestingDepth walks a function body and returns the deepest nesting
// of block-introducing statements (if/for/switch/select/range).
func maxNestingDepth(body *ast.BlockStmt) int {
	if body == nil {
		return 0
	}
	var walk func(n ast.Stmt, depth int) int
	maxDepth := 0
	walk = func(n ast.Stmt, depth int) int {
		if depth > maxDepth {
			maxDepth = depth
		}
		switch s := n.(type) {
		case *ast.BlockStmt:
			for _, stmt := range s.List {
				walk(stmt, depth)
			}
		case *ast.IfStmt:
			walk(s.Body, depth+1)
			if s.Else != nil {
				walk(s.Else, depth+1)
			}
		case *ast.ForStmt:
			walk(s.Body, depth+1)
		case *ast.RangeStmt:
			walk(s.Body, depth+1)
		case *ast.SwitchStmt:
			walk(s.Body, depth+1)
		case *ast.TypeSwitchStmt:
			walk(s.Body, depth+1)
		case *ast.SelectStmt:
			walk(s.Body, depth+1)
		case *ast.CaseClause:
			for _, stmt := range s.Body {
				walk(stmt, depth)
			}
		case *ast.CommClause:
			for _, stmt := range s.Body {
				walk(stmt, depth)
			}
		}
		return maxDepth
	}
	return walk(body, 0)
}

// estimateCognitive approximates cognitive complexity as one increment
// per nesting-increasing construct plus one per additional nesting
// level it appears at, the structural-shape approximation the teacher
// avoids needing because ARS only tracked cyclomatic; this is our own
// addition grounded in the general cognitive-complexity definition
// (nesting-weighted branching).
func estimateCognitive(body *ast.BlockStmt) int {
	if body == nil {
		return 0
	}
	total := 0
	var walk func(n ast.Stmt, depth int)
	walk = func(n ast.Stmt, depth int) {
		switch s := n.(type) {
		case *ast.BlockStmt:
			for _, stmt := range s.List {
				walk(stmt, depth)
			}
		case *ast.IfStmt:
			total += 1 + depth
			walk(s.Body, depth+1)
			if s.Else != nil {
				total += 1
				walk(s.Else, depth+1)
			}
		case *ast.ForStmt:
			total += 1 + depth
			walk(s.Body, depth+1)
		case *ast.RangeStmt:
			total += 1 + depth
			walk(s.Body, depth+1)
		case *ast.SwitchStmt:
			total += 1 + depth
			walk(s.Body, depth+1)
		case *ast.TypeSwitchStmt:
			total += 1 + depth
			walk(s.Body, depth+1)
		case *ast.SelectStmt:
			total += 1 + depth
			walk(s.Body, depth+1)
		case *ast.CaseClause:
			for _, stmt := range s.Body {
				walk(stmt, depth)
			}
		case *ast.CommClause:
			for _, stmt := range s.Body {
				walk(stmt, depth)
			}
		}
	}
	walk(body, 0)
	return total
}

// errResourceOpeners are selector names whose call result is
// conventionally expected to be paired with a Close, used by
// isResourceHeavy's acquire/release check.
var errResourceOpeners = map[string]bool{
	"Open": true, "OpenFile": true, "Create": true,
	"Dial": true, "DialContext": true,
	"Begin": true, "BeginTx": true,
	"Connect": true, "Listen": true,
}

// countSwallowedErrors walks a function body for `if err != nil { ... }`
// guards whose block neither returns the error, panics, nor calls
// anything that looks like logging, and counts those as swallowed. This
// is a structural heuristic (no data-flow tracking of what "err" binds
// to), the same trade-off ExtractGoCallEdges makes for call resolution.
func countSwallowedErrors(body *ast.BlockStmt) int {
	if body == nil {
		return 0
	}
	count := 0
	ast.Inspect(body, func(n ast.Node) bool {
		ifStmt, ok := n.(*ast.IfStmt)
		if !ok || !isErrNilCheck(ifStmt.Cond) {
			return true
		}
		if swallowsError(ifStmt.Body) {
			count++
		}
		return true
	})
	return count
}

// isErrNilCheck reports whether cond is `<something named err> != nil`.
func isErrNilCheck(cond ast.Expr) bool {
	bin, ok := cond.(*ast.BinaryExpr)
	if !ok || bin.Op != token.NEQ {
		return false
	}
	if _, ok := bin.Y.(*ast.Ident); !ok || bin.Y.(*ast.Ident).Name != "nil" {
		return false
	}
	return isErrName(bin.X)
}

func isErrName(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name == "err" || strings.HasSuffix(e.Name, "Err")
	case *ast.SelectorExpr:
		return e.Sel.Name == "err" || strings.HasSuffix(e.Sel.Name, "Err")
	default:
		return false
	}
}

// swallowsError reports whether a guard block neither propagates,
// panics on, nor logs the error it guards: an empty block, or one whose
// statements are all plain assignments/no-ops.
func swallowsError(block *ast.BlockStmt) bool {
	if block == nil || len(block.List) == 0 {
		return true
	}
	for _, stmt := range block.List {
		switch s := stmt.(type) {
		case *ast.ReturnStmt:
			return false
		case *ast.ExprStmt:
			if call, ok := s.X.(*ast.CallExpr); ok && callLooksLikeLoggingOrPanic(call) {
				return false
			}
		}
	}
	return true
}

func callLooksLikeLoggingOrPanic(call *ast.CallExpr) bool {
	name := calleeName(call.Fun)
	switch name {
	case "panic", "Fatal", "Fatalf", "Fatalln", "Panic", "Panicf", "Panicln":
		return true
	}
	lower := strings.ToLower(qualifiedCalleeName(call.Fun))
	return strings.Contains(lower, "log") || strings.Contains(lower, "error") || strings.Contains(lower, "warn")
}

// qualifiedCalleeName returns a call's full "pkg.Func"/"recv.Method"
// text when expr is a selector, or just the bare name otherwise —
// unlike calleeName, it keeps the package qualifier so a call like
// log.Println reads as containing "log".
func qualifiedCalleeName(expr ast.Expr) string {
	sel, ok := expr.(*ast.SelectorExpr)
	if !ok {
		return calleeName(expr)
	}
	if id, ok := sel.X.(*ast.Ident); ok {
		return id.Name + "." + sel.Sel.Name
	}
	return sel.Sel.Name
}

// isResourceHeavy reports whether a function body calls a conventional
// resource-acquisition function (file/socket/DB-handle open, connection
// dial, transaction begin) without a paired defer-Close anywhere in the
// same body. It does not track which acquired value a given defer
// closes, only that at least one acquisition and at least one
// defer-Close exist together, matching the coarse, single-function
// scope the rest of this scanner's heuristics use.
func isResourceHeavy(body *ast.BlockStmt) bool {
	if body == nil {
		return false
	}
	acquires := false
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		if errResourceOpeners[calleeName(call.Fun)] {
			acquires = true
		}
		return true
	})
	if !acquires {
		return false
	}

	hasDeferredClose := false
	ast.Inspect(body, func(n ast.Node) bool {
		deferStmt, ok := n.(*ast.DeferStmt)
		if !ok {
			return true
		}
		if calleeName(deferStmt.Call.Fun) == "Close" {
			hasDeferredClose = true
		}
		return true
	})
	return acquires && !hasDeferredClose
}
