package callgraph

import "github.com/ingo/debtmap-go/pkg/model"

// ExternalReference records a call site that targets a function declared
// in a different module than its caller (§4.4 phase 5).
type ExternalReference struct {
	Caller     model.FunctionId
	TargetName string // the referenced function's qualified name
	TargetFile string // the file declaring the referenced function, if known
}

// PublicDecl records a public-API function declaration discovered while
// scanning a module (§4.4 phase 5: "record public-API declarations").
type PublicDecl struct {
	ID model.FunctionId
}

// CrossModuleResolver accumulates phase-5 facts and resolves external
// references into cross-module edges, collecting the public-API set.
type CrossModuleResolver struct {
	publicByNameFile map[string][]model.FunctionId // TargetFile -> candidates
	refs             []ExternalReference
}

// NewCrossModuleResolver creates an empty cross-module resolver.
func NewCrossModuleResolver() *CrossModuleResolver {
	return &CrossModuleResolver{publicByNameFile: make(map[string][]model.FunctionId)}
}

// RecordPublicDecl registers a public-API declaration.
func (r *CrossModuleResolver) RecordPublicDecl(d PublicDecl) {
	r.publicByNameFile[d.ID.FilePath] = append(r.publicByNameFile[d.ID.FilePath], d.ID)
}

// RecordReference registers an external reference awaiting resolution.
func (r *CrossModuleResolver) RecordReference(ref ExternalReference) {
	r.refs = append(r.refs, ref)
}

// Resolve adds CrossModule edges for every external reference whose
// target name matches a public declaration in the named target file, and
// marks every recorded public declaration in the graph's public-API set
// (§4.4 phase 5).
func (r *CrossModuleResolver) Resolve(g *Graph) {
	for _, decls := range r.publicByNameFile {
		for _, d := range decls {
			g.MarkPublicAPI(d)
		}
	}

	for _, ref := range r.refs {
		for _, candidate := range r.publicByNameFile[ref.TargetFile] {
			if candidate.Name == ref.TargetName {
				g.AddEdge(ref.Caller, candidate, model.EdgeCrossModule)
			}
		}
	}
}
