package program

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/hierid"
	"github.com/vk/hdlelab/internal/txstore"
)

// Src returns the root instance's elaborated source, or nil before the root
// has been evaluated.
func (p *Program) Src() *ast.ModuleDecl {
	if p.rootAddr == nil {
		return nil
	}
	md, _ := p.elabs.Get(p.rootAddr.String())
	return md
}

// RootDecl returns the default declaration, the template the design root
// must instantiate.
func (p *Program) RootDecl() (*ast.ModuleDecl, bool) {
	if p.rootDeclName == "" {
		return nil, false
	}
	return p.decls.Get(p.rootDeclName)
}

// Decl looks up a declared template by name.
func (p *Program) Decl(name string) (*ast.ModuleDecl, bool) {
	return p.decls.Get(name)
}

// Decls returns the declared templates in declaration order.
func (p *Program) Decls() []txstore.Entry[*ast.ModuleDecl] {
	return p.decls.Entries()
}

// RootElab returns the root instance's address and elaborated source.
func (p *Program) RootElab() (hierid.Address, *ast.ModuleDecl, bool) {
	if p.rootAddr == nil {
		return hierid.Address{}, nil, false
	}
	md, ok := p.elabs.Get(p.rootAddr.String())
	return *p.rootAddr, md, ok
}

// Elab looks up an elaborated instance by its full hierarchical address.
func (p *Program) Elab(addr hierid.Address) (*ast.ModuleDecl, bool) {
	return p.elabs.Get(addr.String())
}

// Elabs returns every elaborated instance in insertion order.
func (p *Program) Elabs() []txstore.Entry[*ast.ModuleDecl] {
	return p.elabs.Entries()
}

// Log returns a copy of the diagnostics from the most recent Declare or
// Eval call, warnings included.
func (p *Program) Log() hcl.Diagnostics {
	out := make(hcl.Diagnostics, len(p.log))
	copy(out, p.log)
	return out
}

// Error reports whether the most recent call logged an error.
func (p *Program) Error() bool {
	return p.log.HasErrors()
}
