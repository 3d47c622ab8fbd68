package program

import (
	"context"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/flatten"
	"github.com/vk/hdlelab/internal/hierid"
)

// InlineAll rewrites the root instance's source into its fully inlined
// form, folding every descendant's body in place of its instantiation.
// A no-op before the root exists or when the design is not inlinable.
func (p *Program) InlineAll(ctx context.Context) {
	if p.rootAddr == nil {
		return
	}
	root, _ := p.elabs.Get(p.rootAddr.String())
	p.inliner().InlineAll(ctx, root, *p.rootAddr)
}

// OutlineAll undoes InlineAll, restoring the per-instance source form.
func (p *Program) OutlineAll(ctx context.Context) {
	if p.rootAddr == nil {
		return
	}
	root, _ := p.elabs.Get(p.rootAddr.String())
	p.inliner().OutlineAll(ctx, root, *p.rootAddr)
}

func (p *Program) inliner() *flatten.Inliner {
	return flatten.New(func(addr hierid.Address) (*ast.ModuleDecl, bool) {
		return p.elabs.Get(addr.String())
	}, p.info)
}
