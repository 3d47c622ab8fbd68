// Package flatten collapses and restores module hierarchy boundaries over
// the elaborated tree: inlining absorbs each child instance's body into its
// parent, outlining extracts it back. Both directions are gated by a
// feasibility predicate and neither changes observable checking behavior.
package flatten

import (
	"context"
	"fmt"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/ctxlog"
	"github.com/vk/hdlelab/internal/hierid"
	"github.com/vk/hdlelab/internal/modinfo"
)

// Inliner rewrites elaborated instances in place, finding children through
// hierarchy metadata and resolving them in the elaborated-instance
// container via the lookup function.
type Inliner struct {
	lookup func(addr hierid.Address) (*ast.ModuleDecl, bool)
	info   *modinfo.Info
}

// New creates an inliner over the given container lookup and metadata.
func New(lookup func(hierid.Address) (*ast.ModuleDecl, bool), info *modinfo.Info) *Inliner {
	return &Inliner{lookup: lookup, info: info}
}

// CanInline reports whether an instance is eligible for flattening.
// Generate regions block it: the committed copy of an instance keeps its
// generate constructs unexpanded, so a body containing any generate
// construct cannot be soundly absorbed or re-extracted.
func (l *Inliner) CanInline(md *ast.ModuleDecl) bool {
	ok := true
	ast.Walk(md, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.GenCase, *ast.GenIf, *ast.GenLoop:
			ok = false
		}
		return ok
	})
	return ok
}

// InlineAll flattens the subtree rooted at the instance at addr, children
// before parent, so each absorbed body is itself already flat.
func (l *Inliner) InlineAll(ctx context.Context, md *ast.ModuleDecl, addr hierid.Address) {
	if !l.CanInline(md) {
		return
	}
	for _, c := range l.info.Children(addr, md) {
		childAddr := addr.Join(c.Rel)
		child := l.mustLookup(childAddr)
		l.InlineAll(ctx, child, childAddr)
	}
	l.inlineSource(md, addr)
	l.info.Invalidate(addr)
	ctxlog.From(ctx).Debug("inlined instance", "addr", addr.String())
}

// OutlineAll restores the hierarchy boundaries below addr, parent before
// children: this instance's boundaries come back first, then the restored
// children restore theirs.
func (l *Inliner) OutlineAll(ctx context.Context, md *ast.ModuleDecl, addr hierid.Address) {
	if !l.CanInline(md) {
		return
	}
	l.outlineSource(md)
	l.info.Invalidate(addr)
	ctxlog.From(ctx).Debug("outlined instance", "addr", addr.String())
	for _, c := range l.info.Children(addr, md) {
		childAddr := addr.Join(c.Rel)
		child := l.mustLookup(childAddr)
		l.OutlineAll(ctx, child, childAddr)
	}
}

// inlineSource rewrites the body in place, replacing every instantiation
// item with a scope that absorbs the corresponding child's committed body.
func (l *Inliner) inlineSource(md *ast.ModuleDecl, addr hierid.Address) {
	for i, it := range md.Items {
		mi, ok := it.(*ast.ModuleInst)
		if !ok {
			continue
		}
		child := l.mustLookup(addr.Child(mi.Name))
		md.Items[i] = &ast.InlinedScope{Inst: mi, Body: child}
	}
}

// outlineSource restores every absorbed child to a standalone
// instantiation item.
func (l *Inliner) outlineSource(md *ast.ModuleDecl) {
	for i, it := range md.Items {
		if is, ok := it.(*ast.InlinedScope); ok {
			md.Items[i] = is.Inst
		}
	}
}

// mustLookup resolves a child address in the elaborated-instance container.
// Hierarchy metadata named the child, so a missing entry means the metadata
// and the container have diverged; that is an unrecoverable invariant
// violation, not a user-facing error.
func (l *Inliner) mustLookup(addr hierid.Address) *ast.ModuleDecl {
	md, ok := l.lookup(addr)
	if !ok {
		panic(fmt.Sprintf("flatten: hierarchy metadata names %q but the elaborated-instance container has no such entry", addr.String()))
	}
	return md
}
