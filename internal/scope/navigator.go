// Package scope provides the navigator: lazily built name tables for module
// scopes, with invalidation keyed by subtree so the transaction manager can
// drop stale lookup state after a rollback or an in-place expansion.
package scope

import (
	"github.com/vk/hdlelab/internal/ast"
)

// Navigator caches one name table per module scope root. Tables are built
// on first use and rebuilt after invalidation.
type Navigator struct {
	tables map[*ast.ModuleDecl]map[string]ast.Decl
}

// New creates an empty navigator.
func New() *Navigator {
	return &Navigator{tables: make(map[*ast.ModuleDecl]map[string]ast.Decl)}
}

// Table returns the name table for a module scope, building and caching it
// if needed. Expanded generate splices contribute their declarations to the
// enclosing module scope; unexpanded generate bodies, unrolled loop blocks
// and inlined child scopes do not.
func (nv *Navigator) Table(md *ast.ModuleDecl) map[string]ast.Decl {
	if t, ok := nv.tables[md]; ok {
		return t
	}
	t := make(map[string]ast.Decl)
	collectDecls(md.Items, t)
	nv.tables[md] = t
	return t
}

func collectDecls(items []ast.Item, t map[string]ast.Decl) {
	for _, it := range items {
		switch n := it.(type) {
		case ast.Decl:
			if _, dup := t[n.DeclName()]; !dup {
				t[n.DeclName()] = n
			}
		case ast.GenConstruct:
			if spliced, ok := n.ElaboratedItems(); ok {
				collectDecls(spliced, t)
			}
		default:
		}
	}
}

// Invalidate drops every cached table whose scope root contains node, is
// contained in node's subtree, or is node itself.
func (nv *Navigator) Invalidate(node ast.Node) {
	for root := range nv.tables {
		if ast.Node(root) == node || ast.Contains(root, node) || ast.Contains(node, root) {
			delete(nv.tables, root)
		}
	}
}

// Lost reports whether node is unreachable from every cached scope root.
// A lost node has no scope-navigation state left to invalidate.
func (nv *Navigator) Lost(node ast.Node) bool {
	for root := range nv.tables {
		if ast.Node(root) == node || ast.Contains(root, node) {
			return false
		}
	}
	return true
}
