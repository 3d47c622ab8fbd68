// Package resolve computes fully-qualified hierarchical identifiers for
// instantiation sites and caches the results. Invalidation drops every
// cached resolution inside a subtree, which is how the transaction manager
// repairs dangling references after a rolled-back edit.
package resolve

import (
	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/hierid"
)

// Resolver caches computed addresses per instantiation node.
type Resolver struct {
	cache map[*ast.ModuleInst]hierid.Address
}

// New creates an empty resolver.
func New() *Resolver {
	return &Resolver{cache: make(map[*ast.ModuleInst]hierid.Address)}
}

// FullID returns the instance's fully-qualified hierarchical identifier:
// the enclosing scope recorded on the node, extended by the instance name.
func (r *Resolver) FullID(mi *ast.ModuleInst) hierid.Address {
	if addr, ok := r.cache[mi]; ok {
		return addr
	}
	var addr hierid.Address
	if mi.Within != nil {
		addr = mi.Within.Child(mi.Name)
	} else {
		addr = hierid.Root(mi.Name)
	}
	r.cache[mi] = addr
	return addr
}

// Invalidate drops cached resolutions for every instantiation node inside
// the given subtree.
func (r *Resolver) Invalidate(root ast.Node) {
	ast.Walk(root, func(n ast.Node) bool {
		if mi, ok := n.(*ast.ModuleInst); ok {
			delete(r.cache, mi)
		}
		return true
	})
}

// Cached reports whether a resolution is cached for the node. Exposed for
// rollback verification.
func (r *Resolver) Cached(mi *ast.ModuleInst) bool {
	_, ok := r.cache[mi]
	return ok
}
