// Package modinfo derives hierarchy metadata for elaborated instances: the
// child instances declared in a body, with their addresses relative to the
// instance. The metadata is a lazily recomputed view cached per instance
// identifier, so the conservative whole-hierarchy invalidation performed
// after every edit costs one key drop per instance rather than an eager
// rescan.
package modinfo

import (
	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/hierid"
)

// Child describes one child instance: its address relative to the parent
// and the template it instantiates.
type Child struct {
	Rel    hierid.Address
	Module string
}

// Info is the hierarchy-metadata cache.
type Info struct {
	cache map[string][]Child
}

// New creates an empty metadata cache.
func New() *Info {
	return &Info{cache: make(map[string][]Child)}
}

// Children returns the child instances of the elaborated instance at addr
// with body md, computing and caching the list on first use. Instantiation
// sites inside expanded generate splices and unrolled loop blocks are
// included; bodies absorbed by inlining are not, since those children no
// longer form hierarchy boundaries.
func (i *Info) Children(addr hierid.Address, md *ast.ModuleDecl) []Child {
	key := addr.String()
	if cs, ok := i.cache[key]; ok {
		return cs
	}
	var out []Child
	scanChildren(hierid.Address{}, md.Items, &out)
	i.cache[key] = out
	return out
}

func scanChildren(prefix hierid.Address, items []ast.Item, out *[]Child) {
	for _, it := range items {
		switch n := it.(type) {
		case *ast.ModuleInst:
			*out = append(*out, Child{Rel: prefix.Child(n.Name), Module: n.Module})
		case *ast.GenBlock:
			scanChildren(prefix.ChildIndexed(n.Name, n.Index), n.Items, out)
		case ast.GenConstruct:
			if spliced, ok := n.ElaboratedItems(); ok {
				scanChildren(prefix, spliced, out)
			}
		default:
		}
	}
}

// Invalidate drops the cached metadata for one instance.
func (i *Info) Invalidate(addr hierid.Address) {
	delete(i.cache, addr.String())
}

// Cached reports whether metadata is currently cached for addr.
func (i *Info) Cached(addr hierid.Address) bool {
	_, ok := i.cache[addr.String()]
	return ok
}
