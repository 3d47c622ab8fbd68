package typecheck

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/diag"
	"github.com/vk/hdlelab/internal/evalconst"
)

// nameScope is a resolution chain for the post-expansion walk. Module
// boundaries start a fresh chain; generate blocks chain to their parent.
type nameScope struct {
	has    func(string) bool
	parent *nameScope
}

func (sc *nameScope) resolves(name string) bool {
	for cur := sc; cur != nil; cur = cur.parent {
		if cur.has != nil && cur.has(name) {
			return true
		}
	}
	return false
}

// PostExpansion checks the entire node after expansion reached a fixed
// point: every variable reference must resolve, and no scope may declare
// the same name twice. outer supplies the names visible around the node,
// e.g. the root instance's constants when an item is appended to it.
func (c *Checker) PostExpansion(n ast.Node, outer *evalconst.Frame) hcl.Diagnostics {
	if c.opts.Disabled {
		return nil
	}
	var diags hcl.Diagnostics
	sc := &nameScope{has: func(name string) bool { return outer != nil && outer.Has(name) }}
	c.checkNode(n, sc, &diags)
	return diags
}

func (c *Checker) checkNode(n ast.Node, sc *nameScope, diags *hcl.Diagnostics) {
	switch node := n.(type) {
	case *ast.ModuleDecl:
		c.checkModule(node, diags)
	case *ast.ModuleInst:
		for _, b := range node.Params {
			*diags = append(*diags, c.refDiags(b.Value, sc.resolves)...)
		}
		for _, b := range node.Ports {
			*diags = append(*diags, c.refDiags(b.Value, sc.resolves)...)
		}
		if node.Elaborated != nil {
			c.checkModule(node.Elaborated, diags)
		}
	case *ast.GenCase:
		*diags = append(*diags, c.refDiags(node.Selector, sc.resolves)...)
		for _, arm := range node.Arms {
			for _, m := range arm.Matches {
				*diags = append(*diags, c.refDiags(m, sc.resolves)...)
			}
		}
		c.checkSplice(node, sc, diags)
	case *ast.GenIf:
		*diags = append(*diags, c.refDiags(node.Cond, sc.resolves)...)
		c.checkSplice(node, sc, diags)
	case *ast.GenLoop:
		*diags = append(*diags, c.refDiags(node.From, sc.resolves)...)
		*diags = append(*diags, c.refDiags(node.Below, sc.resolves)...)
		c.checkSplice(node, sc, diags)
	case *ast.GenBlock:
		local := declNames(node.Items)
		local[node.Genvar] = true
		inner := &nameScope{has: func(name string) bool { return local[name] }, parent: sc}
		for _, it := range node.Items {
			c.checkNode(it, inner, diags)
		}
	case ast.Decl:
		*diags = append(*diags, c.refDiags(node.Init(), sc.resolves)...)
	case *ast.Assign:
		if !sc.resolves(node.LHS) {
			*diags = append(*diags, c.unresolvedName(node.LHS))
		}
		*diags = append(*diags, c.refDiags(node.RHS, sc.resolves)...)
	case *ast.InlinedScope:
		for _, b := range node.Inst.Ports {
			*diags = append(*diags, c.refDiags(b.Value, sc.resolves)...)
		}
		c.checkModule(node.Body, diags)
	default:
		panic("typecheck: unhandled node kind in post-expansion check")
	}
}

// checkSplice descends into an expanded construct's spliced items, which
// live in the enclosing scope. Unexpanded bodies are not checked; their
// declarations are not in scope until expansion.
func (c *Checker) checkSplice(gc ast.GenConstruct, sc *nameScope, diags *hcl.Diagnostics) {
	spliced, ok := gc.ElaboratedItems()
	if !ok {
		return
	}
	for _, it := range spliced {
		c.checkNode(it, sc, diags)
	}
}

// checkModule starts a fresh resolution chain for a module body: its own
// declarations (via the navigator's scope table) plus its ports.
func (c *Checker) checkModule(md *ast.ModuleDecl, diags *hcl.Diagnostics) {
	table := c.deps.Navigator.Table(md)
	ports := make(map[string]bool, len(md.Ports))
	for _, p := range md.Ports {
		ports[p] = true
	}
	sc := &nameScope{has: func(name string) bool {
		if _, ok := table[name]; ok {
			return true
		}
		return ports[name]
	}}

	c.checkDuplicates(md, diags)
	for _, it := range md.Items {
		c.checkNode(it, sc, diags)
	}
}

// checkDuplicates flags names declared more than once in one module scope,
// counting declarations spliced in by expanded generate constructs.
func (c *Checker) checkDuplicates(md *ast.ModuleDecl, diags *hcl.Diagnostics) {
	seen := make(map[string]int)
	countDecls(md.Items, seen)
	for name, n := range seen {
		if n > 1 {
			*diags = append(*diags, diag.Error(diag.KindCheckFailed,
				"duplicate declaration in scope",
				fmt.Sprintf("The name %q is declared %d times in module %q.", name, n, md.Name)))
		}
	}
}

func countDecls(items []ast.Item, seen map[string]int) {
	for _, it := range items {
		switch node := it.(type) {
		case ast.Decl:
			seen[node.DeclName()]++
		case ast.GenConstruct:
			if spliced, ok := node.ElaboratedItems(); ok {
				countDecls(spliced, seen)
			}
		default:
		}
	}
}

func declNames(items []ast.Item) map[string]bool {
	out := make(map[string]bool)
	seen := make(map[string]int)
	countDecls(items, seen)
	for name := range seen {
		out[name] = true
	}
	return out
}
