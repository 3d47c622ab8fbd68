// Package ast defines the abstract syntax tree consumed by the elaboration
// engine: module declarations, instantiations, the three generate-construct
// variants, and the compile-time-evaluable declaration kinds.
//
// Every value-bearing position (declaration initializers, binding values,
// generate conditions and bounds, attribute values) holds a raw
// hcl.Expression. Evaluation is deliberately deferred: the engine captures
// the surrounding scope at discovery time and resolves expressions to
// cty.Value only when the constant evaluator or expander needs them.
//
// The node and item sets are closed. Consumers dispatch by exhaustive type
// switch over the concrete kinds; an unhandled kind is a programming error
// and panics.
package ast

// Node is implemented by every AST node.
type Node interface {
	isNode()
}

// Item is a module body item. The set of implementations is sealed.
type Item interface {
	Node
	isItem()
}

// GenConstruct is the closed variant set of compile-time generate
// constructs: GenCase, GenIf and GenLoop.
type GenConstruct interface {
	Item
	isGen()

	// ElaboratedItems returns the spliced expansion and whether the
	// construct has been expanded at all. An expanded construct may
	// legitimately have spliced zero items.
	ElaboratedItems() ([]Item, bool)

	// SetElaborated attaches the expansion produced for this construct.
	SetElaborated(items []Item)
}

// Walk calls fn for root and every descendant reachable from it, including
// in-tree expansion attachments. Returning false from fn prunes the walk
// below that node. Dispatch is exhaustive over the closed node set.
func Walk(root Node, fn func(Node) bool) {
	if root == nil || !fn(root) {
		return
	}
	switch n := root.(type) {
	case *ModuleDecl:
		walkItems(n.Items, fn)
	case *ModuleInst:
		if n.Elaborated != nil {
			Walk(n.Elaborated, fn)
		}
	case *GenCase:
		for _, arm := range n.Arms {
			walkItems(arm.Items, fn)
		}
		walkItems(n.Elaborated, fn)
	case *GenIf:
		walkItems(n.Then, fn)
		walkItems(n.Else, fn)
		walkItems(n.Elaborated, fn)
	case *GenLoop:
		walkItems(n.Body, fn)
		walkItems(n.Elaborated, fn)
	case *GenBlock:
		walkItems(n.Items, fn)
	case *InlinedScope:
		Walk(n.Inst, fn)
		Walk(n.Body, fn)
	case *GenvarDecl, *IntegerDecl, *LocalparamDecl, *NetDecl, *ParamDecl, *RegDecl, *Assign:
		// Leaves.
	default:
		panic("ast: unhandled node kind in Walk")
	}
}

func walkItems(items []Item, fn func(Node) bool) {
	for _, it := range items {
		Walk(it, fn)
	}
}

// Contains reports whether target is root or a descendant of root.
func Contains(root, target Node) bool {
	found := false
	Walk(root, func(n Node) bool {
		if n == target {
			found = true
		}
		return !found
	})
	return found
}
