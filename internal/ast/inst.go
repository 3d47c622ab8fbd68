package ast

import (
	"github.com/hashicorp/hcl/v2"

	"github.com/vk/hdlelab/internal/hierid"
)

// Binding is a named argument assignment on an instantiation: a parameter
// override or a port connection.
type Binding struct {
	Name  string
	Value hcl.Expression
}

// ModuleInst is an instantiation site: it names a template, an instance
// identifier and the parameter/port bindings.
//
// Within is an identifier-based back-reference to the enclosing elaborated
// scope, recorded when the traversal discovers the node; the full
// hierarchical identifier of the instance is Within extended by Name.
// Elaborated holds the in-tree expansion attached during elaboration; the
// copy committed to the elaborated-instance container is always a second,
// independent expansion.
type ModuleInst struct {
	Attrs  *Attributes
	Module string
	Name   string
	Params []Binding
	Ports  []Binding

	Within     *hierid.Address
	Elaborated *ModuleDecl
}

func (*ModuleInst) isNode() {}
func (*ModuleInst) isItem() {}
