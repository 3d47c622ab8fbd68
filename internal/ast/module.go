package ast

import "github.com/hashicorp/hcl/v2"

// ModuleDecl is one module definition: a declared template before
// elaboration, or a fully expanded instance once the expander has
// specialized a copy for an instantiation site.
type ModuleDecl struct {
	Name  string
	Attrs *Attributes
	Ports []string
	Items []Item
}

func (*ModuleDecl) isNode() {}

// Clone produces a deep copy of the declaration. Expressions are shared
// between the copies; they are never mutated after construction.
func (m *ModuleDecl) Clone() *ModuleDecl {
	ports := make([]string, len(m.Ports))
	copy(ports, m.Ports)
	return &ModuleDecl{
		Name:  m.Name,
		Attrs: m.Attrs.Clone(),
		Ports: ports,
		Items: CloneItems(m.Items),
	}
}

// AttrSpec is a single attribute annotation on a declaration or
// instantiation.
type AttrSpec struct {
	Name  string
	Value hcl.Expression
}

// Attributes is an ordered attribute list. A nil receiver behaves as an
// empty list for reads.
type Attributes struct {
	Specs []AttrSpec
}

// NewAttributes builds an attribute list from the given specs.
func NewAttributes(specs ...AttrSpec) *Attributes {
	return &Attributes{Specs: specs}
}

// Empty reports whether the list carries no attributes.
func (a *Attributes) Empty() bool {
	return a == nil || len(a.Specs) == 0
}

// Clone copies the attribute list. Cloning nil yields an empty list.
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return NewAttributes()
	}
	specs := make([]AttrSpec, len(a.Specs))
	copy(specs, a.Specs)
	return &Attributes{Specs: specs}
}

// SetOrReplace overwrites this list's contents with a copy of other's.
func (a *Attributes) SetOrReplace(other *Attributes) {
	if other == nil {
		a.Specs = nil
		return
	}
	a.Specs = make([]AttrSpec, len(other.Specs))
	copy(a.Specs, other.Specs)
}
