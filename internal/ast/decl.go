package ast

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Decl is the closed set of compile-time-evaluable declarations. The
// traversal visitor computes each declaration's initial value inline, as the
// node is first visited, and stores it on the node.
type Decl interface {
	Item
	DeclName() string
	Init() hcl.Expression
	Value() (cty.Value, bool)
	SetValue(v cty.Value)
}

// declValue holds a computed initial value. Cloning a declaration copies
// the value by value, so a clone's value is independent of the original.
type declValue struct {
	val cty.Value
	set bool
}

func (d *declValue) Value() (cty.Value, bool) { return d.val, d.set }

func (d *declValue) SetValue(v cty.Value) {
	d.val = v
	d.set = true
}

// GenvarDecl declares a generate-loop iteration variable. It carries no
// initializer; its value is bound per unrolled iteration.
type GenvarDecl struct {
	Name string
	declValue
}

func (*GenvarDecl) isNode() {}
func (*GenvarDecl) isItem() {}

func (d *GenvarDecl) DeclName() string     { return d.Name }
func (d *GenvarDecl) Init() hcl.Expression { return nil }

// IntegerDecl declares an integer variable with an optional constant
// initializer.
type IntegerDecl struct {
	Name     string
	InitExpr hcl.Expression
	declValue
}

func (*IntegerDecl) isNode() {}
func (*IntegerDecl) isItem() {}

func (d *IntegerDecl) DeclName() string     { return d.Name }
func (d *IntegerDecl) Init() hcl.Expression { return d.InitExpr }

// LocalparamDecl declares a non-overridable local constant.
type LocalparamDecl struct {
	Name     string
	InitExpr hcl.Expression
	declValue
}

func (*LocalparamDecl) isNode() {}
func (*LocalparamDecl) isItem() {}

func (d *LocalparamDecl) DeclName() string     { return d.Name }
func (d *LocalparamDecl) Init() hcl.Expression { return d.InitExpr }

// NetDecl declares a net. The initializer, when present, is its constant
// drive value.
type NetDecl struct {
	Name     string
	InitExpr hcl.Expression
	declValue
}

func (*NetDecl) isNode() {}
func (*NetDecl) isItem() {}

func (d *NetDecl) DeclName() string     { return d.Name }
func (d *NetDecl) Init() hcl.Expression { return d.InitExpr }

// ParamDecl declares a module parameter with its default value. The
// expander overrides the stored value in a specialized copy when the
// instantiation binds the parameter.
type ParamDecl struct {
	Name     string
	InitExpr hcl.Expression
	declValue
}

func (*ParamDecl) isNode() {}
func (*ParamDecl) isItem() {}

func (d *ParamDecl) DeclName() string     { return d.Name }
func (d *ParamDecl) Init() hcl.Expression { return d.InitExpr }

// RegDecl declares a register with an optional constant reset value.
type RegDecl struct {
	Name     string
	InitExpr hcl.Expression
	declValue
}

func (*RegDecl) isNode() {}
func (*RegDecl) isItem() {}

func (d *RegDecl) DeclName() string     { return d.Name }
func (d *RegDecl) Init() hcl.Expression { return d.InitExpr }
