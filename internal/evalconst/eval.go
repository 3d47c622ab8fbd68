package evalconst

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/diag"
)

// Evaluator computes and stores initial values for compile-time-evaluable
// declarations and evaluates arbitrary constant expressions.
type Evaluator struct{}

// New creates an Evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

// InitValue computes the declaration's initial value in the given frame,
// stores it on the node and defines the name in the frame. A declaration
// whose value was substituted earlier (a parameter override) keeps the
// substituted value. Declarations without an initializer default to zero.
func (e *Evaluator) InitValue(d ast.Decl, frame *Frame) hcl.Diagnostics {
	if v, ok := d.Value(); ok {
		frame.Define(d.DeclName(), v)
		return nil
	}

	init := d.Init()
	if init == nil {
		d.SetValue(cty.Zero)
		frame.Define(d.DeclName(), cty.Zero)
		return nil
	}

	v, diags := e.Value(init, frame)
	if diags.HasErrors() {
		return diags
	}
	d.SetValue(v)
	frame.Define(d.DeclName(), v)
	return diags
}

// Value evaluates an expression against the frame. Unresolvable references
// are reported as KindUnresolved before evaluation is attempted, so the
// caller can distinguish them from genuine evaluation failures.
func (e *Evaluator) Value(expr hcl.Expression, frame *Frame) (cty.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	for _, tr := range expr.Variables() {
		name := tr.RootName()
		if !frame.Has(name) {
			diags = diags.Append(diag.Error(diag.KindUnresolved,
				"unresolved reference",
				fmt.Sprintf("The name %q does not resolve to any declaration in scope.", name)))
		}
	}
	if diags.HasErrors() {
		return cty.NilVal, diags
	}

	v, evalDiags := expr.Value(frame.EvalContext())
	diags = append(diags, evalDiags...)
	if evalDiags.HasErrors() {
		return cty.NilVal, diags
	}
	return v, diags
}

// SeedFrame builds a fresh frame reflecting the constant names already
// declared in a module body, evaluating any declaration whose value was
// never stored. Nodes are not mutated; the frame is a derived view used
// when appending new items to an existing elaborated instance.
func (e *Evaluator) SeedFrame(md *ast.ModuleDecl) *Frame {
	frame := NewFrame(nil)
	e.seedItems(md.Items, frame)
	return frame
}

func (e *Evaluator) seedItems(items []ast.Item, frame *Frame) {
	for _, it := range items {
		switch n := it.(type) {
		case ast.Decl:
			if v, ok := n.Value(); ok {
				frame.Define(n.DeclName(), v)
				continue
			}
			if init := n.Init(); init != nil {
				if v, diags := e.Value(init, frame); !diags.HasErrors() {
					frame.Define(n.DeclName(), v)
				}
			}
		case ast.GenConstruct:
			if spliced, ok := n.ElaboratedItems(); ok {
				e.seedItems(spliced, frame)
			}
		default:
			// Structural items carry no constant names.
		}
	}
}
