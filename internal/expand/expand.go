// Package expand produces expanded subtrees: specialized template copies for
// instantiations, and spliced item lists for generate constructs. The
// expander is pure with respect to the engine's containers; it reads the
// template store through a lookup function and never mutates stored trees.
package expand

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/diag"
	"github.com/vk/hdlelab/internal/evalconst"
)

// genBlockName labels unrolled loop iterations in hierarchical identifiers.
const genBlockName = "genblk"

// Expander performs parameter substitution and generate-construct
// expansion.
type Expander struct {
	template func(name string) (*ast.ModuleDecl, bool)
	eval     *evalconst.Evaluator
}

// New creates an expander reading templates through the given lookup.
func New(template func(string) (*ast.ModuleDecl, bool), eval *evalconst.Evaluator) *Expander {
	return &Expander{template: template, eval: eval}
}

// Instantiate clones the instantiation's template and substitutes its
// parameter bindings, each evaluated in the instantiation-site frame. Every
// call produces an independent copy.
func (e *Expander) Instantiate(mi *ast.ModuleInst, frame *evalconst.Frame) (*ast.ModuleDecl, hcl.Diagnostics) {
	tmpl, ok := e.template(mi.Module)
	if !ok {
		return nil, hcl.Diagnostics{diag.Error(diag.KindUnresolved,
			"unknown module template",
			fmt.Sprintf("Cannot expand instance %q: template %q is not declared.", mi.Name, mi.Module))}
	}

	inst := tmpl.Clone()
	var diags hcl.Diagnostics
	for _, b := range mi.Params {
		v, d := e.eval.Value(b.Value, frame)
		diags = append(diags, d...)
		if d.HasErrors() {
			continue
		}
		for _, it := range inst.Items {
			if pd, ok := it.(*ast.ParamDecl); ok && pd.Name == b.Name {
				pd.SetValue(v)
				break
			}
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}
	return inst, diags
}

// Generate expands a generate construct in the given frame: the active
// case arm, the taken conditional branch, or one scoped block per loop
// iteration. The returned items are clones, ready to be spliced into the
// construct's parent scope. Dispatch is exhaustive over the variant set.
func (e *Expander) Generate(gc ast.GenConstruct, frame *evalconst.Frame) ([]ast.Item, hcl.Diagnostics) {
	switch g := gc.(type) {
	case *ast.GenCase:
		return e.generateCase(g, frame)
	case *ast.GenIf:
		return e.generateIf(g, frame)
	case *ast.GenLoop:
		return e.generateLoop(g, frame)
	default:
		panic("expand: unhandled generate-construct variant")
	}
}

func (e *Expander) generateIf(g *ast.GenIf, frame *evalconst.Frame) ([]ast.Item, hcl.Diagnostics) {
	v, diags := e.eval.Value(g.Cond, frame)
	if diags.HasErrors() {
		return nil, diags
	}
	b, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return nil, diags.Append(diag.Error(diag.KindNonConstant,
			"generate condition is not boolean",
			err.Error()))
	}
	if b.True() {
		return ast.CloneItems(g.Then), diags
	}
	return ast.CloneItems(g.Else), diags
}

func (e *Expander) generateCase(g *ast.GenCase, frame *evalconst.Frame) ([]ast.Item, hcl.Diagnostics) {
	sel, diags := e.eval.Value(g.Selector, frame)
	if diags.HasErrors() {
		return nil, diags
	}

	var deflt *ast.GenCaseArm
	for i := range g.Arms {
		arm := &g.Arms[i]
		if arm.Matches == nil {
			deflt = arm
			continue
		}
		for _, m := range arm.Matches {
			mv, d := e.eval.Value(m, frame)
			diags = append(diags, d...)
			if d.HasErrors() {
				return nil, diags
			}
			if sel.RawEquals(mv) {
				return ast.CloneItems(arm.Items), diags
			}
		}
	}
	if deflt != nil {
		return ast.CloneItems(deflt.Items), diags
	}
	return nil, diags
}

func (e *Expander) generateLoop(g *ast.GenLoop, frame *evalconst.Frame) ([]ast.Item, hcl.Diagnostics) {
	from, diags := e.loopBound(g.From, frame)
	if diags.HasErrors() {
		return nil, diags
	}
	below, d := e.loopBound(g.Below, frame)
	diags = append(diags, d...)
	if d.HasErrors() {
		return nil, diags
	}

	var out []ast.Item
	for i := from; i < below; i++ {
		out = append(out, &ast.GenBlock{
			Name:   genBlockName,
			Index:  int(i),
			Genvar: g.Genvar,
			Value:  cty.NumberIntVal(i),
			Items:  ast.CloneItems(g.Body),
		})
	}
	return out, diags
}

func (e *Expander) loopBound(expr hcl.Expression, frame *evalconst.Frame) (int64, hcl.Diagnostics) {
	v, diags := e.eval.Value(expr, frame)
	if diags.HasErrors() {
		return 0, diags
	}
	num, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, diags.Append(diag.Error(diag.KindNonConstant,
			"generate loop bound is not numeric",
			err.Error()))
	}
	n, _ := num.AsBigFloat().Int64()
	return n, diags
}
