// Package typecheck implements the semantic checks the elaboration worklist
// runs at its three checkpoints: before expanding an instantiation, before
// expanding a generate construct, and over the whole node once expansion
// reaches a fixed point.
package typecheck

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/diag"
	"github.com/vk/hdlelab/internal/evalconst"
	"github.com/vk/hdlelab/internal/hierid"
	"github.com/vk/hdlelab/internal/resolve"
	"github.com/vk/hdlelab/internal/scope"
)

// Options configures one checker instance for one elaboration call.
type Options struct {
	// Disabled makes every check succeed vacuously.
	Disabled bool

	// WarnUnresolved downgrades unresolved references to warnings. The
	// local validation pass runs with this on, since cross-module names
	// are expected to be unknown while a template stands alone.
	WarnUnresolved bool

	// LocalOnly restricts resolution to the template's own scope.
	LocalOnly bool
}

// Deps binds the checker to the current declaration/elaboration state.
type Deps struct {
	Template  func(name string) (*ast.ModuleDecl, bool)
	HasElab   func(addr hierid.Address) bool
	Navigator *scope.Navigator
	Evaluator *evalconst.Evaluator
	Resolver  *resolve.Resolver
}

// Checker runs pre- and post-expansion semantic checks.
type Checker struct {
	opts Options
	deps Deps
}

// New constructs a checker bound to the given state and mode flags.
func New(opts Options, deps Deps) *Checker {
	return &Checker{opts: opts, deps: deps}
}

// PreExpansionInst validates an instantiation before it is expanded.
func (c *Checker) PreExpansionInst(mi *ast.ModuleInst, frame *evalconst.Frame) hcl.Diagnostics {
	if c.opts.Disabled {
		return nil
	}
	var diags hcl.Diagnostics

	// Instance names become address segments; one outside the segment
	// grammar would alias another address under the same string key.
	if !hierid.ValidName(mi.Name) {
		diags = diags.Append(diag.Error(diag.KindCheckFailed,
			"invalid instance identifier",
			fmt.Sprintf("Instance name %q is not a valid identifier.", mi.Name)))
		return diags
	}

	tmpl, ok := c.deps.Template(mi.Module)
	if !ok {
		if c.opts.LocalOnly {
			if c.opts.WarnUnresolved {
				diags = diags.Append(diag.Warning(diag.KindUnresolved,
					"unresolved module template",
					fmt.Sprintf("Instance %q names template %q, which is not declared.", mi.Name, mi.Module)))
			}
			return diags
		}
		return diags.Append(diag.Error(diag.KindUnresolved,
			"unknown module template",
			fmt.Sprintf("Instance %q names template %q, which is not declared.", mi.Name, mi.Module)))
	}

	params := make(map[string]bool)
	for _, it := range tmpl.Items {
		if pd, ok := it.(*ast.ParamDecl); ok {
			params[pd.Name] = true
		}
	}
	for _, b := range mi.Params {
		if !params[b.Name] {
			diags = diags.Append(diag.Error(diag.KindCheckFailed,
				"unknown parameter",
				fmt.Sprintf("Template %q declares no parameter %q.", mi.Module, b.Name)))
		}
	}
	ports := make(map[string]bool)
	for _, p := range tmpl.Ports {
		ports[p] = true
	}
	for _, b := range mi.Ports {
		if !ports[b.Name] {
			diags = diags.Append(diag.Error(diag.KindCheckFailed,
				"unknown port",
				fmt.Sprintf("Template %q declares no port %q.", mi.Module, b.Name)))
		}
	}

	if c.opts.LocalOnly {
		return diags
	}

	for _, b := range mi.Params {
		diags = append(diags, c.refDiags(b.Value, frame.Has)...)
	}
	addr := c.deps.Resolver.FullID(mi)
	if c.deps.HasElab(addr) {
		diags = diags.Append(diag.Error(diag.KindDuplicateInstance,
			"duplicate instance",
			fmt.Sprintf("An elaborated instance already exists at %q.", addr.String())))
	}
	return diags
}

// PreExpansionGen validates a generate construct's control expressions:
// they must be compile-time constants of the expected type over the
// surrounding scope. Dispatch is exhaustive over the variant set.
func (c *Checker) PreExpansionGen(gc ast.GenConstruct, frame *evalconst.Frame) hcl.Diagnostics {
	if c.opts.Disabled {
		return nil
	}
	switch g := gc.(type) {
	case *ast.GenCase:
		_, diags := c.constValue(g.Selector, frame)
		for _, arm := range g.Arms {
			for _, m := range arm.Matches {
				_, d := c.constValue(m, frame)
				diags = append(diags, d...)
			}
		}
		return diags
	case *ast.GenIf:
		v, diags := c.constValue(g.Cond, frame)
		if v != cty.NilVal {
			if _, err := convert.Convert(v, cty.Bool); err != nil {
				diags = diags.Append(diag.Error(diag.KindNonConstant,
					"generate condition is not boolean",
					fmt.Sprintf("The condition evaluates to %s; a constant boolean is required.", v.Type().FriendlyName())))
			}
		}
		return diags
	case *ast.GenLoop:
		var diags hcl.Diagnostics
		if g.Genvar == "" {
			diags = diags.Append(diag.Error(diag.KindCheckFailed,
				"generate loop without genvar",
				"A loop generate construct requires a genvar to bind each iteration."))
		}
		var bounds [2]cty.Value
		for i, bound := range []hcl.Expression{g.From, g.Below} {
			v, d := c.constValue(bound, frame)
			diags = append(diags, d...)
			if v == cty.NilVal {
				continue
			}
			num, err := convert.Convert(v, cty.Number)
			if err != nil {
				diags = diags.Append(diag.Error(diag.KindNonConstant,
					"generate loop bound is not numeric",
					fmt.Sprintf("The bound evaluates to %s; a constant number is required.", v.Type().FriendlyName())))
				continue
			}
			bounds[i] = num
		}
		if bounds[0] != cty.NilVal && bounds[1] != cty.NilVal && bounds[1].LessThan(bounds[0]).True() {
			diags = diags.Append(diag.Error(diag.KindCheckFailed,
				"generate loop extent is negative",
				fmt.Sprintf("The loop runs from %s up to %s; the upper bound must not be below the lower.",
					bounds[0].AsBigFloat().String(), bounds[1].AsBigFloat().String())))
		}
		return diags
	default:
		panic("typecheck: unhandled generate-construct variant")
	}
}

// constValue evaluates a control expression, reporting unresolved
// references at the severity the mode flags call for.
func (c *Checker) constValue(expr hcl.Expression, frame *evalconst.Frame) (cty.Value, hcl.Diagnostics) {
	diags := c.refDiags(expr, frame.Has)
	if len(diags) > 0 {
		return cty.NilVal, diags
	}
	v, evalDiags := expr.Value(frame.EvalContext())
	if evalDiags.HasErrors() {
		diags = diags.Append(diag.Error(diag.KindNonConstant,
			"generate control is not a compile-time constant",
			evalDiags.Error()))
		return cty.NilVal, diags
	}
	return v, diags
}

// unresolvedName builds one unresolved-reference diagnostic at the severity
// the mode flags call for.
func (c *Checker) unresolvedName(name string) *hcl.Diagnostic {
	detail := fmt.Sprintf("The name %q does not resolve to any declaration in scope.", name)
	if c.opts.WarnUnresolved {
		return diag.Warning(diag.KindUnresolved, "unresolved reference", detail)
	}
	return diag.Error(diag.KindUnresolved, "unresolved reference", detail)
}

// refDiags reports every variable reference in expr that resolves() rejects.
func (c *Checker) refDiags(expr hcl.Expression, resolves func(string) bool) hcl.Diagnostics {
	var diags hcl.Diagnostics
	if expr == nil {
		return nil
	}
	for _, tr := range expr.Variables() {
		if name := tr.RootName(); !resolves(name) {
			diags = diags.Append(c.unresolvedName(name))
		}
	}
	return diags
}
