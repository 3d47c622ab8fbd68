// Package elab implements the expansion worklist: the fixed-point loop that
// drains instantiation and generate-construct queues, invoking the checker
// and the expander until no new work appears or an error is raised.
//
// An Elaborator is built fresh for every elaboration call with the mode
// flags for that call; nothing is shared between calls except the engine
// state reached through Deps.
package elab

import (
	"context"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/ctxlog"
	"github.com/vk/hdlelab/internal/diag"
	"github.com/vk/hdlelab/internal/evalconst"
	"github.com/vk/hdlelab/internal/expand"
	"github.com/vk/hdlelab/internal/hierid"
	"github.com/vk/hdlelab/internal/resolve"
	"github.com/vk/hdlelab/internal/scope"
	"github.com/vk/hdlelab/internal/typecheck"
)

// Options are the mode flags for one elaboration call.
type Options struct {
	// ExpandInsts enables expansion of instantiations; off, they are only
	// checked.
	ExpandInsts bool

	// ExpandGens enables expansion of generate constructs.
	ExpandGens bool

	// LocalOnly restricts name resolution to the node's own scope.
	LocalOnly bool

	// WarnUnresolved reports unresolved references as warnings instead of
	// errors.
	WarnUnresolved bool

	// CheckerDisabled turns the type checker off entirely.
	CheckerDisabled bool
}

// Local returns the mode used to validate a template standalone at
// declaration time: nothing expands, resolution is local, unresolved
// references warn.
func Local() Options {
	return Options{LocalOnly: true, WarnUnresolved: true}
}

// Full returns the mode used to elaborate items into the design: everything
// expands, resolution is full-scope, unresolved references are errors.
func Full() Options {
	return Options{ExpandInsts: true, ExpandGens: true}
}

// Deps gives the worklist access to engine state. The elaborated-instance
// container is reached only through InsertElab, so insertions stay under
// the transaction manager's checkpoint discipline.
type Deps struct {
	Template   func(name string) (*ast.ModuleDecl, bool)
	HasElab    func(addr hierid.Address) bool
	InsertElab func(addr hierid.Address, md *ast.ModuleDecl) error
	RootAttrs  func() *ast.Attributes

	Resolver  *resolve.Resolver
	Navigator *scope.Navigator
	Evaluator *evalconst.Evaluator
	Expander  *expand.Expander
}

// instWork is a queued instantiation with the scope it was discovered in.
// The frame is captured at discovery time so binding expressions evaluate
// against the names visible at the site.
type instWork struct {
	mi    *ast.ModuleInst
	frame *evalconst.Frame
	scope hierid.Address
}

// genWork is a queued generate construct; the variant tag is the node's
// concrete type.
type genWork struct {
	gc    ast.GenConstruct
	frame *evalconst.Frame
	scope hierid.Address
}

// Elaborator runs one elaboration call. It is also the traversal visitor:
// traverse routes node kinds to the queues or to immediate constant
// evaluation.
type Elaborator struct {
	opts    Options
	deps    Deps
	checker *typecheck.Checker

	instQ []instWork
	genQ  []genWork
	diags hcl.Diagnostics
}

// New builds an elaborator for one call, binding a type checker to the
// current engine state and mode flags.
func New(opts Options, deps Deps) *Elaborator {
	checker := typecheck.New(typecheck.Options{
		Disabled:       opts.CheckerDisabled,
		WarnUnresolved: opts.WarnUnresolved,
		LocalOnly:      opts.LocalOnly,
	}, typecheck.Deps{
		Template:  deps.Template,
		HasElab:   deps.HasElab,
		Navigator: deps.Navigator,
		Evaluator: deps.Evaluator,
		Resolver:  deps.Resolver,
	})
	return &Elaborator{opts: opts, deps: deps, checker: checker}
}

// Elaborate expands node to a fixed point. scp is the hierarchical address
// of the scope node lives in (empty at the design top) and frame holds the
// constant names visible around it. The returned diagnostics accumulate
// every check and evaluation result; an error anywhere makes the error
// state sticky for the remainder of the call.
func (e *Elaborator) Elaborate(ctx context.Context, node ast.Node, scp hierid.Address, frame *evalconst.Frame) hcl.Diagnostics {
	logger := ctxlog.From(ctx)
	if frame == nil {
		frame = evalconst.NewFrame(nil)
	}

	e.instQ, e.genQ, e.diags = nil, nil, nil
	e.traverse(node, scp, frame)

	cycle := 0
	for !e.failed() && (len(e.instQ) > 0 || len(e.genQ) > 0) {
		cycle++
		logger.Debug("drain cycle",
			"cycle", cycle,
			"instantiations", len(e.instQ),
			"generates", len(e.genQ))

		// Items appended while this cycle runs are drained here too; the
		// loop re-reads the queue length on purpose.
		for i := 0; !e.failed() && i < len(e.instQ); i++ {
			e.expandInst(e.instQ[i])
		}
		e.instQ = nil

		// Generate constructs queued in this cycle expand only after the
		// instantiation queue clears. With parameter overrides across
		// sibling instantiations unsupported, the relative order is not
		// observable.
		for i := 0; !e.failed() && i < len(e.genQ); i++ {
			e.expandGen(e.genQ[i])
		}
		e.genQ = nil
	}
	e.instQ, e.genQ = nil, nil

	if !e.failed() {
		e.diags = append(e.diags, e.checker.PostExpansion(node, frame)...)
	}
	if e.failed() {
		logger.Debug("elaboration failed", "errors", len(e.diags.Errs()))
	}
	return e.diags
}

func (e *Elaborator) failed() bool {
	return e.diags.HasErrors()
}

// traverse classifies every descendant by kind with exactly one action per
// kind: instantiations and generate constructs are queued without
// descending into their unexpanded bodies, compile-time-evaluable
// declarations are valued immediately, and everything else is structural
// context.
func (e *Elaborator) traverse(n ast.Node, scp hierid.Address, frame *evalconst.Frame) {
	switch node := n.(type) {
	case *ast.ModuleDecl:
		inner := evalconst.NewFrame(nil)
		for _, it := range node.Items {
			e.traverse(it, scp, inner)
		}
	case *ast.ModuleInst:
		within := scp
		node.Within = &within
		e.instQ = append(e.instQ, instWork{mi: node, frame: frame, scope: scp})
	case *ast.GenCase, *ast.GenIf, *ast.GenLoop:
		e.genQ = append(e.genQ, genWork{gc: n.(ast.GenConstruct), frame: frame, scope: scp})
	case *ast.GenBlock:
		inner := evalconst.NewFrame(frame)
		inner.Define(node.Genvar, node.Value)
		blockScope := scp.ChildIndexed(node.Name, node.Index)
		for _, it := range node.Items {
			e.traverse(it, blockScope, inner)
		}
	case *ast.GenvarDecl, *ast.IntegerDecl, *ast.LocalparamDecl, *ast.NetDecl, *ast.ParamDecl, *ast.RegDecl:
		d := e.deps.Evaluator.InitValue(n.(ast.Decl), frame)
		if e.opts.WarnUnresolved {
			d = diag.Soften(d, diag.KindUnresolved)
		}
		e.diags = append(e.diags, d...)
	case *ast.Assign, *ast.InlinedScope:
		// Structural context only.
	default:
		panic("elab: unhandled node kind in traversal")
	}
}

// expandInst runs the pre-expansion check and, when expansion is enabled,
// attaches a first expanded copy, re-traverses it to discover nested work,
// and commits a second, independent copy to the elaborated-instance
// container under the instance's full hierarchical identifier.
func (e *Elaborator) expandInst(w instWork) {
	e.diags = append(e.diags, e.checker.PreExpansionInst(w.mi, w.frame)...)
	if e.failed() || !e.opts.ExpandInsts {
		return
	}

	addr := e.deps.Resolver.FullID(w.mi)

	first, d := e.deps.Expander.Instantiate(w.mi, w.frame)
	e.diags = append(e.diags, d...)
	if first == nil {
		return
	}
	w.mi.Elaborated = first
	e.traverse(first, addr, evalconst.NewFrame(nil))
	if !e.deps.Navigator.Lost(w.mi) {
		e.deps.Navigator.Invalidate(w.mi)
	}

	second, d := e.deps.Expander.Instantiate(w.mi, w.frame)
	e.diags = append(e.diags, d...)
	if second == nil {
		return
	}
	if w.mi.Attrs.Empty() {
		if root := e.deps.RootAttrs(); root != nil {
			second.Attrs.SetOrReplace(root)
		}
	} else {
		second.Attrs.SetOrReplace(w.mi.Attrs)
	}

	if err := e.deps.InsertElab(addr, second); err != nil {
		e.diags = e.diags.Append(diag.Error(diag.KindDuplicateInstance,
			"duplicate instance", err.Error()))
	}
}

// expandGen runs the pre-expansion check and, when expansion is enabled,
// splices the expansion into the construct, re-traverses it in the
// enclosing scope, and drops the construct's stale scope-navigation cache.
func (e *Elaborator) expandGen(w genWork) {
	e.diags = append(e.diags, e.checker.PreExpansionGen(w.gc, w.frame)...)
	if e.failed() || !e.opts.ExpandGens {
		return
	}

	items, d := e.deps.Expander.Generate(w.gc, w.frame)
	e.diags = append(e.diags, d...)
	if d.HasErrors() {
		return
	}
	w.gc.SetElaborated(items)
	for _, it := range items {
		e.traverse(it, w.scope, w.frame)
	}
	e.deps.Navigator.Invalidate(w.gc)
}
