// Package program is the engine facade: it owns the template and
// elaborated-instance containers, wraps every externally visible mutation
// in checkpoint/commit/undo, and repairs cross-reference caches when a
// mutation rolls back. After any failed Declare or Eval the containers and
// the AST graph are exactly as they were before the call; no failure is
// fatal to the engine itself.
//
// The engine is single-threaded: no entry point may be invoked again before
// a prior call on the same Program returns.
package program

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/ctxlog"
	"github.com/vk/hdlelab/internal/diag"
	"github.com/vk/hdlelab/internal/elab"
	"github.com/vk/hdlelab/internal/evalconst"
	"github.com/vk/hdlelab/internal/expand"
	"github.com/vk/hdlelab/internal/hierid"
	"github.com/vk/hdlelab/internal/modinfo"
	"github.com/vk/hdlelab/internal/resolve"
	"github.com/vk/hdlelab/internal/scope"
	"github.com/vk/hdlelab/internal/txstore"
)

// Program holds the declared templates, the elaborated design and the
// collaborators shared across elaboration calls.
type Program struct {
	decls *txstore.Store[*ast.ModuleDecl]
	elabs *txstore.Store[*ast.ModuleDecl]

	res  *resolve.Resolver
	nav  *scope.Navigator
	info *modinfo.Info
	eval *evalconst.Evaluator
	exp  *expand.Expander

	checkerOff bool

	// rootDeclName is the default declaration reference: the first
	// template ever declared. The design root must instantiate it.
	rootDeclName string
	rootInst     *ast.ModuleInst
	rootAddr     *hierid.Address

	log hcl.Diagnostics
}

// New creates an empty program with the type checker enabled.
func New() *Program {
	p := &Program{
		decls: txstore.New[*ast.ModuleDecl](),
		elabs: txstore.New[*ast.ModuleDecl](),
		res:   resolve.New(),
		nav:   scope.New(),
		info:  modinfo.New(),
		eval:  evalconst.New(),
	}
	p.exp = expand.New(p.decls.Get, p.eval)
	return p
}

// NewWithTemplate creates a program, declares md and instantiates it as the
// design root. Failures accumulate in the log.
func NewWithTemplate(ctx context.Context, md *ast.ModuleDecl) *Program {
	p := New()
	_ = p.DeclareAndInstantiate(ctx, md)
	return p
}

// NewWithInstance creates a program, declares md and evaluates mi.
func NewWithInstance(ctx context.Context, md *ast.ModuleDecl, mi *ast.ModuleInst) *Program {
	p := New()
	if err := p.Declare(ctx, md); err != nil {
		return p
	}
	_ = p.Eval(ctx, mi)
	return p
}

// SetTypecheck enables or disables the type checker for subsequent calls.
// Disabling it is a diagnostic/legacy mode; every check passes vacuously.
func (p *Program) SetTypecheck(on bool) *Program {
	p.checkerOff = !on
	return p
}

// Declare registers a module template. A template with no attributes
// inherits a copy of the default declaration's attributes. The template is
// validated standalone in local mode; on a duplicate identifier or a failed
// check nothing is inserted and the template is discarded.
func (p *Program) Declare(ctx context.Context, md *ast.ModuleDecl) error {
	logger := ctxlog.From(ctx)
	p.log = nil

	if !hierid.ValidName(md.Name) {
		p.log = p.log.Append(diag.Error(diag.KindCheckFailed,
			"invalid module identifier",
			fmt.Sprintf("Module name %q is not a valid identifier.", md.Name)))
		return p.log
	}

	if md.Attrs.Empty() && p.rootDeclName != "" {
		if rd, ok := p.decls.Get(p.rootDeclName); ok {
			md.Attrs = rd.Attrs.Clone()
		}
	}

	el := elab.New(p.options(elab.Local()), p.elabDeps())
	p.log = append(p.log, el.Elaborate(ctx, md, hierid.Address{}, nil)...)

	if p.decls.Has(md.Name) {
		p.log = p.log.Append(diag.Error(diag.KindDuplicateDecl,
			"duplicate module declaration",
			fmt.Sprintf("A previous declaration already exists for module %q.", md.Name)))
	}
	if p.log.HasErrors() {
		logger.Warn("template declaration failed", "module", md.Name)
		p.discard(md)
		return p.log
	}

	p.decls.Checkpoint()
	if err := p.decls.Insert(md.Name, md); err != nil {
		// Unreachable: the duplicate check above already passed.
		p.decls.Undo()
		p.log = p.log.Append(diag.Error(diag.KindDuplicateDecl, "duplicate module declaration", err.Error()))
		p.discard(md)
		return p.log
	}
	p.decls.Commit()
	if p.decls.Len() == 1 {
		p.rootDeclName = md.Name
	}
	logger.Debug("declared template", "module", md.Name)
	return nil
}

// DeclareAndInstantiate declares md and, on success, evaluates a trivial
// instantiation of it: the lower-cased template identifier as the instance
// name, with no bindings.
func (p *Program) DeclareAndInstantiate(ctx context.Context, md *ast.ModuleDecl) error {
	if err := p.Declare(ctx, md); err != nil {
		return err
	}
	mi := &ast.ModuleInst{
		Attrs:  ast.NewAttributes(),
		Module: md.Name,
		Name:   strings.ToLower(md.Name),
	}
	return p.Eval(ctx, mi)
}

// Eval elaborates an item: the first evaluated item must instantiate the
// design root; every later item is an incremental addition to it.
func (p *Program) Eval(ctx context.Context, item ast.Item) error {
	p.log = nil
	if p.elabs.Len() == 0 {
		return p.evalRoot(ctx, item)
	}
	return p.evalItem(ctx, item)
}

// evalRoot instantiates the design root. The item must be an instantiation
// of the default declaration; anything else fails without mutating state.
func (p *Program) evalRoot(ctx context.Context, item ast.Item) error {
	logger := ctxlog.From(ctx)
	p.elabs.Checkpoint()

	inst, ok := item.(*ast.ModuleInst)
	switch {
	case !ok || p.rootDeclName == "":
		p.log = p.log.Append(diag.Error(diag.KindNoRoot,
			"no root instantiation",
			"Cannot evaluate code without first instantiating the root module."))
	case inst.Module != p.rootDeclName:
		p.log = p.log.Append(diag.Error(diag.KindRootMismatch,
			"root instantiation mismatch",
			fmt.Sprintf("The root must instantiate template %q, not %q.", p.rootDeclName, inst.Module)))
	default:
		p.elaborateItem(ctx, item)
	}

	if p.log.HasErrors() {
		logger.Warn("root instantiation failed")
		p.rollbackElabs()
		p.discard(item)
		return p.log
	}
	p.elabs.Commit()

	p.rootInst = inst
	if first, ok := p.elabs.First(); ok {
		addr := hierid.MustParse(first.Key)
		p.rootAddr = &addr
	}
	logger.Debug("instantiated design root", "addr", p.rootAddr.String())
	return nil
}

// evalItem appends an item to the root instance and elaborates it. On
// failure the append is undone exactly: the checkpoint rolls back, caches
// pointing at the discarded item are dropped and the root's statement list
// returns to its prior length.
func (p *Program) evalItem(ctx context.Context, item ast.Item) error {
	logger := ctxlog.From(ctx)
	src, _ := p.elabs.Get(p.rootAddr.String())
	// Seed before appending: the new item sees every prior declaration but
	// never itself.
	frame := p.eval.SeedFrame(src)
	src.Items = append(src.Items, item)

	p.elabs.Checkpoint()
	el := elab.New(p.options(elab.Full()), p.elabDeps())
	p.log = append(p.log, el.Elaborate(ctx, item, *p.rootAddr, frame)...)

	if p.log.HasErrors() {
		logger.Warn("incremental eval failed; rolling back")
		p.rollbackElabs()
		p.res.Invalidate(src.Items[len(src.Items)-1])
		p.nav.Invalidate(src)
		src.Items = src.Items[:len(src.Items)-1]
	} else {
		p.elabs.Commit()
	}

	// The edit's blast radius is not tracked precisely; hierarchy metadata
	// for every elaborated instance is invalidated regardless of outcome.
	for _, key := range p.elabs.Keys() {
		p.info.Invalidate(hierid.MustParse(key))
	}

	if p.log.HasErrors() {
		return p.log
	}
	return nil
}

// elaborateItem runs the worklist in full mode over one item at root scope.
func (p *Program) elaborateItem(ctx context.Context, item ast.Item) {
	el := elab.New(p.options(elab.Full()), p.elabDeps())
	p.log = append(p.log, el.Elaborate(ctx, item, hierid.Address{}, nil)...)
}

// rollbackElabs undoes the active checkpoint and scrubs resolver and
// navigator state for every evicted instance, restoring the invariant that
// nothing committed reaches a released node.
func (p *Program) rollbackElabs() {
	for _, evicted := range p.elabs.Undo() {
		p.res.Invalidate(evicted.Val)
		p.nav.Invalidate(evicted.Val)
	}
}

// discard releases a node the engine owns after a failed call, dropping
// every cache entry that points into it.
func (p *Program) discard(n ast.Node) {
	p.res.Invalidate(n)
	p.nav.Invalidate(n)
}

func (p *Program) options(base elab.Options) elab.Options {
	base.CheckerDisabled = p.checkerOff
	return base
}

func (p *Program) elabDeps() elab.Deps {
	return elab.Deps{
		Template: p.decls.Get,
		HasElab: func(addr hierid.Address) bool {
			return p.elabs.Has(addr.String())
		},
		InsertElab: func(addr hierid.Address, md *ast.ModuleDecl) error {
			return p.elabs.Insert(addr.String(), md)
		},
		RootAttrs: func() *ast.Attributes {
			if p.rootInst == nil {
				return nil
			}
			return p.rootInst.Attrs
		},
		Resolver:  p.res,
		Navigator: p.nav,
		Evaluator: p.eval,
		Expander:  p.exp,
	}
}
