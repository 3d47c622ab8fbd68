package program_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/diag"
	"github.com/vk/hdlelab/internal/hierid"
	"github.com/vk/hdlelab/internal/program"
	"github.com/vk/hdlelab/internal/testutil"
)

func TestDeclareDuplicateKeepsFirstTemplate(t *testing.T) {
	ctx := context.Background()
	p := program.New()

	first := testutil.Template("Main", testutil.Param(t, "width", "8"))
	require.NoError(t, p.Declare(ctx, first))

	err := p.Declare(ctx, testutil.Template("Main"))
	require.Error(t, err)
	assert.True(t, diag.HasKind(p.Log(), diag.KindDuplicateDecl))

	require.Len(t, p.Decls(), 1)
	kept, ok := p.Decl("Main")
	require.True(t, ok)
	assert.Same(t, first, kept)
}

func TestDeclareRejectsDottedModuleName(t *testing.T) {
	ctx := context.Background()
	p := program.New()

	err := p.Declare(ctx, testutil.Template("Top.Sub"))
	require.Error(t, err)
	assert.True(t, diag.HasKind(p.Log(), diag.KindCheckFailed))
	assert.Empty(t, p.Decls())
}

func TestDeclareToleratesForwardReferences(t *testing.T) {
	ctx := context.Background()
	p := program.New()

	md := testutil.Template("Main", testutil.Inst("NotYetDeclared", "u1"))
	require.NoError(t, p.Declare(ctx, md))

	assert.False(t, p.Error())
	assert.NotEmpty(t, p.Log(), "the unknown template is reported as a warning")
}

func TestDeclareInheritsRootAttributes(t *testing.T) {
	ctx := context.Background()
	p := program.New()

	root := testutil.Template("Main")
	root.Attrs = ast.NewAttributes(ast.AttrSpec{Name: "target", Value: testutil.Expr(t, `"sw"`)})
	require.NoError(t, p.Declare(ctx, root))

	sub := testutil.Template("Sub")
	require.NoError(t, p.Declare(ctx, sub))
	require.Len(t, sub.Attrs.Specs, 1)
	assert.Equal(t, "target", sub.Attrs.Specs[0].Name)
	assert.NotSame(t, root.Attrs, sub.Attrs)

	// Explicit attributes are never overwritten.
	tagged := testutil.Template("Tagged")
	tagged.Attrs = ast.NewAttributes(ast.AttrSpec{Name: "other", Value: testutil.Expr(t, "1")})
	require.NoError(t, p.Declare(ctx, tagged))
	assert.Equal(t, "other", tagged.Attrs.Specs[0].Name)
}

func TestEvalBeforeDeclareFails(t *testing.T) {
	ctx := context.Background()
	p := program.New()

	err := p.Eval(ctx, testutil.Inst("Main", "main"))
	require.Error(t, err)
	assert.True(t, diag.HasKind(p.Log(), diag.KindNoRoot))
	assert.Empty(t, p.Elabs())
	assert.Nil(t, p.Src())
}

func TestEvalRootRejectsNonInstantiationItem(t *testing.T) {
	ctx := context.Background()
	p := program.New()
	require.NoError(t, p.Declare(ctx, testutil.Template("Main")))

	err := p.Eval(ctx, testutil.Localparam(t, "w", "8"))
	require.Error(t, err)
	assert.True(t, diag.HasKind(p.Log(), diag.KindNoRoot))
	assert.Empty(t, p.Elabs())
}

func TestEvalRootRejectsTemplateMismatch(t *testing.T) {
	ctx := context.Background()
	p := program.New()
	require.NoError(t, p.Declare(ctx, testutil.Template("Main")))
	require.NoError(t, p.Declare(ctx, testutil.Template("Other")))

	err := p.Eval(ctx, testutil.Inst("Other", "main"))
	require.Error(t, err)
	assert.True(t, diag.HasKind(p.Log(), diag.KindRootMismatch))
	assert.Empty(t, p.Elabs())

	// The root slot stays open for the correct instantiation.
	require.NoError(t, p.Eval(ctx, testutil.Inst("Main", "main")))
	addr, _, ok := p.RootElab()
	require.True(t, ok)
	assert.Equal(t, "main", addr.String())
}

func TestDeclareAndInstantiate(t *testing.T) {
	ctx := context.Background()
	p := program.New()

	md := testutil.Template("Main", testutil.Param(t, "width", "8"))
	require.NoError(t, p.DeclareAndInstantiate(ctx, md))

	addr, src, ok := p.RootElab()
	require.True(t, ok)
	assert.Equal(t, "main", addr.String(), "the instance name is the lower-cased template identifier")
	require.NotNil(t, src)
	assert.Len(t, p.Elabs(), 1)
	assert.Same(t, src, p.Src())
}

func TestEvalItemExtendsRoot(t *testing.T) {
	ctx := context.Background()
	p := program.New()
	require.NoError(t, p.DeclareAndInstantiate(ctx, testutil.Template("Main", testutil.Localparam(t, "w", "8"))))
	require.NoError(t, p.Declare(ctx, testutil.Template("Leaf")))

	// A declaration referencing an existing root constant.
	require.NoError(t, p.Eval(ctx, testutil.Localparam(t, "double", "w * 2")))
	require.Len(t, p.Src().Items, 2)

	d := p.Src().Items[1].(*ast.LocalparamDecl)
	v, ok := d.Value()
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(16)), v.GoString())

	// An instantiation elaborated under the root scope.
	require.NoError(t, p.Eval(ctx, testutil.Inst("Leaf", "u1")))
	require.Len(t, p.Src().Items, 3)
	_, ok = p.Elab(mustAddr(t, "main.u1"))
	assert.True(t, ok)
}

func TestEvalItemScopeExcludesItself(t *testing.T) {
	ctx := context.Background()
	p := program.New()
	require.NoError(t, p.DeclareAndInstantiate(ctx, testutil.Template("Main", testutil.Localparam(t, "w", "8"))))

	// The appended item resolves names against the declarations that
	// precede it, not against its own partially evaluated self.
	item := testutil.Localparam(t, "w", "w * 2")
	require.NoError(t, p.Eval(ctx, item))

	v, ok := item.Value()
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(16)), v.GoString())
}

func TestFailedEvalItemRollsBackExactly(t *testing.T) {
	ctx := context.Background()
	p := program.New()
	require.NoError(t, p.DeclareAndInstantiate(ctx, testutil.Template("Main", testutil.Localparam(t, "w", "8"))))
	require.NoError(t, p.Declare(ctx, testutil.Template("Leaf")))

	before := len(p.Src().Items)
	elabsBefore := len(p.Elabs())

	bad := testutil.Inst("Leaf", "ok")
	bad.Params = []ast.Binding{{Name: "nosuch", Value: testutil.Expr(t, "1")}}
	require.Error(t, p.Eval(ctx, bad))

	assert.Len(t, p.Src().Items, before, "the failed item is removed from the root body")
	assert.Len(t, p.Elabs(), elabsBefore)

	// Re-evaluating the same instance name succeeds: the rollback left no
	// dangling cache or container state at main.ok.
	require.NoError(t, p.Eval(ctx, testutil.Inst("Leaf", "ok")))
	assert.Len(t, p.Src().Items, before+1)
	_, ok := p.Elab(mustAddr(t, "main.ok"))
	assert.True(t, ok)
}

func TestGuardedSelfInstantiation(t *testing.T) {
	ctx := context.Background()
	p := program.New()

	rec := testutil.Inst("Main", "rec")
	rec.Params = []ast.Binding{{Name: "depth", Value: testutil.Expr(t, "depth - 1")}}
	md := testutil.Template("Main",
		testutil.Param(t, "depth", "0"),
		&ast.RegDecl{Name: "state", InitExpr: testutil.Expr(t, "0")},
		&ast.GenIf{
			Cond: testutil.Expr(t, "depth > 0"),
			Then: []ast.Item{rec},
		},
	)

	require.NoError(t, p.DeclareAndInstantiate(ctx, md))
	assert.Len(t, p.Elabs(), 1, "the false guard stops the recursion before it starts")
}

func TestBoundedRecursionUnrolls(t *testing.T) {
	ctx := context.Background()
	p := program.New()

	rec := testutil.Inst("Count", "next")
	rec.Params = []ast.Binding{{Name: "depth", Value: testutil.Expr(t, "depth - 1")}}
	md := testutil.Template("Count",
		testutil.Param(t, "depth", "2"),
		&ast.GenIf{
			Cond: testutil.Expr(t, "depth > 0"),
			Then: []ast.Item{rec},
		},
	)

	require.NoError(t, p.DeclareAndInstantiate(ctx, md))

	keys := make([]string, 0, 3)
	for _, en := range p.Elabs() {
		keys = append(keys, en.Key)
	}
	assert.Equal(t, []string{"count", "count.next", "count.next.next"}, keys)
}

func TestTypecheckDisabled(t *testing.T) {
	ctx := context.Background()
	p := program.New().SetTypecheck(false)

	require.NoError(t, p.DeclareAndInstantiate(ctx, testutil.Template("Main")))
	require.NoError(t, p.Declare(ctx, testutil.Template("Adder", testutil.Param(t, "width", "8"))))

	// An unknown parameter binding would be rejected with the checker on.
	mi := testutil.Inst("Adder", "u1")
	mi.Params = []ast.Binding{{Name: "nosuch", Value: testutil.Expr(t, "1")}}
	require.NoError(t, p.Eval(ctx, mi))
	_, ok := p.Elab(mustAddr(t, "main.u1"))
	assert.True(t, ok)
}

func TestInlineOutlineThroughFacade(t *testing.T) {
	ctx := context.Background()
	p := program.New()
	require.NoError(t, p.Declare(ctx, testutil.Template("Main", testutil.Inst("Sub", "u1"))))
	require.NoError(t, p.Declare(ctx, testutil.Template("Sub")))
	require.NoError(t, p.Eval(ctx, testutil.Inst("Main", "main")))

	p.InlineAll(ctx)
	_, ok := p.Src().Items[0].(*ast.InlinedScope)
	require.True(t, ok)

	p.OutlineAll(ctx)
	restored, ok := p.Src().Items[0].(*ast.ModuleInst)
	require.True(t, ok)
	assert.Equal(t, "u1", restored.Name)
}

func TestNewWithTemplate(t *testing.T) {
	p := program.NewWithTemplate(context.Background(), testutil.Template("Main"))
	assert.False(t, p.Error())
	_, _, ok := p.RootElab()
	assert.True(t, ok)
}

func TestNewWithInstance(t *testing.T) {
	p := program.NewWithInstance(context.Background(),
		testutil.Template("Main"), testutil.Inst("Main", "top"))
	assert.False(t, p.Error())
	addr, _, ok := p.RootElab()
	require.True(t, ok)
	assert.Equal(t, "top", addr.String())
}

func mustAddr(t *testing.T, raw string) hierid.Address {
	t.Helper()
	addr, err := hierid.Parse(raw)
	require.NoError(t, err)
	return addr
}
