package evalconst_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/diag"
	"github.com/vk/hdlelab/internal/evalconst"
	"github.com/vk/hdlelab/internal/testutil"
)

func TestFrameShadowing(t *testing.T) {
	parent := evalconst.NewFrame(nil)
	parent.Define("width", cty.NumberIntVal(8))
	parent.Define("depth", cty.NumberIntVal(2))

	child := evalconst.NewFrame(parent)
	child.Define("width", cty.NumberIntVal(16))

	v, ok := child.Lookup("width")
	require.True(t, ok)
	assert.Equal(t, cty.NumberIntVal(16), v)

	v, ok = child.Lookup("depth")
	require.True(t, ok)
	assert.Equal(t, cty.NumberIntVal(2), v)

	_, ok = parent.Lookup("missing")
	assert.False(t, ok)

	ctx := child.EvalContext()
	assert.Equal(t, cty.NumberIntVal(16), ctx.Variables["width"])
	assert.Equal(t, cty.NumberIntVal(2), ctx.Variables["depth"])
}

func TestValue(t *testing.T) {
	e := evalconst.New()
	frame := evalconst.NewFrame(nil)
	frame.Define("width", cty.NumberIntVal(8))

	v, diags := e.Value(testutil.Expr(t, "width * 2"), frame)
	require.False(t, diags.HasErrors())
	assert.True(t, v.RawEquals(cty.NumberIntVal(16)), v.GoString())
}

func TestValueUnresolvedReference(t *testing.T) {
	e := evalconst.New()
	frame := evalconst.NewFrame(nil)

	_, diags := e.Value(testutil.Expr(t, "width + 1"), frame)
	require.True(t, diags.HasErrors())
	assert.True(t, diag.HasKind(diags, diag.KindUnresolved))
}

func TestInitValue(t *testing.T) {
	e := evalconst.New()
	frame := evalconst.NewFrame(nil)
	frame.Define("base", cty.NumberIntVal(4))

	d := testutil.Param(t, "width", "base * 2")
	diags := e.InitValue(d, frame)
	require.False(t, diags.HasErrors())

	v, ok := d.Value()
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(8)), v.GoString())

	got, ok := frame.Lookup("width")
	require.True(t, ok)
	assert.True(t, got.RawEquals(cty.NumberIntVal(8)), got.GoString())
}

func TestInitValueKeepsSubstitutedValue(t *testing.T) {
	e := evalconst.New()
	frame := evalconst.NewFrame(nil)

	// A parameter override set before elaboration wins over the initializer.
	d := testutil.Param(t, "width", "32")
	d.SetValue(cty.NumberIntVal(64))

	diags := e.InitValue(d, frame)
	require.False(t, diags.HasErrors())

	v, _ := d.Value()
	assert.Equal(t, cty.NumberIntVal(64), v)
	got, _ := frame.Lookup("width")
	assert.Equal(t, cty.NumberIntVal(64), got)
}

func TestInitValueDefaultsToZero(t *testing.T) {
	e := evalconst.New()
	frame := evalconst.NewFrame(nil)

	d := &ast.GenvarDecl{Name: "i"}
	diags := e.InitValue(d, frame)
	require.False(t, diags.HasErrors())

	v, ok := d.Value()
	require.True(t, ok)
	assert.Equal(t, cty.Zero, v)
}

func TestSeedFrame(t *testing.T) {
	e := evalconst.New()

	stored := testutil.Localparam(t, "width", "8")
	stored.SetValue(cty.NumberIntVal(8))
	derived := testutil.Localparam(t, "double", "width * 2")

	md := testutil.Template("Main", stored, derived)
	frame := e.SeedFrame(md)

	v, ok := frame.Lookup("double")
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(16)), v.GoString())

	// Seeding must not mutate the committed nodes.
	_, set := derived.Value()
	assert.False(t, set)
}

func TestSeedFrameDescendsIntoExpandedGenerates(t *testing.T) {
	e := evalconst.New()

	gi := &ast.GenIf{Cond: testutil.Expr(t, "true")}
	gi.SetElaborated([]ast.Item{testutil.Localparam(t, "inner", "3")})

	md := testutil.Template("Main", gi)
	frame := e.SeedFrame(md)

	v, ok := frame.Lookup("inner")
	require.True(t, ok)
	assert.True(t, v.RawEquals(cty.NumberIntVal(3)), v.GoString())
}
