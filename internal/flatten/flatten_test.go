package flatten_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/hdlelab/internal/ast"
	"github.com/vk/hdlelab/internal/flatten"
	"github.com/vk/hdlelab/internal/hierid"
	"github.com/vk/hdlelab/internal/modinfo"
	"github.com/vk/hdlelab/internal/testutil"
)

// shape is a structural summary of a body, used to compare trees across an
// inline/outline round trip.
type shape struct {
	Kind     string
	Label    string
	Children []shape
}

func summarize(items []ast.Item) []shape {
	out := make([]shape, 0, len(items))
	for _, it := range items {
		switch n := it.(type) {
		case *ast.ModuleInst:
			out = append(out, shape{Kind: "inst", Label: n.Module + "/" + n.Name})
		case *ast.InlinedScope:
			out = append(out, shape{
				Kind:     "inlined",
				Label:    n.Inst.Module + "/" + n.Inst.Name,
				Children: summarize(n.Body.Items),
			})
		default:
			out = append(out, shape{Kind: fmt.Sprintf("%T", it)})
		}
	}
	return out
}

type container map[string]*ast.ModuleDecl

func (c container) lookup(addr hierid.Address) (*ast.ModuleDecl, bool) {
	md, ok := c[addr.String()]
	return md, ok
}

// newHierarchy builds main{u1: Sub{f: Leaf}, u2: Leaf} as committed
// elaborated instances.
func newHierarchy() container {
	return container{
		"main":      testutil.Template("Main", testutil.Inst("Sub", "u1"), testutil.Inst("Leaf", "u2")),
		"main.u1":   testutil.Template("Sub", testutil.Inst("Leaf", "f")),
		"main.u1.f": testutil.Template("Leaf"),
		"main.u2":   testutil.Template("Leaf"),
	}
}

func TestInlineOutlineRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newHierarchy()
	root := c["main"]
	u1 := root.Items[0].(*ast.ModuleInst)

	before := summarize(root.Items)

	l := flatten.New(c.lookup, modinfo.New())
	l.InlineAll(ctx, root, hierid.Root("main"))

	// Every instantiation item became an absorbed scope, recursively.
	is, ok := root.Items[0].(*ast.InlinedScope)
	require.True(t, ok)
	assert.Same(t, u1, is.Inst)
	assert.Same(t, c["main.u1"], is.Body)
	_, ok = is.Body.Items[0].(*ast.InlinedScope)
	assert.True(t, ok, "child bodies are flattened before the parent absorbs them")
	_, ok = root.Items[1].(*ast.InlinedScope)
	assert.True(t, ok)

	l.OutlineAll(ctx, root, hierid.Root("main"))

	restored, ok := root.Items[0].(*ast.ModuleInst)
	require.True(t, ok)
	assert.Same(t, u1, restored)
	_, ok = c["main.u1"].Items[0].(*ast.ModuleInst)
	assert.True(t, ok, "outlining restores nested boundaries too")
	_, ok = root.Items[1].(*ast.ModuleInst)
	assert.True(t, ok)

	if diff := cmp.Diff(before, summarize(root.Items)); diff != "" {
		t.Errorf("round trip changed the tree (-before +after):\n%s", diff)
	}
}

func TestCanInline(t *testing.T) {
	l := flatten.New(newHierarchy().lookup, modinfo.New())

	assert.True(t, l.CanInline(testutil.Template("Main", testutil.Inst("Leaf", "u1"))))

	gi := &ast.GenIf{Cond: testutil.Expr(t, "true")}
	gi.SetElaborated(nil)
	assert.False(t, l.CanInline(testutil.Template("Main", gi)))
}

func TestInlineAllRefusesGenerateRegions(t *testing.T) {
	c := newHierarchy()
	gi := &ast.GenIf{Cond: testutil.Expr(t, "true")}
	gi.SetElaborated(nil)
	root := c["main"]
	root.Items = append(root.Items, gi)

	flatten.New(c.lookup, modinfo.New()).InlineAll(context.Background(), root, hierid.Root("main"))

	_, stillInst := root.Items[0].(*ast.ModuleInst)
	assert.True(t, stillInst, "a body with generate constructs is left untouched")
}

func TestMissingChildEntryPanics(t *testing.T) {
	c := newHierarchy()
	delete(c, "main.u2")
	root := c["main"]

	assert.Panics(t, func() {
		flatten.New(c.lookup, modinfo.New()).InlineAll(context.Background(), root, hierid.Root("main"))
	})
}
