package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vk/hdlelab/internal/hierid"
	"github.com/vk/hdlelab/internal/resolve"
	"github.com/vk/hdlelab/internal/testutil"
)

func TestFullID(t *testing.T) {
	r := resolve.New()

	root := testutil.Inst("Main", "main")
	assert.Equal(t, "main", r.FullID(root).String())

	within := hierid.Root("main").ChildIndexed("genblk", 1)
	nested := testutil.Inst("Adder", "u1")
	nested.Within = &within
	assert.Equal(t, "main.genblk[1].u1", r.FullID(nested).String())
}

func TestFullIDIsCached(t *testing.T) {
	r := resolve.New()
	mi := testutil.Inst("Adder", "u1")

	assert.False(t, r.Cached(mi))
	first := r.FullID(mi)
	assert.True(t, r.Cached(mi))

	// The cached resolution survives later mutation of the node.
	within := hierid.Root("elsewhere")
	mi.Within = &within
	assert.True(t, first.Equal(r.FullID(mi)))
}

func TestInvalidateDropsSubtreeResolutions(t *testing.T) {
	r := resolve.New()

	kept := testutil.Inst("Adder", "kept")
	dropped := testutil.Inst("Adder", "dropped")
	md := testutil.Template("Main", dropped)

	r.FullID(kept)
	r.FullID(dropped)

	r.Invalidate(md)
	assert.True(t, r.Cached(kept))
	assert.False(t, r.Cached(dropped))
}
