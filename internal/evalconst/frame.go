// Package evalconst computes compile-time constant values. Declarations are
// valued inline during traversal; generate-construct controls and parameter
// bindings are valued on demand by the checker and the expander. All values
// are cty.Value and every evaluation happens against a Frame, the lexical
// chain of names already valued in the surrounding scope.
package evalconst

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Frame is a lexically chained constant scope. Child frames shadow their
// parents.
type Frame struct {
	vars   map[string]cty.Value
	parent *Frame
}

// NewFrame creates a frame chained to parent; a nil parent starts a fresh
// scope, as when entering a module body.
func NewFrame(parent *Frame) *Frame {
	return &Frame{vars: make(map[string]cty.Value), parent: parent}
}

// Define binds a name in this frame.
func (f *Frame) Define(name string, v cty.Value) {
	f.vars[name] = v
}

// Lookup resolves a name through the frame chain.
func (f *Frame) Lookup(name string) (cty.Value, bool) {
	for cur := f; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return cty.NilVal, false
}

// Has reports whether the name resolves anywhere in the chain.
func (f *Frame) Has(name string) bool {
	_, ok := f.Lookup(name)
	return ok
}

// EvalContext flattens the chain into an hcl evaluation context.
func (f *Frame) EvalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	var fill func(*Frame)
	fill = func(cur *Frame) {
		if cur == nil {
			return
		}
		fill(cur.parent)
		for k, v := range cur.vars {
			vars[k] = v
		}
	}
	fill(f)
	return &hcl.EvalContext{Variables: vars}
}
