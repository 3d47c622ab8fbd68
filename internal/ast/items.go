package ast

import "github.com/hashicorp/hcl/v2"

// Assign is a continuous assignment. It is structural context for the
// elaboration engine: nothing is queued or evaluated for it, but its
// expressions participate in post-expansion reference checking.
type Assign struct {
	LHS string
	RHS hcl.Expression
}

func (*Assign) isNode() {}
func (*Assign) isItem() {}

// InlinedScope is produced by the hierarchy flattener when a parent absorbs
// a child instance's body in place. It retains the original instantiation
// node and the absorbed declaration so outlining can restore the hierarchy
// boundary exactly.
type InlinedScope struct {
	Inst *ModuleInst
	Body *ModuleDecl
}

func (*InlinedScope) isNode() {}
func (*InlinedScope) isItem() {}
